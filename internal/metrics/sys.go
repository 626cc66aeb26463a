package metrics

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
)

// SysHealth represents a point-in-time snapshot of process and data health.
type SysHealth struct {
	AllocMB      uint64 `json:"alloc_mb"`
	SysMB        uint64 `json:"sys_mb"`
	NumGC        uint32 `json:"num_gc"`
	Goroutines   int    `json:"goroutines"`
	DataDirBytes int64  `json:"data_dir_bytes"`
	StoredPlans  int64  `json:"stored_plans"`
	MetricRows   int64  `json:"metric_rows"`
}

// Health collects runtime stats plus row counts from the metrics database.
func (s *Store) Health(ctx context.Context, dataPath string) SysHealth {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	h := SysHealth{
		AllocMB:      m.Alloc / 1024 / 1024,
		SysMB:        m.Sys / 1024 / 1024,
		NumGC:        m.NumGC,
		Goroutines:   runtime.NumGoroutine(),
		DataDirBytes: dirSize(dataPath),
	}

	// Row counts are best-effort; a failed query leaves the zero value.
	_ = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM meal_plans`).Scan(&h.StoredPlans)
	_ = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM execution_metrics`).Scan(&h.MetricRows)
	return h
}

func dirSize(path string) int64 {
	var size int64
	_ = filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size
}
