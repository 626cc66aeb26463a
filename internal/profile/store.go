package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Store persists user profiles to a single JSON file keyed by profile name.
// The whole file is read and rewritten on every save; the last writer wins.
// The mutex serializes writers within this process only.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a new Store and ensures the parent directory exists.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create profile directory %s: %w", dir, err)
		}
	}
	return &Store{path: path}, nil
}

// Save stores a profile, overwriting any existing profile with the same name.
func (s *Store) Save(p *UserProfile) error {
	if err := p.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	profiles, err := s.readAll()
	if err != nil {
		return err
	}
	profiles[p.Name] = *p

	data, err := json.MarshalIndent(profiles, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profiles: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write profile file: %w", err)
	}
	return nil
}

// Load retrieves a profile by name. Returns nil when no such profile exists.
func (s *Store) Load(name string) (*UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profiles, err := s.readAll()
	if err != nil {
		return nil, err
	}
	p, ok := profiles[name]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// Names lists the stored profile names in sorted order.
func (s *Store) Names() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profiles, err := s.readAll()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) readAll() (map[string]UserProfile, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]UserProfile{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}

	profiles := map[string]UserProfile{}
	if len(data) == 0 {
		return profiles, nil
	}
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile file: %w", err)
	}
	return profiles, nil
}
