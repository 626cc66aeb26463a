package config

import (
	"os"
	"testing"
)

func TestNewFromEnv(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "gemini_key")
		t.Setenv("GROQ_API_KEY", "groq_key")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.GeminiAPIKey != "gemini_key" {
			t.Errorf("Expected GeminiAPIKey to be 'gemini_key', got '%s'", cfg.GeminiAPIKey)
		}
		if cfg.GroqAPIKey != "groq_key" {
			t.Errorf("Expected GroqAPIKey to be 'groq_key', got '%s'", cfg.GroqAPIKey)
		}
		if cfg.ProfileFilePath != defaultProfileFile {
			t.Errorf("Expected default profile file '%s', got '%s'", defaultProfileFile, cfg.ProfileFilePath)
		}
		if cfg.AlternativesThreshold != defaultAltsThreshold {
			t.Errorf("Expected default threshold %v, got %v", defaultAltsThreshold, cfg.AlternativesThreshold)
		}
	})

	t.Run("MissingGeminiAPIKey", func(t *testing.T) {
		t.Setenv("GROQ_API_KEY", "groq_key")
		os.Unsetenv("GEMINI_API_KEY")

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for missing GEMINI_API_KEY, got nil")
		}
		expectedError := "GEMINI_API_KEY environment variable not set"
		if err.Error() != expectedError {
			t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
		}
	})

	t.Run("MissingGroqAPIKey", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "gemini_key")
		os.Unsetenv("GROQ_API_KEY")

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for missing GROQ_API_KEY, got nil")
		}
		expectedError := "GROQ_API_KEY environment variable not set"
		if err.Error() != expectedError {
			t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
		}
	})

	t.Run("ThresholdOverride", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "gemini_key")
		t.Setenv("GROQ_API_KEY", "groq_key")
		t.Setenv("RISK_ALTERNATIVES_THRESHOLD", "0.5")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.AlternativesThreshold != 0.5 {
			t.Errorf("Expected threshold 0.5, got %v", cfg.AlternativesThreshold)
		}
	})

	t.Run("ThresholdOutOfRange", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "gemini_key")
		t.Setenv("GROQ_API_KEY", "groq_key")
		t.Setenv("RISK_ALTERNATIVES_THRESHOLD", "1.5")

		if _, err := NewFromEnv(); err == nil {
			t.Fatal("Expected an error for out-of-range threshold, got nil")
		}
	})
}
