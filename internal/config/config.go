// Package config resolves BUDDY client settings from a YAML file under
// the user config directory with environment overrides on top. A .env
// file in the working directory is honored for local development.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultBackendURL is the single configured base for every panel.
	DefaultBackendURL = "http://localhost:8000"

	// DefaultRequestTimeout bounds the ordinary generation panels.
	DefaultRequestTimeout = 60 * time.Second
	// DefaultRAGTimeout is longer: RAG answering and comparison run
	// retrieval plus two generations.
	DefaultRAGTimeout = 120 * time.Second
)

// Settings holds everything the clients need to reach their collaborators.
type Settings struct {
	BackendURL        string        `yaml:"backend_url"`
	FirebaseAPIKey    string        `yaml:"firebase_api_key"`
	FirebaseProjectID string        `yaml:"firebase_project_id"`
	Language          string        `yaml:"language"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
	RAGTimeout        time.Duration `yaml:"rag_timeout"`
}

// ConfigDir returns the BUDDY directory under the user config dir.
func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "buddy"), nil
}

func configFile() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load resolves settings: defaults, then config.yaml, then environment.
func Load() (*Settings, error) {
	_ = godotenv.Load()

	s := &Settings{
		BackendURL:     DefaultBackendURL,
		Language:       "en",
		RequestTimeout: DefaultRequestTimeout,
		RAGTimeout:     DefaultRAGTimeout,
	}

	path, err := configFile()
	if err == nil {
		if data, readErr := os.ReadFile(path); readErr == nil {
			if err := yaml.Unmarshal(data, s); err != nil {
				return nil, err
			}
		} else if !os.IsNotExist(readErr) {
			return nil, readErr
		}
	}

	if v := os.Getenv("BUDDY_BACKEND_URL"); v != "" {
		s.BackendURL = v
	}
	if v := os.Getenv("BUDDY_FIREBASE_API_KEY"); v != "" {
		s.FirebaseAPIKey = v
	}
	if v := os.Getenv("BUDDY_FIREBASE_PROJECT_ID"); v != "" {
		s.FirebaseProjectID = v
	}
	if v := os.Getenv("BUDDY_LANGUAGE"); v != "" {
		s.Language = v
	}
	if v := os.Getenv("BUDDY_REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			s.RequestTimeout = d
		}
	}
	if v := os.Getenv("BUDDY_RAG_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			s.RAGTimeout = d
		}
	}

	if s.RequestTimeout <= 0 {
		s.RequestTimeout = DefaultRequestTimeout
	}
	if s.RAGTimeout <= 0 {
		s.RAGTimeout = DefaultRAGTimeout
	}
	return s, nil
}

// Save writes the settings back to config.yaml, creating the directory
// if needed.
func Save(s *Settings) error {
	path, err := configFile()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
