// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files,
// an optional .env file, and the process environment.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Supported key files: gemini-api-key, anthropic-api-key, semantic-scholar-api-key, openalex-email.
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Key names understood by the assistant.
const (
	KeyGemini          = "gemini-api-key"
	KeyAnthropic       = "anthropic-api-key"
	KeySemanticScholar = "semantic-scholar-api-key"
	KeyOpenAlexEmail   = "openalex-email"
)

// Store maps key names (kebab-case) to secret values.
type Store map[string]string

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (Store, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Store{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(Store)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Resolve loads secrets from dir, then fills keys the directory did not
// provide from envFile (dotenv syntax). An empty envFile or a missing file
// is skipped. The process environment is consulted later by Get.
func Resolve(dir, envFile string) (Store, error) {
	store, err := Load(dir)
	if err != nil {
		return nil, err
	}
	if envFile == "" {
		return store, nil
	}

	vars, err := godotenv.Read(envFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return store, nil
		}
		return nil, fmt.Errorf("reading env file %s: %w", envFile, err)
	}
	for name, value := range vars {
		key := KeyName(name)
		value = strings.TrimSpace(value)
		if _, ok := store[key]; !ok && value != "" {
			store[key] = value
		}
	}
	return store, nil
}

// Get returns the value for key, falling back to the environment variable
// named by EnvName(key).
func (s Store) Get(key string) string {
	if v, ok := s[key]; ok {
		return v
	}
	return strings.TrimSpace(os.Getenv(EnvName(key)))
}

// EnvName converts a key name to its environment variable form:
// gemini-api-key becomes GEMINI_API_KEY.
func EnvName(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

// KeyName is the inverse of EnvName.
func KeyName(env string) string {
	return strings.ToLower(strings.ReplaceAll(env, "_", "-"))
}
