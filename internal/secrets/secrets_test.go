// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(t *testing.T) string
		want   Store
		errMsg string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "gemini-api-key", "  gm_abc123  \n")
				writeFile(t, dir, "semantic-scholar-api-key", "sk_xyz789")
				writeFile(t, dir, "openalex-email", "user@example.com\n")
				return dir
			},
			want: Store{
				"gemini-api-key":           "gm_abc123",
				"semantic-scholar-api-key": "sk_xyz789",
				"openalex-email":           "user@example.com",
			},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: Store{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "anthropic-api-key", "valid-key")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				return dir
			},
			want: Store{
				"anthropic-api-key": "valid-key",
			},
		},
		{
			name: "skips dotfiles",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden-key", "secret")
				writeFile(t, dir, "gemini-api-key", "gm_real")
				return dir
			},
			want: Store{
				"gemini-api-key": "gm_real",
			},
		},
		{
			name: "skips subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "anthropic-api-key", "ak_123")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: Store{
				"anthropic-api-key": "ak_123",
			},
		},
		{
			name: "returns empty map for empty directory",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
			want: Store{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := tt.setup(t)
			got, err := Load(dir)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good-key", "value123")

	// Create a file then remove read permission.
	badPath := filepath.Join(dir, "bad-key")
	require.NoError(t, os.WriteFile(badPath, []byte("secret"), 0o000))
	t.Cleanup(func() { os.Chmod(badPath, 0o644) })

	got, err := Load(dir)
	require.NoError(t, err)
	// The good file should still be returned; the bad file is skipped with a warning.
	assert.Equal(t, "value123", got["good-key"])
	_, hasBad := got["bad-key"]
	assert.False(t, hasBad, "unreadable file should not appear in result")
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, KeyGemini, "from-file")

	envDir := t.TempDir()
	envFile := filepath.Join(envDir, ".env")
	writeFile(t, envDir, ".env", "GEMINI_API_KEY=from-dotenv\nOPENALEX_EMAIL=tesis@example.com\nEMPTY_KEY=\n")

	got, err := Resolve(dir, envFile)
	require.NoError(t, err)
	assert.Equal(t, "from-file", got[KeyGemini], "secrets directory wins over .env")
	assert.Equal(t, "tesis@example.com", got[KeyOpenAlexEmail])
	_, hasEmpty := got["empty-key"]
	assert.False(t, hasEmpty)
}

func TestResolveMissingEnvFile(t *testing.T) {
	got, err := Resolve(t.TempDir(), filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = Resolve(t.TempDir(), "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStoreGetFallsBackToEnvironment(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", " from-env ")
	t.Setenv("GEMINI_API_KEY", "env-gemini")

	s := Store{KeyGemini: "stored"}
	assert.Equal(t, "stored", s.Get(KeyGemini))
	assert.Equal(t, "from-env", s.Get(KeyAnthropic))
	assert.Equal(t, "", s.Get("missing-key"))
}

func TestEnvNameRoundTrip(t *testing.T) {
	assert.Equal(t, "SEMANTIC_SCHOLAR_API_KEY", EnvName(KeySemanticScholar))
	assert.Equal(t, KeySemanticScholar, KeyName("SEMANTIC_SCHOLAR_API_KEY"))
}
