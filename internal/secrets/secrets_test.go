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
		want   map[string]string
		errMsg string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "usda-api-key", "  fdc_abc123  \n")
				writeFile(t, dir, "backup-usda-api-key", "fdc_xyz789")
				return dir
			},
			want: map[string]string{
				"usda-api-key":        "fdc_abc123",
				"backup-usda-api-key": "fdc_xyz789",
			},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "usda-api-key", "valid-key")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				return dir
			},
			want: map[string]string{
				"usda-api-key": "valid-key",
			},
		},
		{
			name: "skips dotfiles",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden-key", "secret")
				writeFile(t, dir, "usda-api-key", "pk_real")
				return dir
			},
			want: map[string]string{
				"usda-api-key": "pk_real",
			},
		},
		{
			name: "skips subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "usda-api-key", "ak_123")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: map[string]string{
				"usda-api-key": "ak_123",
			},
		},
		{
			name: "returns empty map for empty directory",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
			want: map[string]string{},
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
	if os.Geteuid() == 0 {
		t.Skip("root can read files without permission bits")
	}
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

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	writeFile(t, dir, ".env", "# local overrides\nUSDA_API_KEY=fdc_from_env\nEMPTY_VALUE=\nexport DATA_DIR=\"/tmp/nutriscan\"\n")

	got, err := LoadDotEnv(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"usda-api-key": "fdc_from_env",
		"data-dir":     "/tmp/nutriscan",
	}, got)

	missing, err := LoadDotEnv(filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestMerge(t *testing.T) {
	files := map[string]string{"usda-api-key": "from-file"}
	env := map[string]string{"usda-api-key": "from-dotenv", "data-dir": "data"}

	got := Merge(files, env)
	assert.Equal(t, "from-file", got["usda-api-key"])
	assert.Equal(t, "data", got["data-dir"])

	assert.Equal(t, env, Merge(nil, env))
}

func TestUSDAKey(t *testing.T) {
	stored := map[string]string{USDAAPIKey: "from-secret"}
	tests := []struct {
		name    string
		flag    string
		env     string
		secrets map[string]string
		want    string
	}{
		{"flag wins", "from-flag", "from-env", stored, "from-flag"},
		{"env before secret", "", "from-env", stored, "from-env"},
		{"secret file", "", "", stored, "from-secret"},
		{"demo key fallback", "  ", "", nil, DemoKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvUSDAAPIKey, tt.env)
			assert.Equal(t, tt.want, USDAKey(tt.flag, tt.secrets))
		})
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
