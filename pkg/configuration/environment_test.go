package configuration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadEnv_FallsBackToGoModRoot(t *testing.T) {
	tmp := t.TempDir()

	requireWriteFile(t, filepath.Join(tmp, "go.mod"), "module example.com/test\n\ngo 1.22\n")
	requireWriteFile(t, filepath.Join(tmp, ".env.local"), "HRDESK_TEST_ENV_LOAD=ok\n")

	sub := filepath.Join(tmp, "pkg", "listview")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	t.Chdir(sub)
	_ = os.Unsetenv("HRDESK_TEST_ENV_LOAD")

	n, err := LoadEnv([]string{".env", ".env.local"})
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, "ok", os.Getenv("HRDESK_TEST_ENV_LOAD"))
}

func TestLoadEnv_NoFiles(t *testing.T) {
	t.Chdir(t.TempDir())
	n, err := LoadEnv([]string{".env"})
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestParseDefaults(t *testing.T) {
	c := &Configuration{}
	require.NoError(t, c.parse())
	require.Equal(t, 10, c.PageSize)
	require.Equal(t, 500*time.Millisecond, c.SearchDebounce)
	require.Equal(t, 10*time.Second, c.Cache.RefreshInterval)
	require.Equal(t, "postgres", c.Storage)
	require.Equal(t, "localhost:3200", c.SocketAddress)
}

func TestParseRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"storage", "STORAGE", "sqlite"},
		{"authz mode", "AUTHZ_MODE", "strict"},
		{"page size", "PAGE_SIZE", "0"},
		{"rps", "RATE_LIMIT_GLOBAL_RPS", "-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			require.Error(t, (&Configuration{}).parse())
		})
	}
}

func TestParseStorageAndOrigins(t *testing.T) {
	t.Setenv("STORAGE", " Memory ")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	c := &Configuration{}
	require.NoError(t, c.parse())
	require.Equal(t, "memory", c.Storage)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, c.CORSOrigins)
}

func requireWriteFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
