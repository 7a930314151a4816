package authz

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileFlagProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authz.yaml")
	p := NewFileFlagProvider(path, ModeEnforce)
	assert.Equal(t, ModeEnforce, p.Mode(), "missing file uses the fallback")

	require.NoError(t, os.WriteFile(path, []byte("mode: disabled\n"), 0o600))
	assert.Equal(t, ModeDisabled, p.Mode())

	require.NoError(t, os.WriteFile(path, []byte("mode: [unterminated\n"), 0o600))
	assert.Equal(t, ModeDisabled, p.Mode(), "broken file keeps the last good mode")

	require.NoError(t, os.Remove(path))
	assert.Equal(t, ModeDisabled, p.Mode())

	require.NoError(t, os.WriteFile(path, []byte("mode: shadow\n"), 0o600))
	assert.Equal(t, ModeShadow, p.Mode())
}
