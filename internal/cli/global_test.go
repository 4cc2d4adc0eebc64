package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlobalOptionsCompleteCreatesOutDir(t *testing.T) {
	o := DefaultGlobalOptions()
	o.OutDir = filepath.Join(t.TempDir(), "downloads")

	require.NoError(t, o.Complete(nil, nil))
	assert.True(t, filepath.IsAbs(o.OutDir))

	info, err := os.Stat(o.OutDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestGlobalOptionsCompleteFailsOnUncreatableDir(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	o := DefaultGlobalOptions()
	o.OutDir = filepath.Join(blocker, "downloads")
	assert.Error(t, o.Complete(nil, nil))
}

func TestGlobalOptionsValidateTimeout(t *testing.T) {
	o := DefaultGlobalOptions()
	o.Timeout = 0
	assert.Error(t, o.Validate(nil))

	o.Timeout = 300
	assert.NoError(t, o.Validate(nil))
}
