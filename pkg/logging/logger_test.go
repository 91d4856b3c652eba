package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewRunLogger_WritesToFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	runLogger, err := NewRunLogger(dir, "import", false)
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(runLogger.Path))
	assert.True(t, strings.HasPrefix(filepath.Base(runLogger.Path), "import-"))
	assert.True(t, strings.HasSuffix(runLogger.Path, ".log"))

	runLogger.Logger.Named("object-importer").Warn("alternate_name truncated",
		zap.String("key", "mwnf3:objects:AWE:eg:1:1"))
	runLogger.Logger.Debug("debug lines still reach the file")
	require.NoError(t, runLogger.Close())

	content, err := os.ReadFile(runLogger.Path)
	require.NoError(t, err)
	text := string(content)

	assert.Contains(t, text, "WARN")
	assert.Contains(t, text, "object-importer")
	assert.Contains(t, text, "alternate_name truncated")
	assert.Contains(t, text, "mwnf3:objects:AWE:eg:1:1")
	assert.Contains(t, text, "debug lines still reach the file")
}
