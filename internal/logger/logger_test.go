package logger

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("DEBUG"))
	assert.Equal(t, WARN, ParseLevel("warn"))
	assert.Equal(t, INFO, ParseLevel("bogus"))
}

func TestWriterLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger("warn", &buf)

	l.Infof("hidden %d", 1)
	l.Warnf("shown %d", 2)
	require.NoError(t, l.Sync())

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown 2")
	assert.Contains(t, out, "WARN")

	l.SetLevel("debug")
	assert.True(t, l.Enabled(DEBUG))
}

func TestFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "viewer.log")
	l, err := NewFileLogger("info", path)
	require.NoError(t, err)
	l.Info("written")
	l.Close()
	assert.FileExists(t, path)
}

func TestNopNeverPanics(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().Errorf("ignored %s", "message")
		Nop().With("k", 1).Warn("ignored")
	})
}
