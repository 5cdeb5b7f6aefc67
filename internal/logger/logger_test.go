package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZeroLogger_Levels(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		log       func(Logger)
		wantEmpty bool
		contains  string
	}{
		{
			name:     "info logged at info level",
			level:    "info",
			log:      func(l Logger) { l.Logf("loaded %d channels", 3) },
			contains: "loaded 3 channels",
		},
		{
			name:      "debug suppressed at info level",
			level:     "info",
			log:       func(l Logger) { l.Debug("manifest body") },
			wantEmpty: true,
		},
		{
			name:     "debug logged at debug level",
			level:    "debug",
			log:      func(l Logger) { l.Debugf("session %s", "abc") },
			contains: "session abc",
		},
		{
			name:     "unknown level falls back to info",
			level:    "loud",
			log:      func(l Logger) { l.Warn("auto-play prevented") },
			contains: "auto-play prevented",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := New(&buf, tt.level)

			tt.log(l)

			if tt.wantEmpty {
				assert.Empty(t, buf.String())
			} else {
				assert.Contains(t, buf.String(), tt.contains)
			}
		})
	}
}

func TestZeroLogger_With(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "info").With("session", "s-1")

	l.Error("fatal network error")

	assert.Contains(t, buf.String(), "fatal network error")
	assert.Contains(t, buf.String(), "s-1")
}

func TestNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "idcable.log")

	l, closeFn, err := NewFile(path, "info")
	require.NoError(t, err)
	l.Log("hello")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}
