package logger

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{in: "debug", want: LevelDebug},
		{in: "INFO", want: LevelInfo},
		{in: "Warn", want: LevelWarn},
		{in: "error", want: LevelError},
		{in: "loud", want: LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", Level(9).String())
	assert.Equal(t, "UNKNOWN", Level(-1).String())
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New()
	l.SetOutput(&buf)
	l.SetLevel(LevelWarn)

	l.Debug("debug message")
	l.Info("info message")
	l.Warn("warn %d", 1)
	l.Error("error %d", 2)

	out := buf.String()
	assert.NotContains(t, out, "debug message")
	assert.NotContains(t, out, "info message")
	assert.Contains(t, out, "[WARN] warn 1")
	assert.Contains(t, out, "[ERROR] error 2")
}

func TestDiscardByDefault(t *testing.T) {
	t.Setenv(EnvLevel, "")
	t.Setenv(EnvFile, "")

	l := New()
	assert.Equal(t, LevelInfo, l.level)
	assert.Nil(t, l.file)
}

func TestEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tplvars.log")
	t.Setenv(EnvLevel, "debug")
	t.Setenv(EnvFile, path)

	l := New()
	l.Debug("from env")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[DEBUG] from env")
	assert.Equal(t, LevelDebug, l.level)
}

func TestConfigure(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		file      bool
		wantLevel Level
		wantErr   bool
	}{
		{name: "empty keeps defaults", wantLevel: LevelInfo},
		{name: "level only", level: "warn", wantLevel: LevelWarn},
		{name: "level and file", level: "debug", file: true, wantLevel: LevelDebug},
		{name: "bad level", level: "loud", wantLevel: LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvLevel, "")
			t.Setenv(EnvFile, "")
			l := New()
			defer l.Close()

			path := ""
			if tt.file {
				path = filepath.Join(t.TempDir(), "out.log")
			}
			err := l.Configure(tt.level, path)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantLevel, l.level)

			if tt.file {
				l.Debug("into the file")
				data, err := os.ReadFile(path)
				require.NoError(t, err)
				assert.Contains(t, string(data), "into the file")
			}
		})
	}
}

func TestSetFileError(t *testing.T) {
	l := New()
	err := l.SetFile(filepath.Join(t.TempDir(), "missing", "dir", "x.log"))
	assert.Error(t, err)
}

func TestCloseDiscardsFurtherOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	l := New()
	require.NoError(t, l.SetFile(path))
	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	l.Error("after close")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestPackageLevelFunctions(t *testing.T) {
	var buf bytes.Buffer
	Default.SetOutput(&buf)
	Default.SetLevel(LevelDebug)
	t.Cleanup(func() {
		Default.SetOutput(io.Discard)
		Default.SetLevel(LevelInfo)
	})

	Debug("debug %s", "test")
	Info("info %s", "test")
	Warn("warn %s", "test")
	Error("error %s", "test")

	for _, want := range []string{"debug test", "info test", "warn test", "error test"} {
		assert.Contains(t, buf.String(), want)
	}
}
