package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_TextToConsole(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "warn", Console: &buf})
	require.NoError(t, err)
	defer logger.Close()

	logger.Info("hidden")
	logger.WithField("repo", "octo/hello").Warn("repository unavailable")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "repository unavailable")
	assert.Contains(t, out, "repo=octo/hello")
}

func TestNew_JSONAndFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "insightify.log")

	logger, err := New(Config{Level: "debug", JSONFormat: true, OutputFile: path, Console: &buf})
	require.NoError(t, err)

	logger.WithField("run_id", "abc").Debug("starting")
	require.NoError(t, logger.Close())

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
	assert.Equal(t, "starting", entry["msg"])
	assert.Equal(t, "abc", entry["run_id"])

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"run_id":"abc"`)
	assert.Equal(t, path, logger.FilePath())
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestRotateIfNeeded(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0644))
	require.NoError(t, os.WriteFile(path+".1", []byte("older"), 0644))

	logger, err := New(Config{OutputFile: path, MaxSize: 5, MaxBackups: 2, Console: &bytes.Buffer{}})
	require.NoError(t, err)
	require.NoError(t, logger.Close())

	rotated, err := os.ReadFile(path + ".1")
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(rotated))

	oldest, err := os.ReadFile(path + ".2")
	require.NoError(t, err)
	assert.Equal(t, "older", string(oldest))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, level)

	level, err = ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, level)
}

func TestFromSettings(t *testing.T) {
	cfg := FromSettings("debug", "JSON", "/tmp/x.log")
	assert.True(t, cfg.JSONFormat)
	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, "/tmp/x.log", cfg.OutputFile)
}
