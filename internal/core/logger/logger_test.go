package logger

import (
	"bytes"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestBuild_JSONLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l, flush := Build(Options{Level: "warn", JSON: true, Out: zapcore.AddSync(&buf)})
	l.Info("dropped")
	l.Warn("kept", zap.String("domain", "a.com"))
	flush()

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "kept", line["msg"])
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "a.com", line["domain"])
}

func TestBuild_BadLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l, flush := Build(Options{Level: "loud", JSON: true, Out: zapcore.AddSync(&buf)})
	l.Debug("no")
	l.Info("yes")
	flush()
	assert.NotContains(t, buf.String(), `"no"`)
	assert.Contains(t, buf.String(), `"yes"`)
}

func TestBuild_RotateWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "api.log")
	var buf bytes.Buffer
	l, flush := Build(Options{
		Level:  "info",
		Out:    zapcore.AddSync(&buf),
		Rotate: FileRotate{Enable: true, Filename: path, MaxSizeMB: 1},
	})
	l.Info("to file")
	flush()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"to file"`)
	assert.Contains(t, buf.String(), "to file")
}

func TestToWriterAndRedirect(t *testing.T) {
	var buf bytes.Buffer
	l, flush := Build(Options{Level: "debug", JSON: true, Out: zapcore.AddSync(&buf)})
	defer flush()

	_, err := ToWriter(l, zapcore.InfoLevel).Write([]byte("gin line\n"))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"msg":"gin line"`)

	undo := RedirectStdLog(l, zapcore.WarnLevel)
	log.Print("std line")
	undo()
	assert.Contains(t, buf.String(), `"msg":"std line"`)
	assert.Contains(t, buf.String(), `"level":"warn"`)
}
