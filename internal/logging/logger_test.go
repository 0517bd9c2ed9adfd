package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_JSONWhenPiped(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, false, "info")
	FromContext(WithRequestID(context.Background(), "req-1"), logger).Info("page rendered", "resource", "buses")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "page rendered", line["msg"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "buses", line["resource"])
}

func TestNewWithWriter_TextOnTerminal(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter(&buf, true, "debug").Debug("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestFromContext_NoRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, false, "info")
	FromContext(context.Background(), logger).Info("x")
	assert.NotContains(t, buf.String(), "request_id")
}
