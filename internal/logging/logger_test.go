package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogger_JSON(t *testing.T) {
	defer slog.SetDefault(slog.Default())
	buf := &bytes.Buffer{}

	l := initLogger(buf, "warn", "json")
	l.Info("hidden")
	WithConn(l, "id-1", "127.0.0.1:5000").Warn("client lagged", "skipped", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "exactly one JSON line expected: %s", buf.String())
	assert.Equal(t, "client lagged", entry["msg"])
	assert.Equal(t, "id-1", entry["conn_id"])
	assert.Equal(t, "127.0.0.1:5000", entry["remote_addr"])
	assert.EqualValues(t, 3, entry["skipped"])
}

func TestInitLogger_Text(t *testing.T) {
	defer slog.SetDefault(slog.Default())
	buf := &bytes.Buffer{}

	l := initLogger(buf, "unknown", "text")
	l.Debug("hidden")
	l.Info("relay started", "addr", "0.0.0.0:4000")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `msg="relay started" addr=0.0.0.0:4000`)
	assert.Same(t, Logger, l)
}
