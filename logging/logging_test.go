package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/katalvlaran/trailnav/logging"
)

func TestNewZap_FieldsAndSessionID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := logging.NewZap(zap.New(core)).With(logging.String("component", "tracking"))

	ctx := logging.ContextWithSessionID(context.Background(), "s-1")
	log.Warn(ctx, "off route", logging.Float("distance_m", 7.5), logging.Err(errors.New("boom")))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "off route", entry.Message)
	assert.Equal(t, zapcore.WarnLevel, entry.Level)

	fields := entry.ContextMap()
	assert.Equal(t, "tracking", fields["component"])
	assert.Equal(t, "s-1", fields["session_id"])
	assert.Equal(t, 7.5, fields["distance_m"])
	assert.Equal(t, "boom", fields["error"])
}

func TestNew_LevelAndFormat(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(logging.Config{Level: "warn", Format: "json", Output: &buf})

	log.Info(context.Background(), "dropped")
	log.Error(context.Background(), "kept", logging.Int("n", 3))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &rec))
	assert.Equal(t, "kept", rec["msg"])
	assert.Equal(t, "error", rec["level"])
	assert.Equal(t, float64(3), rec["n"])
}

func TestNoop(t *testing.T) {
	log := logging.Noop().With(logging.Bool("x", true))
	assert.NotPanics(t, func() {
		log.Error(context.Background(), "ignored")
	})
	assert.Equal(t, "", logging.SessionIDFromContext(context.Background()))
}
