package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPlain(buf *bytes.Buffer, level slog.Level) *Logger {
	return New(Config{Writer: buf, Format: FormatPretty, Level: level, NoColor: true})
}

func TestNew_FormatAutoDetection(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		wantJSON    bool
	}{
		{"production uses json", "production", true},
		{"development uses pretty", "development", false},
		{"empty uses pretty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			New(Config{Writer: &buf, Environment: tt.environment, NoColor: true}).Info("hello")

			if tt.wantJSON {
				assert.Contains(t, buf.String(), `"msg":"hello"`)
			} else {
				assert.Contains(t, buf.String(), "INF hello")
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input  string
		want   slog.Level
		wantOK bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"", slog.LevelInfo, true},
		{"warning", slog.LevelWarn, true},
		{" error ", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseLevel(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestPrettyHandler_Line(t *testing.T) {
	var buf bytes.Buffer
	log := newPlain(&buf, slog.LevelInfo)

	log.Info("movie tagged", "tag", "Horror", "movie", "Alien (1979)", "took", 3*time.Millisecond)

	line := buf.String()
	assert.Contains(t, line, "INF movie tagged")
	assert.Contains(t, line, "tag=Horror")
	assert.Contains(t, line, `movie="Alien (1979)"`)
	assert.Contains(t, line, "took=3ms")
	assert.NotContains(t, line, "\033[")
}

func TestPrettyHandler_Colors(t *testing.T) {
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, nil)

	slog.New(h).Warn("careful")

	assert.Contains(t, buf.String(), colorYellow+"WRN"+colorReset)
}

func TestPrettyHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := newPlain(&buf, slog.LevelWarn)

	log.Debug("d")
	log.Info("i")
	log.Warn("w")
	log.Error("e")

	out := buf.String()
	assert.NotContains(t, out, "DBG")
	assert.NotContains(t, out, "INF")
	assert.Contains(t, out, "WRN w")
	assert.Contains(t, out, "ERR e")
}

func TestPrettyHandler_GroupsAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := newPlain(&buf, slog.LevelInfo)

	log.With("component", "api").WithGroup("req").Info("done",
		"status", 200,
		slog.Group("client", "ip", "10.0.0.1"),
	)

	out := buf.String()
	assert.Contains(t, out, "component=api")
	assert.Contains(t, out, "req.status=200")
	assert.Contains(t, out, "req.client.ip=10.0.0.1")
}

func TestContextHandler_AddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := newPlain(&buf, slog.LevelInfo)

	ctx := WithRequestID(context.Background(), "req-123")
	log.InfoContext(ctx, "handled")
	log.Info("background")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.Contains(t, string(lines[0]), "request_id=req-123")
	assert.NotContains(t, string(lines[1]), "request_id")
	assert.Equal(t, "req-123", RequestID(ctx))
	assert.Empty(t, RequestID(context.Background()))
}

func TestContextHandler_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: FormatJSON})

	log.InfoContext(WithRequestID(context.Background(), "abc"), "x")

	assert.Contains(t, buf.String(), `"request_id":"abc"`)
}

func TestLogger_Helpers(t *testing.T) {
	var buf bytes.Buffer
	log := newPlain(&buf, slog.LevelInfo)

	log.WithComponent("watcher").WithError(errors.New("boom")).Info("failed")
	assert.Contains(t, buf.String(), "component=watcher")
	assert.Contains(t, buf.String(), "error=boom")

	assert.Same(t, log, log.WithError(nil))
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() { Discard().Error("nothing") })
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, `""`, formatValue(slog.StringValue("")))
	assert.Equal(t, "plain", formatValue(slog.StringValue("plain")))
	assert.Equal(t, `"a=b"`, formatValue(slog.StringValue("a=b")))
	assert.Equal(t, "42", formatValue(slog.IntValue(42)))
	assert.Equal(t, "true", formatValue(slog.BoolValue(true)))
}
