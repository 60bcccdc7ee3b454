package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/segyhp/library-circulation/internal/config"
)

func TestNewWithWriter_Format(t *testing.T) {
	var buf bytes.Buffer

	logger := NewWithWriter(config.LoggingConfig{Level: "info", Format: "json"}, &buf)
	logger.Info("book returned", "borrowing_id", 7)
	assert.Contains(t, buf.String(), `"borrowing_id":7`)

	buf.Reset()
	logger = NewWithWriter(config.LoggingConfig{Level: "info", Format: "text"}, &buf)
	logger.Info("book returned", "borrowing_id", 7)
	assert.Contains(t, buf.String(), "borrowing_id=7")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.in), tt.in)
	}
}
