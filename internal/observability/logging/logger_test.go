package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"fatal", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"loud", slog.LevelInfo},
	}
	for _, tc := range cases {
		if got := ParseLevel(tc.in); got != tc.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNewJSONLoggerTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLoggerTo(&buf, "worker", "info")

	logger.Info("analysis_started", "document_id", "DOC-1")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("log record is not JSON: %v", err)
	}
	if record["app"] != "permitflow" || record["component"] != "worker" {
		t.Fatalf("record missing identity attributes: %v", record)
	}
	if record["msg"] != "analysis_started" {
		t.Fatalf("unexpected message %v", record["msg"])
	}
}

func TestNewJSONLoggerSuppressesBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLoggerTo(&buf, "api", "error")

	logger.Info("ignored")
	if buf.Len() != 0 {
		t.Fatalf("info record emitted at error level: %s", buf.String())
	}
}
