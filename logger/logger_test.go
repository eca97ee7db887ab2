package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"WARN", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, Config{Level: "warn", Format: "json"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	l.Info("dropped")
	l.Warn("kept", "file", "a.json")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("not a json record: %v", err)
	}
	if rec["msg"] != "kept" || rec["file"] != "a.json" {
		t.Errorf("got %v, want msg=kept file=a.json", rec)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(&bytes.Buffer{}, Config{Format: "xml"}); err == nil {
		t.Errorf("New() with format xml: want an error")
	}
}

func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	l, _ := New(&buf, Config{})
	prev := slog.Default()
	slog.SetDefault(l)
	defer slog.SetDefault(prev)

	WithContext(WithRunID(context.Background(), "42")).Info("hello")
	if got := buf.String(); !strings.Contains(got, "run_id=42") {
		t.Errorf("got %q, want a run_id attribute", got)
	}
}
