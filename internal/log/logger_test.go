package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"chatty":  slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Output: &buf}).WithComponent(ComponentJournal)
	l.Info("hello", "k", "v")

	out := buf.String()
	if !strings.Contains(out, "component=journal") || !strings.Contains(out, "k=v") {
		t.Errorf("unexpected log line %q", out)
	}
}

func TestRenderLogger(t *testing.T) {
	var buf bytes.Buffer
	rl := NewRenderLogger(New(Config{Level: slog.LevelDebug, Output: &buf}))
	ctx := context.Background()

	rl.LogRendered(ctx, "id-1", "users.json", "full", 4, 2, 15*time.Millisecond)
	rl.LogFailed(ctx, "id-2", "users.json", "full", errors.New("gone"), "file_missing", time.Millisecond)
	rl.LogFailed(ctx, "id-3", "users.json", "full", errors.New("disk"), "internal", time.Millisecond)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), buf.String())
	}
	checks := []struct{ level, id string }{
		{"level=INFO", "render_id=id-1"},
		{"level=WARN", "render_id=id-2"},
		{"level=ERROR", "render_id=id-3"},
	}
	for i, c := range checks {
		if !strings.Contains(lines[i], c.level) || !strings.Contains(lines[i], c.id) {
			t.Errorf("line %d = %q, want %s and %s", i, lines[i], c.level, c.id)
		}
	}
	if !strings.Contains(lines[1], "error_kind=file_missing") {
		t.Errorf("failed render should carry its kind: %q", lines[1])
	}
}
