package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestLoggerInit(t *testing.T) {
	err := Init()
	if err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	logger := Get()
	if logger == nil {
		t.Fatal("logger is nil after initialization")
	}

	var buf bytes.Buffer
	if err := InitWith(&buf, FormatJSON); err != nil {
		t.Fatalf("failed to initialize json logger: %v", err)
	}
	Get().Info(context.Background(), "slate finished", Int("replications", 10))
	if !strings.Contains(buf.String(), `"replications":10`) {
		t.Fatalf("json output missing field: %s", buf.String())
	}
}

func TestLoggerFormats(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, FormatJSON, slog.LevelDebug)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	l.Named("slate").Debug(context.Background(), "replication excluded",
		String("kind", "bullpen_exhausted"), Bool("recoverable", true), Duration("took", time.Millisecond), Int64("index", 7))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	group, ok := entry["slate"].(map[string]any)
	if !ok {
		t.Fatalf("missing group in %v", entry)
	}
	if group["kind"] != "bullpen_exhausted" || group["recoverable"] != true {
		t.Fatalf("unexpected fields %v", group)
	}
	if _, ok := group["source"]; !ok {
		t.Fatalf("missing source in %v", group)
	}

	if _, err := New(&buf, "xml", nil); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, FormatText, slog.LevelWarn)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	l.Info(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level: %s", buf.String())
	}
	l.Warn(context.Background(), "shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("warn missing: %s", buf.String())
	}

	for _, s := range []string{"debug", "INFO", " warn ", "warning", "error", ""} {
		if _, err := ParseLevel(s); err != nil {
			t.Errorf("ParseLevel(%q): %v", s, err)
		}
	}
	if err := SetLevelString("loud"); err == nil {
		t.Error("expected an error for an unknown level")
	}
}

func TestLoggerNamed(t *testing.T) {
	err := Init()
	if err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	namedLogger := Named("test")
	if namedLogger == nil {
		t.Fatal("named logger is nil")
	}
	namedLogger.Info(context.Background(), "test message")

	NewNop().Error(context.Background(), "dropped", Error(context.Canceled))
}
