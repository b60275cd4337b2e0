package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestDefaultIsSilent(t *testing.T) {
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Fatalf("default logger should be disabled")
	}
}

func TestSet(t *testing.T) {
	var buf bytes.Buffer
	Set(slog.New(slog.NewTextHandler(&buf, nil)))
	defer Set(nil)
	Logger().Info("export done", "frames", 3)
	if !strings.Contains(buf.String(), "frames=3") {
		t.Fatalf("unexpected log output %q", buf.String())
	}
	Set(nil)
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Fatalf("Set(nil) should restore the silent logger")
	}
}
