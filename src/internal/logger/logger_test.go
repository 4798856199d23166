package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug, "INFO": slog.LevelInfo, "warn": slog.LevelWarn,
		"warning": slog.LevelWarn, "error": slog.LevelError, "": slog.LevelInfo, "loud": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "warn").With("doi", "10.1/x")
	l.Info("hidden")
	l.Warn("shown", "reason", "missing year")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") || !strings.Contains(out, "doi=10.1/x") {
		t.Fatalf("unexpected output: %q", out)
	}
	l.Error("failure", "err", "boom")
	if !strings.Contains(buf.String(), "level=ERROR") || !strings.Contains(buf.String(), "err=boom") {
		t.Fatalf("error line missing: %q", buf.String())
	}
}
