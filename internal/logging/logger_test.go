package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewWithWriter_Formats(t *testing.T) {
	var jsonBuf bytes.Buffer
	NewWithWriter(&jsonBuf, "info", "json").Info("hello", "k", "v")
	if !strings.Contains(jsonBuf.String(), `"msg":"hello"`) || !strings.Contains(jsonBuf.String(), `"k":"v"`) {
		t.Fatalf("unexpected json output: %s", jsonBuf.String())
	}

	var textBuf bytes.Buffer
	NewWithWriter(&textBuf, "info", "text").Info("hello", "k", "v")
	if !strings.Contains(textBuf.String(), "msg=hello") || !strings.Contains(textBuf.String(), "k=v") {
		t.Fatalf("unexpected text output: %s", textBuf.String())
	}
}

func TestNewWithWriter_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "warn", "text")
	l.Info("dropped")
	l.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("info line should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "kept") {
		t.Fatalf("warn line missing: %s", out)
	}
}
