package internal

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerPrefix(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger("memstore")
	l.SetOutput(&buf)
	l.Warn("skipping", "x")
	got := buf.String()
	if !strings.HasPrefix(got, "nc4meta/memstore: ") {
		t.Error("missing prefix:", got)
	}
	if !strings.Contains(got, "WARN skipping x") {
		t.Error("missing message:", got)
	}
}

func TestLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger("")
	l.SetOutput(&buf)
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Error("info logged at default level:", buf.String())
	}
	old := l.SetLogLevel(LevelInfo)
	if old != LogLevelDefault {
		t.Error("old level", old)
	}
	l.Infof("found dataset %s", "v")
	if !strings.HasPrefix(buf.String(), "nc4meta: ") ||
		!strings.Contains(buf.String(), "INFO found dataset v") {
		t.Error("unexpected output:", buf.String())
	}
}

func TestLevelOf(t *testing.T) {
	for _, tc := range []struct {
		n    int
		want LogLevel
	}{
		{-1, LevelFatal},
		{0, LevelFatal},
		{1, LevelError},
		{2, LevelWarn},
		{3, LevelInfo},
		{9, LevelInfo},
	} {
		if got := LevelOf(tc.n); got != tc.want {
			t.Errorf("LevelOf(%d) = %d, want %d", tc.n, got, tc.want)
		}
	}
}
