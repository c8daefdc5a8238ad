package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name  string
		level log.Level
		emit  func(*log.Logger)
		want  bool
	}{
		{"info at info", log.InfoLevel, func(l *log.Logger) { l.Info("layout ready") }, true},
		{"debug at info", log.InfoLevel, func(l *log.Logger) { l.Debug("cache miss") }, false},
		{"debug at debug", LogDebug, func(l *log.Logger) { l.Debug("cache miss") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.emit(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.want {
				t.Errorf("wrote output = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, log.InfoLevel)).done("Rendered flows.svg")

	out := buf.String()
	if !strings.Contains(out, "Rendered flows.svg (") || !strings.Contains(out, "s)") {
		t.Errorf("done() = %q, want message with elapsed time", out)
	}
}

func TestLoggerFromContext(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, log.InfoLevel)

	if got := loggerFromContext(withLogger(context.Background(), l)); got != l {
		t.Error("attached logger not returned")
	}
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("bare context should fall back to the default logger")
	}
}

func TestCommandsLogThroughContext(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	input := writeFile(t, dir, "flows.json", flowsJSON)

	var logs bytes.Buffer
	root := New(&logs, log.InfoLevel).RootCommand()
	root.SetArgs([]string{"render", input, "--no-cache", "-f", "svg", "-o", filepath.Join(dir, "out.svg")})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("render: %v", err)
	}

	out := logs.String()
	for _, want := range []string{"computed layout", "cmd=render", "input="} {
		if !strings.Contains(out, want) {
			t.Errorf("logs missing %q:\n%s", want, out)
		}
	}
}
