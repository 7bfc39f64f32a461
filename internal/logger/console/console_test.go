package console

import (
	"bytes"
	"strings"
	"testing"
)

func TestConsoleLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLogger(ConsoleLoggerParams{Output: &buf})

	l.Debug("hidden")
	l.Info("graph built", "edges", 3)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug message logged at info level: %q", out)
	}
	if !strings.Contains(out, "graph built") || !strings.Contains(out, "edges=3") {
		t.Errorf("unexpected output %q", out)
	}

	buf.Reset()
	l = NewConsoleLogger(ConsoleLoggerParams{Debug: true, Output: &buf})
	l.Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("debug message missing: %q", buf.String())
	}
}
