package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"gopkg.in/natefinch/lumberjack.v2"

	"imgcrush/internal/config"
)

func TestNewLogger_NoFile(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LogFile = ""
	l, err := NewLogger(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	l.Info("test message")
}

func TestNewLogger_WithFile(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Color = config.ColorNever
	cfg.LogFile = filepath.Join(dir, "logs", "compression.log")
	l, err := NewLogger(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	l.Warn("to file %d", 7)
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
	b, _ := os.ReadFile(cfg.LogFile)
	if !bytes.Contains(b, []byte("WARN")) || !bytes.Contains(b, []byte("to file 7")) {
		t.Errorf("log file content: %s", string(b))
	}
}

func TestDebugRespectsVerbose(t *testing.T) {
	var quiet, loud bytes.Buffer
	New(&quiet, false).Debug("hidden")
	New(&loud, true).Debug("shown")

	if quiet.Len() != 0 {
		t.Errorf("non-verbose logger wrote %q", quiet.String())
	}
	if !strings.Contains(loud.String(), "DEBUG - shown") {
		t.Errorf("verbose logger wrote %q", loud.String())
	}
}

func TestConcurrentLinesStayWhole(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, false)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l.Info("worker %02d done", i)
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 16 {
		t.Fatalf("got %d lines, want 16", len(lines))
	}
	for _, line := range lines {
		if !strings.Contains(line, "INFO - worker ") || !strings.HasSuffix(line, " done") {
			t.Errorf("mangled line: %q", line)
		}
	}
}

func TestQuietKeepsWarningsOnConsole(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, true)
	l.SetQuiet(true)
	l.Info("info line")
	l.Success("success line")
	l.Debug("debug line")
	l.Warn("warn line")
	l.Error("error line")

	out := buf.String()
	for _, hidden := range []string{"info line", "success line", "debug line"} {
		if strings.Contains(out, hidden) {
			t.Errorf("quiet console printed %q", hidden)
		}
	}
	if !strings.Contains(out, "WARN - warn line") || !strings.Contains(out, "ERROR - error line") {
		t.Errorf("quiet console dropped warnings: %q", out)
	}

	l.SetQuiet(false)
	l.Info("back")
	if !strings.Contains(buf.String(), "INFO - back") {
		t.Errorf("console stayed quiet: %q", buf.String())
	}
}

func TestQuietStillWritesFile(t *testing.T) {
	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "compression.log")
	l := newLogger(&console, false, false, &lumberjack.Logger{Filename: path})
	l.SetQuiet(true)
	l.Success("saved %d bytes", 42)
	l.Info("plain info")
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	if console.Len() != 0 {
		t.Errorf("quiet console printed %q", console.String())
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "SUCCESS - saved 42 bytes") || !strings.Contains(string(b), "INFO - plain info") {
		t.Errorf("log file content: %s", string(b))
	}
}

func TestLineLayout(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false).Success("done")

	line := strings.TrimSuffix(buf.String(), "\n")
	parts := strings.SplitN(line, " - ", 3)
	if len(parts) != 3 || parts[1] != "SUCCESS" || parts[2] != "done" {
		t.Fatalf("unexpected line %q", line)
	}
	if len(parts[0]) != len("2006-01-02 15:04:05") {
		t.Errorf("unexpected timestamp %q", parts[0])
	}
}
