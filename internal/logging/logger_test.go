package logging

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

var recordRe = regexp.MustCompile(`^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\] (DEBUG|INFO|WARN|ERROR): .*$`)

func tempLog(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.log")
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(out) == 1 && out[0] == "" {
		return nil
	}
	return out
}

func TestRecordFormat(t *testing.T) {
	path := tempLog(t)
	l, err := New(path, LevelDebug)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer l.Close()

	l.Infof("scheduler started with %d tasks", 3)

	lines := readLines(t, path)
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	if !recordRe.MatchString(lines[0]) {
		t.Errorf("record %q does not match the expected format", lines[0])
	}
	if !strings.HasSuffix(lines[0], "INFO: scheduler started with 3 tasks") {
		t.Errorf("unexpected record body: %q", lines[0])
	}
}

func TestSeverityGate(t *testing.T) {
	path := tempLog(t)
	l, err := New(path, LevelWarn)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer l.Close()

	l.Debugf("dropped")
	l.Infof("dropped")
	l.Warnf("kept warn")
	l.Errorf("kept error")

	lines := readLines(t, path)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %v", len(lines), lines)
	}
	if !strings.Contains(lines[0], "WARN: kept warn") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.Contains(lines[1], "ERROR: kept error") {
		t.Errorf("line 1 = %q", lines[1])
	}
}

func TestSetLevelAndEnable(t *testing.T) {
	path := tempLog(t)
	l, err := New(path, LevelError)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer l.Close()

	l.Infof("dropped")
	l.SetLevel(LevelDebug)
	l.Debugf("kept")
	l.Enable(false)
	l.Errorf("dropped while disabled")
	l.Enable(true)
	l.Errorf("kept again")

	lines := readLines(t, path)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %v", len(lines), lines)
	}
}

func TestReopenSwitchesFile(t *testing.T) {
	first := tempLog(t)
	second := first + ".next"

	l, err := New(first, LevelDebug)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer l.Close()

	l.Infof("to first")
	if err := l.Reopen(second); err != nil {
		t.Fatalf("Reopen: %v", err)
	}
	l.Infof("to second")

	if got := len(readLines(t, first)); got != 1 {
		t.Errorf("first file has %d lines, want 1", got)
	}
	if got := len(readLines(t, second)); got != 1 {
		t.Errorf("second file has %d lines, want 1", got)
	}
}

func TestDefaultInitAndGlobals(t *testing.T) {
	path := tempLog(t)
	if err := Init(path, LevelInfo); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer Destroy()

	Debugf("dropped by gate")
	Infof("via global")
	Warnf("warned")

	lines := readLines(t, path)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %v", len(lines), lines)
	}
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}
