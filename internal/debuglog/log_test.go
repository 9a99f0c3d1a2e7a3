package debuglog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"DEBUG", LevelDebug},
		{"debug", LevelDebug},
		{" info ", LevelInfo},
		{"WARN", LevelWarn},
		{"WARNING", LevelWarn},
		{"ERROR", LevelError},
		{"OFF", LevelOff},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLogLevel(tt.in); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LevelOff, "OFF"},
		{LogLevel(42), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("LogLevel(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")
	if err := Setup(LevelWarn, logPath); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	defer func() {
		Close()
		SetLevel(LevelOff)
	}()

	Debugf("debug line")
	Infof("info line")
	Warnf("warn line")
	Errorf("error line")

	Close()
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	content := string(data)

	if strings.Contains(content, "debug line") || strings.Contains(content, "info line") {
		t.Errorf("lines below WARN should be filtered, got:\n%s", content)
	}
	if !strings.Contains(content, "[WARN] warn line") {
		t.Errorf("warn line missing from log:\n%s", content)
	}
	if !strings.Contains(content, "[ERROR] error line") {
		t.Errorf("error line missing from log:\n%s", content)
	}
}

func TestSetupOffDisablesLogging(t *testing.T) {
	if err := Setup(LevelOff); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	// Must not panic with no writer configured.
	Infof("into the void")
}

func TestWithFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")
	if err := Setup(LevelInfo, logPath); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	defer func() {
		Close()
		SetLevel(LevelOff)
	}()

	WithFields(map[string]interface{}{"page": "p1"}).Infof("processed")

	Close()
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "processed [page=p1]") {
		t.Errorf("field context missing from log line:\n%s", data)
	}
}
