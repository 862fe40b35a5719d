package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	t.Run("with default output", func(t *testing.T) {
		logger := NewLogger(Config{Level: InfoLevel})
		if logger == nil {
			t.Fatal("NewLogger returned nil")
		}
	})

	t.Run("with custom output", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := NewLogger(Config{Level: InfoLevel, Output: buf})
		if logger.writer != buf {
			t.Error("Logger should use provided output writer")
		}
	})
}

func TestLogLevelFiltering(t *testing.T) {
	tests := []struct {
		name      string
		configLvl LogLevel
		logLvl    LogLevel
		shouldLog bool
	}{
		{"debug logs debug", DebugLevel, DebugLevel, true},
		{"debug logs error", DebugLevel, ErrorLevel, true},
		{"info skips debug", InfoLevel, DebugLevel, false},
		{"info logs info", InfoLevel, InfoLevel, true},
		{"warn skips info", WarnLevel, InfoLevel, false},
		{"warn logs warn", WarnLevel, WarnLevel, true},
		{"error skips warn", ErrorLevel, WarnLevel, false},
		{"error logs error", ErrorLevel, ErrorLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := NewLogger(Config{Level: tt.configLvl, Output: buf, Format: HumanFormat})

			logger.log(tt.logLvl, "test message", nil)

			got := buf.Len() > 0
			if got != tt.shouldLog {
				t.Errorf("logged = %v, want %v", got, tt.shouldLog)
			}
		})
	}
}

func TestJSONFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(Config{Level: DebugLevel, Output: buf, Format: JSONFormat})

	logger.Info("hello", Fields{"language": "python", "count": 3})

	var entry struct {
		Timestamp string                 `json:"timestamp"`
		Level     string                 `json:"level"`
		Message   string                 `json:"message"`
		Fields    map[string]interface{} `json:"fields"`
	}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if entry.Level != "info" {
		t.Errorf("level = %q, want %q", entry.Level, "info")
	}
	if entry.Message != "hello" {
		t.Errorf("message = %q, want %q", entry.Message, "hello")
	}
	if entry.Fields["language"] != "python" {
		t.Errorf("fields[language] = %v, want python", entry.Fields["language"])
	}
}

func TestHumanFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(Config{Level: DebugLevel, Output: buf, Format: HumanFormat})

	logger.Warn("slow request", Fields{"method": "textDocument/hover", "ms": 1200})

	out := buf.String()
	if !strings.Contains(out, "[warn]") {
		t.Errorf("output missing level marker: %q", out)
	}
	if !strings.Contains(out, "slow request") {
		t.Errorf("output missing message: %q", out)
	}
	if !strings.Contains(out, "method=textDocument/hover") {
		t.Errorf("output missing field: %q", out)
	}
}

func TestWith(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(Config{Level: DebugLevel, Output: buf, Format: JSONFormat})
	child := logger.With(Fields{"session": "abc123"})

	child.Info("tool call", Fields{"tool": "get_outline"})

	var entry struct {
		Fields map[string]interface{} `json:"fields"`
	}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if entry.Fields["session"] != "abc123" {
		t.Errorf("base field not attached: %v", entry.Fields)
	}
	if entry.Fields["tool"] != "get_outline" {
		t.Errorf("call field not attached: %v", entry.Fields)
	}

	// Parent logger must not inherit the child's fields
	buf.Reset()
	logger.Info("plain", nil)
	if strings.Contains(buf.String(), "session") {
		t.Error("parent logger leaked child fields")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", DebugLevel},
		{"info", InfoLevel},
		{"warn", WarnLevel},
		{"error", ErrorLevel},
		{"", InfoLevel},
		{"verbose", InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
