package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

// captureLogOutput captures log output for testing by temporarily
// redirecting the logger to write to a buffer
func captureLogOutput(f func()) string {
	var buf bytes.Buffer

	oldLogger := defaultLogger
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	defaultLogger = slog.New(handler)

	f()

	defaultLogger = oldLogger
	return buf.String()
}

// captureLogOutputWithInit reinitializes the logger against a buffer so the
// InitLogger ReplaceAttr logic is exercised.
func captureLogOutputWithInit(level Level, format Format, f func()) string {
	var buf bytes.Buffer
	InitLoggerTo(&buf, level, format)
	f()
	InitLogger(LevelInfo, FormatJSON)
	return buf.String()
}

func decodeLine(t *testing.T, output string) map[string]any {
	t.Helper()
	var entry map[string]any
	line := strings.TrimSpace(strings.Split(strings.TrimSpace(output), "\n")[0])
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("decode %q: %v", line, err)
	}
	return entry
}

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name   string
		level  Level
		format Format
	}{
		{"Debug level JSON format", LevelDebug, FormatJSON},
		{"Warn level JSON format", LevelWarn, FormatJSON},
		{"Error level JSON format", LevelError, FormatJSON},
		{"Info level Text format", LevelInfo, FormatText},
		{"Default level (invalid value)", Level(999), FormatJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			InitLogger(tt.level, tt.format)
			if GetLogger() == nil {
				t.Error("Expected logger to be initialized, got nil")
			}
		})
	}
	InitLogger(LevelInfo, FormatJSON)
}

func TestLevelFiltering(t *testing.T) {
	output := captureLogOutputWithInit(LevelWarn, FormatJSON, func() {
		Info("hidden")
		Warn("shown")
	})
	if strings.Contains(output, "hidden") {
		t.Error("Expected info message to be filtered at warn level")
	}
	if !strings.Contains(output, "shown") {
		t.Error("Expected warn message in output")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"", LevelInfo, false},
		{"INFO", LevelInfo, false},
		{"warning", LevelWarn, false},
		{" error ", LevelError, false},
		{"loud", LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("text"); err != nil || f != FormatText {
		t.Errorf("ParseFormat(text) = %v, %v", f, err)
	}
	if f, err := ParseFormat(""); err != nil || f != FormatJSON {
		t.Errorf("ParseFormat(\"\") = %v, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) expected error")
	}
}

func TestSessionID(t *testing.T) {
	ctx := context.Background()
	if got := GetSessionID(ctx); got != "" {
		t.Errorf("GetSessionID() = %q, want empty", got)
	}
	ctx = WithSessionID(ctx, "sess-1")
	if got := GetSessionID(ctx); got != "sess-1" {
		t.Errorf("GetSessionID() = %q, want %q", got, "sess-1")
	}

	output := captureLogOutput(func() {
		InfoContext(ctx, "with session")
	})
	if entry := decodeLine(t, output); entry["session_id"] != "sess-1" {
		t.Errorf("session_id = %v, want sess-1", entry["session_id"])
	}
}

func TestLoggingFunctions(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name  string
		level string
		fn    func()
	}{
		{"Debug", "DEBUG", func() { Debug("m") }},
		{"Info", "INFO", func() { Info("m") }},
		{"Warn", "WARN", func() { Warn("m") }},
		{"Error", "ERROR", func() { Error("m") }},
		{"DebugContext", "DEBUG", func() { DebugContext(ctx, "m") }},
		{"InfoContext", "INFO", func() { InfoContext(ctx, "m") }},
		{"WarnContext", "WARN", func() { WarnContext(ctx, "m") }},
		{"ErrorContext", "ERROR", func() { ErrorContext(ctx, "m") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := decodeLine(t, captureLogOutput(tt.fn))
			if entry["level"] != tt.level {
				t.Errorf("level = %v, want %s", entry["level"], tt.level)
			}
		})
	}
}

func TestDomainHelpers(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	tests := []struct {
		name string
		msg  string
		key  string
		val  any
		fn   func()
	}{
		{"OperationApplied", "operation_applied", "kind", "ALIGN_TARGET_TOKEN", func() {
			OperationApplied(ctx, "tit.1.1", "ALIGN_TARGET_TOKEN", "index", 2)
		}},
		{"OperationFailed", "operation_failed", "error", "boom", func() {
			OperationFailed(ctx, "tit.1.1", "MERGE", boom)
		}},
		{"RepairPerformed", "verse_repaired", "changed", true, func() {
			RepairPerformed(ctx, "tit.1.1", true)
		}},
		{"CorruptionDetected", "verse_reset", "ref", "tit.1.2", func() {
			CorruptionDetected(ctx, "tit.1.2", boom)
		}},
		{"MissingContext", "missing_context", "action", "align", func() {
			MissingContext(ctx, "align")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := decodeLine(t, captureLogOutput(tt.fn))
			if entry["msg"] != tt.msg {
				t.Errorf("msg = %v, want %s", entry["msg"], tt.msg)
			}
			if entry[tt.key] != tt.val {
				t.Errorf("%s = %v, want %v", tt.key, entry[tt.key], tt.val)
			}
		})
	}
}

func TestReplaceAttrTimestamp(t *testing.T) {
	output := captureLogOutputWithInit(LevelInfo, FormatJSON, func() {
		Info("timestamp test")
	})
	entry := decodeLine(t, output)
	ts, ok := entry["time"].(string)
	if !ok || !strings.Contains(ts, "T") {
		t.Errorf("time = %v, want RFC3339", entry["time"])
	}
	if strings.Contains(ts, ".") {
		t.Errorf("time = %q, want no fractional seconds", ts)
	}
}

func TestTextFormat(t *testing.T) {
	output := captureLogOutputWithInit(LevelInfo, FormatText, func() {
		Info("test message text", "key", "value")
	})
	if !strings.Contains(output, "key=value") {
		t.Errorf("output = %q, want key=value", output)
	}
}

func TestInit(t *testing.T) {
	if defaultLogger == nil {
		t.Error("Expected defaultLogger to be initialized by init()")
	}
}

func TestLevelConstants(t *testing.T) {
	if LevelDebug >= LevelInfo || LevelInfo >= LevelWarn || LevelWarn >= LevelError {
		t.Error("Expected LevelDebug < LevelInfo < LevelWarn < LevelError")
	}
}
