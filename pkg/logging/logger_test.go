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

func TestNewLogger(t *testing.T) {
	logger := NewLogger()
	if logger == nil || logger.Logger == nil {
		t.Fatal("NewLogger() returned nil logger")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected slog.Level
	}{
		{"debug level", "DEBUG", slog.LevelDebug},
		{"info level", "INFO", slog.LevelInfo},
		{"warn level", "WARN", slog.LevelWarn},
		{"warning level", "WARNING", slog.LevelWarn},
		{"error level", "ERROR", slog.LevelError},
		{"lowercase debug", "debug", slog.LevelDebug},
		{"padded", "  error ", slog.LevelError},
		{"invalid level", "LOUD", slog.LevelInfo},
		{"empty value", "", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLogLevelFromEnv(t *testing.T) {
	t.Setenv(LevelEnvVar, "warn")
	if got := getLogLevelFromEnv(); got != slog.LevelWarn {
		t.Errorf("getLogLevelFromEnv() = %v, want %v", got, slog.LevelWarn)
	}
}

func TestRunID(t *testing.T) {
	t.Run("generate", func(t *testing.T) {
		id1 := GenerateRunID()
		id2 := GenerateRunID()
		if len(id1) != 16 {
			t.Errorf("GenerateRunID() length = %d, want 16", len(id1))
		}
		if id1 == id2 {
			t.Error("GenerateRunID() returned duplicate IDs")
		}
	})

	t.Run("explicit", func(t *testing.T) {
		ctx := WithRunID(context.Background(), "run-42")
		if got := GetRunID(ctx); got != "run-42" {
			t.Errorf("GetRunID() = %q, want %q", got, "run-42")
		}
	})

	t.Run("absent", func(t *testing.T) {
		if got := GetRunID(context.Background()); got != "" {
			t.Errorf("GetRunID() = %q, want empty", got)
		}
	})

	t.Run("auto generated", func(t *testing.T) {
		ctx := WithRunID(context.Background(), "")
		if got := GetRunID(ctx); len(got) != 16 {
			t.Errorf("auto-generated run ID %q has wrong length", got)
		}
	})
}

func TestSanitizeAttributes(t *testing.T) {
	tests := []struct {
		name     string
		attr     slog.Attr
		expected string
	}{
		{"password field", slog.String("password", "hunter2"), "[REDACTED]"},
		{"token field", slog.String("api_token", "abc"), "[REDACTED]"},
		{"case insensitive", slog.String("SECRET", "abc"), "[REDACTED]"},
		{"ship name", slog.String("ship", "albatross"), "albatross"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := sanitizeAttributes(nil, tt.attr)
			if result.Value.String() != tt.expected {
				t.Errorf("sanitizeAttributes() = %q, want %q", result.Value.String(), tt.expected)
			}
		})
	}
}

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log JSON %q: %v", buf.String(), err)
	}
	return entry
}

func TestLoggerMethods(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, slog.LevelDebug)
	ctx := WithRunID(context.Background(), "run-1")

	t.Run("info", func(t *testing.T) {
		buf.Reset()
		logger.Info(ctx, "ship spawned", "ship", "albatross")
		entry := decodeEntry(t, &buf)
		if entry["level"] != "INFO" || entry["msg"] != "ship spawned" {
			t.Errorf("unexpected entry %v", entry)
		}
		if entry["run_id"] != "run-1" {
			t.Errorf("run_id = %v, want run-1", entry["run_id"])
		}
		if entry["ship"] != "albatross" {
			t.Errorf("ship = %v, want albatross", entry["ship"])
		}
	})

	t.Run("error", func(t *testing.T) {
		buf.Reset()
		logger.Error(ctx, "spawn failed", errors.New("mass must be positive"))
		entry := decodeEntry(t, &buf)
		if entry["level"] != "ERROR" {
			t.Errorf("level = %v, want ERROR", entry["level"])
		}
		if entry["error"] != "mass must be positive" {
			t.Errorf("error = %v", entry["error"])
		}
	})

	t.Run("debug", func(t *testing.T) {
		buf.Reset()
		logger.Debug(ctx, "tick")
		if entry := decodeEntry(t, &buf); entry["level"] != "DEBUG" {
			t.Errorf("level = %v, want DEBUG", entry["level"])
		}
	})

	t.Run("with attributes", func(t *testing.T) {
		buf.Reset()
		logger.With("system", "navigation").Warn(ctx, "skipped")
		entry := decodeEntry(t, &buf)
		if entry["system"] != "navigation" || entry["level"] != "WARN" {
			t.Errorf("unexpected entry %v", entry)
		}
	})
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, slog.LevelInfo)
	logger.Debug(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Errorf("debug record written at INFO level: %s", buf.String())
	}
}

func TestLogWithoutRunID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, slog.LevelInfo)
	logger.Info(context.Background(), "message")
	if strings.Contains(buf.String(), "run_id") {
		t.Error("log should not contain run_id when none is set in context")
	}
}

func TestDiscard(t *testing.T) {
	// Must not panic and must not write anywhere observable.
	Discard().Error(context.Background(), "dropped", errors.New("x"))
}

func TestWrapError(t *testing.T) {
	if WrapError(nil, "context") != nil {
		t.Error("WrapError(nil) should return nil")
	}

	base := errors.New("base")
	wrapped := WrapError(base, "spawn %s", "albatross")
	if wrapped.Error() != "spawn albatross: base" {
		t.Errorf("WrapError() = %q", wrapped.Error())
	}
	if !errors.Is(wrapped, base) {
		t.Error("WrapError() should preserve the original error")
	}
}
