package log

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"
)

var allLevels = []Level{
	LevelEmergency,
	LevelAlert,
	LevelCritical,
	LevelError,
	LevelWarning,
	LevelNotice,
	LevelInfo,
	LevelDebug,
}

// TestLogger_LevelFiltering logs every level against a logger set to every level
// and verifies only entries at or above the logger's severity reach the handler.
func TestLogger_LevelFiltering(t *testing.T) {
	msg := "test message"
	fields := []Field{String("test_key", "test_value")}

	for _, loggingLevel := range allLevels {
		t.Run(loggingLevel.String(), func(t *testing.T) {
			var testbuf bytes.Buffer
			logger := NewLogger(loggingLevel, &bufferHandler{buf: &testbuf})

			for _, level := range allLevels {
				logger.Log(level, msg, fields...)

				var expect string
				if level <= loggingLevel {
					expect = fmt.Sprintf("%s %s %s=%s \n", level.String(), msg, fields[0].Key, fields[0].Value)
				}

				if got := testbuf.String(); got != expect {
					t.Errorf("logger %s, entry %s: expected %q, got %q", loggingLevel, level, expect, got)
				}
				testbuf.Reset()
			}
		})
	}
}

func TestLogger_WithPrefixesFields(t *testing.T) {
	var testbuf bytes.Buffer
	logger := NewLogger(LevelDebug, &bufferHandler{buf: &testbuf})

	child := logger.With(String("topic", "prices"))
	child.Log(LevelInfo, "published", Uint64("receivers", 3))

	expect := "INFO published topic=prices receivers=3 \n"
	if got := testbuf.String(); got != expect {
		t.Fatalf("expected %q, got %q", expect, got)
	}

	testbuf.Reset()
	logger.Log(LevelInfo, "parent")
	if got := testbuf.String(); got != "INFO parent \n" {
		t.Fatalf("parent logger should not inherit child fields, got %q", got)
	}
}

func TestLogger_SetLevelIsShared(t *testing.T) {
	var testbuf bytes.Buffer
	logger := NewLogger(LevelDebug, &bufferHandler{buf: &testbuf})
	child := logger.With(String("k", "v"))

	logger.SetLevel(LevelError)
	child.Log(LevelInfo, "dropped")

	if testbuf.Len() != 0 {
		t.Fatalf("expected child to honor parent level, got %q", testbuf.String())
	}
}

func TestLevelFromString(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		" warn ":  LevelWarning,
		"Warning": LevelWarning,
		"error":   LevelError,
		"bogus":   LevelInfo,
	}

	for in, want := range tests {
		if got := LevelFromString(in); got != want {
			t.Errorf("LevelFromString(%q): want %s, got %s", in, want, got)
		}
	}
}

func TestHandler_RoutesBySeverity(t *testing.T) {
	var stdout, stderr bytes.Buffer
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	h := NewHandler(WithWriters(&stdout, &stderr))
	h.(*textHandler).now = func() time.Time { return fixed }

	h.Handle(LevelInfo, "hello", []Field{String("who", "the world")})
	h.Handle(LevelWarning, "lagging", []Field{Uint64("skipped", 4)})

	wantOut := "2024-01-02T03:04:05Z [INFO] hello who=\"the world\"\n"
	if got := stdout.String(); got != wantOut {
		t.Errorf("stdout: expected %q, got %q", wantOut, got)
	}

	wantErr := "2024-01-02T03:04:05Z [WARNING] lagging skipped=4\n"
	if got := stderr.String(); got != wantErr {
		t.Errorf("stderr: expected %q, got %q", wantErr, got)
	}
}

func TestHandler_Disabled(t *testing.T) {
	var stdout bytes.Buffer
	h := NewHandler(WithStdOutWriter(&stdout), WithEnabled(false))
	h.Handle(LevelInfo, "hidden", nil)

	if stdout.Len() != 0 {
		t.Fatalf("expected no output from a disabled handler, got %q", stdout.String())
	}
}

type bufferHandler struct {
	buf io.Writer
}

func (h *bufferHandler) Handle(level Level, message string, fields []Field) {
	var b strings.Builder
	b.WriteString(level.String())
	b.WriteString(" ")
	b.WriteString(message)
	b.WriteString(" ")
	for _, field := range fields {
		b.WriteString(field.Key + "=" + field.Value + " ")
	}
	b.WriteString("\n")
	h.buf.Write([]byte(b.String()))
}
