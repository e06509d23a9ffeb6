package logger

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// TestParseLevel covers level name parsing.
func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected slog.Level
	}{
		{"debug", "debug", slog.LevelDebug},
		{"info", "info", slog.LevelInfo},
		{"warn", "warn", slog.LevelWarn},
		{"error", "error", slog.LevelError},
		{"unknown defaults to info", "unknown", slog.LevelInfo},
		{"empty defaults to info", "", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseLevel(tt.input)
			if got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

// TestLevelTag covers the fixed-width level tags.
func TestLevelTag(t *testing.T) {
	tests := []struct {
		name     string
		level    slog.Level
		expected string
	}{
		{"error", slog.LevelError, "ERROR"},
		{"warn", slog.LevelWarn, "WARN "},
		{"info", slog.LevelInfo, "INFO "},
		{"debug", slog.LevelDebug, "DEBUG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := levelTag(tt.level)
			if got != tt.expected {
				t.Errorf("levelTag(%v) = %q, want %q", tt.level, got, tt.expected)
			}
		})
	}
}

// TestFormatAttr covers attribute formatting.
func TestFormatAttr(t *testing.T) {
	tests := []struct {
		name     string
		group    string
		attr     slog.Attr
		expected string
	}{
		{
			name:     "no group",
			group:    "",
			attr:     slog.String("key", "value"),
			expected: "  key=value",
		},
		{
			name:     "grouped",
			group:    "group",
			attr:     slog.String("key", "value"),
			expected: "  group.key=value",
		},
		{
			name:     "integer value",
			group:    "",
			attr:     slog.Int("port", 25565),
			expected: "  port=25565",
		},
		{
			name:     "vector fixed width",
			attr:     slog.Any("position", mgl64.Vec3{0, 1, -2.5}),
			expected: "  position=(0.000, 1.000, -2.500)",
		},
		{
			name:     "float three decimals",
			attr:     slog.Float64("dt", 1.0/60),
			expected: "  dt=0.017",
		},
		{
			name:     "string with spaces quoted",
			attr:     slog.String("script", "default walk"),
			expected: `  script="default walk"`,
		},
		{
			name:     "empty string quoted",
			attr:     slog.String("obstacle", ""),
			expected: `  obstacle=""`,
		},
		{
			name:     "error quoted",
			attr:     slog.Any("error", errors.New("scene: no obstacles")),
			expected: `  error="scene: no obstacles"`,
		},
		{
			name:     "duration",
			attr:     slog.Duration("tick", 50*time.Millisecond),
			expected: "  tick=50ms",
		},
		{
			name:     "group flattened",
			group:    "actor",
			attr:     slog.Group("state", slog.Bool("on_ground", true), slog.Int("frame", 3)),
			expected: "  actor.state.on_ground=true  actor.state.frame=3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatAttr(tt.group, tt.attr)
			if got != tt.expected {
				t.Errorf("formatAttr(%q, %v) = %q, want %q", tt.group, tt.attr, got, tt.expected)
			}
		})
	}
}

// TestConsoleHandlerEnabled covers level filtering.
func TestConsoleHandlerEnabled(t *testing.T) {
	h := newConsoleHandler(io.Discard, slog.LevelInfo)

	if !h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be enabled")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("error should be enabled")
	}
	if h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug should be disabled")
	}
}

// TestConsoleHandlerHandle covers the console line layout.
func TestConsoleHandlerHandle(t *testing.T) {
	var buf bytes.Buffer
	h := newConsoleHandler(&buf, slog.LevelDebug)

	record := slog.NewRecord(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), slog.LevelInfo, "test message", 0)
	record.AddAttrs(slog.String("key", "value"))

	err := h.Handle(context.Background(), record)
	if err != nil {
		t.Fatalf("Handle() returned error: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "12:00:00") {
		t.Errorf("output should contain the timestamp, got: %q", output)
	}
	if !strings.Contains(output, "INFO") {
		t.Errorf("output should contain the level tag, got: %q", output)
	}
	if !strings.Contains(output, "test message") {
		t.Errorf("output should contain the message, got: %q", output)
	}
	if !strings.Contains(output, "key=value") {
		t.Errorf("output should contain the attrs, got: %q", output)
	}
	if !strings.HasSuffix(output, "\n") {
		t.Errorf("output should end with a newline, got: %q", output)
	}
}

// TestConsoleHandlerWithAttrs checks WithAttrs returns a new handler.
func TestConsoleHandlerWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := newConsoleHandler(&buf, slog.LevelDebug)

	h2 := h.WithAttrs([]slog.Attr{slog.String("component", "feed")})

	if len(h.attrs) != 0 {
		t.Error("the original handler must not change")
	}

	record := slog.NewRecord(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), slog.LevelInfo, "test", 0)
	err := h2.Handle(context.Background(), record)
	if err != nil {
		t.Fatalf("Handle() returned error: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "component=feed") {
		t.Errorf("output should contain the preset attrs, got: %q", output)
	}
}

// TestConsoleHandlerWithGroup checks group prefixes.
func TestConsoleHandlerWithGroup(t *testing.T) {
	var buf bytes.Buffer
	h := newConsoleHandler(&buf, slog.LevelDebug)

	h2 := h.WithGroup("server")

	record := slog.NewRecord(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), slog.LevelInfo, "test", 0)
	record.AddAttrs(slog.String("addr", "127.0.0.1"))
	err := h2.Handle(context.Background(), record)
	if err != nil {
		t.Fatalf("Handle() returned error: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "server.addr=127.0.0.1") {
		t.Errorf("output should contain the group prefix, got: %q", output)
	}
}

// TestConsoleHandlerWithNestedGroup checks nested group prefixes.
func TestConsoleHandlerWithNestedGroup(t *testing.T) {
	var buf bytes.Buffer
	h := newConsoleHandler(&buf, slog.LevelDebug)

	h2 := h.WithGroup("server").WithGroup("config")

	record := slog.NewRecord(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), slog.LevelInfo, "test", 0)
	record.AddAttrs(slog.String("port", "25565"))
	err := h2.Handle(context.Background(), record)
	if err != nil {
		t.Fatalf("Handle() returned error: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "server.config.port=25565") {
		t.Errorf("output should contain the nested prefix, got: %q", output)
	}
}

// TestConsoleHandlerConcurrentLines checks derived handlers share one lock
// so lines from different goroutines never interleave.
func TestConsoleHandlerConcurrentLines(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(newConsoleHandler(&buf, slog.LevelDebug))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l := base.With("worker", i)
			for j := 0; j < 50; j++ {
				l.Debug("tick", "position", mgl64.Vec3{1, 2, 3})
			}
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 400 {
		t.Fatalf("got %d lines, want 400", len(lines))
	}
	for _, line := range lines {
		if !strings.HasSuffix(line, "position=(1.000, 2.000, 3.000)") {
			t.Fatalf("malformed line %q", line)
		}
	}
}

// TestNewHandlerFormats checks each format picks its handler.
func TestNewHandlerFormats(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"json", `"msg":"hello"`},
		{"text", "msg=hello"},
		{"console", "INFO  hello"},
		{"", "INFO  hello"},
	}

	for _, tt := range tests {
		t.Run("format_"+tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			l := slog.New(newHandler(Config{Level: "debug", Format: tt.format, Output: &buf}))
			l.Info("hello")
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output %q should contain %q", buf.String(), tt.want)
			}
		})
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "sandbox.log")

	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	l := slog.New(newHandler(Config{Level: "info", Format: "text", Output: f}))
	l.Info("first")
	if err := f.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	f, err = OpenFile(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	l = slog.New(newHandler(Config{Level: "info", Format: "text", Output: f}))
	l.Info("second")
	f.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "msg=first") || !strings.Contains(string(data), "msg=second") {
		t.Errorf("log file should be appended to, got: %q", data)
	}
}
