package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDefaultLoggerIsSafe(t *testing.T) {
	SetLogger(nil)
	Debug("dropped")
	Info("dropped", zap.Int("n", 1))
	Sugar.Warnf("dropped %d", 2)
	Sync()
}

func TestFileOutput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "facet.log")
	r := Rotation{Path: logFile, MaxSizeMB: 1, MaxBackups: 1, MaxAgeDays: 1}
	if err := Configure(Options{Level: "debug", File: &r}); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	t.Cleanup(func() { SetLogger(nil) })

	Debug("split edge", zap.String("mesh", "cube"))
	Sync()

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"msg":"split edge"`) || !strings.Contains(out, `"mesh":"cube"`) {
		t.Errorf("log file missing entry: %s", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	r := RotationFor(filepath.Join(t.TempDir(), "facet.log"))
	if err := Configure(Options{Level: "warn", File: &r}); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	logFile := r.Path
	t.Cleanup(func() { SetLogger(nil) })

	Info("hidden")
	Warn("shown")
	Sync()

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	if strings.Contains(string(data), "hidden") {
		t.Error("info entry written at warn level")
	}
	if !strings.Contains(string(data), "shown") {
		t.Error("warn entry missing")
	}
}

func TestSetLoggerObserver(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(nil) })

	Error("boom", zap.String("op", "bevel"))
	if logs.Len() != 1 {
		t.Fatalf("observed %d entries, want 1", logs.Len())
	}
	if got := logs.All()[0].ContextMap()["op"]; got != "bevel" {
		t.Errorf("op field = %v", got)
	}
}

func TestConsoleOutput(t *testing.T) {
	var buf strings.Builder
	if err := Configure(Options{Level: "info", Console: &buf}); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { SetLogger(nil) })

	Info("evaluated", zap.Int("meshes", 2))
	if out := buf.String(); !strings.Contains(out, "evaluated") || !strings.Contains(out, "logger_test.go") {
		t.Errorf("console line = %q, want message and caller", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"WARN":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"":      zapcore.InfoLevel,
	}
	for in, want := range tests {
		got, err := parseLevel(in)
		if err != nil || got != want {
			t.Errorf("parseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := parseLevel("bogus"); err == nil {
		t.Error("unknown level should fail")
	}
	if err := Init("bogus", ""); err == nil {
		t.Error("Init with an unknown level should fail")
	}
}
