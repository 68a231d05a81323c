package logger

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestToZapLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		InfoLevel:  zapcore.InfoLevel,
		WarnLevel:  zapcore.WarnLevel,
		ErrorLevel: zapcore.ErrorLevel,
		DebugLevel: zapcore.DebugLevel,
		"bogus":    defaultZapLevel,
	}
	for in, want := range cases {
		if got := toZapLevel(in); got != want {
			t.Fatalf("toZapLevel(%q)=%v, want %v", in, got, want)
		}
	}
}

func TestNewZapLogger_WritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rover.log")
	log := newZapLogger(Options{Level: InfoLevel, File: path})
	log.Infow("command_start", "direction", "forward")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected log file to contain the entry")
	}
}

func TestNop_DoesNotPanic(t *testing.T) {
	Nop().Errorw("ignored", "k", "v")
}
