package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/betwixt/pkg/anneal"
	"github.com/matzehuels/betwixt/pkg/solver"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		debug   bool
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, false, true},
		{"debug at info level", log.InfoLevel, true, false},
		{"debug at debug level", log.DebugLevel, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, tt.level)
			if tt.debug {
				logger.Debug("test")
			} else {
				logger.Info("test")
			}
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("logged = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	time.Sleep(5 * time.Millisecond)
	prog.done("Solved 20 items in 3 attempts")

	out := buf.String()
	if !strings.Contains(out, "Solved 20 items in 3 attempts (") {
		t.Errorf("done output = %q", out)
	}
	if prog.elapsed() < 5*time.Millisecond {
		t.Errorf("elapsed = %v", prog.elapsed())
	}
}

func TestLoggerContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("loggerFromContext without a logger should return log.Default()")
	}

	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)
	got := loggerFromContext(withLogger(context.Background(), custom))
	if got != custom {
		t.Fatal("loggerFromContext should return the attached logger")
	}
	got.Info("attached")
	if !strings.Contains(buf.String(), "attached") {
		t.Error("attached logger should write to its buffer")
	}
}

func TestSolveLoggerImprovements(t *testing.T) {
	var buf bytes.Buffer
	sl := newSolveLogger(newLogger(&buf, log.DebugLevel), 50)

	sl.onProgress(1, anneal.Progress{Step: 100, BestEnergy: 9})
	if buf.Len() != 0 {
		t.Errorf("first report should only set the baseline, got %q", buf.String())
	}
	sl.onProgress(1, anneal.Progress{Step: 200, BestEnergy: 6})
	if !strings.Contains(buf.String(), "energy 6 (↓3) at step 200") {
		t.Errorf("improvement not logged: %q", buf.String())
	}

	buf.Reset()
	sl.onAttempt(solver.Attempt{Number: 1, BestEnergy: 4})
	sl.onProgress(2, anneal.Progress{Step: 10, BestEnergy: 5})
	if buf.Len() != 0 {
		t.Errorf("no improvement over the attempt best should be silent, got %q", buf.String())
	}
}

func TestSolveLoggerHeartbeat(t *testing.T) {
	var buf bytes.Buffer
	sl := newSolveLogger(newLogger(&buf, log.InfoLevel), 50)
	sl.onProgress(1, anneal.Progress{BestEnergy: 3})

	sl.lastLog = time.Now().Add(-2 * heartbeat)
	sl.onProgress(7, anneal.Progress{Step: 500, Steps: 1000, Energy: 4, BestEnergy: 3})
	out := buf.String()
	if !strings.Contains(out, "attempt 7/50") || !strings.Contains(out, "step 500/1000") {
		t.Errorf("heartbeat = %q", out)
	}

	buf.Reset()
	sl.onProgress(7, anneal.Progress{Step: 600, Steps: 1000, Energy: 4, BestEnergy: 3})
	if buf.Len() != 0 {
		t.Errorf("heartbeat repeated too soon: %q", buf.String())
	}
}
