package cli

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/betwixt/pkg/anneal"
	"github.com/matzehuels/betwixt/pkg/solver"
)

// heartbeat is the minimum interval between "still searching" lines.
const heartbeat = 10 * time.Second

// solveLogger turns solver callbacks into log lines: improvements of the
// best energy at debug level and a periodic heartbeat during long
// attempts. Parallel workers share one, so it locks.
type solveLogger struct {
	mu          sync.Mutex
	logger      *log.Logger
	maxAttempts int
	best        int
	start       time.Time
	lastLog     time.Time
}

func newSolveLogger(logger *log.Logger, maxAttempts int) *solveLogger {
	now := time.Now()
	return &solveLogger{
		logger:      logger,
		maxAttempts: maxAttempts,
		best:        -1,
		start:       now,
		lastLog:     now,
	}
}

// onProgress receives the annealer's periodic reports.
func (s *solveLogger) onProgress(attempt int, p anneal.Progress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.best < 0 || p.BestEnergy < s.best:
		if s.best >= 0 {
			s.logger.Debugf("Improved: energy %d (↓%d) at step %d", p.BestEnergy, s.best-p.BestEnergy, p.Step)
		}
		s.best = p.BestEnergy
	case time.Since(s.lastLog) >= heartbeat:
		elapsed := time.Since(s.start).Truncate(time.Second)
		s.logger.Infof("Searching... attempt %d/%d, step %d/%d, T=%.4f, energy %d (best %d), %v elapsed",
			attempt, s.maxAttempts, p.Step, p.Steps, p.Temperature, p.Energy, s.best, elapsed)
		s.lastLog = time.Now()
	}
}

// onAttempt resets the heartbeat; the solver logs the attempt itself.
func (s *solveLogger) onAttempt(a solver.Attempt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.best < 0 || a.BestEnergy < s.best {
		s.best = a.BestEnergy
	}
	s.lastLog = time.Now()
}
