// Package progress implements the pipeline's completion counter and ETA
// logging. Unlike the teacher's go-pretty TUI progress bars
// (internal/engine/scanner.ProgressCounter in the reference tree), this is a
// plain time-gated text line — one explicitly owned Tracker per stage rather
// than a package-level singleton, per the redesign in SPEC_FULL.md §9.
package progress

import (
	"fmt"
	"sync"
	"time"

	"github.com/vhostsieve/vhostsieve/internal/utils/logger"
)

const logInterval = 30 * time.Second

// Tracker counts completions against a known total and logs an ETA line no
// more than once per logInterval.
type Tracker struct {
	mu        sync.Mutex
	total     int
	done      int
	startedAt time.Time
	lastLog   time.Time
	label     string
}

// New returns a tracker that prefixes its log lines with label (e.g. the
// stage name).
func New(label string) *Tracker {
	return &Tracker{label: label}
}

// Reset starts a new counting window against total units of work.
func (t *Tracker) Reset(total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.total = total
	t.done = 0
	t.startedAt = time.Time{}
	t.lastLog = time.Time{}
}

// Done records one completed unit of work and, if at least logInterval has
// elapsed since the last log line, prints a "Done D of T" ETA line.
func (t *Tracker) Done() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	if t.startedAt.IsZero() {
		t.startedAt = now
		t.lastLog = now
	}
	t.done++

	if now.Sub(t.lastLog) < logInterval {
		return
	}
	t.lastLog = now

	elapsed := now.Sub(t.startedAt)
	var eta time.Duration
	if t.done > 0 {
		eta = time.Duration(float64(t.total)/float64(t.done)*float64(elapsed)) - elapsed
		if eta < 0 {
			eta = 0
		}
	}

	logger.Info().Metadata("stage", t.label).Msgf(
		"Done %d of %d (Left time: %s)", t.done, t.total, formatHMS(eta))
}

func formatHMS(d time.Duration) string {
	total := int(d.Seconds())
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}
