package analyzer

import (
	"sync"
	"time"

	"github.com/standardbeagle/codescribe/internal/debug"
)

// Progress milestones.
const (
	PercentDiscovered = 10
	PercentBatches    = 70 // share of the bar spent on batches
	PercentDetected   = 90
	PercentComplete   = 100
)

// ProgressTracker forwards milestones to a callback, holding the reported
// percentage monotonic.
type ProgressTracker struct {
	mu        sync.Mutex
	fn        ProgressFunc
	last      int
	status    string
	startTime time.Time
}

// NewProgressTracker wraps fn, which may be nil.
func NewProgressTracker(fn ProgressFunc) *ProgressTracker {
	return &ProgressTracker{fn: fn, startTime: time.Now()}
}

// Report records a milestone. A percent lower than one already reported is
// raised to it.
func (pt *ProgressTracker) Report(status string, percent int) {
	pt.mu.Lock()
	if percent < pt.last {
		percent = pt.last
	}
	if percent > PercentComplete {
		percent = PercentComplete
	}
	pt.last = percent
	pt.status = status
	fn := pt.fn
	pt.mu.Unlock()

	debug.LogAnalyze("Progress %3d%% %s (%v)", percent, status, time.Since(pt.startTime).Round(time.Millisecond))
	if fn != nil {
		fn(status, percent)
	}
}

// Current returns the last reported status and percentage.
func (pt *ProgressTracker) Current() (string, int) {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	return pt.status, pt.last
}
