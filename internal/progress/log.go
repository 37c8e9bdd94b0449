package progress

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// LogManager implements Manager with throttled line-based output for
// non-TTY environments (CI, batch jobs). Prints periodic status lines
// instead of interactive progress bars.
type LogManager struct {
	mu sync.Mutex
}

// NewLogManager creates a new log-based progress manager.
func NewLogManager() *LogManager {
	return &LogManager{}
}

func (m *LogManager) NewTracker(index, total int, name string) Tracker {
	return &logTracker{
		mgr:   m,
		index: index,
		total: total,
		name:  name,
		start: time.Now(),
	}
}

func (m *LogManager) Wait() {}

const logInterval = 5 * time.Second

// logTracker implements Tracker with throttled log output.
type logTracker struct {
	mgr      *LogManager
	index    int
	total    int
	name     string
	start    time.Time
	stage    string
	lastLog  time.Time
	prevRows int64
	prevTime time.Time
}

// log writes one line; the caller must hold mgr.mu, which also guards
// the tracker's throttle state (trackers may be updated from detector
// goroutines).
func (t *logTracker) log(msg string) {
	ts := time.Now().Format("15:04:05")
	fmt.Fprintf(os.Stderr, "%s [%d/%d] %s  %s\n", ts, t.index+1, t.total, t.name, msg)
}

func (t *logTracker) SetStage(stage string) {
	t.mgr.mu.Lock()
	defer t.mgr.mu.Unlock()
	t.stage = stage
	t.lastLog = time.Time{} // reset throttle so next count update prints
	t.prevRows = 0
	t.prevTime = time.Time{}
	t.log(stage)
}

func (t *logTracker) SetCount(rows int64) {
	t.mgr.mu.Lock()
	defer t.mgr.mu.Unlock()

	now := time.Now()
	if now.Sub(t.lastLog) < logInterval {
		return
	}

	// Rate since the last logged line
	rateStr := ""
	if !t.prevTime.IsZero() {
		elapsed := now.Sub(t.prevTime).Seconds()
		if elapsed > 0 {
			rate := float64(rows-t.prevRows) / elapsed
			rateStr = fmt.Sprintf("  %s rows/s", humanCount(int64(rate)))
		}
	}
	t.prevRows = rows
	t.prevTime = now
	t.lastLog = now

	t.log(fmt.Sprintf("%s  %s rows%s", t.stage, humanCount(rows), rateStr))
}

func (t *logTracker) Done() {
	t.mgr.mu.Lock()
	defer t.mgr.mu.Unlock()
	elapsed := time.Since(t.start).Truncate(time.Millisecond)
	t.log(fmt.Sprintf("finished in %s", elapsed))
}
