// Package progress abstracts phase progress reporting for the
// pipeline: interactive mpb bars on a TTY, throttled log lines for CI,
// or nothing at all.
package progress

import (
	"fmt"
	"sync/atomic"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Tracker tracks one pipeline phase (loading a dataset, running the
// detectors). Row totals are unknown up front, so phases report a
// running count rather than a percentage.
type Tracker interface {
	SetStage(stage string)
	SetCount(rows int64)
	Done()
}

// Manager creates trackers for individual phases.
type Manager interface {
	NewTracker(index, total int, name string) Tracker
	Wait()
}

// MPBManager implements Manager using the mpb multi-progress-bar library.
type MPBManager struct {
	container *mpb.Progress
}

// NewMPBManager creates a new mpb-based progress manager.
func NewMPBManager() *MPBManager {
	return &MPBManager{container: mpb.New(mpb.WithWidth(60))}
}

// NewTracker creates a spinner for one phase.
func (m *MPBManager) NewTracker(index, total int, name string) Tracker {
	stage := &atomic.Value{}
	stage.Store("")
	count := &atomic.Int64{}

	bar := m.container.AddSpinner(-1,
		mpb.PrependDecorators(
			decor.Name(fmt.Sprintf("[%d/%d] %s ", index+1, total, name), decor.WCSyncSpaceR),
		),
		mpb.AppendDecorators(
			decor.Any(func(s decor.Statistics) string {
				label := stage.Load().(string)
				if n := count.Load(); n > 0 {
					return fmt.Sprintf("%s  %s rows", label, humanCount(n))
				}
				return label
			}),
		),
	)

	return &mpbTracker{bar: bar, stage: stage, count: count}
}

// Wait waits for all bars to finish.
func (m *MPBManager) Wait() {
	m.container.Wait()
}

type mpbTracker struct {
	bar   *mpb.Bar
	stage *atomic.Value
	count *atomic.Int64
}

func (t *mpbTracker) SetStage(stage string) {
	t.stage.Store(stage)
}

func (t *mpbTracker) SetCount(rows int64) {
	t.count.Store(rows)
	t.bar.SetCurrent(rows)
}

func (t *mpbTracker) Done() {
	t.bar.SetTotal(-1, true)
}

// NoopManager discards all progress updates; phase-level logging still
// reports outcomes.
type NoopManager struct{}

func (NoopManager) NewTracker(index, total int, name string) Tracker { return noopTracker{} }
func (NoopManager) Wait()                                            {}

type noopTracker struct{}

func (noopTracker) SetStage(string) {}
func (noopTracker) SetCount(int64)  {}
func (noopTracker) Done()           {}

func humanCount(n int64) string {
	switch {
	case n >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", float64(n)/1_000_000_000)
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	}
	return fmt.Sprintf("%d", n)
}
