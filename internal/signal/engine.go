// Package signal implements the six fraud detectors and the concurrent
// engine that runs them. Every detector is a pure function over the
// frozen Dataset: no detector mutates shared state, and they may run in
// any order or concurrently.
package signal

import (
	"context"
	"sync"

	"github.com/jim-agent/medicaid-fraud-detector/internal/model"
	"github.com/jim-agent/medicaid-fraud-detector/internal/resolve"
)

// Detector pairs a signal kind with its detection function.
type Detector struct {
	Kind model.Kind
	Run  func(ds *resolve.Dataset) []model.SignalHit
}

// Detectors returns all six detectors in canonical order.
func Detectors() []Detector {
	return []Detector{
		{model.KindExcludedProvider, DetectExcludedProviders},
		{model.KindBillingOutlier, DetectBillingOutliers},
		{model.KindRapidEscalation, DetectRapidEscalation},
		{model.KindWorkforce, DetectWorkforceImpossibility},
		{model.KindSharedOfficial, DetectSharedOfficials},
		{model.KindGeographic, DetectGeographicImplausibility},
	}
}

// Engine runs detectors on a fixed-size worker pool. Results from all
// detectors are joined before being returned; the return acts as the
// synchronization barrier ahead of aggregation.
type Engine struct {
	Workers int

	// OnDetectorDone, if set, is called as each detector finishes.
	OnDetectorDone func(kind model.Kind, hits int)
}

// Run executes every detector against the dataset and returns hits per
// signal kind. A canceled context leaves not-yet-started detectors
// unrun; their entries are empty, never partial.
func (e *Engine) Run(ctx context.Context, ds *resolve.Dataset) map[model.Kind][]model.SignalHit {
	detectors := Detectors()
	results := make([][]model.SignalHit, len(detectors))

	workers := e.Workers
	if workers <= 0 {
		workers = len(detectors)
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, d := range detectors {
		wg.Add(1)
		go func(idx int, det Detector) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()

			hits := det.Run(ds)
			results[idx] = hits
			if e.OnDetectorDone != nil {
				e.OnDetectorDone(det.Kind, len(hits))
			}
		}(i, d)
	}

	wg.Wait()

	byKind := make(map[model.Kind][]model.SignalHit, len(detectors))
	for i, d := range detectors {
		byKind[d.Kind] = results[i]
	}
	return byKind
}
