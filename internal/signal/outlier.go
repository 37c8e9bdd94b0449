package signal

import (
	"sort"

	"github.com/jim-agent/medicaid-fraud-detector/internal/model"
	"github.com/jim-agent/medicaid-fraud-detector/internal/resolve"
)

// minCohortSize is the statistical-significance floor for peer-group
// comparison; smaller cohorts are excluded from the signal entirely.
const minCohortSize = 10

type cohortKey struct {
	Taxonomy string
	State    string
}

// OutlierEvidence compares one provider's total billing to its
// (taxonomy, state) peer cohort.
type OutlierEvidence struct {
	TotalPaid      float64 `json:"total_paid"`
	TaxonomyCode   string  `json:"taxonomy_code"`
	State          string  `json:"state"`
	PeerMedian     float64 `json:"peer_median"`
	Peer99th       float64 `json:"peer_99th_percentile"`
	RatioTo99th    float64 `json:"ratio_to_peer_99th"`
	RatioToMedian  float64 `json:"ratio_to_peer_median"`
	PeerCohortSize int     `json:"peer_cohort_size"`
}

// DetectBillingOutliers flags providers whose all-time paid total
// strictly exceeds the 99th percentile of their peer cohort. Only
// providers with billing activity are compared; registry-only entities
// would depress every cohort's distribution.
func DetectBillingOutliers(ds *resolve.Dataset) []model.SignalHit {
	cohorts := make(map[cohortKey][]*model.ProviderView)
	for _, v := range ds.Views() {
		if v.TotalClaims == 0 {
			continue
		}
		key := cohortKey{Taxonomy: v.TaxonomyCode(), State: v.State()}
		cohorts[key] = append(cohorts[key], v)
	}

	var hits []model.SignalHit

	// Views() is NPI-sorted and cohort membership is deterministic, so
	// iterating cohorts in sorted key order keeps output stable.
	keys := make([]cohortKey, 0, len(cohorts))
	for k := range cohorts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Taxonomy != keys[j].Taxonomy {
			return keys[i].Taxonomy < keys[j].Taxonomy
		}
		return keys[i].State < keys[j].State
	})

	for _, key := range keys {
		members := cohorts[key]
		if len(members) < minCohortSize {
			continue
		}

		totals := make([]float64, len(members))
		for i, m := range members {
			totals[i] = m.TotalPaid
		}
		sort.Float64s(totals)

		median := percentile(totals, 0.5)
		p99 := percentile(totals, 0.99)

		for _, m := range members {
			if m.TotalPaid <= p99 {
				continue
			}

			ev := OutlierEvidence{
				TotalPaid:      m.TotalPaid,
				TaxonomyCode:   key.Taxonomy,
				State:          key.State,
				PeerMedian:     median,
				Peer99th:       p99,
				PeerCohortSize: len(members),
			}
			if p99 > 0 {
				ev.RatioTo99th = m.TotalPaid / p99
			}
			if median > 0 {
				ev.RatioToMedian = m.TotalPaid / median
			}

			severity := model.SeverityMedium
			if ev.RatioToMedian > 5 {
				severity = model.SeverityHigh
			}

			overpayment := m.TotalPaid - p99
			if overpayment < 0 {
				overpayment = 0
			}

			hits = append(hits, model.SignalHit{
				NPI:         m.NPI,
				Kind:        model.KindBillingOutlier,
				Severity:    severity,
				Evidence:    ev,
				Overpayment: overpayment,
			})
		}
	}

	return hits
}
