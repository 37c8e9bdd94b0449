package signal

import (
	"github.com/jim-agent/medicaid-fraud-detector/internal/model"
	"github.com/jim-agent/medicaid-fraud-detector/internal/resolve"
)

const (
	// newEntityWindowMonths bounds how recently a provider must have
	// been enumerated to count as a new entity.
	newEntityWindowMonths = 24

	// growthThreshold is the rolling-average growth above which a new
	// entity's billing trajectory is flagged (2.0 = 200%).
	growthThreshold = 2.0

	rollingWindow = 3
)

// SeriesPoint is one month of the billing series carried in evidence.
type SeriesPoint struct {
	Month model.Month `json:"month"`
	Paid  float64     `json:"paid"`
}

// EscalationEvidence documents a new entity's billing ramp.
type EscalationEvidence struct {
	EnumerationDate string        `json:"enumeration_date"`
	MonthlyPaid     []SeriesPoint `json:"monthly_paid"`
	PeakGrowthPct   float64       `json:"peak_growth_pct"`
}

// DetectRapidEscalation flags newly enumerated providers whose monthly
// billing outruns its own recent history: each month is compared to the
// trailing 3-month rolling average ending at the previous month, and
// the provider is flagged when any such growth exceeds 200%. Months
// whose preceding rolling average is zero are skipped (growth is
// undefined there, which is a filtering rule, not an error).
func DetectRapidEscalation(ds *resolve.Dataset) []model.SignalHit {
	latest, ok := ds.LatestMonth()
	if !ok {
		return nil
	}

	var hits []model.SignalHit

	for _, v := range ds.Views() {
		if v.Registry == nil || v.Registry.EnumerationDate.IsZero() {
			continue
		}
		enumMonth := model.MonthOf(v.Registry.EnumerationDate)
		if latest.Index()-enumMonth.Index() > newEntityWindowMonths {
			continue // established entity
		}
		if len(v.Months) < 2 {
			continue
		}

		series := make([]float64, len(v.Months))
		for i, ms := range v.Months {
			series[i] = ms.Paid
		}
		rolling := rollingAverages(series, rollingWindow)

		peak := 0.0
		flagged := false
		for i := 1; i < len(series); i++ {
			prev := rolling[i-1]
			if prev == 0 {
				continue
			}
			growth := (series[i] - prev) / prev
			if growth > peak {
				peak = growth
			}
			if growth > growthThreshold {
				flagged = true
			}
		}
		if !flagged {
			continue
		}

		points := make([]SeriesPoint, len(v.Months))
		var overpayment float64
		for i, ms := range v.Months {
			points[i] = SeriesPoint{Month: ms.Month, Paid: ms.Paid}
			if i < 12 {
				overpayment += ms.Paid
			}
		}

		severity := model.SeverityMedium
		if peak > 5.0 {
			severity = model.SeverityHigh
		}

		hits = append(hits, model.SignalHit{
			NPI:      v.NPI,
			Kind:     model.KindRapidEscalation,
			Severity: severity,
			Evidence: EscalationEvidence{
				EnumerationDate: v.Registry.EnumerationDate.Format("2006-01-02"),
				MonthlyPaid:     points,
				PeakGrowthPct:   peak * 100,
			},
			Overpayment: overpayment,
		})
	}

	return hits
}
