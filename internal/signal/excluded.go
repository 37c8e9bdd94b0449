package signal

import (
	"github.com/jim-agent/medicaid-fraud-detector/internal/model"
	"github.com/jim-agent/medicaid-fraud-detector/internal/resolve"
)

// ExcludedEvidence documents billing activity during an exclusion window.
type ExcludedEvidence struct {
	ExclusionDate     string  `json:"exclusion_date"`
	ExclusionType     string  `json:"exclusion_type"`
	ReinstatementDate string  `json:"reinstatement_date,omitempty"`
	FirstViolation    string  `json:"first_post_exclusion_month"`
	PostExclusionPaid float64 `json:"post_exclusion_paid"`
}

// DetectExcludedProviders flags providers that billed while excluded:
// the service month falls strictly after the exclusion date and either
// no reinstatement exists or the month precedes it. The full amount
// paid in the violation window is deemed improperly paid.
func DetectExcludedProviders(ds *resolve.Dataset) []model.SignalHit {
	var hits []model.SignalHit

	for _, v := range ds.Views() {
		excl := v.Exclusion
		if excl == nil || excl.ExclDate.IsZero() {
			continue
		}

		var (
			paid  float64
			first model.Month
			found bool
		)
		for _, ms := range v.Months {
			start := ms.Month.Start()
			if !start.After(excl.ExclDate) {
				continue
			}
			if excl.Reinstated() && !start.Before(excl.ReinDate) {
				continue // compliant again once past reinstatement
			}
			if !found {
				first = ms.Month
				found = true
			}
			paid += ms.Paid
		}
		if !found {
			continue
		}

		ev := ExcludedEvidence{
			ExclusionDate:     excl.ExclDate.Format("2006-01-02"),
			ExclusionType:     excl.ExclType,
			FirstViolation:    first.String(),
			PostExclusionPaid: paid,
		}
		if excl.Reinstated() {
			ev.ReinstatementDate = excl.ReinDate.Format("2006-01-02")
		}

		hits = append(hits, model.SignalHit{
			NPI:         v.NPI,
			Kind:        model.KindExcludedProvider,
			Severity:    model.SeverityCritical,
			Evidence:    ev,
			Overpayment: paid,
		})
	}

	return hits
}
