package signal

import (
	"github.com/jim-agent/medicaid-fraud-detector/internal/model"
	"github.com/jim-agent/medicaid-fraud-detector/internal/resolve"
)

const (
	workingDaysPerMonth = 22
	workingHoursPerDay  = 8

	// maxClaimsPerHour is the plausibility ceiling for an organization's
	// hourly claim rate. 6/hr × 8h × 22d = 1056 claims in a month.
	maxClaimsPerHour = 6.0
)

// WorkforceEvidence documents a physically implausible claim volume.
type WorkforceEvidence struct {
	PeakMonth        model.Month `json:"peak_month"`
	PeakClaims       int         `json:"peak_claims"`
	ImpliedPerHour   float64     `json:"implied_claims_per_hour"`
	PeakMonthPaid    float64     `json:"peak_month_paid"`
	MaxMonthlyClaims int         `json:"sustainable_monthly_claims"`
}

// DetectWorkforceImpossibility flags organizations whose busiest month
// implies more than six claims per working hour.
func DetectWorkforceImpossibility(ds *resolve.Dataset) []model.SignalHit {
	var hits []model.SignalHit

	sustainable := workingDaysPerMonth * workingHoursPerDay * int(maxClaimsPerHour)

	for _, v := range ds.Views() {
		if v.Registry == nil || !v.Registry.IsOrganization() || len(v.Months) == 0 {
			continue
		}

		peak := v.Months[0]
		for _, ms := range v.Months[1:] {
			if ms.Claims > peak.Claims {
				peak = ms
			}
		}

		implied := float64(peak.Claims) / (workingDaysPerMonth * workingHoursPerDay)
		if implied <= maxClaimsPerHour {
			continue
		}

		// Excess claims above the sustainable ceiling, valued at the
		// peak month's average paid per claim.
		var overpayment float64
		if peak.Claims > sustainable && peak.Claims > 0 {
			avg := peak.Paid / float64(peak.Claims)
			overpayment = float64(peak.Claims-sustainable) * avg
		}

		hits = append(hits, model.SignalHit{
			NPI:      v.NPI,
			Kind:     model.KindWorkforce,
			Severity: model.SeverityHigh,
			Evidence: WorkforceEvidence{
				PeakMonth:        peak.Month,
				PeakClaims:       peak.Claims,
				ImpliedPerHour:   implied,
				PeakMonthPaid:    peak.Paid,
				MaxMonthlyClaims: sustainable,
			},
			Overpayment: overpayment,
		})
	}

	return hits
}
