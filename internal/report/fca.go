package report

import (
	"fmt"
	"strings"

	"github.com/jim-agent/medicaid-fraud-detector/internal/model"
	"github.com/jim-agent/medicaid-fraud-detector/internal/signal"
)

const (
	defaultClaimType = "Potential false claims violation"
	defaultStatute   = "31 U.S.C. § 3729(a)(1)(A)"
)

var statuteByKind = map[model.Kind]string{
	model.KindExcludedProvider: "31 U.S.C. § 3729(a)(1)(A)",
	model.KindBillingOutlier:   "31 U.S.C. § 3729(a)(1)(A)",
	model.KindRapidEscalation:  "31 U.S.C. § 3729(a)(1)(A)",
	model.KindWorkforce:        "31 U.S.C. § 3729(a)(1)(B)",
	model.KindSharedOfficial:   "31 U.S.C. § 3729(a)(1)(C)",
	model.KindGeographic:       "31 U.S.C. § 3729(a)(1)(G)",
}

var claimTypeByKind = map[model.Kind]string{
	model.KindExcludedProvider: "False claims submitted by excluded provider - provider was barred from federal healthcare programs but continued billing",
	model.KindBillingOutlier:   "Potential overbilling - provider billing volume significantly exceeds peer group norms",
	model.KindRapidEscalation:  "Potential bust-out scheme - newly formed entity showed rapid, unsustainable billing escalation",
	model.KindWorkforce:        "False records - claimed service volume is physically impossible given workforce constraints",
	model.KindSharedOfficial:   "Conspiracy - coordinated billing through multiple entities controlled by same individual",
	model.KindGeographic:       "Reverse false claims - repeated billing on same patients suggests phantom services",
}

// relevanceFor builds the FCA context from the provider's primary
// (first, kind-ordered) signal.
func relevanceFor(primary model.SignalHit, p *FlaggedProvider) FCARelevance {
	claimType, ok := claimTypeByKind[primary.Kind]
	if !ok {
		claimType = defaultClaimType
	}
	statute, ok := statuteByKind[primary.Kind]
	if !ok {
		statute = defaultStatute
	}
	return FCARelevance{
		ClaimType:          claimType,
		StatuteReference:   statute,
		SuggestedNextSteps: nextSteps(primary, p),
	}
}

// nextSteps returns two or three investigator actions for the signal,
// filled in from the hit's evidence where available.
func nextSteps(h model.SignalHit, p *FlaggedProvider) []string {
	var steps []string

	switch h.Kind {
	case model.KindExcludedProvider:
		since := "the exclusion date"
		if ev, ok := h.Evidence.(signal.ExcludedEvidence); ok {
			since = ev.ExclusionDate
		}
		steps = []string{
			fmt.Sprintf("Verify exclusion status of NPI %s in the OIG LEIE database", h.NPI),
			fmt.Sprintf("Request detailed claims records for %s from %s forward", h.NPI, since),
			fmt.Sprintf("Calculate total Medicaid payments to %s during the exclusion period", h.NPI),
		}
		if p.State != "" {
			steps = append(steps, fmt.Sprintf("Contact the %s Medicaid Fraud Control Unit", p.State))
		}

	case model.KindBillingOutlier:
		taxonomy, state := "unknown", "unknown"
		if ev, ok := h.Evidence.(signal.OutlierEvidence); ok {
			taxonomy, state = ev.TaxonomyCode, ev.State
		}
		steps = []string{
			fmt.Sprintf("Audit claims for NPI %s against peer providers in %s/%s", h.NPI, taxonomy, state),
			"Request medical records supporting high-volume claims",
			"Compare service patterns to specialty norms",
		}

	case model.KindRapidEscalation:
		enumerated := "unknown"
		if ev, ok := h.Evidence.(signal.EscalationEvidence); ok {
			enumerated = ev.EnumerationDate
		}
		steps = []string{
			fmt.Sprintf("Investigate ownership and management of entity NPI %s (enumerated %s)", h.NPI, enumerated),
			"Review business formation documents and license applications",
			"Analyze referral patterns for evidence of kickback arrangements",
		}

	case model.KindWorkforce:
		rate := 0.0
		if ev, ok := h.Evidence.(signal.WorkforceEvidence); ok {
			rate = ev.ImpliedPerHour
		}
		steps = []string{
			fmt.Sprintf("Request employment records and staffing levels for NPI %s", h.NPI),
			fmt.Sprintf("Verify the claimed %.1f claims/hour is humanly possible", rate),
			"Audit time-of-service documentation for sample claims",
		}

	case model.KindSharedOfficial:
		official, members := "unknown", 0
		if ev, ok := h.Evidence.(signal.OfficialEvidence); ok {
			official, members = ev.OfficialName, ev.MemberCount
		}
		steps = []string{
			fmt.Sprintf("Investigate business relationships among %d entities controlled by %s", members, official),
			"Review corporate formation documents for common ownership",
			"Analyze billing patterns for coordinated fraud indicators",
		}

	case model.KindGeographic:
		steps = []string{
			fmt.Sprintf("Audit home health claims for NPI %s", h.NPI),
			"Verify beneficiary addresses and ability to receive home services",
		}
		if ev, ok := h.Evidence.(signal.GeoEvidence); ok && len(ev.HCPCSCodes) > 0 {
			codes := ev.HCPCSCodes
			if len(codes) > 5 {
				codes = codes[:5]
			}
			steps = append(steps, fmt.Sprintf("Request documentation for HCPCS codes: %s", strings.Join(codes, ", ")))
		}

	default:
		steps = []string{
			fmt.Sprintf("Review claims history for NPI %s", h.NPI),
			"Escalate to the program integrity unit for manual review",
		}
	}

	if len(steps) > 3 {
		steps = steps[:3]
	}
	return steps
}
