package signal

import (
	"sort"
	"strings"

	"github.com/jim-agent/medicaid-fraud-detector/internal/model"
	"github.com/jim-agent/medicaid-fraud-detector/internal/resolve"
)

const (
	minControlledNPIs    = 5
	minCombinedPaid      = 1_000_000.0
	highSeverityCombined = 5_000_000.0
)

// officialKey is the exact composite grouping key. A struct key avoids
// the collision ambiguity of concatenated names ("Smith,Jane" vs
// "Smi,thJane").
type officialKey struct {
	Last  string
	First string
}

// OfficialEvidence describes a group of organizations controlled by the
// same authorized official. Every member NPI's hit references the same
// group evidence.
type OfficialEvidence struct {
	OfficialName string             `json:"authorized_official_name"`
	MemberCount  int                `json:"controlled_npi_count"`
	MemberNPIs   []string           `json:"controlled_npis"`
	PaidPerNPI   map[string]float64 `json:"paid_per_npi"`
	CombinedPaid float64            `json:"combined_total_paid"`
}

// DetectSharedOfficials flags groups of five or more organizations that
// share an authorized official and exceed $1M combined billing. Names
// are matched exactly after case/whitespace normalization; no fuzzy
// matching.
func DetectSharedOfficials(ds *resolve.Dataset) []model.SignalHit {
	groups := make(map[officialKey][]*model.ProviderView)
	for _, v := range ds.Views() {
		r := v.Registry
		if r == nil || !r.IsOrganization() {
			continue
		}
		last := strings.ToUpper(strings.TrimSpace(r.OfficialLast))
		first := strings.ToUpper(strings.TrimSpace(r.OfficialFirst))
		if last == "" || first == "" {
			continue
		}
		key := officialKey{Last: last, First: first}
		groups[key] = append(groups[key], v)
	}

	keys := make([]officialKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Last != keys[j].Last {
			return keys[i].Last < keys[j].Last
		}
		return keys[i].First < keys[j].First
	})

	var hits []model.SignalHit

	for _, key := range keys {
		members := groups[key]
		if len(members) < minControlledNPIs {
			continue
		}

		var combined float64
		npis := make([]string, 0, len(members))
		perNPI := make(map[string]float64, len(members))
		for _, m := range members {
			combined += m.TotalPaid
			npis = append(npis, m.NPI)
			perNPI[m.NPI] = m.TotalPaid
		}
		if combined <= minCombinedPaid {
			continue
		}
		sort.Strings(npis)

		ev := OfficialEvidence{
			OfficialName: key.First + " " + key.Last,
			MemberCount:  len(npis),
			MemberNPIs:   npis,
			PaidPerNPI:   perNPI,
			CombinedPaid: combined,
		}

		severity := model.SeverityMedium
		if combined > highSeverityCombined {
			severity = model.SeverityHigh
		}

		for _, npi := range npis {
			hits = append(hits, model.SignalHit{
				NPI:      npi,
				Kind:     model.KindSharedOfficial,
				Severity: severity,
				Evidence: ev,
			})
		}
	}

	return hits
}
