package signal

import (
	"sort"
	"strconv"

	"github.com/jim-agent/medicaid-fraud-detector/internal/model"
	"github.com/jim-agent/medicaid-fraud-detector/internal/resolve"
)

const (
	// minHomeHealthClaims is the monthly home-health volume below which
	// the beneficiary ratio is not statistically meaningful.
	minHomeHealthClaims = 100

	// minBeneficiaryRatio: fewer distinct beneficiaries per claim than
	// this suggests repeated phantom billing on the same patients.
	minBeneficiaryRatio = 0.1
)

// isHomeHealthCode reports whether an HCPCS code falls in the
// home-health ranges G0151–G0162, G0299–G0300, S9122–S9124, T1019–T1022.
func isHomeHealthCode(code string) bool {
	if len(code) != 5 {
		return false
	}
	n, err := strconv.Atoi(code[1:])
	if err != nil {
		return false
	}
	switch code[0] {
	case 'G':
		return (n >= 151 && n <= 162) || (n >= 299 && n <= 300)
	case 'S':
		return n >= 9122 && n <= 9124
	case 'T':
		return n >= 1019 && n <= 1022
	}
	return false
}

// GeoEvidence documents a home-health provider-month whose distinct
// beneficiary count is implausibly low for its claim volume.
type GeoEvidence struct {
	Month         model.Month `json:"month"`
	HCPCSCodes    []string    `json:"flagged_hcpcs_codes"`
	Claims        int         `json:"claims_count"`
	Beneficiaries int         `json:"unique_beneficiaries"`
	Ratio         float64     `json:"beneficiary_to_claims_ratio"`
}

// DetectGeographicImplausibility flags provider-months with more than
// 100 home-health claims where distinct beneficiaries per claim fall
// below 0.1. A provider can be flagged once per qualifying month.
func DetectGeographicImplausibility(ds *resolve.Dataset) []model.SignalHit {
	type pm struct {
		NPI   string
		Month model.Month
	}
	type agg struct {
		claims int
		benes  map[string]struct{}
		codes  map[string]struct{}
	}

	byMonth := make(map[pm]*agg)
	for i := range ds.Claims {
		c := &ds.Claims[i]
		if !model.ValidNPI(c.NPI) || !isHomeHealthCode(c.HCPCS) {
			continue
		}
		key := pm{NPI: c.NPI, Month: c.ServiceMonth}
		a := byMonth[key]
		if a == nil {
			a = &agg{benes: make(map[string]struct{}), codes: make(map[string]struct{})}
			byMonth[key] = a
		}
		a.claims++
		a.codes[c.HCPCS] = struct{}{}
		if c.BeneficiaryID != "" {
			a.benes[c.BeneficiaryID] = struct{}{}
		}
	}

	keys := make([]pm, 0, len(byMonth))
	for k := range byMonth {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].NPI != keys[j].NPI {
			return keys[i].NPI < keys[j].NPI
		}
		return keys[i].Month.Before(keys[j].Month)
	})

	var hits []model.SignalHit

	for _, key := range keys {
		a := byMonth[key]
		if a.claims <= minHomeHealthClaims {
			continue
		}
		ratio := float64(len(a.benes)) / float64(a.claims)
		if ratio >= minBeneficiaryRatio {
			continue
		}

		codes := make([]string, 0, len(a.codes))
		for c := range a.codes {
			codes = append(codes, c)
		}
		sort.Strings(codes)

		hits = append(hits, model.SignalHit{
			NPI:      key.NPI,
			Kind:     model.KindGeographic,
			Severity: model.SeverityMedium,
			Evidence: GeoEvidence{
				Month:         key.Month,
				HCPCSCodes:    codes,
				Claims:        a.claims,
				Beneficiaries: len(a.benes),
				Ratio:         ratio,
			},
		})
	}

	return hits
}
