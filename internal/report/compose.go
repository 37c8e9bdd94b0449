// Package report merges signal hits into the final per-provider fraud
// report: validity filtering, per-provider grouping, overpayment
// totals, FCA relevance metadata, and overlap statistics.
package report

import (
	"sort"
	"time"

	"github.com/jim-agent/medicaid-fraud-detector/internal/loader"
	"github.com/jim-agent/medicaid-fraud-detector/internal/model"
	"github.com/jim-agent/medicaid-fraud-detector/internal/resolve"
)

// ToolVersion is stamped into every report envelope.
const ToolVersion = "1.0.0"

// LoadStats carries per-source row counts from the loading phase.
type LoadStats struct {
	Claims     loader.Stats `json:"claims"`
	Exclusions loader.Stats `json:"exclusions"`
	Registry   loader.Stats `json:"registry"`
}

// Metrics holds execution measurements supplied by the runtime.
type Metrics struct {
	RuntimeSeconds  float64 `json:"runtime_seconds"`
	PeakMemoryBytes uint64  `json:"peak_memory_bytes"`
}

// FCARelevance maps a provider's primary signal to False Claims Act
// context for investigators.
type FCARelevance struct {
	ClaimType          string   `json:"claim_type"`
	StatuteReference   string   `json:"statute_reference"`
	SuggestedNextSteps []string `json:"suggested_next_steps"`
}

// SignalEntry is one detector finding as it appears in a provider's report.
type SignalEntry struct {
	SignalType  model.Kind `json:"signal_type"`
	Severity    string     `json:"severity"`
	Evidence    any        `json:"evidence"`
	Overpayment float64    `json:"estimated_overpayment_usd"`
}

// FlaggedProvider is the per-provider report record. Exactly one exists
// per unique valid NPI with at least one surviving hit.
type FlaggedProvider struct {
	NPI             string `json:"npi"`
	ProviderName    string `json:"provider_name"`
	EntityType      string `json:"entity_type"`
	TaxonomyCode    string `json:"taxonomy_code,omitempty"`
	State           string `json:"state,omitempty"`
	EnumerationDate string `json:"enumeration_date,omitempty"`

	TotalPaidAllTime   float64 `json:"total_paid_all_time"`
	TotalClaimsAllTime int     `json:"total_claims_all_time"`
	TotalBeneficiaries int     `json:"total_unique_beneficiaries_all_time"`

	HighestSeverity         string        `json:"highest_severity"`
	Signals                 []SignalEntry `json:"signals"`
	EstimatedOverpaymentUSD float64       `json:"estimated_overpayment_usd"`
	FCARelevance            FCARelevance  `json:"fca_relevance"`
}

// Report is the full output envelope.
type Report struct {
	GeneratedAt           string             `json:"generated_at"`
	ToolVersion           string             `json:"tool_version"`
	RunID                 string             `json:"run_id"`
	TotalProvidersScanned int                `json:"total_providers_scanned"`
	TotalProvidersFlagged int                `json:"total_providers_flagged"`
	SignalCounts          map[model.Kind]int `json:"signal_counts"`

	// ProvidersBySignalCount counts flagged providers by how many
	// distinct signal kinds fired on them (key 1..6).
	ProvidersBySignalCount map[int]int `json:"providers_by_signal_count"`

	FlaggedProviders []FlaggedProvider `json:"flagged_providers"`
	LoadStats        LoadStats         `json:"load_stats"`
	Metrics          Metrics           `json:"execution_metrics"`
}

// Options carries runtime-supplied envelope fields.
type Options struct {
	RunID       string
	GeneratedAt time.Time
	LoadStats   LoadStats
	Metrics     Metrics
}

// Compose merges all detector hits into the final report. Hits against
// invalid NPIs are dropped even if a detector produced them; output
// order is NPI-ascending for reproducibility.
func Compose(ds *resolve.Dataset, hitsByKind map[model.Kind][]model.SignalHit, opts Options) *Report {
	counts := make(map[model.Kind]int, len(model.Kinds))
	byNPI := make(map[string][]model.SignalHit)

	// Iterating kinds in canonical order keeps each provider's signal
	// list kind-ordered, which also fixes the primary signal used for
	// FCA relevance.
	for _, kind := range model.Kinds {
		counts[kind] = 0
		for _, h := range hitsByKind[kind] {
			if !model.ValidNPI(h.NPI) {
				continue
			}
			counts[kind]++
			byNPI[h.NPI] = append(byNPI[h.NPI], h)
		}
	}

	npis := make([]string, 0, len(byNPI))
	for npi := range byNPI {
		npis = append(npis, npi)
	}
	sort.Strings(npis)

	overlap := make(map[int]int)
	flagged := make([]FlaggedProvider, 0, len(npis))

	for _, npi := range npis {
		hits := byNPI[npi]

		fp := FlaggedProvider{
			NPI:          npi,
			ProviderName: "Unknown",
			EntityType:   "unknown",
		}
		if v := ds.Providers[npi]; v != nil {
			fp.TotalPaidAllTime = v.TotalPaid
			fp.TotalClaimsAllTime = v.TotalClaims
			fp.TotalBeneficiaries = v.TotalBeneficiaries
			if r := v.Registry; r != nil {
				if r.Name != "" {
					fp.ProviderName = r.Name
				}
				fp.EntityType = r.EntityTypeName()
				fp.TaxonomyCode = r.TaxonomyCode
				fp.State = r.State
				if !r.EnumerationDate.IsZero() {
					fp.EnumerationDate = r.EnumerationDate.Format("2006-01-02")
				}
			}
		}

		kinds := make(map[model.Kind]struct{})
		severities := make([]string, 0, len(hits))
		for _, h := range hits {
			kinds[h.Kind] = struct{}{}
			severities = append(severities, h.Severity)
			fp.EstimatedOverpaymentUSD += h.Overpayment
			fp.Signals = append(fp.Signals, SignalEntry{
				SignalType:  h.Kind,
				Severity:    h.Severity,
				Evidence:    h.Evidence,
				Overpayment: h.Overpayment,
			})
		}
		fp.HighestSeverity = model.HighestSeverity(severities)
		fp.FCARelevance = relevanceFor(hits[0], &fp)

		overlap[len(kinds)]++
		flagged = append(flagged, fp)
	}

	return &Report{
		GeneratedAt:            opts.GeneratedAt.UTC().Format(time.RFC3339),
		ToolVersion:            ToolVersion,
		RunID:                  opts.RunID,
		TotalProvidersScanned:  len(ds.Providers),
		TotalProvidersFlagged:  len(flagged),
		SignalCounts:           counts,
		ProvidersBySignalCount: overlap,
		FlaggedProviders:       flagged,
		LoadStats:              opts.LoadStats,
		Metrics:                opts.Metrics,
	}
}
