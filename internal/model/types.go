package model

import "time"

// Claim is a single billed-service record from the spending dataset.
// Claims are created by the loader and read-only downstream.
type Claim struct {
	NPI           string
	ServiceMonth  Month
	Paid          float64
	HCPCS         string
	BeneficiaryID string
}

// ExclusionRecord is one LEIE exclusion-list row. A zero ExclDate or
// ReinDate means the date was absent or the all-zero sentinel.
type ExclusionRecord struct {
	NPI      string // may be empty; not every exclusion carries an NPI
	ExclDate time.Time
	ReinDate time.Time
	ExclType string
}

// Reinstated reports whether the record carries a reinstatement date.
func (e *ExclusionRecord) Reinstated() bool {
	return !e.ReinDate.IsZero()
}

// Entity type codes used by the registry source.
const (
	EntityIndividual   = "1"
	EntityOrganization = "2"
)

// RegistryEntity is one provider-registry row (NPPES-style).
type RegistryEntity struct {
	NPI             string
	Name            string
	EntityType      string // EntityIndividual or EntityOrganization
	TaxonomyCode    string
	State           string
	EnumerationDate time.Time // zero if absent or unparseable
	OfficialLast    string    // authorized official, organizations only
	OfficialFirst   string
}

// IsOrganization reports whether the entity is an organization (type 2).
func (r *RegistryEntity) IsOrganization() bool {
	return r.EntityType == EntityOrganization
}

// EntityTypeName returns the human-readable entity type for report output.
func (r *RegistryEntity) EntityTypeName() string {
	switch r.EntityType {
	case EntityIndividual:
		return "individual"
	case EntityOrganization:
		return "organization"
	}
	return "unknown"
}

// MonthStats holds per-month billing aggregates for one provider.
type MonthStats struct {
	Month         Month
	Paid          float64
	Claims        int
	Beneficiaries int // distinct beneficiary identifiers in the month
}

// ProviderView is the resolved, NPI-unique join of claim aggregates,
// registry metadata, and a matched exclusion record. It is shared
// read-only by all detectors; no detector mutates it.
type ProviderView struct {
	NPI       string
	Registry  *RegistryEntity  // nil if the NPI has no registry row
	Exclusion *ExclusionRecord // nil if the NPI is not on the exclusion list

	TotalPaid          float64
	TotalClaims        int
	TotalBeneficiaries int // distinct beneficiary identifiers all time

	// Months is the per-month billing series, ascending by month.
	Months []MonthStats
}

// TaxonomyCode returns the registry taxonomy code, or "" without a registry row.
func (v *ProviderView) TaxonomyCode() string {
	if v.Registry == nil {
		return ""
	}
	return v.Registry.TaxonomyCode
}

// State returns the registry state, or "" without a registry row.
func (v *ProviderView) State() string {
	if v.Registry == nil {
		return ""
	}
	return v.Registry.State
}

// Kind identifies one of the six fraud signals.
type Kind string

const (
	KindExcludedProvider Kind = "excluded_provider"
	KindBillingOutlier   Kind = "billing_outlier"
	KindRapidEscalation  Kind = "rapid_escalation"
	KindWorkforce        Kind = "workforce_impossibility"
	KindSharedOfficial   Kind = "shared_official"
	KindGeographic       Kind = "geographic_implausibility"
)

// Kinds lists all signal kinds in canonical order.
var Kinds = []Kind{
	KindExcludedProvider,
	KindBillingOutlier,
	KindRapidEscalation,
	KindWorkforce,
	KindSharedOfficial,
	KindGeographic,
}

// Severity levels, ordered critical > high > medium.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
)

// HighestSeverity returns the strongest severity in the list, defaulting
// to medium for an empty input.
func HighestSeverity(severities []string) string {
	highest := SeverityMedium
	for _, s := range severities {
		switch s {
		case SeverityCritical:
			return SeverityCritical
		case SeverityHigh:
			highest = SeverityHigh
		}
	}
	return highest
}

// SignalHit is one detector finding for one provider. Evidence is a
// detector-specific struct that marshals directly into the report.
type SignalHit struct {
	NPI         string
	Kind        Kind
	Severity    string
	Evidence    any
	Overpayment float64 // estimated overpayment contribution in USD
}
