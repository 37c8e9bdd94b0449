package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/jim-agent/medicaid-fraud-detector/internal/model"
	"github.com/jim-agent/medicaid-fraud-detector/internal/resolve"
	"github.com/jim-agent/medicaid-fraud-detector/internal/signal"
)

func testDataset() *resolve.Dataset {
	claims := []model.Claim{
		{NPI: "1234567890", ServiceMonth: model.Month{Year: 2024, Mon: time.January}, Paid: 1000, HCPCS: "99213", BeneficiaryID: "B1"},
		{NPI: "1234567891", ServiceMonth: model.Month{Year: 2024, Mon: time.January}, Paid: 2000, HCPCS: "99213", BeneficiaryID: "B2"},
	}
	registry := []model.RegistryEntity{
		{
			NPI: "1234567890", Name: "ACME HOME CARE LLC", EntityType: model.EntityOrganization,
			TaxonomyCode: "251E00000X", State: "FL",
			EnumerationDate: time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC),
		},
	}
	return resolve.Resolve(claims, nil, registry)
}

func testOptions() Options {
	return Options{
		RunID:       "4bf0cd12-0cc9-4f6d-9d35-67d892314a55",
		GeneratedAt: time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC),
		LoadStats:   LoadStats{},
		Metrics:     Metrics{RuntimeSeconds: 1.5, PeakMemoryBytes: 1 << 20},
	}
}

func TestCompose_MergesHitsPerProvider(t *testing.T) {
	ds := testDataset()
	hits := map[model.Kind][]model.SignalHit{
		model.KindExcludedProvider: {{
			NPI: "1234567890", Kind: model.KindExcludedProvider, Severity: model.SeverityCritical,
			Evidence:    signal.ExcludedEvidence{ExclusionDate: "2020-01-01", PostExclusionPaid: 1000},
			Overpayment: 1000,
		}},
		model.KindBillingOutlier: {{
			NPI: "1234567890", Kind: model.KindBillingOutlier, Severity: model.SeverityMedium,
			Evidence:    signal.OutlierEvidence{TotalPaid: 1000},
			Overpayment: 250,
		}},
	}

	r := Compose(ds, hits, testOptions())

	if r.TotalProvidersFlagged != 1 || len(r.FlaggedProviders) != 1 {
		t.Fatalf("expected exactly one report, got %d", len(r.FlaggedProviders))
	}
	fp := r.FlaggedProviders[0]
	if fp.NPI != "1234567890" {
		t.Errorf("got NPI %s", fp.NPI)
	}
	if len(fp.Signals) != 2 {
		t.Errorf("expected 2 signal entries, got %d", len(fp.Signals))
	}
	if fp.EstimatedOverpaymentUSD != 1250 {
		t.Errorf("overpayment sum: got %f, want 1250", fp.EstimatedOverpaymentUSD)
	}
	if fp.HighestSeverity != model.SeverityCritical {
		t.Errorf("got highest severity %s", fp.HighestSeverity)
	}
	if fp.ProviderName != "ACME HOME CARE LLC" || fp.EntityType != "organization" {
		t.Errorf("registry metadata missing: %+v", fp)
	}
	if fp.EnumerationDate != "2023-03-01" {
		t.Errorf("got enumeration date %q", fp.EnumerationDate)
	}
	if fp.TotalPaidAllTime != 1000 || fp.TotalClaimsAllTime != 1 {
		t.Errorf("totals wrong: %+v", fp)
	}

	// FCA relevance derives from the first signal in canonical kind
	// order, here excluded_provider.
	if fp.FCARelevance.StatuteReference != "31 U.S.C. § 3729(a)(1)(A)" {
		t.Errorf("got statute %q", fp.FCARelevance.StatuteReference)
	}
	if len(fp.FCARelevance.SuggestedNextSteps) < 2 {
		t.Errorf("expected at least 2 next steps, got %d", len(fp.FCARelevance.SuggestedNextSteps))
	}
}

func TestCompose_DropsInvalidNPIs(t *testing.T) {
	ds := testDataset()
	hits := map[model.Kind][]model.SignalHit{
		model.KindWorkforce: {
			{NPI: "0000000000", Kind: model.KindWorkforce, Severity: model.SeverityHigh},
			{NPI: "12345", Kind: model.KindWorkforce, Severity: model.SeverityHigh},
			{NPI: "1234567891", Kind: model.KindWorkforce, Severity: model.SeverityHigh},
		},
	}

	r := Compose(ds, hits, testOptions())

	if len(r.FlaggedProviders) != 1 || r.FlaggedProviders[0].NPI != "1234567891" {
		t.Fatalf("invalid NPIs must be dropped, got %+v", r.FlaggedProviders)
	}
	if r.SignalCounts[model.KindWorkforce] != 1 {
		t.Errorf("signal counts must exclude dropped hits, got %d", r.SignalCounts[model.KindWorkforce])
	}
}

func TestCompose_OrderAndOverlap(t *testing.T) {
	ds := testDataset()
	hits := map[model.Kind][]model.SignalHit{
		model.KindBillingOutlier: {
			{NPI: "1234567891", Kind: model.KindBillingOutlier, Severity: model.SeverityMedium},
			{NPI: "1234567890", Kind: model.KindBillingOutlier, Severity: model.SeverityMedium},
		},
		model.KindGeographic: {
			{NPI: "1234567891", Kind: model.KindGeographic, Severity: model.SeverityMedium},
		},
	}

	r := Compose(ds, hits, testOptions())

	npis := make([]string, len(r.FlaggedProviders))
	for i, fp := range r.FlaggedProviders {
		npis[i] = fp.NPI
	}
	if !sort.StringsAreSorted(npis) {
		t.Errorf("reports must be NPI-ascending, got %v", npis)
	}

	// One provider with one kind, one with two; counts must total the
	// flagged providers.
	if r.ProvidersBySignalCount[1] != 1 || r.ProvidersBySignalCount[2] != 1 {
		t.Errorf("overlap stats wrong: %v", r.ProvidersBySignalCount)
	}
	total := 0
	for _, n := range r.ProvidersBySignalCount {
		total += n
	}
	if total != r.TotalProvidersFlagged {
		t.Errorf("overlap counts sum to %d, want %d", total, r.TotalProvidersFlagged)
	}
}

func TestCompose_EnvelopeFields(t *testing.T) {
	ds := testDataset()
	r := Compose(ds, nil, testOptions())

	if r.ToolVersion != ToolVersion {
		t.Errorf("got tool version %q", r.ToolVersion)
	}
	if r.RunID == "" || r.GeneratedAt != "2026-08-30T12:00:00Z" {
		t.Errorf("envelope fields wrong: run_id=%q generated_at=%q", r.RunID, r.GeneratedAt)
	}
	if r.TotalProvidersScanned != 2 {
		t.Errorf("expected 2 providers scanned, got %d", r.TotalProvidersScanned)
	}
	if r.TotalProvidersFlagged != 0 {
		t.Errorf("expected no flagged providers, got %d", r.TotalProvidersFlagged)
	}
	if len(r.SignalCounts) != len(model.Kinds) {
		t.Errorf("every signal kind needs a count entry, got %v", r.SignalCounts)
	}
}

func TestCompose_Idempotent(t *testing.T) {
	ds := testDataset()
	hits := map[model.Kind][]model.SignalHit{
		model.KindBillingOutlier: {
			{NPI: "1234567890", Kind: model.KindBillingOutlier, Severity: model.SeverityMedium, Overpayment: 10},
		},
	}
	opts := testOptions()

	a, _ := json.Marshal(Compose(ds, hits, opts))
	b, _ := json.Marshal(Compose(ds, hits, opts))
	if string(a) != string(b) {
		t.Error("composing the same inputs twice must produce identical output")
	}
}

func TestWrite_RoundTrip(t *testing.T) {
	ds := testDataset()
	hits := map[model.Kind][]model.SignalHit{
		model.KindExcludedProvider: {{
			NPI: "1234567890", Kind: model.KindExcludedProvider, Severity: model.SeverityCritical,
			Evidence:    signal.ExcludedEvidence{ExclusionDate: "2020-01-01", PostExclusionPaid: 500},
			Overpayment: 500,
		}},
	}
	r := Compose(ds, hits, testOptions())

	path := filepath.Join(t.TempDir(), "report.json")
	if err := Write(path, r); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if decoded["total_providers_flagged"] != float64(1) {
		t.Errorf("got total_providers_flagged %v", decoded["total_providers_flagged"])
	}
	if _, ok := decoded["flagged_providers"]; !ok {
		t.Error("missing flagged_providers key")
	}
}

func TestWrite_EmptyReportHasArray(t *testing.T) {
	r := Compose(testDataset(), nil, testOptions())

	path := filepath.Join(t.TempDir(), "report.json")
	if err := Write(path, r); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	var decoded struct {
		FlaggedProviders []json.RawMessage `json:"flagged_providers"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.FlaggedProviders == nil {
		t.Error("flagged_providers must serialize as an empty array, not null")
	}
}
