package resolve

import (
	"testing"
	"time"

	"github.com/jim-agent/medicaid-fraud-detector/internal/model"
)

func month(y int, m time.Month) model.Month { return model.Month{Year: y, Mon: m} }

func claim(npi string, y int, m time.Month, paid float64, code, bene string) model.Claim {
	return model.Claim{NPI: npi, ServiceMonth: month(y, m), Paid: paid, HCPCS: code, BeneficiaryID: bene}
}

func TestResolve_AggregatesClaims(t *testing.T) {
	claims := []model.Claim{
		claim("1234567890", 2024, time.June, 100, "G0151", "B1"),
		claim("1234567890", 2024, time.June, 200, "G0151", "B2"),
		claim("1234567890", 2024, time.July, 300, "G0152", "B1"),
	}

	ds := Resolve(claims, nil, nil)

	v, ok := ds.Providers["1234567890"]
	if !ok {
		t.Fatal("expected a view for 1234567890")
	}
	if v.TotalPaid != 600 {
		t.Errorf("expected total 600, got %f", v.TotalPaid)
	}
	if v.TotalClaims != 3 {
		t.Errorf("expected 3 claims, got %d", v.TotalClaims)
	}
	if v.TotalBeneficiaries != 2 {
		t.Errorf("expected 2 distinct beneficiaries, got %d", v.TotalBeneficiaries)
	}

	if len(v.Months) != 2 {
		t.Fatalf("expected 2 months, got %d", len(v.Months))
	}
	june := v.Months[0]
	if june.Month.String() != "2024-06" {
		t.Errorf("months not sorted ascending: first is %s", june.Month)
	}
	if june.Paid != 300 || june.Claims != 2 || june.Beneficiaries != 2 {
		t.Errorf("unexpected june aggregate %+v", june)
	}
}

func TestResolve_InvalidNPIsFiltered(t *testing.T) {
	claims := []model.Claim{
		claim("0000000000", 2024, time.June, 100, "X", "B1"), // all-zero sentinel
		claim("12345", 2024, time.June, 100, "X", "B1"),      // wrong length
		claim("12345678xx", 2024, time.June, 100, "X", "B1"), // non-digit
	}
	registry := []model.RegistryEntity{{NPI: "0000000000", Name: "ZERO"}}

	ds := Resolve(claims, nil, registry)
	if len(ds.Providers) != 0 {
		t.Errorf("expected no views for invalid NPIs, got %d", len(ds.Providers))
	}
}

func TestResolve_JoinsRegistryAndExclusion(t *testing.T) {
	claims := []model.Claim{claim("1234567890", 2024, time.June, 100, "X", "B1")}
	registry := []model.RegistryEntity{{NPI: "1234567890", Name: "DOE, JOHN", EntityType: model.EntityIndividual}}
	exclusions := []model.ExclusionRecord{{NPI: "1234567890", ExclDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}}

	ds := Resolve(claims, exclusions, registry)
	v := ds.Providers["1234567890"]
	if v.Registry == nil || v.Registry.Name != "DOE, JOHN" {
		t.Error("expected registry join")
	}
	if v.Exclusion == nil || v.Exclusion.ExclDate.Year() != 2020 {
		t.Error("expected exclusion join")
	}
}

func TestResolve_LatestExclusionWins(t *testing.T) {
	claims := []model.Claim{claim("1234567890", 2024, time.June, 100, "X", "B1")}
	exclusions := []model.ExclusionRecord{
		{NPI: "1234567890", ExclDate: time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC), ExclType: "old"},
		{NPI: "1234567890", ExclDate: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), ExclType: "new"},
		{NPI: "1234567890", ExclType: "dateless"},
	}

	ds := Resolve(claims, exclusions, nil)
	v := ds.Providers["1234567890"]
	if v.Exclusion == nil || v.Exclusion.ExclType != "new" {
		t.Fatalf("expected latest exclusion to win, got %+v", v.Exclusion)
	}
}

func TestResolve_RegistryOnlyProviderGetsView(t *testing.T) {
	registry := []model.RegistryEntity{{NPI: "5555555555", Name: "NO CLAIMS LLC", EntityType: model.EntityOrganization}}

	ds := Resolve(nil, nil, registry)
	v, ok := ds.Providers["5555555555"]
	if !ok {
		t.Fatal("expected registry-only view")
	}
	if v.TotalPaid != 0 || len(v.Months) != 0 {
		t.Errorf("expected empty billing aggregates, got %+v", v)
	}
}

func TestDataset_LatestMonth(t *testing.T) {
	claims := []model.Claim{
		claim("1234567890", 2023, time.December, 1, "X", "B"),
		claim("1234567890", 2024, time.March, 1, "X", "B"),
		claim("1234567890", 2024, time.January, 1, "X", "B"),
	}
	ds := Resolve(claims, nil, nil)
	latest, ok := ds.LatestMonth()
	if !ok || latest.String() != "2024-03" {
		t.Errorf("expected 2024-03, got %v ok=%v", latest, ok)
	}

	empty := Resolve(nil, nil, nil)
	if _, ok := empty.LatestMonth(); ok {
		t.Error("expected no latest month for empty dataset")
	}
}

func TestDataset_ViewsSortedByNPI(t *testing.T) {
	claims := []model.Claim{
		claim("9999999999", 2024, time.June, 1, "X", "B"),
		claim("1111111111", 2024, time.June, 1, "X", "B"),
		claim("5555555555", 2024, time.June, 1, "X", "B"),
	}
	ds := Resolve(claims, nil, nil)
	views := ds.Views()
	if len(views) != 3 {
		t.Fatalf("expected 3 views, got %d", len(views))
	}
	for i := 1; i < len(views); i++ {
		if views[i-1].NPI >= views[i].NPI {
			t.Errorf("views not sorted: %s before %s", views[i-1].NPI, views[i].NPI)
		}
	}
}
