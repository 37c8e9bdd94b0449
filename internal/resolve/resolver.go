// Package resolve builds the canonical per-provider view: claim
// aggregates joined to registry metadata and exclusion records, keyed
// uniquely by validated NPI.
package resolve

import (
	"sort"

	"github.com/jim-agent/medicaid-fraud-detector/internal/model"
)

// Dataset is the frozen output of the loading phase, shared read-only
// by every detector.
type Dataset struct {
	Claims    []model.Claim
	Providers map[string]*model.ProviderView
}

// Views returns the provider views in NPI-ascending order.
func (d *Dataset) Views() []*model.ProviderView {
	views := make([]*model.ProviderView, 0, len(d.Providers))
	for _, v := range d.Providers {
		views = append(views, v)
	}
	sort.Slice(views, func(i, j int) bool { return views[i].NPI < views[j].NPI })
	return views
}

// LatestMonth returns the latest service month across all claims, and
// false if there are no claims.
func (d *Dataset) LatestMonth() (model.Month, bool) {
	var latest model.Month
	found := false
	for _, c := range d.Claims {
		if !found || c.ServiceMonth.After(latest) {
			latest = c.ServiceMonth
			found = true
		}
	}
	return latest, found
}

// Resolve joins the three loaded sources into ProviderViews. Invalid
// NPIs never produce a view (a filtering rule, not an error); a view is
// materialized only for NPIs with at least a claims or registry match.
// For duplicate exclusion rows the one with the latest exclusion date
// is authoritative; rows without dates lose to rows with dates.
func Resolve(claims []model.Claim, exclusions []model.ExclusionRecord, registry []model.RegistryEntity) *Dataset {
	type monthAgg struct {
		paid   float64
		claims int
		benes  map[string]struct{}
	}

	byNPI := make(map[string]map[model.Month]*monthAgg)
	allBenes := make(map[string]map[string]struct{})

	for i := range claims {
		c := &claims[i]
		if !model.ValidNPI(c.NPI) {
			continue
		}
		months := byNPI[c.NPI]
		if months == nil {
			months = make(map[model.Month]*monthAgg)
			byNPI[c.NPI] = months
			allBenes[c.NPI] = make(map[string]struct{})
		}
		agg := months[c.ServiceMonth]
		if agg == nil {
			agg = &monthAgg{benes: make(map[string]struct{})}
			months[c.ServiceMonth] = agg
		}
		agg.paid += c.Paid
		agg.claims++
		if c.BeneficiaryID != "" {
			agg.benes[c.BeneficiaryID] = struct{}{}
			allBenes[c.NPI][c.BeneficiaryID] = struct{}{}
		}
	}

	registryByNPI := make(map[string]*model.RegistryEntity, len(registry))
	for i := range registry {
		e := &registry[i]
		if !model.ValidNPI(e.NPI) {
			continue
		}
		if _, dup := registryByNPI[e.NPI]; dup {
			continue // first registry row wins
		}
		registryByNPI[e.NPI] = e
	}

	exclusionByNPI := make(map[string]*model.ExclusionRecord)
	for i := range exclusions {
		e := &exclusions[i]
		if !model.ValidNPI(e.NPI) {
			continue
		}
		cur, ok := exclusionByNPI[e.NPI]
		if !ok {
			exclusionByNPI[e.NPI] = e
			continue
		}
		// Latest exclusion record is authoritative.
		if !e.ExclDate.IsZero() && (cur.ExclDate.IsZero() || e.ExclDate.After(cur.ExclDate)) {
			exclusionByNPI[e.NPI] = e
		}
	}

	providers := make(map[string]*model.ProviderView)

	for npi, months := range byNPI {
		view := &model.ProviderView{
			NPI:       npi,
			Registry:  registryByNPI[npi],
			Exclusion: exclusionByNPI[npi],
		}

		view.Months = make([]model.MonthStats, 0, len(months))
		for m, agg := range months {
			view.Months = append(view.Months, model.MonthStats{
				Month:         m,
				Paid:          agg.paid,
				Claims:        agg.claims,
				Beneficiaries: len(agg.benes),
			})
			view.TotalPaid += agg.paid
			view.TotalClaims += agg.claims
		}
		sort.Slice(view.Months, func(i, j int) bool {
			return view.Months[i].Month.Before(view.Months[j].Month)
		})
		view.TotalBeneficiaries = len(allBenes[npi])

		providers[npi] = view
	}

	// Registry-only providers still get a view: detectors like the
	// shared-official grouping consider entities that never billed.
	for npi, entity := range registryByNPI {
		if _, ok := providers[npi]; ok {
			continue
		}
		providers[npi] = &model.ProviderView{
			NPI:       npi,
			Registry:  entity,
			Exclusion: exclusionByNPI[npi],
		}
	}

	return &Dataset{Claims: claims, Providers: providers}
}
