package loader

import (
	"fmt"
	"time"

	"github.com/jim-agent/medicaid-fraud-detector/internal/model"
)

// LoadRegistry loads the NPPES-style provider registry. Rows without an
// NPI are skipped; other fields are carried through as-is, with the
// enumeration date parsed from either YYYY-MM-DD or MM/DD/YYYY (the
// NPPES export format).
func LoadRegistry(path string, onRow func()) ([]model.RegistryEntity, Stats, error) {
	src, err := openInput(path)
	if err != nil {
		return nil, Stats{}, err
	}
	defer src.Close()

	var (
		entities []model.RegistryEntity
		stats    Stats
	)

	required := []string{"npi", "entity_type_code"}
	err = forEachRow(src, &stats, required, func(h header, row []string) bool {
		npi := h.field(row, "npi")
		if npi == "" {
			return false
		}

		entities = append(entities, model.RegistryEntity{
			NPI:             npi,
			Name:            h.field(row, "name"),
			EntityType:      h.field(row, "entity_type_code"),
			TaxonomyCode:    h.field(row, "taxonomy_code"),
			State:           h.field(row, "state"),
			EnumerationDate: parseEnumerationDate(h.field(row, "enumeration_date")),
			OfficialLast:    h.field(row, "auth_official_last"),
			OfficialFirst:   h.field(row, "auth_official_first"),
		})
		if onRow != nil {
			onRow()
		}
		return true
	})
	if err != nil {
		return nil, stats, fmt.Errorf("loading registry from %s: %w", path, err)
	}
	return entities, stats, nil
}

func parseEnumerationDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{"2006-01-02", "01/02/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
