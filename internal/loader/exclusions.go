package loader

import (
	"fmt"

	"github.com/jim-agent/medicaid-fraud-detector/internal/model"
)

// LoadExclusions loads the LEIE-style exclusion list. NPI may be empty
// (many exclusions predate NPI assignment); dates are 8-digit YYYYMMDD
// with "00000000" meaning absent.
func LoadExclusions(path string, onRow func()) ([]model.ExclusionRecord, Stats, error) {
	src, err := openInput(path)
	if err != nil {
		return nil, Stats{}, err
	}
	defer src.Close()

	var (
		records []model.ExclusionRecord
		stats   Stats
	)

	required := []string{"excldate", "excltype"}
	err = forEachRow(src, &stats, required, func(h header, row []string) bool {
		rec := model.ExclusionRecord{
			NPI:      h.field(row, "npi"),
			ExclType: h.field(row, "excltype"),
		}
		// Sentinel and unparseable dates normalize to absent.
		if d, ok := model.ParseDate8(h.field(row, "excldate")); ok {
			rec.ExclDate = d
		}
		if d, ok := model.ParseDate8(h.field(row, "reindate")); ok {
			rec.ReinDate = d
		}

		records = append(records, rec)
		if onRow != nil {
			onRow()
		}
		return true
	})
	if err != nil {
		return nil, stats, fmt.Errorf("loading exclusions from %s: %w", path, err)
	}
	return records, stats, nil
}
