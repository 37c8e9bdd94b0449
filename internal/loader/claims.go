package loader

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jim-agent/medicaid-fraud-detector/internal/model"
)

// Claims source columns. The same names are used for CSV headers and
// NDJSON object keys.
const (
	colNPI         = "npi"
	colMonth       = "service_month"
	colPaid        = "paid_amount"
	colProcedure   = "procedure_code"
	colBeneficiary = "beneficiary_id"
)

// LoadClaims loads the billing claims source. The format is chosen by
// extension: .csv for columnar rows, .ndjson/.jsonl for one JSON object
// per line (with a simdjson fast path on supported CPUs). A trailing
// .gz is decompressed transparently. onRow, if non-nil, is called for
// every accepted row so callers can drive progress reporting.
func LoadClaims(path string, onRow func()) ([]model.Claim, Stats, error) {
	src, err := openInput(path)
	if err != nil {
		return nil, Stats{}, err
	}
	defer src.Close()

	var (
		claims []model.Claim
		stats  Stats
	)
	emit := func(c model.Claim) {
		claims = append(claims, c)
		if onRow != nil {
			onRow()
		}
	}

	switch {
	case strings.HasSuffix(trimGz(path), ".ndjson"), strings.HasSuffix(trimGz(path), ".jsonl"):
		err = scanClaimsNDJSON(src, &stats, emit)
	default:
		err = scanClaimsCSV(src, &stats, emit)
	}
	if err != nil {
		return nil, stats, fmt.Errorf("loading claims from %s: %w", path, err)
	}
	return claims, stats, nil
}

func scanClaimsCSV(src io.Reader, stats *Stats, emit func(model.Claim)) error {
	required := []string{colNPI, colMonth, colPaid, colProcedure, colBeneficiary}
	return forEachRow(src, stats, required, func(h header, row []string) bool {
		c, ok := buildClaim(
			h.field(row, colNPI),
			h.field(row, colMonth),
			h.field(row, colPaid),
			h.field(row, colProcedure),
			h.field(row, colBeneficiary),
		)
		if !ok {
			return false
		}
		emit(c)
		return true
	})
}

// buildClaim validates and coerces one raw claims row. Rows that cannot
// be coerced are dropped at this boundary rather than propagated.
func buildClaim(npi, month, paid, code, bene string) (model.Claim, bool) {
	if npi == "" || month == "" || paid == "" {
		return model.Claim{}, false
	}
	m, err := model.ParseMonth(month)
	if err != nil {
		return model.Claim{}, false
	}
	amount, err := strconv.ParseFloat(paid, 64)
	if err != nil {
		return model.Claim{}, false
	}
	return model.Claim{
		NPI:           npi,
		ServiceMonth:  m,
		Paid:          amount,
		HCPCS:         code,
		BeneficiaryID: bene,
	}, true
}
