package loader

import (
	"bufio"
	"encoding/json"
	"io"

	simdjson "github.com/minio/simdjson-go"

	"github.com/jim-agent/medicaid-fraud-detector/internal/model"
)

// useSimd is true when the CPU supports simdjson (AVX2+CLMUL on amd64).
// On other platforms the stdlib scanner is used.
var useSimd = simdjson.SupportedCPU()

// claimRow mirrors one NDJSON claims line for the stdlib path.
type claimRow struct {
	NPI           string  `json:"npi"`
	ServiceMonth  string  `json:"service_month"`
	PaidAmount    float64 `json:"paid_amount"`
	ProcedureCode string  `json:"procedure_code"`
	BeneficiaryID string  `json:"beneficiary_id"`
}

func scanClaimsNDJSON(src io.Reader, stats *Stats, emit func(model.Claim)) error {
	if useSimd {
		return scanClaimsNDJSONSimd(src, stats, emit)
	}
	return scanClaimsNDJSONStdlib(src, stats, emit)
}

func scanClaimsNDJSONStdlib(src io.Reader, stats *Stats, emit func(model.Claim)) error {
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var row claimRow
		if err := json.Unmarshal(line, &row); err != nil {
			stats.Skipped++
			continue
		}

		month, err := model.ParseMonth(row.ServiceMonth)
		if err != nil || row.NPI == "" {
			stats.Skipped++
			continue
		}

		emit(model.Claim{
			NPI:           row.NPI,
			ServiceMonth:  month,
			Paid:          row.PaidAmount,
			HCPCS:         row.ProcedureCode,
			BeneficiaryID: row.BeneficiaryID,
		})
		stats.Rows++
	}

	return scanner.Err()
}

// scanClaimsNDJSONSimd parses claims NDJSON with simdjson. Field
// extraction is native; no json.Unmarshal on the hot path.
func scanClaimsNDJSONSimd(src io.Reader, stats *Stats, emit func(model.Claim)) error {
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)

	var pj *simdjson.ParsedJson // reused across Parse calls

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var err error
		pj, err = simdjson.Parse(line, pj)
		if err != nil {
			stats.Skipped++
			continue
		}

		ok := false
		pj.ForEach(func(i simdjson.Iter) error {
			ok = extractClaim(i, emit)
			return nil
		})
		if ok {
			stats.Rows++
		} else {
			stats.Skipped++
		}
	}

	return scanner.Err()
}

func extractClaim(i simdjson.Iter, emit func(model.Claim)) bool {
	npi, err := stringField(i, colNPI)
	if err != nil || npi == "" {
		return false
	}
	monthStr, err := stringField(i, colMonth)
	if err != nil {
		return false
	}
	month, err := model.ParseMonth(monthStr)
	if err != nil {
		return false
	}

	paidElem, err := i.FindElement(nil, colPaid)
	if err != nil {
		return false
	}
	paid, err := paidElem.Iter.Float()
	if err != nil {
		return false
	}

	// Procedure and beneficiary are tolerated when absent.
	code, _ := stringField(i, colProcedure)
	bene, _ := stringField(i, colBeneficiary)

	emit(model.Claim{
		NPI:           npi,
		ServiceMonth:  month,
		Paid:          paid,
		HCPCS:         code,
		BeneficiaryID: bene,
	})
	return true
}

func stringField(i simdjson.Iter, name string) (string, error) {
	elem, err := i.FindElement(nil, name)
	if err != nil {
		return "", err
	}
	return elem.Iter.String()
}
