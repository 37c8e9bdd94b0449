package report

import (
	"encoding/json"
	"fmt"
	"os"
)

// Write renders the report as indented JSON to path, or to stdout when
// path is "-".
func Write(path string, r *Report) error {
	if r.FlaggedProviders == nil {
		r.FlaggedProviders = []FlaggedProvider{}
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}

	if path == "-" {
		_, err = os.Stdout.Write(data)
		fmt.Fprintln(os.Stdout)
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report to %s: %w", path, err)
	}
	return nil
}
