// Package report writes batch pricing and convergence results to disk as
// JSON and CSV for inspection outside the tool.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/contactkeval/option-lattice/internal/convergence"
	"github.com/contactkeval/option-lattice/internal/scenario"
)

// WriteBatchJSON writes priced scenarios to prices.json in outdir.
func WriteBatchJSON(results []scenario.Result, outdir string) error {
	b, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outdir, "prices.json"), b, 0644)
}

// WriteBatchCSV writes priced scenarios to prices.csv in outdir.
func WriteBatchCSV(results []scenario.Result, outdir string) error {
	f, err := os.Create(filepath.Join(outdir, "prices.csv"))
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()

	headers := []string{"name", "option_type", "spot", "strike", "maturity", "rate", "vol", "steps", "price"}
	if err := w.Write(headers); err != nil {
		return err
	}
	for _, r := range results {
		row := []string{
			r.Name,
			r.OptionType,
			fmt.Sprintf("%.4f", r.Spot),
			fmt.Sprintf("%.4f", r.Strike),
			fmt.Sprintf("%.6f", r.Maturity),
			fmt.Sprintf("%.6f", r.Rate),
			fmt.Sprintf("%.6f", r.Vol),
			fmt.Sprintf("%d", r.Steps),
			fmt.Sprintf("%.6f", r.Price),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteConvergenceJSON writes a convergence study to convergence.json.
func WriteConvergenceJSON(sum *convergence.Summary, outdir string) error {
	b, err := json.MarshalIndent(sum, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outdir, "convergence.json"), b, 0644)
}

// WriteConvergenceCSV writes the per-step rows of a convergence study to
// convergence.csv.
func WriteConvergenceCSV(sum *convergence.Summary, outdir string) error {
	f, err := os.Create(filepath.Join(outdir, "convergence.csv"))
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"steps", "price", "abs_error", "limit"}); err != nil {
		return err
	}
	for _, r := range sum.Rows {
		row := []string{
			fmt.Sprintf("%d", r.Steps),
			fmt.Sprintf("%.6f", r.Price),
			fmt.Sprintf("%.6f", r.AbsError),
			fmt.Sprintf("%.6f", sum.Limit),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
