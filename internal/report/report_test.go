package report

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/contactkeval/option-lattice/internal/convergence"
	"github.com/contactkeval/option-lattice/internal/scenario"
)

func TestWriteBatchReports(t *testing.T) {
	outdir := t.TempDir()
	results := []scenario.Result{
		{Name: "atm-call", OptionType: "call", Spot: 100, Strike: 100, Maturity: 1, Rate: 0.05, Vol: 0.2, Steps: 4, Price: 9.970523},
		{Name: "otm-put", OptionType: "put", Spot: 100, Strike: 95, Maturity: 0.5, Rate: 0.03, Vol: 0.25, Steps: 64, Price: 3.1},
	}

	if err := WriteBatchJSON(results, outdir); err != nil {
		t.Fatalf("WriteBatchJSON failed: %v", err)
	}
	if err := WriteBatchCSV(results, outdir); err != nil {
		t.Fatalf("WriteBatchCSV failed: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(outdir, "prices.json"))
	if err != nil {
		t.Fatalf("reading prices.json: %v", err)
	}
	var back []scenario.Result
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("prices.json is not valid JSON: %v", err)
	}
	if len(back) != 2 || back[0].Name != "atm-call" {
		t.Fatalf("unexpected JSON content: %+v", back)
	}

	f, err := os.Open(filepath.Join(outdir, "prices.csv"))
	if err != nil {
		t.Fatalf("opening prices.csv: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading prices.csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "name" || rows[1][0] != "atm-call" || rows[2][7] != "64" {
		t.Fatalf("unexpected CSV content: %v", rows)
	}
}

func TestWriteConvergenceReports(t *testing.T) {
	outdir := t.TempDir()
	sum := &convergence.Summary{
		Limit: 10.450584,
		Rows: []convergence.Row{
			{Steps: 4, Price: 9.970523, AbsError: 0.480061},
			{Steps: 8, Price: 10.205099, AbsError: 0.245485},
		},
		MaxAbsError:  0.480061,
		MeanAbsError: 0.362773,
	}

	if err := WriteConvergenceJSON(sum, outdir); err != nil {
		t.Fatalf("WriteConvergenceJSON failed: %v", err)
	}
	if err := WriteConvergenceCSV(sum, outdir); err != nil {
		t.Fatalf("WriteConvergenceCSV failed: %v", err)
	}

	f, err := os.Open(filepath.Join(outdir, "convergence.csv"))
	if err != nil {
		t.Fatalf("opening convergence.csv: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading convergence.csv: %v", err)
	}
	if len(rows) != 3 || rows[1][0] != "4" || rows[2][0] != "8" {
		t.Fatalf("unexpected CSV content: %v", rows)
	}
}
