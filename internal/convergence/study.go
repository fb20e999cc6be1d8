// Package convergence measures how a binomial lattice price approaches its
// Black-Scholes limit as the step count grows.
package convergence

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"github.com/contactkeval/option-lattice/internal/lattice"
	"github.com/contactkeval/option-lattice/internal/pricing"
)

// Row is one observation of the study: the lattice price for a given step
// count and its absolute distance from the closed-form limit.
type Row struct {
	Steps    int     `json:"steps"`
	Price    float64 `json:"price"`
	AbsError float64 `json:"abs_error"`
}

// Summary holds the full study result for one contract.
type Summary struct {
	Limit        float64 `json:"limit"` // Black-Scholes price of the contract
	Rows         []Row   `json:"rows"`
	MaxAbsError  float64 `json:"max_abs_error"`
	MeanAbsError float64 `json:"mean_abs_error"`
}

// Study prices the same European contract with doubling step counts from
// minSteps up to maxSteps and compares each price against the
// Black-Scholes limit.
//
// Parameters:
//   - spot, strike, maturity, rate, vol: market inputs as in lattice.Price
//   - optType: Call or Put
//   - minSteps: first step count, must be >= 1
//   - maxSteps: inclusive upper bound on step counts, must be >= minSteps
//
// Returns:
//   - *Summary: one row per step count plus aggregate error statistics
//   - error: any validation failure surfaced by the lattice engine
func Study(
	spot, strike, maturity, rate, vol float64,
	optType lattice.OptionType,
	minSteps, maxSteps int,
) (*Summary, error) {

	if minSteps < 1 || maxSteps < minSteps {
		return nil, fmt.Errorf("%w: step range [%d, %d]", lattice.ErrInvalidParameters, minSteps, maxSteps)
	}
	kind, err := lattice.ParseOptionType(string(optType))
	if err != nil {
		return nil, err
	}

	limit := pricing.BlackScholesPrice(kind == lattice.Call, spot, strike, maturity, rate, vol)

	var rows []Row
	for steps := minSteps; steps <= maxSteps; steps *= 2 {
		price, err := lattice.Price(spot, strike, maturity, rate, vol, kind, steps)
		if err != nil {
			return nil, fmt.Errorf("study at %d steps: %w", steps, err)
		}
		rows = append(rows, Row{
			Steps:    steps,
			Price:    price,
			AbsError: math.Abs(price - limit),
		})
	}

	absErrs := make([]float64, len(rows))
	for i, r := range rows {
		absErrs[i] = r.AbsError
	}
	maxErr, _ := stats.Max(absErrs)
	meanErr, _ := stats.Mean(absErrs)

	return &Summary{
		Limit:        limit,
		Rows:         rows,
		MaxAbsError:  maxErr,
		MeanAbsError: meanErr,
	}, nil
}
