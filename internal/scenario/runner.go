package scenario

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/contactkeval/option-lattice/internal/lattice"
	"github.com/contactkeval/option-lattice/internal/logger"
)

// Result is one priced scenario with every input made concrete.
type Result struct {
	Name       string  `json:"name,omitempty"`
	OptionType string  `json:"option_type"`
	Spot       float64 `json:"spot"`
	Strike     float64 `json:"strike"`
	Maturity   float64 `json:"maturity"`
	Rate       float64 `json:"rate"`
	Vol        float64 `json:"vol"`
	Steps      int     `json:"steps"`
	Price      float64 `json:"price"`
}

// RunBatch prices every scenario in the file concurrently. Valuations are
// independent and share no state, so they fan out over the available CPUs;
// the first failure cancels the batch.
//
// Results are returned in file order regardless of completion order.
func RunBatch(ctx context.Context, f *File) ([]Result, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	results := make([]Result, len(f.Scenarios))
	for idx, spec := range f.Scenarios {
		idx, spec := idx, spec
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			strike, optType, steps, err := spec.resolve(f)
			if err != nil {
				return fmt.Errorf("scenario %d (%s): %w", idx, spec.Name, err)
			}

			price, err := lattice.Price(spec.Spot, strike, spec.Maturity, spec.Rate, spec.Vol, optType, steps)
			if err != nil {
				return fmt.Errorf("scenario %d (%s): %w", idx, spec.Name, err)
			}

			logger.Debugf("event=scenario_priced idx=%d name=%s strike=%.2f steps=%d price=%.6f",
				idx, spec.Name, strike, steps, price)

			results[idx] = Result{
				Name:       spec.Name,
				OptionType: string(optType),
				Spot:       spec.Spot,
				Strike:     strike,
				Maturity:   spec.Maturity,
				Rate:       spec.Rate,
				Vol:        spec.Vol,
				Steps:      steps,
				Price:      price,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
