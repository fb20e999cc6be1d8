// Package lattice values European options on a Cox-Ross-Rubinstein (CRR)
// recombining binomial lattice.
//
// Responsibilities:
//   - Derive per-step lattice parameters from market inputs
//   - Build the recombining asset-price grid
//   - Apply terminal intrinsic payoffs
//   - Discount back to present value via backward induction
//
// Design notes:
//   - Valuation is a pure function; every call owns its own grids
//   - Inputs are validated eagerly and rejected with typed errors
//   - The grids are full rectangles; cells above the diagonal stay zero
//     and are never read by the backward pass
package lattice

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

//
// ==========================
// Error taxonomy
// ==========================
//

// Typed errors allow callers and tests to detect failure categories
// without string matching.
var (
	ErrInvalidParameters     = errors.New("invalid lattice parameters")
	ErrUnsupportedOptionType = errors.New("unsupported option type")
)

//
// ==========================
// Domain Types
// ==========================
//

// OptionType identifies the payoff convention of a European option.
type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

// ParseOptionType normalizes a user-supplied option type string.
// Matching is case-insensitive; anything other than "call" or "put"
// is rejected with ErrUnsupportedOptionType.
func ParseOptionType(s string) (OptionType, error) {
	switch OptionType(strings.ToLower(strings.TrimSpace(s))) {
	case Call:
		return Call, nil
	case Put:
		return Put, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedOptionType, s)
}

// Params holds the per-step scalars derived once per valuation.
//
// For arbitrage-free inputs the invariants are Up > 1, Down = 1/Up and
// Prob strictly inside (0,1).
type Params struct {
	StepLen  float64 // dt, years covered by one lattice step
	Discount float64 // exp(-rate*dt), per-step discount factor
	Up       float64 // u, multiplicative up-move factor
	Down     float64 // d = 1/u, down-move factor
	Prob     float64 // q, risk-neutral probability of the up move
}

//
// ==========================
// Valuation
// ==========================
//

// Derive computes the CRR lattice parameters for the given market inputs.
//
// Parameters:
//   - maturity: time to expiry in years, must be positive
//   - rate: continuously compounded annual risk-free rate
//   - vol: annualized volatility, must be positive
//   - steps: number of lattice steps, must be >= 1
//
// Returns:
//   - Params: derived step length, discount factor, move factors and
//     risk-neutral probability
//   - error: ErrInvalidParameters if an input is out of domain or the
//     derived probability falls outside (0,1), meaning the step count is
//     too coarse for the rate/volatility pair to be arbitrage-free
func Derive(maturity, rate, vol float64, steps int) (Params, error) {
	if maturity <= 0 || math.IsNaN(maturity) {
		return Params{}, fmt.Errorf("%w: maturity %v must be positive", ErrInvalidParameters, maturity)
	}
	if vol <= 0 || math.IsNaN(vol) {
		return Params{}, fmt.Errorf("%w: volatility %v must be positive", ErrInvalidParameters, vol)
	}
	if steps < 1 {
		return Params{}, fmt.Errorf("%w: steps %d must be >= 1", ErrInvalidParameters, steps)
	}

	dt := maturity / float64(steps)
	u := math.Exp(vol * math.Sqrt(dt))
	d := 1 / u
	q := (math.Exp(rate*dt) - d) / (u - d)

	// No-arbitrage condition: the discounted expected asset price must
	// equal its forward value, which requires q inside (0,1).
	if q <= 0 || q >= 1 || math.IsNaN(q) {
		return Params{}, fmt.Errorf(
			"%w: risk-neutral probability %.6f outside (0,1); use more steps or a smaller rate relative to volatility",
			ErrInvalidParameters, q,
		)
	}

	return Params{
		StepLen:  dt,
		Discount: math.Exp(-rate * dt),
		Up:       u,
		Down:     d,
		Prob:     q,
	}, nil
}

// Price values a European option on a CRR binomial lattice.
//
// Parameters:
//   - spot: current price of the underlying, must be positive
//   - strike: contract strike, must be positive
//   - maturity: time to expiry in years, must be positive
//   - rate: continuously compounded annual risk-free rate
//   - vol: annualized volatility, must be positive
//   - optType: Call or Put
//   - steps: number of lattice steps; larger values converge toward the
//     continuous-time (Black-Scholes) limit at O(steps^2) cost
//
// Returns:
//   - float64: the present-value option price, always non-negative
//   - error: ErrInvalidParameters or ErrUnsupportedOptionType; no partial
//     result is ever produced
//
// Price is purely functional and safe for concurrent callers.
func Price(spot, strike, maturity, rate, vol float64, optType OptionType, steps int) (float64, error) {
	kind, err := ParseOptionType(string(optType))
	if err != nil {
		return 0, err
	}
	if spot <= 0 || math.IsNaN(spot) {
		return 0, fmt.Errorf("%w: spot %v must be positive", ErrInvalidParameters, spot)
	}
	if strike <= 0 || math.IsNaN(strike) {
		return 0, fmt.Errorf("%w: strike %v must be positive", ErrInvalidParameters, strike)
	}

	p, err := Derive(maturity, rate, vol, steps)
	if err != nil {
		return 0, err
	}

	prices := priceGrid(spot, p, steps)
	values := terminalPayoff(prices, strike, kind, steps)

	// Backward induction. State i at step t connects to state i (up) and
	// state i+1 (down) at step t+1; i counts down-moves taken so far.
	for t := steps - 1; t >= 0; t-- {
		for i := 0; i <= t; i++ {
			values[i][t] = p.Discount * (p.Prob*values[i][t+1] + (1-p.Prob)*values[i+1][t+1])
		}
	}

	return values[0][0], nil
}

// priceGrid builds the recombining asset-price grid. Entry [i][t] is the
// underlying price after t steps of which i were down-moves:
// spot * u^(t-i) * d^i. Cells with i > t are unreachable and left at zero.
func priceGrid(spot float64, p Params, steps int) [][]float64 {
	grid := make([][]float64, steps+1)
	for i := range grid {
		grid[i] = make([]float64, steps+1)
		for t := i; t <= steps; t++ {
			grid[i][t] = spot * math.Pow(p.Up, float64(t-i)) * math.Pow(p.Down, float64(i))
		}
	}
	return grid
}

// terminalPayoff allocates the value grid and seeds its last column with
// the intrinsic payoff of each terminal state.
func terminalPayoff(prices [][]float64, strike float64, optType OptionType, steps int) [][]float64 {
	values := make([][]float64, steps+1)
	for i := range values {
		values[i] = make([]float64, steps+1)
		if optType == Call {
			values[i][steps] = math.Max(prices[i][steps]-strike, 0)
		} else {
			values[i][steps] = math.Max(strike-prices[i][steps], 0)
		}
	}
	return values
}
