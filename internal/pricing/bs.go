// Package pricing provides the Black-Scholes closed form for European
// options. It is the continuous-time limit the binomial lattice converges
// to and serves as the reference price in convergence studies.
package pricing

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// stdNormal is the standard normal distribution used for the N(d1)/N(d2)
// terms of the Black-Scholes formula.
var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

// BlackScholesPrice calculates the price of a European option using the
// Black-Scholes model.
//
// Parameters:
//   - isCall: true for a call option, false for a put option
//   - S: spot price of the underlying asset
//   - K: strike price of the option
//   - T: time to expiry in years
//   - r: risk-free interest rate (annual, continuously compounded)
//   - sigma: volatility of the underlying asset (annual, as a decimal)
//
// Returns:
//
//	The theoretical price of the option. If time to expiry or volatility
//	is zero or negative, returns the intrinsic value of the option.
func BlackScholesPrice(
	isCall bool,
	S float64,
	K float64,
	T float64,
	r float64,
	sigma float64,
) float64 {

	if T <= 0 || sigma <= 0 {
		if isCall {
			return math.Max(0, S-K) // intrinsic fallback
		}
		return math.Max(0, K-S)
	}

	d1 := (math.Log(S/K) + (r+0.5*sigma*sigma)*T) / (sigma * math.Sqrt(T))
	d2 := d1 - sigma*math.Sqrt(T)

	if isCall {
		return S*stdNormal.CDF(d1) - K*math.Exp(-r*T)*stdNormal.CDF(d2)
	}
	return K*math.Exp(-r*T)*stdNormal.CDF(-d2) - S*stdNormal.CDF(-d1)
}
