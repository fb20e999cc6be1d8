// Package scenario loads batch pricing scenarios from JSON and resolves
// their strike rules into concrete strikes.
//
// A scenario file lists independent European contracts. Strikes may be
// given as plain numbers or as rules relative to the spot price:
//
//	"ATM"          at-the-money, strike equals spot
//	"ATM * 1.05"   five percent above spot
//	"ATM + 10"     ten currency units above spot
//
// Rule arithmetic is evaluated with govaluate; ATM is the only variable.
package scenario

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"

	"github.com/contactkeval/option-lattice/internal/lattice"
)

var (
	ErrInvalidStrikeRule = errors.New("invalid strike rule")
	ErrStepsLimit        = errors.New("steps exceed configured limit")
)

// DefaultMaxSteps bounds per-scenario lattice size when a file does not
// set its own limit; grid cost is O(steps^2) in both time and memory.
const DefaultMaxSteps = 4096

// Spec defines one contract to price. It represents intent: the strike is
// a rule, resolved against the spot at run time.
type Spec struct {
	Name       string  `json:"name,omitempty"`
	Spot       float64 `json:"spot"`
	StrikeRule string  `json:"strike_rule"`
	Maturity   float64 `json:"maturity"` // years
	Rate       float64 `json:"rate"`
	Vol        float64 `json:"vol"`
	OptionType string  `json:"option_type,omitempty"` // call or put, default call
	Steps      int     `json:"steps,omitempty"`       // default taken from the file
}

// File is a batch scenario document.
type File struct {
	DefaultSteps int    `json:"default_steps,omitempty"`
	MaxSteps     int    `json:"max_steps,omitempty"`
	Scenarios    []Spec `json:"scenarios"`
}

// Load reads and decodes a scenario file.
func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}
	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("invalid scenario file %s: %w", path, err)
	}
	if len(f.Scenarios) == 0 {
		return nil, fmt.Errorf("scenario file %s lists no scenarios", path)
	}
	if f.DefaultSteps == 0 {
		f.DefaultSteps = 4
	}
	if f.MaxSteps == 0 {
		f.MaxSteps = DefaultMaxSteps
	}
	return &f, nil
}

// ResolveStrike turns a strike rule into a concrete strike for the given
// spot price.
//
// Parameters:
//   - rule: "ATM", an arithmetic expression of ATM, or a plain number
//   - spot: current underlying price
//
// Returns:
//   - float64: the resolved strike
//   - error: ErrInvalidStrikeRule if the rule cannot be parsed, evaluated,
//     or does not yield a positive number
func ResolveStrike(rule string, spot float64) (float64, error) {
	rule = strings.ToUpper(strings.TrimSpace(rule))
	if rule == "" {
		return 0, fmt.Errorf("%w: empty rule", ErrInvalidStrikeRule)
	}

	if rule == "ATM" {
		return spot, nil
	}

	// Plain numeric strike.
	if abs, err := strconv.ParseFloat(rule, 64); err == nil {
		if abs <= 0 {
			return 0, fmt.Errorf("%w: strike %v must be positive", ErrInvalidStrikeRule, abs)
		}
		return abs, nil
	}

	expr, err := govaluate.NewEvaluableExpression(rule)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidStrikeRule, rule, err)
	}

	result, err := expr.Evaluate(map[string]interface{}{"ATM": spot})
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidStrikeRule, rule, err)
	}

	strike, ok := result.(float64)
	if !ok || strike <= 0 {
		return 0, fmt.Errorf("%w: %q did not evaluate to a positive number", ErrInvalidStrikeRule, rule)
	}
	return strike, nil
}

// resolve fills a Spec's defaults and produces lattice-ready inputs.
func (s Spec) resolve(defaults *File) (strike float64, optType lattice.OptionType, steps int, err error) {
	strike, err = ResolveStrike(s.StrikeRule, s.Spot)
	if err != nil {
		return 0, "", 0, err
	}

	kind := s.OptionType
	if kind == "" {
		kind = string(lattice.Call)
	}
	optType, err = lattice.ParseOptionType(kind)
	if err != nil {
		return 0, "", 0, err
	}

	steps = s.Steps
	if steps == 0 {
		steps = defaults.DefaultSteps
	}
	if steps > defaults.MaxSteps {
		return 0, "", 0, fmt.Errorf("%w: %d > %d", ErrStepsLimit, steps, defaults.MaxSteps)
	}
	return strike, optType, steps, nil
}
