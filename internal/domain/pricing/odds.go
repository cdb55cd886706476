// Package pricing turns simulated outcome distributions into fair prices.
package pricing

import (
	"fmt"
	"math"
)

// FairPrice is a probability and its no-vig American odds. Defined is false
// when the probability is 0 or 1 and no finite price exists.
type FairPrice struct {
	Probability float64
	American    float64
	Defined     bool
}

// Price builds a FairPrice for p.
func Price(p float64) FairPrice {
	odds, err := AmericanOdds(p)
	if err != nil {
		return FairPrice{Probability: p}
	}
	return FairPrice{Probability: p, American: odds, Defined: true}
}

// Decimal returns the decimal odds of the price, 0 when undefined.
func (f FairPrice) Decimal() float64 {
	if !f.Defined {
		return 0
	}
	return DecimalOdds(f.American)
}

// ToMap renders the price. Undefined odds are nil.
func (f FairPrice) ToMap() map[string]any {
	out := map[string]any{"probability": f.Probability, "american": nil}
	if f.Defined {
		out["american"] = round2(f.American)
	}
	return out
}

// AmericanOdds converts a win probability into fair American odds:
// favourites get -100·p/(1-p), underdogs +100·(1-p)/p.
func AmericanOdds(p float64) (float64, error) {
	if math.IsNaN(p) || p <= 0 || p >= 1 {
		return 0, fmt.Errorf("%w: %v", ErrProbabilityRange, p)
	}
	if p >= 0.5 {
		return -100 * p / (1 - p), nil
	}
	return 100 * (1 - p) / p, nil
}

// ImpliedProbability is the inverse of AmericanOdds.
func ImpliedProbability(odds float64) (float64, error) {
	switch {
	case math.IsNaN(odds) || math.IsInf(odds, 0) || math.Abs(odds) < 100:
		return 0, fmt.Errorf("%w: %v", ErrInvalidOdds, odds)
	case odds < 0:
		return -odds / (-odds + 100), nil
	default:
		return 100 / (odds + 100), nil
	}
}

// DecimalOdds converts American odds to decimal odds.
func DecimalOdds(american float64) float64 {
	if american < 0 {
		return 100/-american + 1
	}
	return american/100 + 1
}

// RemoveVig normalizes two implied probabilities so they sum to one.
func RemoveVig(a, b float64) (float64, float64) {
	total := a + b
	if total <= 0 {
		return 0, 0
	}
	return a / total, b / total
}

// Calibration maps a simulated probability through sigmoid(a + b·logit(p)).
type Calibration struct {
	A float64
	B float64
}

// Identity leaves probabilities unchanged.
var Identity = Calibration{A: 0, B: 1}

// calibrationClamp keeps logit finite at the edges.
const calibrationClamp = 1e-4

// Apply calibrates p.
func (c Calibration) Apply(p float64) float64 {
	if c == Identity {
		return p
	}
	p = math.Min(math.Max(p, calibrationClamp), 1-calibrationClamp)
	logit := math.Log(p / (1 - p))
	return 1 / (1 + math.Exp(-(c.A + c.B*logit)))
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
