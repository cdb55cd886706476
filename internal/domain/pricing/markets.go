package pricing

import (
	"math"

	"github.com/okian/inningsim/internal/domain/distribution"
	"github.com/okian/inningsim/internal/domain/model"
)

// MoneylineMarket prices both sides to win. Ties are a push and do not count
// toward either side's fair price.
type MoneylineMarket struct {
	Home FairPrice
	Away FairPrice
	Push float64
}

// ToMap renders the market.
func (m MoneylineMarket) ToMap() map[string]any {
	return map[string]any{"home": m.Home.ToMap(), "away": m.Away.ToMap(), "push": m.Push}
}

// Moneyline prices a winner distribution keyed by model winner keys.
func Moneyline(winner distribution.PMF) (MoneylineMarket, error) {
	return moneyline(winner, Identity)
}

func moneyline(winner distribution.PMF, cal Calibration) (MoneylineMarket, error) {
	if winner.Empty() {
		return MoneylineMarket{}, &model.InvalidLineError{Reason: "empty winner distribution"}
	}
	home := winner.Prob(model.WinnerKeyHome)
	away := winner.Prob(model.WinnerKeyAway)
	push := winner.Prob(model.WinnerKeyTie)
	home, away = RemoveVig(home, away)
	if home+away > 0 {
		home = cal.Apply(home)
		away = 1 - home
	}
	return MoneylineMarket{Home: Price(home), Away: Price(away), Push: push}, nil
}

// TotalMarket prices over and under a line. Raw masses partition the
// distribution; the fair prices exclude the push.
type TotalMarket struct {
	Line      float64
	OverMass  float64
	UnderMass float64
	PushMass  float64
	Over      FairPrice
	Under     FairPrice
}

// ToMap renders the market.
func (t TotalMarket) ToMap() map[string]any {
	return map[string]any{
		"line":  t.Line,
		"over":  t.Over.ToMap(),
		"under": t.Under.ToMap(),
		"push":  t.PushMass,
		"raw":   map[string]any{"over": t.OverMass, "under": t.UnderMass},
	}
}

// Total prices a runs distribution against line. A push is only possible on
// whole lines.
func Total(pmf distribution.PMF, line float64) (TotalMarket, error) {
	if err := checkLine(pmf, line, false); err != nil {
		return TotalMarket{}, err
	}
	over, under, push := split(pmf, line)
	o, u := RemoveVig(over, under)
	return TotalMarket{
		Line:      line,
		OverMass:  over,
		UnderMass: under,
		PushMass:  push,
		Over:      Price(o),
		Under:     Price(u),
	}, nil
}

// SpreadMarket prices the home side at Line against the away side at -Line.
type SpreadMarket struct {
	Line     float64
	HomeMass float64
	AwayMass float64
	PushMass float64
	Home     FairPrice
	Away     FairPrice
}

// ToMap renders the market.
func (s SpreadMarket) ToMap() map[string]any {
	return map[string]any{
		"line": s.Line,
		"home": s.Home.ToMap(),
		"away": s.Away.ToMap(),
		"push": s.PushMass,
	}
}

// Spread prices a home-minus-away differential distribution. Home covers when
// diff + line > 0, so -1.5 needs a two-run win.
func Spread(diff distribution.PMF, line float64) (SpreadMarket, error) {
	if err := checkLine(diff, line, true); err != nil {
		return SpreadMarket{}, err
	}
	home, away, push := split(diff, -line)
	h, a := RemoveVig(home, away)
	return SpreadMarket{
		Line:     line,
		HomeMass: home,
		AwayMass: away,
		PushMass: push,
		Home:     Price(h),
		Away:     Price(a),
	}, nil
}

// YesNoMarket prices a binary proposition such as a run in the first inning.
type YesNoMarket struct {
	Yes FairPrice
	No  FairPrice
}

// ToMap renders the market.
func (y YesNoMarket) ToMap() map[string]any {
	return map[string]any{"yes": y.Yes.ToMap(), "no": y.No.ToMap()}
}

// YesNo prices a 0/1 distribution, key 1 being yes.
func YesNo(pmf distribution.PMF) (YesNoMarket, error) {
	if pmf.Empty() {
		return YesNoMarket{}, &model.InvalidLineError{Reason: "empty distribution"}
	}
	yes := pmf.MassAbove(0.5)
	return YesNoMarket{Yes: Price(yes), No: Price(1 - yes)}, nil
}

// split returns the masses above, below and exactly at x. Only whole lines
// carry a push, taken as the remainder so the three sum to one.
func split(pmf distribution.PMF, x float64) (above, below, at float64) {
	above = pmf.MassAbove(x)
	below = pmf.MassBelow(x)
	if x == math.Trunc(x) {
		at = math.Max(0, 1-above-below)
	}
	return above, below, at
}

func checkLine(pmf distribution.PMF, line float64, signed bool) error {
	switch {
	case math.IsNaN(line) || math.IsInf(line, 0):
		return &model.InvalidLineError{Line: line, Reason: "line must be finite"}
	case !signed && line < 0:
		return &model.InvalidLineError{Line: line, Reason: "runs cannot be negative"}
	case math.Mod(line*2, 1) != 0:
		return &model.InvalidLineError{Line: line, Reason: "line must be a multiple of 0.5"}
	case pmf.Empty():
		return &model.InvalidLineError{Line: line, Reason: "empty distribution"}
	}
	return nil
}
