// Package basestate applies plate appearance outcomes to the base, out and
// score state of a half-inning.
package basestate

import "github.com/okian/inningsim/internal/domain/model"

// MaxRunsPerPlay is the bases-loaded home run.
const MaxRunsPerPlay = 4

// unknownRunner marks a base taken by a batter without an id.
const unknownRunner = "?"

// Apply returns the state after o and the runs it scored. It is pure: the same
// inputs always give the same result and s is never modified. A state that
// already has three outs is returned unchanged.
func Apply(s model.GameState, o model.Outcome) (model.GameState, int) {
	if s.Done() {
		return s, 0
	}
	batter := o.BatterID
	if batter == "" {
		batter = unknownRunner
	}

	next := s
	runs := 0
	b := s.Bases

	switch o.Kind {
	case model.Strikeout:
		next.Outs++

	case model.InPlayOut:
		next.Outs++
		if o.Advance.Productive && !next.Done() {
			if b[model.ThirdBase] != "" {
				runs++
			}
			next.Bases = [3]string{"", b[model.FirstBase], b[model.SecondBase]}
		}

	case model.DoublePlay:
		if b[model.FirstBase] == "" {
			// no force available, only the batter is out
			next.Outs++
			break
		}
		next.Outs += 2
		if next.Outs > model.OutsPerHalf {
			next.Outs = model.OutsPerHalf
		}
		if !next.Done() {
			next.Bases[model.FirstBase] = ""
		}

	case model.SacrificeFly:
		next.Outs++
		if !next.Done() && b[model.ThirdBase] != "" {
			runs++
			next.Bases[model.ThirdBase] = ""
		}

	case model.Walk, model.HitByPitch:
		next.Bases, runs = force(b, batter)

	case model.Single:
		var nb [3]string
		if b[model.ThirdBase] != "" {
			runs++
		}
		if b[model.SecondBase] != "" {
			if o.Advance.SecondScores {
				runs++
			} else {
				nb[model.ThirdBase] = b[model.SecondBase]
			}
		}
		if b[model.FirstBase] != "" {
			if o.Advance.FirstToThird && nb[model.ThirdBase] == "" {
				nb[model.ThirdBase] = b[model.FirstBase]
			} else {
				nb[model.SecondBase] = b[model.FirstBase]
			}
		}
		nb[model.FirstBase] = batter
		next.Bases = nb

	case model.Double:
		var nb [3]string
		if b[model.ThirdBase] != "" {
			runs++
		}
		if b[model.SecondBase] != "" {
			runs++
		}
		if b[model.FirstBase] != "" {
			if o.Advance.FirstScores {
				runs++
			} else {
				nb[model.ThirdBase] = b[model.FirstBase]
			}
		}
		nb[model.SecondBase] = batter
		next.Bases = nb

	case model.Triple:
		runs = s.RunnersOn()
		next.Bases = [3]string{"", "", batter}

	case model.HomeRun:
		runs = s.RunnersOn() + 1
		next.Bases = [3]string{}
	}

	if runs > MaxRunsPerPlay {
		runs = MaxRunsPerPlay
	}
	next.Score[s.BattingSide()] += runs
	return next, runs
}

// force moves the batter to first and pushes only runners with no open base
// behind them.
func force(b [3]string, batter string) ([3]string, int) {
	nb := b
	runs := 0
	switch {
	case b[model.FirstBase] == "":
		// nobody forced
	case b[model.SecondBase] == "":
		nb[model.SecondBase] = b[model.FirstBase]
	case b[model.ThirdBase] == "":
		nb[model.ThirdBase] = b[model.SecondBase]
		nb[model.SecondBase] = b[model.FirstBase]
	default:
		runs = 1
		nb[model.ThirdBase] = b[model.SecondBase]
		nb[model.SecondBase] = b[model.FirstBase]
	}
	nb[model.FirstBase] = batter
	return nb, runs
}
