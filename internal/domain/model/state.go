package model

// Side identifies a team in a game.
type Side int

// Sides. Away bats in the top half.
const (
	Away Side = iota
	Home
)

func (s Side) String() string {
	if s == Home {
		return "home"
	}
	return "away"
}

// Other returns the opposing side.
func (s Side) Other() Side {
	if s == Home {
		return Away
	}
	return Home
}

// Half is the top or bottom of an inning.
type Half int

// Halves.
const (
	Top Half = iota
	Bottom
)

func (h Half) String() string {
	if h == Bottom {
		return "bottom"
	}
	return "top"
}

// Batting returns the side at bat during the half.
func (h Half) Batting() Side {
	if h == Bottom {
		return Home
	}
	return Away
}

// Base indexes.
const (
	FirstBase = iota
	SecondBase
	ThirdBase
)

// OutsPerHalf ends a half-inning.
const OutsPerHalf = 3

// GameState is the live base/out/score state. Bases hold runner ids, empty
// string meaning unoccupied.
type GameState struct {
	Inning int
	Half   Half
	Outs   int
	Bases  [3]string
	Score  [2]int
}

// NewHalfState returns an empty-bases, no-outs state for a half-inning.
func NewHalfState(inning int, half Half, score [2]int) GameState {
	return GameState{Inning: inning, Half: half, Score: score}
}

// Occupied reports whether base b holds a runner.
func (s GameState) Occupied(b int) bool { return s.Bases[b] != "" }

// RunnersOn counts occupied bases.
func (s GameState) RunnersOn() int {
	n := 0
	for _, r := range s.Bases {
		if r != "" {
			n++
		}
	}
	return n
}

// Done reports whether the half-inning has ended.
func (s GameState) Done() bool { return s.Outs >= OutsPerHalf }

// BattingSide returns the side at bat.
func (s GameState) BattingSide() Side { return s.Half.Batting() }

// Situation is the read-only view of the state that outcome sampling and
// pitcher selection are allowed to see.
type Situation struct {
	Inning int
	Half   Half
	Outs   int
	Bases  [3]bool
	// Lead is the fielding team's lead before the plate appearance.
	Lead int
	// LeadOff is set for the first plate appearance of a half-inning.
	LeadOff bool
}

// Fatigue is the workload of the pitcher facing the next batter.
type Fatigue struct {
	PitchCount   int
	BattersFaced int
	// TimesThrough is the pass through the order the next batter starts, from 1.
	TimesThrough int
}

// Situation projects the state into a Situation.
func (s GameState) Situation() Situation {
	batting := s.BattingSide()
	return Situation{
		Inning: s.Inning,
		Half:   s.Half,
		Outs:   s.Outs,
		Bases:  [3]bool{s.Occupied(FirstBase), s.Occupied(SecondBase), s.Occupied(ThirdBase)},
		Lead:   s.Score[batting.Other()] - s.Score[batting],
	}
}
