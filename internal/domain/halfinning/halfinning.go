// Package halfinning drives plate appearances until a half-inning ends.
package halfinning

import (
	"fmt"
	"math/rand/v2"

	"github.com/okian/inningsim/internal/domain/basestate"
	"github.com/okian/inningsim/internal/domain/bullpen"
	"github.com/okian/inningsim/internal/domain/model"
	"github.com/okian/inningsim/internal/domain/plateappearance"
)

// DefaultMaxPlateAppearances bounds a half-inning.
const DefaultMaxPlateAppearances = 40

// Option configures a Simulator.
type Option func(*Simulator)

// WithMaxPlateAppearances sets the runaway guard.
func WithMaxPlateAppearances(n int) Option {
	return func(s *Simulator) {
		if n > 0 {
			s.maxPA = n
		}
	}
}

// WithEvents turns the per plate appearance event log on.
func WithEvents(on bool) Option {
	return func(s *Simulator) { s.events = on }
}

// Input is everything one half-inning needs.
type Input struct {
	Inning int
	Half   model.Half
	// Score entering the half, indexed by side.
	Score  [2]int
	Lineup []*model.PlayerProfile
	// Cursor is the lineup index of the leadoff batter.
	Cursor int
	// Bullpen is the fielding team's staff.
	Bullpen     *bullpen.Manager
	Adjustments plateappearance.Adjustments
	// WalkOff ends the half as soon as the batting side leads.
	WalkOff bool
	// RunnerOnSecond places the previous batter on second to start the half.
	RunnerOnSecond bool
	// Recap, when set, receives every plate appearance of the batting side.
	Recap *model.SideSummary
}

// Result summarizes a finished half-inning.
type Result struct {
	Runs             int
	Outs             int
	Hits             int
	Walks            int
	Strikeouts       int
	PlateAppearances int
	Cursor           int
	WalkOff          bool
	Score            [2]int
	Events           []model.PlayEvent
}

// Simulator runs half-innings with a shared plate appearance engine.
type Simulator struct {
	engine *plateappearance.Engine
	maxPA  int
	events bool
}

// New creates a half-inning simulator.
func New(engine *plateappearance.Engine, opts ...Option) *Simulator {
	s := &Simulator{engine: engine, maxPA: DefaultMaxPlateAppearances}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Play simulates the half. It returns once three outs are recorded or, with
// WalkOff set, once the batting side takes the lead. On a walk-off that is not
// a home run only the runs needed to win count.
func (s *Simulator) Play(rng *rand.Rand, in Input) (Result, error) {
	n := len(in.Lineup)
	if n == 0 {
		return Result{}, model.NewConfigurationError("half-inning: empty lineup")
	}
	if in.Bullpen == nil {
		return Result{}, model.NewConfigurationError("half-inning: no bullpen")
	}
	batting := in.Half.Batting()
	fielding := batting.Other()
	cursor := ((in.Cursor % n) + n) % n

	state := model.NewHalfState(in.Inning, in.Half, in.Score)
	if in.RunnerOnSecond {
		state.Bases[model.SecondBase] = in.Lineup[(cursor+n-1)%n].ID
	}

	var res Result
	for !state.Done() {
		if res.PlateAppearances >= s.maxPA {
			return res, fmt.Errorf("%w: %d plate appearances in the %s of inning %d",
				model.ErrRunawayInning, res.PlateAppearances, in.Half, in.Inning)
		}
		batter := in.Lineup[cursor]
		sit := state.Situation()
		sit.LeadOff = res.PlateAppearances == 0

		pitcher, err := in.Bullpen.SelectPitcher(sit)
		if err != nil {
			return res, err
		}
		o, err := s.engine.Sample(rng, batter, pitcher, in.Bullpen.Fatigue(), sit, in.Adjustments)
		if err != nil {
			return res, err
		}

		next, runs := basestate.Apply(state, o)
		if in.WalkOff {
			need := state.Score[fielding] - state.Score[batting] + 1
			if need > 0 && runs > need && o.Kind != model.HomeRun {
				runs = need
				next.Score[batting] = state.Score[batting] + need
			}
			res.WalkOff = next.Score[batting] > next.Score[fielding]
		}
		if err := in.Bullpen.RecordUsage(pitcher.ID, o.Pitches, 1); err != nil {
			return res, err
		}

		res.tally(o.Kind, runs)
		if in.Recap != nil {
			in.Recap.Record(o.Kind, runs)
		}
		if s.events {
			res.Events = append(res.Events, model.PlayEvent{
				Inning:    in.Inning,
				Half:      in.Half,
				BatterID:  batter.ID,
				PitcherID: pitcher.ID,
				Outcome:   o.Kind,
				Runs:      runs,
				OutsAfter: next.Outs,
			})
		}

		cursor = (cursor + 1) % n
		state = next
		if res.WalkOff {
			break
		}
	}

	res.Outs = state.Outs
	res.Cursor = cursor
	res.Score = state.Score
	return res, nil
}

func (r *Result) tally(kind model.OutcomeKind, runs int) {
	r.PlateAppearances++
	r.Runs += runs
	switch {
	case kind.IsHit():
		r.Hits++
	case kind == model.Walk || kind == model.HitByPitch:
		r.Walks++
	case kind == model.Strikeout:
		r.Strikeouts++
	}
}
