// Package game composes half-innings into full games.
package game

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/okian/inningsim/internal/domain/bullpen"
	"github.com/okian/inningsim/internal/domain/halfinning"
	"github.com/okian/inningsim/internal/domain/model"
	"github.com/okian/inningsim/internal/domain/plateappearance"
)

// Simulator plays one validated matchup. It is read-only after New and safe
// to share between goroutines; every Play call works on its own state.
type Simulator struct {
	gameID  string
	rosters [2]*model.Roster
	// staffs are templates cloned per game, indexed by the side they pitch for.
	staffs [2]*bullpen.Manager
	adj    plateappearance.Adjustments
	half   *halfinning.Simulator
	cfg    settings
}

// New validates the matchup and prepares a simulator. Structural problems
// fail with a ConfigurationError before player data is looked at; unknown
// players or missing statistics fail with a DataIncompleteError.
func New(m *model.Matchup, opts ...Option) (*Simulator, error) {
	cfg := defaults()
	for _, opt := range opts {
		opt(&cfg)
	}
	if m == nil {
		return nil, model.NewConfigurationError("game: nil matchup")
	}
	if cfg.regulation <= 0 {
		return nil, model.NewConfigurationError("game: regulation innings must be positive, got %d", cfg.regulation)
	}
	if cfg.extraCap < 0 {
		return nil, model.NewConfigurationError("game: extra inning cap must not be negative")
	}
	if cfg.minLineup <= 0 {
		cfg.minLineup = 1
	}
	for _, side := range []model.Side{model.Away, model.Home} {
		if err := m.Sheet(side).CheckStructure(side, cfg.minLineup); err != nil {
			return nil, err
		}
	}

	s := &Simulator{gameID: m.GameID, cfg: cfg}
	for _, side := range []model.Side{model.Away, model.Home} {
		r, err := m.Sheet(side).Resolve(m.Players)
		if err != nil {
			return nil, fmt.Errorf("game: %s: %w", side, err)
		}
		s.rosters[side] = r
	}
	policies := [2]bullpen.Policy{cfg.policy, cfg.policy}
	if cfg.awayPolicy != nil {
		policies[model.Away] = *cfg.awayPolicy
	}
	if cfg.homePolicy != nil {
		policies[model.Home] = *cfg.homePolicy
	}
	for _, side := range []model.Side{model.Away, model.Home} {
		staff, err := bullpen.NewManager(s.rosters[side], policies[side], len(s.rosters[side.Other()].Lineup))
		if err != nil {
			return nil, fmt.Errorf("game: %s: %w", side, err)
		}
		s.staffs[side] = staff
	}

	engine := cfg.engine
	if engine == nil {
		engine = plateappearance.New()
	}
	hopts := []halfinning.Option{halfinning.WithEvents(cfg.events)}
	if cfg.maxPA > 0 {
		hopts = append(hopts, halfinning.WithMaxPlateAppearances(cfg.maxPA))
	}
	s.half = halfinning.New(engine, hopts...)
	s.adj = plateappearance.GameAdjustments(m.Environment)
	return s, nil
}

// Adjustments returns the game-level multipliers in use.
func (s *Simulator) Adjustments() plateappearance.Adjustments { return s.adj }

// Play simulates one game drawing only from rng.
func (s *Simulator) Play(ctx context.Context, rng *rand.Rand) (model.GameResult, error) {
	if err := ctx.Err(); err != nil {
		return model.GameResult{}, err
	}
	staffs := [2]*bullpen.Manager{s.staffs[model.Away].Clone(), s.staffs[model.Home].Clone()}
	res := model.GameResult{GameID: s.gameID}
	var (
		score  [2]int
		cursor [2]int
	)
	reg := s.cfg.regulation

	for inning := 1; ; inning++ {
		if s.cfg.extraCap == 0 && inning > reg+hardInningLimit {
			return model.GameResult{}, fmt.Errorf("%w: game passed %d innings", model.ErrRunawayInning, inning-1)
		}
		extra := inning > reg
		line := model.InningLine{Inning: inning}

		top, err := s.half.Play(rng, s.input(inning, model.Top, score, cursor[model.Away], staffs[model.Home], extra, &res.Away))
		if err != nil {
			return model.GameResult{}, fmt.Errorf("inning %d top: %w", inning, err)
		}
		score, cursor[model.Away], line.Away = top.Score, top.Cursor, top.Runs
		res.Events = append(res.Events, top.Events...)

		if inning >= reg && score[model.Home] > score[model.Away] {
			res.Innings = append(res.Innings, line)
			break
		}

		in := s.input(inning, model.Bottom, score, cursor[model.Home], staffs[model.Away], extra, &res.Home)
		in.WalkOff = inning >= reg
		bottom, err := s.half.Play(rng, in)
		if err != nil {
			return model.GameResult{}, fmt.Errorf("inning %d bottom: %w", inning, err)
		}
		score, cursor[model.Home], line.Home = bottom.Score, bottom.Cursor, bottom.Runs
		line.HomeBatted = true
		res.Innings = append(res.Innings, line)
		res.Events = append(res.Events, bottom.Events...)

		if inning < reg {
			continue
		}
		if bottom.WalkOff {
			res.WalkOff = true
			break
		}
		if score[model.Home] != score[model.Away] {
			break
		}
		if s.cfg.extraCap > 0 && inning-reg >= s.cfg.extraCap {
			break
		}
	}

	res.Score = score
	res.InningsPlayed = len(res.Innings)
	res.ExtraInnings = res.InningsPlayed > reg
	switch {
	case score[model.Home] > score[model.Away]:
		res.Winner = model.WinnerHome
	case score[model.Away] > score[model.Home]:
		res.Winner = model.WinnerAway
	default:
		res.Winner = model.WinnerTie
	}
	for _, side := range []model.Side{model.Away, model.Home} {
		sum := res.Side(side)
		sum.PitchersUsed = staffs[side].Used()
		sum.PitchingChanges = staffs[side].Changes()
		sum.ChangeTriggers = staffs[side].ChangeTriggers()
		sum.Fallbacks = staffs[side].Fallbacks()
	}
	return res, nil
}

func (s *Simulator) input(inning int, half model.Half, score [2]int, cursor int, staff *bullpen.Manager, extra bool, recap *model.SideSummary) halfinning.Input {
	return halfinning.Input{
		Inning:         inning,
		Half:           half,
		Score:          score,
		Lineup:         s.rosters[half.Batting()].Lineup,
		Cursor:         cursor,
		Bullpen:        staff,
		Adjustments:    s.adj,
		RunnerOnSecond: extra && s.cfg.extraRunner,
		Recap:          recap,
	}
}
