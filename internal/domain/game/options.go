package game

import (
	"github.com/okian/inningsim/internal/domain/bullpen"
	"github.com/okian/inningsim/internal/domain/plateappearance"
)

// Default game rules.
const (
	DefaultRegulationInnings = 9
	DefaultMinLineup         = 9
)

// hardInningLimit stops uncapped games that cannot be decided.
const hardInningLimit = 50

// Option configures a Simulator.
type Option func(*settings)

type settings struct {
	regulation  int
	extraCap    int
	extraRunner bool
	minLineup   int
	maxPA       int
	events      bool
	policy      bullpen.Policy
	awayPolicy  *bullpen.Policy
	homePolicy  *bullpen.Policy
	engine      *plateappearance.Engine
}

func defaults() settings {
	return settings{
		regulation:  DefaultRegulationInnings,
		extraRunner: true,
		minLineup:   DefaultMinLineup,
		policy:      bullpen.DefaultPolicy(),
	}
}

// WithRegulationInnings sets the scheduled length of a game.
func WithRegulationInnings(n int) Option {
	return func(s *settings) { s.regulation = n }
}

// WithExtraInningCap ends a game tied after n extra innings. Zero plays on
// until a winner emerges.
func WithExtraInningCap(n int) Option {
	return func(s *settings) { s.extraCap = n }
}

// WithExtraInningRunner places a runner on second to start extra innings.
func WithExtraInningRunner(on bool) Option {
	return func(s *settings) { s.extraRunner = on }
}

// WithMinLineup sets the shortest lineup accepted.
func WithMinLineup(n int) Option {
	return func(s *settings) { s.minLineup = n }
}

// WithMaxPlateAppearances sets the per half-inning runaway guard.
func WithMaxPlateAppearances(n int) Option {
	return func(s *settings) { s.maxPA = n }
}

// WithEvents records the plate appearance log in each result.
func WithEvents(on bool) Option {
	return func(s *settings) { s.events = on }
}

// WithPolicy sets the bullpen policy for both teams.
func WithPolicy(p bullpen.Policy) Option {
	return func(s *settings) { s.policy = p }
}

// WithTeamPolicies overrides the bullpen policy per team. Nil keeps the shared
// policy.
func WithTeamPolicies(away, home *bullpen.Policy) Option {
	return func(s *settings) {
		s.awayPolicy = away
		s.homePolicy = home
	}
}

// WithEngine sets the plate appearance engine.
func WithEngine(e *plateappearance.Engine) Option {
	return func(s *settings) { s.engine = e }
}
