package bullpen

import "github.com/okian/inningsim/internal/domain/model"

// FallbackPolicy decides what happens when a change is required and no
// eligible reliever remains.
type FallbackPolicy string

// Fallback policies.
const (
	FallbackError     FallbackPolicy = "error"
	FallbackEmergency FallbackPolicy = "emergency"
	FallbackStayIn    FallbackPolicy = "stay_in"
)

// Change triggers.
const (
	TriggerPitchCount   = "pitch_count"
	TriggerTimesThrough = "times_through_order"
	TriggerReliever     = "reliever_fatigue"
	TriggerLeverage     = "leverage"
)

// middleInning is the first inning middle relievers are preferred in close games.
const middleInning = 6

// Policy holds the usage thresholds. Every value is configuration.
type Policy struct {
	MaxPitchCount      int
	MaxTimesThrough    int
	RelieverMaxPitches int
	RelieverMaxBatters int
	MinRestDays        int
	FullRestDays       int
	CloserInning       int
	SetupInning        int
	SaveMargin         int
	LeverageMargin     int
	Fallback           FallbackPolicy
}

// DefaultPolicy returns the stock thresholds.
func DefaultPolicy() Policy {
	return Policy{
		MaxPitchCount:      100,
		MaxTimesThrough:    3,
		RelieverMaxPitches: 30,
		RelieverMaxBatters: 9,
		MinRestDays:        1,
		FullRestDays:       3,
		CloserInning:       9,
		SetupInning:        8,
		SaveMargin:         3,
		LeverageMargin:     2,
		Fallback:           FallbackError,
	}
}

// Validate rejects thresholds that cannot drive a game.
func (p Policy) Validate() error {
	switch {
	case p.MaxPitchCount <= 0:
		return model.NewConfigurationError("max_pitch_count must be positive")
	case p.MaxTimesThrough <= 0:
		return model.NewConfigurationError("max_times_through_order must be positive")
	case p.RelieverMaxPitches <= 0 || p.RelieverMaxBatters <= 0:
		return model.NewConfigurationError("reliever limits must be positive")
	case p.MinRestDays < 0 || p.FullRestDays < 0:
		return model.NewConfigurationError("rest days must not be negative")
	case p.CloserInning <= 0 || p.SetupInning <= 0:
		return model.NewConfigurationError("leverage innings must be positive")
	case p.SaveMargin < 1 || p.LeverageMargin < 0:
		return model.NewConfigurationError("invalid leverage margins")
	}
	switch p.Fallback {
	case FallbackError, FallbackEmergency, FallbackStayIn:
	default:
		return model.NewConfigurationError("unknown fallback policy %q", p.Fallback)
	}
	return nil
}

// DesiredRole maps a situation to the relief role it calls for.
func (p Policy) DesiredRole(sit model.Situation) model.PitcherRole {
	lead := sit.Lead
	tight := abs(lead) <= p.LeverageMargin
	switch {
	case sit.Inning >= p.CloserInning && p.SaveSituation(lead):
		return model.RoleCloser
	case sit.Inning >= p.SetupInning && tight:
		return model.RoleSetup
	case sit.Inning >= middleInning && tight:
		return model.RoleMiddleRelief
	default:
		return model.RoleLongRelief
	}
}

// SaveSituation reports whether a fielding lead qualifies for a save.
func (p Policy) SaveSituation(lead int) bool {
	return lead >= 1 && lead <= p.SaveMargin
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
