package model

// OutcomeKind tags the result of a plate appearance.
type OutcomeKind int

// Plate appearance outcomes.
const (
	Strikeout OutcomeKind = iota
	Walk
	HitByPitch
	Single
	Double
	Triple
	HomeRun
	InPlayOut
	DoublePlay
	SacrificeFly
)

var outcomeNames = [...]string{
	Strikeout:    "K",
	Walk:         "BB",
	HitByPitch:   "HBP",
	Single:       "1B",
	Double:       "2B",
	Triple:       "3B",
	HomeRun:      "HR",
	InPlayOut:    "OUT",
	DoublePlay:   "DP",
	SacrificeFly: "SF",
}

func (k OutcomeKind) String() string {
	if k < 0 || int(k) >= len(outcomeNames) {
		return "UNKNOWN"
	}
	return outcomeNames[k]
}

// IsHit reports whether the outcome is a base hit.
func (k OutcomeKind) IsHit() bool {
	return k == Single || k == Double || k == Triple || k == HomeRun
}

// OutsRecorded is the number of outs the outcome records on its own.
func (k OutcomeKind) OutsRecorded() int {
	switch k {
	case Strikeout, InPlayOut, SacrificeFly:
		return 1
	case DoublePlay:
		return 2
	default:
		return 0
	}
}

// BattedBall is the contact type of a ball in play.
type BattedBall int

// Batted ball types.
const (
	NoContact BattedBall = iota
	GroundBall
	FlyBall
	LineDrive
	PopUp
)

func (b BattedBall) String() string {
	switch b {
	case GroundBall:
		return "GB"
	case FlyBall:
		return "FB"
	case LineDrive:
		return "LD"
	case PopUp:
		return "POP"
	default:
		return ""
	}
}

// Advance carries the runner-advancement decisions sampled with the outcome so
// that applying it to the bases stays deterministic.
type Advance struct {
	// SecondScores sends the runner from second home on a single.
	SecondScores bool
	// FirstToThird sends the runner from first to third on a single.
	FirstToThird bool
	// FirstScores sends the runner from first home on a double.
	FirstScores bool
	// Productive advances every runner one base on an in-play out.
	Productive bool
}

// Outcome is one sampled plate appearance result.
type Outcome struct {
	Kind       OutcomeKind
	BattedBall BattedBall
	BatterID   string
	PitcherID  string
	Advance    Advance
	Pitches    int
}
