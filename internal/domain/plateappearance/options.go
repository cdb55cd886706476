package plateappearance

import "github.com/okian/inningsim/internal/domain/model"

// Default engine parameters.
const (
	defaultPlatoonEdge      = 0.04
	defaultNoiseWeight      = 30.0
	defaultFatigueThreshold = 75
	defaultFatigueStep      = 25
	defaultFatigueK         = 0.02
	defaultFatigueBB        = 0.03
)

// DefaultLeague is the league-average per-PA rate line used for the odds-ratio
// blend.
var DefaultLeague = model.Rates{
	Strikeout:  0.224,
	Walk:       0.085,
	HitByPitch: 0.011,
	Single:     0.142,
	Double:     0.045,
	Triple:     0.004,
	HomeRun:    0.031,
}

// Advancement holds the probabilities of the batted-ball and baserunning
// sub-models.
type Advancement struct {
	GroundBall float64
	FlyBall    float64
	LineDrive  float64
	PopUp      float64

	DoublePlay       float64
	SacrificeFly     float64
	ProductiveOut    float64
	SecondScores     float64
	SecondScores2Out float64
	FirstToThird     float64
	FirstScores      float64
}

// DefaultAdvancement returns the stock sub-model probabilities.
func DefaultAdvancement() Advancement {
	return Advancement{
		GroundBall:       0.45,
		FlyBall:          0.30,
		LineDrive:        0.10,
		PopUp:            0.15,
		DoublePlay:       0.30,
		SacrificeFly:     0.55,
		ProductiveOut:    0.45,
		SecondScores:     0.40,
		SecondScores2Out: 0.50,
		FirstToThird:     0.28,
		FirstScores:      0.40,
	}
}

// Option configures an Engine.
type Option func(*Engine)

// WithLeague sets the league-average rates used by the blend.
func WithLeague(r model.Rates) Option {
	return func(e *Engine) {
		if r.Validate("league", "league") == nil {
			e.league = r
		}
	}
}

// WithPlatoonEdge sets the same-handed strikeout boost and home run cut.
func WithPlatoonEdge(edge float64) Option {
	return func(e *Engine) {
		if edge >= 0 && edge < 1 {
			e.platoonEdge = edge
		}
	}
}

// WithNoise enables Beta noise on K and BB with the given concentration.
// Larger weights mean less noise.
func WithNoise(enabled bool, weight float64) Option {
	return func(e *Engine) {
		e.useNoise = enabled
		if weight > 0 {
			e.noiseWeight = weight
		}
	}
}

// WithFatigueThreshold sets the pitch count beyond which fatigue reduces K and
// raises BB.
func WithFatigueThreshold(pitches int) Option {
	return func(e *Engine) {
		if pitches > 0 {
			e.fatigueThreshold = pitches
		}
	}
}

// WithAdvancement replaces the batted-ball and baserunning probabilities.
func WithAdvancement(a Advancement) Option {
	return func(e *Engine) {
		e.advance = a
	}
}
