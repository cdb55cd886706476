package plateappearance

import (
	"math"

	"github.com/okian/inningsim/internal/domain/model"
)

// Environment constants.
const (
	neutralTemperatureF  = 70.0
	temperaturePerDegree = 0.003
	altitudePerFoot      = 0.00002
	windPerMPH           = 0.01
	windOutCap           = 0.25
	windInFloor          = 0.80
)

// extraBaseWindShare is the part of the home run wind carry extra-base hits get.
const extraBaseWindShare = 0.5

// Adjustments are the game-level event multipliers computed once from the
// environment plus the wind parameters that are resolved per play.
type Adjustments struct {
	Strikeout  float64
	Walk       float64
	HitByPitch float64
	Single     float64
	Double     float64
	Triple     float64
	HomeRun    float64

	WindDirection model.WindDirection
	WindSpeedMPH  float64
}

// NeutralAdjustments leaves every rate unchanged.
func NeutralAdjustments() Adjustments {
	return Adjustments{Strikeout: 1, Walk: 1, HitByPitch: 1, Single: 1, Double: 1, Triple: 1, HomeRun: 1, WindDirection: model.WindNone}
}

// GameAdjustments folds park, temperature, altitude and umpire into event
// multipliers. Domes ignore temperature and wind.
func GameAdjustments(env model.EnvironmentContext) Adjustments {
	park := env.Park
	hit := func(specific float64) float64 {
		if specific > 0 {
			return specific
		}
		return model.Factor(park.Runs)
	}

	carry := 1.0
	if !env.Weather.Dome {
		temp := env.Weather.TemperatureF
		if temp == 0 {
			temp = neutralTemperatureF
		}
		carry *= 1 + temperaturePerDegree*(temp-neutralTemperatureF)
	}
	if env.Weather.AltitudeFt > 0 {
		carry *= 1 + altitudePerFoot*env.Weather.AltitudeFt
	}
	carry = math.Max(carry, 0.5)

	a := Adjustments{
		Strikeout:     model.Factor(park.Strikeout) * model.Factor(env.Umpire.Strikeout),
		Walk:          model.Factor(park.Walk) * model.Factor(env.Umpire.Walk),
		HitByPitch:    1,
		Single:        hit(park.Single),
		Double:        hit(park.Double),
		Triple:        hit(park.Triple),
		HomeRun:       hit(park.HomeRun) * carry,
		WindDirection: model.WindNone,
	}
	if !env.Weather.Dome && env.Weather.WindDirection != "" {
		a.WindDirection = env.Weather.WindDirection
		a.WindSpeedMPH = math.Max(env.Weather.WindSpeedMPH, 0)
	}
	return a
}

// WindMultiplier is the per-play home run carry for a batter hitting from
// side. Wind blowing out toward a field helps batters who pull to it and gives
// half the effect to the opposite side.
func (a Adjustments) WindMultiplier(side model.Hand) float64 {
	out := 1 + math.Min(a.WindSpeedMPH*windPerMPH, windOutCap)
	switch a.WindDirection {
	case model.WindOut:
		return out
	case model.WindIn:
		return math.Max(1-a.WindSpeedMPH*windPerMPH, windInFloor)
	case model.WindOutToLeft:
		if side == model.HandRight {
			return out
		}
		return 1 + (out-1)/2
	case model.WindOutToRight:
		if side == model.HandLeft {
			return out
		}
		return 1 + (out-1)/2
	default:
		return 1
	}
}

func extraBaseWind(hr float64) float64 {
	return 1 + (hr-1)*extraBaseWindShare
}
