package model

// WindDirection is the wind direction relative to home plate.
type WindDirection string

// Wind directions.
const (
	WindNone       WindDirection = "none"
	WindIn         WindDirection = "in"
	WindOut        WindDirection = "out"
	WindOutToLeft  WindDirection = "out_to_left"
	WindOutToRight WindDirection = "out_to_right"
	WindCross      WindDirection = "cross"
)

// ParkFactors are multipliers on event rates, 1.0 is neutral. Zero values are
// read as neutral so partially filled factors stay usable.
type ParkFactors struct {
	Runs      float64
	HomeRun   float64
	Single    float64
	Double    float64
	Triple    float64
	Strikeout float64
	Walk      float64
}

// Weather captures conditions that change batted-ball carry.
type Weather struct {
	TemperatureF  float64
	WindSpeedMPH  float64
	WindDirection WindDirection
	AltitudeFt    float64
	Dome          bool
}

// Umpire holds plate umpire tendencies as multipliers.
type Umpire struct {
	Strikeout float64
	Walk      float64
}

// EnvironmentContext is the park, weather and umpire context of one game.
type EnvironmentContext struct {
	Park    ParkFactors
	Weather Weather
	Umpire  Umpire
}

// NeutralEnvironment returns a context with every multiplier at 1.
func NeutralEnvironment() EnvironmentContext {
	return EnvironmentContext{
		Park:    ParkFactors{Runs: 1, HomeRun: 1, Single: 1, Double: 1, Triple: 1, Strikeout: 1, Walk: 1},
		Weather: Weather{TemperatureF: 70, WindDirection: WindNone, Dome: true},
		Umpire:  Umpire{Strikeout: 1, Walk: 1},
	}
}

// Factor returns x, or 1 when x is unset.
func Factor(x float64) float64 {
	if x <= 0 {
		return 1
	}
	return x
}
