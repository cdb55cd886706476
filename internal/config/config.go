// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers an optional YAML file and environment variables on top.
// - Errors are wrapped with this package's sentinels.
package config

import (
	"fmt"
	"math"
	"runtime"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory slate job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the replication workers used inside one slate.
	WorkerCount int `koanf:"worker_count"`

	// JobWorkers sets how many slate jobs run at the same time.
	JobWorkers int `koanf:"job_workers"`

	// DedupeSize sets the size of the request id cache.
	DedupeSize int `koanf:"dedupe_size"`

	// ResultStoreSize caps the slate jobs kept in memory.
	ResultStoreSize int `koanf:"result_store_size"`

	// Replications is the default number of games per slate.
	Replications int `koanf:"replications"`

	// MaxReplications caps the replications a request may ask for.
	MaxReplications int `koanf:"max_replications"`

	// Seed is the default base seed. 0 means a time-based seed is picked per
	// run, so a run started with 0 is only replayable through the seed
	// reported in the slate result.
	Seed uint64 `koanf:"seed"`

	// Bullpen thresholds.
	MaxPitchCount        int    `koanf:"max_pitch_count"`
	MaxTimesThroughOrder int    `koanf:"max_times_through_order"`
	RelieverMaxPitches   int    `koanf:"reliever_max_pitches"`
	RelieverMaxBatters   int    `koanf:"reliever_max_batters"`
	MinRestDays          int    `koanf:"min_rest_days"`
	FullRestDays         int    `koanf:"full_rest_days"`
	CloserInning         int    `koanf:"closer_inning"`
	SetupInning          int    `koanf:"setup_inning"`
	SaveMargin           int    `koanf:"save_margin"`
	LeverageMargin       int    `koanf:"leverage_margin"`
	Fallback             string `koanf:"fallback"`

	// Game rules.
	RegulationInnings   int  `koanf:"regulation_innings"`
	ExtraInningCap      int  `koanf:"extra_inning_cap"`
	ExtraInningRunner   bool `koanf:"extra_inning_runner"`
	MaxPlateAppearances int  `koanf:"max_plate_appearances"`
	MinLineup           int  `koanf:"min_lineup"`

	// Plate appearance model.
	UseNoise              bool    `koanf:"use_noise"`
	NoiseWeight           float64 `koanf:"noise_weight"`
	FatiguePitchThreshold int     `koanf:"fatigue_pitch_threshold"`
	PlatoonEdge           float64 `koanf:"platoon_edge"`

	// League-average per-PA rates the matchup blend is anchored on.
	LeagueStrikeout  float64 `koanf:"league_strikeout"`
	LeagueWalk       float64 `koanf:"league_walk"`
	LeagueHitByPitch float64 `koanf:"league_hit_by_pitch"`
	LeagueSingle     float64 `koanf:"league_single"`
	LeagueDouble     float64 `koanf:"league_double"`
	LeagueTriple     float64 `koanf:"league_triple"`
	LeagueHomeRun    float64 `koanf:"league_home_run"`

	// Pricing.
	TotalLines     []float64 `koanf:"total_lines"`
	RunLines       []float64 `koanf:"run_lines"`
	TeamTotalLines []float64 `koanf:"team_total_lines"`
	FirstFiveLines []float64 `koanf:"first_five_lines"`
	CalibrationA   float64   `koanf:"calibration_a"`
	CalibrationB   float64   `koanf:"calibration_b"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		LogFormat:             "text",
		Addr:                  ":9080",
		QueueSize:             1_024,
		WorkerCount:           runtime.NumCPU(),
		JobWorkers:            2,
		DedupeSize:            50_000,
		ResultStoreSize:       1_000,
		Replications:          10_000,
		MaxReplications:       200_000,
		Seed:                  0,
		MaxPitchCount:         100,
		MaxTimesThroughOrder:  3,
		RelieverMaxPitches:    30,
		RelieverMaxBatters:    9,
		MinRestDays:           1,
		FullRestDays:          3,
		CloserInning:          9,
		SetupInning:           8,
		SaveMargin:            3,
		LeverageMargin:        2,
		Fallback:              "error",
		RegulationInnings:     9,
		ExtraInningCap:        0,
		ExtraInningRunner:     true,
		MaxPlateAppearances:   40,
		MinLineup:             9,
		UseNoise:              false,
		NoiseWeight:           30,
		FatiguePitchThreshold: 75,
		PlatoonEdge:           0.04,
		LeagueStrikeout:       0.224,
		LeagueWalk:            0.085,
		LeagueHitByPitch:      0.011,
		LeagueSingle:          0.142,
		LeagueDouble:          0.045,
		LeagueTriple:          0.004,
		LeagueHomeRun:         0.031,
		TotalLines:            []float64{7.5, 8.5, 9.5},
		RunLines:              []float64{-1.5, 1.5},
		TeamTotalLines:        []float64{3.5, 4.5},
		FirstFiveLines:        []float64{4.5},
		CalibrationA:          0,
		CalibrationB:          1,
	}
}

// Validate checks the values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	positive := []struct {
		name string
		v    int
	}{
		{"queue_size", c.QueueSize},
		{"worker_count", c.WorkerCount},
		{"job_workers", c.JobWorkers},
		{"result_store_size", c.ResultStoreSize},
		{"replications", c.Replications},
		{"max_replications", c.MaxReplications},
		{"max_pitch_count", c.MaxPitchCount},
		{"max_times_through_order", c.MaxTimesThroughOrder},
		{"regulation_innings", c.RegulationInnings},
		{"max_plate_appearances", c.MaxPlateAppearances},
		{"min_lineup", c.MinLineup},
		{"fatigue_pitch_threshold", c.FatiguePitchThreshold},
	}
	for _, p := range positive {
		if p.v <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidConfig, p.name, p.v)
		}
	}
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.Replications > c.MaxReplications {
		return fmt.Errorf("%w: replications %d above max_replications %d", ErrInvalidConfig, c.Replications, c.MaxReplications)
	}
	if c.MinRestDays < 0 || c.ExtraInningCap < 0 {
		return fmt.Errorf("%w: min_rest_days and extra_inning_cap must not be negative", ErrInvalidConfig)
	}
	switch strings.ToLower(c.Fallback) {
	case "error", "emergency", "stay_in":
	default:
		return fmt.Errorf("%w: unknown fallback %q", ErrInvalidConfig, c.Fallback)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	if c.UseNoise && c.NoiseWeight <= 0 {
		return fmt.Errorf("%w: noise_weight must be positive when use_noise is set", ErrInvalidConfig)
	}
	if c.PlatoonEdge < 0 || c.PlatoonEdge >= 1 {
		return fmt.Errorf("%w: platoon_edge must be within [0, 1), got %v", ErrInvalidConfig, c.PlatoonEdge)
	}
	if err := c.validateLeague(); err != nil {
		return err
	}
	totals := map[string][]float64{
		"total":      c.TotalLines,
		"team total": c.TeamTotalLines,
		"first five": c.FirstFiveLines,
	}
	for name, lines := range totals {
		for _, l := range lines {
			if l < 0 || math.Mod(l*2, 1) != 0 {
				return fmt.Errorf("%w: %s line %v", ErrInvalidConfig, name, l)
			}
		}
	}
	for _, l := range c.RunLines {
		if math.Mod(l*2, 1) != 0 {
			return fmt.Errorf("%w: run line %v", ErrInvalidConfig, l)
		}
	}
	return nil
}

func (c *Config) validateLeague() error {
	rates := []float64{c.LeagueStrikeout, c.LeagueWalk, c.LeagueHitByPitch, c.LeagueSingle, c.LeagueDouble, c.LeagueTriple, c.LeagueHomeRun}
	var sum float64
	for _, r := range rates {
		if math.IsNaN(r) || r < 0 || r >= 1 {
			return fmt.Errorf("%w: league rates must be within [0, 1), got %v", ErrInvalidConfig, r)
		}
		sum += r
	}
	if sum >= 1 {
		return fmt.Errorf("%w: league rates sum to %v", ErrInvalidConfig, sum)
	}
	return nil
}
