package service

import (
	"strings"

	"github.com/okian/inningsim/internal/config"
	"github.com/okian/inningsim/internal/domain/bullpen"
	"github.com/okian/inningsim/internal/domain/game"
	"github.com/okian/inningsim/internal/domain/model"
	"github.com/okian/inningsim/internal/domain/plateappearance"
	"github.com/okian/inningsim/internal/domain/pricing"
	"github.com/okian/inningsim/internal/domain/slate"
	"github.com/okian/inningsim/pkg/logger"
)

// Default service settings.
const (
	defaultJobWorkers      = 2
	defaultQueueSize       = 1024
	defaultDedupeSize      = 50000
	defaultStoreSize       = 1000
	defaultMaxReplications = 200000
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithJobWorkers sets how many slate jobs run at the same time.
func WithJobWorkers(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.jobWorkers = count
		}
	}
}

// WithQueueSize sets the maximum size of the job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the request id cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithResultStoreSize caps the number of jobs kept.
func WithResultStoreSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.storeSize = size
		}
	}
}

// WithMaxReplications caps the replications a job may ask for.
func WithMaxReplications(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxReplications = n
		}
	}
}

// WithGameOptions sets the rules every game is played and validated with.
func WithGameOptions(opts ...game.Option) Option {
	return func(s *Service) {
		s.gameOpts = append(s.gameOpts, opts...)
	}
}

// WithSlateOptions sets the defaults of every slate run.
func WithSlateOptions(opts ...slate.Option) Option {
	return func(s *Service) {
		s.slateOpts = append(s.slateOpts, opts...)
	}
}

// WithPricerOptions configures the market pricer.
func WithPricerOptions(opts ...pricing.Option) Option {
	return func(s *Service) {
		s.pricerOpts = append(s.pricerOpts, opts...)
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// FromConfig maps a loaded configuration onto service options.
func FromConfig(cfg *config.Config, log logger.Logger) []Option {
	policy := bullpen.Policy{
		MaxPitchCount:      cfg.MaxPitchCount,
		MaxTimesThrough:    cfg.MaxTimesThroughOrder,
		RelieverMaxPitches: cfg.RelieverMaxPitches,
		RelieverMaxBatters: cfg.RelieverMaxBatters,
		MinRestDays:        cfg.MinRestDays,
		FullRestDays:       cfg.FullRestDays,
		CloserInning:       cfg.CloserInning,
		SetupInning:        cfg.SetupInning,
		SaveMargin:         cfg.SaveMargin,
		LeverageMargin:     cfg.LeverageMargin,
		Fallback:           bullpen.FallbackPolicy(strings.ToLower(cfg.Fallback)),
	}
	engine := plateappearance.New(
		plateappearance.WithNoise(cfg.UseNoise, cfg.NoiseWeight),
		plateappearance.WithFatigueThreshold(cfg.FatiguePitchThreshold),
		plateappearance.WithPlatoonEdge(cfg.PlatoonEdge),
		plateappearance.WithLeague(model.Rates{
			Strikeout:  cfg.LeagueStrikeout,
			Walk:       cfg.LeagueWalk,
			HitByPitch: cfg.LeagueHitByPitch,
			Single:     cfg.LeagueSingle,
			Double:     cfg.LeagueDouble,
			Triple:     cfg.LeagueTriple,
			HomeRun:    cfg.LeagueHomeRun,
		}),
	)

	return []Option{
		WithLogger(log),
		WithJobWorkers(cfg.JobWorkers),
		WithQueueSize(cfg.QueueSize),
		WithDedupeSize(cfg.DedupeSize),
		WithResultStoreSize(cfg.ResultStoreSize),
		WithMaxReplications(cfg.MaxReplications),
		WithGameOptions(
			game.WithRegulationInnings(cfg.RegulationInnings),
			game.WithExtraInningCap(cfg.ExtraInningCap),
			game.WithExtraInningRunner(cfg.ExtraInningRunner),
			game.WithMaxPlateAppearances(cfg.MaxPlateAppearances),
			game.WithMinLineup(cfg.MinLineup),
			game.WithPolicy(policy),
			game.WithEngine(engine),
		),
		WithSlateOptions(
			slate.WithReplications(cfg.Replications),
			slate.WithWorkers(cfg.WorkerCount),
			slate.WithSeed(cfg.Seed),
			slate.WithLogger(log),
		),
		WithPricerOptions(
			pricing.WithCalibration(cfg.CalibrationA, cfg.CalibrationB),
			pricing.WithTotalLines(cfg.TotalLines...),
			pricing.WithRunLines(cfg.RunLines...),
			pricing.WithTeamTotalLines(cfg.TeamTotalLines...),
			pricing.WithFirstFiveLines(cfg.FirstFiveLines...),
		),
	}
}
