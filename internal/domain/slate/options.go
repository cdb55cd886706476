package slate

import (
	"runtime"

	"github.com/okian/inningsim/internal/domain/game"
	"github.com/okian/inningsim/pkg/logger"
)

// Default slate settings.
const (
	DefaultReplications = 10000
)

// Option configures a Simulator.
type Option func(*Simulator)

// WithReplications sets how many games are played.
func WithReplications(n int) Option {
	return func(s *Simulator) {
		s.replications = n
	}
}

// WithWorkers sets the number of concurrent workers. Values below one fall
// back to the number of CPUs.
func WithWorkers(n int) Option {
	return func(s *Simulator) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithSeed sets the base seed. Zero picks a time-based seed at Run.
func WithSeed(seed uint64) Option {
	return func(s *Simulator) {
		s.seed = seed
	}
}

// WithGameOptions passes options through to every game simulator.
func WithGameOptions(opts ...game.Option) Option {
	return func(s *Simulator) {
		s.gameOpts = append(s.gameOpts, opts...)
	}
}

// WithLogger sets the logger used for run lifecycle and exclusions.
func WithLogger(l logger.Logger) Option {
	return func(s *Simulator) {
		if l != nil {
			s.log = l
		}
	}
}

func defaultWorkers() int {
	return runtime.NumCPU()
}
