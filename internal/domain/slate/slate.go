// Package slate runs many seeded replications of one matchup and aggregates
// them into the distributions markets are priced from.
package slate

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/inningsim/internal/domain/distribution"
	"github.com/okian/inningsim/internal/domain/game"
	"github.com/okian/inningsim/internal/domain/model"
	"github.com/okian/inningsim/pkg/logger"
	"github.com/okian/inningsim/pkg/metrics"
)

// FirstFiveInnings is the segment length of first-five markets.
const FirstFiveInnings = 5

// Slate run statuses reported to metrics.
const (
	statusDone      = "done"
	statusFailed    = "failed"
	statusCancelled = "cancelled"
)

// Dimension names used for PMFs and summaries.
const (
	DimTotal        = "total"
	DimHome         = "home"
	DimAway         = "away"
	DimDifferential = "differential"
	DimWinner       = "winner"
	DimFirstFive    = "first_five"
	DimFirstInning  = "first_inning"
)

// Simulator runs slates. It holds configuration only.
type Simulator struct {
	replications int
	workers      int
	seed         uint64
	gameOpts     []game.Option
	log          logger.Logger
}

// New creates a slate simulator.
func New(opts ...Option) *Simulator {
	s := &Simulator{
		replications: DefaultReplications,
		workers:      defaultWorkers(),
		log:          logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Result is the aggregate of one slate run.
type Result struct {
	RunID        string
	GameID       string
	Seed         uint64
	Requested    int
	Completed    int64
	Failures     map[string]int64
	PMFs         map[string]distribution.PMF
	Summaries    map[string]distribution.Summary
	ExtraInnings float64
	WalkOffs     float64
	Ties         float64
	// PitchingChanges is the mean number of changes per game, both sides.
	PitchingChanges float64
	// ChangeTriggers counts pitching changes by trigger across completed games.
	ChangeTriggers map[string]int64
	Fallbacks      map[string]int64
	Duration       time.Duration
}

// PMF returns the distribution for a dimension, empty when unknown.
func (r *Result) PMF(dim string) distribution.PMF {
	return r.PMFs[dim]
}

// FailureRate is the share of requested replications that were excluded.
func (r *Result) FailureRate() float64 {
	if r.Requested == 0 {
		return 0
	}
	var n int64
	for _, c := range r.Failures {
		n += c
	}
	return float64(n) / float64(r.Requested)
}

// ToMap renders the result as plain nested values.
func (r *Result) ToMap() map[string]any {
	pmfs := make(map[string]any, len(r.PMFs))
	for k, p := range r.PMFs {
		pmfs[k] = p.ToMap()
	}
	sums := make(map[string]any, len(r.Summaries))
	for k, s := range r.Summaries {
		sums[k] = s.ToMap()
	}
	failures := make(map[string]any, len(r.Failures))
	for k, n := range r.Failures {
		failures[k] = n
	}
	fallbacks := make(map[string]any, len(r.Fallbacks))
	for k, n := range r.Fallbacks {
		fallbacks[k] = n
	}
	triggers := make(map[string]any, len(r.ChangeTriggers))
	for k, n := range r.ChangeTriggers {
		triggers[k] = n
	}
	return map[string]any{
		"run_id":           r.RunID,
		"game_id":          r.GameID,
		"seed":             r.Seed,
		"requested":        r.Requested,
		"completed":        r.Completed,
		"failures":         failures,
		"pmfs":             pmfs,
		"summaries":        sums,
		"extra_inning_pct": r.ExtraInnings,
		"walk_off_pct":     r.WalkOffs,
		"tie_pct":          r.Ties,
		"pitching_changes": r.PitchingChanges,
		"change_triggers":  triggers,
		"fallbacks":        fallbacks,
		"duration_ms":      r.Duration.Milliseconds(),
	}
}

// tally is the worker-local accumulator. Only integer counts are kept so
// merging in any order gives the same numbers.
type tally struct {
	counters  map[string]*distribution.Counter
	failures  map[string]int64
	fallbacks map[string]int64
	triggers  map[string]int64
	completed int64
	extra     int64
	walkOffs  int64
	ties      int64
	changes   int64
}

var dimensions = [...]string{DimTotal, DimHome, DimAway, DimDifferential, DimWinner, DimFirstFive, DimFirstInning}

func newTally() *tally {
	t := &tally{
		counters:  make(map[string]*distribution.Counter, len(dimensions)),
		failures:  make(map[string]int64),
		fallbacks: make(map[string]int64),
		triggers:  make(map[string]int64),
	}
	for _, d := range dimensions {
		t.counters[d] = distribution.NewCounter()
	}
	return t
}

func (t *tally) record(res *model.GameResult) {
	t.completed++
	t.counters[DimTotal].Add(res.Total())
	t.counters[DimHome].Add(res.Score[model.Home])
	t.counters[DimAway].Add(res.Score[model.Away])
	t.counters[DimDifferential].Add(res.Differential())
	t.counters[DimWinner].Add(res.Winner.Key())
	away, home := res.SegmentRuns(FirstFiveInnings)
	t.counters[DimFirstFive].Add(away + home)
	scored := 0
	if res.FirstInningScored() {
		scored = 1
	}
	t.counters[DimFirstInning].Add(scored)

	if res.ExtraInnings {
		t.extra++
	}
	if res.WalkOff {
		t.walkOffs++
	}
	if res.Winner == model.WinnerTie {
		t.ties++
	}
	for _, side := range []*model.SideSummary{&res.Away, &res.Home} {
		t.changes += int64(side.PitchingChanges)
		for k, n := range side.ChangeTriggers {
			t.triggers[k] += int64(n)
		}
		for _, f := range side.Fallbacks {
			t.fallbacks[f.Policy]++
		}
	}
}

func (t *tally) merge(o *tally) {
	for d, c := range o.counters {
		t.counters[d].Merge(c)
	}
	for k, n := range o.failures {
		t.failures[k] += n
	}
	for k, n := range o.fallbacks {
		t.fallbacks[k] += n
	}
	for k, n := range o.triggers {
		t.triggers[k] += n
	}
	t.completed += o.completed
	t.extra += o.extra
	t.walkOffs += o.walkOffs
	t.ties += o.ties
	t.changes += o.changes
}

// Run plays the configured number of replications of m. Replication i is
// seeded with PCG(seed, i) and indices are striped across workers, so the
// result does not depend on the worker count.
func (s *Simulator) Run(ctx context.Context, m *model.Matchup) (*Result, error) {
	if s.replications <= 0 {
		return nil, model.NewConfigurationError("slate: replications must be positive, got %d", s.replications)
	}
	sim, err := game.New(m, s.gameOpts...)
	if err != nil {
		return nil, fmt.Errorf("slate: %w", err)
	}

	seed := s.seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	workers := s.workers
	if workers > s.replications {
		workers = s.replications
	}
	runID := uuid.NewString()
	log := s.log.Named("slate")
	start := time.Now()
	log.Info(ctx, "slate started",
		logger.String("run_id", runID),
		logger.String("game_id", m.GameID),
		logger.Uint64("seed", seed),
		logger.Int("replications", s.replications),
		logger.Int("workers", workers))

	tallies := make([]*tally, workers)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		t := newTally()
		tallies[w] = t
		g.Go(func() error {
			for i := w; i < s.replications; i += workers {
				if err := gctx.Err(); err != nil {
					return err
				}
				rng := rand.New(rand.NewPCG(seed, uint64(i)))
				res, err := sim.Play(gctx, rng)
				if err != nil {
					if !model.Recoverable(err) {
						return fmt.Errorf("slate: replication %d: %w", i, err)
					}
					kind := model.FailureKind(err)
					t.failures[kind]++
					log.Debug(gctx, "replication excluded",
						logger.Int("index", i),
						logger.String("kind", kind),
						logger.Error(err))
					continue
				}
				metrics.ObserveGameInnings(res.InningsPlayed)
				t.record(&res)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		status := statusFailed
		if ctx.Err() != nil {
			status = statusCancelled
			err = fmt.Errorf("slate: %w", ctx.Err())
		}
		metrics.RecordSlate(status, msSince(start))
		metrics.RecordErrorByComponent("slate", model.FailureKind(err))
		log.Warn(ctx, "slate aborted", logger.String("run_id", runID), logger.Error(err))
		return nil, err
	}

	agg := newTally()
	for _, t := range tallies {
		agg.merge(t)
	}
	res, err := build(agg)
	elapsed := time.Since(start)
	s.report(agg, elapsed)
	if err != nil {
		log.Warn(ctx, "slate produced no games", logger.String("run_id", runID), logger.Error(err))
		return nil, err
	}
	res.RunID = runID
	res.GameID = m.GameID
	res.Seed = seed
	res.Requested = s.replications
	res.Duration = elapsed

	log.Info(ctx, "slate finished",
		logger.String("run_id", runID),
		logger.Int64("completed", res.Completed),
		logger.Float64("failure_rate", res.FailureRate()),
		logger.Duration("took", elapsed))
	return res, nil
}

func build(agg *tally) (*Result, error) {
	if agg.completed == 0 {
		return nil, fmt.Errorf("slate: %w (excluded %s)", model.ErrNoReplications, describe(agg.failures))
	}
	res := &Result{
		Completed:       agg.completed,
		Failures:        agg.failures,
		Fallbacks:       agg.fallbacks,
		ChangeTriggers:  agg.triggers,
		PMFs:            make(map[string]distribution.PMF, len(dimensions)),
		Summaries:       make(map[string]distribution.Summary, len(dimensions)),
		ExtraInnings:    rate(agg.extra, agg.completed),
		WalkOffs:        rate(agg.walkOffs, agg.completed),
		Ties:            rate(agg.ties, agg.completed),
		PitchingChanges: rate(agg.changes, agg.completed),
	}
	for _, d := range dimensions {
		pmf := agg.counters[d].PMF()
		res.PMFs[d] = pmf
		if d == DimWinner || d == DimFirstInning {
			continue
		}
		sum, err := pmf.Summary()
		if err != nil {
			return nil, fmt.Errorf("slate: %s summary: %w", d, err)
		}
		res.Summaries[d] = sum
	}
	return res, nil
}

func (s *Simulator) report(agg *tally, elapsed time.Duration) {
	metrics.RecordReplications(int(agg.completed))
	for kind, n := range agg.failures {
		metrics.RecordReplicationFailures(kind, int(n))
	}
	for policy, n := range agg.fallbacks {
		metrics.RecordBullpenFallback(policy, int(n))
	}
	metrics.RecordPitchingChanges(int(agg.changes))
	metrics.RecordGameEndings(int(agg.extra), int(agg.walkOffs), int(agg.ties))
	status := statusDone
	if agg.completed == 0 {
		status = statusFailed
	}
	metrics.RecordSlate(status, float64(elapsed)/float64(time.Millisecond))
}

func describe(failures map[string]int64) string {
	if len(failures) == 0 {
		return "nothing"
	}
	kinds := make([]string, 0, len(failures))
	for k := range failures {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	out := ""
	for i, k := range kinds {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s=%d", k, failures[k])
	}
	return out
}

func rate(n, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t)) / float64(time.Millisecond)
}
