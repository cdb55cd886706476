package pricing

import (
	"fmt"

	"github.com/okian/inningsim/internal/domain/slate"
)

// Default market lines.
var (
	DefaultTotalLines     = []float64{7.5, 8.5, 9.5}
	DefaultRunLines       = []float64{-1.5, 1.5}
	DefaultTeamTotalLines = []float64{3.5, 4.5}
	DefaultFirstFiveLines = []float64{4.5}
)

// Pricer prices the standard board for slate results.
type Pricer struct {
	calibration    Calibration
	totalLines     []float64
	runLines       []float64
	teamTotalLines []float64
	firstFiveLines []float64
}

// Option configures a Pricer.
type Option func(*Pricer)

// WithCalibration sets the moneyline logit calibration.
func WithCalibration(a, b float64) Option {
	return func(p *Pricer) {
		p.calibration = Calibration{A: a, B: b}
	}
}

// WithTotalLines sets the game total lines.
func WithTotalLines(lines ...float64) Option {
	return func(p *Pricer) {
		if len(lines) > 0 {
			p.totalLines = lines
		}
	}
}

// WithRunLines sets the home run lines.
func WithRunLines(lines ...float64) Option {
	return func(p *Pricer) {
		if len(lines) > 0 {
			p.runLines = lines
		}
	}
}

// WithTeamTotalLines sets the lines used for both team totals.
func WithTeamTotalLines(lines ...float64) Option {
	return func(p *Pricer) {
		if len(lines) > 0 {
			p.teamTotalLines = lines
		}
	}
}

// WithFirstFiveLines sets the first-five-innings total lines.
func WithFirstFiveLines(lines ...float64) Option {
	return func(p *Pricer) {
		if len(lines) > 0 {
			p.firstFiveLines = lines
		}
	}
}

// NewPricer creates a pricer with the default lines and no calibration.
func NewPricer(opts ...Option) *Pricer {
	p := &Pricer{
		calibration:    Identity,
		totalLines:     DefaultTotalLines,
		runLines:       DefaultRunLines,
		teamTotalLines: DefaultTeamTotalLines,
		firstFiveLines: DefaultFirstFiveLines,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Board is every market priced from one slate.
type Board struct {
	RunID           string
	GameID          string
	Moneyline       MoneylineMarket
	Totals          []TotalMarket
	RunLines        []SpreadMarket
	HomeTeamTotals  []TotalMarket
	AwayTeamTotals  []TotalMarket
	FirstFiveTotals []TotalMarket
	FirstInning     YesNoMarket
}

// Price builds the board for res.
func (p *Pricer) Price(res *slate.Result) (*Board, error) {
	if res == nil {
		return nil, fmt.Errorf("pricing: nil slate result")
	}
	ml, err := moneyline(res.PMF(slate.DimWinner), p.calibration)
	if err != nil {
		return nil, fmt.Errorf("pricing: moneyline: %w", err)
	}
	b := &Board{RunID: res.RunID, GameID: res.GameID, Moneyline: ml}

	if b.Totals, err = totals(res, slate.DimTotal, p.totalLines); err != nil {
		return nil, err
	}
	if b.HomeTeamTotals, err = totals(res, slate.DimHome, p.teamTotalLines); err != nil {
		return nil, err
	}
	if b.AwayTeamTotals, err = totals(res, slate.DimAway, p.teamTotalLines); err != nil {
		return nil, err
	}
	if b.FirstFiveTotals, err = totals(res, slate.DimFirstFive, p.firstFiveLines); err != nil {
		return nil, err
	}
	for _, line := range p.runLines {
		s, err := Spread(res.PMF(slate.DimDifferential), line)
		if err != nil {
			return nil, fmt.Errorf("pricing: run line %v: %w", line, err)
		}
		b.RunLines = append(b.RunLines, s)
	}
	if b.FirstInning, err = YesNo(res.PMF(slate.DimFirstInning)); err != nil {
		return nil, fmt.Errorf("pricing: first inning: %w", err)
	}
	return b, nil
}

// Total prices the game total of res at an arbitrary line.
func (p *Pricer) Total(res *slate.Result, line float64) (TotalMarket, error) {
	return Total(res.PMF(slate.DimTotal), line)
}

func totals(res *slate.Result, dim string, lines []float64) ([]TotalMarket, error) {
	out := make([]TotalMarket, 0, len(lines))
	for _, line := range lines {
		t, err := Total(res.PMF(dim), line)
		if err != nil {
			return nil, fmt.Errorf("pricing: %s total %v: %w", dim, line, err)
		}
		out = append(out, t)
	}
	return out, nil
}

// ToMap renders the board.
func (b *Board) ToMap() map[string]any {
	return map[string]any{
		"run_id":            b.RunID,
		"game_id":           b.GameID,
		"moneyline":         b.Moneyline.ToMap(),
		"totals":            totalMaps(b.Totals),
		"run_lines":         spreadMaps(b.RunLines),
		"home_team_totals":  totalMaps(b.HomeTeamTotals),
		"away_team_totals":  totalMaps(b.AwayTeamTotals),
		"first_five_totals": totalMaps(b.FirstFiveTotals),
		"first_inning_run":  b.FirstInning.ToMap(),
	}
}

func totalMaps(ts []TotalMarket) []any {
	out := make([]any, len(ts))
	for i, t := range ts {
		out[i] = t.ToMap()
	}
	return out
}

func spreadMaps(ss []SpreadMarket) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s.ToMap()
	}
	return out
}
