// Package plateappearance samples single plate appearance outcomes from a
// batter/pitcher matchup adjusted for fatigue, handedness and environment.
package plateappearance

import (
	"math"
	"math/rand/v2"

	"github.com/okian/inningsim/internal/domain/model"
	"gonum.org/v1/gonum/stat/distuv"
)

// Times-through-order penalties, indexed by pass (1-based).
var ttoPenalty = [...]float64{0, 0, 0.015, 0.035, 0.060}

// pitchModel is the minimum pitches of an outcome plus the Poisson mean of the
// extra pitches on top.
type pitchModel struct {
	min    int
	lambda float64
}

var pitchModels = map[model.OutcomeKind]pitchModel{
	model.Strikeout:  {min: 3, lambda: 1.8},
	model.Walk:       {min: 4, lambda: 1.6},
	model.HitByPitch: {min: 1, lambda: 2.2},
}

var contactPitches = pitchModel{min: 1, lambda: 2.6}

// baseKinds is the order of the masses in a Distribution.
var baseKinds = [...]model.OutcomeKind{
	model.Strikeout, model.Walk, model.HitByPitch, model.Single,
	model.Double, model.Triple, model.HomeRun, model.InPlayOut,
}

// Distribution is the normalized probability of each base outcome of one
// plate appearance. In-play outs are refined by the out sub-model.
type Distribution struct {
	Strikeout  float64
	Walk       float64
	HitByPitch float64
	Single     float64
	Double     float64
	Triple     float64
	HomeRun    float64
	Out        float64
}

func (d Distribution) masses() [8]float64 {
	return [8]float64{d.Strikeout, d.Walk, d.HitByPitch, d.Single, d.Double, d.Triple, d.HomeRun, d.Out}
}

// Sum returns the total mass, 1 after normalization.
func (d Distribution) Sum() float64 {
	s := 0.0
	for _, m := range d.masses() {
		s += m
	}
	return s
}

// certain returns a one-point distribution when a blended rate is certain.
func (d Distribution) certain() (Distribution, bool) {
	m := d.masses()
	for i := 0; i < len(m)-1; i++ {
		if m[i] >= 1 {
			var out [8]float64
			out[i] = 1
			return fromMasses(out), true
		}
	}
	return Distribution{}, false
}

func fromMasses(m [8]float64) Distribution {
	return Distribution{
		Strikeout:  m[0],
		Walk:       m[1],
		HitByPitch: m[2],
		Single:     m[3],
		Double:     m[4],
		Triple:     m[5],
		HomeRun:    m[6],
		Out:        m[7],
	}
}

func (d Distribution) pick(u float64) model.OutcomeKind {
	cum := 0.0
	masses := d.masses()
	last := model.InPlayOut
	for i, m := range masses {
		if m <= 0 {
			continue
		}
		cum += m
		last = baseKinds[i]
		if u < cum {
			return baseKinds[i]
		}
	}
	return last
}

// Engine samples plate appearances. It holds configuration only and is safe
// for concurrent use; all randomness comes from the caller's RNG.
type Engine struct {
	league           model.Rates
	platoonEdge      float64
	useNoise         bool
	noiseWeight      float64
	fatigueThreshold int
	advance          Advancement
}

// New creates an engine with stock parameters.
func New(opts ...Option) *Engine {
	e := &Engine{
		league:           DefaultLeague,
		platoonEdge:      defaultPlatoonEdge,
		noiseWeight:      defaultNoiseWeight,
		fatigueThreshold: defaultFatigueThreshold,
		advance:          DefaultAdvancement(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Log5 blends a batter rate and a pitcher rate against the league rate with
// the odds-ratio method. A certain event on either side stays certain.
func Log5(batter, pitcher, league float64) float64 {
	switch {
	case batter >= 1 || pitcher >= 1:
		return 1
	case batter <= 0 || pitcher <= 0:
		return 0
	case league <= 0 || league >= 1:
		return (batter + pitcher) / 2
	}
	num := batter * pitcher / league
	den := num + (1-batter)*(1-pitcher)/(1-league)
	return num / den
}

// Fatigued applies times-through-order and pitch count decay to pitcher
// rates: strikeouts fall and walks rise.
func (e *Engine) Fatigued(r model.Rates, f model.Fatigue) model.Rates {
	pass := f.TimesThrough
	if pass >= len(ttoPenalty) {
		pass = len(ttoPenalty) - 1
	}
	if pass > 0 {
		pen := ttoPenalty[pass]
		r.Strikeout *= 1 - pen
		r.Walk *= 1 + pen
	}
	level := math.Max(0, float64(f.PitchCount-e.fatigueThreshold)/defaultFatigueStep)
	r.Strikeout *= math.Max(0, 1-defaultFatigueK*level)
	r.Walk *= 1 + defaultFatigueBB*level
	r.Walk = math.Min(r.Walk, 1)
	return r
}

// Distribution returns the matchup probabilities without noise.
func (e *Engine) Distribution(batter, pitcher *model.PlayerProfile, f model.Fatigue, adj Adjustments) (Distribution, error) {
	return e.distribution(nil, batter, pitcher, f, adj)
}

func (e *Engine) distribution(rng *rand.Rand, batter, pitcher *model.PlayerProfile, f model.Fatigue, adj Adjustments) (Distribution, error) {
	b, err := batter.RequireBatting()
	if err != nil {
		return Distribution{}, err
	}
	p, err := pitcher.RequirePitching()
	if err != nil {
		return Distribution{}, err
	}
	p = e.Fatigued(p, f)
	l := e.league

	bHBP, pHBP := b.HitByPitch, p.HitByPitch
	if bHBP == 0 {
		bHBP = l.HitByPitch
	}
	if pHBP == 0 {
		pHBP = l.HitByPitch
	}

	d := Distribution{
		Strikeout:  Log5(b.Strikeout, p.Strikeout, l.Strikeout),
		Walk:       Log5(b.Walk, p.Walk, l.Walk),
		HitByPitch: Log5(bHBP, pHBP, l.HitByPitch),
		Single:     Log5(b.Single, p.Single, l.Single),
		Double:     Log5(b.Double, p.Double, l.Double),
		Triple:     Log5(b.Triple, p.Triple, l.Triple),
		HomeRun:    Log5(b.HomeRun, p.HomeRun, l.HomeRun),
	}
	if certain, ok := d.certain(); ok {
		return certain, nil
	}
	d.Out = math.Max(0, 1-d.Sum())

	side := batter.BattingSide(pitcher.Throws)
	if side != "" && side == pitcher.Throws {
		d.Strikeout *= 1 + e.platoonEdge
		d.HomeRun *= 1 - e.platoonEdge
	}

	d.Strikeout *= model.Factor(adj.Strikeout)
	d.Walk *= model.Factor(adj.Walk)
	d.HitByPitch *= model.Factor(adj.HitByPitch)
	d.Single *= model.Factor(adj.Single)
	d.Double *= model.Factor(adj.Double)
	d.Triple *= model.Factor(adj.Triple)
	d.HomeRun *= model.Factor(adj.HomeRun)

	wind := adj.WindMultiplier(side)
	d.HomeRun *= wind
	d.Double *= extraBaseWind(wind)
	d.Triple *= extraBaseWind(wind)

	if rng != nil && e.useNoise {
		d.Strikeout = e.noise(rng, d.Strikeout)
		d.Walk = e.noise(rng, d.Walk)
	}
	return normalize(d), nil
}

// noise draws from a Beta centred on p.
func (e *Engine) noise(rng *rand.Rand, p float64) float64 {
	if p <= 0 || p >= 1 {
		return p
	}
	beta := distuv.Beta{Alpha: p * e.noiseWeight, Beta: (1 - p) * e.noiseWeight, Src: rng}
	return beta.Rand()
}

func normalize(d Distribution) Distribution {
	total := d.Sum()
	if total <= 0 || math.IsNaN(total) {
		return Distribution{Out: 1}
	}
	return Distribution{
		Strikeout:  d.Strikeout / total,
		Walk:       d.Walk / total,
		HitByPitch: d.HitByPitch / total,
		Single:     d.Single / total,
		Double:     d.Double / total,
		Triple:     d.Triple / total,
		HomeRun:    d.HomeRun / total,
		Out:        d.Out / total,
	}
}

// Sample draws one outcome for batter against pitcher. Every draw comes from
// rng, in a fixed order, so a seeded rng replays the same plate appearance.
func (e *Engine) Sample(rng *rand.Rand, batter, pitcher *model.PlayerProfile, f model.Fatigue, sit model.Situation, adj Adjustments) (model.Outcome, error) {
	if rng == nil {
		return model.Outcome{}, ErrNilRNG
	}
	d, err := e.distribution(rng, batter, pitcher, f, adj)
	if err != nil {
		return model.Outcome{}, err
	}

	o := model.Outcome{Kind: d.pick(rng.Float64()), BatterID: batter.ID, PitcherID: pitcher.ID}
	switch o.Kind {
	case model.InPlayOut:
		e.resolveOut(rng, &o, sit, batter)
	case model.Single:
		if sit.Bases[model.SecondBase] {
			chance := e.advance.SecondScores
			if sit.Outs == 2 {
				chance = e.advance.SecondScores2Out
			}
			o.Advance.SecondScores = rng.Float64() < chance
		}
		if sit.Bases[model.FirstBase] {
			o.Advance.FirstToThird = rng.Float64() < e.advance.FirstToThird
		}
	case model.Double:
		if sit.Bases[model.FirstBase] {
			o.Advance.FirstScores = rng.Float64() < e.advance.FirstScores
		}
	}
	o.Pitches = e.pitches(rng, o.Kind)
	return o, nil
}

// resolveOut picks the batted-ball type of an in-play out and turns it into a
// double play, sacrifice fly or productive out when the bases allow.
func (e *Engine) resolveOut(rng *rand.Rand, o *model.Outcome, sit model.Situation, batter *model.PlayerProfile) {
	a := e.advance
	o.BattedBall = pickBattedBall(rng.Float64(), a)
	if sit.Outs >= 2 {
		return
	}
	runners := sit.Bases[model.FirstBase] || sit.Bases[model.SecondBase] || sit.Bases[model.ThirdBase]
	switch o.BattedBall {
	case model.GroundBall:
		if sit.Bases[model.FirstBase] && rng.Float64() < doublePlayChance(a.DoublePlay, batter.RunnerSpeed()) {
			o.Kind = model.DoublePlay
			return
		}
		if runners {
			o.Advance.Productive = rng.Float64() < a.ProductiveOut
		}
	case model.FlyBall:
		if sit.Bases[model.ThirdBase] && rng.Float64() < a.SacrificeFly {
			o.Kind = model.SacrificeFly
		}
	}
}

func pickBattedBall(u float64, a Advancement) model.BattedBall {
	total := a.GroundBall + a.FlyBall + a.LineDrive + a.PopUp
	if total <= 0 {
		return model.GroundBall
	}
	u *= total
	switch {
	case u < a.GroundBall:
		return model.GroundBall
	case u < a.GroundBall+a.FlyBall:
		return model.FlyBall
	case u < a.GroundBall+a.FlyBall+a.LineDrive:
		return model.LineDrive
	default:
		return model.PopUp
	}
}

// doublePlayChance scales the base rate by batter speed.
func doublePlayChance(base, speed float64) float64 {
	switch {
	case speed > 65:
		return base * 0.85
	case speed < 40:
		return math.Min(1, base*1.15)
	default:
		return base
	}
}

func (e *Engine) pitches(rng *rand.Rand, kind model.OutcomeKind) int {
	pm, ok := pitchModels[kind]
	if !ok {
		pm = contactPitches
	}
	extra := distuv.Poisson{Lambda: pm.lambda, Src: rng}.Rand()
	return pm.min + int(extra)
}
