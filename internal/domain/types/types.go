// Package types contains the wire types used to submit matchups and report
// slate jobs.
package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/okian/inningsim/internal/domain/model"
)

// ErrDecode is returned for bodies that are not a valid slate request.
var ErrDecode = errors.New("invalid slate request")

// defaultTemperatureF applies when weather omits the temperature.
const defaultTemperatureF = 70

// Rates is the JSON form of per-PA event rates. Every rate except
// hit_by_pitch is required; a missing one is rejected rather than read as 0.
type Rates struct {
	Strikeout  *float64 `json:"strikeout"`
	Walk       *float64 `json:"walk"`
	HitByPitch float64  `json:"hit_by_pitch,omitempty"`
	Single     *float64 `json:"single"`
	Double     *float64 `json:"double"`
	Triple     *float64 `json:"triple"`
	HomeRun    *float64 `json:"home_run"`
}

// Rate returns a pointer to v for building Rates in code.
func Rate(v float64) *float64 { return &v }

func (r *Rates) model(playerID, block string) (*model.Rates, error) {
	if r == nil {
		return nil, nil
	}
	required := []struct {
		name string
		v    *float64
	}{
		{"strikeout", r.Strikeout},
		{"walk", r.Walk},
		{"single", r.Single},
		{"double", r.Double},
		{"triple", r.Triple},
		{"home_run", r.HomeRun},
	}
	for _, f := range required {
		if f.v == nil {
			return nil, &model.DataIncompleteError{PlayerID: playerID, Field: block + "." + f.name, Reason: "rate is required"}
		}
	}
	return &model.Rates{
		Strikeout:  *r.Strikeout,
		Walk:       *r.Walk,
		HitByPitch: r.HitByPitch,
		Single:     *r.Single,
		Double:     *r.Double,
		Triple:     *r.Triple,
		HomeRun:    *r.HomeRun,
	}, nil
}

// Player is one player profile.
type Player struct {
	ID       string  `json:"id"`
	Name     string  `json:"name,omitempty"`
	Team     string  `json:"team,omitempty"`
	Role     string  `json:"role,omitempty"`
	Bats     string  `json:"bats,omitempty"`
	Throws   string  `json:"throws,omitempty"`
	Speed    float64 `json:"speed,omitempty"`
	Batting  *Rates  `json:"batting,omitempty"`
	Pitching *Rates  `json:"pitching,omitempty"`
}

// Reliever is one bullpen entry in declared order.
type Reliever struct {
	ID          string `json:"id"`
	Role        string `json:"role,omitempty"`
	RestDays    int    `json:"rest_days"`
	Unavailable bool   `json:"unavailable,omitempty"`
}

// Team is a lineup card and pitching staff.
type Team struct {
	Name            string     `json:"name"`
	Lineup          []string   `json:"lineup"`
	Starter         string     `json:"starter"`
	StarterRestDays int        `json:"starter_rest_days,omitempty"`
	Bullpen         []Reliever `json:"bullpen"`
	Emergency       string     `json:"emergency,omitempty"`
}

// Park holds park factors. Omitted factors are neutral.
type Park struct {
	Runs      float64 `json:"runs,omitempty"`
	HomeRun   float64 `json:"home_run,omitempty"`
	Single    float64 `json:"single,omitempty"`
	Double    float64 `json:"double,omitempty"`
	Triple    float64 `json:"triple,omitempty"`
	Strikeout float64 `json:"strikeout,omitempty"`
	Walk      float64 `json:"walk,omitempty"`
}

// Weather holds game-time conditions.
type Weather struct {
	TemperatureF  *float64 `json:"temperature_f,omitempty"`
	WindSpeedMPH  float64  `json:"wind_speed_mph,omitempty"`
	WindDirection string   `json:"wind_direction,omitempty"`
	AltitudeFt    float64  `json:"altitude_ft,omitempty"`
	Dome          bool     `json:"dome,omitempty"`
}

// Umpire holds plate umpire multipliers.
type Umpire struct {
	Strikeout float64 `json:"strikeout,omitempty"`
	Walk      float64 `json:"walk,omitempty"`
}

// Environment is the optional game context. A missing block is neutral.
type Environment struct {
	Park    *Park    `json:"park,omitempty"`
	Weather *Weather `json:"weather,omitempty"`
	Umpire  *Umpire  `json:"umpire,omitempty"`
}

// SlateRequest is the body of a slate submission.
type SlateRequest struct {
	RequestID    string       `json:"request_id,omitempty"`
	GameID       string       `json:"game_id"`
	Away         Team         `json:"away"`
	Home         Team         `json:"home"`
	Players      []Player     `json:"players"`
	Environment  *Environment `json:"environment,omitempty"`
	Replications int          `json:"replications,omitempty"`
	Seed         uint64       `json:"seed,omitempty"`
}

// Decode reads one slate request, rejecting unknown fields.
func Decode(r io.Reader) (*SlateRequest, error) {
	var req SlateRequest
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return &req, nil
}

// Matchup converts the request into a model matchup. Player identities and
// handedness are checked here along with the presence of required rates;
// rate values are validated when the game is built.
func (r *SlateRequest) Matchup() (*model.Matchup, error) {
	if strings.TrimSpace(r.GameID) == "" {
		return nil, model.NewConfigurationError("game_id is required")
	}
	if r.Replications < 0 {
		return nil, model.NewConfigurationError("replications must not be negative")
	}
	players := make(map[string]*model.PlayerProfile, len(r.Players))
	for i := range r.Players {
		p, err := r.Players[i].profile()
		if err != nil {
			return nil, err
		}
		if _, dup := players[p.ID]; dup {
			return nil, model.NewConfigurationError("player %q listed twice", p.ID)
		}
		players[p.ID] = p
	}
	env, err := r.Environment.model()
	if err != nil {
		return nil, err
	}
	return &model.Matchup{
		GameID:      r.GameID,
		Away:        r.Away.sheet(),
		Home:        r.Home.sheet(),
		Players:     players,
		Environment: env,
	}, nil
}

func (p *Player) profile() (*model.PlayerProfile, error) {
	id := strings.TrimSpace(p.ID)
	if id == "" {
		return nil, model.NewConfigurationError("player without id")
	}
	bats, err := hand(id, "bats", p.Bats, true)
	if err != nil {
		return nil, err
	}
	throws, err := hand(id, "throws", p.Throws, false)
	if err != nil {
		return nil, err
	}
	batting, err := p.Batting.model(id, "batting")
	if err != nil {
		return nil, err
	}
	pitching, err := p.Pitching.model(id, "pitching")
	if err != nil {
		return nil, err
	}
	return &model.PlayerProfile{
		ID:       id,
		Name:     p.Name,
		Team:     p.Team,
		Role:     model.Role(p.Role),
		Bats:     bats,
		Throws:   throws,
		Speed:    p.Speed,
		Batting:  batting,
		Pitching: pitching,
	}, nil
}

func hand(id, field, v string, switchOK bool) (model.Hand, error) {
	h := model.Hand(strings.ToUpper(strings.TrimSpace(v)))
	switch h {
	case "", model.HandLeft, model.HandRight:
		return h, nil
	case model.HandSwitch:
		if switchOK {
			return h, nil
		}
	}
	return "", &model.DataIncompleteError{PlayerID: id, Field: field, Reason: fmt.Sprintf("unknown hand %q", v)}
}

func (t *Team) sheet() model.TeamSheet {
	s := model.TeamSheet{
		Name:            t.Name,
		Lineup:          append([]string(nil), t.Lineup...),
		Starter:         t.Starter,
		StarterRestDays: t.StarterRestDays,
		Bullpen:         model.Bullpen{Emergency: t.Emergency},
	}
	for _, r := range t.Bullpen {
		s.Bullpen.Relievers = append(s.Bullpen.Relievers, model.RelieverSlot{
			PlayerID:    r.ID,
			Role:        model.PitcherRole(strings.ToLower(r.Role)),
			RestDays:    r.RestDays,
			Unavailable: r.Unavailable,
		})
	}
	return s
}

func (e *Environment) model() (model.EnvironmentContext, error) {
	env := model.NeutralEnvironment()
	if e == nil {
		return env, nil
	}
	if p := e.Park; p != nil {
		env.Park = model.ParkFactors{
			Runs:      p.Runs,
			HomeRun:   p.HomeRun,
			Single:    p.Single,
			Double:    p.Double,
			Triple:    p.Triple,
			Strikeout: p.Strikeout,
			Walk:      p.Walk,
		}
	}
	if u := e.Umpire; u != nil {
		env.Umpire = model.Umpire{Strikeout: u.Strikeout, Walk: u.Walk}
	}
	if w := e.Weather; w != nil {
		dir := model.WindDirection(strings.ToLower(w.WindDirection))
		switch dir {
		case "":
			dir = model.WindNone
		case model.WindNone, model.WindIn, model.WindOut, model.WindOutToLeft, model.WindOutToRight, model.WindCross:
		default:
			return env, model.NewConfigurationError("unknown wind direction %q", w.WindDirection)
		}
		if w.WindSpeedMPH < 0 {
			return env, model.NewConfigurationError("wind speed must not be negative")
		}
		temp := float64(defaultTemperatureF)
		if w.TemperatureF != nil {
			temp = *w.TemperatureF
		}
		env.Weather = model.Weather{
			TemperatureF:  temp,
			WindSpeedMPH:  w.WindSpeedMPH,
			WindDirection: dir,
			AltitudeFt:    w.AltitudeFt,
			Dome:          w.Dome,
		}
	}
	return env, nil
}

// Job statuses reported by the service.
const (
	StatusQueued  = "queued"
	StatusRunning = "running"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

// SubmitResponse acknowledges a slate submission.
type SubmitResponse struct {
	JobID     string `json:"job_id"`
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// JobResponse reports a slate job and, once done, its result and prices.
type JobResponse struct {
	JobID    string         `json:"job_id"`
	GameID   string         `json:"game_id"`
	Status   string         `json:"status"`
	Error    string         `json:"error,omitempty"`
	Result   map[string]any `json:"result,omitempty"`
	Markets  map[string]any `json:"markets,omitempty"`
	Attempts int            `json:"attempts,omitempty"`
}
