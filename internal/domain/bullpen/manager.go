// Package bullpen owns pitcher fatigue state and decides pitching changes.
package bullpen

import (
	"fmt"
	"maps"
	"sort"

	"github.com/okian/inningsim/internal/domain/model"
)

// PitcherState is the in-game workload of one pitcher.
type PitcherState struct {
	Profile      *model.PlayerProfile
	Role         model.PitcherRole
	RestDays     int
	Unavailable  bool
	PitchCount   int
	BattersFaced int
	Used         bool
	order        int
}

// TimesThrough is the pass through a lineup of size n the next batter starts.
func (s *PitcherState) TimesThrough(n int) int {
	if n <= 0 {
		return 1
	}
	return s.BattersFaced/n + 1
}

// Manager tracks one team's staff through a game. It is not safe for
// concurrent use; each replication works on its own Clone.
type Manager struct {
	team       string
	policy     Policy
	lineupSize int

	current       *PitcherState
	relievers     []*PitcherState
	emergency     *PitcherState
	emergencyUsed bool
	stayingIn     bool

	used      []string
	changes   int
	triggers  map[string]int
	fallbacks []model.Fallback
}

// NewManager builds a manager for roster facing a lineup of lineupSize.
func NewManager(roster *model.Roster, policy Policy, lineupSize int) (*Manager, error) {
	if roster == nil || roster.Starter == nil {
		return nil, model.NewConfigurationError("bullpen: roster has no starter")
	}
	if lineupSize <= 0 {
		return nil, model.NewConfigurationError("bullpen: lineup size must be positive")
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	m := &Manager{
		team:       roster.Team,
		policy:     policy,
		lineupSize: lineupSize,
		current: &PitcherState{
			Profile:  roster.Starter,
			Role:     model.RoleStarter,
			RestDays: roster.StarterRestDays,
			Used:     true,
		},
	}
	m.used = []string{roster.Starter.ID}
	for i, r := range roster.Relievers {
		m.relievers = append(m.relievers, &PitcherState{
			Profile:     r.Profile,
			Role:        r.Role,
			RestDays:    r.RestDays,
			Unavailable: r.Unavailable,
			order:       i,
		})
	}
	if roster.Emergency != nil {
		m.emergency = &PitcherState{Profile: roster.Emergency, Role: model.RoleLongRelief, order: len(m.relievers)}
	}
	return m, nil
}

// Clone returns an independent copy with the same state.
func (m *Manager) Clone() *Manager {
	c := *m
	copies := make(map[*PitcherState]*PitcherState, len(m.relievers)+2)
	cp := func(s *PitcherState) *PitcherState {
		if s == nil {
			return nil
		}
		if v, ok := copies[s]; ok {
			return v
		}
		v := *s
		copies[s] = &v
		return &v
	}
	c.current = cp(m.current)
	c.relievers = make([]*PitcherState, len(m.relievers))
	for i, r := range m.relievers {
		c.relievers[i] = cp(r)
	}
	c.emergency = cp(m.emergency)
	c.used = append([]string(nil), m.used...)
	c.triggers = maps.Clone(m.triggers)
	c.fallbacks = append([]model.Fallback(nil), m.fallbacks...)
	return &c
}

// Current returns the pitcher on the mound.
func (m *Manager) Current() *model.PlayerProfile { return m.current.Profile }

// SelectPitcher returns the pitcher who faces the next batter, making a
// change when a fatigue or leverage trigger fires.
func (m *Manager) SelectPitcher(sit model.Situation) (*model.PlayerProfile, error) {
	if m.stayingIn {
		return m.current.Profile, nil
	}
	if sit.LeadOff && m.current.Role != model.RoleCloser && m.current.BattersFaced > 0 &&
		sit.Inning >= m.policy.CloserInning && m.policy.SaveSituation(sit.Lead) {
		if closer := m.closer(); closer != nil {
			m.bringIn(closer, TriggerLeverage)
			return closer.Profile, nil
		}
	}

	trigger := m.trigger()
	if trigger == "" {
		return m.current.Profile, nil
	}
	if next := m.pick(m.policy.DesiredRole(sit)); next != nil {
		m.bringIn(next, trigger)
		return next.Profile, nil
	}
	return m.fallback(sit, trigger)
}

func (m *Manager) trigger() string {
	cur := m.current
	if cur.Role == model.RoleStarter {
		switch {
		case cur.PitchCount >= m.policy.MaxPitchCount:
			return TriggerPitchCount
		case cur.TimesThrough(m.lineupSize) > m.policy.MaxTimesThrough:
			return TriggerTimesThrough
		}
		return ""
	}
	if cur.BattersFaced >= 1 &&
		(cur.PitchCount >= m.policy.RelieverMaxPitches || cur.BattersFaced >= m.policy.RelieverMaxBatters) {
		return TriggerReliever
	}
	return ""
}

func (m *Manager) eligible(s *PitcherState) bool {
	return !s.Used && !s.Unavailable && s.RestDays >= m.policy.MinRestDays
}

func (m *Manager) closer() *PitcherState {
	for _, r := range m.relievers {
		if r.Role == model.RoleCloser && m.eligible(r) {
			return r
		}
	}
	return nil
}

// pick ranks eligible relievers by effective rest, then role fit, then
// declared order. Effective rest is capped at the policy's FullRestDays, so
// any arms at or beyond full rest tie and role fit decides between them.
// Closers are held for closer and setup spots unless nobody else is left.
func (m *Manager) pick(role model.PitcherRole) *PitcherState {
	var pool, closers []*PitcherState
	for _, r := range m.relievers {
		if !m.eligible(r) {
			continue
		}
		if r.Role == model.RoleCloser && role != model.RoleCloser && role != model.RoleSetup {
			closers = append(closers, r)
			continue
		}
		pool = append(pool, r)
	}
	if len(pool) == 0 {
		pool = closers
	}
	if len(pool) == 0 {
		return nil
	}
	sort.SliceStable(pool, func(i, j int) bool {
		a, b := pool[i], pool[j]
		if ra, rb := m.effectiveRest(a), m.effectiveRest(b); ra != rb {
			return ra > rb
		}
		if fa, fb := roleDistance(a.Role, role), roleDistance(b.Role, role); fa != fb {
			return fa < fb
		}
		return a.order < b.order
	})
	return pool[0]
}

func (m *Manager) effectiveRest(s *PitcherState) int {
	if s.RestDays > m.policy.FullRestDays {
		return m.policy.FullRestDays
	}
	return s.RestDays
}

var roleLadder = map[model.PitcherRole]int{
	model.RoleLongRelief:   0,
	model.RoleMiddleRelief: 1,
	model.RoleSetup:        2,
	model.RoleCloser:       3,
	model.RoleStarter:      0,
}

func roleDistance(have, want model.PitcherRole) int {
	d := roleLadder[have] - roleLadder[want]
	if d < 0 {
		return -d
	}
	return d
}

func (m *Manager) bringIn(s *PitcherState, trigger string) {
	s.Used = true
	m.current = s
	m.changes++
	if m.triggers == nil {
		m.triggers = make(map[string]int)
	}
	m.triggers[trigger]++
	m.used = append(m.used, s.Profile.ID)
}

func (m *Manager) fallback(sit model.Situation, trigger string) (*model.PlayerProfile, error) {
	rec := model.Fallback{Team: m.team, Inning: sit.Inning, Trigger: trigger, Policy: string(m.policy.Fallback)}
	switch m.policy.Fallback {
	case FallbackEmergency:
		if m.emergency != nil && !m.emergencyUsed {
			m.emergencyUsed = true
			m.bringIn(m.emergency, trigger)
			rec.PitcherID = m.emergency.Profile.ID
			m.fallbacks = append(m.fallbacks, rec)
			return m.emergency.Profile, nil
		}
	case FallbackStayIn:
		m.stayingIn = true
		rec.PitcherID = m.current.Profile.ID
		m.fallbacks = append(m.fallbacks, rec)
		return m.current.Profile, nil
	}
	return nil, &model.BullpenExhaustedError{Team: m.team, Inning: sit.Inning, Trigger: trigger}
}

// RecordUsage adds a plate appearance's workload to the pitcher on the mound.
func (m *Manager) RecordUsage(pitcherID string, pitches, batters int) error {
	if pitcherID != m.current.Profile.ID {
		return fmt.Errorf("%w: %q is not pitching for %s", ErrNotOnMound, pitcherID, m.team)
	}
	if pitches < 0 || batters < 0 {
		return fmt.Errorf("%w: pitches %d batters %d", ErrNegativeUsage, pitches, batters)
	}
	m.current.PitchCount += pitches
	m.current.BattersFaced += batters
	return nil
}

// Fatigue returns the current pitcher's workload for the next batter.
func (m *Manager) Fatigue() model.Fatigue {
	return model.Fatigue{
		PitchCount:   m.current.PitchCount,
		BattersFaced: m.current.BattersFaced,
		TimesThrough: m.current.TimesThrough(m.lineupSize),
	}
}

// Changes is the number of pitching changes made.
func (m *Manager) Changes() int { return m.changes }

// ChangeTriggers counts the pitching changes made per trigger.
func (m *Manager) ChangeTriggers() map[string]int {
	out := make(map[string]int, len(m.triggers))
	maps.Copy(out, m.triggers)
	return out
}

// Fallbacks returns the recorded fallbacks in order.
func (m *Manager) Fallbacks() []model.Fallback {
	return append([]model.Fallback(nil), m.fallbacks...)
}

// Used returns the ids of pitchers who appeared, starter first.
func (m *Manager) Used() []string {
	return append([]string(nil), m.used...)
}
