package model

// PitcherRole classifies how a pitcher is deployed.
type PitcherRole string

// Pitcher roles.
const (
	RoleStarter      PitcherRole = "starter"
	RoleLongRelief   PitcherRole = "long"
	RoleMiddleRelief PitcherRole = "middle"
	RoleSetup        PitcherRole = "setup"
	RoleCloser       PitcherRole = "closer"
)

// Valid reports whether r is a known role.
func (r PitcherRole) Valid() bool {
	switch r {
	case RoleStarter, RoleLongRelief, RoleMiddleRelief, RoleSetup, RoleCloser:
		return true
	}
	return false
}

// RelieverSlot is one declared bullpen entry.
type RelieverSlot struct {
	PlayerID    string
	Role        PitcherRole
	RestDays    int
	Unavailable bool
}

// Bullpen is the declared relief corps of a team for one game, in the order
// the team lists it, plus an optional emergency arm.
type Bullpen struct {
	Relievers []RelieverSlot
	Emergency string
}

// TeamSheet is one side's lineup and staff by player id.
type TeamSheet struct {
	Name            string
	Lineup          []string
	Starter         string
	StarterRestDays int
	Bullpen         Bullpen
}

// Matchup is a fully specified game: both sheets, the player pool they refer
// to and the environment.
type Matchup struct {
	GameID      string
	Away        TeamSheet
	Home        TeamSheet
	Players     map[string]*PlayerProfile
	Environment EnvironmentContext
}

// Sheet returns the team sheet for a side.
func (m *Matchup) Sheet(s Side) *TeamSheet {
	if s == Home {
		return &m.Home
	}
	return &m.Away
}

// Reliever is a resolved bullpen entry.
type Reliever struct {
	Profile     *PlayerProfile
	Role        PitcherRole
	RestDays    int
	Unavailable bool
}

// Roster is a team sheet with every id resolved to a validated profile.
type Roster struct {
	Team            string
	Lineup          []*PlayerProfile
	Starter         *PlayerProfile
	StarterRestDays int
	Relievers       []Reliever
	Emergency       *PlayerProfile
}

// CheckStructure reports setup problems that make the sheet unplayable
// regardless of player data.
func (t *TeamSheet) CheckStructure(side Side, minLineup int) error {
	if len(t.Lineup) == 0 {
		return NewConfigurationError("%s lineup is empty", side)
	}
	if len(t.Lineup) < minLineup {
		return NewConfigurationError("%s lineup has %d batters, need %d", side, len(t.Lineup), minLineup)
	}
	for i, id := range t.Lineup {
		if id == "" {
			return NewConfigurationError("%s lineup slot %d is blank", side, i+1)
		}
	}
	if t.Starter == "" {
		return NewConfigurationError("%s starting pitcher is missing", side)
	}
	seen := map[string]bool{t.Starter: true}
	for _, r := range t.Bullpen.Relievers {
		if r.PlayerID == "" {
			return NewConfigurationError("%s bullpen has a blank entry", side)
		}
		if seen[r.PlayerID] {
			return NewConfigurationError("%s pitcher %q listed twice", side, r.PlayerID)
		}
		if r.Role != "" && !r.Role.Valid() {
			return NewConfigurationError("%s reliever %q has unknown role %q", side, r.PlayerID, r.Role)
		}
		seen[r.PlayerID] = true
	}
	if e := t.Bullpen.Emergency; e != "" && seen[e] {
		return NewConfigurationError("%s emergency arm %q is already on the staff", side, e)
	}
	return nil
}

// Resolve looks every id up in players and validates the rates each use
// needs. Missing players or statistics fail with a DataIncompleteError.
func (t *TeamSheet) Resolve(players map[string]*PlayerProfile) (*Roster, error) {
	r := &Roster{Team: t.Name, StarterRestDays: t.StarterRestDays}
	for _, id := range t.Lineup {
		p, err := lookup(players, id)
		if err != nil {
			return nil, err
		}
		rates, err := p.RequireBatting()
		if err != nil {
			return nil, err
		}
		if err := rates.Validate(p.ID, "batting"); err != nil {
			return nil, err
		}
		r.Lineup = append(r.Lineup, p)
	}
	starter, err := resolvePitcher(players, t.Starter)
	if err != nil {
		return nil, err
	}
	r.Starter = starter
	for _, slot := range t.Bullpen.Relievers {
		p, err := resolvePitcher(players, slot.PlayerID)
		if err != nil {
			return nil, err
		}
		role := slot.Role
		if role == "" {
			role = RoleMiddleRelief
		}
		r.Relievers = append(r.Relievers, Reliever{Profile: p, Role: role, RestDays: slot.RestDays, Unavailable: slot.Unavailable})
	}
	if t.Bullpen.Emergency != "" {
		p, err := resolvePitcher(players, t.Bullpen.Emergency)
		if err != nil {
			return nil, err
		}
		r.Emergency = p
	}
	return r, nil
}

func lookup(players map[string]*PlayerProfile, id string) (*PlayerProfile, error) {
	p, ok := players[id]
	if !ok || p == nil {
		return nil, &DataIncompleteError{PlayerID: id, Field: "profile", Reason: "player not found"}
	}
	return p, nil
}

func resolvePitcher(players map[string]*PlayerProfile, id string) (*PlayerProfile, error) {
	p, err := lookup(players, id)
	if err != nil {
		return nil, err
	}
	rates, err := p.RequirePitching()
	if err != nil {
		return nil, err
	}
	if err := rates.Validate(p.ID, "pitching"); err != nil {
		return nil, err
	}
	return p, nil
}
