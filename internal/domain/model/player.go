// Package model contains domain models passed between the simulation layers.
package model

import (
	"math"
)

// Hand is a batting side or throwing arm.
type Hand string

// Handedness values. Switch applies to batters only.
const (
	HandLeft   Hand = "L"
	HandRight  Hand = "R"
	HandSwitch Hand = "S"
)

// Role classifies what a player profile is used for.
type Role string

// Player roles.
const (
	RoleBatter  Role = "batter"
	RolePitcher Role = "pitcher"
	RoleTwoWay  Role = "two_way"
)

// DefaultSpeed is the neutral value on the 20-80 scouting scale.
const DefaultSpeed = 50

// Rates holds per-plate-appearance event probabilities. For batters they are
// rates produced, for pitchers rates allowed. Outs are the remainder.
type Rates struct {
	Strikeout  float64
	Walk       float64
	HitByPitch float64
	Single     float64
	Double     float64
	Triple     float64
	HomeRun    float64
}

// Sum returns the total non-out mass.
func (r Rates) Sum() float64 {
	return r.Strikeout + r.Walk + r.HitByPitch + r.Single + r.Double + r.Triple + r.HomeRun
}

// Validate checks every rate is a probability and that the events leave room
// for outs.
func (r Rates) Validate(playerID, group string) error {
	fields := []struct {
		name string
		v    float64
	}{
		{"strikeout", r.Strikeout},
		{"walk", r.Walk},
		{"hit_by_pitch", r.HitByPitch},
		{"single", r.Single},
		{"double", r.Double},
		{"triple", r.Triple},
		{"home_run", r.HomeRun},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || f.v < 0 || f.v > 1 {
			return &DataIncompleteError{PlayerID: playerID, Field: group + "." + f.name, Reason: "rate must be within [0, 1]"}
		}
	}
	if r.Sum() > 1 {
		return &DataIncompleteError{PlayerID: playerID, Field: group, Reason: "event rates sum above 1"}
	}
	return nil
}

// PlayerProfile is the immutable projection of one player for a game.
type PlayerProfile struct {
	ID     string
	Name   string
	Team   string
	Role   Role
	Bats   Hand
	Throws Hand
	// Speed is on the 20-80 scale; zero means unknown and reads as DefaultSpeed.
	Speed float64

	Batting  *Rates
	Pitching *Rates
}

// RunnerSpeed returns the speed grade, defaulting unknown values.
func (p *PlayerProfile) RunnerSpeed() float64 {
	if p.Speed <= 0 {
		return DefaultSpeed
	}
	return p.Speed
}

// RequireBatting returns the batting rates or a DataIncompleteError.
func (p *PlayerProfile) RequireBatting() (Rates, error) {
	if p == nil {
		return Rates{}, &DataIncompleteError{Field: "profile", Reason: "missing profile"}
	}
	if p.Batting == nil {
		return Rates{}, &DataIncompleteError{PlayerID: p.ID, Field: "batting"}
	}
	return *p.Batting, nil
}

// RequirePitching returns the pitching rates or a DataIncompleteError.
func (p *PlayerProfile) RequirePitching() (Rates, error) {
	if p == nil {
		return Rates{}, &DataIncompleteError{Field: "profile", Reason: "missing profile"}
	}
	if p.Pitching == nil {
		return Rates{}, &DataIncompleteError{PlayerID: p.ID, Field: "pitching"}
	}
	return *p.Pitching, nil
}

// BattingSide resolves the side a batter hits from against a given pitcher.
// Switch hitters take the opposite side of the pitcher's arm.
func (p *PlayerProfile) BattingSide(pitcherThrows Hand) Hand {
	if p.Bats != HandSwitch {
		return p.Bats
	}
	if pitcherThrows == HandLeft {
		return HandRight
	}
	return HandLeft
}
