package model

// Winner is the decided result of a game.
type Winner string

// Winners. Tie only happens when an extra-inning cap ends a game level.
const (
	WinnerAway Winner = "away"
	WinnerHome Winner = "home"
	WinnerTie  Winner = "tie"
)

// Integer keys for winner distributions.
const (
	WinnerKeyAway = -1
	WinnerKeyTie  = 0
	WinnerKeyHome = 1
)

// Key maps w onto its distribution key.
func (w Winner) Key() int {
	switch w {
	case WinnerAway:
		return WinnerKeyAway
	case WinnerHome:
		return WinnerKeyHome
	default:
		return WinnerKeyTie
	}
}

// InningLine is one row of the line score.
type InningLine struct {
	Inning int
	Away   int
	Home   int
	// HomeBatted is false when the bottom half was not needed.
	HomeBatted bool
}

// PlayEvent is one plate appearance in the optional event log.
type PlayEvent struct {
	Inning    int
	Half      Half
	BatterID  string
	PitcherID string
	Outcome   OutcomeKind
	Runs      int
	OutsAfter int
}

// Fallback records a pitching change that could not be served by the normal
// reliever selection.
type Fallback struct {
	Team      string
	Inning    int
	Trigger   string
	Policy    string
	PitcherID string
}

// SideSummary is the offensive recap of a side plus its own staff usage.
type SideSummary struct {
	Runs             int
	Hits             int
	Walks            int
	Strikeouts       int
	HomeRuns         int
	PlateAppearances int
	// Outcomes counts plate appearances by outcome kind label.
	Outcomes        map[string]int
	PitchersUsed    []string
	PitchingChanges int
	// ChangeTriggers counts the pitching changes by the trigger that fired.
	ChangeTriggers map[string]int
	Fallbacks      []Fallback
}

// Record adds one plate appearance to the recap.
func (s *SideSummary) Record(kind OutcomeKind, runs int) {
	if s.Outcomes == nil {
		s.Outcomes = make(map[string]int)
	}
	s.Outcomes[kind.String()]++
	s.PlateAppearances++
	s.Runs += runs
	switch {
	case kind.IsHit():
		s.Hits++
		if kind == HomeRun {
			s.HomeRuns++
		}
	case kind == Walk || kind == HitByPitch:
		s.Walks++
	case kind == Strikeout:
		s.Strikeouts++
	}
}

// GameResult is the outcome of one simulated game.
type GameResult struct {
	GameID        string
	Score         [2]int
	Innings       []InningLine
	Winner        Winner
	WalkOff       bool
	InningsPlayed int
	ExtraInnings  bool
	Away          SideSummary
	Home          SideSummary
	Events        []PlayEvent
}

// Side returns the summary of a side.
func (r *GameResult) Side(s Side) *SideSummary {
	if s == Home {
		return &r.Home
	}
	return &r.Away
}

// Total returns combined runs.
func (r *GameResult) Total() int { return r.Score[Away] + r.Score[Home] }

// Differential returns home minus away runs.
func (r *GameResult) Differential() int { return r.Score[Home] - r.Score[Away] }

// SegmentRuns returns the runs each side scored through the given inning.
func (r *GameResult) SegmentRuns(through int) (away, home int) {
	for _, l := range r.Innings {
		if l.Inning > through {
			break
		}
		away += l.Away
		home += l.Home
	}
	return away, home
}

// FirstInningScored reports whether either side scored in the first inning.
func (r *GameResult) FirstInningScored() bool {
	a, h := r.SegmentRuns(1)
	return a+h > 0
}

// ToMap returns the result as plain nested values ready for JSON encoding.
func (r *GameResult) ToMap() map[string]any {
	innings := make([]any, 0, len(r.Innings))
	for _, l := range r.Innings {
		row := map[string]any{"inning": l.Inning, "away": l.Away}
		if l.HomeBatted {
			row["home"] = l.Home
		} else {
			row["home"] = nil
		}
		innings = append(innings, row)
	}
	m := map[string]any{
		"game_id":        r.GameID,
		"score":          map[string]any{"away": r.Score[Away], "home": r.Score[Home]},
		"innings":        innings,
		"winner":         string(r.Winner),
		"walk_off":       r.WalkOff,
		"innings_played": r.InningsPlayed,
		"extra_innings":  r.ExtraInnings,
		"away":           r.Away.toMap(),
		"home":           r.Home.toMap(),
	}
	if len(r.Events) > 0 {
		events := make([]any, 0, len(r.Events))
		for _, e := range r.Events {
			events = append(events, map[string]any{
				"inning":     e.Inning,
				"half":       e.Half.String(),
				"batter_id":  e.BatterID,
				"pitcher_id": e.PitcherID,
				"outcome":    e.Outcome.String(),
				"runs":       e.Runs,
				"outs_after": e.OutsAfter,
			})
		}
		m["events"] = events
	}
	return m
}

func (s *SideSummary) toMap() map[string]any {
	outcomes := make(map[string]any, len(s.Outcomes))
	for k, v := range s.Outcomes {
		outcomes[k] = v
	}
	pitchers := make([]any, 0, len(s.PitchersUsed))
	for _, p := range s.PitchersUsed {
		pitchers = append(pitchers, p)
	}
	triggers := make(map[string]any, len(s.ChangeTriggers))
	for k, v := range s.ChangeTriggers {
		triggers[k] = v
	}
	fallbacks := make([]any, 0, len(s.Fallbacks))
	for _, f := range s.Fallbacks {
		fallbacks = append(fallbacks, map[string]any{
			"team":       f.Team,
			"inning":     f.Inning,
			"trigger":    f.Trigger,
			"policy":     f.Policy,
			"pitcher_id": f.PitcherID,
		})
	}
	return map[string]any{
		"runs":              s.Runs,
		"hits":              s.Hits,
		"walks":             s.Walks,
		"strikeouts":        s.Strikeouts,
		"home_runs":         s.HomeRuns,
		"plate_appearances": s.PlateAppearances,
		"outcomes":          outcomes,
		"pitchers_used":     pitchers,
		"pitching_changes":  s.PitchingChanges,
		"change_triggers":   triggers,
		"fallbacks":         fallbacks,
	}
}
