package game_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/okian/inningsim/internal/domain/bullpen"
	"github.com/okian/inningsim/internal/domain/game"
	"github.com/okian/inningsim/internal/domain/model"
	pa "github.com/okian/inningsim/internal/domain/plateappearance"
	. "github.com/smartystreets/goconvey/convey"
)

type ratesFn func(i int) model.Rates

func league(int) model.Rates { return pa.DefaultLeague }

func strikeouts(int) model.Rates { return model.Rates{Strikeout: 1} }

// leadoffHomers has the first batter homer and everyone else strike out.
func leadoffHomers(i int) model.Rates {
	if i == 0 {
		return model.Rates{HomeRun: 1}
	}
	return model.Rates{Strikeout: 1}
}

func sheet(prefix string, batting ratesFn, players map[string]*model.PlayerProfile) model.TeamSheet {
	s := model.TeamSheet{Name: prefix, Starter: prefix + "-sp"}
	for i := 0; i < 9; i++ {
		id := fmt.Sprintf("%s-b%d", prefix, i+1)
		r := batting(i)
		players[id] = &model.PlayerProfile{ID: id, Bats: model.HandRight, Batting: &r}
		s.Lineup = append(s.Lineup, id)
	}
	pitchers := []string{prefix + "-sp"}
	for i := 0; i < 7; i++ {
		id := fmt.Sprintf("%s-rp%d", prefix, i+1)
		pitchers = append(pitchers, id)
		role := model.RoleMiddleRelief
		if i == 6 {
			role = model.RoleCloser
		}
		s.Bullpen.Relievers = append(s.Bullpen.Relievers, model.RelieverSlot{PlayerID: id, Role: role, RestDays: 2})
	}
	for _, id := range pitchers {
		r := pa.DefaultLeague
		players[id] = &model.PlayerProfile{ID: id, Throws: model.HandRight, Pitching: &r}
	}
	return s
}

func matchup(away, home ratesFn) *model.Matchup {
	players := map[string]*model.PlayerProfile{}
	return &model.Matchup{
		GameID:      "AWY@HOM",
		Away:        sheet("AWY", away, players),
		Home:        sheet("HOM", home, players),
		Players:     players,
		Environment: model.NeutralEnvironment(),
	}
}

func stayIn() game.Option {
	p := bullpen.DefaultPolicy()
	p.Fallback = bullpen.FallbackStayIn
	return game.WithPolicy(p)
}

func play(sim *game.Simulator, seed uint64) (model.GameResult, error) {
	return sim.Play(context.Background(), rand.New(rand.NewPCG(seed, 0)))
}

func TestGameEndings(t *testing.T) {
	Convey("Given scripted lineups", t, func() {
		Convey("A home team leading after the top of the ninth does not bat", func() {
			sim, err := game.New(matchup(strikeouts, leadoffHomers))
			So(err, ShouldBeNil)
			res, err := play(sim, 1)
			So(err, ShouldBeNil)
			So(res.InningsPlayed, ShouldEqual, 9)
			So(res.Innings[8].HomeBatted, ShouldBeFalse)
			So(res.Innings[7].HomeBatted, ShouldBeTrue)
			So(res.Winner, ShouldEqual, model.WinnerHome)
			So(res.WalkOff, ShouldBeFalse)
			So(res.Score[model.Away], ShouldEqual, 0)
		})

		Convey("A home team trailing after the top of the ninth bats", func() {
			sim, err := game.New(matchup(leadoffHomers, strikeouts))
			So(err, ShouldBeNil)
			res, err := play(sim, 1)
			So(err, ShouldBeNil)
			So(res.InningsPlayed, ShouldEqual, 9)
			So(res.Innings[8].HomeBatted, ShouldBeTrue)
			So(res.Winner, ShouldEqual, model.WinnerAway)
		})

		Convey("A home team taking the lead in its last half wins on a walk-off", func() {
			sim, err := game.New(matchup(strikeouts, leadoffHomers), game.WithRegulationInnings(1))
			So(err, ShouldBeNil)
			res, err := play(sim, 1)
			So(err, ShouldBeNil)
			So(res.WalkOff, ShouldBeTrue)
			So(res.Winner, ShouldEqual, model.WinnerHome)
			So(res.Score, ShouldResemble, [2]int{0, 1})
			So(res.Home.PlateAppearances, ShouldEqual, 1)
		})

		Convey("A game tied after nine goes to the tenth", func() {
			sim, err := game.New(matchup(strikeouts, strikeouts), game.WithExtraInningCap(1))
			So(err, ShouldBeNil)
			res, err := play(sim, 1)
			So(err, ShouldBeNil)
			So(res.InningsPlayed, ShouldEqual, 10)
			So(res.ExtraInnings, ShouldBeTrue)
			So(res.Winner, ShouldEqual, model.WinnerTie)
			So(res.Away.Strikeouts, ShouldEqual, 30)
		})

		Convey("An uncapped game that cannot be decided fails recoverably", func() {
			sim, err := game.New(matchup(strikeouts, strikeouts))
			So(err, ShouldBeNil)
			_, err = play(sim, 1)
			So(err, ShouldNotBeNil)
			So(model.Recoverable(err), ShouldBeTrue)
		})
	})
}

func TestGameProperties(t *testing.T) {
	Convey("Given league-average teams", t, func() {
		sim, err := game.New(matchup(league, league), stayIn(), game.WithEvents(true))
		So(err, ShouldBeNil)

		Convey("Every game is decided consistently", func() {
			skipped, walkOffs := 0, 0
			for seed := uint64(0); seed < 300; seed++ {
				res, err := play(sim, seed)
				So(err, ShouldBeNil)
				So(res.InningsPlayed, ShouldBeGreaterThanOrEqualTo, 9)
				So(res.Winner, ShouldNotEqual, model.WinnerTie)

				away, home := res.SegmentRuns(res.InningsPlayed)
				So(away, ShouldEqual, res.Score[model.Away])
				So(home, ShouldEqual, res.Score[model.Home])
				So(res.Away.Runs, ShouldEqual, res.Score[model.Away])
				So(res.Home.Runs, ShouldEqual, res.Score[model.Home])
				So(res.Events, ShouldHaveLength, res.Away.PlateAppearances+res.Home.PlateAppearances)

				last := res.Innings[len(res.Innings)-1]
				if !last.HomeBatted {
					skipped++
					So(res.Winner, ShouldEqual, model.WinnerHome)
					So(res.WalkOff, ShouldBeFalse)
				}
				if res.WalkOff {
					walkOffs++
					So(res.Winner, ShouldEqual, model.WinnerHome)
					So(last.HomeBatted, ShouldBeTrue)
					So(res.Differential(), ShouldBeBetweenOrEqual, 1, 4)
				}
				So(res.Home.PitchersUsed[0], ShouldEqual, "HOM-sp")
				So(res.Home.PitchingChanges, ShouldEqual, len(res.Home.PitchersUsed)-1)
			}
			So(skipped, ShouldBeGreaterThan, 0)
			So(walkOffs, ShouldBeGreaterThan, 0)
		})

		Convey("The same seed replays the same game", func() {
			a, _ := play(sim, 99)
			b, _ := play(sim, 99)
			So(a, ShouldResemble, b)
		})

		Convey("A cancelled context stops before playing", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := sim.Play(ctx, rand.New(rand.NewPCG(1, 1)))
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

func TestNew(t *testing.T) {
	Convey("Given a matchup to validate", t, func() {
		m := matchup(league, league)

		Convey("An empty lineup is a configuration error even with missing players", func() {
			m.Home.Lineup = nil
			m.Players = nil
			_, err := game.New(m)
			So(errors.Is(err, model.ErrConfiguration), ShouldBeTrue)
		})

		Convey("A short lineup is a configuration error", func() {
			m.Away.Lineup = m.Away.Lineup[:5]
			_, err := game.New(m)
			So(errors.Is(err, model.ErrConfiguration), ShouldBeTrue)
		})

		Convey("A missing starter is a configuration error", func() {
			m.Away.Starter = ""
			_, err := game.New(m)
			So(errors.Is(err, model.ErrConfiguration), ShouldBeTrue)
		})

		Convey("Non-positive regulation innings are rejected", func() {
			_, err := game.New(m, game.WithRegulationInnings(0))
			So(errors.Is(err, model.ErrConfiguration), ShouldBeTrue)
		})

		Convey("An unknown player is a data error", func() {
			m.Home.Lineup[4] = "nobody"
			_, err := game.New(m)
			So(errors.Is(err, model.ErrDataIncomplete), ShouldBeTrue)
		})

		Convey("Game-level multipliers come from the environment once", func() {
			m.Environment = model.EnvironmentContext{Park: model.ParkFactors{HomeRun: 1.2}, Weather: model.Weather{Dome: true}}
			sim, err := game.New(m)
			So(err, ShouldBeNil)
			So(sim.Adjustments().HomeRun, ShouldAlmostEqual, 1.2, 1e-12)
		})
	})
}

func TestTeamRules(t *testing.T) {
	Convey("Given strikeout-only lineups and a one-inning extra cap", t, func() {
		m := matchup(strikeouts, strikeouts)

		Convey("Each staff follows its own bullpen policy", func() {
			loose := bullpen.DefaultPolicy()
			loose.MaxPitchCount, loose.MaxTimesThrough = 1000, 10
			tight := bullpen.DefaultPolicy()
			tight.MaxPitchCount, tight.RelieverMaxBatters = 1, 1
			tight.Fallback = bullpen.FallbackStayIn

			sim, err := game.New(m, game.WithExtraInningCap(1), game.WithTeamPolicies(&loose, &tight))
			So(err, ShouldBeNil)
			res, err := play(sim, 4)
			So(err, ShouldBeNil)
			So(res.Winner, ShouldEqual, model.WinnerTie)

			So(res.Away.PitchingChanges, ShouldEqual, 0)
			So(res.Away.ChangeTriggers, ShouldBeEmpty)
			So(res.Home.PitchingChanges, ShouldEqual, 7)
			So(res.Home.ChangeTriggers, ShouldResemble, map[string]int{
				bullpen.TriggerPitchCount: 1,
				bullpen.TriggerReliever:   6,
			})
			So(res.Home.Fallbacks, ShouldHaveLength, 1)
			So(res.Home.Fallbacks[0].Policy, ShouldEqual, string(bullpen.FallbackStayIn))
		})

		Convey("A nil team policy keeps the shared one", func() {
			tight := bullpen.DefaultPolicy()
			tight.MaxPitchCount = 0
			_, err := game.New(m, game.WithTeamPolicies(nil, &tight))
			So(errors.Is(err, model.ErrConfiguration), ShouldBeTrue)

			_, err = game.New(m, game.WithTeamPolicies(nil, nil))
			So(err, ShouldBeNil)
		})

		Convey("A lower minimum lineup accepts short lineups", func() {
			m.Away.Lineup = m.Away.Lineup[:5]
			_, err := game.New(m)
			So(errors.Is(err, model.ErrConfiguration), ShouldBeTrue)

			_, err = game.New(m, game.WithMinLineup(5))
			So(err, ShouldBeNil)
		})
	})
}
