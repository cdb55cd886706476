package bullpen_test

import (
	"errors"
	"testing"

	"github.com/okian/inningsim/internal/domain/bullpen"
	"github.com/okian/inningsim/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func arm(id string) *model.PlayerProfile {
	return &model.PlayerProfile{ID: id, Role: model.RolePitcher, Throws: model.HandRight,
		Pitching: &model.Rates{Strikeout: 0.22, Walk: 0.08, Single: 0.14, Double: 0.045, Triple: 0.004, HomeRun: 0.03}}
}

func roster(relievers ...model.Reliever) *model.Roster {
	return &model.Roster{Team: "HOM", Starter: arm("sp"), Relievers: relievers}
}

func reliever(id string, role model.PitcherRole, rest int) model.Reliever {
	return model.Reliever{Profile: arm(id), Role: role, RestDays: rest}
}

// face records n batters at perPA pitches each for whoever is pitching.
func face(m *bullpen.Manager, n, perPA int) {
	for i := 0; i < n; i++ {
		So(m.RecordUsage(m.Current().ID, perPA, 1), ShouldBeNil)
	}
}

func early() model.Situation { return model.Situation{Inning: 3, Half: model.Top} }

func TestStarterTriggers(t *testing.T) {
	Convey("Given a starter and a rested bullpen", t, func() {
		m, err := bullpen.NewManager(roster(
			reliever("long", model.RoleLongRelief, 3),
			reliever("mid", model.RoleMiddleRelief, 3),
		), bullpen.DefaultPolicy(), 9)
		So(err, ShouldBeNil)

		Convey("The starter keeps pitching under the thresholds", func() {
			face(m, 10, 4)
			p, err := m.SelectPitcher(early())
			So(err, ShouldBeNil)
			So(p.ID, ShouldEqual, "sp")
			So(m.Changes(), ShouldEqual, 0)
			So(m.Fatigue().TimesThrough, ShouldEqual, 2)
		})

		Convey("Reaching the pitch count ceiling brings in a reliever", func() {
			face(m, 20, 5)
			p, err := m.SelectPitcher(early())
			So(err, ShouldBeNil)
			So(p.ID, ShouldEqual, "long")
			So(m.Changes(), ShouldEqual, 1)
			So(m.Used(), ShouldResemble, []string{"sp", "long"})
			So(m.Fatigue().PitchCount, ShouldEqual, 0)
			So(m.ChangeTriggers(), ShouldResemble, map[string]int{bullpen.TriggerPitchCount: 1})
		})

		Convey("A fourth time through the order brings in a reliever", func() {
			face(m, 27, 3)
			p, err := m.SelectPitcher(early())
			So(err, ShouldBeNil)
			So(p.ID, ShouldNotEqual, "sp")
			So(m.ChangeTriggers()[bullpen.TriggerTimesThrough], ShouldEqual, 1)
		})

		Convey("Usage for a pitcher not on the mound is rejected", func() {
			err := m.RecordUsage("mid", 3, 1)
			So(errors.Is(err, bullpen.ErrNotOnMound), ShouldBeTrue)
			So(errors.Is(m.RecordUsage("sp", -1, 1), bullpen.ErrNegativeUsage), ShouldBeTrue)
		})
	})
}

func TestRelieverSelection(t *testing.T) {
	Convey("Given relievers with different rest and roles", t, func() {
		policy := bullpen.DefaultPolicy()

		Convey("The most rested reliever is preferred", func() {
			m, _ := bullpen.NewManager(roster(
				reliever("tired", model.RoleLongRelief, 1),
				reliever("fresh", model.RoleMiddleRelief, 3),
			), policy, 9)
			face(m, 20, 5)
			p, _ := m.SelectPitcher(early())
			So(p.ID, ShouldEqual, "fresh")
		})

		Convey("Rest beyond full rest ties and role fit decides", func() {
			m, _ := bullpen.NewManager(roster(
				reliever("mid", model.RoleMiddleRelief, 6),
				reliever("setup", model.RoleSetup, 3),
			), policy, 9)
			face(m, 20, 5)
			p, _ := m.SelectPitcher(model.Situation{Inning: 8, Lead: 0})
			So(p.ID, ShouldEqual, "setup")
		})

		Convey("Declared order breaks remaining ties", func() {
			m, _ := bullpen.NewManager(roster(
				reliever("first", model.RoleMiddleRelief, 3),
				reliever("second", model.RoleMiddleRelief, 3),
			), policy, 9)
			face(m, 20, 5)
			p, _ := m.SelectPitcher(early())
			So(p.ID, ShouldEqual, "first")
		})

		Convey("Unavailable and under-rested arms are skipped", func() {
			out := reliever("out", model.RoleLongRelief, 3)
			out.Unavailable = true
			m, _ := bullpen.NewManager(roster(out, reliever("zero", model.RoleLongRelief, 0), reliever("ok", model.RoleMiddleRelief, 1)), policy, 9)
			face(m, 20, 5)
			p, _ := m.SelectPitcher(early())
			So(p.ID, ShouldEqual, "ok")
		})

		Convey("The closer is held back in the middle innings", func() {
			m, _ := bullpen.NewManager(roster(
				reliever("closer", model.RoleCloser, 3),
				reliever("long", model.RoleLongRelief, 1),
			), policy, 9)
			face(m, 20, 5)
			p, _ := m.SelectPitcher(model.Situation{Inning: 5, Lead: 4})
			So(p.ID, ShouldEqual, "long")
		})

		Convey("The closer is used when nobody else remains", func() {
			m, _ := bullpen.NewManager(roster(reliever("closer", model.RoleCloser, 3)), policy, 9)
			face(m, 20, 5)
			p, err := m.SelectPitcher(model.Situation{Inning: 5, Lead: 4})
			So(err, ShouldBeNil)
			So(p.ID, ShouldEqual, "closer")
			So(m.Changes(), ShouldEqual, 1)
			So(m.ChangeTriggers(), ShouldResemble, map[string]int{bullpen.TriggerLeverage: 1})
		})
	})
}

func TestLeverage(t *testing.T) {
	Convey("Given a save situation in the ninth", t, func() {
		m, _ := bullpen.NewManager(roster(
			reliever("mid", model.RoleMiddleRelief, 3),
			reliever("closer", model.RoleCloser, 2),
		), bullpen.DefaultPolicy(), 9)
		face(m, 24, 3)

		Convey("The closer starts the inning", func() {
			p, err := m.SelectPitcher(model.Situation{Inning: 9, Half: model.Top, Lead: 2, LeadOff: true})
			So(err, ShouldBeNil)
			So(p.ID, ShouldEqual, "closer")
		})

		Convey("Nothing changes mid-inning or outside a save", func() {
			p, _ := m.SelectPitcher(model.Situation{Inning: 9, Lead: 2, Outs: 1})
			So(p.ID, ShouldEqual, "sp")
			p, _ = m.SelectPitcher(model.Situation{Inning: 9, Lead: 5, LeadOff: true})
			So(p.ID, ShouldEqual, "sp")
			So(m.ChangeTriggers(), ShouldBeEmpty)
		})
	})
}

func TestExhaustion(t *testing.T) {
	Convey("Given a bullpen with a single eligible reliever", t, func() {
		one := func(policy bullpen.FallbackPolicy, emergency bool) *bullpen.Manager {
			p := bullpen.DefaultPolicy()
			p.Fallback = policy
			r := roster(reliever("only", model.RoleMiddleRelief, 3))
			if emergency {
				r.Emergency = arm("mop")
			}
			m, err := bullpen.NewManager(r, p, 9)
			So(err, ShouldBeNil)
			face(m, 20, 5)
			got, err := m.SelectPitcher(early())
			So(err, ShouldBeNil)
			So(got.ID, ShouldEqual, "only")
			face(m, 2, 15)
			return m
		}

		Convey("The error policy raises BullpenExhaustedError on the second trigger", func() {
			m := one(bullpen.FallbackError, false)
			_, err := m.SelectPitcher(early())
			So(errors.Is(err, model.ErrBullpenExhausted), ShouldBeTrue)
			var be *model.BullpenExhaustedError
			So(errors.As(err, &be), ShouldBeTrue)
			So(be.Trigger, ShouldEqual, bullpen.TriggerReliever)
			So(be.Team, ShouldEqual, "HOM")
		})

		Convey("The emergency policy brings in the emergency arm once", func() {
			m := one(bullpen.FallbackEmergency, true)
			p, err := m.SelectPitcher(early())
			So(err, ShouldBeNil)
			So(p.ID, ShouldEqual, "mop")
			So(m.Fallbacks(), ShouldHaveLength, 1)
			So(m.Fallbacks()[0].Policy, ShouldEqual, "emergency")

			face(m, 9, 3)
			_, err = m.SelectPitcher(early())
			So(errors.Is(err, model.ErrBullpenExhausted), ShouldBeTrue)
		})

		Convey("The emergency policy without an emergency arm errors", func() {
			m := one(bullpen.FallbackEmergency, false)
			_, err := m.SelectPitcher(early())
			So(errors.Is(err, model.ErrBullpenExhausted), ShouldBeTrue)
		})

		Convey("The stay-in policy keeps the pitcher and records it once", func() {
			m := one(bullpen.FallbackStayIn, false)
			for i := 0; i < 3; i++ {
				p, err := m.SelectPitcher(early())
				So(err, ShouldBeNil)
				So(p.ID, ShouldEqual, "only")
				face(m, 1, 4)
			}
			So(m.Fallbacks(), ShouldHaveLength, 1)
			So(m.Fallbacks()[0].PitcherID, ShouldEqual, "only")
		})
	})
}

func TestCloneAndPolicy(t *testing.T) {
	Convey("Clones do not share state", t, func() {
		m, _ := bullpen.NewManager(roster(reliever("r1", model.RoleLongRelief, 3)), bullpen.DefaultPolicy(), 9)
		c := m.Clone()
		face(c, 20, 5)
		p, _ := c.SelectPitcher(early())
		So(p.ID, ShouldEqual, "r1")
		So(m.Current().ID, ShouldEqual, "sp")
		So(m.Fatigue().PitchCount, ShouldEqual, 0)
		So(m.Used(), ShouldHaveLength, 1)
		So(c.ChangeTriggers(), ShouldHaveLength, 1)
		So(m.ChangeTriggers(), ShouldBeEmpty)

		again := m.Clone()
		face(again, 20, 5)
		p, _ = again.SelectPitcher(early())
		So(p.ID, ShouldEqual, "r1")
	})

	Convey("Policies are validated", t, func() {
		p := bullpen.DefaultPolicy()
		So(p.Validate(), ShouldBeNil)
		p.Fallback = "panic"
		So(errors.Is(p.Validate(), model.ErrConfiguration), ShouldBeTrue)
		_, err := bullpen.NewManager(roster(), p, 9)
		So(errors.Is(err, model.ErrConfiguration), ShouldBeTrue)
		_, err = bullpen.NewManager(&model.Roster{}, bullpen.DefaultPolicy(), 9)
		So(errors.Is(err, model.ErrConfiguration), ShouldBeTrue)
	})

	Convey("Desired roles follow the situation", t, func() {
		p := bullpen.DefaultPolicy()
		So(p.DesiredRole(model.Situation{Inning: 9, Lead: 1}), ShouldEqual, model.RoleCloser)
		So(p.DesiredRole(model.Situation{Inning: 8, Lead: -1}), ShouldEqual, model.RoleSetup)
		So(p.DesiredRole(model.Situation{Inning: 6, Lead: 0}), ShouldEqual, model.RoleMiddleRelief)
		So(p.DesiredRole(model.Situation{Inning: 7, Lead: 6}), ShouldEqual, model.RoleLongRelief)
	})
}
