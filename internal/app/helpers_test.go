package service_test

import (
	"fmt"

	"github.com/okian/inningsim/internal/domain/model"
	"github.com/okian/inningsim/internal/domain/types"
)

var league = types.Rates{
	Strikeout:  types.Rate(0.224),
	Walk:       types.Rate(0.085),
	HitByPitch: 0.011,
	Single:     types.Rate(0.142),
	Double:     types.Rate(0.045),
	Triple:     types.Rate(0.004),
	HomeRun:    types.Rate(0.031),
}

func team(prefix string, players *[]types.Player) types.Team {
	t := types.Team{Name: prefix, Starter: prefix + "-sp"}
	for i := 1; i <= 9; i++ {
		id := fmt.Sprintf("%s-b%d", prefix, i)
		r := league
		*players = append(*players, types.Player{ID: id, Bats: "R", Batting: &r})
		t.Lineup = append(t.Lineup, id)
	}
	pitchers := []string{t.Starter}
	for i, role := range []string{"middle", "middle", "setup", "closer"} {
		id := fmt.Sprintf("%s-rp%d", prefix, i+1)
		pitchers = append(pitchers, id)
		t.Bullpen = append(t.Bullpen, types.Reliever{ID: id, Role: role, RestDays: 2})
	}
	for _, id := range pitchers {
		r := league
		*players = append(*players, types.Player{ID: id, Throws: "L", Pitching: &r})
	}
	return t
}

func slateRequest(requestID string, replications int) types.SlateRequest {
	var players []types.Player
	away := team("NYA", &players)
	home := team("BOS", &players)
	return types.SlateRequest{
		RequestID:    requestID,
		GameID:       "NYA@BOS",
		Away:         away,
		Home:         home,
		Players:      players,
		Replications: replications,
		Seed:         11,
	}
}

func matchup(replications int) *model.Matchup {
	req := slateRequest("", replications)
	m, err := req.Matchup()
	if err != nil {
		panic(err)
	}
	return m
}
