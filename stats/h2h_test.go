package stats

import (
	"math"
	"testing"

	"github.com/fifanights/cup-tracker/models"
)

func modeAll(mode models.TournamentMode) func(*models.Match) models.TournamentMode {
	return func(*models.Match) models.TournamentMode { return mode }
}

func TestParseH2HOrder(t *testing.T) {
	cases := map[string]H2HOrder{
		"":        OrderRivalry,
		"rivalry": OrderRivalry,
		"played":  OrderPlayed,
		"bogus":   OrderRivalry,
	}
	for raw, want := range cases {
		if got := ParseH2HOrder(raw); got != want {
			t.Errorf("ParseH2HOrder(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestHeadToHead_PairOrientationAndScores(t *testing.T) {
	// Bob (higher id) beats Alice twice, then they draw once. The pair is
	// oriented with Alice as A regardless of which side she played on.
	matches := []models.Match{
		match(1, models.MatchStateFinished, []models.Player{alice}, 0, []models.Player{bob}, 2),
		match(2, models.MatchStateFinished, []models.Player{bob}, 3, []models.Player{alice}, 1),
		match(3, models.MatchStateFinished, []models.Player{alice}, 1, []models.Player{bob}, 1),
	}

	view := HeadToHead(matches, modeAll(models.Mode1v1), HeadToHeadOptions{})
	if len(view.RivalriesAll) != 1 {
		t.Fatalf("rivalries_all = %d, want 1", len(view.RivalriesAll))
	}
	r := view.RivalriesAll[0]
	if r.A.ID != alice.ID || r.B.ID != bob.ID {
		t.Fatalf("pair = %d vs %d, want %d vs %d", r.A.ID, r.B.ID, alice.ID, bob.ID)
	}
	if r.Played != 3 || r.AWins != 0 || r.BWins != 2 || r.Draws != 1 {
		t.Errorf("record = %+v, want played 3, a_wins 0, b_wins 2, draws 1", r)
	}
	if r.AGoalsFor != 2 || r.AGoalsAgainst != 6 {
		t.Errorf("goals = %d:%d, want 2:6 from Alice's side", r.AGoalsFor, r.AGoalsAgainst)
	}
	if r.BGoalsFor != r.AGoalsAgainst || r.BGoalsAgainst != r.AGoalsFor {
		t.Errorf("B goals not mirrored: %+v", r)
	}
	// One-sided pair: win share 0, closeness 0, all score on dominance.
	if r.WinShareA != 0 {
		t.Errorf("win_share_a = %v, want 0", r.WinShareA)
	}
	if r.RivalryScore != 0 || r.DominanceScore != 3 {
		t.Errorf("scores = %v/%v, want 0/3", r.RivalryScore, r.DominanceScore)
	}
}

func TestHeadToHead_EvenPairScoresRivalry(t *testing.T) {
	matches := []models.Match{
		match(1, models.MatchStateFinished, []models.Player{alice}, 2, []models.Player{bob}, 0),
		match(2, models.MatchStateFinished, []models.Player{alice}, 0, []models.Player{bob}, 1),
	}

	view := HeadToHead(matches, modeAll(models.Mode1v1), HeadToHeadOptions{})
	r := view.RivalriesAll[0]
	if r.WinShareA != 0.5 {
		t.Errorf("win_share_a = %v, want 0.5", r.WinShareA)
	}
	if r.RivalryScore != 2 || r.DominanceScore != 0 {
		t.Errorf("scores = %v/%v, want 2/0", r.RivalryScore, r.DominanceScore)
	}
}

func TestHeadToHead_SkipsUnfinishedAndIncompleteMatches(t *testing.T) {
	noLineup := match(2, models.MatchStateFinished, nil, 1, []models.Player{bob}, 0)
	matches := []models.Match{
		match(1, models.MatchStateScheduled, []models.Player{alice}, 0, []models.Player{bob}, 0),
		noLineup,
	}

	view := HeadToHead(matches, modeAll(models.Mode1v1), HeadToHeadOptions{})
	if len(view.RivalriesAll) != 0 {
		t.Errorf("rivalries_all = %d, want 0", len(view.RivalriesAll))
	}
}

func TestHeadToHead_BucketsByMode(t *testing.T) {
	dave := player(4, "Dave")
	one := match(1, models.MatchStateFinished, []models.Player{alice}, 2, []models.Player{bob}, 0)
	two := match(2, models.MatchStateFinished, []models.Player{alice, bob}, 1, []models.Player{carol, dave}, 1)
	matches := []models.Match{one, two}

	modeOf := func(m *models.Match) models.TournamentMode {
		if m.ID == 1 {
			return models.Mode1v1
		}
		return models.Mode2v2
	}

	view := HeadToHead(matches, modeOf, HeadToHeadOptions{})
	if len(view.Rivalries1v1) != 1 {
		t.Fatalf("rivalries_1v1 = %d, want 1", len(view.Rivalries1v1))
	}
	// Cross product of a 2v2 match yields 4 opponent pairs plus the 1v1 pair.
	if len(view.RivalriesAll) != 5 {
		t.Errorf("rivalries_all = %d, want 5", len(view.RivalriesAll))
	}
	if len(view.Rivalries2v2) != 4 {
		t.Errorf("rivalries_2v2 = %d, want 4", len(view.Rivalries2v2))
	}
	if len(view.TeamRivalries2v2) != 1 {
		t.Errorf("team_rivalries_2v2 = %d, want 1", len(view.TeamRivalries2v2))
	}
	if len(view.BestTeammates2v2) != 2 {
		t.Errorf("best_teammates_2v2 = %d, want 2", len(view.BestTeammates2v2))
	}
}

func TestHeadToHead_DuoRecords(t *testing.T) {
	dave := player(4, "Dave")
	matches := []models.Match{
		match(1, models.MatchStateFinished, []models.Player{alice, bob}, 3, []models.Player{carol, dave}, 1),
		match(2, models.MatchStateFinished, []models.Player{carol, dave}, 2, []models.Player{alice, bob}, 2),
	}

	view := HeadToHead(matches, modeAll(models.Mode2v2), HeadToHeadOptions{})
	if len(view.BestTeammates2v2) != 2 {
		t.Fatalf("duos = %d, want 2", len(view.BestTeammates2v2))
	}
	top := view.BestTeammates2v2[0]
	if top.P1.ID != alice.ID || top.P2.ID != bob.ID {
		t.Fatalf("top duo = %d+%d, want Alice+Bob", top.P1.ID, top.P2.ID)
	}
	if top.Played != 2 || top.Wins != 1 || top.Draws != 1 || top.Losses != 0 {
		t.Errorf("duo record = %+v, want 2 played, 1 win, 1 draw", top)
	}
	if top.Points != 4 || math.Abs(top.PointsPerMatch-2.0) > 1e-9 {
		t.Errorf("duo points = %d ppm %v, want 4 and 2.0", top.Points, top.PointsPerMatch)
	}
	if top.GoalsFor != 5 || top.GoalsAgainst != 3 || top.GoalDiff != 2 {
		t.Errorf("duo goals = %d:%d, want 5:3", top.GoalsFor, top.GoalsAgainst)
	}
}

func TestHeadToHead_TeamRivalryOrientation(t *testing.T) {
	dave := player(4, "Dave")
	// Alice+Bob hold the smaller duo key, so they are team1 even though
	// they played side B and lost.
	matches := []models.Match{
		match(1, models.MatchStateFinished, []models.Player{carol, dave}, 2, []models.Player{alice, bob}, 0),
	}

	view := HeadToHead(matches, modeAll(models.Mode2v2), HeadToHeadOptions{})
	tr := view.TeamRivalries2v2[0]
	if tr.Team1[0].ID != alice.ID || tr.Team1[1].ID != bob.ID {
		t.Fatalf("team1 = %+v, want Alice+Bob", tr.Team1)
	}
	if tr.Team1Wins != 0 || tr.Team2Wins != 1 {
		t.Errorf("wins = %d:%d, want 0:1", tr.Team1Wins, tr.Team2Wins)
	}
	if tr.Team1GoalsFor != 0 || tr.Team1GoalsAgainst != 2 {
		t.Errorf("team1 goals = %d:%d, want 0:2", tr.Team1GoalsFor, tr.Team1GoalsAgainst)
	}
}

func TestHeadToHead_PlayerSections(t *testing.T) {
	// Alice dominates Bob, Carol dominates Alice. Carol is the nemesis,
	// Bob the favorite victim.
	matches := []models.Match{
		match(1, models.MatchStateFinished, []models.Player{alice}, 2, []models.Player{bob}, 0),
		match(2, models.MatchStateFinished, []models.Player{alice}, 1, []models.Player{bob}, 0),
		match(3, models.MatchStateFinished, []models.Player{carol}, 3, []models.Player{alice}, 0),
	}

	pid := alice.ID
	view := HeadToHead(matches, modeAll(models.Mode1v1), HeadToHeadOptions{PlayerID: &pid})
	if view.Player == nil || view.Player.ID != alice.ID || view.Player.Name != "Alice" {
		t.Fatalf("player = %+v, want Alice", view.Player)
	}
	if len(view.VsAll) != 2 {
		t.Fatalf("vs_all = %d, want 2", len(view.VsAll))
	}
	for _, rec := range view.VsAll {
		switch rec.Opponent.ID {
		case bob.ID:
			if rec.Wins != 2 || rec.Losses != 0 || rec.GoalsFor != 3 || rec.GoalsAgainst != 0 {
				t.Errorf("vs Bob = %+v, want 2 wins 3:0", rec)
			}
			if rec.Points != 6 || rec.PointsPerMatch != 3.0 {
				t.Errorf("vs Bob points = %d ppm %v, want 6 and 3.0", rec.Points, rec.PointsPerMatch)
			}
		case carol.ID:
			if rec.Wins != 0 || rec.Losses != 1 || rec.GoalsFor != 0 || rec.GoalsAgainst != 3 {
				t.Errorf("vs Carol = %+v, want 1 loss 0:3", rec)
			}
		default:
			t.Errorf("unexpected opponent %d", rec.Opponent.ID)
		}
	}
	if view.Nemesis == nil || view.Nemesis.Opponent.ID != carol.ID {
		t.Errorf("nemesis = %+v, want Carol", view.Nemesis)
	}
	if view.FavoriteVictim == nil || view.FavoriteVictim.Opponent.ID != bob.ID {
		t.Errorf("favorite victim = %+v, want Bob", view.FavoriteVictim)
	}
}

func TestHeadToHead_OrderAndLimit(t *testing.T) {
	// Alice/Bob split four matches (rivalry 4); Alice/Carol is one-sided
	// over five (rivalry 0, played 5).
	matches := []models.Match{
		match(1, models.MatchStateFinished, []models.Player{alice}, 1, []models.Player{bob}, 0),
		match(2, models.MatchStateFinished, []models.Player{bob}, 1, []models.Player{alice}, 0),
		match(3, models.MatchStateFinished, []models.Player{alice}, 2, []models.Player{bob}, 0),
		match(4, models.MatchStateFinished, []models.Player{bob}, 2, []models.Player{alice}, 0),
	}
	for i := 0; i < 5; i++ {
		matches = append(matches, match(10+i, models.MatchStateFinished, []models.Player{alice}, 1, []models.Player{carol}, 0))
	}

	byRivalry := HeadToHead(matches, modeAll(models.Mode1v1), HeadToHeadOptions{Order: OrderRivalry})
	if got := byRivalry.RivalriesAll[0]; got.B.ID != bob.ID {
		t.Errorf("rivalry order: top pair vs %d, want Bob", got.B.ID)
	}

	byPlayed := HeadToHead(matches, modeAll(models.Mode1v1), HeadToHeadOptions{Order: OrderPlayed})
	if got := byPlayed.RivalriesAll[0]; got.B.ID != carol.ID {
		t.Errorf("played order: top pair vs %d, want Carol", got.B.ID)
	}

	limited := HeadToHead(matches, modeAll(models.Mode1v1), HeadToHeadOptions{Limit: 1})
	if len(limited.RivalriesAll) != 1 {
		t.Errorf("limited rivalries = %d, want 1", len(limited.RivalriesAll))
	}
	if limited.Limit != 1 {
		t.Errorf("view limit = %d, want 1", limited.Limit)
	}
}
