package stats

import (
	"reflect"
	"testing"
	"time"

	"github.com/fifanights/cup-tracker/models"
)

// player builds a roster entry.
func player(id int, name string) models.Player {
	return models.Player{ID: id, DisplayName: name}
}

// match builds a two-sided match in the given state with the given lineups
// and goals.
func match(id int, state models.MatchState, aPlayers []models.Player, aGoals int, bPlayers []models.Player, bGoals int) models.Match {
	return models.Match{
		ID:    id,
		State: state,
		Sides: []models.MatchSide{
			{MatchID: id, Side: models.SideA, Goals: aGoals, Players: aPlayers},
			{MatchID: id, Side: models.SideB, Goals: bGoals, Players: bPlayers},
		},
	}
}

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func findRow(t *testing.T, rows []Row, playerID int) Row {
	t.Helper()
	for _, r := range rows {
		if r.PlayerID == playerID {
			return r
		}
	}
	t.Fatalf("no row for player %d", playerID)
	return Row{}
}

var (
	alice = player(1, "Alice")
	bob   = player(2, "Bob")
	carol = player(3, "Carol")
)

func TestAggregate_EmptyMatchesYieldsZeroRowsInNameOrder(t *testing.T) {
	roster := []models.Player{carol, alice, bob}

	rows := Aggregate(nil, roster, ModeFinished)

	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	wantOrder := []string{"Alice", "Bob", "Carol"}
	for i, name := range wantOrder {
		if rows[i].Name != name {
			t.Errorf("rows[%d].Name = %q, want %q", i, rows[i].Name, name)
		}
		if rows[i].Played != 0 || rows[i].Points != 0 || rows[i].GoalsFor != 0 {
			t.Errorf("rows[%d] not all-zero: %+v", i, rows[i])
		}
	}
}

func TestAggregate_BasicFold(t *testing.T) {
	roster := []models.Player{alice, bob, carol}
	matches := []models.Match{
		match(1, models.MatchStateFinished, []models.Player{alice}, 2, []models.Player{bob}, 0),
		match(2, models.MatchStateFinished, []models.Player{bob}, 1, []models.Player{carol}, 1),
	}

	rows := Aggregate(matches, roster, ModeFinished)

	a := findRow(t, rows, alice.ID)
	if a.Played != 1 || a.Wins != 1 || a.Points != 3 || a.GoalsFor != 2 || a.GoalsAgainst != 0 || a.GoalDiff != 2 {
		t.Errorf("alice row = %+v", a)
	}
	b := findRow(t, rows, bob.ID)
	if b.Played != 2 || b.Losses != 1 || b.Draws != 1 || b.Points != 1 || b.GoalDiff != -1 {
		t.Errorf("bob row = %+v", b)
	}
	c := findRow(t, rows, carol.ID)
	if c.Played != 1 || c.Draws != 1 || c.Points != 1 {
		t.Errorf("carol row = %+v", c)
	}
}

func TestAggregate_ModeFiltersPlayingMatches(t *testing.T) {
	roster := []models.Player{alice, bob}
	matches := []models.Match{
		match(1, models.MatchStateFinished, []models.Player{alice}, 1, []models.Player{bob}, 0),
		match(2, models.MatchStatePlaying, []models.Player{bob}, 2, []models.Player{alice}, 0),
		match(3, models.MatchStateScheduled, []models.Player{alice}, 0, []models.Player{bob}, 0),
	}

	base := Aggregate(matches, roster, ModeFinished)
	if got := findRow(t, base, bob.ID).Played; got != 1 {
		t.Errorf("finished-only: bob played = %d, want 1", got)
	}

	live := Aggregate(matches, roster, ModeFinishedOrPlaying)
	if got := findRow(t, live, bob.ID).Played; got != 2 {
		t.Errorf("live: bob played = %d, want 2", got)
	}
	// Scheduled matches never count in either mode.
	if got := findRow(t, live, alice.ID).Played; got != 2 {
		t.Errorf("live: alice played = %d, want 2", got)
	}
}

func TestAggregate_BothTeammatesReceiveResult(t *testing.T) {
	dave := player(4, "Dave")
	roster := []models.Player{alice, bob, carol, dave}
	matches := []models.Match{
		match(1, models.MatchStateFinished, []models.Player{alice, bob}, 3, []models.Player{carol, dave}, 1),
	}

	rows := Aggregate(matches, roster, ModeFinished)

	for _, id := range []int{alice.ID, bob.ID} {
		r := findRow(t, rows, id)
		if r.Wins != 1 || r.Points != 3 || r.GoalsFor != 3 || r.GoalsAgainst != 1 {
			t.Errorf("winning teammate %d row = %+v", id, r)
		}
	}
	for _, id := range []int{carol.ID, dave.ID} {
		r := findRow(t, rows, id)
		if r.Losses != 1 || r.Points != 0 || r.GoalsFor != 1 || r.GoalsAgainst != 3 {
			t.Errorf("losing teammate %d row = %+v", id, r)
		}
	}
}

func TestAggregate_MissingSideExcluded(t *testing.T) {
	roster := []models.Player{alice, bob}
	broken := models.Match{
		ID:    1,
		State: models.MatchStateFinished,
		Sides: []models.MatchSide{
			{MatchID: 1, Side: models.SideA, Goals: 5, Players: []models.Player{alice}},
		},
	}

	rows := Aggregate([]models.Match{broken}, roster, ModeFinished)

	if got := findRow(t, rows, alice.ID).Played; got != 0 {
		t.Errorf("alice played = %d, want 0 (one-sided match must be skipped)", got)
	}
}

func TestAggregate_NonRosterPlayerStillAggregated(t *testing.T) {
	outsider := player(99, "Zed")
	roster := []models.Player{alice}
	matches := []models.Match{
		match(1, models.MatchStateFinished, []models.Player{alice}, 0, []models.Player{outsider}, 2),
	}

	rows := Aggregate(matches, roster, ModeFinished)

	z := findRow(t, rows, outsider.ID)
	if z.Wins != 1 || z.Points != 3 {
		t.Errorf("outsider row = %+v", z)
	}
}

func TestAggregate_Idempotence(t *testing.T) {
	roster := []models.Player{alice, bob, carol}
	matches := []models.Match{
		match(1, models.MatchStateFinished, []models.Player{alice}, 2, []models.Player{bob}, 2),
		match(2, models.MatchStateFinished, []models.Player{carol}, 1, []models.Player{alice}, 0),
		match(3, models.MatchStatePlaying, []models.Player{bob}, 1, []models.Player{carol}, 0),
	}

	first := Aggregate(matches, roster, ModeFinishedOrPlaying)
	second := Aggregate(matches, roster, ModeFinishedOrPlaying)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated aggregation differs:\n%+v\n%+v", first, second)
	}
}

func TestAggregate_Conservation(t *testing.T) {
	roster := []models.Player{alice, bob, carol}
	matches := []models.Match{
		match(1, models.MatchStateFinished, []models.Player{alice}, 2, []models.Player{bob}, 0),
		match(2, models.MatchStateFinished, []models.Player{bob}, 3, []models.Player{carol}, 2),
		match(3, models.MatchStateFinished, []models.Player{carol}, 1, []models.Player{alice}, 1),
	}

	rows := Aggregate(matches, roster, ModeFinished)

	var wins, losses, gf, ga int
	for _, r := range rows {
		wins += r.Wins
		losses += r.Losses
		gf += r.GoalsFor
		ga += r.GoalsAgainst
	}
	if wins != losses {
		t.Errorf("sum wins = %d, sum losses = %d", wins, losses)
	}
	if gf != ga {
		t.Errorf("sum gf = %d, sum ga = %d", gf, ga)
	}
}

func TestAggregate_SortStabilityOnFullKeyTie(t *testing.T) {
	// Two players with identical (pts, gd, gf): lexicographically smaller
	// name sorts first.
	roster := []models.Player{player(2, "Zoe"), player(1, "Ann")}
	matches := []models.Match{
		match(1, models.MatchStateFinished, []models.Player{roster[0]}, 1, []models.Player{player(3, "Mia")}, 1),
		match(2, models.MatchStateFinished, []models.Player{roster[1]}, 1, []models.Player{player(4, "Ben")}, 1),
	}

	rows := Aggregate(matches, roster, ModeFinished)

	annPos, zoePos := -1, -1
	for i, r := range rows {
		switch r.Name {
		case "Ann":
			annPos = i
		case "Zoe":
			zoePos = i
		}
	}
	if annPos > zoePos {
		t.Errorf("Ann at %d, Zoe at %d; equal keys must order by name", annPos, zoePos)
	}
}

func TestCompetitionRanks_SharedRank(t *testing.T) {
	rows := []Row{
		{PlayerID: 1, Points: 6, GoalDiff: 3, GoalsFor: 5},
		{PlayerID: 2, Points: 6, GoalDiff: 3, GoalsFor: 5},
		{PlayerID: 3, Points: 4, GoalDiff: 0, GoalsFor: 2},
	}

	ranks := CompetitionRanks(rows)

	want := map[int]int{1: 1, 2: 1, 3: 3}
	if !reflect.DeepEqual(ranks, want) {
		t.Errorf("ranks = %v, want %v", ranks, want)
	}
}

func TestUniqueWinner(t *testing.T) {
	if _, ok := UniqueWinner(nil); ok {
		t.Error("empty standings must have no winner")
	}

	tied := []Row{
		{PlayerID: 1, Points: 6, GoalDiff: 2, GoalsFor: 4},
		{PlayerID: 2, Points: 6, GoalDiff: 2, GoalsFor: 4},
	}
	if _, ok := UniqueWinner(tied); ok {
		t.Error("tied first place must have no winner")
	}

	clear := []Row{
		{PlayerID: 1, Points: 6, GoalDiff: 2, GoalsFor: 4},
		{PlayerID: 2, Points: 6, GoalDiff: 2, GoalsFor: 3},
	}
	if id, ok := UniqueWinner(clear); !ok || id != 1 {
		t.Errorf("winner = %d, %v; want 1, true", id, ok)
	}
}

func TestFormPoints_LastN(t *testing.T) {
	matches := []models.Match{
		match(1, models.MatchStateFinished, []models.Player{alice}, 2, []models.Player{bob}, 0), // W
		match(2, models.MatchStateFinished, []models.Player{alice}, 1, []models.Player{bob}, 1), // D
		match(3, models.MatchStateFinished, []models.Player{bob}, 2, []models.Player{alice}, 0), // L
		match(4, models.MatchStateFinished, []models.Player{alice}, 3, []models.Player{bob}, 1), // W
	}

	hist := FormPoints(matches, 3)

	if want := []int{1, 0, 3}; !reflect.DeepEqual(hist[alice.ID], want) {
		t.Errorf("alice form = %v, want %v", hist[alice.ID], want)
	}
	if got := FormAverage(hist[alice.ID], 3); got != 4.0/3.0 {
		t.Errorf("alice avg = %v", got)
	}

	if got := FormPoints(matches, 0); len(got) != 0 {
		t.Errorf("n=0 must disable form, got %v", got)
	}
}
