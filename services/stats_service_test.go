package services

import (
	"testing"
	"time"

	"github.com/fifanights/cup-tracker/models"
)

func TestParseScope(t *testing.T) {
	cases := []struct {
		raw     string
		want    Scope
		wantErr bool
	}{
		{"", ScopeBoth, false},
		{"both", ScopeBoth, false},
		{"tournaments", ScopeTournaments, false},
		{"friendlies", ScopeFriendlies, false},
		{"everything", "", true},
	}
	for _, c := range cases {
		got, err := ParseScope(c.raw)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseScope(%q): expected an error", c.raw)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseScope(%q): %v", c.raw, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseScope(%q) = %q, want %q", c.raw, got, c.want)
		}
	}
}

func chronologyFixture() *snapshot {
	day := func(d int) time.Time {
		return time.Date(2025, 4, d, 0, 0, 0, 0, time.UTC)
	}
	t1 := models.Tournament{ID: 1, Date: day(5), CreatedAt: day(5), Status: models.TournamentStatusDone}
	t2 := models.Tournament{ID: 2, Date: day(5), CreatedAt: day(5).Add(time.Hour), Status: models.TournamentStatusDone}
	t3 := models.Tournament{ID: 3, Date: day(20), CreatedAt: day(20), Status: models.TournamentStatusRunning}

	friendlyDay := day(10)
	return &snapshot{
		tournaments: []models.Tournament{t1, t2, t3},
		matchesByTournament: map[int][]models.Match{
			1: {
				{ID: 11, TournamentID: &t1.ID, OrderIndex: 0},
				{ID: 12, TournamentID: &t1.ID, OrderIndex: 1},
			},
			2: {{ID: 21, TournamentID: &t2.ID, OrderIndex: 0}},
			3: {{ID: 31, TournamentID: &t3.ID, OrderIndex: 0}},
		},
		friendlies: []models.Match{{ID: 41, PlayedOn: &friendlyDay}},
	}
}

func TestChronologyOrdersByDateThenTournamentThenFixture(t *testing.T) {
	matches, _ := chronologyFixture().chronology()

	wantIDs := []int{11, 12, 21, 41, 31}
	if len(matches) != len(wantIDs) {
		t.Fatalf("expected %d matches, got %d", len(wantIDs), len(matches))
	}
	for i, want := range wantIDs {
		if matches[i].ID != want {
			t.Errorf("position %d: got match %d, want %d", i, matches[i].ID, want)
		}
	}
}

func TestFilterByMode(t *testing.T) {
	day := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	duos := models.Mode2v2
	t1 := models.Tournament{ID: 1, Mode: models.Mode1v1}
	t2 := models.Tournament{ID: 2, Mode: models.Mode2v2}
	matches := []models.Match{
		{ID: 1, TournamentID: &t1.ID},
		{ID: 2, TournamentID: &t2.ID},
		{ID: 3, PlayedOn: &day, Mode: &duos},
		{ID: 4, PlayedOn: &day},
	}
	tournaments := []models.Tournament{t1, t2}

	got := filterByMode(matches, tournaments, models.Mode2v2)
	if len(got) != 2 || got[0].ID != 2 || got[1].ID != 3 {
		t.Fatalf("2v2 filter kept wrong matches: %+v", got)
	}

	got = filterByMode(matches, tournaments, models.Mode1v1)
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("1v1 filter kept wrong matches: %+v", got)
	}
}

func TestModeResolver(t *testing.T) {
	day := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	duos := models.Mode2v2
	t1 := models.Tournament{ID: 1, Mode: models.Mode1v1}
	modeOf := modeResolver([]models.Tournament{t1})

	cases := []struct {
		match models.Match
		want  models.TournamentMode
	}{
		{models.Match{ID: 1, TournamentID: &t1.ID}, models.Mode1v1},
		{models.Match{ID: 2, PlayedOn: &day, Mode: &duos}, models.Mode2v2},
		{models.Match{ID: 3, PlayedOn: &day}, ""},
	}
	for _, c := range cases {
		if got := modeOf(&c.match); got != c.want {
			t.Errorf("match %d: mode %q, want %q", c.match.ID, got, c.want)
		}
	}
}

func TestChronologyDateResolver(t *testing.T) {
	snap := chronologyFixture()
	matches, dateOf := snap.chronology()

	for i := range matches {
		m := &matches[i]
		got := dateOf(m)
		if m.TournamentID != nil {
			want := snap.tournaments[*m.TournamentID-1].Date
			if !got.Equal(want) {
				t.Errorf("match %d: date %v, want tournament date %v", m.ID, got, want)
			}
			continue
		}
		if m.PlayedOn == nil || !got.Equal(*m.PlayedOn) {
			t.Errorf("friendly %d: date %v, want played_on", m.ID, got)
		}
	}
}
