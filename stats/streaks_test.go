package stats

import (
	"testing"
	"time"

	"github.com/fifanights/cup-tracker/models"
)

// outcome builds one chronological entry; d is the day-of-month used as
// the timestamp.
func outcome(d int, result Result, gf, ga int) Outcome {
	return Outcome{MatchID: d, Result: result, GoalsFor: gf, GoalsAgainst: ga, Timestamp: day(d)}
}

// Sequence: win, win, draw, win, loss, win.
func sixMatchHistory() []Outcome {
	return []Outcome{
		outcome(1, ResultWin, 2, 0),
		outcome(2, ResultWin, 1, 0),
		outcome(3, ResultDraw, 1, 1),
		outcome(4, ResultWin, 3, 1),
		outcome(5, ResultLoss, 0, 2),
		outcome(6, ResultWin, 2, 1),
	}
}

func TestExtractStreaks_WinRuns(t *testing.T) {
	set := ExtractStreaks(sixMatchHistory())

	runs := set.Records[CategoryWin]
	if len(runs) != 3 {
		t.Fatalf("win runs = %d, want 3 (%+v)", len(runs), runs)
	}
	// Longest first: [2 (matches 1-2), 1 (match 4), 1 (match 6)].
	if runs[0].Length != 2 || !runs[0].Start.Equal(day(1)) || !runs[0].End.Equal(day(2)) {
		t.Errorf("record run = %+v, want length 2 over days 1-2", runs[0])
	}
	if runs[1].Length != 1 || runs[2].Length != 1 {
		t.Errorf("short runs = %+v, %+v, want lengths 1 and 1", runs[1], runs[2])
	}

	cur := set.Current[CategoryWin]
	if cur == nil || cur.Length != 1 || !cur.Start.Equal(day(6)) {
		t.Errorf("current win run = %+v, want length 1 starting day 6", cur)
	}
}

func TestExtractStreaks_UnbeatenRuns(t *testing.T) {
	set := ExtractStreaks(sixMatchHistory())

	// Matches 1-4 (W W D W) are all unbeaten; the loss at match 5 closes
	// the run, match 6 opens a new one.
	if got := set.RecordLength(CategoryUnbeaten); got != 4 {
		t.Errorf("unbeaten record = %d, want 4", got)
	}
	cur := set.Current[CategoryUnbeaten]
	if cur == nil || cur.Length != 1 {
		t.Errorf("current unbeaten run = %+v, want length 1", cur)
	}
}

func TestExtractStreaks_ScoringAndCleanSheet(t *testing.T) {
	set := ExtractStreaks(sixMatchHistory())

	// Scoring broken only by the 0-2 loss at match 5.
	if got := set.RecordLength(CategoryScoring); got != 4 {
		t.Errorf("scoring record = %d, want 4", got)
	}
	if cur := set.Current[CategoryScoring]; cur == nil || cur.Length != 1 {
		t.Errorf("current scoring run = %+v, want length 1", cur)
	}

	// Clean sheets: matches 1-2 only; most recent match concedes, so no
	// active run.
	if got := set.RecordLength(CategoryCleanSheet); got != 2 {
		t.Errorf("clean sheet record = %d, want 2", got)
	}
	if cur := set.Current[CategoryCleanSheet]; cur != nil {
		t.Errorf("current clean sheet run = %+v, want nil", cur)
	}
}

func TestExtractStreaks_EmptyHistory(t *testing.T) {
	set := ExtractStreaks(nil)

	for _, c := range Categories {
		if set.Current[c] != nil {
			t.Errorf("%s current = %+v, want nil", c, set.Current[c])
		}
		if len(set.Records[c]) != 0 {
			t.Errorf("%s records = %+v, want empty", c, set.Records[c])
		}
	}
}

func TestCurrentTiesRecord_ExactTripleOnly(t *testing.T) {
	// Two separate 2-win runs; the active one ties the record.
	outcomes := []Outcome{
		outcome(1, ResultWin, 1, 0),
		outcome(2, ResultWin, 1, 0),
		outcome(3, ResultLoss, 0, 1),
		outcome(4, ResultWin, 2, 0),
		outcome(5, ResultWin, 2, 0),
	}
	set := ExtractStreaks(outcomes)

	if !set.CurrentTiesRecord(CategoryWin) {
		t.Error("active 2-win run must tie the 2-win record")
	}
	if got := len(set.RecordRuns(CategoryWin)); got != 2 {
		t.Errorf("record runs = %d, want 2 (shared record length)", got)
	}

	// One more loss and a single win: the active run no longer matches a
	// record triple even though length-1 runs exist in the records.
	outcomes = append(outcomes, outcome(6, ResultLoss, 0, 1), outcome(7, ResultWin, 1, 0))
	set = ExtractStreaks(outcomes)
	if set.CurrentTiesRecord(CategoryWin) {
		t.Error("length-1 active run must not tie the 2-win record")
	}
}

func TestBuildStreakBadges_MinLengthAndSuppression(t *testing.T) {
	// Active: 2 wins (also 2 unbeaten, no draws mixed in), 2 scoring.
	outcomes := []Outcome{
		outcome(1, ResultLoss, 0, 1),
		outcome(2, ResultWin, 1, 0),
		outcome(3, ResultWin, 2, 0),
	}
	set := ExtractStreaks(outcomes)

	badges := BuildStreakBadges(set, BadgeOptions{})

	for _, b := range badges {
		if b.Category == CategoryUnbeaten {
			t.Error("unbeaten badge must be suppressed when not longer than the win run")
		}
		if b.Run.Length < 2 {
			t.Errorf("badge %s shorter than min length: %+v", b.Category, b.Run)
		}
	}

	// With a draw extending the unbeaten run past the win run, the badge
	// comes back.
	outcomes = append(outcomes, outcome(4, ResultDraw, 1, 1))
	set = ExtractStreaks(outcomes)
	badges = BuildStreakBadges(set, BadgeOptions{})

	found := false
	for _, b := range badges {
		if b.Category == CategoryUnbeaten && b.Run.Length == 3 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected 3-match unbeaten badge, got %+v", badges)
	}
}

func TestBuildStreakBadges_RecordTyingFlag(t *testing.T) {
	outcomes := []Outcome{
		outcome(1, ResultWin, 1, 0),
		outcome(2, ResultWin, 1, 0),
		outcome(3, ResultLoss, 0, 1),
		outcome(4, ResultWin, 2, 0),
		outcome(5, ResultWin, 2, 0),
	}
	set := ExtractStreaks(outcomes)

	badges := BuildStreakBadges(set, BadgeOptions{})

	for _, b := range badges {
		if b.Category == CategoryWin && !b.RecordTying {
			t.Errorf("active win run ties the record, badge = %+v", b)
		}
	}
}

func TestOutcomesByPlayer_FollowsGlobalMatchOrder(t *testing.T) {
	// Both matches share a date; per-player order must follow slice order,
	// not timestamps.
	m1 := match(1, models.MatchStateFinished, []models.Player{alice}, 0, []models.Player{bob}, 1)
	m2 := match(2, models.MatchStateFinished, []models.Player{alice}, 2, []models.Player{bob}, 0)

	byPlayer := OutcomesByPlayer([]models.Match{m1, m2}, func(*models.Match) time.Time { return day(1) })

	got := byPlayer[alice.ID]
	if len(got) != 2 || got[0].Result != ResultLoss || got[1].Result != ResultWin {
		t.Errorf("alice outcomes = %+v, want loss then win", got)
	}
	if got := byPlayer[bob.ID]; len(got) != 2 || got[0].Result != ResultWin {
		t.Errorf("bob outcomes = %+v, want win then loss", got)
	}
}
