package stats

import (
	"sort"
	"time"

	"github.com/fifanights/cup-tracker/models"
)

type Result string

const (
	ResultWin  Result = "win"
	ResultDraw Result = "draw"
	ResultLoss Result = "loss"
)

// Outcome is one player's result in one match, in chronological order.
type Outcome struct {
	MatchID      int       `json:"match_id"`
	Result       Result    `json:"result"`
	GoalsFor     int       `json:"gf"`
	GoalsAgainst int       `json:"ga"`
	Timestamp    time.Time `json:"ts"`
}

// Category is one of the four streak kinds. Each carries its own outcome
// predicate; the extractor iterates the closed set uniformly.
type Category string

const (
	CategoryWin        Category = "win_streak"
	CategoryUnbeaten   Category = "unbeaten_streak"
	CategoryScoring    Category = "scoring_streak"
	CategoryCleanSheet Category = "clean_sheet_streak"
)

// Categories lists every streak category in display order.
var Categories = []Category{CategoryWin, CategoryUnbeaten, CategoryScoring, CategoryCleanSheet}

// Keeps reports whether the outcome extends a run of this category.
func (c Category) Keeps(o Outcome) bool {
	switch c {
	case CategoryWin:
		return o.Result == ResultWin
	case CategoryUnbeaten:
		return o.Result != ResultLoss
	case CategoryScoring:
		return o.GoalsFor > 0
	case CategoryCleanSheet:
		return o.GoalsAgainst == 0
	}
	return false
}

func (c Category) DisplayName() string {
	switch c {
	case CategoryWin:
		return "Win streak"
	case CategoryUnbeaten:
		return "Unbeaten streak"
	case CategoryScoring:
		return "Scoring streak"
	case CategoryCleanSheet:
		return "Clean sheet streak"
	}
	return string(c)
}

func (c Category) Description() string {
	switch c {
	case CategoryWin:
		return "Consecutive wins."
	case CategoryUnbeaten:
		return "Consecutive matches without losing."
	case CategoryScoring:
		return "Consecutive matches with at least 1 goal scored."
	case CategoryCleanSheet:
		return "Consecutive matches with 0 goals conceded."
	}
	return ""
}

// Run is a maximal consecutive sub-sequence of a player's outcomes
// satisfying a category predicate.
type Run struct {
	Length int       `json:"length"`
	Start  time.Time `json:"start_ts"`
	End    time.Time `json:"end_ts"`
}

// sameRun is the exact (length, start, end) triple comparison used for
// record-tying checks; two distinct runs of equal length differ by range.
func sameRun(a, b Run) bool {
	return a.Length == b.Length && a.Start.Equal(b.Start) && a.End.Equal(b.End)
}

// StreakSet is the full extraction result for one player: the active run
// per category (nil when the latest match broke the predicate) and every
// historical run of length >= 1, longest first.
type StreakSet struct {
	Current map[Category]*Run
	Records map[Category][]Run
}

// ExtractStreaks scans a player's chronologically ordered outcomes once per
// category. An empty outcome list yields nil currents and empty record
// lists, not an error. The extractor returns all runs including length 1;
// noise suppression is a presentation concern (see BuildStreakBadges).
func ExtractStreaks(outcomes []Outcome) StreakSet {
	set := StreakSet{
		Current: make(map[Category]*Run, len(Categories)),
		Records: make(map[Category][]Run, len(Categories)),
	}
	for _, c := range Categories {
		runs, current := scanRuns(outcomes, c)
		set.Current[c] = current
		set.Records[c] = runs
	}
	return set
}

func scanRuns(outcomes []Outcome, c Category) (runs []Run, current *Run) {
	var open *Run
	for _, o := range outcomes {
		if !c.Keeps(o) {
			open = nil
			continue
		}
		if open == nil {
			runs = append(runs, Run{Length: 1, Start: o.Timestamp, End: o.Timestamp})
			open = &runs[len(runs)-1]
			continue
		}
		open.Length++
		open.End = o.Timestamp
	}
	if open != nil {
		// Trailing run is still active as of the most recent match.
		cur := *open
		current = &cur
	}
	sort.SliceStable(runs, func(i, j int) bool {
		if runs[i].Length != runs[j].Length {
			return runs[i].Length > runs[j].Length
		}
		return runs[i].Start.Before(runs[j].Start)
	})
	return runs, current
}

// RecordLength is the longest run length in the category, 0 when none.
func (s StreakSet) RecordLength(c Category) int {
	runs := s.Records[c]
	if len(runs) == 0 {
		return 0
	}
	return runs[0].Length
}

// RecordRuns returns every run sharing the record length.
func (s StreakSet) RecordRuns(c Category) []Run {
	runs := s.Records[c]
	if len(runs) == 0 {
		return nil
	}
	best := runs[0].Length
	out := make([]Run, 0, 1)
	for _, r := range runs {
		if r.Length != best {
			break
		}
		out = append(out, r)
	}
	return out
}

// CurrentTiesRecord reports whether the active run is itself one of the
// record runs, by exact (length, start, end) equality.
func (s StreakSet) CurrentTiesRecord(c Category) bool {
	cur := s.Current[c]
	if cur == nil {
		return false
	}
	for _, r := range s.RecordRuns(c) {
		if sameRun(r, *cur) {
			return true
		}
	}
	return false
}

// OutcomesByPlayer explodes an already chronologically ordered match list
// into per-player outcome sequences. dateOf supplies the chronology
// timestamp for a match (tournament date for tournament matches, the
// played-on date for friendlies); per-player order follows the global match
// order, never the raw timestamps, since many matches share a day.
func OutcomesByPlayer(matches []models.Match, dateOf func(*models.Match) time.Time) map[int][]Outcome {
	out := make(map[int][]Outcome)
	for i := range matches {
		m := &matches[i]
		if m.State != models.MatchStateFinished {
			continue
		}
		a := m.SideBy(models.SideA)
		b := m.SideBy(models.SideB)
		if a == nil || b == nil || len(a.Players) == 0 || len(b.Players) == 0 {
			continue
		}
		resA, resB := ResultDraw, ResultDraw
		switch {
		case a.Goals > b.Goals:
			resA, resB = ResultWin, ResultLoss
		case a.Goals < b.Goals:
			resA, resB = ResultLoss, ResultWin
		}
		ts := dateOf(m)
		for _, p := range a.Players {
			out[p.ID] = append(out[p.ID], Outcome{
				MatchID: m.ID, Result: resA, GoalsFor: a.Goals, GoalsAgainst: b.Goals, Timestamp: ts,
			})
		}
		for _, p := range b.Players {
			out[p.ID] = append(out[p.ID], Outcome{
				MatchID: m.ID, Result: resB, GoalsFor: b.Goals, GoalsAgainst: a.Goals, Timestamp: ts,
			})
		}
	}
	return out
}
