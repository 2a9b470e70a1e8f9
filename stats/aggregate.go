package stats

import (
	"sort"
	"strings"

	"github.com/fifanights/cup-tracker/models"
)

// Mode selects which match states count toward a standings aggregation.
type Mode string

const (
	// ModeFinished counts only finished matches (finalized standings).
	ModeFinished Mode = "finished"
	// ModeFinishedOrPlaying additionally counts in-progress matches
	// (live standings).
	ModeFinishedOrPlaying Mode = "finished_or_playing"
)

func (m Mode) keeps(state models.MatchState) bool {
	switch state {
	case models.MatchStateFinished:
		return true
	case models.MatchStatePlaying:
		return m == ModeFinishedOrPlaying
	default:
		return false
	}
}

// Row is one player's aggregate summary over a match set. Rows are built
// fresh on every Aggregate call and never mutated afterwards.
type Row struct {
	PlayerID     int    `json:"player_id"`
	Name         string `json:"name"`
	Played       int    `json:"played"`
	Wins         int    `json:"wins"`
	Draws        int    `json:"draws"`
	Losses       int    `json:"losses"`
	GoalsFor     int    `json:"gf"`
	GoalsAgainst int    `json:"ga"`
	GoalDiff     int    `json:"gd"`
	Points       int    `json:"pts"`
}

// Aggregate reduces a match set to one standings row per player.
//
// Every roster player gets a row even with zero games. Players who appear
// in a counted match but not in the roster are aggregated as well; the
// roster guarantees inclusion, not exclusion. A match missing side A or B
// is skipped entirely.
//
// Points per player: win=3, draw=1, loss=0. Works for 1v1 and 2v2; both
// teammates receive the side's result. The returned rows are sorted by
// points desc, goal difference desc, goals for desc, then display name asc,
// which is the canonical standings order.
func Aggregate(matches []models.Match, roster []models.Player, mode Mode) []Row {
	per := make(map[int]*Row, len(roster))
	for _, p := range roster {
		per[p.ID] = &Row{PlayerID: p.ID, Name: p.DisplayName}
	}

	for i := range matches {
		m := &matches[i]
		if !mode.keeps(m.State) {
			continue
		}
		a := m.SideBy(models.SideA)
		b := m.SideBy(models.SideB)
		if a == nil || b == nil {
			continue
		}

		fold := func(side, opp *models.MatchSide) {
			for _, p := range side.Players {
				row, ok := per[p.ID]
				if !ok {
					row = &Row{PlayerID: p.ID, Name: p.DisplayName}
					per[p.ID] = row
				}
				row.Played++
				row.GoalsFor += side.Goals
				row.GoalsAgainst += opp.Goals
				switch {
				case side.Goals > opp.Goals:
					row.Wins++
				case side.Goals < opp.Goals:
					row.Losses++
				default:
					row.Draws++
				}
			}
		}
		fold(a, b)
		fold(b, a)
	}

	rows := make([]Row, 0, len(per))
	for _, r := range per {
		r.GoalDiff = r.GoalsFor - r.GoalsAgainst
		r.Points = 3*r.Wins + r.Draws
		rows = append(rows, *r)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		if rows[i].GoalDiff != rows[j].GoalDiff {
			return rows[i].GoalDiff > rows[j].GoalDiff
		}
		if rows[i].GoalsFor != rows[j].GoalsFor {
			return rows[i].GoalsFor > rows[j].GoalsFor
		}
		return strings.Compare(rows[i].Name, rows[j].Name) < 0
	})
	return rows
}

// Positions maps each player to its 0-based index in canonical standings
// order.
func Positions(rows []Row) map[int]int {
	pos := make(map[int]int, len(rows))
	for i, r := range rows {
		pos[r.PlayerID] = i
	}
	return pos
}

// CompetitionRanks maps each player to its competition rank (1,1,3 style):
// rows tied on (points, goal difference, goals for) share a rank, and the
// next distinct key resumes at its index + 1.
func CompetitionRanks(rows []Row) map[int]int {
	type key struct{ pts, gd, gf int }
	ranks := make(map[int]int, len(rows))
	var last key
	lastRank := 0
	for i, r := range rows {
		k := key{r.Points, r.GoalDiff, r.GoalsFor}
		if i == 0 || k != last {
			lastRank = i + 1
		}
		ranks[r.PlayerID] = lastRank
		last = k
	}
	return ranks
}

// UniqueWinner returns the player at the top of the standings, unless the
// standings are empty or first place is tied on (points, gd, gf).
func UniqueWinner(rows []Row) (int, bool) {
	if len(rows) == 0 {
		return 0, false
	}
	top := rows[0]
	if len(rows) > 1 {
		next := rows[1]
		if next.Points == top.Points && next.GoalDiff == top.GoalDiff && next.GoalsFor == top.GoalsFor {
			return 0, false
		}
	}
	return top.PlayerID, true
}

// FormPoints returns each player's last n per-match point results (3/1/0)
// over finished matches, oldest first. The caller must supply matches in
// tournament chronology; this function preserves their order. n <= 0
// disables recent form and yields empty slices.
func FormPoints(matches []models.Match, n int) map[int][]int {
	hist := make(map[int][]int)
	if n <= 0 {
		return hist
	}
	for i := range matches {
		m := &matches[i]
		if m.State != models.MatchStateFinished {
			continue
		}
		a := m.SideBy(models.SideA)
		b := m.SideBy(models.SideB)
		if a == nil || b == nil {
			continue
		}
		var ptsA, ptsB int
		switch {
		case a.Goals > b.Goals:
			ptsA, ptsB = 3, 0
		case a.Goals < b.Goals:
			ptsA, ptsB = 0, 3
		default:
			ptsA, ptsB = 1, 1
		}
		for _, p := range a.Players {
			hist[p.ID] = append(hist[p.ID], ptsA)
		}
		for _, p := range b.Players {
			hist[p.ID] = append(hist[p.ID], ptsB)
		}
	}
	for pid, pts := range hist {
		if len(pts) > n {
			hist[pid] = pts[len(pts)-n:]
		}
	}
	return hist
}

// FormAverage is the mean of a form slice over window n (not over the
// number of matches actually played). Zero when the slice is empty.
func FormAverage(pts []int, n int) float64 {
	if len(pts) == 0 || n <= 0 {
		return 0
	}
	sum := 0
	for _, p := range pts {
		sum += p
	}
	return float64(sum) / float64(n)
}
