package stats

import (
	"sort"
	"time"

	"github.com/fifanights/cup-tracker/models"
)

// TransferEvent is one handover in a trophy's ownership timeline: after the
// named tournament, the cup moved from one player to another.
type TransferEvent struct {
	TournamentID int       `json:"tournament_id"`
	Date         time.Time `json:"date"`
	FromPlayerID int       `json:"from_player_id"`
	ToPlayerID   int       `json:"to_player_id"`
}

// Reference is the point in time a caller asks about. Date is nil when the
// reference tournament has no known date, in which case chronological
// placement is impossible.
type Reference struct {
	TournamentID int
	Date         *time.Time
}

func sortTimeline(timeline []TransferEvent) []TransferEvent {
	sorted := make([]TransferEvent, len(timeline))
	copy(sorted, timeline)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return sorted[i].TournamentID < sorted[j].TournamentID
	})
	return sorted
}

// OwnerBefore resolves who held the trophy immediately before the reference
// tournament, by linear replay of the timeline.
//
// If an event's tournament is the reference tournament itself, that event's
// from-player is the answer (the reference tournament caused the transfer).
// With no exact match and no reference date, the current owner is returned
// as a best effort: the last event's to-player, or seedOwner on an empty
// timeline. Otherwise events strictly before (date, tournament id) are
// replayed from seedOwner (or the first event's from-player when no seed is
// known). A nil result means the trophy was unowned at that point.
//
// Deterministic: same timeline and reference always produce the same owner.
func OwnerBefore(timeline []TransferEvent, seedOwner *int, ref Reference) *int {
	sorted := sortTimeline(timeline)

	for _, ev := range sorted {
		if ev.TournamentID == ref.TournamentID {
			from := ev.FromPlayerID
			return &from
		}
	}

	if ref.Date == nil {
		if len(sorted) == 0 {
			return seedOwner
		}
		to := sorted[len(sorted)-1].ToPlayerID
		return &to
	}

	owner := seedOwner
	if owner == nil && len(sorted) > 0 {
		from := sorted[0].FromPlayerID
		owner = &from
	}
	for _, ev := range sorted {
		before := ev.Date.Before(*ref.Date) ||
			(ev.Date.Equal(*ref.Date) && ev.TournamentID < ref.TournamentID)
		if !before {
			continue
		}
		to := ev.ToPlayerID
		owner = &to
	}
	return owner
}

// Transfer is a decorated timeline entry for cup history output.
type Transfer struct {
	TournamentID   int       `json:"tournament_id"`
	TournamentName string    `json:"tournament_name"`
	Date           time.Time `json:"date"`
	FromPlayerID   int       `json:"from_player_id"`
	ToPlayerID     int       `json:"to_player_id"`
	// StreakDuration is how many counted tournaments the outgoing owner
	// had held the cup for at the moment of this handover.
	StreakDuration int `json:"streak_duration"`
}

// CupResult is the derived state of one trophy.
type CupResult struct {
	OwnerID                 int        `json:"owner_id"`
	StreakTournaments       int        `json:"streak_tournaments"`
	StreakSinceTournamentID *int       `json:"streak_since_tournament_id,omitempty"`
	StreakSinceDate         *time.Time `json:"streak_since_date,omitempty"`
	History                 []Transfer `json:"history"`
}

// Timeline strips the history down to raw transfer events, the input shape
// OwnerBefore consumes.
func (r CupResult) Timeline() []TransferEvent {
	events := make([]TransferEvent, 0, len(r.History))
	for _, h := range r.History {
		events = append(events, TransferEvent{
			TournamentID: h.TournamentID,
			Date:         h.Date,
			FromPlayerID: h.FromPlayerID,
			ToPlayerID:   h.ToPlayerID,
		})
	}
	return events
}

// DeriveCup replays completed tournaments and moves the trophy according
// to tournament winners.
//
// Tournaments are walked by (date, created_at, id) ascending; only status
// "done" counts. A tournament the current owner did not enter changes
// nothing. When the owner entered, the cup transfers only on a unique
// winner (no first-place tie) who is not the owner; otherwise the owner's
// participation streak grows, anchored at the first counted tournament.
func DeriveCup(tournaments []models.Tournament, matchesByTournament map[int][]models.Match, initialOwnerID int) CupResult {
	sorted := make([]models.Tournament, len(tournaments))
	copy(sorted, tournaments)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		}
		return sorted[i].ID < sorted[j].ID
	})

	owner := initialOwnerID
	var history []Transfer
	streak := 0
	var sinceID *int
	var sinceDate *time.Time

	anchor := func(t models.Tournament) {
		if sinceID == nil {
			id, d := t.ID, t.Date
			sinceID, sinceDate = &id, &d
		}
	}

	for _, t := range sorted {
		if t.Status != models.TournamentStatusDone {
			continue
		}

		entered := false
		for _, p := range t.Players {
			if p.ID == owner {
				entered = true
				break
			}
		}
		if !entered {
			continue
		}

		rows := Aggregate(matchesByTournament[t.ID], t.Players, ModeFinished)
		winner, ok := UniqueWinner(rows)
		if !ok || winner == owner {
			streak++
			anchor(t)
			continue
		}

		history = append(history, Transfer{
			TournamentID:   t.ID,
			TournamentName: t.Name,
			Date:           t.Date,
			FromPlayerID:   owner,
			ToPlayerID:     winner,
			StreakDuration: streak,
		})

		owner = winner
		streak = 1
		id, d := t.ID, t.Date
		sinceID, sinceDate = &id, &d
	}

	return CupResult{
		OwnerID:                 owner,
		StreakTournaments:       streak,
		StreakSinceTournamentID: sinceID,
		StreakSinceDate:         sinceDate,
		History:                 history,
	}
}
