package models

import "time"

type MatchState string

const (
	MatchStateScheduled MatchState = "scheduled"
	MatchStatePlaying   MatchState = "playing"
	MatchStateFinished  MatchState = "finished"
)

type SideLabel string

const (
	SideA SideLabel = "A"
	SideB SideLabel = "B"
)

// Match is a single fixture. TournamentID is nil for friendly matches,
// which carry their own mode and a PlayedOn date instead of a tournament
// reference.
type Match struct {
	ID           int             `json:"id" db:"id"`
	TournamentID *int            `json:"tournament_id,omitempty" db:"tournament_id"`
	Leg          int             `json:"leg" db:"leg"`
	OrderIndex   int             `json:"order_index" db:"order_index"`
	State        MatchState      `json:"state" db:"state"`
	Mode         *TournamentMode `json:"mode,omitempty" db:"mode"`
	PlayedOn     *time.Time      `json:"played_on,omitempty" db:"played_on"`
	StartedAt    *time.Time      `json:"started_at,omitempty" db:"started_at"`
	FinishedAt   *time.Time      `json:"finished_at,omitempty" db:"finished_at"`

	Sides []MatchSide `json:"sides,omitempty" db:"-"`
}

type MatchSide struct {
	ID      int       `json:"id" db:"id"`
	MatchID int       `json:"match_id" db:"match_id"`
	Side    SideLabel `json:"side" db:"side"`
	ClubID  *int      `json:"club_id,omitempty" db:"club_id"`
	Goals   int       `json:"goals" db:"goals"`

	Players []Player `json:"players,omitempty" db:"-"`
}

// SideBy returns the side with the given label, or nil if absent.
func (m *Match) SideBy(label SideLabel) *MatchSide {
	for i := range m.Sides {
		if m.Sides[i].Side == label {
			return &m.Sides[i]
		}
	}
	return nil
}

// IsFriendly reports whether the match belongs to no tournament.
func (m *Match) IsFriendly() bool {
	return m.TournamentID == nil
}
