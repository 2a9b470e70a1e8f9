package models

import "time"

// TournamentStatus mirrors the ENUM in the database.
type TournamentStatus string

const (
	TournamentStatusDraft    TournamentStatus = "draft"
	TournamentStatusRunning  TournamentStatus = "running"
	TournamentStatusDone     TournamentStatus = "done"
	TournamentStatusCanceled TournamentStatus = "canceled"
)

// TournamentMode is the side size of every match in the tournament.
type TournamentMode string

const (
	Mode1v1 TournamentMode = "1v1"
	Mode2v2 TournamentMode = "2v2"
)

type Tournament struct {
	ID        int              `json:"id" db:"id"`
	Name      string           `json:"name" db:"name"`
	Mode      TournamentMode   `json:"mode" db:"mode"`
	Status    TournamentStatus `json:"status" db:"status"`
	Date      time.Time        `json:"date" db:"date"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt time.Time        `json:"updated_at" db:"updated_at"`

	// Optional linked data, populated by the service layer.
	Players []Player `json:"players,omitempty" db:"-"`
	Matches []Match  `json:"matches,omitempty" db:"-"`
}
