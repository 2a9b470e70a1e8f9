package models

import "time"

// CupDef names one rotating trophy. Ownership is never stored; it is
// derived from tournament results starting at SinceDate (nil = all time).
type CupDef struct {
	Key       string     `json:"key"`
	Name      string     `json:"name"`
	SinceDate *time.Time `json:"since_date,omitempty"`
	// InitialOwnerID seeds the derivation before any counted tournament.
	InitialOwnerID int `json:"initial_owner_id"`
}
