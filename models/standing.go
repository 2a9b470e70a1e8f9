package models

import "time"

// TournamentStanding is the materialized copy of one engine standings row,
// written when a tournament finishes. The stored values must always equal
// what stats.Aggregate recomputes from the same matches.
type TournamentStanding struct {
	ID             int       `json:"id" db:"id"`
	TournamentID   int       `json:"tournament_id" db:"tournament_id"`
	PlayerID       int       `json:"player_id" db:"player_id"`
	Points         int       `json:"points" db:"points"`
	GamesPlayed    int       `json:"games_played" db:"games_played"`
	Wins           int       `json:"wins" db:"wins"`
	Draws          int       `json:"draws" db:"draws"`
	Losses         int       `json:"losses" db:"losses"`
	GoalsFor       int       `json:"goals_for" db:"goals_for"`
	GoalsAgainst   int       `json:"goals_against" db:"goals_against"`
	GoalDifference int       `json:"goal_difference" db:"goal_difference"`
	Rank           int       `json:"rank" db:"rank"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`

	Player *Player `json:"player,omitempty" db:"-"`
}
