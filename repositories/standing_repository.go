package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/fifanights/cup-tracker/models"
)

// StandingRepository stores the materialized standings rows written when a
// tournament finishes. The stored rows are a cache of engine output; the
// service layer is responsible for keeping them equal to what the engine
// recomputes.
type StandingRepository interface {
	ReplaceForTournament(ctx context.Context, exec SQLExecutor, tournamentID int, standings []models.TournamentStanding) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.TournamentStanding, error)
}

type postgresStandingRepository struct {
	db *sql.DB
}

func NewPostgresStandingRepository(db *sql.DB) StandingRepository {
	return &postgresStandingRepository{db: db}
}

func (r *postgresStandingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// ReplaceForTournament atomically swaps the stored rows for a tournament.
// Callers pass a transaction as exec when the swap must be atomic with a
// status change.
func (r *postgresStandingRepository) ReplaceForTournament(ctx context.Context, exec SQLExecutor, tournamentID int, standings []models.TournamentStanding) error {
	executor := r.getExecutor(exec)

	if _, err := executor.ExecContext(ctx,
		`DELETE FROM tournament_standings WHERE tournament_id = $1`, tournamentID); err != nil {
		return err
	}

	query := `
		INSERT INTO tournament_standings
		    (tournament_id, player_id, points, games_played, wins, draws, losses,
		     goals_for, goals_against, goal_difference, rank, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	now := time.Now()
	for i := range standings {
		s := &standings[i]
		s.TournamentID = tournamentID
		s.UpdatedAt = now
		_, err := executor.ExecContext(ctx, query,
			s.TournamentID, s.PlayerID, s.Points, s.GamesPlayed, s.Wins, s.Draws, s.Losses,
			s.GoalsFor, s.GoalsAgainst, s.GoalDifference, s.Rank, s.UpdatedAt,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresStandingRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.TournamentStanding, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, tournament_id, player_id, points, games_played, wins, draws, losses,
		       goals_for, goals_against, goal_difference, rank, updated_at
		FROM tournament_standings
		WHERE tournament_id = $1
		ORDER BY rank, player_id`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	standings := make([]models.TournamentStanding, 0)
	for rows.Next() {
		var s models.TournamentStanding
		err := rows.Scan(
			&s.ID, &s.TournamentID, &s.PlayerID, &s.Points, &s.GamesPlayed,
			&s.Wins, &s.Draws, &s.Losses, &s.GoalsFor, &s.GoalsAgainst,
			&s.GoalDifference, &s.Rank, &s.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		standings = append(standings, s)
	}
	return standings, rows.Err()
}
