package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fifanights/cup-tracker/models"
	"github.com/lib/pq"
)

var (
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament name conflict")
	ErrRosterPlayerConflict   = errors.New("player already in tournament roster")
)

type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	List(ctx context.Context, exec SQLExecutor, statuses []models.TournamentStatus) ([]models.Tournament, error)
	Update(ctx context.Context, exec SQLExecutor, t *models.Tournament) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error

	AddPlayer(ctx context.Context, exec SQLExecutor, tournamentID, playerID int) error
	RemovePlayer(ctx context.Context, exec SQLExecutor, tournamentID, playerID int) error
	ListPlayers(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Player, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTournamentRepository) Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO tournaments (name, mode, status, date)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := executor.QueryRowContext(ctx, query, t.Name, t.Mode, t.Status, t.Date).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrTournamentNameConflict
		}
		return err
	}
	return nil
}

func (r *postgresTournamentRepository) scanTournament(scanner interface{ Scan(...interface{}) error }) (*models.Tournament, error) {
	var t models.Tournament
	err := scanner.Scan(&t.ID, &t.Name, &t.Mode, &t.Status, &t.Date, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `SELECT id, name, mode, status, date, created_at, updated_at FROM tournaments WHERE id = $1`
	return r.scanTournament(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresTournamentRepository) List(ctx context.Context, exec SQLExecutor, statuses []models.TournamentStatus) ([]models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `SELECT id, name, mode, status, date, created_at, updated_at FROM tournaments`
	args := []interface{}{}
	if len(statuses) > 0 {
		strs := make([]string, len(statuses))
		for i, s := range statuses {
			strs[i] = string(s)
		}
		query += ` WHERE status = ANY($1)`
		args = append(args, pq.Array(strs))
	}
	// Cup derivation and streak chronology both depend on this exact order.
	query += ` ORDER BY date, created_at, id`

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		t, errScan := r.scanTournament(rows)
		if errScan != nil {
			return nil, errScan
		}
		tournaments = append(tournaments, *t)
	}
	return tournaments, rows.Err()
}

func (r *postgresTournamentRepository) Update(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE tournaments SET name = $1, mode = $2, date = $3, updated_at = $4
		WHERE id = $5`
	result, err := executor.ExecContext(ctx, query, t.Name, t.Mode, t.Date, time.Now(), t.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrTournamentNameConflict
		}
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := executor.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) AddPlayer(ctx context.Context, exec SQLExecutor, tournamentID, playerID int) error {
	executor := r.getExecutor(exec)
	query := `INSERT INTO tournament_players (tournament_id, player_id) VALUES ($1, $2)`
	_, err := executor.ExecContext(ctx, query, tournamentID, playerID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505":
				return ErrRosterPlayerConflict
			case "23503":
				return ErrTournamentNotFound
			}
		}
		return err
	}
	return nil
}

func (r *postgresTournamentRepository) RemovePlayer(ctx context.Context, exec SQLExecutor, tournamentID, playerID int) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM tournament_players WHERE tournament_id = $1 AND player_id = $2`
	result, err := executor.ExecContext(ctx, query, tournamentID, playerID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) ListPlayers(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Player, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT p.id, p.display_name, p.created_at, p.avatar_key
		FROM players p
		JOIN tournament_players tp ON tp.player_id = p.id
		WHERE tp.tournament_id = $1
		ORDER BY p.display_name`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := make([]models.Player, 0)
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(&p.ID, &p.DisplayName, &p.CreatedAt, &p.AvatarKey); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}
