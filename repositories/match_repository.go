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
	ErrMatchNotFound     = errors.New("match not found")
	ErrMatchSideNotFound = errors.New("match side not found")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Match, error)
	ListByTournaments(ctx context.Context, exec SQLExecutor, tournamentIDs []int) (map[int][]models.Match, error)
	ListFriendlies(ctx context.Context, exec SQLExecutor) ([]models.Match, error)
	UpdateScore(ctx context.Context, exec SQLExecutor, matchID, goalsA, goalsB int) error
	UpdateState(ctx context.Context, exec SQLExecutor, matchID int, state models.MatchState) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create inserts the match, both sides, and the side lineups. Callers that
// need atomicity pass a transaction as exec.
func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	executor := r.getExecutor(exec)

	query := `
		INSERT INTO matches (tournament_id, leg, order_index, state, mode, played_on)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := executor.QueryRowContext(ctx, query,
		match.TournamentID, match.Leg, match.OrderIndex, match.State, match.Mode, match.PlayedOn,
	).Scan(&match.ID)
	if err != nil {
		return err
	}

	for i := range match.Sides {
		side := &match.Sides[i]
		side.MatchID = match.ID
		err := executor.QueryRowContext(ctx,
			`INSERT INTO match_sides (match_id, side, club_id, goals) VALUES ($1, $2, $3, $4) RETURNING id`,
			side.MatchID, side.Side, side.ClubID, side.Goals,
		).Scan(&side.ID)
		if err != nil {
			return err
		}
		for _, p := range side.Players {
			_, err := executor.ExecContext(ctx,
				`INSERT INTO match_side_players (match_side_id, player_id) VALUES ($1, $2)`,
				side.ID, p.ID,
			)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

const matchColumns = `id, tournament_id, leg, order_index, state, mode, played_on, started_at, finished_at`

func scanMatch(scanner interface{ Scan(...interface{}) error }) (*models.Match, error) {
	var m models.Match
	err := scanner.Scan(
		&m.ID, &m.TournamentID, &m.Leg, &m.OrderIndex, &m.State,
		&m.Mode, &m.PlayedOn, &m.StartedAt, &m.FinishedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	executor := r.getExecutor(exec)
	m, err := scanMatch(executor.QueryRowContext(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.attachSides(ctx, executor, []*models.Match{m}); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *postgresMatchRepository) listMatches(ctx context.Context, executor SQLExecutor, query string, args ...interface{}) ([]models.Match, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		m, errScan := scanMatch(rows)
		if errScan != nil {
			return nil, errScan
		}
		matches = append(matches, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	refs := make([]*models.Match, len(matches))
	for i := range matches {
		refs[i] = &matches[i]
	}
	if err := r.attachSides(ctx, executor, refs); err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Match, error) {
	return r.listMatches(ctx, r.getExecutor(exec),
		`SELECT `+matchColumns+` FROM matches WHERE tournament_id = $1 ORDER BY order_index, id`,
		tournamentID)
}

func (r *postgresMatchRepository) ListByTournaments(ctx context.Context, exec SQLExecutor, tournamentIDs []int) (map[int][]models.Match, error) {
	if len(tournamentIDs) == 0 {
		return map[int][]models.Match{}, nil
	}
	matches, err := r.listMatches(ctx, r.getExecutor(exec),
		`SELECT `+matchColumns+` FROM matches WHERE tournament_id = ANY($1) ORDER BY tournament_id, order_index, id`,
		pq.Array(tournamentIDs))
	if err != nil {
		return nil, err
	}
	byTournament := make(map[int][]models.Match, len(tournamentIDs))
	for _, m := range matches {
		if m.TournamentID == nil {
			continue
		}
		byTournament[*m.TournamentID] = append(byTournament[*m.TournamentID], m)
	}
	return byTournament, nil
}

func (r *postgresMatchRepository) ListFriendlies(ctx context.Context, exec SQLExecutor) ([]models.Match, error) {
	return r.listMatches(ctx, r.getExecutor(exec),
		`SELECT `+matchColumns+` FROM matches WHERE tournament_id IS NULL ORDER BY played_on, id`)
}

// attachSides loads sides and lineups for the given matches in two queries.
func (r *postgresMatchRepository) attachSides(ctx context.Context, executor SQLExecutor, matches []*models.Match) error {
	if len(matches) == 0 {
		return nil
	}
	byID := make(map[int]*models.Match, len(matches))
	matchIDs := make([]int, 0, len(matches))
	for _, m := range matches {
		byID[m.ID] = m
		matchIDs = append(matchIDs, m.ID)
	}

	rows, err := executor.QueryContext(ctx,
		`SELECT id, match_id, side, club_id, goals FROM match_sides WHERE match_id = ANY($1) ORDER BY match_id, side`,
		pq.Array(matchIDs))
	if err != nil {
		return err
	}
	defer rows.Close()

	sideIDs := make([]int, 0, len(matches)*2)
	for rows.Next() {
		var s models.MatchSide
		if err := rows.Scan(&s.ID, &s.MatchID, &s.Side, &s.ClubID, &s.Goals); err != nil {
			return err
		}
		m := byID[s.MatchID]
		m.Sides = append(m.Sides, s)
		sideIDs = append(sideIDs, s.ID)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(sideIDs) == 0 {
		return nil
	}

	prows, err := executor.QueryContext(ctx, `
		SELECT msp.match_side_id, p.id, p.display_name, p.created_at, p.avatar_key
		FROM match_side_players msp
		JOIN players p ON p.id = msp.player_id
		WHERE msp.match_side_id = ANY($1)
		ORDER BY msp.match_side_id, p.display_name`,
		pq.Array(sideIDs))
	if err != nil {
		return err
	}
	defer prows.Close()

	// Lineups are assigned in a separate pass once every side row has been
	// appended. Holding a pointer into m.Sides across appends is unsafe
	// because append may reallocate the backing array.
	playersBySide := make(map[int][]models.Player, len(sideIDs))
	for prows.Next() {
		var sideID int
		var p models.Player
		if err := prows.Scan(&sideID, &p.ID, &p.DisplayName, &p.CreatedAt, &p.AvatarKey); err != nil {
			return err
		}
		playersBySide[sideID] = append(playersBySide[sideID], p)
	}
	if err := prows.Err(); err != nil {
		return err
	}

	for _, m := range matches {
		for i := range m.Sides {
			m.Sides[i].Players = playersBySide[m.Sides[i].ID]
		}
	}
	return nil
}

func (r *postgresMatchRepository) UpdateScore(ctx context.Context, exec SQLExecutor, matchID, goalsA, goalsB int) error {
	executor := r.getExecutor(exec)
	for _, upd := range []struct {
		side  models.SideLabel
		goals int
	}{{models.SideA, goalsA}, {models.SideB, goalsB}} {
		result, err := executor.ExecContext(ctx,
			`UPDATE match_sides SET goals = $1 WHERE match_id = $2 AND side = $3`,
			upd.goals, matchID, upd.side)
		if err != nil {
			return err
		}
		if err := checkAffectedRows(result, ErrMatchSideNotFound); err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresMatchRepository) UpdateState(ctx context.Context, exec SQLExecutor, matchID int, state models.MatchState) error {
	executor := r.getExecutor(exec)
	var query string
	args := []interface{}{state, time.Now(), matchID}
	switch state {
	case models.MatchStatePlaying:
		query = `UPDATE matches SET state = $1, started_at = $2 WHERE id = $3`
	case models.MatchStateFinished:
		query = `UPDATE matches SET state = $1, finished_at = $2 WHERE id = $3`
	default:
		query = `UPDATE matches SET state = $1, started_at = NULL, finished_at = NULL WHERE id = $2`
		args = []interface{}{state, matchID}
	}
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM matches WHERE tournament_id = $1`, tournamentID)
	return err
}
