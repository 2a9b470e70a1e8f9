package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fifanights/cup-tracker/models"
	"github.com/fifanights/cup-tracker/realtime"
	"github.com/fifanights/cup-tracker/repositories"
	"github.com/fifanights/cup-tracker/stats"
)

// StandingsView is the standings payload for one tournament. Deltas is
// populated only for the live view and maps player id to rank movement
// against the finished-only baseline.
type StandingsView struct {
	TournamentID int                     `json:"tournament_id"`
	Live         bool                    `json:"live"`
	Rows         []stats.Row             `json:"rows"`
	Ranks        map[int]int             `json:"ranks"`
	Deltas       map[int]stats.RankDelta `json:"deltas,omitempty"`
	// Final carries the rows materialized when the tournament finished.
	Final []models.TournamentStanding `json:"final,omitempty"`
}

type CreateTournamentInput struct {
	Name string
	Mode models.TournamentMode
	Date time.Time
}

type TournamentService interface {
	Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, statuses []models.TournamentStatus) ([]models.Tournament, error)
	Update(ctx context.Context, id int, input CreateTournamentInput) (*models.Tournament, error)
	Delete(ctx context.Context, id int) error

	AddPlayer(ctx context.Context, tournamentID, playerID int) error
	RemovePlayer(ctx context.Context, tournamentID, playerID int) error

	GenerateSchedule(ctx context.Context, tournamentID int, legs int) ([]models.Match, error)
	UpdateStatus(ctx context.Context, tournamentID int, status models.TournamentStatus) (*models.Tournament, error)
	Standings(ctx context.Context, tournamentID int, live bool) (*StandingsView, error)

	AutoUpdateTournamentStatusesByDates(ctx context.Context) error
}

type tournamentService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
	standingRepo   repositories.StandingRepository
	hub            *realtime.Hub
	logger         *slog.Logger
}

func NewTournamentService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	standingRepo repositories.StandingRepository,
	hub *realtime.Hub,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		db:             db,
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
		standingRepo:   standingRepo,
		hub:            hub,
		logger:         logger,
	}
}

func validateTournamentInput(input *CreateTournamentInput) error {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return ErrTournamentNameRequired
	}
	switch input.Mode {
	case models.Mode1v1, models.Mode2v2:
	default:
		return ErrTournamentInvalidMode
	}
	if input.Date.IsZero() {
		input.Date = time.Now()
	}
	return nil
}

func (s *tournamentService) Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	if err := validateTournamentInput(&input); err != nil {
		return nil, err
	}
	t := &models.Tournament{
		Name:   input.Name,
		Mode:   input.Mode,
		Status: models.TournamentStatusDraft,
		Date:   input.Date,
	}
	if err := s.tournamentRepo.Create(ctx, nil, t); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, ErrTournamentNameConflict
		}
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	s.hub.Broadcast(realtime.GlobalRoom, "tournament_created", t)
	return t, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", id, err)
	}
	if t.Players, err = s.tournamentRepo.ListPlayers(ctx, nil, id); err != nil {
		return nil, fmt.Errorf("failed to list roster for tournament %d: %w", id, err)
	}
	if t.Matches, err = s.matchRepo.ListByTournament(ctx, nil, id); err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %d: %w", id, err)
	}
	return t, nil
}

func (s *tournamentService) List(ctx context.Context, statuses []models.TournamentStatus) ([]models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx, nil, statuses)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return tournaments, nil
}

func (s *tournamentService) Update(ctx context.Context, id int, input CreateTournamentInput) (*models.Tournament, error) {
	if err := validateTournamentInput(&input); err != nil {
		return nil, err
	}
	t, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", id, err)
	}
	if t.Status == models.TournamentStatusDone || t.Status == models.TournamentStatusCanceled {
		return nil, ErrTournamentInvalidStatusTransition
	}

	t.Name = input.Name
	t.Mode = input.Mode
	t.Date = input.Date
	if err := s.tournamentRepo.Update(ctx, nil, t); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, ErrTournamentNameConflict
		}
		return nil, fmt.Errorf("failed to update tournament %d: %w", id, err)
	}
	s.hub.Broadcast(realtime.TournamentRoom(id), "tournament_updated", t)
	return t, nil
}

func (s *tournamentService) Delete(ctx context.Context, id int) error {
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.matchRepo.DeleteByTournament(ctx, tx, id); err != nil {
			return err
		}
		return s.tournamentRepo.Delete(ctx, tx, id)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to delete tournament %d: %w", id, err)
	}
	s.hub.Broadcast(realtime.GlobalRoom, "tournament_deleted", map[string]int{"tournament_id": id})
	return nil
}

// requireDraft loads the tournament and rejects roster or schedule changes
// once it has left the draft status.
func (s *tournamentService) requireDraft(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", id, err)
	}
	if t.Status != models.TournamentStatusDraft {
		return nil, ErrRosterLocked
	}
	return t, nil
}

func (s *tournamentService) AddPlayer(ctx context.Context, tournamentID, playerID int) error {
	if _, err := s.requireDraft(ctx, tournamentID); err != nil {
		return err
	}
	if err := s.tournamentRepo.AddPlayer(ctx, nil, tournamentID, playerID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrRosterPlayerConflict):
			return ErrRosterPlayerConflict
		case errors.Is(err, repositories.ErrTournamentNotFound):
			return ErrPlayerNotFound
		}
		return fmt.Errorf("failed to add player %d to tournament %d: %w", playerID, tournamentID, err)
	}
	s.hub.Broadcast(realtime.TournamentRoom(tournamentID), "roster_changed",
		map[string]int{"tournament_id": tournamentID, "player_id": playerID})
	return nil
}

func (s *tournamentService) RemovePlayer(ctx context.Context, tournamentID, playerID int) error {
	if _, err := s.requireDraft(ctx, tournamentID); err != nil {
		return err
	}
	if err := s.tournamentRepo.RemovePlayer(ctx, nil, tournamentID, playerID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("failed to remove player %d from tournament %d: %w", playerID, tournamentID, err)
	}
	s.hub.Broadcast(realtime.TournamentRoom(tournamentID), "roster_changed",
		map[string]int{"tournament_id": tournamentID, "player_id": playerID})
	return nil
}

// GenerateSchedule replaces any existing fixtures with a full round-robin
// for the current roster. For 1v1 every pair of players meets; for 2v2
// every pair of disjoint two-player teams meets. legs 2 doubles each
// pairing. Only allowed while the tournament is a draft.
func (s *tournamentService) GenerateSchedule(ctx context.Context, tournamentID int, legs int) ([]models.Match, error) {
	t, err := s.requireDraft(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if legs < 1 || legs > 2 {
		legs = 1
	}

	roster, err := s.tournamentRepo.ListPlayers(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster for tournament %d: %w", tournamentID, err)
	}
	minRoster := 2
	if t.Mode == models.Mode2v2 {
		minRoster = 4
	}
	if len(roster) < minRoster {
		return nil, ErrRosterTooSmall
	}

	pairings := buildPairings(roster, t.Mode)
	matches := make([]models.Match, 0, len(pairings)*legs)
	orderIndex := 0
	for leg := 1; leg <= legs; leg++ {
		for _, pair := range pairings {
			home, away := pair[0], pair[1]
			if leg == 2 {
				home, away = away, home
			}
			matches = append(matches, models.Match{
				TournamentID: &t.ID,
				Leg:          leg,
				OrderIndex:   orderIndex,
				State:        models.MatchStateScheduled,
				Sides: []models.MatchSide{
					{Side: models.SideA, Players: home},
					{Side: models.SideB, Players: away},
				},
			})
			orderIndex++
		}
	}

	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.matchRepo.DeleteByTournament(ctx, tx, tournamentID); err != nil {
			return err
		}
		for i := range matches {
			if err := s.matchRepo.Create(ctx, tx, &matches[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to write schedule for tournament %d: %w", tournamentID, err)
	}

	s.logger.Info("schedule generated",
		"tournament_id", tournamentID, "matches", len(matches), "legs", legs)
	s.hub.Broadcast(realtime.TournamentRoom(tournamentID), "schedule_generated",
		map[string]int{"tournament_id": tournamentID, "matches": len(matches)})
	return matches, nil
}

// buildPairings enumerates every fixture once, in roster order.
func buildPairings(roster []models.Player, mode models.TournamentMode) [][2][]models.Player {
	var pairings [][2][]models.Player
	if mode == models.Mode1v1 {
		for i := 0; i < len(roster); i++ {
			for j := i + 1; j < len(roster); j++ {
				pairings = append(pairings, [2][]models.Player{
					{roster[i]}, {roster[j]},
				})
			}
		}
		return pairings
	}

	// 2v2: every two-player team, then every pair of disjoint teams.
	var teams [][]models.Player
	for i := 0; i < len(roster); i++ {
		for j := i + 1; j < len(roster); j++ {
			teams = append(teams, []models.Player{roster[i], roster[j]})
		}
	}
	for i := 0; i < len(teams); i++ {
		for j := i + 1; j < len(teams); j++ {
			if teamsOverlap(teams[i], teams[j]) {
				continue
			}
			pairings = append(pairings, [2][]models.Player{teams[i], teams[j]})
		}
	}
	return pairings
}

func teamsOverlap(a, b []models.Player) bool {
	for _, pa := range a {
		for _, pb := range b {
			if pa.ID == pb.ID {
				return true
			}
		}
	}
	return false
}

var allowedStatusTransitions = map[models.TournamentStatus][]models.TournamentStatus{
	models.TournamentStatusDraft:   {models.TournamentStatusRunning, models.TournamentStatusCanceled},
	models.TournamentStatusRunning: {models.TournamentStatusDone, models.TournamentStatusCanceled},
}

func statusTransitionAllowed(from, to models.TournamentStatus) bool {
	for _, s := range allowedStatusTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (s *tournamentService) UpdateStatus(ctx context.Context, tournamentID int, status models.TournamentStatus) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", tournamentID, err)
	}
	if t.Status == status {
		return t, nil
	}
	if !statusTransitionAllowed(t.Status, status) {
		return nil, ErrTournamentInvalidStatusTransition
	}

	switch status {
	case models.TournamentStatusRunning:
		matches, err := s.matchRepo.ListByTournament(ctx, nil, tournamentID)
		if err != nil {
			return nil, fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
		}
		if len(matches) == 0 {
			return nil, ErrTournamentHasNoFixtures
		}
		if err := s.tournamentRepo.UpdateStatus(ctx, nil, tournamentID, status); err != nil {
			return nil, fmt.Errorf("failed to update tournament %d status: %w", tournamentID, err)
		}
	case models.TournamentStatusDone:
		if err := s.finishTournament(ctx, t); err != nil {
			return nil, err
		}
	default:
		if err := s.tournamentRepo.UpdateStatus(ctx, nil, tournamentID, status); err != nil {
			return nil, fmt.Errorf("failed to update tournament %d status: %w", tournamentID, err)
		}
	}

	t.Status = status
	s.logger.Info("tournament status changed", "tournament_id", tournamentID, "status", status)
	s.hub.Broadcast(realtime.TournamentRoom(tournamentID), "tournament_status_changed", t)
	s.hub.Broadcast(realtime.GlobalRoom, "tournament_status_changed", t)
	return t, nil
}

// finishTournament materializes final standings and flips the status in one
// transaction, so readers never observe a done tournament without rows.
func (s *tournamentService) finishTournament(ctx context.Context, t *models.Tournament) error {
	matches, err := s.matchRepo.ListByTournament(ctx, nil, t.ID)
	if err != nil {
		return fmt.Errorf("failed to list matches for tournament %d: %w", t.ID, err)
	}
	for i := range matches {
		if matches[i].State != models.MatchStateFinished {
			return ErrTournamentMatchesUnfinished
		}
	}
	roster, err := s.tournamentRepo.ListPlayers(ctx, nil, t.ID)
	if err != nil {
		return fmt.Errorf("failed to list roster for tournament %d: %w", t.ID, err)
	}

	rows := stats.Aggregate(matches, roster, stats.ModeFinished)
	ranks := stats.CompetitionRanks(rows)
	standings := make([]models.TournamentStanding, 0, len(rows))
	for _, row := range rows {
		standings = append(standings, models.TournamentStanding{
			TournamentID:   t.ID,
			PlayerID:       row.PlayerID,
			Points:         row.Points,
			GamesPlayed:    row.Played,
			Wins:           row.Wins,
			Draws:          row.Draws,
			Losses:         row.Losses,
			GoalsFor:       row.GoalsFor,
			GoalsAgainst:   row.GoalsAgainst,
			GoalDifference: row.GoalDiff,
			Rank:           ranks[row.PlayerID],
		})
	}

	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.standingRepo.ReplaceForTournament(ctx, tx, t.ID, standings); err != nil {
			return err
		}
		return s.tournamentRepo.UpdateStatus(ctx, tx, t.ID, models.TournamentStatusDone)
	})
	if err != nil {
		return fmt.Errorf("failed to finish tournament %d: %w", t.ID, err)
	}
	return nil
}

func (s *tournamentService) Standings(ctx context.Context, tournamentID int, live bool) (*StandingsView, error) {
	t, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", tournamentID, err)
	}

	matches, err := s.matchRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
	}
	roster, err := s.tournamentRepo.ListPlayers(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster for tournament %d: %w", tournamentID, err)
	}

	mode := stats.ModeFinished
	if live && t.Status == models.TournamentStatusRunning {
		mode = stats.ModeFinishedOrPlaying
	}
	rows := stats.Aggregate(matches, roster, mode)
	view := &StandingsView{
		TournamentID: tournamentID,
		Live:         mode == stats.ModeFinishedOrPlaying,
		Rows:         rows,
		Ranks:        stats.CompetitionRanks(rows),
	}
	if view.Live {
		view.Deltas = stats.CompareRanks(matches, roster)
	}
	if t.Status == models.TournamentStatusDone {
		final, err := s.standingRepo.ListByTournament(ctx, nil, tournamentID)
		if err != nil {
			return nil, fmt.Errorf("failed to list standings for tournament %d: %w", tournamentID, err)
		}
		view.Final = final
	}
	return view, nil
}

// AutoUpdateTournamentStatusesByDates promotes draft tournaments whose date
// has arrived and which already have fixtures, and finishes running
// tournaments once every match is played. Invoked from the background
// scheduler.
func (s *tournamentService) AutoUpdateTournamentStatusesByDates(ctx context.Context) error {
	tournaments, err := s.tournamentRepo.List(ctx, nil,
		[]models.TournamentStatus{models.TournamentStatusDraft, models.TournamentStatusRunning})
	if err != nil {
		return fmt.Errorf("failed to list tournaments for status sweep: %w", err)
	}

	now := time.Now()
	for i := range tournaments {
		t := &tournaments[i]
		switch t.Status {
		case models.TournamentStatusDraft:
			if t.Date.After(now) {
				continue
			}
			matches, err := s.matchRepo.ListByTournament(ctx, nil, t.ID)
			if err != nil {
				return fmt.Errorf("failed to list matches for tournament %d: %w", t.ID, err)
			}
			if len(matches) == 0 {
				continue
			}
			if _, err := s.UpdateStatus(ctx, t.ID, models.TournamentStatusRunning); err != nil {
				s.logger.Error("auto status update failed",
					"tournament_id", t.ID, "target", models.TournamentStatusRunning, "error", err)
			}
		case models.TournamentStatusRunning:
			matches, err := s.matchRepo.ListByTournament(ctx, nil, t.ID)
			if err != nil {
				return fmt.Errorf("failed to list matches for tournament %d: %w", t.ID, err)
			}
			if len(matches) == 0 {
				continue
			}
			allFinished := true
			for j := range matches {
				if matches[j].State != models.MatchStateFinished {
					allFinished = false
					break
				}
			}
			if !allFinished {
				continue
			}
			if _, err := s.UpdateStatus(ctx, t.ID, models.TournamentStatusDone); err != nil {
				s.logger.Error("auto status update failed",
					"tournament_id", t.ID, "target", models.TournamentStatusDone, "error", err)
			}
		}
	}
	return nil
}
