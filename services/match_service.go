package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fifanights/cup-tracker/models"
	"github.com/fifanights/cup-tracker/realtime"
	"github.com/fifanights/cup-tracker/repositories"
)

// FriendlySideInput is one side of a friendly match being recorded.
type FriendlySideInput struct {
	PlayerIDs []int
	ClubID    *int
	Goals     int
}

type CreateFriendlyInput struct {
	Mode     models.TournamentMode
	PlayedOn time.Time
	SideA    FriendlySideInput
	SideB    FriendlySideInput
}

type MatchService interface {
	GetByID(ctx context.Context, id int) (*models.Match, error)
	UpdateScore(ctx context.Context, matchID, goalsA, goalsB int) (*models.Match, error)
	Start(ctx context.Context, matchID int) (*models.Match, error)
	Finish(ctx context.Context, matchID int) (*models.Match, error)
	Reschedule(ctx context.Context, matchID int) (*models.Match, error)

	CreateFriendly(ctx context.Context, input CreateFriendlyInput) (*models.Match, error)
	ListFriendlies(ctx context.Context) ([]models.Match, error)
}

type matchService struct {
	db         *sql.DB
	matchRepo  repositories.MatchRepository
	playerRepo repositories.PlayerRepository
	hub        *realtime.Hub
	logger     *slog.Logger
}

func NewMatchService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	playerRepo repositories.PlayerRepository,
	hub *realtime.Hub,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		db:         db,
		matchRepo:  matchRepo,
		playerRepo: playerRepo,
		hub:        hub,
		logger:     logger,
	}
}

func (s *matchService) GetByID(ctx context.Context, id int) (*models.Match, error) {
	m, err := s.matchRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %d: %w", id, err)
	}
	return m, nil
}

func (s *matchService) broadcast(m *models.Match, event string) {
	if m.TournamentID != nil {
		s.hub.Broadcast(realtime.TournamentRoom(*m.TournamentID), event, m)
	}
	s.hub.Broadcast(realtime.GlobalRoom, event, m)
}

func (s *matchService) UpdateScore(ctx context.Context, matchID, goalsA, goalsB int) (*models.Match, error) {
	if goalsA < 0 || goalsB < 0 {
		return nil, ErrScoreNegative
	}
	m, err := s.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if m.State == models.MatchStateFinished {
		return nil, ErrMatchNotEditable
	}

	if err := s.matchRepo.UpdateScore(ctx, nil, matchID, goalsA, goalsB); err != nil {
		if errors.Is(err, repositories.ErrMatchSideNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to update score for match %d: %w", matchID, err)
	}
	if a := m.SideBy(models.SideA); a != nil {
		a.Goals = goalsA
	}
	if b := m.SideBy(models.SideB); b != nil {
		b.Goals = goalsB
	}
	s.broadcast(m, "match_score_updated")
	return m, nil
}

func (s *matchService) setState(ctx context.Context, matchID int, from []models.MatchState, to models.MatchState, event string) (*models.Match, error) {
	m, err := s.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	allowed := false
	for _, f := range from {
		if m.State == f {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, ErrMatchNotEditable
	}

	if err := s.matchRepo.UpdateState(ctx, nil, matchID, to); err != nil {
		return nil, fmt.Errorf("failed to set match %d state to %s: %w", matchID, to, err)
	}
	m, err = s.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("match state changed", "match_id", matchID, "state", to)
	s.broadcast(m, event)
	return m, nil
}

func (s *matchService) Start(ctx context.Context, matchID int) (*models.Match, error) {
	return s.setState(ctx, matchID,
		[]models.MatchState{models.MatchStateScheduled}, models.MatchStatePlaying, "match_started")
}

func (s *matchService) Finish(ctx context.Context, matchID int) (*models.Match, error) {
	return s.setState(ctx, matchID,
		[]models.MatchState{models.MatchStateScheduled, models.MatchStatePlaying},
		models.MatchStateFinished, "match_finished")
}

// Reschedule resets a playing match back to scheduled, clearing its
// timestamps. Finished matches stay finished.
func (s *matchService) Reschedule(ctx context.Context, matchID int) (*models.Match, error) {
	return s.setState(ctx, matchID,
		[]models.MatchState{models.MatchStatePlaying}, models.MatchStateScheduled, "match_rescheduled")
}

func sideSize(mode models.TournamentMode) int {
	if mode == models.Mode2v2 {
		return 2
	}
	return 1
}

// CreateFriendly records an already-played match outside any tournament.
// Friendlies are stored finished; their chronology comes from PlayedOn.
func (s *matchService) CreateFriendly(ctx context.Context, input CreateFriendlyInput) (*models.Match, error) {
	switch input.Mode {
	case models.Mode1v1, models.Mode2v2:
	default:
		return nil, ErrTournamentInvalidMode
	}
	if input.PlayedOn.IsZero() {
		return nil, ErrFriendlyNeedsDate
	}
	if input.SideA.Goals < 0 || input.SideB.Goals < 0 {
		return nil, ErrScoreNegative
	}

	size := sideSize(input.Mode)
	if len(input.SideA.PlayerIDs) != size || len(input.SideB.PlayerIDs) != size {
		return nil, ErrFriendlySideInvalid
	}
	seen := make(map[int]bool, size*2)
	for _, id := range append(append([]int{}, input.SideA.PlayerIDs...), input.SideB.PlayerIDs...) {
		if seen[id] {
			return nil, ErrFriendlySideInvalid
		}
		seen[id] = true
	}

	buildSide := func(label models.SideLabel, in FriendlySideInput) (models.MatchSide, error) {
		side := models.MatchSide{Side: label, ClubID: in.ClubID, Goals: in.Goals}
		for _, id := range in.PlayerIDs {
			p, err := s.playerRepo.GetByID(ctx, id)
			if err != nil {
				if errors.Is(err, repositories.ErrPlayerNotFound) {
					return side, ErrPlayerNotFound
				}
				return side, fmt.Errorf("failed to get player %d: %w", id, err)
			}
			side.Players = append(side.Players, *p)
		}
		return side, nil
	}

	sideA, err := buildSide(models.SideA, input.SideA)
	if err != nil {
		return nil, err
	}
	sideB, err := buildSide(models.SideB, input.SideB)
	if err != nil {
		return nil, err
	}

	playedOn := input.PlayedOn
	mode := input.Mode
	m := &models.Match{
		State:    models.MatchStateFinished,
		Mode:     &mode,
		PlayedOn: &playedOn,
		Sides:    []models.MatchSide{sideA, sideB},
	}
	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.matchRepo.Create(ctx, tx, m); err != nil {
			return err
		}
		return s.matchRepo.UpdateState(ctx, tx, m.ID, models.MatchStateFinished)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create friendly match: %w", err)
	}
	m.State = models.MatchStateFinished

	s.logger.Info("friendly recorded", "match_id", m.ID, "mode", mode, "played_on", playedOn)
	s.hub.Broadcast(realtime.GlobalRoom, "friendly_recorded", m)
	return m, nil
}

func (s *matchService) ListFriendlies(ctx context.Context) ([]models.Match, error) {
	matches, err := s.matchRepo.ListFriendlies(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list friendly matches: %w", err)
	}
	return matches, nil
}
