package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fifanights/cup-tracker/models"
	"github.com/fifanights/cup-tracker/repositories"
	"github.com/fifanights/cup-tracker/stats"
)

// CupView pairs a trophy definition with its derived state.
type CupView struct {
	Def    models.CupDef   `json:"def"`
	Result stats.CupResult `json:"result"`
}

// OwnerQuery asks who held a cup just before a reference point: an exact
// tournament id, a date, or neither (current owner).
type OwnerQuery struct {
	TournamentID int
	Date         *time.Time
}

type CupService interface {
	ListDefs() []models.CupDef
	GetCup(ctx context.Context, key string) (*CupView, error)
	AllCups(ctx context.Context) ([]CupView, error)
	OwnerBefore(ctx context.Context, key string, q OwnerQuery) (*int, error)
}

type cupService struct {
	defs           []models.CupDef
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
	logger         *slog.Logger
}

// defaultCupDefs is used when no cups config file is configured.
var defaultCupDefs = []models.CupDef{
	{Key: "fifa-nights-cup", Name: "FIFA Nights Cup"},
}

// LoadCupDefs reads trophy definitions from a JSON file. An empty path
// yields the built-in default cup.
func LoadCupDefs(path string) ([]models.CupDef, error) {
	if path == "" {
		return defaultCupDefs, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cups config %s: %w", path, err)
	}
	var defs []models.CupDef
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("failed to parse cups config %s: %w", path, err)
	}
	if len(defs) == 0 {
		return defaultCupDefs, nil
	}
	seen := make(map[string]bool, len(defs))
	for _, d := range defs {
		if d.Key == "" || d.Name == "" {
			return nil, fmt.Errorf("cups config %s: every cup needs a key and a name", path)
		}
		if seen[d.Key] {
			return nil, fmt.Errorf("cups config %s: duplicate cup key %q", path, d.Key)
		}
		seen[d.Key] = true
	}
	return defs, nil
}

func NewCupService(
	defs []models.CupDef,
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	logger *slog.Logger,
) CupService {
	return &cupService{
		defs:           defs,
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
		logger:         logger,
	}
}

func (s *cupService) ListDefs() []models.CupDef {
	out := make([]models.CupDef, len(s.defs))
	copy(out, s.defs)
	return out
}

func (s *cupService) defByKey(key string) (*models.CupDef, error) {
	for i := range s.defs {
		if s.defs[i].Key == key {
			return &s.defs[i], nil
		}
	}
	return nil, ErrCupNotFound
}

// loadDone fetches every completed tournament with its roster and matches.
// The derivation needs rosters to decide whether the cup holder entered.
func (s *cupService) loadDone(ctx context.Context) ([]models.Tournament, map[int][]models.Match, error) {
	tournaments, err := s.tournamentRepo.List(ctx, nil,
		[]models.TournamentStatus{models.TournamentStatusDone})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list completed tournaments: %w", err)
	}
	ids := make([]int, len(tournaments))
	for i := range tournaments {
		ids[i] = tournaments[i].ID
	}

	var byTournament map[int][]models.Match
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		byTournament, err = s.matchRepo.ListByTournaments(gctx, nil, ids)
		if err != nil {
			return fmt.Errorf("failed to list tournament matches: %w", err)
		}
		return nil
	})
	for i := range tournaments {
		i := i
		g.Go(func() error {
			players, err := s.tournamentRepo.ListPlayers(gctx, nil, tournaments[i].ID)
			if err != nil {
				return fmt.Errorf("failed to list roster for tournament %d: %w", tournaments[i].ID, err)
			}
			tournaments[i].Players = players
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return tournaments, byTournament, nil
}

func deriveFor(def models.CupDef, tournaments []models.Tournament, byTournament map[int][]models.Match) stats.CupResult {
	counted := tournaments
	if def.SinceDate != nil {
		counted = nil
		for _, t := range tournaments {
			if t.Date.Before(*def.SinceDate) {
				continue
			}
			counted = append(counted, t)
		}
	}
	return stats.DeriveCup(counted, byTournament, def.InitialOwnerID)
}

func (s *cupService) GetCup(ctx context.Context, key string) (*CupView, error) {
	def, err := s.defByKey(key)
	if err != nil {
		return nil, err
	}
	tournaments, byTournament, err := s.loadDone(ctx)
	if err != nil {
		return nil, err
	}
	return &CupView{Def: *def, Result: deriveFor(*def, tournaments, byTournament)}, nil
}

// AllCups derives every configured trophy over one shared tournament load,
// one goroutine per cup.
func (s *cupService) AllCups(ctx context.Context) ([]CupView, error) {
	tournaments, byTournament, err := s.loadDone(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]CupView, len(s.defs))
	g, _ := errgroup.WithContext(ctx)
	for i, def := range s.defs {
		i, def := i, def
		g.Go(func() error {
			views[i] = CupView{Def: def, Result: deriveFor(def, tournaments, byTournament)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return views, nil
}

// OwnerBefore answers "who held the cup going into this tournament" (or
// date). A nil return means nobody is known to have held it yet.
func (s *cupService) OwnerBefore(ctx context.Context, key string, q OwnerQuery) (*int, error) {
	view, err := s.GetCup(ctx, key)
	if err != nil {
		return nil, err
	}
	var seed *int
	if view.Def.InitialOwnerID != 0 {
		owner := view.Def.InitialOwnerID
		seed = &owner
	}
	return stats.OwnerBefore(view.Result.Timeline(), seed, stats.Reference{
		TournamentID: q.TournamentID,
		Date:         q.Date,
	}), nil
}
