package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fifanights/cup-tracker/models"
	"github.com/fifanights/cup-tracker/repositories"
	"github.com/fifanights/cup-tracker/stats"
)

// Scope selects which matches feed a statistics query.
type Scope string

const (
	ScopeTournaments Scope = "tournaments"
	ScopeFriendlies  Scope = "friendlies"
	ScopeBoth        Scope = "both"
)

// ParseScope maps a query-string value to a Scope, defaulting to both.
func ParseScope(raw string) (Scope, error) {
	switch raw {
	case "", string(ScopeBoth):
		return ScopeBoth, nil
	case string(ScopeTournaments):
		return ScopeTournaments, nil
	case string(ScopeFriendlies):
		return ScopeFriendlies, nil
	}
	return "", fmt.Errorf("%w: unknown scope %q", ErrValidationFailed, raw)
}

// LeaderboardEntry is one player's line in the overview: the aggregate row
// plus rank and recent form.
type LeaderboardEntry struct {
	Rank        int       `json:"rank"`
	Row         stats.Row `json:"row"`
	FormPoints  []int     `json:"form_points"`
	FormAverage float64   `json:"form_average"`
}

type LeaderboardView struct {
	Scope   Scope              `json:"scope"`
	FormN   int                `json:"form_n"`
	Entries []LeaderboardEntry `json:"entries"`
}

// PlayerStreaksView is the full streak picture for one player.
type PlayerStreaksView struct {
	PlayerID int                            `json:"player_id"`
	Name     string                         `json:"name"`
	Current  map[stats.Category]*stats.Run  `json:"current"`
	Records  map[stats.Category][]stats.Run `json:"records"`
	Badges   []stats.StreakBadge            `json:"badges"`
}

type PlayerStatsView struct {
	Scope   Scope             `json:"scope"`
	Row     stats.Row         `json:"row"`
	Rank    int               `json:"rank"`
	Form    []int             `json:"form_points"`
	Streaks PlayerStreaksView `json:"streaks"`
}

// HeadToHeadReport wraps the rivalry report with the query scope.
type HeadToHeadReport struct {
	Scope       Scope     `json:"scope"`
	GeneratedAt time.Time `json:"generated_at"`
	*stats.HeadToHeadView
}

type StatsService interface {
	Overview(ctx context.Context, scope Scope, formN int) (*LeaderboardView, error)
	PlayerStats(ctx context.Context, playerID int, scope Scope) (*PlayerStatsView, error)
	Streaks(ctx context.Context, scope Scope, mode *models.TournamentMode, playerID *int, limit int) ([]PlayerStreaksView, error)
	HeadToHead(ctx context.Context, scope Scope, playerID *int, limit int, order stats.H2HOrder) (*HeadToHeadReport, error)
}

type statsService struct {
	playerRepo     repositories.PlayerRepository
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
	logger         *slog.Logger
	badgeOpts      stats.BadgeOptions
}

func NewStatsService(
	playerRepo repositories.PlayerRepository,
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	logger *slog.Logger,
) StatsService {
	return &statsService{
		playerRepo:     playerRepo,
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
		logger:         logger,
		badgeOpts:      stats.BadgeOptions{},
	}
}

// snapshot is everything a statistics query needs, loaded once per request.
type snapshot struct {
	players             []models.Player
	tournaments         []models.Tournament
	matchesByTournament map[int][]models.Match
	friendlies          []models.Match
}

// loadSnapshot fetches players, tournaments with matches, and friendlies
// concurrently. Tournaments arrive in (date, created_at, id) order and
// matches within each in (order_index, id) order; the chronology below
// depends on both.
func (s *statsService) loadSnapshot(ctx context.Context, scope Scope) (*snapshot, error) {
	snap := &snapshot{matchesByTournament: map[int][]models.Match{}}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		players, err := s.playerRepo.List(gctx)
		if err != nil {
			return fmt.Errorf("failed to list players: %w", err)
		}
		snap.players = players
		return nil
	})

	if scope != ScopeFriendlies {
		g.Go(func() error {
			tournaments, err := s.tournamentRepo.List(gctx, nil,
				[]models.TournamentStatus{models.TournamentStatusRunning, models.TournamentStatusDone})
			if err != nil {
				return fmt.Errorf("failed to list tournaments: %w", err)
			}
			ids := make([]int, len(tournaments))
			for i := range tournaments {
				ids[i] = tournaments[i].ID
			}
			byTournament, err := s.matchRepo.ListByTournaments(gctx, nil, ids)
			if err != nil {
				return fmt.Errorf("failed to list tournament matches: %w", err)
			}
			snap.tournaments = tournaments
			snap.matchesByTournament = byTournament
			return nil
		})
	}

	if scope != ScopeTournaments {
		g.Go(func() error {
			friendlies, err := s.matchRepo.ListFriendlies(gctx, nil)
			if err != nil {
				return fmt.Errorf("failed to list friendlies: %w", err)
			}
			snap.friendlies = friendlies
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

// chronology merges tournament and friendly matches into one globally
// ordered slice, and returns a date resolver for it. Tournament matches
// sort by tournament date then creation then fixture order; friendlies by
// the day they were played. Kickoff timestamps are deliberately ignored.
func (s *snapshot) chronology() ([]models.Match, func(*models.Match) time.Time) {
	type keyed struct {
		match models.Match
		date  time.Time
		tSort time.Time
		tID   int
		order int
	}

	dates := make(map[int]time.Time, len(s.tournaments))
	entries := make([]keyed, 0, len(s.friendlies))
	for _, t := range s.tournaments {
		dates[t.ID] = t.Date
		for _, m := range s.matchesByTournament[t.ID] {
			entries = append(entries, keyed{
				match: m, date: t.Date, tSort: t.CreatedAt, tID: t.ID, order: m.OrderIndex,
			})
		}
	}
	for _, m := range s.friendlies {
		var d time.Time
		if m.PlayedOn != nil {
			d = *m.PlayedOn
		}
		entries = append(entries, keyed{match: m, date: d, order: m.OrderIndex})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.date.Equal(b.date) {
			return a.date.Before(b.date)
		}
		if !a.tSort.Equal(b.tSort) {
			return a.tSort.Before(b.tSort)
		}
		if a.tID != b.tID {
			return a.tID < b.tID
		}
		if a.order != b.order {
			return a.order < b.order
		}
		return a.match.ID < b.match.ID
	})

	matches := make([]models.Match, len(entries))
	for i := range entries {
		matches[i] = entries[i].match
	}
	dateOf := func(m *models.Match) time.Time {
		if m.TournamentID != nil {
			return dates[*m.TournamentID]
		}
		if m.PlayedOn != nil {
			return *m.PlayedOn
		}
		return time.Time{}
	}
	return matches, dateOf
}

// filterByMode keeps matches of one side size; tournament matches inherit
// the tournament's mode, friendlies carry their own.
func filterByMode(matches []models.Match, tournaments []models.Tournament, mode models.TournamentMode) []models.Match {
	modes := make(map[int]models.TournamentMode, len(tournaments))
	for _, t := range tournaments {
		modes[t.ID] = t.Mode
	}
	out := make([]models.Match, 0, len(matches))
	for _, m := range matches {
		if m.TournamentID != nil {
			if modes[*m.TournamentID] == mode {
				out = append(out, m)
			}
			continue
		}
		if m.Mode != nil && *m.Mode == mode {
			out = append(out, m)
		}
	}
	return out
}

func (s *statsService) Overview(ctx context.Context, scope Scope, formN int) (*LeaderboardView, error) {
	if formN <= 0 {
		formN = 5
	}
	snap, err := s.loadSnapshot(ctx, scope)
	if err != nil {
		return nil, err
	}

	matches, _ := snap.chronology()
	rows := stats.Aggregate(matches, snap.players, stats.ModeFinished)
	ranks := stats.CompetitionRanks(rows)
	form := stats.FormPoints(matches, formN)

	entries := make([]LeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		pts := form[row.PlayerID]
		entries = append(entries, LeaderboardEntry{
			Rank:        ranks[row.PlayerID],
			Row:         row,
			FormPoints:  pts,
			FormAverage: stats.FormAverage(pts, formN),
		})
	}
	return &LeaderboardView{Scope: scope, FormN: formN, Entries: entries}, nil
}

func (s *statsService) playerStreaks(p models.Player, outcomes []stats.Outcome) PlayerStreaksView {
	set := stats.ExtractStreaks(outcomes)
	return PlayerStreaksView{
		PlayerID: p.ID,
		Name:     p.DisplayName,
		Current:  set.Current,
		Records:  set.Records,
		Badges:   stats.BuildStreakBadges(set, s.badgeOpts),
	}
}

func (s *statsService) PlayerStats(ctx context.Context, playerID int, scope Scope) (*PlayerStatsView, error) {
	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, ErrPlayerNotFound
	}
	snap, err := s.loadSnapshot(ctx, scope)
	if err != nil {
		return nil, err
	}

	matches, dateOf := snap.chronology()
	rows := stats.Aggregate(matches, snap.players, stats.ModeFinished)
	ranks := stats.CompetitionRanks(rows)
	form := stats.FormPoints(matches, 5)
	outcomes := stats.OutcomesByPlayer(matches, dateOf)

	view := &PlayerStatsView{
		Scope:   scope,
		Rank:    ranks[playerID],
		Form:    form[playerID],
		Streaks: s.playerStreaks(*player, outcomes[playerID]),
	}
	for _, row := range rows {
		if row.PlayerID == playerID {
			view.Row = row
			break
		}
	}
	if view.Row.PlayerID == 0 {
		view.Row = stats.Row{PlayerID: playerID, Name: player.DisplayName}
	}
	return view, nil
}

// Streaks returns the streak picture for every player, best current run
// first. mode narrows to 1v1 or 2v2 matches, playerID to one player;
// limit caps the result.
func (s *statsService) Streaks(ctx context.Context, scope Scope, mode *models.TournamentMode, playerID *int, limit int) ([]PlayerStreaksView, error) {
	snap, err := s.loadSnapshot(ctx, scope)
	if err != nil {
		return nil, err
	}

	matches, dateOf := snap.chronology()
	if mode != nil {
		matches = filterByMode(matches, snap.tournaments, *mode)
	}
	outcomes := stats.OutcomesByPlayer(matches, dateOf)

	players := snap.players
	if playerID != nil {
		players = nil
		for _, p := range snap.players {
			if p.ID == *playerID {
				players = append(players, p)
				break
			}
		}
		if len(players) == 0 {
			return nil, ErrPlayerNotFound
		}
	}

	views := make([]PlayerStreaksView, 0, len(players))
	for _, p := range players {
		views = append(views, s.playerStreaks(p, outcomes[p.ID]))
	}

	best := func(v PlayerStreaksView) int {
		n := 0
		for _, run := range v.Current {
			if run != nil && run.Length > n {
				n = run.Length
			}
		}
		return n
	}
	sort.SliceStable(views, func(i, j int) bool {
		bi, bj := best(views[i]), best(views[j])
		if bi != bj {
			return bi > bj
		}
		return views[i].Name < views[j].Name
	})

	if limit > 0 && len(views) > limit {
		views = views[:limit]
	}
	return views, nil
}

// modeResolver maps a match to its side size: tournament matches inherit
// the tournament's mode, friendlies carry their own.
func modeResolver(tournaments []models.Tournament) func(*models.Match) models.TournamentMode {
	modes := make(map[int]models.TournamentMode, len(tournaments))
	for _, t := range tournaments {
		modes[t.ID] = t.Mode
	}
	return func(m *models.Match) models.TournamentMode {
		if m.TournamentID != nil {
			return modes[*m.TournamentID]
		}
		if m.Mode != nil {
			return *m.Mode
		}
		return ""
	}
}

// HeadToHead builds the rivalry report over the scoped matches. playerID
// additionally fills the per-player sections.
func (s *statsService) HeadToHead(ctx context.Context, scope Scope, playerID *int, limit int, order stats.H2HOrder) (*HeadToHeadReport, error) {
	var player *models.Player
	if playerID != nil {
		p, err := s.playerRepo.GetByID(ctx, *playerID)
		if err != nil {
			return nil, ErrPlayerNotFound
		}
		player = p
	}

	snap, err := s.loadSnapshot(ctx, scope)
	if err != nil {
		return nil, err
	}

	matches, _ := snap.chronology()
	view := stats.HeadToHead(matches, modeResolver(snap.tournaments), stats.HeadToHeadOptions{
		PlayerID: playerID,
		Limit:    limit,
		Order:    order,
	})
	// The engine only learns names from match lineups; a player with no
	// counted matches still gets their real name here.
	if player != nil && view.Player != nil {
		view.Player.Name = player.DisplayName
	}
	return &HeadToHeadReport{Scope: scope, GeneratedAt: time.Now().UTC(), HeadToHeadView: view}, nil
}
