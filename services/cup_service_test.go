package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fifanights/cup-tracker/models"
)

func TestLoadCupDefsEmptyPath(t *testing.T) {
	defs, err := LoadCupDefs("")
	if err != nil {
		t.Fatalf("LoadCupDefs: %v", err)
	}
	if len(defs) != 1 || defs[0].Key != "fifa-nights-cup" {
		t.Fatalf("expected the default cup, got %+v", defs)
	}
}

func writeCupsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cups.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing cups file: %v", err)
	}
	return path
}

func TestLoadCupDefsFromFile(t *testing.T) {
	path := writeCupsFile(t, `[
		{"key": "friday-cup", "name": "Friday Cup", "initial_owner_id": 3},
		{"key": "summer-cup", "name": "Summer Cup", "since_date": "2025-06-01T00:00:00Z"}
	]`)

	defs, err := LoadCupDefs(path)
	if err != nil {
		t.Fatalf("LoadCupDefs: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("expected 2 cups, got %d", len(defs))
	}
	if defs[0].Key != "friday-cup" || defs[0].InitialOwnerID != 3 {
		t.Errorf("first cup parsed wrong: %+v", defs[0])
	}
	if defs[1].SinceDate == nil || defs[1].SinceDate.Year() != 2025 {
		t.Errorf("since_date parsed wrong: %+v", defs[1])
	}
}

func TestLoadCupDefsRejectsDuplicatesAndBlanks(t *testing.T) {
	dup := writeCupsFile(t, `[
		{"key": "cup", "name": "Cup"},
		{"key": "cup", "name": "Cup Again"}
	]`)
	if _, err := LoadCupDefs(dup); err == nil {
		t.Error("expected an error for duplicate keys")
	}

	blank := writeCupsFile(t, `[{"key": "", "name": "Nameless"}]`)
	if _, err := LoadCupDefs(blank); err == nil {
		t.Error("expected an error for a blank key")
	}
}

func cupFixtureTournament(id int, day int, winnerID, loserID int) (models.Tournament, []models.Match) {
	date := time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC)
	t := models.Tournament{
		ID:        id,
		Name:      "night",
		Mode:      models.Mode1v1,
		Status:    models.TournamentStatusDone,
		Date:      date,
		CreatedAt: date,
		Players: []models.Player{
			{ID: winnerID, DisplayName: "w"},
			{ID: loserID, DisplayName: "l"},
		},
	}
	matches := []models.Match{{
		ID:           id * 100,
		TournamentID: &t.ID,
		State:        models.MatchStateFinished,
		Sides: []models.MatchSide{
			{Side: models.SideA, Goals: 2, Players: []models.Player{{ID: winnerID, DisplayName: "w"}}},
			{Side: models.SideB, Goals: 0, Players: []models.Player{{ID: loserID, DisplayName: "l"}}},
		},
	}}
	return t, matches
}

func TestDeriveForSinceDateFilter(t *testing.T) {
	// Player 2 wins an early tournament, player 3 a later one. A cup that
	// only counts from day 10 never sees the first handover.
	t1, m1 := cupFixtureTournament(1, 1, 2, 1)
	t2, m2 := cupFixtureTournament(2, 15, 3, 2)
	tournaments := []models.Tournament{t1, t2}
	byTournament := map[int][]models.Match{1: m1, 2: m2}

	since := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	def := models.CupDef{Key: "late", Name: "Late Cup", SinceDate: &since, InitialOwnerID: 2}

	result := deriveFor(def, tournaments, byTournament)
	if result.OwnerID != 3 {
		t.Fatalf("expected owner 3, got %d", result.OwnerID)
	}
	if len(result.History) != 1 {
		t.Fatalf("expected 1 transfer, got %d", len(result.History))
	}
	if result.History[0].TournamentID != 2 {
		t.Errorf("transfer should come from tournament 2, got %d", result.History[0].TournamentID)
	}

	all := models.CupDef{Key: "all", Name: "All Time Cup", InitialOwnerID: 1}
	full := deriveFor(all, tournaments, byTournament)
	if len(full.History) != 2 {
		t.Fatalf("expected 2 transfers without since_date, got %d", len(full.History))
	}
	if full.OwnerID != 3 {
		t.Errorf("expected final owner 3, got %d", full.OwnerID)
	}
}
