package repositories

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/fifanights/cup-tracker/models"
)

// scriptedResult is one result set returned for one query, in order.
type scriptedResult struct {
	columns []string
	rows    [][]driver.Value
}

type scriptedDriver struct {
	results []scriptedResult
}

func (d *scriptedDriver) Open(name string) (driver.Conn, error) {
	return &scriptedConn{driver: d}, nil
}

type scriptedConn struct {
	driver *scriptedDriver
}

func (c *scriptedConn) Prepare(query string) (driver.Stmt, error) {
	return nil, errors.New("prepare not supported")
}

func (c *scriptedConn) Close() error { return nil }

func (c *scriptedConn) Begin() (driver.Tx, error) {
	return nil, errors.New("transactions not supported")
}

func (c *scriptedConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	if len(c.driver.results) == 0 {
		return nil, io.EOF
	}
	next := c.driver.results[0]
	c.driver.results = c.driver.results[1:]
	return &scriptedRows{result: next}, nil
}

type scriptedRows struct {
	result scriptedResult
	pos    int
}

func (r *scriptedRows) Columns() []string { return r.result.columns }

func (r *scriptedRows) Close() error { return nil }

func (r *scriptedRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.result.rows) {
		return io.EOF
	}
	copy(dest, r.result.rows[r.pos])
	r.pos++
	return nil
}

func openScriptedDB(t *testing.T, name string, results []scriptedResult) *sql.DB {
	t.Helper()
	sql.Register(name, &scriptedDriver{results: results})
	db, err := sql.Open(name, "")
	if err != nil {
		t.Fatalf("open scripted db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

var (
	matchColumnNames = []string{"id", "tournament_id", "leg", "order_index", "state", "mode", "played_on", "started_at", "finished_at"}
	sideColumnNames  = []string{"id", "match_id", "side", "club_id", "goals"}
	lineupColumns    = []string{"match_side_id", "id", "display_name", "created_at", "avatar_key"}
)

// Lineups for side A must survive the append of side B to Match.Sides.
func TestGetByIDKeepsLineupsOnBothSides(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	db := openScriptedDB(t, "match_repo_get_by_id", []scriptedResult{
		{
			columns: matchColumnNames,
			rows: [][]driver.Value{
				{int64(7), nil, int64(1), int64(0), "finished", nil, nil, nil, nil},
			},
		},
		{
			columns: sideColumnNames,
			rows: [][]driver.Value{
				{int64(101), int64(7), "A", nil, int64(2)},
				{int64(102), int64(7), "B", nil, int64(1)},
			},
		},
		{
			columns: lineupColumns,
			rows: [][]driver.Value{
				{int64(101), int64(1), "Alice", created, nil},
				{int64(102), int64(2), "Bob", created, nil},
			},
		},
	})

	repo := NewPostgresMatchRepository(db)
	m, err := repo.GetByID(context.Background(), nil, 7)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(m.Sides) != 2 {
		t.Fatalf("sides = %d, want 2", len(m.Sides))
	}

	sideA := m.SideBy(models.SideA)
	if sideA == nil {
		t.Fatal("side A missing")
	}
	if len(sideA.Players) != 1 || sideA.Players[0].DisplayName != "Alice" {
		t.Errorf("side A players = %+v, want Alice", sideA.Players)
	}

	sideB := m.SideBy(models.SideB)
	if sideB == nil {
		t.Fatal("side B missing")
	}
	if len(sideB.Players) != 1 || sideB.Players[0].DisplayName != "Bob" {
		t.Errorf("side B players = %+v, want Bob", sideB.Players)
	}
}

func TestListByTournamentKeepsLineupsAcrossMatches(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tournamentID := int64(3)
	db := openScriptedDB(t, "match_repo_list_by_tournament", []scriptedResult{
		{
			columns: matchColumnNames,
			rows: [][]driver.Value{
				{int64(7), tournamentID, int64(1), int64(0), "finished", "1v1", nil, nil, nil},
				{int64(8), tournamentID, int64(1), int64(1), "finished", "1v1", nil, nil, nil},
			},
		},
		{
			columns: sideColumnNames,
			rows: [][]driver.Value{
				{int64(101), int64(7), "A", nil, int64(2)},
				{int64(102), int64(7), "B", nil, int64(1)},
				{int64(103), int64(8), "A", nil, int64(0)},
				{int64(104), int64(8), "B", nil, int64(0)},
			},
		},
		{
			columns: lineupColumns,
			rows: [][]driver.Value{
				{int64(101), int64(1), "Alice", created, nil},
				{int64(102), int64(2), "Bob", created, nil},
				{int64(103), int64(2), "Bob", created, nil},
				{int64(104), int64(1), "Alice", created, nil},
			},
		},
	})

	repo := NewPostgresMatchRepository(db)
	matches, err := repo.ListByTournament(context.Background(), nil, 3)
	if err != nil {
		t.Fatalf("ListByTournament: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("matches = %d, want 2", len(matches))
	}

	for i, want := range []struct{ a, b string }{{"Alice", "Bob"}, {"Bob", "Alice"}} {
		sideA := matches[i].SideBy(models.SideA)
		sideB := matches[i].SideBy(models.SideB)
		if sideA == nil || sideB == nil {
			t.Fatalf("match %d missing a side", matches[i].ID)
		}
		if len(sideA.Players) != 1 || sideA.Players[0].DisplayName != want.a {
			t.Errorf("match %d side A players = %+v, want %s", matches[i].ID, sideA.Players, want.a)
		}
		if len(sideB.Players) != 1 || sideB.Players[0].DisplayName != want.b {
			t.Errorf("match %d side B players = %+v, want %s", matches[i].ID, sideB.Players, want.b)
		}
	}
}
