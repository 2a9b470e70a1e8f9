package stats

import (
	"testing"

	"github.com/fifanights/cup-tracker/models"
)

func TestCompareRanks_LiveReorder(t *testing.T) {
	roster := []models.Player{alice, bob, carol}
	matches := []models.Match{
		// Finished: Alice beats Bob 2-0.
		match(1, models.MatchStateFinished, []models.Player{alice}, 2, []models.Player{bob}, 0),
		// In progress: Bob leads Carol 1-0.
		match(2, models.MatchStatePlaying, []models.Player{bob}, 1, []models.Player{carol}, 0),
	}

	// Base (finished only): Alice 3pts gd+2, Carol 0pts gd0, Bob 0pts gd-2
	// -> positions Alice 0, Carol 1, Bob 2.
	base := Aggregate(matches, roster, ModeFinished)
	basePos := Positions(base)
	if basePos[alice.ID] != 0 || basePos[carol.ID] != 1 || basePos[bob.ID] != 2 {
		t.Fatalf("base positions = %v", basePos)
	}

	// Live adds Bob's in-progress win: Alice 3pts gd+2, Bob 3pts gd-1,
	// Carol 0pts gd-1 -> positions Alice 0, Bob 1, Carol 2.
	deltas := CompareRanks(matches, roster)

	if d := deltas[alice.ID]; d.Delta != 0 || d.Unranked {
		t.Errorf("alice delta = %+v, want unchanged", d)
	}
	if d := deltas[bob.ID]; d.Delta != 1 || d.Unranked {
		t.Errorf("bob delta = %+v, want up 1", d)
	}
	if d := deltas[carol.ID]; d.Delta != -1 || d.Unranked {
		t.Errorf("carol delta = %+v, want down 1", d)
	}
}

func TestCompareRanks_UnrankedWithoutBasePosition(t *testing.T) {
	// Bob appears only through an in-progress match; the roster is Alice
	// alone, so Bob has no base row and therefore no base position.
	roster := []models.Player{alice}
	matches := []models.Match{
		match(1, models.MatchStatePlaying, []models.Player{alice}, 0, []models.Player{bob}, 1),
	}

	deltas := CompareRanks(matches, roster)

	if d, ok := deltas[bob.ID]; !ok || !d.Unranked {
		t.Errorf("bob delta = %+v (ok=%v), want unranked", d, ok)
	}
	// Alice is in the roster, so she holds a base position even with no
	// finished matches.
	if d := deltas[alice.ID]; d.Unranked {
		t.Errorf("alice delta = %+v, want ranked", d)
	}
}

func TestCompareRanks_NoMatchesAllUnchanged(t *testing.T) {
	roster := []models.Player{alice, bob}

	deltas := CompareRanks(nil, roster)

	for id, d := range deltas {
		if d.Delta != 0 || d.Unranked {
			t.Errorf("player %d delta = %+v, want unchanged", id, d)
		}
	}
	if len(deltas) != 2 {
		t.Errorf("deltas len = %d, want 2", len(deltas))
	}
}
