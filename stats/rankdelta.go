package stats

import "github.com/fifanights/cup-tracker/models"

// RankDelta describes a player's movement between finalized and live
// standings. Positive Delta = moved up, negative = moved down, zero =
// unchanged. Unranked means the player appears in the live table only
// (no finished match yet, so no base position).
type RankDelta struct {
	Delta    int  `json:"delta"`
	Unranked bool `json:"unranked,omitempty"`
}

// CompareRanks aggregates the same match set twice — finished-only versus
// finished-or-playing — and reports each live player's position change.
// Pure function of its inputs; every call recomputes from scratch.
func CompareRanks(matches []models.Match, roster []models.Player) map[int]RankDelta {
	base := Aggregate(matches, roster, ModeFinished)
	live := Aggregate(matches, roster, ModeFinishedOrPlaying)

	basePos := Positions(base)
	deltas := make(map[int]RankDelta, len(live))
	for livePos, r := range live {
		bp, ok := basePos[r.PlayerID]
		if !ok {
			deltas[r.PlayerID] = RankDelta{Unranked: true}
			continue
		}
		deltas[r.PlayerID] = RankDelta{Delta: bp - livePos}
	}
	return deltas
}
