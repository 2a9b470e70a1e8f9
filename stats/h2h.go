package stats

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/fifanights/cup-tracker/models"
)

// H2HOrder selects the primary sort key of a head-to-head report.
type H2HOrder string

const (
	// OrderRivalry ranks close, frequently played matchups first.
	OrderRivalry H2HOrder = "rivalry"
	// OrderPlayed ranks by raw match count, closeness as tiebreaker.
	OrderPlayed H2HOrder = "played"
)

// ParseH2HOrder normalizes a query-string value; anything unknown falls
// back to OrderRivalry.
func ParseH2HOrder(raw string) H2HOrder {
	if H2HOrder(raw) == OrderPlayed {
		return OrderPlayed
	}
	return OrderRivalry
}

// PlayerRef names a player inside a head-to-head row.
type PlayerRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Rivalry is the aggregate of every counted match two players played on
// opposite sides. A is always the lower player id, so the pair has one
// canonical orientation regardless of which side either player was on.
type Rivalry struct {
	A              PlayerRef `json:"a"`
	B              PlayerRef `json:"b"`
	Played         int       `json:"played"`
	AWins          int       `json:"a_wins"`
	Draws          int       `json:"draws"`
	BWins          int       `json:"b_wins"`
	AGoalsFor      int       `json:"a_gf"`
	AGoalsAgainst  int       `json:"a_ga"`
	BGoalsFor      int       `json:"b_gf"`
	BGoalsAgainst  int       `json:"b_ga"`
	WinShareA      float64   `json:"win_share_a"`
	RivalryScore   float64   `json:"rivalry_score"`
	DominanceScore float64   `json:"dominance_score"`
}

// Duo is a 2v2 teammate pairing: both players on the same side.
type Duo struct {
	P1             PlayerRef `json:"p1"`
	P2             PlayerRef `json:"p2"`
	Played         int       `json:"played"`
	Wins           int       `json:"wins"`
	Draws          int       `json:"draws"`
	Losses         int       `json:"losses"`
	GoalsFor       int       `json:"gf"`
	GoalsAgainst   int       `json:"ga"`
	GoalDiff       int       `json:"gd"`
	Points         int       `json:"pts"`
	PointsPerMatch float64   `json:"pts_per_match"`
	WinRate        float64   `json:"win_rate"`
}

// TeamRivalry is a 2v2 duo-versus-duo aggregate. Team1 is the
// lexicographically smaller duo key.
type TeamRivalry struct {
	Team1             [2]PlayerRef `json:"team1"`
	Team2             [2]PlayerRef `json:"team2"`
	Played            int          `json:"played"`
	Team1Wins         int          `json:"team1_wins"`
	Draws             int          `json:"draws"`
	Team2Wins         int          `json:"team2_wins"`
	Team1GoalsFor     int          `json:"team1_gf"`
	Team1GoalsAgainst int          `json:"team1_ga"`
	Team2GoalsFor     int          `json:"team2_gf"`
	Team2GoalsAgainst int          `json:"team2_ga"`
	WinShareTeam1     float64      `json:"win_share_team1"`
	RivalryScore      float64      `json:"rivalry_score"`
	DominanceScore    float64      `json:"dominance_score"`
}

// OpponentRecord is one rivalry seen from a single player's perspective.
type OpponentRecord struct {
	Opponent       PlayerRef `json:"opponent"`
	Played         int       `json:"played"`
	Wins           int       `json:"wins"`
	Draws          int       `json:"draws"`
	Losses         int       `json:"losses"`
	GoalsFor       int       `json:"gf"`
	GoalsAgainst   int       `json:"ga"`
	GoalDiff       int       `json:"gd"`
	Points         int       `json:"pts"`
	PointsPerMatch float64   `json:"pts_per_match"`
	WinRate        float64   `json:"win_rate"`
}

// HeadToHeadView is the full head-to-head report. The player sections are
// only populated when HeadToHeadOptions.PlayerID was given.
type HeadToHeadView struct {
	Order  H2HOrder   `json:"order"`
	Limit  int        `json:"limit"`
	Player *PlayerRef `json:"player,omitempty"`

	RivalriesAll     []Rivalry     `json:"rivalries_all"`
	Rivalries1v1     []Rivalry     `json:"rivalries_1v1"`
	Rivalries2v2     []Rivalry     `json:"rivalries_2v2"`
	TeamRivalries2v2 []TeamRivalry `json:"team_rivalries_2v2"`
	Dominance1v1     []Rivalry     `json:"dominance_1v1"`
	BestTeammates2v2 []Duo         `json:"best_teammates_2v2"`

	VsAll                  []OpponentRecord `json:"vs_all,omitempty"`
	Vs1v1                  []OpponentRecord `json:"vs_1v1,omitempty"`
	Vs2v2                  []OpponentRecord `json:"vs_2v2,omitempty"`
	With2v2                []Duo            `json:"with_2v2,omitempty"`
	TeamRivalriesForPlayer []TeamRivalry    `json:"team_rivalries_2v2_for_player,omitempty"`
	Nemesis                *OpponentRecord  `json:"nemesis,omitempty"`
	FavoriteVictim         *OpponentRecord  `json:"favorite_victim,omitempty"`
}

// HeadToHeadOptions narrows and orders a head-to-head report.
type HeadToHeadOptions struct {
	// PlayerID additionally fills the per-player sections for this player.
	PlayerID *int
	// Limit caps every list; values below 1 mean 10.
	Limit int
	Order H2HOrder
}

type pairKey struct{ lo, hi int }

func makePairKey(p, q int) pairKey {
	if p < q {
		return pairKey{p, q}
	}
	return pairKey{q, p}
}

func (k pairKey) less(o pairKey) bool {
	if k.lo != o.lo {
		return k.lo < o.lo
	}
	return k.hi < o.hi
}

type teamKey struct{ t1, t2 pairKey }

func makeTeamKey(a, b pairKey) teamKey {
	if a.less(b) {
		return teamKey{a, b}
	}
	return teamKey{b, a}
}

type pairAgg struct {
	key            pairKey
	played         int
	draws          int
	loWins         int
	hiWins         int
	loGoalsFor     int
	loGoalsAgainst int
}

// record folds one match into the pair. goalsLo and goalsAgainstLo are
// from the lower-id player's perspective; result is +1 lo won, -1 hi won,
// 0 draw.
func (a *pairAgg) record(result, goalsLo, goalsAgainstLo int) {
	a.played++
	switch {
	case result > 0:
		a.loWins++
	case result < 0:
		a.hiWins++
	default:
		a.draws++
	}
	a.loGoalsFor += goalsLo
	a.loGoalsAgainst += goalsAgainstLo
}

type duoAgg struct {
	key    pairKey
	played int
	wins   int
	draws  int
	losses int
	gf     int
	ga     int
}

func (a *duoAgg) record(result, gf, ga int) {
	a.played++
	switch {
	case result > 0:
		a.wins++
	case result < 0:
		a.losses++
	default:
		a.draws++
	}
	a.gf += gf
	a.ga += ga
}

type teamAgg struct {
	key    teamKey
	played int
	draws  int
	t1Wins int
	t2Wins int
	t1GF   int
	t1GA   int
}

func (a *teamAgg) record(result, goalsT1, goalsAgainstT1 int) {
	a.played++
	switch {
	case result > 0:
		a.t1Wins++
	case result < 0:
		a.t2Wins++
	default:
		a.draws++
	}
	a.t1GF += goalsT1
	a.t1GA += goalsAgainstT1
}

// closeness is 1.0 when the wins are split evenly and 0.0 when one side
// took them all.
func closeness(winShare float64) float64 {
	return 1.0 - math.Min(1.0, math.Abs(winShare-0.5)*2.0)
}

func winShare(wins, oppWins int) float64 {
	total := wins + oppWins
	if total == 0 {
		return 0.5
	}
	return float64(wins) / float64(total)
}

// HeadToHead aggregates finished matches into rivalry, teammate, and
// team-versus-team reports. modeOf resolves a match's side size (a
// tournament match inherits the tournament's mode); matches whose mode
// cannot be resolved only feed the all-modes bucket. Matches missing a
// side or with an empty lineup are skipped.
func HeadToHead(matches []models.Match, modeOf func(*models.Match) models.TournamentMode, opts HeadToHeadOptions) *HeadToHeadView {
	if opts.Limit < 1 {
		opts.Limit = 10
	}
	opts.Order = ParseH2HOrder(string(opts.Order))

	names := map[int]string{}
	pairsAll := map[pairKey]*pairAgg{}
	pairs1v1 := map[pairKey]*pairAgg{}
	pairs2v2 := map[pairKey]*pairAgg{}
	duos := map[pairKey]*duoAgg{}
	teams := map[teamKey]*teamAgg{}

	pairIn := func(bucket map[pairKey]*pairAgg, k pairKey) *pairAgg {
		agg, ok := bucket[k]
		if !ok {
			agg = &pairAgg{key: k}
			bucket[k] = agg
		}
		return agg
	}

	for i := range matches {
		m := &matches[i]
		if m.State != models.MatchStateFinished {
			continue
		}
		a := m.SideBy(models.SideA)
		b := m.SideBy(models.SideB)
		if a == nil || b == nil || len(a.Players) == 0 || len(b.Players) == 0 {
			continue
		}
		mode := modeOf(m)

		for _, p := range a.Players {
			names[p.ID] = p.DisplayName
		}
		for _, p := range b.Players {
			names[p.ID] = p.DisplayName
		}

		// +1 side A won, -1 side B won, 0 draw.
		sideResult := 0
		switch {
		case a.Goals > b.Goals:
			sideResult = 1
		case a.Goals < b.Goals:
			sideResult = -1
		}

		is1v1 := mode == models.Mode1v1 && len(a.Players) == 1 && len(b.Players) == 1
		is2v2 := mode == models.Mode2v2 && len(a.Players) == 2 && len(b.Players) == 2

		for _, pa := range a.Players {
			for _, pb := range b.Players {
				k := makePairKey(pa.ID, pb.ID)
				// Orient the side result to the lower-id player.
				result, gf, ga := sideResult, a.Goals, b.Goals
				if k.lo != pa.ID {
					result, gf, ga = -sideResult, b.Goals, a.Goals
				}
				pairIn(pairsAll, k).record(result, gf, ga)
				if is1v1 {
					pairIn(pairs1v1, k).record(result, gf, ga)
				}
				if is2v2 {
					pairIn(pairs2v2, k).record(result, gf, ga)
				}
			}
		}

		if is2v2 {
			duoA := makePairKey(a.Players[0].ID, a.Players[1].ID)
			duoB := makePairKey(b.Players[0].ID, b.Players[1].ID)

			tk := makeTeamKey(duoA, duoB)
			team, ok := teams[tk]
			if !ok {
				team = &teamAgg{key: tk}
				teams[tk] = team
			}
			result, gf, ga := sideResult, a.Goals, b.Goals
			if tk.t1 != duoA {
				result, gf, ga = -sideResult, b.Goals, a.Goals
			}
			team.record(result, gf, ga)

			aggA, ok := duos[duoA]
			if !ok {
				aggA = &duoAgg{key: duoA}
				duos[duoA] = aggA
			}
			aggB, ok := duos[duoB]
			if !ok {
				aggB = &duoAgg{key: duoB}
				duos[duoB] = aggB
			}
			aggA.record(sideResult, a.Goals, b.Goals)
			aggB.record(-sideResult, b.Goals, a.Goals)
		}
	}

	ref := func(id int) PlayerRef {
		name, ok := names[id]
		if !ok {
			name = strconv.Itoa(id)
		}
		return PlayerRef{ID: id, Name: name}
	}

	view := &HeadToHeadView{
		Order:            opts.Order,
		Limit:            opts.Limit,
		RivalriesAll:     topRivalries(pairsAll, ref, opts, scoreRivalry),
		Rivalries1v1:     topRivalries(pairs1v1, ref, opts, scoreRivalry),
		Rivalries2v2:     topRivalries(pairs2v2, ref, opts, scoreRivalry),
		TeamRivalries2v2: topTeamRivalries(teams, ref, opts),
		Dominance1v1:     topRivalries(pairs1v1, ref, opts, scoreDominance),
		BestTeammates2v2: topDuos(duos, ref, opts.Limit),
	}

	if opts.PlayerID != nil {
		pid := *opts.PlayerID
		playerRef := ref(pid)
		view.Player = &playerRef
		view.VsAll = opponentRecords(pairsAll, pid, ref, opts)
		view.Vs1v1 = opponentRecords(pairs1v1, pid, ref, opts)
		view.Vs2v2 = opponentRecords(pairs2v2, pid, ref, opts)
		view.With2v2 = playerDuos(duos, pid, ref, opts)
		view.TeamRivalriesForPlayer = playerTeamRivalries(teams, pid, ref, opts)
		view.Nemesis = pickNemesis(view.VsAll)
		view.FavoriteVictim = pickVictim(view.VsAll)
	}
	return view
}

func (a *pairAgg) rivalry(ref func(int) PlayerRef) Rivalry {
	share := winShare(a.loWins, a.hiWins)
	cl := closeness(share)
	return Rivalry{
		A:              ref(a.key.lo),
		B:              ref(a.key.hi),
		Played:         a.played,
		AWins:          a.loWins,
		Draws:          a.draws,
		BWins:          a.hiWins,
		AGoalsFor:      a.loGoalsFor,
		AGoalsAgainst:  a.loGoalsAgainst,
		BGoalsFor:      a.loGoalsAgainst,
		BGoalsAgainst:  a.loGoalsFor,
		WinShareA:      share,
		RivalryScore:   float64(a.played) * cl,
		DominanceScore: float64(a.played) * (1.0 - cl),
	}
}

func scoreRivalry(r Rivalry) float64   { return r.RivalryScore }
func scoreDominance(r Rivalry) float64 { return r.DominanceScore }

func topRivalries(bucket map[pairKey]*pairAgg, ref func(int) PlayerRef, opts HeadToHeadOptions, score func(Rivalry) float64) []Rivalry {
	items := make([]Rivalry, 0, len(bucket))
	for _, agg := range bucket {
		if agg.played == 0 {
			continue
		}
		items = append(items, agg.rivalry(ref))
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if opts.Order == OrderPlayed {
			if a.Played != b.Played {
				return a.Played > b.Played
			}
			// Within equal match counts, close matchups rank higher.
			ca := a.RivalryScore / float64(max(1, a.Played))
			cb := b.RivalryScore / float64(max(1, b.Played))
			if ca != cb {
				return ca > cb
			}
		} else {
			sa, sb := score(a), score(b)
			if sa != sb {
				return sa > sb
			}
			if a.Played != b.Played {
				return a.Played > b.Played
			}
		}
		if an, bn := strings.ToLower(a.A.Name), strings.ToLower(b.A.Name); an != bn {
			return an < bn
		}
		return strings.ToLower(a.B.Name) < strings.ToLower(b.B.Name)
	})
	return clipRivalries(items, opts.Limit)
}

func clipRivalries(items []Rivalry, limit int) []Rivalry {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}

func (a *duoAgg) duo(ref func(int) PlayerRef) Duo {
	pts := a.wins*3 + a.draws
	d := Duo{
		P1:           ref(a.key.lo),
		P2:           ref(a.key.hi),
		Played:       a.played,
		Wins:         a.wins,
		Draws:        a.draws,
		Losses:       a.losses,
		GoalsFor:     a.gf,
		GoalsAgainst: a.ga,
		GoalDiff:     a.gf - a.ga,
		Points:       pts,
	}
	if a.played > 0 {
		d.PointsPerMatch = float64(pts) / float64(a.played)
		d.WinRate = float64(a.wins) / float64(a.played)
	}
	return d
}

func topDuos(bucket map[pairKey]*duoAgg, ref func(int) PlayerRef, limit int) []Duo {
	items := make([]Duo, 0, len(bucket))
	for _, agg := range bucket {
		if agg.played == 0 {
			continue
		}
		items = append(items, agg.duo(ref))
	}
	// Strong and proven duos first.
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.PointsPerMatch != b.PointsPerMatch {
			return a.PointsPerMatch > b.PointsPerMatch
		}
		if a.Played != b.Played {
			return a.Played > b.Played
		}
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if an, bn := strings.ToLower(a.P1.Name), strings.ToLower(b.P1.Name); an != bn {
			return an < bn
		}
		return strings.ToLower(a.P2.Name) < strings.ToLower(b.P2.Name)
	})
	if len(items) > limit {
		return items[:limit]
	}
	return items
}

func (a *teamAgg) teamRivalry(ref func(int) PlayerRef) TeamRivalry {
	share := winShare(a.t1Wins, a.t2Wins)
	cl := closeness(share)
	return TeamRivalry{
		Team1:             [2]PlayerRef{ref(a.key.t1.lo), ref(a.key.t1.hi)},
		Team2:             [2]PlayerRef{ref(a.key.t2.lo), ref(a.key.t2.hi)},
		Played:            a.played,
		Team1Wins:         a.t1Wins,
		Draws:             a.draws,
		Team2Wins:         a.t2Wins,
		Team1GoalsFor:     a.t1GF,
		Team1GoalsAgainst: a.t1GA,
		Team2GoalsFor:     a.t1GA,
		Team2GoalsAgainst: a.t1GF,
		WinShareTeam1:     share,
		RivalryScore:      float64(a.played) * cl,
		DominanceScore:    float64(a.played) * (1.0 - cl),
	}
}

func sortTeamRivalries(items []TeamRivalry, order H2HOrder) {
	nameKey := func(t TeamRivalry) [4]string {
		return [4]string{
			strings.ToLower(t.Team1[0].Name), strings.ToLower(t.Team1[1].Name),
			strings.ToLower(t.Team2[0].Name), strings.ToLower(t.Team2[1].Name),
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if order == OrderPlayed {
			if a.Played != b.Played {
				return a.Played > b.Played
			}
			ca := a.RivalryScore / float64(max(1, a.Played))
			cb := b.RivalryScore / float64(max(1, b.Played))
			if ca != cb {
				return ca > cb
			}
		} else {
			if a.RivalryScore != b.RivalryScore {
				return a.RivalryScore > b.RivalryScore
			}
			if a.Played != b.Played {
				return a.Played > b.Played
			}
		}
		an, bn := nameKey(a), nameKey(b)
		for x := range an {
			if an[x] != bn[x] {
				return an[x] < bn[x]
			}
		}
		return false
	})
}

func topTeamRivalries(bucket map[teamKey]*teamAgg, ref func(int) PlayerRef, opts HeadToHeadOptions) []TeamRivalry {
	items := make([]TeamRivalry, 0, len(bucket))
	for _, agg := range bucket {
		if agg.played == 0 {
			continue
		}
		items = append(items, agg.teamRivalry(ref))
	}
	sortTeamRivalries(items, opts.Order)
	if len(items) > opts.Limit {
		return items[:opts.Limit]
	}
	return items
}

func playerTeamRivalries(bucket map[teamKey]*teamAgg, pid int, ref func(int) PlayerRef, opts HeadToHeadOptions) []TeamRivalry {
	items := make([]TeamRivalry, 0)
	for _, agg := range bucket {
		if agg.played == 0 {
			continue
		}
		k := agg.key
		if k.t1.lo != pid && k.t1.hi != pid && k.t2.lo != pid && k.t2.hi != pid {
			continue
		}
		items = append(items, agg.teamRivalry(ref))
	}
	sortTeamRivalries(items, opts.Order)
	if len(items) > opts.Limit {
		return items[:opts.Limit]
	}
	return items
}

// opponentRecords reorients every rivalry involving pid so pid is "me".
func opponentRecords(bucket map[pairKey]*pairAgg, pid int, ref func(int) PlayerRef, opts HeadToHeadOptions) []OpponentRecord {
	out := make([]OpponentRecord, 0)
	for _, agg := range bucket {
		if agg.played == 0 {
			continue
		}
		if agg.key.lo != pid && agg.key.hi != pid {
			continue
		}
		meIsLo := agg.key.lo == pid
		wins, losses := agg.loWins, agg.hiWins
		gf, ga := agg.loGoalsFor, agg.loGoalsAgainst
		oppID := agg.key.hi
		if !meIsLo {
			wins, losses = agg.hiWins, agg.loWins
			gf, ga = agg.loGoalsAgainst, agg.loGoalsFor
			oppID = agg.key.lo
		}
		pts := wins*3 + agg.draws
		rec := OpponentRecord{
			Opponent:     ref(oppID),
			Played:       agg.played,
			Wins:         wins,
			Draws:        agg.draws,
			Losses:       losses,
			GoalsFor:     gf,
			GoalsAgainst: ga,
			GoalDiff:     gf - ga,
			Points:       pts,
		}
		if agg.played > 0 {
			rec.PointsPerMatch = float64(pts) / float64(agg.played)
			rec.WinRate = float64(wins) / float64(agg.played)
		}
		out = append(out, rec)
	}

	recCloseness := func(r OpponentRecord) float64 {
		return closeness(winShare(r.Wins, r.Losses))
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if opts.Order == OrderPlayed {
			if a.Played != b.Played {
				return a.Played > b.Played
			}
			if ca, cb := recCloseness(a), recCloseness(b); ca != cb {
				return ca > cb
			}
		} else {
			// Legendary matchups: close and frequently replayed.
			sa := float64(a.Played) * recCloseness(a)
			sb := float64(b.Played) * recCloseness(b)
			if sa != sb {
				return sa > sb
			}
			if a.Played != b.Played {
				return a.Played > b.Played
			}
		}
		return strings.ToLower(a.Opponent.Name) < strings.ToLower(b.Opponent.Name)
	})
	if len(out) > opts.Limit {
		return out[:opts.Limit]
	}
	return out
}

func playerDuos(bucket map[pairKey]*duoAgg, pid int, ref func(int) PlayerRef, opts HeadToHeadOptions) []Duo {
	out := make([]Duo, 0)
	for _, agg := range bucket {
		if agg.played == 0 {
			continue
		}
		if agg.key.lo != pid && agg.key.hi != pid {
			continue
		}
		out = append(out, agg.duo(ref))
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if opts.Order == OrderPlayed {
			if a.Played != b.Played {
				return a.Played > b.Played
			}
			if a.PointsPerMatch != b.PointsPerMatch {
				return a.PointsPerMatch > b.PointsPerMatch
			}
		} else {
			if a.PointsPerMatch != b.PointsPerMatch {
				return a.PointsPerMatch > b.PointsPerMatch
			}
			if a.Played != b.Played {
				return a.Played > b.Played
			}
		}
		if an, bn := strings.ToLower(a.P1.Name), strings.ToLower(b.P1.Name); an != bn {
			return an < bn
		}
		return strings.ToLower(a.P2.Name) < strings.ToLower(b.P2.Name)
	})
	if len(out) > opts.Limit {
		return out[:opts.Limit]
	}
	return out
}

// pickNemesis is the opponent the player earns the fewest points per match
// against, preferring well-sampled matchups on ties.
func pickNemesis(vs []OpponentRecord) *OpponentRecord {
	var pick *OpponentRecord
	for i := range vs {
		r := &vs[i]
		if pick == nil ||
			r.PointsPerMatch < pick.PointsPerMatch ||
			(r.PointsPerMatch == pick.PointsPerMatch && r.Played > pick.Played) {
			pick = r
		}
	}
	if pick == nil {
		return nil
	}
	out := *pick
	return &out
}

func pickVictim(vs []OpponentRecord) *OpponentRecord {
	var pick *OpponentRecord
	for i := range vs {
		r := &vs[i]
		if pick == nil ||
			r.PointsPerMatch > pick.PointsPerMatch ||
			(r.PointsPerMatch == pick.PointsPerMatch && r.Played > pick.Played) {
			pick = r
		}
	}
	if pick == nil {
		return nil
	}
	out := *pick
	return &out
}
