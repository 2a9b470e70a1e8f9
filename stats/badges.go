package stats

// BadgeOptions controls the presentation-time filtering applied on top of
// a raw StreakSet. The extractor itself never consults these rules.
type BadgeOptions struct {
	// MinLength suppresses single-match noise; runs shorter than this are
	// not shown. Zero means the default of 2.
	MinLength int
	// KeepRedundantUnbeaten disables the rule that hides an unbeaten badge
	// which is not strictly longer than the player's concurrent win run
	// (an unbeaten run with no draws in it is just the win run again).
	KeepRedundantUnbeaten bool
}

// StreakBadge is one displayable active streak.
type StreakBadge struct {
	Category    Category `json:"category"`
	Run         Run      `json:"run"`
	RecordTying bool     `json:"record_tying"`
}

// BuildStreakBadges maps a StreakSet to the badges the UI shows, in
// category display order.
func BuildStreakBadges(set StreakSet, opts BadgeOptions) []StreakBadge {
	min := opts.MinLength
	if min <= 0 {
		min = 2
	}

	var winLen int
	if cur := set.Current[CategoryWin]; cur != nil {
		winLen = cur.Length
	}

	badges := make([]StreakBadge, 0, len(Categories))
	for _, c := range Categories {
		cur := set.Current[c]
		if cur == nil || cur.Length < min {
			continue
		}
		if c == CategoryUnbeaten && !opts.KeepRedundantUnbeaten && cur.Length <= winLen {
			continue
		}
		badges = append(badges, StreakBadge{
			Category:    c,
			Run:         *cur,
			RecordTying: set.CurrentTiesRecord(c),
		})
	}
	return badges
}
