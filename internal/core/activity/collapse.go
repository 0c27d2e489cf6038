package activity

import "slices"

// Collapse orders entries newest first and folds near-duplicates.
//
// Entries on the same entity are compared against the representative
// currently kept for that entity. When they are closer than DedupWindow only
// the higher-priority entry survives, and on a tie the one seen first (the
// newer one) wins. Entries at least DedupWindow apart are both kept.
func Collapse(entries []Entry, opts Options) []Entry {
	opts = opts.withDefaults()

	sorted := slices.Clone(entries)
	sortDesc(sorted)

	kept := make([]Entry, 0, len(sorted))
	rep := make(map[string]int, len(sorted))

	for _, e := range sorted {
		key := e.Key()
		i, ok := rep[key]
		if !ok || kept[i].Timestamp.Sub(e.Timestamp) >= opts.DedupWindow {
			rep[key] = len(kept)
			kept = append(kept, e)
			continue
		}
		if e.Priority > kept[i].Priority {
			kept[i] = e
		}
	}

	sortDesc(kept)
	return kept
}

func sortDesc(entries []Entry) {
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
}
