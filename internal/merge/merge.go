// Package merge combines freshly harvested batches with the previous snapshot.
package merge

import (
	"slices"

	"hearings/internal/models"
)

// Merge replaces, per source, every previous record with that source's new
// batch. Sources without a non-empty batch keep their previous records as
// they were. The result is ordered by models.SourcePriority, then by first
// appearance for any other source, keeping each source's internal order.
// Records repeating a (chamber, meeting_id) pair are dropped after the first.
func Merge(prev []models.Meeting, batches []models.Batch) []models.Meeting {
	fresh := make(map[models.Source][]models.Meeting, len(batches))

	for _, b := range batches {
		if len(b.Meetings) == 0 {
			continue
		}

		fresh[b.Source] = append(fresh[b.Source], b.Meetings...)
	}

	bySource := make(map[models.Source][]models.Meeting)
	order := slices.Clone(models.SourcePriority)

	note := func(s models.Source) {
		if !slices.Contains(order, s) {
			order = append(order, s)
		}
	}

	for _, m := range prev {
		note(m.Source)

		if _, replaced := fresh[m.Source]; !replaced {
			bySource[m.Source] = append(bySource[m.Source], m)
		}
	}

	for _, b := range batches {
		note(b.Source)
	}

	for s, meetings := range fresh {
		bySource[s] = meetings
	}

	seen := make(map[string]bool, len(prev))
	out := make([]models.Meeting, 0, len(prev))

	for _, s := range order {
		for _, m := range bySource[s] {
			if seen[m.Key()] {
				continue
			}

			seen[m.Key()] = true

			out = append(out, m)
		}
	}

	return out
}

// Counts returns the number of records per source.
func Counts(meetings []models.Meeting) map[models.Source]int {
	counts := make(map[models.Source]int)
	for _, m := range meetings {
		counts[m.Source]++
	}

	return counts
}
