package ranking

// diversify selects k items from ranked (already in final order) so that no single
// document type takes more than ceil(k/2) slots while other types are available. Slots
// left over after the capped pass are back-filled in rank order, and the selection is
// returned in the order given by less.
func diversify(ranked []*scored, k int, less lessFunc) []*scored {
	if k <= 0 {
		return nil
	}
	if len(ranked) <= k {
		return ranked
	}
	if k < 2 || distinctTypes(ranked) < 2 {
		return ranked[:k]
	}

	limit := (k + 1) / 2
	perType := make(map[string]int)
	taken := make([]bool, len(ranked))
	selected := make([]*scored, 0, k)

	for i, s := range ranked {
		if len(selected) == k {
			break
		}
		t := s.passage.DocumentType
		if perType[t] >= limit {
			continue
		}
		perType[t]++
		taken[i] = true
		selected = append(selected, s)
	}
	for i, s := range ranked {
		if len(selected) == k {
			break
		}
		if !taken[i] {
			selected = append(selected, s)
		}
	}

	sortScored(selected, less)
	return selected
}

func distinctTypes(items []*scored) int {
	seen := make(map[string]struct{})
	for _, s := range items {
		seen[s.passage.DocumentType] = struct{}{}
		if len(seen) > 1 {
			break
		}
	}
	return len(seen)
}
