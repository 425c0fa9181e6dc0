package shared

// OrderByIDs returns the values of items in the order given by ids.
// Ids without an entry are skipped, so the result may be shorter than ids.
func OrderByIDs[T any](ids []int, items map[int]T) []T {
	result := make([]T, 0, len(items))
	for _, id := range ids {
		if item, ok := items[id]; ok {
			result = append(result, item)
		}
	}
	return result
}

// UniqueIDs removes duplicates and non-positive ids while keeping first-seen order
func UniqueIDs(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	result := make([]int, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
