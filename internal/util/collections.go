package util

// FirstNonEmpty returns the first non-empty/non-zero element from the slice, or the zero value if none found.
func FirstNonEmpty[S ~[]E, E comparable](list S) E {
	var empty E
	for _, item := range list {
		if item != empty {
			return item
		}
	}

	return empty
}

// RemoveDuplicatesKeepFirst returns a new slice with duplicates removed, keeping the first occurrence.
func RemoveDuplicatesKeepFirst[S ~[]E, E comparable](list S) S {
	seen := make(map[E]struct{}, len(list))
	result := make(S, 0, len(list))

	for _, item := range list {
		if _, ok := seen[item]; ok {
			continue
		}

		seen[item] = struct{}{}
		result = append(result, item)
	}

	return result
}
