package util

import "sort"

// OrderedKeys returns the keys of m sorted in ascending order. Useful
// whenever a map must be iterated in a deterministic order, such as when
// producing stable diagnostic output or building reproducible state names.
func OrderedKeys[K ~string | ~int, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Alphabetized returns the elements of the given set, sorted. Works on any
// ISet[T] whose element type has string as its underlying type, the case used
// throughout grammar analysis.
func Alphabetized[T ~string](s ISet[T]) []T {
	elems := s.Elements()
	sorted := make([]T, len(elems))
	copy(sorted, elems)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted
}
