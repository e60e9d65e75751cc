package scan

import "sort"

// OrderDeepestFirst returns a new slice sorted by path length descending,
// with ties kept in discovery order. Because a descendant path is always
// strictly longer than its ancestor, the result guarantees that any entry
// nested beneath another appears before that ancestor. The relocator
// depends on this: a directory must only be removed after its long-path
// children have been moved out.
func OrderDeepestFirst(entries []Entry) []Entry {
	ordered := make([]Entry, len(entries))
	copy(ordered, entries)

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Length > ordered[j].Length
	})

	return ordered
}
