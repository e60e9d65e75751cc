package scan

// Filter returns the entries whose cached path length strictly exceeds
// threshold. A path of exactly threshold characters is not matched.
// Discovery order is preserved.
func Filter(entries []Entry, threshold int) []Entry {
	matched := make([]Entry, 0)
	for _, e := range entries {
		if e.Length > threshold {
			matched = append(matched, e)
		}
	}
	return matched
}
