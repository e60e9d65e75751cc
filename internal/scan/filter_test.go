package scan

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func entryOfLength(n int) Entry {
	path := "/" + strings.Repeat("a", n-1)
	return Entry{Path: path, Length: utf8.RuneCountInString(path)}
}

func TestFilterStrictThresholdBoundary(t *testing.T) {
	at := entryOfLength(376)
	above := entryOfLength(377)
	below := entryOfLength(375)

	matched := Filter([]Entry{at, above, below}, 376)

	assert.Len(t, matched, 1)
	assert.Equal(t, above.Path, matched[0].Path)
}

func TestFilterKeepsDiscoveryOrder(t *testing.T) {
	entries := []Entry{
		entryOfLength(400),
		entryOfLength(390),
		entryOfLength(100),
		entryOfLength(395),
	}

	matched := Filter(entries, 376)

	assert.Equal(t, []Entry{entries[0], entries[1], entries[3]}, matched)
}

func TestFilterEmptyInput(t *testing.T) {
	assert.Empty(t, Filter(nil, 376))
	assert.Empty(t, Filter([]Entry{}, 376))
}

func TestFilterNothingMatches(t *testing.T) {
	entries := []Entry{entryOfLength(10), entryOfLength(376)}
	assert.Empty(t, Filter(entries, 376))
}

func TestFilterCountsRunesNotBytes(t *testing.T) {
	// 100 two-byte runes: 200 bytes but only 101 characters with the
	// leading separator.
	path := "/" + strings.Repeat("é", 100)
	e := Entry{Path: path, Length: utf8.RuneCountInString(path)}

	assert.Empty(t, Filter([]Entry{e}, 101))
	assert.Len(t, Filter([]Entry{e}, 100), 1)
}
