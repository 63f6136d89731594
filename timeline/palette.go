package timeline

import "strings"

// themeSuffixes are the per-theme query variants appended to a segment's base
// query. Keeping the set small bounds the number of distinct queries sent to
// the media provider, so the search cache stays effective.
var themeSuffixes = map[string][]string{
	"history": {"", " archival footage", " cinematic footage"},
	"science": {"", " macro", " laboratory footage"},
	"mystery": {"", " dark atmosphere", " cinematic"},
	"nature":  {"", " aerial view", " wildlife footage"},
}

var defaultSuffixes = []string{"", " cinematic footage"}

// Palette builds the rotating query set for one segment.
func Palette(baseQuery, theme string) []string {
	base := strings.TrimSpace(baseQuery)
	suffixes, ok := themeSuffixes[theme]
	if !ok {
		suffixes = defaultSuffixes
	}
	out := make([]string, 0, len(suffixes))
	for _, s := range suffixes {
		out = append(out, base+s)
	}
	return out
}

// PickQuery selects the query for a beat: beat index modulo palette size,
// rotated one step when that would repeat the immediately preceding beat's
// query. Bounded variety without visible back-to-back repetition.
func PickQuery(palette []string, beatIndex int, prevQuery string) string {
	if len(palette) == 0 {
		return prevQuery
	}
	idx := beatIndex % len(palette)
	if palette[idx] == prevQuery {
		idx = (idx + 1) % len(palette)
	}
	return palette[idx]
}
