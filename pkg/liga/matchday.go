package liga

import (
	"regexp"
	"strconv"
)

// Accepted identifier shapes for the embedded matchday number. Sources name
// their files inconsistently ("spieltag-7_xg.csv", "round 12", "3-matchday"),
// so the patterns are tried in order of specificity before falling back to a
// bare separator-delimited digit run.
var matchdayPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:matchday|round|spieltag)[-_ ]?(\d+)`),
	regexp.MustCompile(`(?i)(\d+)[-_ ]?(?:matchday|round|spieltag)`),
	regexp.MustCompile(`(?:^|[-_ .])(\d+)(?:[-_ .]|$)`),
}

// ParseMatchdayNumber extracts the matchday number embedded in a source
// identifier such as a filename. The second return value is false when no
// accepted pattern matches or the number is not a valid matchday (>= 1).
func ParseMatchdayNumber(identifier string) (int, bool) {
	for _, pattern := range matchdayPatterns {
		m := pattern.FindStringSubmatch(identifier)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 {
			continue
		}
		return n, true
	}
	return 0, false
}
