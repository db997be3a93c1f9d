package aggregate

import "time"

// DefaultWindow is applied when the caller passes an empty or unrecognized
// range token. Unknown tokens fall back silently rather than erroring, so a
// mistyped token yields the 24h view instead of feedback.
const DefaultWindow = 24 * time.Hour

var windowTokens = map[string]time.Duration{
	"1h":  time.Hour,
	"6h":  6 * time.Hour,
	"12h": 12 * time.Hour,
	"24h": 24 * time.Hour,
	"7d":  7 * 24 * time.Hour,
	"30d": 30 * 24 * time.Hour,
}

// ResolveWindow maps a symbolic range token to the absolute lower time bound
// of the query window. Pure and total.
func ResolveWindow(token string, now time.Time) time.Time {
	d, ok := windowTokens[token]
	if !ok {
		d = DefaultWindow
	}
	return now.Add(-d)
}
