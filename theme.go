package proofread

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values, so the
// console automatically matches any color scheme. A negative index means
// no color.
type Theme struct {
	Accent    int // Headings, links, title bar
	Muted     int // Status line, placeholders
	Streaming int // Text that is still arriving
	Success   int // No-errors result
	Warning   int // Not-English and timed-out results
	Error     int // Failures
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		Accent:    5,
		Muted:     8,
		Streaming: 7,
		Success:   2,
		Warning:   3,
		Error:     1,
	}
}
