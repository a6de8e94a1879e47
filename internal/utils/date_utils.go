package utils

// NormalizeReleaseDate expands the partial dates MusicBrainz returns into
// full calendar dates. A bare year ("1990") becomes "1990-01-01" and a
// year-month ("1990-11") becomes "1990-11-01". Anything else, including an
// empty string, passes through unchanged.
func NormalizeReleaseDate(date string) string {
	switch len(date) {
	case 4:
		return date + "-01-01"
	case 7:
		return date + "-01"
	default:
		return date
	}
}

// FormedYear extracts the year from a life-span begin date such as
// "1960-08" or "1960". Returns "" when the input is too short.
func FormedYear(begin string) string {
	if len(begin) < 4 {
		return ""
	}
	return begin[:4]
}
