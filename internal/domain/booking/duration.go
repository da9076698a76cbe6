package booking

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ParseDurationText reads the free-text duration shown on a service
// ("60 min", "45 mins", "1 hour", "1.5 hours", "90") and returns minutes.
func ParseDurationText(s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))

	i := 0
	for i < len(s) && (unicode.IsDigit(rune(s[i])) || s[i] == '.') {
		i++
	}
	if i == 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}

	n, err := strconv.ParseFloat(s[:i], 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}

	unit := strings.TrimSpace(s[i:])
	switch {
	case unit == "", strings.HasPrefix(unit, "m"):
	case strings.HasPrefix(unit, "h"):
		n *= 60
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}

	minutes := int(n + 0.5)
	if minutes <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
	return minutes, nil
}
