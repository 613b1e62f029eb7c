package query

import (
	"strconv"
	"time"

	apperrors "mqttlog/pkg/errors"
)

// ParseSince parses a relative time expression: a positive integer
// immediately followed by a single unit letter, 'm' (minutes), 'h'
// (hours) or 'd' (days). Anything else is an InvalidArgument error.
func ParseSince(expr string) (time.Duration, error) {
	if len(expr) < 2 || expr[0] < '0' || expr[0] > '9' {
		return 0, invalidSince(expr)
	}

	value, err := strconv.Atoi(expr[:len(expr)-1])
	if err != nil || value <= 0 {
		return 0, invalidSince(expr)
	}

	switch expr[len(expr)-1] {
	case 'm':
		return time.Duration(value) * time.Minute, nil
	case 'h':
		return time.Duration(value) * time.Hour, nil
	case 'd':
		return time.Duration(value) * 24 * time.Hour, nil
	default:
		return 0, invalidSince(expr)
	}
}

func invalidSince(expr string) error {
	return apperrors.ErrInvalidArgument.WithDetail("message",
		"invalid duration '"+expr+"': expected a positive integer followed by m, h or d (e.g. 30m, 1h, 7d)")
}
