package topic

import (
	"strings"

	apperrors "mqttlog/pkg/errors"
)

const (
	levelSeparator   = "/"
	singleLevelToken = "+"
	multiLevelToken  = "#"
)

// Pattern is a parsed topic filter: a /-delimited sequence of levels
// where "+" matches exactly one level, a final "#" matches that level
// and everything deeper (zero or more levels), and any other level
// matches literally.
type Pattern struct {
	raw       string
	levels    []string
	multiTail bool
}

// Parse validates and compiles a topic filter. A "#" anywhere but the
// final level is malformed and rejected with an InvalidArgument error.
func Parse(filter string) (*Pattern, error) {
	if filter == "" {
		return nil, apperrors.ErrInvalidArgument.WithDetail("message", "topic pattern must not be empty")
	}

	levels := strings.Split(filter, levelSeparator)
	for i, level := range levels {
		if level == multiLevelToken && i != len(levels)-1 {
			return nil, apperrors.ErrInvalidArgument.WithDetail("message",
				"multi-level wildcard '#' is only valid as the final level: "+filter)
		}
	}

	p := &Pattern{raw: filter, levels: levels}
	if levels[len(levels)-1] == multiLevelToken {
		p.multiTail = true
		p.levels = levels[:len(levels)-1]
	}
	return p, nil
}

func (p *Pattern) String() string {
	return p.raw
}

// Matches evaluates the pattern level by level, left to right.
func (p *Pattern) Matches(topic string) bool {
	levels := strings.Split(topic, levelSeparator)

	if p.multiTail {
		// "#" absorbs the matched level and all deeper ones, including
		// the parent itself ("a/#" matches "a").
		if len(levels) < len(p.levels) {
			return false
		}
	} else if len(levels) != len(p.levels) {
		return false
	}

	for i, want := range p.levels {
		if want == singleLevelToken {
			continue
		}
		if levels[i] != want {
			return false
		}
	}
	return true
}

// Exact returns the literal topic and true when the pattern contains no
// wildcards, letting the store use an equality lookup.
func (p *Pattern) Exact() (string, bool) {
	if p.multiTail {
		return "", false
	}
	for _, level := range p.levels {
		if level == singleLevelToken {
			return "", false
		}
	}
	return p.raw, true
}

// LiteralPrefix returns the longest run of literal leading levels, used
// by the store to narrow the SQL scan before exact matching. Empty when
// the first level is already a wildcard.
func (p *Pattern) LiteralPrefix() string {
	var literal []string
	for _, level := range p.levels {
		if level == singleLevelToken {
			break
		}
		literal = append(literal, level)
	}
	return strings.Join(literal, levelSeparator)
}
