package minigame

import (
	"fmt"
	"regexp"
	"strconv"
)

const MaxGoals = 99

var scorePattern = regexp.MustCompile(`^\s*(\d+)\s*-\s*(\d+)\s*$`)

// Score is a predicted or actual full-time result.
type Score struct {
	Home int
	Away int
}

// ParseScore accepts "H-A" with optional whitespace around the dash.
func ParseScore(raw string) (Score, error) {
	m := scorePattern.FindStringSubmatch(raw)
	if m == nil {
		return Score{}, fmt.Errorf("%w: %q", ErrInvalidScore, raw)
	}
	home, err := strconv.Atoi(m[1])
	if err != nil || home > MaxGoals {
		return Score{}, fmt.Errorf("%w: %q", ErrInvalidScore, raw)
	}
	away, err := strconv.Atoi(m[2])
	if err != nil || away > MaxGoals {
		return Score{}, fmt.Errorf("%w: %q", ErrInvalidScore, raw)
	}
	return Score{Home: home, Away: away}, nil
}

// MustParseScore is ParseScore for literals known to be valid.
func MustParseScore(raw string) Score {
	s, err := ParseScore(raw)
	if err != nil {
		panic(err)
	}
	return s
}

func (s Score) String() string {
	return strconv.Itoa(s.Home) + "-" + strconv.Itoa(s.Away)
}

type Outcome int

const (
	OutcomeDraw Outcome = iota
	OutcomeHome
	OutcomeAway
)

func (s Score) Outcome() Outcome {
	switch {
	case s.Home > s.Away:
		return OutcomeHome
	case s.Away > s.Home:
		return OutcomeAway
	default:
		return OutcomeDraw
	}
}
