package scoring

import (
	"fmt"
	"sort"
)

// FieldErrors maps an input field to a human readable validation message.
// An empty map means the input is acceptable.
type FieldErrors map[string]string

// OK reports whether validation passed.
func (e FieldErrors) OK() bool {
	return len(e) == 0
}

// ValidateInput checks a match entered through the input form before it is
// handed to the scoring engine. It enforces distinct entrants, team sizes,
// at least one set, no tied game counts and a declared winner per set.
// Failures come back as a field error map; the function never panics and
// performs none of the engine's computation.
func ValidateInput(m *Match) FieldErrors {
	errs := FieldErrors{}
	if m == nil {
		errs["match"] = "no match data provided"
		return errs
	}

	switch m.Format {
	case FormatSingles:
		if len(m.Players) != 2 {
			errs["players"] = "select exactly two players"
		} else if m.Players[0] == m.Players[1] {
			errs["players"] = "players must be different"
		}
	case FormatDoubles:
		if len(m.Teams) != 2 || len(m.Teams[0]) != 2 || len(m.Teams[1]) != 2 {
			errs["teams"] = "select four players, two per team"
		} else {
			seen := map[string]bool{}
			for _, team := range m.Teams {
				for _, id := range team {
					seen[id] = true
				}
			}
			if len(seen) != 4 {
				errs["teams"] = "each player can only be selected once"
			}
		}
	default:
		errs["format"] = fmt.Sprintf("unknown match format %q", m.Format)
	}
	if !errs.OK() {
		return errs
	}

	if len(m.Sets) == 0 {
		errs["sets"] = "add at least one set"
		return errs
	}

	sideA, sideB, err := sides(m)
	if err != nil {
		// Participants already validated above; this only guards shape drift.
		errs["sets"] = err.Error()
		return errs
	}

	for _, number := range sortedSetNumbers(m.Sets) {
		set := m.Sets[number]
		if set.Games[sideA] == set.Games[sideB] {
			errs[fmt.Sprintf("set_%d", number)] = "a tennis set cannot end in a tie"
		}
		if set.Winner == "" {
			errs[fmt.Sprintf("set_%d_winner", number)] = "select the set winner"
		}
	}
	return errs
}

func sortedSetNumbers(sets map[int]Set) []int {
	numbers := make([]int, 0, len(sets))
	for n := range sets {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	return numbers
}
