package fixture

import "sort"

const (
	ExpectedMatchesPerGameweek = 10
	FirstGameweek              = 1
	LastGameweek               = 38
)

// CurrentGameweek picks the first matchday in items that is still open. A
// matchday is closed only when it has a full set of matches and all of them
// finished. When every matchday seen is closed the next one is returned.
func CurrentGameweek(items []Fixture) int {
	type tally struct {
		total    int
		finished int
	}
	byMatchday := make(map[int]*tally)
	for _, item := range items {
		if item.Gameweek <= 0 {
			continue
		}
		t, ok := byMatchday[item.Gameweek]
		if !ok {
			t = &tally{}
			byMatchday[item.Gameweek] = t
		}
		t.total++
		if NormalizeStatus(item.Status) == StatusFinished {
			t.finished++
		}
	}

	matchdays := make([]int, 0, len(byMatchday))
	for md := range byMatchday {
		matchdays = append(matchdays, md)
	}
	sort.Ints(matchdays)

	for _, md := range matchdays {
		t := byMatchday[md]
		if t.finished < t.total || t.total < ExpectedMatchesPerGameweek {
			return clampGameweek(md)
		}
	}
	if len(matchdays) == 0 {
		return FirstGameweek
	}
	return clampGameweek(matchdays[len(matchdays)-1] + 1)
}

func clampGameweek(gw int) int {
	return min(LastGameweek, max(FirstGameweek, gw))
}
