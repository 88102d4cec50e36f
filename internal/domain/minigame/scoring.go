package minigame

import "time"

const (
	ExactPoints   = 2
	OutcomePoints = 1
	GoldenFactor  = 2
)

// BasePoints rewards an exact score with 2 and a correct result with 1.
func BasePoints(pred, actual Score) int {
	if pred == actual {
		return ExactPoints
	}
	if pred.Outcome() == actual.Outcome() {
		return OutcomePoints
	}
	return 0
}

func AwardedPoints(base int, golden bool) int {
	if golden {
		return base * GoldenFactor
	}
	return base
}

// ComputeScores builds one record per player in draft order. Fixtures without
// a known result are left out of every breakdown, a missing pick scores zero,
// and only a locked golden on the matching fixture doubles the points.
func ComputeScores(session Session, picks []Pick, locks []GoldenLock, results map[int64]Score, computedAt time.Time) []ScoreRecord {
	type pickKey struct {
		playerID  string
		fixtureID int64
	}
	byKey := make(map[pickKey]Score, len(picks))
	for _, p := range picks {
		byKey[pickKey{playerID: p.PlayerID, fixtureID: p.FixtureID}] = p.Score
	}

	goldenFixture := make(map[string]int64, len(locks))
	for _, l := range locks {
		if l.Locked {
			goldenFixture[l.PlayerID] = l.FixtureID
		}
	}

	records := make([]ScoreRecord, 0, len(session.Players))
	for _, playerID := range session.Players {
		record := ScoreRecord{
			PlayerID:   playerID,
			Breakdown:  make(map[int64]BreakdownEntry),
			ComputedAt: computedAt,
		}
		golden, hasGolden := goldenFixture[playerID]

		for _, fixtureID := range session.FixtureIDs {
			actual, ok := results[fixtureID]
			if !ok {
				continue
			}

			entry := BreakdownEntry{Actual: actual}
			if pred, ok := byKey[pickKey{playerID: playerID, fixtureID: fixtureID}]; ok {
				pred := pred
				entry.Predicted = &pred
				entry.BasePoints = BasePoints(pred, actual)
			}
			entry.IsGolden = hasGolden && golden == fixtureID
			entry.AwardedPoints = AwardedPoints(entry.BasePoints, entry.IsGolden)

			record.Breakdown[fixtureID] = entry
			record.Points += entry.AwardedPoints
		}
		records = append(records, record)
	}
	return records
}
