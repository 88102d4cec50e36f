package minigame

// Turn is the (player, fixture) pair allowed to act at a given turn index.
type Turn struct {
	Index         int
	PlayerID      string
	FixtureID     int64
	FixtureIndex  int
	TurnInFixture int
}

// ActiveTurn maps turn index t onto the draft grid. Every fixture gets one
// pick per player and the starting player rotates by one on each fixture, so
// with players A, B, C the order is A B C, B C A, C A B.
func ActiveTurn(players []string, fixtureIDs []int64, t int) (Turn, bool) {
	p := len(players)
	f := len(fixtureIDs)
	if p == 0 || f == 0 || t < 0 {
		return Turn{}, false
	}

	fixtureIndex := t / p
	if fixtureIndex >= f {
		return Turn{}, false
	}
	turnInFixture := t % p
	rotated := (turnInFixture + fixtureIndex) % p

	return Turn{
		Index:         t,
		PlayerID:      players[rotated],
		FixtureID:     fixtureIDs[fixtureIndex],
		FixtureIndex:  fixtureIndex,
		TurnInFixture: turnInFixture,
	}, true
}

// ActiveTurn returns the turn the session is waiting on.
func (s Session) ActiveTurn() (Turn, bool) {
	if s.State != StateDraft || s.CurrentTurn >= s.TotalTurns {
		return Turn{}, false
	}
	return ActiveTurn(s.Players, s.FixtureIDs, s.CurrentTurn)
}

// TotalTurns is the number of picks a draft takes to complete.
func TotalTurns(players []string, fixtureIDs []int64) int {
	return len(players) * len(fixtureIDs)
}
