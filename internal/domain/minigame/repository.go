package minigame

import "context"

// Repository is the transactional state store for draft sessions.
type Repository interface {
	// RunInTx runs fn inside one transaction. Commit fails with ErrTxConflict
	// when anything fn read changed underneath it. fn may be invoked again by
	// callers that retry, so it must not have side effects outside tx.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	GetSession(ctx context.Context, key SessionKey) (Session, bool, error)
	ListPicks(ctx context.Context, key SessionKey) ([]Pick, error)
	ListGoldenLocks(ctx context.Context, key SessionKey) ([]GoldenLock, error)
	ListScoreRecords(ctx context.Context, key SessionKey) ([]ScoreRecord, error)
	// UpsertScoreRecords overwrites the given records atomically.
	UpsertScoreRecords(ctx context.Context, key SessionKey, records []ScoreRecord) error
	ListSessionsByRoom(ctx context.Context, roomCode string) ([]Session, error)
	ListSessionKeysByGameweek(ctx context.Context, gameweek int) ([]SessionKey, error)
}

// Tx is the view of the store inside RunInTx. All reads must be issued before
// the first write; a read after a write fails with ErrReadAfterWrite.
type Tx interface {
	GetSession(ctx context.Context, key SessionKey) (Session, bool, error)
	FindPickByScore(ctx context.Context, key SessionKey, fixtureID int64, score Score) (Pick, bool, error)
	GetPick(ctx context.Context, key SessionKey, playerID string, fixtureID int64) (Pick, bool, error)
	// GetGoldenLocks returns the locks present for playerIDs, keyed by player.
	GetGoldenLocks(ctx context.Context, key SessionKey, playerIDs []string) (map[string]GoldenLock, error)

	PutSession(ctx context.Context, session Session) error
	CreatePick(ctx context.Context, key SessionKey, pick Pick) error
	PutGoldenLock(ctx context.Context, key SessionKey, lock GoldenLock) error
}
