package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riskibarqy/gameweek-draft/internal/domain/minigame"
)

type pickKey struct {
	playerID  string
	fixtureID int64
}

type sessionDocs struct {
	session minigame.Session
	picks   map[pickKey]minigame.Pick
	locks   map[string]minigame.GoldenLock
	scores  map[string]minigame.ScoreRecord
}

// DraftRepository is an in-process minigame.Repository. Every document and
// every per-fixture pick collection carries a version; transactions record
// what they read and commit only if none of it changed.
type DraftRepository struct {
	mu       sync.Mutex
	docs     map[minigame.SessionKey]*sessionDocs
	versions map[string]int64
}

func NewDraftRepository() *DraftRepository {
	return &DraftRepository{
		docs:     make(map[minigame.SessionKey]*sessionDocs),
		versions: make(map[string]int64),
	}
}

func sessionPath(key minigame.SessionKey) string {
	return "session/" + key.String()
}

func pickPath(key minigame.SessionKey, playerID string, fixtureID int64) string {
	return fmt.Sprintf("pick/%s/%s/%d", key, playerID, fixtureID)
}

func fixturePicksPath(key minigame.SessionKey, fixtureID int64) string {
	return fmt.Sprintf("picks/%s/%d", key, fixtureID)
}

func lockPath(key minigame.SessionKey, playerID string) string {
	return fmt.Sprintf("lock/%s/%s", key, playerID)
}

// docsLocked must be called with mu held.
func (r *DraftRepository) docsLocked(key minigame.SessionKey, create bool) *sessionDocs {
	d, ok := r.docs[key]
	if !ok && create {
		d = &sessionDocs{
			picks:  make(map[pickKey]minigame.Pick),
			locks:  make(map[string]minigame.GoldenLock),
			scores: make(map[string]minigame.ScoreRecord),
		}
		r.docs[key] = d
	}
	return d
}

func (r *DraftRepository) RunInTx(ctx context.Context, fn func(ctx context.Context, tx minigame.Tx) error) error {
	tx := &draftTx{repo: r, reads: make(map[string]int64)}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.commit(tx)
}

func (r *DraftRepository) commit(tx *draftTx) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for path, seen := range tx.reads {
		if r.versions[path] != seen {
			return fmt.Errorf("%w: %s changed", minigame.ErrTxConflict, path)
		}
	}
	// Uniqueness is enforced again at commit for writers that skipped a read.
	for _, w := range tx.writes {
		if err := w.check(r); err != nil {
			return err
		}
	}
	for _, w := range tx.writes {
		w.apply(r)
		for _, path := range w.paths {
			r.versions[path]++
		}
	}
	return nil
}

func (r *DraftRepository) GetSession(_ context.Context, key minigame.SessionKey) (minigame.Session, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d := r.docsLocked(key, false)
	if d == nil || d.session.ID == "" {
		return minigame.Session{}, false, nil
	}
	s := cloneSession(d.session)
	s.Version = r.versions[sessionPath(key)]
	return s, true, nil
}

func (r *DraftRepository) ListPicks(_ context.Context, key minigame.SessionKey) ([]minigame.Pick, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d := r.docsLocked(key, false)
	if d == nil {
		return nil, nil
	}
	out := make([]minigame.Pick, 0, len(d.picks))
	for _, p := range d.picks {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		if out[i].FixtureID != out[j].FixtureID {
			return out[i].FixtureID < out[j].FixtureID
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	return out, nil
}

func (r *DraftRepository) ListGoldenLocks(_ context.Context, key minigame.SessionKey) ([]minigame.GoldenLock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d := r.docsLocked(key, false)
	if d == nil {
		return nil, nil
	}
	out := make([]minigame.GoldenLock, 0, len(d.locks))
	for _, l := range d.locks {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out, nil
}

func (r *DraftRepository) ListScoreRecords(_ context.Context, key minigame.SessionKey) ([]minigame.ScoreRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d := r.docsLocked(key, false)
	if d == nil {
		return nil, nil
	}
	out := make([]minigame.ScoreRecord, 0, len(d.scores))
	for _, s := range d.scores {
		out = append(out, cloneRecord(s))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	return out, nil
}

func (r *DraftRepository) UpsertScoreRecords(_ context.Context, key minigame.SessionKey, records []minigame.ScoreRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d := r.docsLocked(key, true)
	for _, rec := range records {
		d.scores[rec.PlayerID] = cloneRecord(rec)
	}
	return nil
}

func (r *DraftRepository) ListSessionsByRoom(_ context.Context, roomCode string) ([]minigame.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]minigame.Session, 0)
	for key, d := range r.docs {
		if key.RoomCode != roomCode || d.session.ID == "" {
			continue
		}
		out = append(out, cloneSession(d.session))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key.Gameweek < out[j].Key.Gameweek })
	return out, nil
}

func (r *DraftRepository) ListSessionKeysByGameweek(_ context.Context, gameweek int) ([]minigame.SessionKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]minigame.SessionKey, 0)
	for key, d := range r.docs {
		if key.Gameweek == gameweek && d.session.ID != "" {
			out = append(out, key)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoomCode < out[j].RoomCode })
	return out, nil
}

type pendingWrite struct {
	paths []string
	check func(r *DraftRepository) error
	apply func(r *DraftRepository)
}

type draftTx struct {
	repo   *DraftRepository
	reads  map[string]int64
	writes []pendingWrite
}

// observe records path at its current version. Caller holds repo.mu.
func (tx *draftTx) observe(path string) {
	if _, ok := tx.reads[path]; ok {
		return
	}
	tx.reads[path] = tx.repo.versions[path]
}

func (tx *draftTx) beginRead() error {
	if len(tx.writes) > 0 {
		return minigame.ErrReadAfterWrite
	}
	tx.repo.mu.Lock()
	return nil
}

func (tx *draftTx) GetSession(_ context.Context, key minigame.SessionKey) (minigame.Session, bool, error) {
	if err := tx.beginRead(); err != nil {
		return minigame.Session{}, false, err
	}
	defer tx.repo.mu.Unlock()

	path := sessionPath(key)
	tx.observe(path)
	d := tx.repo.docsLocked(key, false)
	if d == nil || d.session.ID == "" {
		return minigame.Session{}, false, nil
	}
	s := cloneSession(d.session)
	s.Version = tx.repo.versions[path]
	return s, true, nil
}

func (tx *draftTx) FindPickByScore(_ context.Context, key minigame.SessionKey, fixtureID int64, score minigame.Score) (minigame.Pick, bool, error) {
	if err := tx.beginRead(); err != nil {
		return minigame.Pick{}, false, err
	}
	defer tx.repo.mu.Unlock()

	tx.observe(fixturePicksPath(key, fixtureID))
	d := tx.repo.docsLocked(key, false)
	if d == nil {
		return minigame.Pick{}, false, nil
	}
	for _, p := range d.picks {
		if p.FixtureID == fixtureID && p.Score == score {
			return p, true, nil
		}
	}
	return minigame.Pick{}, false, nil
}

func (tx *draftTx) GetPick(_ context.Context, key minigame.SessionKey, playerID string, fixtureID int64) (minigame.Pick, bool, error) {
	if err := tx.beginRead(); err != nil {
		return minigame.Pick{}, false, err
	}
	defer tx.repo.mu.Unlock()

	tx.observe(pickPath(key, playerID, fixtureID))
	d := tx.repo.docsLocked(key, false)
	if d == nil {
		return minigame.Pick{}, false, nil
	}
	p, ok := d.picks[pickKey{playerID: playerID, fixtureID: fixtureID}]
	return p, ok, nil
}

func (tx *draftTx) GetGoldenLocks(_ context.Context, key minigame.SessionKey, playerIDs []string) (map[string]minigame.GoldenLock, error) {
	if err := tx.beginRead(); err != nil {
		return nil, err
	}
	defer tx.repo.mu.Unlock()

	out := make(map[string]minigame.GoldenLock, len(playerIDs))
	d := tx.repo.docsLocked(key, false)
	for _, playerID := range playerIDs {
		tx.observe(lockPath(key, playerID))
		if d == nil {
			continue
		}
		if l, ok := d.locks[playerID]; ok {
			out[playerID] = l
		}
	}
	return out, nil
}

func (tx *draftTx) PutSession(_ context.Context, session minigame.Session) error {
	s := cloneSession(session)
	tx.writes = append(tx.writes, pendingWrite{
		paths: []string{sessionPath(s.Key)},
		check: func(*DraftRepository) error { return nil },
		apply: func(r *DraftRepository) {
			r.docsLocked(s.Key, true).session = s
		},
	})
	return nil
}

func (tx *draftTx) CreatePick(_ context.Context, key minigame.SessionKey, pick minigame.Pick) error {
	pk := pickKey{playerID: pick.PlayerID, fixtureID: pick.FixtureID}
	tx.writes = append(tx.writes, pendingWrite{
		paths: []string{pickPath(key, pick.PlayerID, pick.FixtureID), fixturePicksPath(key, pick.FixtureID)},
		check: func(r *DraftRepository) error {
			d := r.docsLocked(key, false)
			if d == nil {
				return nil
			}
			if _, ok := d.picks[pk]; ok {
				return fmt.Errorf("%w: pick %s/%d exists", minigame.ErrTxConflict, pick.PlayerID, pick.FixtureID)
			}
			for _, p := range d.picks {
				if p.FixtureID == pick.FixtureID && p.Score == pick.Score {
					return fmt.Errorf("%w: score %s on fixture %d exists", minigame.ErrTxConflict, pick.Score, pick.FixtureID)
				}
			}
			return nil
		},
		apply: func(r *DraftRepository) {
			r.docsLocked(key, true).picks[pk] = pick
		},
	})
	return nil
}

func (tx *draftTx) PutGoldenLock(_ context.Context, key minigame.SessionKey, lock minigame.GoldenLock) error {
	tx.writes = append(tx.writes, pendingWrite{
		paths: []string{lockPath(key, lock.PlayerID)},
		check: func(r *DraftRepository) error {
			d := r.docsLocked(key, false)
			if d == nil {
				return nil
			}
			if cur, ok := d.locks[lock.PlayerID]; ok && cur.Locked {
				return fmt.Errorf("%w: golden for %s already locked", minigame.ErrTxConflict, lock.PlayerID)
			}
			return nil
		},
		apply: func(r *DraftRepository) {
			r.docsLocked(key, true).locks[lock.PlayerID] = lock
		},
	})
	return nil
}

func cloneSession(s minigame.Session) minigame.Session {
	s.Players = append([]string(nil), s.Players...)
	s.FixtureIDs = append([]int64(nil), s.FixtureIDs...)
	return s
}

func cloneRecord(rec minigame.ScoreRecord) minigame.ScoreRecord {
	breakdown := make(map[int64]minigame.BreakdownEntry, len(rec.Breakdown))
	for k, v := range rec.Breakdown {
		breakdown[k] = v
	}
	rec.Breakdown = breakdown
	return rec
}
