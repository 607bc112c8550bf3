package repositories

import (
	"sync"

	"github.com/charmbracelet/log"

	"sunwave/internal/models"
	"sunwave/internal/shared"
)

// Snapshot is the full ordered song collection delivered to subscribers on
// every change, newest-first.
type Snapshot []models.Song

// Store wraps a [SongRepository] with change notification.
//
// Every successful mutation re-reads the ordered collection and fans the
// snapshot out to all subscribers, mirroring a real-time document store. A
// Store constructed without a repository is unconfigured: writes become
// silent no-ops and subscribers receive an empty snapshot, so the rest of
// the engine works purely in memory.
type Store struct {
	repo   *SongRepository
	logger *log.Logger

	mu     sync.Mutex
	subs   map[int]func(Snapshot)
	nextID int
}

// NewStore creates a Store over the given repository. repo may be nil for an
// unconfigured (in-memory only) store.
func NewStore(repo *SongRepository, logger *log.Logger) *Store {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Store{
		repo:   repo,
		logger: logger,
		subs:   make(map[int]func(Snapshot)),
	}
}

// Configured reports whether writes reach a durable backing repository.
func (s *Store) Configured() bool {
	return s.repo != nil
}

// Subscribe registers a change callback and returns an unsubscribe func.
//
// The current snapshot is delivered immediately on registration.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	fn(s.snapshot())

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Put upserts a record and notifies subscribers.
func (s *Store) Put(song models.Song) error {
	if !s.Configured() {
		return nil
	}
	if err := s.repo.Put(song); err != nil {
		return err
	}
	s.notify()
	return nil
}

// Patch applies a partial field update and notifies subscribers.
func (s *Store) Patch(id string, fields map[string]any) error {
	if !s.Configured() {
		return nil
	}
	if err := s.repo.Patch(id, fields); err != nil {
		return err
	}
	s.notify()
	return nil
}

// Delete removes a record and notifies subscribers.
func (s *Store) Delete(id string) error {
	if !s.Configured() {
		return nil
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.notify()
	return nil
}

// DeleteProvisional removes a task's placeholder records, notifying only
// when something was actually removed.
func (s *Store) DeleteProvisional(taskID string) error {
	if !s.Configured() {
		return nil
	}
	removed, err := s.repo.DeleteProvisional(taskID)
	if err != nil {
		return err
	}
	if removed > 0 {
		s.logger.Debug("cleaned up provisional records", "taskId", taskID, "removed", removed)
		s.notify()
	}
	return nil
}

// Get retrieves a single record.
func (s *Store) Get(id string) (*models.Song, error) {
	if !s.Configured() {
		return nil, shared.ErrSongNotFound
	}
	return s.repo.Get(id)
}

// List returns the current ordered collection.
func (s *Store) List() (Snapshot, error) {
	if !s.Configured() {
		return Snapshot{}, nil
	}
	songs, err := s.repo.List()
	if err != nil {
		return nil, err
	}
	return Snapshot(songs), nil
}

// ListByTask returns the records referencing a task.
func (s *Store) ListByTask(taskID string) ([]models.Song, error) {
	if !s.Configured() {
		return nil, nil
	}
	return s.repo.ListByTask(taskID)
}

// snapshot reads the collection, downgrading read errors to an empty view.
func (s *Store) snapshot() Snapshot {
	snap, err := s.List()
	if err != nil {
		s.logger.Error("failed to read store snapshot", "err", err)
		return Snapshot{}
	}
	return snap
}

// notify fans the current snapshot out to all subscribers.
//
// Callbacks run outside the lock so a subscriber may mutate the store
// (triggering a follow-up notification) without deadlocking.
func (s *Store) notify() {
	s.mu.Lock()
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	if len(fns) == 0 {
		return
	}

	snap := s.snapshot()
	for _, fn := range fns {
		fn(snap)
	}
}
