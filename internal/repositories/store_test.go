package repositories

import (
	"errors"
	"testing"

	"sunwave/internal/models"
	"sunwave/internal/shared"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	repo, _ := newTestRepo(t)
	return NewStore(repo, shared.NewLogger(nil))
}

func TestStoreSubscribe(t *testing.T) {
	store := newTestStore(t)

	var snapshots []Snapshot
	unsubscribe := store.Subscribe(func(snap Snapshot) {
		snapshots = append(snapshots, snap)
	})

	if len(snapshots) != 1 {
		t.Fatalf("expected immediate snapshot on subscribe, got %d deliveries", len(snapshots))
	}
	if len(snapshots[0]) != 0 {
		t.Errorf("initial snapshot has %d songs, want 0", len(snapshots[0]))
	}

	if err := store.Put(testSong("real-1", "task-1", "2026-01-02T10:00:00Z")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if len(snapshots) != 2 {
		t.Fatalf("expected notification after Put, got %d deliveries", len(snapshots))
	}
	if len(snapshots[1]) != 1 || snapshots[1][0].ID != "real-1" {
		t.Errorf("snapshot after Put = %+v", snapshots[1])
	}

	unsubscribe()
	if err := store.Delete("real-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if len(snapshots) != 2 {
		t.Errorf("subscriber notified after unsubscribe: %d deliveries", len(snapshots))
	}
}

func TestStoreSnapshotOrdering(t *testing.T) {
	store := newTestStore(t)

	var last Snapshot
	store.Subscribe(func(snap Snapshot) { last = snap })

	for _, song := range []models.Song{
		testSong("old", "task-1", "2026-01-01T10:00:00Z"),
		testSong("newest", "task-2", "2026-01-03T10:00:00Z"),
	} {
		if err := store.Put(song); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	if len(last) != 2 || last[0].ID != "newest" || last[1].ID != "old" {
		t.Errorf("snapshot not newest-first: %+v", last)
	}
}

func TestStoreDeleteProvisionalNotifies(t *testing.T) {
	store := newTestStore(t)

	notifications := 0
	store.Subscribe(func(Snapshot) { notifications++ })
	if err := store.Put(testSong(models.ProvisionalID("seed", 1), "task-1", "2026-01-02T10:00:00Z")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	before := notifications

	if err := store.DeleteProvisional("task-1"); err != nil {
		t.Fatalf("DeleteProvisional failed: %v", err)
	}
	if notifications != before+1 {
		t.Errorf("expected one notification for removed placeholders, got %d", notifications-before)
	}

	// Nothing left to remove, no notification.
	if err := store.DeleteProvisional("task-1"); err != nil {
		t.Fatalf("second DeleteProvisional failed: %v", err)
	}
	if notifications != before+1 {
		t.Errorf("empty cleanup notified subscribers")
	}
}

func TestStoreUnconfigured(t *testing.T) {
	store := NewStore(nil, shared.NewLogger(nil))

	if store.Configured() {
		t.Error("nil-repo store reports configured")
	}

	var snapshots []Snapshot
	store.Subscribe(func(snap Snapshot) { snapshots = append(snapshots, snap) })
	if len(snapshots) != 1 || len(snapshots[0]) != 0 {
		t.Fatalf("expected one empty snapshot, got %+v", snapshots)
	}

	// Writes are silent no-ops and never notify.
	if err := store.Put(testSong("real-1", "task-1", "2026-01-02T10:00:00Z")); err != nil {
		t.Errorf("Put on unconfigured store: %v", err)
	}
	if err := store.Patch("real-1", map[string]any{"is_liked": true}); err != nil {
		t.Errorf("Patch on unconfigured store: %v", err)
	}
	if err := store.Delete("real-1"); err != nil {
		t.Errorf("Delete on unconfigured store: %v", err)
	}
	if err := store.DeleteProvisional("task-1"); err != nil {
		t.Errorf("DeleteProvisional on unconfigured store: %v", err)
	}
	if len(snapshots) != 1 {
		t.Errorf("unconfigured store notified subscribers: %d deliveries", len(snapshots))
	}

	if _, err := store.Get("real-1"); !errors.Is(err, shared.ErrSongNotFound) {
		t.Errorf("expected ErrSongNotFound from unconfigured Get, got %v", err)
	}
	snap, err := store.List()
	if err != nil || len(snap) != 0 {
		t.Errorf("unconfigured List = (%v, %v), want empty", snap, err)
	}
}
