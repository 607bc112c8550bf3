package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"sunwave/internal/models"
	"sunwave/internal/repositories"
	"sunwave/internal/shared"
)

// fetchStep scripts one FetchTask response. The last step repeats forever.
type fetchStep struct {
	songs []models.Song
	err   error
}

type mockProvider struct {
	mu    sync.Mutex
	steps []fetchStep
	calls int
}

func (m *mockProvider) FetchTask(ctx context.Context, taskID string) ([]models.Song, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.steps) == 0 {
		return []models.Song{}, nil
	}
	idx := m.calls
	if idx >= len(m.steps) {
		idx = len(m.steps) - 1
	}
	m.calls++
	step := m.steps[idx]
	return step.songs, step.err
}

func (m *mockProvider) SubmitGeneration(ctx context.Context, req models.GenerateRequest) (string, error) {
	return "task-mock", nil
}

func (m *mockProvider) SubmitExtend(ctx context.Context, req models.ExtendRequest) (string, error) {
	return "task-mock", nil
}

func (m *mockProvider) SubmitCover(ctx context.Context, req models.CoverRequest) (string, error) {
	return "task-mock", nil
}

func (m *mockProvider) SubmitPersona(ctx context.Context, req models.PersonaRequest) (string, error) {
	return "persona-mock", nil
}

func (m *mockProvider) Name() string { return "mock" }

func newTestReconciler(t *testing.T, provider *mockProvider, maxAttempts int) (*Reconciler, *repositories.Store) {
	t.Helper()
	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	store := repositories.NewStore(repositories.NewSongRepository(db), shared.NewLogger(nil))
	reconciler := NewReconciler(provider, store, shared.NewLogger(nil), Options{
		Interval:    2 * time.Millisecond,
		MaxAttempts: maxAttempts,
	})
	t.Cleanup(reconciler.Stop)
	return reconciler, store
}

func taskRecord(id, taskID string, status models.Status) models.Song {
	return models.Song{
		ID:         id,
		TaskID:     taskID,
		Title:      "Neon Skyline",
		Status:     status,
		CreateTime: "2026-01-02T10:00:00Z",
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func waitEvent(t *testing.T, r *Reconciler, kind EventKind) Event {
	t.Helper()
	select {
	case event := <-r.Events():
		if event.Kind != kind {
			t.Fatalf("event kind = %s, want %s", event.Kind, kind)
		}
		return event
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s event", kind)
		return Event{}
	}
}

func TestTrackWritesPlaceholders(t *testing.T) {
	reconciler, store := newTestReconciler(t, &mockProvider{}, 1000)

	reconciler.Track("task-1", "V5", models.TypeOriginal)

	songs, err := store.ListByTask("task-1")
	if err != nil {
		t.Fatalf("ListByTask failed: %v", err)
	}
	if len(songs) != 2 {
		t.Fatalf("expected 2 placeholder records, got %d", len(songs))
	}
	titles := map[string]bool{}
	for _, song := range songs {
		if !song.Provisional() {
			t.Errorf("record %s is not provisional", song.ID)
		}
		if song.Status != models.StatusQueue {
			t.Errorf("placeholder status = %s, want queue", song.Status)
		}
		if song.ModelName != "V5" || song.Type != models.TypeOriginal {
			t.Errorf("placeholder metadata = (%s, %s)", song.ModelName, song.Type)
		}
		titles[song.Title] = true
	}
	if !titles["Generating v1..."] || !titles["Generating v2..."] {
		t.Errorf("placeholder titles = %v", titles)
	}

	if !reconciler.Polling("task-1") {
		t.Error("expected a running poll loop")
	}
}

func TestTrackIsSingleFlight(t *testing.T) {
	reconciler, _ := newTestReconciler(t, &mockProvider{}, 1000)

	reconciler.Track("task-1", "V5", models.TypeOriginal)
	reconciler.Track("task-1", "V5", models.TypeOriginal)

	if got := reconciler.ActiveCount(); got != 1 {
		t.Errorf("ActiveCount = %d, want 1 loop per task", got)
	}
}

func TestReconcileToCompletion(t *testing.T) {
	streaming1 := taskRecord("real-1", "task-1", models.StatusQueue)
	streaming1.StreamAudioURL = "https://cdn/s1.mp3"
	streaming2 := taskRecord("real-2", "task-1", models.StatusQueue)
	streaming2.StreamAudioURL = "https://cdn/s2.mp3"

	complete1 := streaming1
	complete1.AudioURL = "https://cdn/a1.mp3"
	complete2 := streaming2
	complete2.AudioURL = "https://cdn/a2.mp3"

	provider := &mockProvider{steps: []fetchStep{
		{songs: []models.Song{streaming1, streaming2}},
		{songs: []models.Song{complete1, complete2}},
	}}
	reconciler, store := newTestReconciler(t, provider, 1000)

	reconciler.Track("task-1", "V5", models.TypeCover)
	waitEvent(t, reconciler, TaskFinished)
	waitFor(t, "poll loop to stop", func() bool { return !reconciler.Polling("task-1") })

	songs, err := store.ListByTask("task-1")
	if err != nil {
		t.Fatalf("ListByTask failed: %v", err)
	}
	if len(songs) != 2 {
		t.Fatalf("expected 2 settled records, got %d: %+v", len(songs), songs)
	}
	for _, song := range songs {
		if song.Provisional() {
			t.Errorf("placeholder %s survived reconciliation", song.ID)
		}
		if song.Status != models.StatusComplete {
			t.Errorf("record %s status = %s, want complete", song.ID, song.Status)
		}
		if song.Type != models.TypeCover {
			t.Errorf("record %s type = %s, want inherited cover", song.ID, song.Type)
		}
	}
}

func TestFailureEmitsSingleEvent(t *testing.T) {
	failure := models.Song{
		ID:         "task-1",
		TaskID:     "task-1",
		Title:      "Generation Failed",
		ModelName:  "Error",
		Tags:       "insufficient credits",
		Status:     models.StatusError,
		CreateTime: "2026-01-02T10:00:00Z",
	}
	provider := &mockProvider{steps: []fetchStep{{songs: []models.Song{failure}}}}
	reconciler, store := newTestReconciler(t, provider, 1000)

	reconciler.Track("task-1", "V5", models.TypeOriginal)
	event := waitEvent(t, reconciler, TaskFailed)
	if event.Message != "Generation failed: insufficient credits" {
		t.Errorf("event message = %q", event.Message)
	}
	waitFor(t, "poll loop to stop", func() bool { return !reconciler.Polling("task-1") })

	songs, err := store.ListByTask("task-1")
	if err != nil {
		t.Fatalf("ListByTask failed: %v", err)
	}
	if len(songs) != 1 || songs[0].Status != models.StatusError {
		t.Fatalf("expected single error record, got %+v", songs)
	}

	select {
	case extra := <-reconciler.Events():
		t.Errorf("unexpected second event: %+v", extra)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestTransientErrorsRetry(t *testing.T) {
	done := taskRecord("real-1", "task-1", models.StatusComplete)
	done.AudioURL = "https://cdn/a1.mp3"

	provider := &mockProvider{steps: []fetchStep{
		{err: errors.New("connection reset")},
		{err: errors.New("HTTP 502")},
		{songs: []models.Song{done}},
	}}
	reconciler, _ := newTestReconciler(t, provider, 1000)

	reconciler.Track("task-1", "V5", models.TypeOriginal)
	waitEvent(t, reconciler, TaskFinished)
}

func TestAttemptCeilingAbandonsSilently(t *testing.T) {
	reconciler, store := newTestReconciler(t, &mockProvider{}, 3)

	reconciler.Track("task-1", "V5", models.TypeOriginal)
	waitFor(t, "poll loop to give up", func() bool { return !reconciler.Polling("task-1") })

	select {
	case event := <-reconciler.Events():
		t.Errorf("abandoned task emitted event: %+v", event)
	case <-time.After(20 * time.Millisecond):
	}

	// No rows ever arrived, so the placeholders stay in place.
	songs, err := store.ListByTask("task-1")
	if err != nil {
		t.Fatalf("ListByTask failed: %v", err)
	}
	if len(songs) != 2 {
		t.Errorf("expected placeholders to remain, got %d records", len(songs))
	}
}

func TestStatusNeverRegresses(t *testing.T) {
	finished := taskRecord("real-1", "task-1", models.StatusComplete)
	finished.AudioURL = "https://cdn/a1.mp3"
	pending := taskRecord("real-2", "task-1", models.StatusQueue)

	stale := taskRecord("real-1", "task-1", models.StatusQueue)
	stale.StreamAudioURL = "https://cdn/s1.mp3"
	caughtUp := taskRecord("real-2", "task-1", models.StatusComplete)
	caughtUp.AudioURL = "https://cdn/a2.mp3"

	provider := &mockProvider{steps: []fetchStep{
		{songs: []models.Song{finished, pending}},
		{songs: []models.Song{stale, caughtUp}},
	}}
	reconciler, store := newTestReconciler(t, provider, 1000)

	reconciler.Track("task-1", "V5", models.TypeOriginal)
	waitEvent(t, reconciler, TaskFinished)

	got, err := store.Get("real-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != models.StatusComplete {
		t.Errorf("status regressed to %s after stale redelivery", got.Status)
	}
}

func TestResume(t *testing.T) {
	reconciler, _ := newTestReconciler(t, &mockProvider{}, 1000)

	snapshot := []models.Song{
		taskRecord("real-1", "task-1", models.StatusStreaming),
		taskRecord("real-2", "task-1", models.StatusStreaming),
		taskRecord("real-3", "task-2", models.StatusComplete),
		taskRecord(models.ProvisionalID("seed", 1), "task-3", models.StatusQueue),
		{ID: "no-task", Status: models.StatusQueue},
	}

	if resumed := reconciler.Resume(snapshot); resumed != 2 {
		t.Errorf("Resume = %d, want 2 (one per unfinished task)", resumed)
	}
	if !reconciler.Polling("task-1") || !reconciler.Polling("task-3") {
		t.Error("expected poll loops for unfinished tasks")
	}
	if reconciler.Polling("task-2") {
		t.Error("terminal task resumed")
	}
}
