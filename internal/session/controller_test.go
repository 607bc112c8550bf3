package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"sunwave/internal/models"
	"sunwave/internal/repositories"
	"sunwave/internal/shared"
	"sunwave/internal/tasks"
)

type mockProvider struct {
	mu          sync.Mutex
	submitErr   error
	submitCalls int
	nextTaskID  string
}

func (m *mockProvider) submit() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitCalls++
	if m.submitErr != nil {
		return "", m.submitErr
	}
	if m.nextTaskID != "" {
		return m.nextTaskID, nil
	}
	return fmt.Sprintf("task-%d", m.submitCalls), nil
}

func (m *mockProvider) SubmitGeneration(ctx context.Context, req models.GenerateRequest) (string, error) {
	return m.submit()
}

func (m *mockProvider) SubmitExtend(ctx context.Context, req models.ExtendRequest) (string, error) {
	return m.submit()
}

func (m *mockProvider) SubmitCover(ctx context.Context, req models.CoverRequest) (string, error) {
	return m.submit()
}

func (m *mockProvider) SubmitPersona(ctx context.Context, req models.PersonaRequest) (string, error) {
	return m.submit()
}

func (m *mockProvider) FetchTask(ctx context.Context, taskID string) ([]models.Song, error) {
	return []models.Song{}, nil
}

func (m *mockProvider) Name() string { return shared.ProviderKie }

func testCredits() shared.CreditsConfig {
	return shared.CreditsConfig{
		KieBalance:        80,
		SunoapiBalance:    50,
		CostPerGeneration: 12,
		RefundOnFailure:   true,
	}
}

func newTestController(t *testing.T, provider *mockProvider, credits shared.CreditsConfig) (*Controller, *repositories.Store, *tasks.Reconciler) {
	t.Helper()
	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	logger := shared.NewLogger(nil)
	store := repositories.NewStore(repositories.NewSongRepository(db), logger)
	reconciler := tasks.NewReconciler(provider, store, logger, tasks.Options{
		Interval:    time.Hour, // ticks never fire during controller tests
		MaxAttempts: 1,
	})
	t.Cleanup(reconciler.Stop)

	controller := NewController(provider, store, reconciler, credits, logger)
	t.Cleanup(controller.Close)
	return controller, store, reconciler
}

func storedSong(id, taskID string, status models.Status, songType models.SongType) models.Song {
	return models.Song{
		ID:         id,
		TaskID:     taskID,
		Title:      "Neon Skyline",
		Status:     status,
		Type:       songType,
		CreateTime: "2026-01-02T10:00:00Z",
	}
}

func TestGenerateDebitsAndTracks(t *testing.T) {
	provider := &mockProvider{nextTaskID: "task-1"}
	controller, _, reconciler := newTestController(t, provider, testCredits())

	taskID, err := controller.Generate(context.Background(), models.GenerateRequest{Prompt: "dream pop", Model: "V5"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if taskID != "task-1" {
		t.Errorf("taskID = %s", taskID)
	}
	if got := controller.Credits(); got != 68 {
		t.Errorf("credits = %d, want 80-12=68", got)
	}
	if !reconciler.Polling("task-1") {
		t.Error("submitted task is not being polled")
	}

	songs := controller.Songs()
	if len(songs) != 2 {
		t.Fatalf("projection has %d songs, want 2 placeholders", len(songs))
	}
	for _, song := range songs {
		if !song.Provisional() || song.TaskID != "task-1" {
			t.Errorf("unexpected projection record: %+v", song)
		}
	}
}

func TestGenerateRefundPolicy(t *testing.T) {
	t.Run("refund enabled", func(t *testing.T) {
		provider := &mockProvider{submitErr: fmt.Errorf("%w: HTTP 500", shared.ErrGenerationFailed)}
		controller, _, _ := newTestController(t, provider, testCredits())

		_, err := controller.Generate(context.Background(), models.GenerateRequest{Prompt: "x"})
		if !errors.Is(err, shared.ErrGenerationFailed) {
			t.Fatalf("expected ErrGenerationFailed, got %v", err)
		}
		if got := controller.Credits(); got != 80 {
			t.Errorf("credits = %d, want refund back to 80", got)
		}
	})

	t.Run("refund disabled", func(t *testing.T) {
		provider := &mockProvider{submitErr: fmt.Errorf("%w: HTTP 500", shared.ErrGenerationFailed)}
		credits := testCredits()
		credits.RefundOnFailure = false
		controller, _, _ := newTestController(t, provider, credits)

		if _, err := controller.Generate(context.Background(), models.GenerateRequest{Prompt: "x"}); err == nil {
			t.Fatal("expected submission error")
		}
		if got := controller.Credits(); got != 68 {
			t.Errorf("credits = %d, want 68 with refunds disabled", got)
		}
	})
}

func TestInsufficientCredits(t *testing.T) {
	provider := &mockProvider{}
	credits := testCredits()
	credits.KieBalance = 10
	controller, _, _ := newTestController(t, provider, credits)

	_, err := controller.Generate(context.Background(), models.GenerateRequest{Prompt: "x"})
	if !errors.Is(err, shared.ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits, got %v", err)
	}
	if provider.submitCalls != 0 {
		t.Error("submission attempted with insufficient credits")
	}
	if got := controller.Credits(); got != 10 {
		t.Errorf("credits = %d, want untouched 10", got)
	}
}

func TestCoverTracksAsCover(t *testing.T) {
	provider := &mockProvider{nextTaskID: "task-9"}
	controller, _, reconciler := newTestController(t, provider, testCredits())

	if _, err := controller.Cover(context.Background(), models.CoverRequest{UploadURL: "https://u/a.mp3", Model: "V5"}); err != nil {
		t.Fatalf("Cover failed: %v", err)
	}
	if !reconciler.Polling("task-9") {
		t.Error("cover task is not being polled")
	}
	for _, song := range controller.Songs() {
		if song.Type != models.TypeCover {
			t.Errorf("cover placeholder type = %s", song.Type)
		}
	}
}

func TestCreatePersonaDoesNotDebit(t *testing.T) {
	provider := &mockProvider{nextTaskID: "persona-1"}
	controller, _, reconciler := newTestController(t, provider, testCredits())

	personaID, err := controller.CreatePersona(context.Background(), models.PersonaRequest{TaskID: "t", AudioID: "a", Name: "Vox"})
	if err != nil {
		t.Fatalf("CreatePersona failed: %v", err)
	}
	if personaID != "persona-1" {
		t.Errorf("personaID = %s", personaID)
	}
	if got := controller.Credits(); got != 80 {
		t.Errorf("credits = %d, persona creation should be free", got)
	}
	if reconciler.ActiveCount() != 0 {
		t.Error("persona creation started a poll loop")
	}
}

func TestDeleteSelectedClearsPlayback(t *testing.T) {
	controller, store, _ := newTestController(t, &mockProvider{}, testCredits())

	if err := store.Put(storedSong("real-1", "task-1", models.StatusComplete, models.TypeOriginal)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := controller.Select("real-1"); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	controller.SetPlaying(true)
	if !controller.Playing() {
		t.Fatal("expected playback after SetPlaying")
	}

	if err := controller.Delete("real-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if controller.Selected() != nil {
		t.Error("selection survived deletion")
	}
	if controller.Playing() {
		t.Error("playback survived deletion")
	}
}

func TestToggleLike(t *testing.T) {
	controller, store, _ := newTestController(t, &mockProvider{}, testCredits())

	if err := store.Put(storedSong("real-1", "task-1", models.StatusComplete, models.TypeOriginal)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if err := controller.ToggleLike("real-1"); err != nil {
		t.Fatalf("ToggleLike failed: %v", err)
	}
	got, _ := store.Get("real-1")
	if !got.IsLiked {
		t.Error("expected liked after first toggle")
	}
	if got.Title != "Neon Skyline" || got.Status != models.StatusComplete {
		t.Errorf("toggle altered other fields: %+v", got)
	}

	if err := controller.ToggleLike("real-1"); err != nil {
		t.Fatalf("second ToggleLike failed: %v", err)
	}
	got, _ = store.Get("real-1")
	if got.IsLiked {
		t.Error("expected unliked after second toggle")
	}

	if err := controller.ToggleLike("ghost"); !errors.Is(err, shared.ErrSongNotFound) {
		t.Errorf("expected ErrSongNotFound, got %v", err)
	}
}

func TestRenameTitle(t *testing.T) {
	controller, store, _ := newTestController(t, &mockProvider{}, testCredits())

	if err := store.Put(storedSong("real-1", "task-1", models.StatusComplete, models.TypeOriginal)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := controller.RenameTitle("real-1", ""); !errors.Is(err, shared.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty title, got %v", err)
	}
	if err := controller.RenameTitle("real-1", "Midnight Drive"); err != nil {
		t.Fatalf("RenameTitle failed: %v", err)
	}
	got, _ := store.Get("real-1")
	if got.Title != "Midnight Drive" {
		t.Errorf("title = %s", got.Title)
	}
}

func TestFilterProjection(t *testing.T) {
	controller, store, _ := newTestController(t, &mockProvider{}, testCredits())

	store.Put(storedSong("orig-1", "task-1", models.StatusComplete, models.TypeOriginal))
	store.Put(storedSong("cover-1", "task-2", models.StatusComplete, models.TypeCover))

	if got := len(controller.Songs()); got != 2 {
		t.Errorf("unfiltered projection = %d songs", got)
	}
	if err := controller.SetFilter(FilterCover); err != nil {
		t.Fatalf("SetFilter failed: %v", err)
	}
	songs := controller.Songs()
	if len(songs) != 1 || songs[0].ID != "cover-1" {
		t.Errorf("cover filter projection = %+v", songs)
	}
	if err := controller.SetFilter("liked"); !errors.Is(err, shared.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for unknown filter, got %v", err)
	}
}

func TestReuseRequests(t *testing.T) {
	controller, store, _ := newTestController(t, &mockProvider{}, testCredits())

	song := storedSong("real-1", "task-1", models.StatusComplete, models.TypeOriginal)
	song.Prompt = "verse one lyrics"
	song.Tags = "synthwave, retro"
	song.ModelName = "V4_5"
	if err := store.Put(song); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	remix, err := controller.ReuseRemix("real-1")
	if err != nil {
		t.Fatalf("ReuseRemix failed: %v", err)
	}
	if !remix.CustomMode || remix.Lyrics != "verse one lyrics" || remix.Style != "synthwave, retro" || remix.Title != "Neon Skyline" || remix.Model != "V4_5" {
		t.Errorf("remix request = %+v", remix)
	}

	style, err := controller.ReuseStyle("real-1")
	if err != nil {
		t.Fatalf("ReuseStyle failed: %v", err)
	}
	if !style.CustomMode || style.Style != "synthwave, retro" || style.Title != "" || style.Lyrics != "" {
		t.Errorf("style request = %+v", style)
	}

	if _, err := controller.ReuseRemix("ghost"); !errors.Is(err, shared.ErrSongNotFound) {
		t.Errorf("expected ErrSongNotFound, got %v", err)
	}
}

func TestSnapshotResumesPolling(t *testing.T) {
	controller, store, reconciler := newTestController(t, &mockProvider{}, testCredits())
	_ = controller

	song := storedSong("real-1", "task-7", models.StatusStreaming, models.TypeOriginal)
	if err := store.Put(song); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if !reconciler.Polling("task-7") {
		t.Error("streaming record in snapshot did not resume polling")
	}
}
