package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"sunwave/internal/models"
	"sunwave/internal/repositories"
	"sunwave/internal/services"
	"sunwave/internal/shared"
)

const (
	// DefaultInterval is the delay between poll attempts for a task.
	DefaultInterval = 10 * time.Second
	// DefaultMaxAttempts bounds how long a task is polled before it is
	// abandoned (10 minutes at the default interval).
	DefaultMaxAttempts = 60

	variantsPerTask = 2
	eventBuffer     = 16
)

// Options tunes the poll cadence. Zero values fall back to the defaults.
type Options struct {
	Interval    time.Duration
	MaxAttempts int
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	return o
}

// pollHandle carries the per-task poll state.
type pollHandle struct {
	cancel    context.CancelFunc
	songType  models.SongType
	modelName string
	toasted   bool // guarded by Reconciler.mu
}

// Reconciler drives provider tasks from submission to settled records.
//
// Each tracked task gets placeholder records immediately and a dedicated
// poll loop that folds provider snapshots into the store until every record
// settles, the task fails, or the attempt ceiling is hit. At most one loop
// runs per task id.
type Reconciler struct {
	provider services.Provider
	store    *repositories.Store
	logger   *log.Logger
	opts     Options

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	events chan Event

	mu     sync.Mutex
	active map[string]*pollHandle
}

// NewReconciler creates a Reconciler over the given provider and store.
func NewReconciler(provider services.Provider, store *repositories.Store, logger *log.Logger, opts Options) *Reconciler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Reconciler{
		provider: provider,
		store:    store,
		logger:   logger,
		opts:     opts.withDefaults(),
		ctx:      ctx,
		cancel:   cancel,
		events:   make(chan Event, eventBuffer),
		active:   make(map[string]*pollHandle),
	}
}

// Events returns the reconciliation outcome channel.
func (r *Reconciler) Events() <-chan Event {
	return r.events
}

// Track registers a freshly submitted task: it writes one placeholder per
// expected variant and starts the poll loop. Tracking an already-tracked
// task id is a no-op beyond the placeholder write.
func (r *Reconciler) Track(taskID, modelName string, songType models.SongType) {
	now := time.Now().UTC().Format(time.RFC3339)
	seed := shared.GenerateID()
	for i := 1; i <= variantsPerTask; i++ {
		placeholder := models.Song{
			ID:         models.PlaceholderID(seed, i).String(),
			TaskID:     taskID,
			Title:      fmt.Sprintf("Generating v%d...", i),
			Status:     models.StatusQueue,
			Type:       songType,
			ModelName:  modelName,
			CreateTime: now,
		}
		if err := r.store.Put(placeholder); err != nil {
			r.logger.Error("failed to write placeholder record", "taskId", taskID, "err", err)
		}
	}
	r.startPoll(taskID, modelName, songType)
}

// Resume restarts poll loops for tasks left unfinished in a prior session.
//
// It scans a store snapshot for records still worth polling and tracks each
// distinct task id, without minting new placeholders. Returns the number of
// loops started.
func (r *Reconciler) Resume(songs []models.Song) int {
	resumed := 0
	seen := make(map[string]bool)
	for _, song := range songs {
		if !song.Active() || seen[song.TaskID] {
			continue
		}
		seen[song.TaskID] = true
		if r.startPoll(song.TaskID, song.ModelName, song.Type) {
			resumed++
		}
	}
	if resumed > 0 {
		r.logger.Info("resumed polling for unfinished tasks", "count", resumed)
	}
	return resumed
}

// Polling reports whether a poll loop is currently running for the task.
func (r *Reconciler) Polling(taskID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.active[taskID]
	return ok
}

// ActiveCount returns the number of running poll loops.
func (r *Reconciler) ActiveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active)
}

// Stop cancels every poll loop and waits for them to exit.
func (r *Reconciler) Stop() {
	r.cancel()
	r.wg.Wait()
}

// startPoll launches the poll goroutine unless one already owns the task.
func (r *Reconciler) startPoll(taskID, modelName string, songType models.SongType) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.active[taskID]; ok {
		return false
	}

	ctx, cancel := context.WithCancel(r.ctx)
	handle := &pollHandle{cancel: cancel, songType: songType, modelName: modelName}
	r.active[taskID] = handle

	r.wg.Add(1)
	go r.poll(ctx, taskID, handle)
	return true
}

func (r *Reconciler) release(taskID string) {
	r.mu.Lock()
	delete(r.active, taskID)
	r.mu.Unlock()
}

func (r *Reconciler) poll(ctx context.Context, taskID string, handle *pollHandle) {
	defer r.wg.Done()
	defer r.release(taskID)

	ticker := time.NewTicker(r.opts.Interval)
	defer ticker.Stop()

	for attempt := 1; attempt <= r.opts.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if r.tick(ctx, taskID, handle) {
			return
		}
	}

	// Ceiling hit: stop quietly, leaving whatever records exist in place.
	r.logger.Warn("abandoning task after attempt ceiling", "taskId", taskID, "attempts", r.opts.MaxAttempts)
}

// tick runs one reconciliation pass and reports whether the loop is done.
//
// A transient fetch failure or an empty snapshot still consumes an attempt.
func (r *Reconciler) tick(ctx context.Context, taskID string, handle *pollHandle) bool {
	records, err := r.provider.FetchTask(ctx, taskID)
	if err != nil {
		r.logger.Warn("poll attempt failed", "taskId", taskID, "err", err)
		return false
	}
	if len(records) == 0 {
		return false
	}

	settled := true
	failed := false
	failureDetail := ""
	for _, record := range records {
		observed := services.ResolveStatus(record)
		if existing, err := r.store.Get(record.ID); err == nil {
			record.Type = existing.Type
			record.IsLiked = existing.IsLiked
			record.Status = models.MergeStatus(existing.Status, observed)
			if record.Title == "" {
				record.Title = existing.Title
			}
		} else {
			record.Type = handle.songType
			record.Status = models.MergeStatus(models.StatusPending, observed)
		}
		if record.ModelName == "" {
			record.ModelName = handle.modelName
		}

		if err := r.store.Put(record); err != nil {
			r.logger.Error("failed to persist task record", "id", record.ID, "taskId", taskID, "err", err)
		}

		if record.Status == models.StatusError && !failed {
			failed = true
			// Synthesized failure records carry the provider message in tags.
			if record.ModelName == "Error" {
				failureDetail = record.Tags
			}
		}
		if !record.Settled() {
			settled = false
		}
	}

	// Real records have landed; placeholders are no longer needed even if
	// the task is still mid-flight.
	if err := r.store.DeleteProvisional(taskID); err != nil {
		r.logger.Error("failed to clean up placeholder records", "taskId", taskID, "err", err)
	}

	if failed {
		r.mu.Lock()
		alreadyToasted := handle.toasted
		handle.toasted = true
		r.mu.Unlock()
		if !alreadyToasted {
			r.emit(failedEvent(taskID, failureDetail))
		}
		return true
	}
	if settled {
		r.emit(finishedEvent(taskID))
		return true
	}
	return false
}

// emit delivers an event without blocking the poll loop.
func (r *Reconciler) emit(event Event) {
	select {
	case r.events <- event:
	default:
		r.logger.Debug("event dropped, consumer is behind", "kind", event.Kind, "taskId", event.TaskID)
	}
}
