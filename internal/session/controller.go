package session

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"sunwave/internal/models"
	"sunwave/internal/repositories"
	"sunwave/internal/services"
	"sunwave/internal/shared"
	"sunwave/internal/tasks"
)

// Filter narrows the projected song collection by type.
type Filter string

const (
	FilterAll      Filter = "all"
	FilterOriginal Filter = "original"
	FilterCover    Filter = "cover"
)

// Valid reports whether f is a known filter value.
func (f Filter) Valid() bool {
	switch f {
	case FilterAll, FilterOriginal, FilterCover:
		return true
	}
	return false
}

// Controller holds the client-side session state: the current song
// projection, selection and playback, the type filter, and the local credit
// balance.
//
// It subscribes to the store so every write (its own or the reconciler's)
// refreshes the projection, and it re-registers unfinished tasks with the
// reconciler on each snapshot so polling survives restarts.
type Controller struct {
	provider   services.Provider
	store      *repositories.Store
	reconciler *tasks.Reconciler
	logger     *log.Logger

	cost   int
	refund bool

	mu          sync.Mutex
	snapshot    repositories.Snapshot
	selectedID  string
	playing     bool
	filter      Filter
	credits     int
	unsubscribe func()
}

// NewController wires a Controller to the store and reconciler.
//
// The initial credit balance comes from the configured per-provider seed.
func NewController(provider services.Provider, store *repositories.Store, reconciler *tasks.Reconciler, credits shared.CreditsConfig, logger *log.Logger) *Controller {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	c := &Controller{
		provider:   provider,
		store:      store,
		reconciler: reconciler,
		logger:     logger,
		cost:       credits.CostPerGeneration,
		refund:     credits.RefundOnFailure,
		filter:     FilterAll,
		credits:    credits.InitialBalance(provider.Name()),
	}
	c.unsubscribe = store.Subscribe(c.onSnapshot)
	return c
}

// Close detaches the controller from the store.
func (c *Controller) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
}

func (c *Controller) onSnapshot(snap repositories.Snapshot) {
	c.mu.Lock()
	c.snapshot = snap
	if c.selectedID != "" && c.find(c.selectedID) == nil {
		c.selectedID = ""
		c.playing = false
	}
	c.mu.Unlock()

	c.reconciler.Resume(snap)
}

// find returns the snapshot record with the given id. Callers hold c.mu.
func (c *Controller) find(id string) *models.Song {
	for i := range c.snapshot {
		if c.snapshot[i].ID == id {
			return &c.snapshot[i]
		}
	}
	return nil
}

// debit reserves the flat generation cost up front.
func (c *Controller) debit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.credits < c.cost {
		return shared.ErrInsufficientCredits
	}
	c.credits -= c.cost
	return nil
}

// recredit returns the reserved cost after a failed submission, when the
// refund policy allows it. Failures observed mid-poll are never refunded.
func (c *Controller) recredit() {
	if !c.refund {
		return
	}
	c.mu.Lock()
	c.credits += c.cost
	c.mu.Unlock()
}

// Generate submits a new generation task and starts tracking it.
func (c *Controller) Generate(ctx context.Context, req models.GenerateRequest) (string, error) {
	if err := c.debit(); err != nil {
		return "", err
	}
	taskID, err := c.provider.SubmitGeneration(ctx, req)
	if err != nil {
		c.recredit()
		return "", err
	}
	c.reconciler.Track(taskID, req.Model, models.TypeOriginal)
	return taskID, nil
}

// Extend submits a continuation of an existing song and tracks the new task.
func (c *Controller) Extend(ctx context.Context, req models.ExtendRequest) (string, error) {
	if err := c.debit(); err != nil {
		return "", err
	}
	taskID, err := c.provider.SubmitExtend(ctx, req)
	if err != nil {
		c.recredit()
		return "", err
	}
	c.reconciler.Track(taskID, req.Model, models.TypeOriginal)
	return taskID, nil
}

// Cover submits a cover over uploaded audio and tracks the new task.
func (c *Controller) Cover(ctx context.Context, req models.CoverRequest) (string, error) {
	if err := c.debit(); err != nil {
		return "", err
	}
	taskID, err := c.provider.SubmitCover(ctx, req)
	if err != nil {
		c.recredit()
		return "", err
	}
	c.reconciler.Track(taskID, req.Model, models.TypeCover)
	return taskID, nil
}

// CreatePersona derives a voice persona from a finished song. Personas are
// free and produce no task to track.
func (c *Controller) CreatePersona(ctx context.Context, req models.PersonaRequest) (string, error) {
	return c.provider.SubmitPersona(ctx, req)
}

// ReuseRemix prefills a generation request from an existing song, carrying
// its lyrics, style and title into a new custom-mode generation.
func (c *Controller) ReuseRemix(id string) (models.GenerateRequest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	song := c.find(id)
	if song == nil {
		return models.GenerateRequest{}, shared.ErrSongNotFound
	}
	return models.GenerateRequest{
		CustomMode: true,
		Prompt:     song.Prompt,
		Lyrics:     song.Prompt,
		Style:      song.Tags,
		Title:      song.Title,
		Model:      song.ModelName,
	}, nil
}

// ReuseStyle prefills a generation request with only the song's style tags.
func (c *Controller) ReuseStyle(id string) (models.GenerateRequest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	song := c.find(id)
	if song == nil {
		return models.GenerateRequest{}, shared.ErrSongNotFound
	}
	return models.GenerateRequest{
		CustomMode: true,
		Style:      song.Tags,
		Model:      song.ModelName,
	}, nil
}

// Delete removes a song. Deleting the selected song clears selection and
// playback.
func (c *Controller) Delete(id string) error {
	if err := c.store.Delete(id); err != nil {
		return err
	}
	c.mu.Lock()
	if c.selectedID == id {
		c.selectedID = ""
		c.playing = false
	}
	c.mu.Unlock()
	return nil
}

// ToggleLike flips the song's like flag, patching nothing else.
func (c *Controller) ToggleLike(id string) error {
	song, err := c.store.Get(id)
	if err != nil {
		return err
	}
	return c.store.Patch(id, map[string]any{"is_liked": !song.IsLiked})
}

// RenameTitle sets a new title on the song.
func (c *Controller) RenameTitle(id, title string) error {
	if title == "" {
		return shared.ErrInvalidInput
	}
	return c.store.Patch(id, map[string]any{"title": title})
}

// Select marks a song as the current selection; an empty id clears it.
func (c *Controller) Select(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id == "" {
		c.selectedID = ""
		c.playing = false
		return nil
	}
	if c.find(id) == nil {
		return shared.ErrSongNotFound
	}
	c.selectedID = id
	return nil
}

// Selected returns the currently selected song, or nil.
func (c *Controller) Selected() *models.Song {
	c.mu.Lock()
	defer c.mu.Unlock()
	song := c.find(c.selectedID)
	if song == nil {
		return nil
	}
	copied := *song
	return &copied
}

// SetPlaying toggles playback of the selected song.
func (c *Controller) SetPlaying(playing bool) {
	c.mu.Lock()
	c.playing = playing && c.selectedID != ""
	c.mu.Unlock()
}

// Playing reports whether the selected song is playing.
func (c *Controller) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

// SetFilter changes the projection filter.
func (c *Controller) SetFilter(f Filter) error {
	if !f.Valid() {
		return shared.ErrInvalidInput
	}
	c.mu.Lock()
	c.filter = f
	c.mu.Unlock()
	return nil
}

// Filter returns the active projection filter.
func (c *Controller) Filter() Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// Songs returns the current projection, newest-first, narrowed by the
// active filter.
func (c *Controller) Songs() []models.Song {
	c.mu.Lock()
	defer c.mu.Unlock()
	songs := make([]models.Song, 0, len(c.snapshot))
	for _, song := range c.snapshot {
		switch c.filter {
		case FilterOriginal:
			if song.Type != models.TypeOriginal {
				continue
			}
		case FilterCover:
			if song.Type != models.TypeCover {
				continue
			}
		}
		songs = append(songs, song)
	}
	return songs
}

// Credits returns the local credit balance.
func (c *Controller) Credits() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.credits
}
