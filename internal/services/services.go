package services

import (
	"context"

	"sunwave/internal/models"
)

// Provider defines the interface for music generation providers.
//
// Submissions return the provider task identifier; the reconciliation engine
// owns everything that happens after submission.
type Provider interface {
	// SubmitGeneration posts a new generation request and returns its taskId.
	SubmitGeneration(ctx context.Context, req models.GenerateRequest) (string, error)

	// SubmitExtend continues an existing song and returns the new taskId.
	SubmitExtend(ctx context.Context, req models.ExtendRequest) (string, error)

	// SubmitCover covers previously uploaded audio and returns the new taskId.
	SubmitCover(ctx context.Context, req models.CoverRequest) (string, error)

	// SubmitPersona derives a voice persona and returns the personaId.
	SubmitPersona(ctx context.Context, req models.PersonaRequest) (string, error)

	// FetchTask retrieves the current state of a task as normalized records.
	//
	// A non-nil error means a transient transport or parse failure: callers
	// must treat it as "try again later", never as task failure. An empty,
	// non-nil slice means the provider accepted the task but has produced no
	// rows yet.
	FetchTask(ctx context.Context, taskID string) ([]models.Song, error)

	// Name returns the configured provider name (e.g. "kie", "sunoapi.org")
	Name() string
}
