// Status normalization for the heterogeneous upstream vocabularies.
//
// The providers report task state three ways: an explicit status string
// (PENDING, TEXT_SUCCESS, FIRST_SUCCESS, SUCCESS, *_FAILED, *_ERROR), a
// callbackType field (text, first, complete, error), and completion implied
// by the presence of a playable or streaming URL on a result row. Everything
// here is pure so the mapping stays testable without a network.

package services

import (
	"strings"

	"sunwave/internal/models"
)

// Upstream status vocabulary (record-info responses).
const (
	rawPending      = "PENDING"
	rawTextSuccess  = "TEXT_SUCCESS"
	rawFirstSuccess = "FIRST_SUCCESS"
	rawSuccess      = "SUCCESS"
)

// Upstream callbackType vocabulary.
const (
	callbackText     = "text"
	callbackFirst    = "first"
	callbackComplete = "complete"
	callbackError    = "error"
)

// effectiveRaw folds callbackType into the raw status vocabulary.
// callbackType, when present, is the fresher signal and wins.
func effectiveRaw(status, callbackType string) string {
	switch callbackType {
	case callbackComplete:
		return rawSuccess
	case callbackFirst:
		return rawFirstSuccess
	case callbackError:
		return "FAILED"
	case callbackText:
		return rawTextSuccess
	}
	if status == "" {
		return rawPending
	}
	return status
}

// isFailure reports whether the raw status carries an explicit failure
// signal. Failure beats every completion signal.
func isFailure(raw string) bool {
	return strings.Contains(raw, "FAILED") || strings.Contains(raw, "ERROR")
}

// NormalizeTaskStatus maps the task-level upstream vocabulary onto the local
// status enum.
func NormalizeTaskStatus(status, callbackType string) models.Status {
	raw := effectiveRaw(status, callbackType)
	switch {
	case isFailure(raw):
		return models.StatusError
	case raw == rawSuccess:
		return models.StatusComplete
	case raw == rawFirstSuccess:
		return models.StatusStreaming
	case raw == rawTextSuccess:
		return models.StatusSubmitted
	default:
		return models.StatusQueue
	}
}

// ResolveStatus applies the per-record precedence on top of a task-level
// status: a playable URL implies complete, a streaming URL implies
// streaming, otherwise the reported status stands. Failure signals are
// never overridden.
func ResolveStatus(song models.Song) models.Status {
	if song.Status == models.StatusError {
		return models.StatusError
	}
	if song.AudioURL != "" {
		return models.StatusComplete
	}
	if song.StreamAudioURL != "" {
		return models.StatusStreaming
	}
	return song.Status
}
