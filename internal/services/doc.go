// Package services defines the [Provider] interface for upstream generation APIs and implements it for the two Suno-compatible providers.
//
// # Provider Interface
//
// All generation providers implement a common abstraction so the
// reconciliation engine and session controller never see provider-specific
// shapes.
//
// # Suno Implementation
//
// [SunoService] speaks the shared kie.ai / sunoapi.org wire protocol: JSON
// POST endpoints under /generate, GET /generate/record-info for polling,
// and a `{code, msg, data}` envelope on every response with code 200
// signalling success.
//
// Authentication is a static bearer token carried by an [oauth2] client
// built from [shared.ProviderConfig] at construction time. A
// [rate.Limiter] paces all outgoing calls.
//
// # Status Normalization
//
// The providers report task state in three vocabularies: an explicit status
// string, a callbackType field, and completion implied by result URLs.
// normalize.go collapses them into [models.Status] as pure functions:
//   - [NormalizeTaskStatus] : task-level status/callbackType mapping, failure beats completion
//   - [ResolveStatus] : per-record precedence, audio URL → complete, stream URL → streaming
//
// # Error Handling
//
// Submission failures wrap typed errors from shared
// ([shared.ErrGenerationFailed], [shared.ErrExtendFailed], ...) and carry
// the provider's message. [SunoService.FetchTask] instead returns transient
// errors for transport/parse problems, which callers retry on the next tick,
// and synthesizes a single terminal error record when the provider reports
// failure with no result rows.
package services
