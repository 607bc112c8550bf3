package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")
	ErrMissingAPIKey = fmt.Errorf("missing API key")

	// Provider errors
	ErrGenerationFailed = fmt.Errorf("generation request failed")
	ErrExtendFailed     = fmt.Errorf("extend request failed")
	ErrCoverFailed      = fmt.Errorf("cover request failed")
	ErrPersonaFailed    = fmt.Errorf("persona request failed")
	ErrAPIRequest       = fmt.Errorf("API request failed")

	// Store errors
	ErrStoreUnavailable = fmt.Errorf("record store unavailable")
	ErrSongNotFound     = fmt.Errorf("song not found")

	// Session errors
	ErrInsufficientCredits = fmt.Errorf("insufficient credits")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
