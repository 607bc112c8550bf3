package models

// GenerateRequest contains the parameters for a new generation task.
//
// In custom mode the user supplies style/title/lyrics separately; otherwise
// Prompt is a free-form description.
type GenerateRequest struct {
	Prompt       string
	CustomMode   bool
	Instrumental bool
	Model        string // one of KnownModels ids
	Style        string
	Title        string
	Lyrics       string // substituted for Prompt in custom, non-instrumental mode
	NegativeTags string
	VocalGender  string // "m" or "f"
	StyleWeight  float64
	Weirdness    float64
	PersonaID    string
}

// EffectivePrompt returns the text sent as the provider's prompt field.
//
// Lyrics replace the prompt only in custom, non-instrumental mode; in every
// other mode lyrics are ignored.
func (r GenerateRequest) EffectivePrompt() string {
	if r.CustomMode && !r.Instrumental && r.Lyrics != "" {
		return r.Lyrics
	}
	return r.Prompt
}

// ExtendRequest continues an existing song from a given offset.
type ExtendRequest struct {
	AudioID      string // provider id of the song being extended
	Prompt       string
	ContinueAt   float64 // seconds into the source audio
	Model        string
	Tags         string
	Title        string
	Instrumental bool
}

// CoverRequest generates a cover over previously uploaded audio.
type CoverRequest struct {
	UploadURL    string
	Prompt       string
	CustomMode   bool
	Instrumental bool
	Model        string
	Style        string
	Title        string
	NegativeTags string
	VocalGender  string
	StyleWeight  float64
	Weirdness    float64
	AudioWeight  float64
	PersonaID    string
}

// EffectivePrompt mirrors [GenerateRequest.EffectivePrompt] for covers: the
// prompt field doubles as lyrics in custom mode.
func (r CoverRequest) EffectivePrompt() string {
	return r.Prompt
}

// PersonaRequest derives a reusable voice persona from a finished song.
type PersonaRequest struct {
	TaskID      string
	AudioID     string
	Name        string
	Description string
}
