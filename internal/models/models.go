package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Status is the local lifecycle vocabulary for a song record.
//
// Provider responses arrive in several vocabularies (explicit status strings,
// callback types, or completion implied by a populated audio URL); the
// services package normalizes all of them into these values.
type Status string

const (
	StatusPending   Status = "pending"
	StatusQueue     Status = "queue"
	StatusSubmitted Status = "submitted"
	StatusStreaming Status = "streaming"
	StatusComplete  Status = "complete"
	StatusError     Status = "error"
)

// Rank orders statuses along the merge lattice:
// queue → submitted → streaming → complete, with error above everything.
// A record never moves to a lower-ranked status.
func (s Status) Rank() int {
	switch s {
	case StatusQueue:
		return 1
	case StatusSubmitted:
		return 2
	case StatusStreaming:
		return 3
	case StatusComplete:
		return 4
	case StatusError:
		return 5
	default: // pending or unknown
		return 0
	}
}

// Terminal reports whether no further transitions can occur.
func (s Status) Terminal() bool {
	return s == StatusComplete || s == StatusError
}

// MergeStatus resolves a freshly observed status against the stored one.
//
// The merge is monotone: terminal statuses stick, and a stale re-delivery of
// an earlier status is a no-op.
func MergeStatus(old, observed Status) Status {
	if old.Terminal() {
		return old
	}
	if observed.Rank() < old.Rank() {
		return old
	}
	return observed
}

// SongType distinguishes user-created originals from covers of uploaded audio.
type SongType string

const (
	TypeOriginal SongType = "original"
	TypeCover    SongType = "cover"
)

// ProvisionalPrefix marks locally minted placeholder ids in their string form.
const ProvisionalPrefix = "temp-"

// RecordID is the tagged identity of a song record: either a local
// placeholder (seed plus variant ordinal) or a provider-issued id. The
// distinction is carried by the variant, not by inspecting strings; the
// prefixed string form exists only at the storage and wire boundary.
type RecordID struct {
	real    string
	seed    string
	ordinal int
}

// RealID wraps a provider-issued record id.
func RealID(id string) RecordID {
	return RecordID{real: id}
}

// PlaceholderID mints a placeholder identity for the given variant ordinal.
func PlaceholderID(seed string, ordinal int) RecordID {
	return RecordID{seed: seed, ordinal: ordinal}
}

// ParseRecordID recovers the tagged identity from its string form.
func ParseRecordID(s string) RecordID {
	rest, ok := strings.CutPrefix(s, ProvisionalPrefix)
	if !ok {
		return RecordID{real: s}
	}
	if i := strings.LastIndexByte(rest, '-'); i > 0 {
		if n, err := strconv.Atoi(rest[i+1:]); err == nil {
			return RecordID{seed: rest[:i], ordinal: n}
		}
	}
	return RecordID{seed: rest}
}

// Provisional reports whether the identity names a local placeholder.
func (id RecordID) Provisional() bool {
	return id.real == ""
}

// Ordinal returns the placeholder's variant number, 0 for real ids.
func (id RecordID) Ordinal() int {
	return id.ordinal
}

// String renders the storage form of the identity.
func (id RecordID) String() string {
	if id.real != "" {
		return id.real
	}
	return fmt.Sprintf("%s%s-%d", ProvisionalPrefix, id.seed, id.ordinal)
}

// ProvisionalID mints the string form of a placeholder id.
func ProvisionalID(seed string, ordinal int) string {
	return PlaceholderID(seed, ordinal).String()
}

// IsProvisional reports whether id names a local placeholder rather than a
// provider-issued record.
func IsProvisional(id string) bool {
	return ParseRecordID(id).Provisional()
}

// Song represents one track record, real or provisional.
type Song struct {
	ID             string   `json:"id"`
	TaskID         string   `json:"taskId"`
	Title          string   `json:"title"`
	ImageURL       string   `json:"imageUrl"`
	AudioURL       string   `json:"audioUrl"`
	StreamAudioURL string   `json:"streamAudioUrl"`
	VideoURL       string   `json:"videoUrl,omitempty"`
	Duration       float64  `json:"duration"` // seconds, 0 while unresolved
	Tags           string   `json:"tags"`
	Prompt         string   `json:"prompt"`
	ModelName      string   `json:"modelName"`
	CreateTime     string   `json:"createTime"` // RFC3339, as delivered upstream
	Status         Status   `json:"status"`
	Type           SongType `json:"type"`
	IsLiked        bool     `json:"isLiked"`
}

// Provisional reports whether the song is a local placeholder.
func (s Song) Provisional() bool {
	return IsProvisional(s.ID)
}

// Playable reports whether a final audio artifact is available.
func (s Song) Playable() bool {
	return s.AudioURL != ""
}

// Settled reports whether this record needs no further polling: a playable
// URL exists or the status is terminal.
func (s Song) Settled() bool {
	return s.Playable() || s.Status.Terminal()
}

// Active reports whether the song's task is still worth polling.
func (s Song) Active() bool {
	switch s.Status {
	case StatusQueue, StatusSubmitted, StatusStreaming:
		return s.TaskID != ""
	}
	return false
}

// ModelVersion describes a selectable generation model.
type ModelVersion struct {
	ID   string
	Name string
	Desc string
}

// KnownModels returns the generation models the providers accept, newest first.
func KnownModels() []ModelVersion {
	return []ModelVersion{
		{ID: "V5", Name: "v5 (Newest)", Desc: "Superior musical expression"},
		{ID: "V4_5PLUS", Name: "v4.5+", Desc: "Richer sound, max 8 min"},
		{ID: "V4_5", Name: "v4.5", Desc: "Superior genre blending"},
		{ID: "V4", Name: "v4", Desc: "Best audio quality"},
		{ID: "V3_5", Name: "v3.5", Desc: "Solid arrangements"},
	}
}
