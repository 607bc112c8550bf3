// Suno-compatible generation API implementation of [Provider]
//
// Both supported providers (kie.ai and sunoapi.org) speak the same envelope:
// JSON POST endpoints under /generate plus GET /generate/record-info, with
// `{code, msg, data}` wrapping every response and code 200 meaning success.

package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"sunwave/internal/models"
	"sunwave/internal/shared"
)

// The providers require a callback URL on every submission even when results
// are collected by polling alone.
const defaultCallbackURL = "https://sunwave.app/api/webhook"

// SunoService implements [Provider] for the Suno-compatible generation APIs.
//
// The bearer token rides on an [oauth2] static-token client; a shared rate
// limiter paces all outgoing calls so overlapping poll loops cannot stampede
// the provider.
type SunoService struct {
	cfg        shared.ProviderConfig
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewSunoService creates a gateway for the configured provider.
//
// A nil client gets a bearer-token [oauth2.NewClient]; tests inject their
// own. The configuration object is captured at construction and never read
// ambiently afterwards.
func NewSunoService(cfg shared.ProviderConfig, client *http.Client, logger *log.Logger) (*SunoService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if client == nil {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.APIKey, TokenType: "Bearer"})
		client = oauth2.NewClient(context.Background(), src)
		client.Timeout = 30 * time.Second
	}

	return &SunoService{
		cfg:        cfg,
		baseURL:    cfg.BaseURL(),
		httpClient: client,
		limiter:    rate.NewLimiter(rate.Limit(5), 2),
		logger:     logger,
	}, nil
}

func (s *SunoService) Name() string {
	return s.cfg.Name
}

// envelope is the provider's uniform response wrapper.
type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type generatePayload struct {
	Prompt              string  `json:"prompt"`
	CustomMode          bool    `json:"customMode"`
	Instrumental        bool    `json:"instrumental"`
	Model               string  `json:"model"`
	CallBackURL         string  `json:"callBackUrl"`
	Style               string  `json:"style,omitempty"`
	Title               string  `json:"title,omitempty"`
	NegativeTags        string  `json:"negativeTags,omitempty"`
	VocalGender         string  `json:"vocalGender,omitempty"`
	StyleWeight         float64 `json:"styleWeight,omitempty"`
	WeirdnessConstraint float64 `json:"weirdnessConstraint,omitempty"`
	PersonaID           string  `json:"personaId,omitempty"`
}

type extendPayload struct {
	AudioID      string  `json:"audioId"`
	Prompt       string  `json:"prompt"`
	ContinueAt   float64 `json:"continueAt"`
	Model        string  `json:"model"`
	CallBackURL  string  `json:"callBackUrl"`
	Tags         string  `json:"tags,omitempty"`
	Title        string  `json:"title,omitempty"`
	Instrumental bool    `json:"instrumental,omitempty"`
}

type coverPayload struct {
	UploadURL           string  `json:"uploadUrl"`
	Prompt              string  `json:"prompt"`
	CustomMode          bool    `json:"customMode"`
	Instrumental        bool    `json:"instrumental"`
	Model               string  `json:"model"`
	CallBackURL         string  `json:"callBackUrl"`
	Style               string  `json:"style,omitempty"`
	Title               string  `json:"title,omitempty"`
	NegativeTags        string  `json:"negativeTags,omitempty"`
	VocalGender         string  `json:"vocalGender,omitempty"`
	StyleWeight         float64 `json:"styleWeight,omitempty"`
	WeirdnessConstraint float64 `json:"weirdnessConstraint,omitempty"`
	AudioWeight         float64 `json:"audioWeight,omitempty"`
	PersonaID           string  `json:"personaId,omitempty"`
}

type personaPayload struct {
	TaskID      string `json:"taskId"`
	AudioID     string `json:"audioId"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SubmitGeneration posts a new generation request.
//
// Lyrics replace the prompt only in custom, non-instrumental mode (see
// [models.GenerateRequest.EffectivePrompt]).
func (s *SunoService) SubmitGeneration(ctx context.Context, req models.GenerateRequest) (string, error) {
	payload := generatePayload{
		Prompt:              req.EffectivePrompt(),
		CustomMode:          req.CustomMode,
		Instrumental:        req.Instrumental,
		Model:               req.Model,
		CallBackURL:         defaultCallbackURL,
		Style:               req.Style,
		Title:               req.Title,
		NegativeTags:        req.NegativeTags,
		VocalGender:         req.VocalGender,
		StyleWeight:         req.StyleWeight,
		WeirdnessConstraint: req.Weirdness,
		PersonaID:           req.PersonaID,
	}
	return s.submitTask(ctx, "/generate", payload, shared.ErrGenerationFailed)
}

// SubmitExtend continues an existing song from the given offset.
func (s *SunoService) SubmitExtend(ctx context.Context, req models.ExtendRequest) (string, error) {
	payload := extendPayload{
		AudioID:      req.AudioID,
		Prompt:       req.Prompt,
		ContinueAt:   req.ContinueAt,
		Model:        req.Model,
		CallBackURL:  defaultCallbackURL,
		Tags:         req.Tags,
		Title:        req.Title,
		Instrumental: req.Instrumental,
	}
	return s.submitTask(ctx, "/generate/extend-audio", payload, shared.ErrExtendFailed)
}

// SubmitCover generates a cover over previously uploaded audio.
func (s *SunoService) SubmitCover(ctx context.Context, req models.CoverRequest) (string, error) {
	payload := coverPayload{
		UploadURL:           req.UploadURL,
		Prompt:              req.EffectivePrompt(),
		CustomMode:          req.CustomMode,
		Instrumental:        req.Instrumental,
		Model:               req.Model,
		CallBackURL:         defaultCallbackURL,
		Style:               req.Style,
		Title:               req.Title,
		NegativeTags:        req.NegativeTags,
		VocalGender:         req.VocalGender,
		StyleWeight:         req.StyleWeight,
		WeirdnessConstraint: req.Weirdness,
		AudioWeight:         req.AudioWeight,
		PersonaID:           req.PersonaID,
	}
	return s.submitTask(ctx, "/generate/upload-cover", payload, shared.ErrCoverFailed)
}

// SubmitPersona derives a reusable voice persona from a finished song.
func (s *SunoService) SubmitPersona(ctx context.Context, req models.PersonaRequest) (string, error) {
	payload := personaPayload{
		TaskID:      req.TaskID,
		AudioID:     req.AudioID,
		Name:        req.Name,
		Description: req.Description,
	}

	env, err := s.post(ctx, "/generate/generate-persona", payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrPersonaFailed, err)
	}
	if env.Code != http.StatusOK {
		return "", fmt.Errorf("%w: %s", shared.ErrPersonaFailed, providerMessage(env.Msg))
	}

	var data struct {
		PersonaID string `json:"personaId"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil || data.PersonaID == "" {
		return "", fmt.Errorf("%w: no personaId in response", shared.ErrPersonaFailed)
	}

	s.logger.Info("persona created", "personaId", data.PersonaID)
	return data.PersonaID, nil
}

// submitTask posts a payload to a task-creating endpoint and extracts the
// taskId. Submission failures are surfaced immediately; there is no retry.
func (s *SunoService) submitTask(ctx context.Context, path string, payload any, sentinel error) (string, error) {
	env, err := s.post(ctx, path, payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", sentinel, err)
	}
	if env.Code != http.StatusOK {
		return "", fmt.Errorf("%w: %s", sentinel, providerMessage(env.Msg))
	}

	var data struct {
		TaskID string `json:"taskId"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil || data.TaskID == "" {
		return "", fmt.Errorf("%w: no taskId in response", sentinel)
	}

	s.logger.Info("task submitted", "endpoint", path, "taskId", data.TaskID)
	return data.TaskID, nil
}

// post performs a rate-limited JSON POST and decodes the envelope.
func (s *SunoService) post(ctx context.Context, path string, payload any) (*envelope, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &env, nil
}

// recordInfo is the task-status shape under the envelope's data field.
type recordInfo struct {
	TaskID       string `json:"taskId"`
	Status       string `json:"status"`
	CallbackType string `json:"callbackType"`
	ErrorMessage string `json:"errorMessage"`
	Response     struct {
		SunoData []sunoRecord `json:"sunoData"`
	} `json:"response"`
	Data []sunoRecord `json:"data"` // bare-array fallback some responses use
}

// rows returns the per-variant result records wherever the provider put them.
func (r recordInfo) rows() []sunoRecord {
	if len(r.Response.SunoData) > 0 {
		return r.Response.SunoData
	}
	return r.Data
}

// sunoRecord tolerates both camelCase and snake_case field spellings; the
// two providers disagree.
type sunoRecord struct {
	ID                  string  `json:"id"`
	AudioURL            string  `json:"audioUrl"`
	AudioURLSnake       string  `json:"audio_url"`
	StreamAudioURL      string  `json:"streamAudioUrl"`
	StreamAudioURLSnake string  `json:"stream_audio_url"`
	VideoURL            string  `json:"videoUrl"`
	VideoURLSnake       string  `json:"video_url"`
	ImageURL            string  `json:"imageUrl"`
	ImageURLSnake       string  `json:"image_url"`
	ModelName           string  `json:"modelName"`
	ModelNameSnake      string  `json:"model_name"`
	Title               string  `json:"title"`
	Tags                string  `json:"tags"`
	Prompt              string  `json:"prompt"`
	CreateTime          string  `json:"createTime"`
	Duration            float64 `json:"duration"`
}

// FetchTask retrieves and normalizes the current state of a task.
//
// Transport, HTTP, and parse failures return a non-nil error that callers
// treat as "try again later". A non-200 envelope or a failure status with
// zero rows synthesizes a single terminal error record so downstream
// consumers always have something to reconcile against.
func (s *SunoService) FetchTask(ctx context.Context, taskID string) ([]models.Song, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/generate/record-info?taskId=%s", s.baseURL, url.QueryEscape(taskID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if env.Code != http.StatusOK {
		s.logger.Warn("provider rejected status query", "taskId", taskID, "code", env.Code, "msg", env.Msg)
		return []models.Song{errorRecord(taskID, "API Error", env.Msg)}, nil
	}

	var info recordInfo
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &info); err != nil {
			return nil, fmt.Errorf("failed to decode task data: %w", err)
		}
	}

	status := NormalizeTaskStatus(info.Status, info.CallbackType)
	rows := info.rows()

	if status == models.StatusError && len(rows) == 0 {
		return []models.Song{errorRecord(taskID, "Generation Failed", info.ErrorMessage)}, nil
	}

	songs := make([]models.Song, 0, len(rows))
	for _, row := range rows {
		songs = append(songs, models.Song{
			ID:             row.ID,
			TaskID:         taskID,
			Title:          coalesce(row.Title, "Untitled"),
			ImageURL:       coalesce(row.ImageURL, row.ImageURLSnake),
			AudioURL:       coalesce(row.AudioURL, row.AudioURLSnake),
			StreamAudioURL: coalesce(row.StreamAudioURL, row.StreamAudioURLSnake),
			VideoURL:       coalesce(row.VideoURL, row.VideoURLSnake),
			Duration:       row.Duration,
			Tags:           row.Tags,
			Prompt:         row.Prompt,
			ModelName:      coalesce(row.ModelName, row.ModelNameSnake),
			CreateTime:     row.CreateTime,
			Status:         status,
		})
	}

	s.logger.Debug("fetched task", "taskId", taskID, "records", len(songs), "status", status)
	return songs, nil
}

// errorRecord synthesizes the single terminal record returned when a task
// fails before producing any rows.
func errorRecord(taskID, title, message string) models.Song {
	return models.Song{
		ID:         taskID,
		TaskID:     taskID,
		Title:      title,
		Tags:       providerMessage(message),
		ModelName:  "Error",
		CreateTime: time.Now().UTC().Format(time.RFC3339),
		Status:     models.StatusError,
	}
}

// providerMessage substitutes a generic fallback for empty provider messages.
func providerMessage(msg string) string {
	if msg == "" {
		return "Error"
	}
	return msg
}

func coalesce(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
