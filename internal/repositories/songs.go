package repositories

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"sunwave/internal/models"
	"sunwave/internal/shared"
)

// SongRepository persists song records in the songs table.
//
// Records are keyed by id (provider-issued or provisional) and read back
// newest-first by create time. Upserts merge: a write never clobbers the
// independently managed like flag.
type SongRepository struct {
	db *sql.DB
}

// NewSongRepository creates a new SongRepository with the given database connection
func NewSongRepository(db *sql.DB) *SongRepository {
	return &SongRepository{db: db}
}

const songColumns = `id, task_id, title, image_url, audio_url, stream_audio_url, video_url,
	duration, tags, prompt, model_name, create_time, status, type, is_liked`

// Put upserts a song by id.
//
// On conflict every field is replaced except is_liked, which only changes
// through [SongRepository.Patch] so a like set independently survives
// status merges from the poll loop.
func (r *SongRepository) Put(song models.Song) error {
	if song.ID == "" {
		return fmt.Errorf("%w: song id is required", shared.ErrInvalidInput)
	}
	if song.Status == "" {
		song.Status = models.StatusPending
	}
	if song.Type == "" {
		song.Type = models.TypeOriginal
	}

	query := `
		INSERT INTO songs (` + songColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			task_id = excluded.task_id,
			title = excluded.title,
			image_url = excluded.image_url,
			audio_url = excluded.audio_url,
			stream_audio_url = excluded.stream_audio_url,
			video_url = excluded.video_url,
			duration = excluded.duration,
			tags = excluded.tags,
			prompt = excluded.prompt,
			model_name = excluded.model_name,
			create_time = excluded.create_time,
			status = excluded.status,
			type = excluded.type
	`

	_, err := r.db.Exec(query,
		song.ID,
		song.TaskID,
		song.Title,
		song.ImageURL,
		song.AudioURL,
		song.StreamAudioURL,
		song.VideoURL,
		song.Duration,
		song.Tags,
		song.Prompt,
		song.ModelName,
		song.CreateTime,
		string(song.Status),
		string(song.Type),
		song.IsLiked,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert song: %w", err)
	}

	return nil
}

// patchColumns whitelists the fields reachable through Patch.
var patchColumns = map[string]bool{
	"title":    true,
	"is_liked": true,
	"status":   true,
	"type":     true,
	"tags":     true,
}

// Patch updates only the given fields of an existing song.
func (r *SongRepository) Patch(id string, fields map[string]any) error {
	if len(fields) == 0 {
		return fmt.Errorf("%w: no fields to patch", shared.ErrInvalidInput)
	}

	// Deterministic column order keeps the query stable for logging and tests.
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if !patchColumns[k] {
			return fmt.Errorf("%w: cannot patch column %q", shared.ErrInvalidInput, k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sets := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys)+1)
	for _, k := range keys {
		sets = append(sets, k+" = ?")
		args = append(args, fields[k])
	}
	args = append(args, id)

	result, err := r.db.Exec("UPDATE songs SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("failed to patch song: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrSongNotFound, id)
	}

	return nil
}

// Get retrieves a song by id.
func (r *SongRepository) Get(id string) (*models.Song, error) {
	row := r.db.QueryRow("SELECT "+songColumns+" FROM songs WHERE id = ?", id)
	song, err := scanSong(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrSongNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get song: %w", err)
	}
	return song, nil
}

// List retrieves all songs ordered newest-first by create time.
func (r *SongRepository) List() ([]models.Song, error) {
	rows, err := r.db.Query("SELECT " + songColumns + " FROM songs ORDER BY create_time DESC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	return collectSongs(rows)
}

// ListByTask retrieves the songs referencing a task, newest-first.
func (r *SongRepository) ListByTask(taskID string) ([]models.Song, error) {
	rows, err := r.db.Query("SELECT "+songColumns+" FROM songs WHERE task_id = ? ORDER BY create_time DESC, id ASC", taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs for task: %w", err)
	}
	defer rows.Close()

	return collectSongs(rows)
}

// Delete removes a song by id.
func (r *SongRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM songs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete song: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrSongNotFound, id)
	}

	return nil
}

// DeleteProvisional removes all placeholder records for a task.
//
// Deleting when nothing provisional remains is a no-op, so the reconciler
// can call this unconditionally on every tick.
func (r *SongRepository) DeleteProvisional(taskID string) (int, error) {
	result, err := r.db.Exec(
		"DELETE FROM songs WHERE task_id = ? AND id LIKE ?",
		taskID, models.ProvisionalPrefix+"%",
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete provisional songs: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return int(rows), nil
}

// scanner abstracts sql.Row / sql.Rows for shared scanning.
type scanner interface {
	Scan(dest ...any) error
}

func scanSong(s scanner) (*models.Song, error) {
	var song models.Song
	var status, songType string

	err := s.Scan(
		&song.ID,
		&song.TaskID,
		&song.Title,
		&song.ImageURL,
		&song.AudioURL,
		&song.StreamAudioURL,
		&song.VideoURL,
		&song.Duration,
		&song.Tags,
		&song.Prompt,
		&song.ModelName,
		&song.CreateTime,
		&status,
		&songType,
		&song.IsLiked,
	)
	if err != nil {
		return nil, err
	}

	song.Status = models.Status(status)
	song.Type = models.SongType(songType)
	return &song, nil
}

func collectSongs(rows *sql.Rows) ([]models.Song, error) {
	songs := []models.Song{}
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan song: %w", err)
		}
		songs = append(songs, *song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate songs: %w", err)
	}
	return songs, nil
}
