package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"sunwave/internal/models"
	"sunwave/internal/shared"
)

// SongsList prints the song collection, newest first.
func (r *Runner) SongsList(ctx context.Context, cmd *cli.Command) error {
	songs, err := r.store.List()
	if err != nil {
		return fmt.Errorf("failed to list songs: %w", err)
	}

	filter := cmd.String("filter")
	filtered := make([]models.Song, 0, len(songs))
	for _, song := range songs {
		switch filter {
		case "original":
			if song.Type != models.TypeOriginal {
				continue
			}
		case "cover":
			if song.Type != models.TypeCover {
				continue
			}
		case "all", "":
		default:
			return fmt.Errorf("%w: unknown filter %q", shared.ErrInvalidFlag, filter)
		}
		filtered = append(filtered, song)
	}

	if cmd.Bool("json") {
		return r.writeJSON(filtered, cmd.Bool("pretty"))
	}

	if len(filtered) == 0 {
		r.writePlain("No songs found. Generate one with 'sunwave generate'.\n")
		return nil
	}
	for _, song := range filtered {
		liked := " "
		if song.IsLiked {
			liked = "♥"
		}
		title := song.Title
		if title == "" {
			title = "Untitled"
		}
		r.writePlain("%s %-10s %-36s %s\n", liked, song.Status, song.ID, title)
	}
	return nil
}

// SongsDelete removes a song from the collection.
func (r *Runner) SongsDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: song id is required", shared.ErrMissingArgument)
	}
	if err := r.store.Delete(id); err != nil {
		return fmt.Errorf("failed to delete song: %w", err)
	}
	r.writePlain("Deleted %s\n", id)
	return nil
}

// SongsLike toggles a song's like flag, patching nothing else.
func (r *Runner) SongsLike(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: song id is required", shared.ErrMissingArgument)
	}

	song, err := r.store.Get(id)
	if err != nil {
		return err
	}
	if err := r.store.Patch(id, map[string]any{"is_liked": !song.IsLiked}); err != nil {
		return fmt.Errorf("failed to update song: %w", err)
	}

	if song.IsLiked {
		r.writePlain("Unliked %s\n", id)
	} else {
		r.writePlain("Liked %s\n", id)
	}
	return nil
}

// SongsRename sets a new title on a song.
func (r *Runner) SongsRename(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	title := cmd.StringArg("title")
	if id == "" || title == "" {
		return fmt.Errorf("%w: song id and new title are required", shared.ErrMissingArgument)
	}

	if err := r.store.Patch(id, map[string]any{"title": title}); err != nil {
		return fmt.Errorf("failed to rename song: %w", err)
	}
	r.writePlain("Renamed %s to %q\n", id, title)
	return nil
}
