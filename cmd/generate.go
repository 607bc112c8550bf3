package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"sunwave/internal/models"
	"sunwave/internal/shared"
)

// Generate submits a new generation task.
func (r *Runner) Generate(ctx context.Context, cmd *cli.Command) error {
	controller, err := r.requireController()
	if err != nil {
		return err
	}

	req := models.GenerateRequest{
		Prompt:       cmd.StringArg("prompt"),
		CustomMode:   cmd.Bool("custom"),
		Instrumental: cmd.Bool("instrumental"),
		Model:        cmd.String("model"),
		Style:        cmd.String("style"),
		Title:        cmd.String("title"),
		Lyrics:       cmd.String("lyrics"),
		NegativeTags: cmd.String("negative-tags"),
		VocalGender:  cmd.String("vocal-gender"),
		StyleWeight:  cmd.Float("style-weight"),
		Weirdness:    cmd.Float("weirdness"),
		PersonaID:    cmd.String("persona"),
	}
	if req.Prompt == "" && req.Lyrics == "" {
		return fmt.Errorf("%w: a prompt or --lyrics is required", shared.ErrMissingArgument)
	}

	taskID, err := controller.Generate(ctx, req)
	if err != nil {
		return err
	}

	r.writePlain("Task submitted: %s\n", taskID)
	r.writePlain("Credits remaining: %d\n", controller.Credits())

	if cmd.Bool("watch") {
		return r.followTasks(ctx)
	}
	return nil
}

// Extend submits a continuation of an existing song.
func (r *Runner) Extend(ctx context.Context, cmd *cli.Command) error {
	controller, err := r.requireController()
	if err != nil {
		return err
	}

	audioID := cmd.StringArg("id")
	if audioID == "" {
		return fmt.Errorf("%w: song id is required", shared.ErrMissingArgument)
	}

	req := models.ExtendRequest{
		AudioID:      audioID,
		Prompt:       cmd.String("prompt"),
		ContinueAt:   cmd.Float("continue-at"),
		Model:        cmd.String("model"),
		Tags:         cmd.String("tags"),
		Title:        cmd.String("title"),
		Instrumental: cmd.Bool("instrumental"),
	}

	taskID, err := controller.Extend(ctx, req)
	if err != nil {
		return err
	}

	r.writePlain("Extension task submitted: %s\n", taskID)
	r.writePlain("Credits remaining: %d\n", controller.Credits())

	if cmd.Bool("watch") {
		return r.followTasks(ctx)
	}
	return nil
}

// Cover submits a cover generation over uploaded audio.
func (r *Runner) Cover(ctx context.Context, cmd *cli.Command) error {
	controller, err := r.requireController()
	if err != nil {
		return err
	}

	uploadURL := cmd.StringArg("url")
	if uploadURL == "" {
		return fmt.Errorf("%w: upload URL is required", shared.ErrMissingArgument)
	}

	req := models.CoverRequest{
		UploadURL:    uploadURL,
		Prompt:       cmd.String("prompt"),
		CustomMode:   cmd.Bool("custom"),
		Instrumental: cmd.Bool("instrumental"),
		Model:        cmd.String("model"),
		Style:        cmd.String("style"),
		Title:        cmd.String("title"),
		PersonaID:    cmd.String("persona"),
	}

	taskID, err := controller.Cover(ctx, req)
	if err != nil {
		return err
	}

	r.writePlain("Cover task submitted: %s\n", taskID)
	r.writePlain("Credits remaining: %d\n", controller.Credits())

	if cmd.Bool("watch") {
		return r.followTasks(ctx)
	}
	return nil
}

// Persona derives a voice persona from a finished song.
func (r *Runner) Persona(ctx context.Context, cmd *cli.Command) error {
	controller, err := r.requireController()
	if err != nil {
		return err
	}

	req := models.PersonaRequest{
		TaskID:      cmd.String("task"),
		AudioID:     cmd.String("audio"),
		Name:        cmd.String("name"),
		Description: cmd.String("description"),
	}

	personaID, err := controller.CreatePersona(ctx, req)
	if err != nil {
		return err
	}

	r.writePlain("Persona created: %s\n", personaID)
	return nil
}
