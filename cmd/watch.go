package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"

	"sunwave/internal/tasks"
)

// Watch resumes any unfinished tasks and follows them until they settle.
func (r *Runner) Watch(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireController(); err != nil {
		return err
	}

	snapshot, err := r.store.List()
	if err != nil {
		return err
	}
	r.reconciler.Resume(snapshot)

	if r.reconciler.ActiveCount() == 0 {
		r.writePlain("Nothing in flight.\n")
		return nil
	}

	r.writePlain("Watching %d task(s)...\n", r.reconciler.ActiveCount())
	return r.followTasks(ctx)
}

// followTasks drains reconciler events until no poll loops remain.
func (r *Runner) followTasks(ctx context.Context) error {
	for r.reconciler.ActiveCount() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-r.reconciler.Events():
			switch event.Kind {
			case tasks.TaskFailed:
				r.writePlain("✗ %s (%s)\n", event.Message, event.TaskID)
			case tasks.TaskFinished:
				r.writePlain("✓ %s (%s)\n", event.Message, event.TaskID)
			}
		case <-time.After(time.Second):
			// re-check the active set; abandoned tasks emit no event
		}
	}
	return nil
}
