// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

func generateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "generate",
		Aliases: []string{"gen"},
		Usage:   "Generate a new song from a prompt",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "prompt"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "model",
				Aliases: []string{"m"},
				Usage:   "Generation model version",
				Value:   "V5",
			},
			&cli.BoolFlag{
				Name:  "custom",
				Usage: "Custom mode: style, title and lyrics are supplied separately",
			},
			&cli.BoolFlag{
				Name:  "instrumental",
				Usage: "Generate without vocals",
			},
			&cli.StringFlag{
				Name:  "style",
				Usage: "Style tags (custom mode)",
			},
			&cli.StringFlag{
				Name:  "title",
				Usage: "Song title (custom mode)",
			},
			&cli.StringFlag{
				Name:  "lyrics",
				Usage: "Lyrics, used as the prompt in custom vocal mode",
			},
			&cli.StringFlag{
				Name:  "negative-tags",
				Usage: "Styles to avoid",
			},
			&cli.StringFlag{
				Name:  "vocal-gender",
				Usage: "Preferred vocal gender (m or f)",
			},
			&cli.FloatFlag{
				Name:  "style-weight",
				Usage: "Style adherence weight (0-1)",
			},
			&cli.FloatFlag{
				Name:  "weirdness",
				Usage: "Weirdness constraint (0-1)",
			},
			&cli.StringFlag{
				Name:  "persona",
				Usage: "Persona ID to sing with",
			},
			&cli.BoolFlag{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "Follow the task until it settles",
			},
		},
		Action: r.Generate,
	}
}

func extendCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "extend",
		Usage: "Continue an existing song from an offset",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "prompt",
				Usage: "Direction for the continuation",
			},
			&cli.FloatFlag{
				Name:  "continue-at",
				Usage: "Offset in seconds to continue from",
			},
			&cli.StringFlag{
				Name:    "model",
				Aliases: []string{"m"},
				Usage:   "Generation model version",
				Value:   "V5",
			},
			&cli.StringFlag{
				Name:  "tags",
				Usage: "Style tags",
			},
			&cli.StringFlag{
				Name:  "title",
				Usage: "Title for the extension",
			},
			&cli.BoolFlag{
				Name:  "instrumental",
				Usage: "Extend without vocals",
			},
			&cli.BoolFlag{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "Follow the task until it settles",
			},
		},
		Action: r.Extend,
	}
}

func coverCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cover",
		Usage: "Generate a cover over uploaded audio",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "url"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "prompt",
				Usage: "Prompt or lyrics for the cover",
			},
			&cli.BoolFlag{
				Name:  "custom",
				Usage: "Custom mode",
			},
			&cli.BoolFlag{
				Name:  "instrumental",
				Usage: "Cover without vocals",
			},
			&cli.StringFlag{
				Name:    "model",
				Aliases: []string{"m"},
				Usage:   "Generation model version",
				Value:   "V5",
			},
			&cli.StringFlag{
				Name:  "style",
				Usage: "Style tags",
			},
			&cli.StringFlag{
				Name:  "title",
				Usage: "Cover title",
			},
			&cli.StringFlag{
				Name:  "persona",
				Usage: "Persona ID to sing with",
			},
			&cli.BoolFlag{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "Follow the task until it settles",
			},
		},
		Action: r.Cover,
	}
}

func personaCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "persona",
		Usage: "Create a reusable voice persona from a finished song",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "task",
				Usage:    "Task ID of the source song",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "audio",
				Usage:    "Audio ID of the source song",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "name",
				Usage:    "Persona name",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "description",
				Usage: "Persona description",
			},
		},
		Action: r.Persona,
	}
}

func songsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "songs",
		Usage: "Manage the local song collection",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List songs, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "filter",
						Usage: "Filter by type: all, original or cover",
						Value: "all",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.SongsList,
			},
			{
				Name:  "delete",
				Usage: "Delete a song",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.SongsDelete,
			},
			{
				Name:  "like",
				Usage: "Toggle a song's like flag",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.SongsLike,
			},
			{
				Name:  "rename",
				Usage: "Rename a song",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
					&cli.StringArg{Name: "title"},
				},
				Action: r.SongsRename,
			},
		},
	}
}

func watchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Follow in-flight tasks until every record settles",
		Action: r.Watch,
	}
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Launch the interactive song monitor",
		Action: r.TUI,
	}
}
