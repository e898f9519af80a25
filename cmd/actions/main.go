package main

import (
	"context"
	"fmt"
	"os"

	"actionTracker/internal/config"
	"actionTracker/internal/logger"
	"actionTracker/internal/notify"
	"actionTracker/internal/session"

	"github.com/urfave/cli/v3"
)

type flags struct {
	ConfigPath string
	Yes        bool
}

func main() {
	var (
		f    = &flags{}
		cmds = &commands{flags: f}
	)

	app := &cli.Command{
		Name:  "actions",
		Usage: "Track action items against the action item service",
		Description: `Lists, creates and edits action items.

Closing an item, sending a follow up and deleting ask for confirmation
unless --yes is given.

Examples:
  actions list --assignee Joey --sort due_asc
  actions create --title "Order cards" --assignee Jake --week
  actions status <id> Closed`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file (defaults to ./config.yml when present)",
				Sources:     cli.EnvVars("ACTIONS_CONFIG"),
				Destination: &f.ConfigPath,
			},
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "answer yes to every confirmation",
				Destination: &f.Yes,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			cfg, err := config.Load(f.ConfigPath)
			if err != nil {
				return ctx, err
			}
			if err := logger.Init(cfg.Logging.Development); err != nil {
				return ctx, fmt.Errorf("инициализация логгера: %w", err)
			}

			s, err := session.Open(cfg.API)
			if err != nil {
				return ctx, err
			}
			s.Toasts().Subscribe(func(n notify.Notification) {
				_, _ = fmt.Fprintln(os.Stderr, renderToast(n))
			})
			cmds.session = s
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			logger.Sync()
			return nil
		},
		Commands: cmds.all(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}
}
