package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"actionTracker/internal/app"
	"actionTracker/internal/config"

	"github.com/urfave/cli/v3"
)

func main() {
	var (
		configPath string
		port       string
		seedFile   string
		apiKey     string
	)

	cmd := &cli.Command{
		Name:  "api",
		Usage: "Run the in-memory action item service for local development",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file (defaults to ./config.yml when present)",
				Sources:     cli.EnvVars("ACTIONS_CONFIG"),
				Destination: &configPath,
			},
			&cli.StringFlag{
				Name:        "port",
				Usage:       "listen port, overrides server.port",
				Destination: &port,
			},
			&cli.StringFlag{
				Name:        "seed",
				Usage:       "yaml file with initial action items, overrides server.seed_file",
				Destination: &seedFile,
			},
			&cli.StringFlag{
				Name:        "api-key",
				Usage:       "required x-api-key value, overrides server.api_key",
				Destination: &apiKey,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Server.Port = port
			}
			if seedFile != "" {
				cfg.Server.SeedFile = seedFile
			}
			if apiKey != "" {
				cfg.Server.APIKey = apiKey
			}

			a, err := app.New(cfg).Init(ctx)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.Run(ctx)
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
