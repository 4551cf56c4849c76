package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/semmidev/ckptsync/internal/app"
	"github.com/semmidev/ckptsync/internal/config"
	"github.com/urfave/cli/v2"
)

func main() {
	// A missing .env is normal; credentials usually come from the environment.
	_ = godotenv.Load()

	cliApp := &cli.App{
		Name:  "ckptsync",
		Usage: "Replace the model checkpoint stored under a bucket prefix with the latest local one",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "configs/config.yaml",
				Usage:   "path to config file",
				EnvVars: []string{"CKPTSYNC_CONFIG"},
			},
		},
		Action: run,
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatalf("Error: %v\n", err)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	application, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize app: %w", err)
	}
	defer application.Shutdown()

	return application.Run(ctx)
}
