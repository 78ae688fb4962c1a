package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"syncalendar/internal/config"
	"syncalendar/internal/logger"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	root := &cli.Command{
		Name:  "syncalendar",
		Usage: "shared calendar server and command line client",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "api",
				Usage: "base URL of the syncalendar server",
				Value: cfg.APIURL,
			},
			&cli.StringFlag{
				Name:  "token-file",
				Usage: "where the session token is kept",
				Value: cfg.TokenFile,
			},
		},
		Commands: []*cli.Command{
			serveCommand(cfg, log),
			migrateCommand(cfg, log),
			registerCommand(log),
			loginCommand(log),
			logoutCommand(log),
			monthCommand(cfg, log),
			eventsCommand(cfg, log),
			usersCommand(log),
			notificationsCommand(log),
		},
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		log.WithError(err).Error("command failed")
		os.Exit(1)
	}
}
