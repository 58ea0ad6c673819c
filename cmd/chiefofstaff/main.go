package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/andrebq/chiefofstaff/cmd/chiefofstaff/migrate"
	"github.com/andrebq/chiefofstaff/cmd/chiefofstaff/serve"
	"github.com/andrebq/chiefofstaff/cmd/chiefofstaff/users"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "chiefofstaff",
		Usage: "Backend of the AI Chief of Staff",
		Commands: []*cli.Command{
			serve.Cmd(),
			migrate.Cmd(),
			users.Cmd(),
		},
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	err := app.RunContext(ctx, os.Args)
	if err != nil {
		log.Error().Err(err).Msg("Application failed")
		cancel()
		os.Exit(1)
	}
}
