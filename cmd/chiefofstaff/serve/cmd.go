package serve

import (
	"github.com/andrebq/chiefofstaff/internal/app"
	"github.com/andrebq/chiefofstaff/internal/cmdflags"
	"github.com/andrebq/chiefofstaff/internal/httpserver"
	"github.com/andrebq/chiefofstaff/internal/logutil"
	"github.com/urfave/cli/v2"
)

func Cmd() *cli.Command {
	layer := cmdflags.Server()
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the HTTP API",
		Flags: layer.Flags(),
		Action: func(c *cli.Context) error {
			cfg, ctx, err := layer.Setup(c)
			if err != nil {
				return err
			}
			a, err := app.Open(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			handler, err := a.Handler(ctx)
			if err != nil {
				return err
			}
			log := logutil.GetOrDefault(ctx)
			if !cfg.Cookie.Secure {
				log.Warn().Msg("Session cookie is not marked as Secure, do not expose this server over plain HTTP outside development")
			}
			return httpserver.Serve(ctx, cfg.Bind, handler)
		},
	}
}
