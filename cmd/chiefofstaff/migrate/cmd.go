package migrate

import (
	"github.com/andrebq/chiefofstaff/credstore"
	"github.com/andrebq/chiefofstaff/internal/cmdflags"
	"github.com/andrebq/chiefofstaff/internal/logutil"
	"github.com/urfave/cli/v2"
)

func Cmd() *cli.Command {
	layer := cmdflags.Database()
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply pending schema migrations to the credential store",
		Flags: layer.Flags(),
		Action: func(c *cli.Context) error {
			cfg, ctx, err := layer.Setup(c)
			if err != nil {
				return err
			}
			opts := cfg.StoreOptions()
			opts.Migrate = true
			store, err := credstore.Open(ctx, opts)
			if err != nil {
				return err
			}
			defer store.Close()
			log := logutil.GetOrDefault(ctx)
			log.Info().Str("driver", string(store.Dialect())).Msg("Schema is up to date")
			return nil
		},
	}
}
