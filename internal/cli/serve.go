package cli

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/jobsheet/internal/server"
	"github.com/calvinalkan/jobsheet/internal/sheet"
)

// ServeCmd returns the serve command.
func ServeCmd(env *appEnv) *Command {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.StringP("listen", "l", "", "Listen `address` (default from config, "+sheet.DefaultConfig().Listen+")")

	return &Command{
		Flags: fs,
		Usage: "serve [--listen addr]",
		Short: "Serve the HTTP API",
		Group: groupOther,
		Long: `Serve the sheet as a JSON API until interrupted.

All clients share one session, view and cell editor, as a single browser tab
would. Use --storage=memory for a throwaway demo.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("%w: serve takes no arguments", errTooManyArgs)
			}

			addr, _ := fs.GetString("listen")
			if fs.Changed("listen") && addr == "" {
				return fmt.Errorf("%w: --listen", errEmptyValue)
			}

			if addr == "" {
				addr = env.cfg.Listen
			}

			return env.withApp(ctx, o, func(app *sheet.App) error {
				e := server.New(app, env.log.WithField("component", "server"))

				o.ErrPrintln("listening on", addr)

				return server.Serve(ctx, e, addr)
			})
		},
	}
}
