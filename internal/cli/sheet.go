package cli

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/jobsheet/internal/sheet"
	"github.com/calvinalkan/jobsheet/internal/tui"
)

// SheetCmd returns the sheet command.
func SheetCmd(env *appEnv) *Command {
	return &Command{
		Flags: flag.NewFlagSet("sheet", flag.ContinueOnError),
		Usage: "sheet",
		Short: "Open the interactive grid",
		Group: groupOther,
		Long: `Open the spreadsheet grid in the terminal.

Moving with arrows or hjkl selects a cell; enter or e edits it and enter
saves (esc cancels). Status and priority cells cycle with left/right while
editing. s sorts by the selected column, / searches, f filters, 1-9 switch
tabs, + adds a tab, H hides a column, U shows all, n creates a row, q quits.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("%w: sheet takes no arguments", errTooManyArgs)
			}

			if env.stdin == nil {
				return fmt.Errorf("%w: sheet needs a terminal", errNotInteractive)
			}

			return env.withApp(ctx, o, func(app *sheet.App) error {
				_, err := app.User(ctx)
				if err != nil {
					return fmt.Errorf("%w: run 'jr login' first", err)
				}

				return tui.Run(ctx, app, env.stdin, o.Stdout())
			})
		},
	}
}
