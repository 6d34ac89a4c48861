package cli

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/jobsheet/internal/sheet"
)

// ShowCmd returns the show command.
func ShowCmd(env *appEnv) *Command {
	return &Command{
		Flags: flag.NewFlagSet("show", flag.ContinueOnError),
		Usage: "show <id>",
		Short: "Show row details",
		Group: groupRows,
		Long:  "Display every field of a row, and whether you may change its status.",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) == 0 {
				return errIDRequired
			}

			err := requireArgs(args, 1, "<id>")
			if err != nil {
				return err
			}

			id, err := parseRowID(args[0])
			if err != nil {
				return err
			}

			return env.withApp(ctx, o, func(app *sheet.App) error {
				return execShow(ctx, o, app, id)
			})
		},
	}
}

func execShow(ctx context.Context, o *IO, app *sheet.App, id int) error {
	row, err := app.Row(id)
	if err != nil {
		return err
	}

	o.Printf("id=%d\n", row.ID)

	for _, col := range sheet.Columns() {
		o.Printf("%s=%s\n", col.Key(), col.Get(row))
	}

	o.Printf("createdBy=%s\n", row.CreatedBy)
	o.Println(fmt.Sprintf("can_edit_status=%t", app.CanEditStatus(ctx, row)))

	return nil
}
