package cli

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/jobsheet/internal/sheet"
)

// CreateCmd returns the create command.
func CreateCmd(env *appEnv) *Command {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.StringP("description", "d", "", "Description text")
	fs.StringP("assignee", "a", "", "Assignee name (default "+sheet.DefaultAssignee+")")
	fs.StringP("priority", "p", string(sheet.PriorityMedium), "Priority: High|Medium|Low")
	fs.String("due", "", "Due date DD-MM-YYYY (default today)")
	fs.String("budget", "", "Budget (default "+sheet.DefaultAmount+")")
	fs.String("est-value", "", "Estimated value (default "+sheet.DefaultAmount+")")
	fs.String("url", "", "URL (default "+sheet.DefaultURL+")")

	return &Command{
		Flags: fs,
		Usage: "create <job-request>",
		Short: "Create row, prints ID",
		Group: groupRows,
		Long: `Create a new job request owned by the logged-in user. Prints the new id.

The row starts as Submitted, submitted today, with your name as submitter.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			return execCreate(ctx, o, env, fs, args)
		},
	}
}

func execCreate(ctx context.Context, o *IO, env *appEnv, fs *flag.FlagSet, args []string) error {
	if len(args) == 0 || args[0] == "" {
		return sheet.ErrJobRequestRequired
	}

	if len(args) > 1 {
		return fmt.Errorf("%w: quote the job request", errTooManyArgs)
	}

	for _, name := range []string{"description", "assignee", "priority", "due", "budget", "est-value", "url"} {
		if fs.Changed(name) {
			value, _ := fs.GetString(name)
			if value == "" {
				return fmt.Errorf("%w: --%s", errEmptyValue, name)
			}
		}
	}

	in := sheet.NewRow{JobRequest: args[0]}
	in.Description, _ = fs.GetString("description")
	in.Assignee, _ = fs.GetString("assignee")
	in.Priority, _ = fs.GetString("priority")
	in.DueDate, _ = fs.GetString("due")
	in.Budget, _ = fs.GetString("budget")
	in.EstValue, _ = fs.GetString("est-value")
	in.URL, _ = fs.GetString("url")

	return env.withApp(ctx, o, func(app *sheet.App) error {
		row, err := app.CreateRow(ctx, in)
		if err != nil {
			return err
		}

		o.Println(row.ID)

		return nil
	})
}
