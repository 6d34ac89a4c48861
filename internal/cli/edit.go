package cli

import (
	"context"
	"fmt"
	"strconv"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/jobsheet/internal/sheet"
)

// EditCmd returns the edit command.
func EditCmd(env *appEnv) *Command {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	addViewFlags(fs)

	return &Command{
		Flags: fs,
		Usage: "edit <index> <column> <value>",
		Short: "Edit a cell by visible index",
		Group: groupRows,
		Long: `Edit one cell the way the grid does: select it, begin an edit, set the
draft and commit.

<index> is the 1-based line number 'jr ls' prints with the same view flags.
The row is resolved when the edit begins, so a sorted or filtered view edits
the row you saw. Indexes past the last row address placeholder lines; those
edits are accepted but not saved.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			return execEdit(ctx, o, env, fs, args)
		},
	}
}

func execEdit(ctx context.Context, o *IO, env *appEnv, fs *flag.FlagSet, args []string) error {
	err := requireArgs(args, 3, "<index> <column> <value>")
	if err != nil {
		return err
	}

	index, err := strconv.Atoi(args[0])
	if err != nil || index <= 0 {
		return fmt.Errorf("%w: %s", sheet.ErrCellOutOfRange, args[0])
	}

	col, err := sheet.ParseColumn(args[1])
	if err != nil {
		return err
	}

	value := args[2]

	return env.withApp(ctx, o, func(app *sheet.App) error {
		err := applyViewFlags(app, fs)
		if err != nil {
			return err
		}

		cell := sheet.Cell{Row: index - 1, Column: col}

		err = app.SelectCell(ctx, cell)
		if err != nil {
			return err
		}

		err = app.BeginEdit(ctx, cell)
		if err != nil {
			return err
		}

		err = app.SetDraft(value)
		if err != nil {
			return err
		}

		result, err := app.CommitEdit(ctx)
		if err != nil {
			return err
		}

		switch {
		case !result.Backed:
			o.Warn(fmt.Sprintf("line %d is a placeholder", index), "nothing was saved; run 'jr ls' to see the rows")
		case !result.Applied:
			o.Warn(fmt.Sprintf("row %d no longer exists", result.RowID), "nothing was saved")
		default:
			o.Printf("#%d %s=%s\n", result.RowID, result.Column.Key(), result.Value)
		}

		return nil
	})
}

// SetCmd returns the set command.
func SetCmd(env *appEnv) *Command {
	return &Command{
		Flags: flag.NewFlagSet("set", flag.ContinueOnError),
		Usage: "set <id> <column> <value>",
		Short: "Set a field by row id",
		Group: groupRows,
		Long: `Set one field of the row with <id>. Status and priority must be one of
their choices; status may only be changed by the row's creator.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			err := requireArgs(args, 3, "<id> <column> <value>")
			if err != nil {
				return err
			}

			id, err := parseRowID(args[0])
			if err != nil {
				return err
			}

			col, err := sheet.ParseColumn(args[1])
			if err != nil {
				return err
			}

			return env.withApp(ctx, o, func(app *sheet.App) error {
				updated, err := app.UpdateField(ctx, id, col, args[2])
				if err != nil {
					return err
				}

				reportUpdate(o, id, col, args[2], updated)

				return nil
			})
		},
	}
}

// StatusCmd returns the status command.
func StatusCmd(env *appEnv) *Command {
	return &Command{
		Flags: flag.NewFlagSet("status", flag.ContinueOnError),
		Usage: "status <id> <status>",
		Short: "Change a row's status (creator only)",
		Group: groupRows,
		Long:  "Set the status of a row you created. Status is one of: Submitted, Need to start, In-progress, Complete, Blocked.",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			err := requireArgs(args, 2, "<id> <status>")
			if err != nil {
				return err
			}

			id, err := parseRowID(args[0])
			if err != nil {
				return err
			}

			status, err := sheet.ParseStatus(args[1])
			if err != nil {
				return err
			}

			return env.withApp(ctx, o, func(app *sheet.App) error {
				updated, err := app.UpdateStatus(ctx, id, status)
				if err != nil {
					return err
				}

				reportUpdate(o, id, sheet.ColumnStatus, string(status), updated)

				return nil
			})
		},
	}
}

func reportUpdate(o *IO, id int, col sheet.Column, value string, updated bool) {
	if !updated {
		o.Warn(fmt.Sprintf("row %d not found", id), "nothing was changed; run 'jr ls' to list ids")

		return
	}

	o.Printf("#%d %s=%s\n", id, col.Key(), value)
}
