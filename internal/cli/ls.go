package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/jobsheet/internal/sheet"
)

// addViewFlags registers the flags that shape the visible sequence.
func addViewFlags(fs *flag.FlagSet) {
	fs.StringP("search", "s", "", "Search text (case-insensitive, any searchable column)")
	fs.StringP("filter", "f", "", "Filter text, applied in addition to --search")
	fs.StringP("tab", "t", sheet.TabAllOrders, "Tab: All Orders|Pending|Reviewed|Arrived")
	fs.String("sort", "", "Sort by column key")
	fs.Bool("desc", false, "Sort descending")
	fs.StringArray("hide", nil, "Hide column key (repeatable)")
}

// applyViewFlags copies the view flags onto app.
func applyViewFlags(app *sheet.App, fs *flag.FlagSet) error {
	search, _ := fs.GetString("search")
	filter, _ := fs.GetString("filter")
	tab, _ := fs.GetString("tab")
	sortKey, _ := fs.GetString("sort")
	desc, _ := fs.GetBool("desc")
	hide, _ := fs.GetStringArray("hide")

	if fs.Changed("tab") && tab == "" {
		return fmt.Errorf("%w: --tab", errEmptyValue)
	}

	app.SetSearchText(search)
	app.SetFilterText(filter)
	app.SetActiveTab(tab)

	if sortKey != "" {
		col, err := sheet.ParseColumn(sortKey)
		if err != nil {
			return err
		}

		dir := sheet.SortAsc
		if desc {
			dir = sheet.SortDesc
		}

		app.SortBy(col, dir)
	} else if desc {
		return fmt.Errorf("--desc requires --sort")
	}

	hidden := make([]sheet.Column, 0, len(hide))

	for _, key := range hide {
		col, err := sheet.ParseColumn(key)
		if err != nil {
			return err
		}

		hidden = append(hidden, col)
	}

	app.SetHiddenColumns(hidden)

	return nil
}

// LsCmd returns the ls command.
func LsCmd(env *appEnv) *Command {
	fs := flag.NewFlagSet("ls", flag.ContinueOnError)
	addViewFlags(fs)
	fs.Bool("pad", false, "Pad with placeholder lines like the grid does")

	return &Command{
		Flags: fs,
		Usage: "ls [flags]",
		Short: "List visible rows",
		Group: groupRows,
		Long: `List the rows that pass search, filter and tab, in sort order.

Each line starts with the row's visible index (what 'jr edit' takes) and its
id (what 'jr show', 'jr set' and 'jr status' take). Budget and value columns
sort as text.`,
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			return env.withApp(ctx, o, func(app *sheet.App) error {
				return execLs(o, app, fs)
			})
		},
	}
}

func execLs(o *IO, app *sheet.App, fs *flag.FlagSet) error {
	err := applyViewFlags(app, fs)
	if err != nil {
		return err
	}

	pad, _ := fs.GetBool("pad")
	cols := app.VisibleColumns()

	o.Println(formatHeaderLine(cols))

	if pad {
		for _, line := range app.DisplayRows() {
			o.Println(formatDisplayLine(line, cols))
		}

		return nil
	}

	for i, row := range app.VisibleRows() {
		o.Println(formatDisplayLine(sheet.DisplayRow{Number: i + 1, Row: row}, cols))
	}

	return nil
}

func formatHeaderLine(cols []sheet.Column) string {
	labels := make([]string, 0, len(cols))
	for _, col := range cols {
		labels = append(labels, col.Label())
	}

	return "# id | " + strings.Join(labels, " | ")
}

func formatDisplayLine(line sheet.DisplayRow, cols []sheet.Column) string {
	var builder strings.Builder

	builder.WriteString(strconv.Itoa(line.Number))

	if line.Placeholder {
		builder.WriteString(" -")

		return builder.String()
	}

	builder.WriteString(" #")
	builder.WriteString(strconv.Itoa(line.Row.ID))

	for _, col := range cols {
		builder.WriteString(" | ")
		builder.WriteString(col.Get(line.Row))
	}

	return builder.String()
}
