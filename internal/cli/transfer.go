package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/jobsheet/internal/sheet"
)

// ImportCmd returns the import command.
func ImportCmd(env *appEnv) *Command {
	return &Command{
		Flags: flag.NewFlagSet("import", flag.ContinueOnError),
		Usage: "import <file|->",
		Short: "Append rows from a CSV file",
		Group: groupCSV,
		Long: `Append rows from CSV text, reading stdin when the file is "-".

The first line is a header and is skipped. Fields are split on commas with no
quoting. Missing fields get defaults; lines without a job request are dropped.
Imported rows get new ids and are owned by you.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			err := requireArgs(args, 1, "<file|->")
			if err != nil {
				return err
			}

			text, err := readImport(env.stdin, args[0], env.cfg.EffectiveCwd)
			if err != nil {
				return err
			}

			return env.withApp(ctx, o, func(app *sheet.App) error {
				rows, err := app.ImportCSV(ctx, text)
				if err != nil {
					return err
				}

				o.Printf("imported %d rows\n", len(rows))

				return nil
			})
		},
	}
}

func readImport(stdin io.Reader, arg, cwd string) (string, error) {
	if arg == "-" {
		if stdin == nil {
			return "", fmt.Errorf("%w: no input on stdin", errNotInteractive)
		}

		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}

		return string(data), nil
	}

	data, err := os.ReadFile(resolvePath(cwd, arg))
	if err != nil {
		return "", fmt.Errorf("reading import file: %w", err)
	}

	return string(data), nil
}

// ExportCmd returns the export command.
func ExportCmd(env *appEnv) *Command {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.StringP("output", "o", "", "Write to `file` (or into a directory as "+sheet.ExportFileName+")")

	return &Command{
		Flags: fs,
		Usage: "export [-o file]",
		Short: "Export all rows as CSV",
		Group: groupCSV,
		Long: `Export every row in store order as CSV, ignoring search, filter, tab and
sort. Values are joined with commas and not escaped.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("%w: export takes no arguments", errTooManyArgs)
			}

			output, _ := fs.GetString("output")
			if fs.Changed("output") && output == "" {
				return fmt.Errorf("%w: --output", errEmptyValue)
			}

			return env.withApp(ctx, o, func(app *sheet.App) error {
				csv := app.ExportAll()

				if output == "" {
					o.Println(csv)

					return nil
				}

				path, err := writeExport(resolvePath(env.cfg.EffectiveCwd, output), csv)
				if err != nil {
					return err
				}

				o.Println("exported to", path)

				return nil
			})
		},
	}
}

func writeExport(path, csv string) (string, error) {
	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		path = filepath.Join(path, sheet.ExportFileName)
	}

	err = atomic.WriteFile(path, strings.NewReader(csv+"\n"))
	if err != nil {
		return "", fmt.Errorf("writing export: %w", err)
	}

	return path, nil
}

func resolvePath(cwd, path string) string {
	if filepath.IsAbs(path) || cwd == "" {
		return path
	}

	return filepath.Join(cwd, path)
}
