package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/jobsheet/internal/logging"
	"github.com/calvinalkan/jobsheet/internal/sheet"
)

// Run is the main entry point. Returns exit code.
//
// sigCh may be nil. The first signal cancels the command's context.
func Run(stdin io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	globalFlags := flag.NewFlagSet("jr", flag.ContinueOnError)
	globalFlags.SetInterspersed(false)
	globalFlags.SetOutput(&strings.Builder{})

	flagHelp := globalFlags.BoolP("help", "h", false, "Show help")
	flagCwd := globalFlags.StringP("cwd", "C", "", "Run as if started in `dir`")
	flagConfig := globalFlags.StringP("config", "c", "", "Use specified config `file`")
	flagDataDir := globalFlags.String("data-dir", "", "Override data directory")
	flagStorage := globalFlags.String("storage", "", "Storage backend: file|sqlite|redis|memory")

	if len(args) == 0 {
		args = []string{"jr"}
	}

	err := globalFlags.Parse(args[1:])
	if err != nil {
		fprintln(errOut, "error:", err)
		fprintln(errOut)
		printGlobalOptions(errOut, globalFlags)

		return 1
	}

	if globalFlags.Changed("data-dir") && *flagDataDir == "" {
		fprintln(errOut, "error:", sheet.ErrDataDirEmpty)
		fprintln(errOut)
		printGlobalOptions(errOut, globalFlags)

		return 1
	}

	if globalFlags.Changed("storage") && *flagStorage == "" {
		fprintln(errOut, "error:", sheet.ErrInvalidStorage)
		fprintln(errOut)
		printGlobalOptions(errOut, globalFlags)

		return 1
	}

	cfg, err := sheet.LoadConfig(sheet.LoadConfigInput{
		WorkDirOverride: *flagCwd,
		ConfigPath:      *flagConfig,
		DataDirOverride: *flagDataDir,
		StorageOverride: *flagStorage,
		Env:             env,
	})
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	deps := &appEnv{
		cfg:   &cfg,
		stdin: stdin,
		log:   logging.New(logging.Options{Level: cfg.LogLevel, Writer: errOut, Component: "jr"}),
		clock: sheet.SystemClock(),
	}

	commands := []*Command{
		LoginCmd(deps),
		LogoutCmd(deps),
		WhoamiCmd(deps),
		LsCmd(deps),
		ShowCmd(deps),
		CreateCmd(deps),
		EditCmd(deps),
		SetCmd(deps),
		StatusCmd(deps),
		ImportCmd(deps),
		ExportCmd(deps),
		SheetCmd(deps),
		ServeCmd(deps),
		PrintConfigCmd(&cfg),
	}

	commandMap := make(map[string]*Command, len(commands))
	for _, cmd := range commands {
		commandMap[cmd.Name()] = cmd
	}

	commandAndArgs := globalFlags.Args()

	if *flagHelp || len(commandAndArgs) == 0 {
		printUsage(out, commands, globalFlags)

		return 0
	}

	cmdName := commandAndArgs[0]

	cmd, ok := commandMap[cmdName]
	if !ok {
		fprintln(errOut, "error: unknown command:", cmdName)
		printUsage(errOut, commands, globalFlags)

		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	o := NewIO(out, errOut)

	code := cmd.Run(ctx, o, commandAndArgs[1:])
	finish := o.Finish()

	if code != 0 {
		return code
	}

	return finish
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func printGlobalOptions(w io.Writer, globalFlags *flag.FlagSet) {
	fprintln(w, "Global flags:")

	var buf strings.Builder

	globalFlags.SetOutput(&buf)
	globalFlags.PrintDefaults()
	globalFlags.SetOutput(&strings.Builder{})

	_, _ = fmt.Fprint(w, buf.String())
}

func printUsage(w io.Writer, commands []*Command, globalFlags *flag.FlagSet) {
	fprintln(w, `jr - job request sheet

Usage: jr [global flags] <command> [args]`)
	fprintln(w)
	printGlobalOptions(w, globalFlags)
	fprintln(w)
	fprintln(w, "Commands:")

	order, byGroup := groupCommands(commands)
	for _, group := range order {
		if group != "" {
			fprintln(w, "  "+group+":")
		}

		for _, cmd := range byGroup[group] {
			fprintln(w, cmd.HelpLine())
		}
	}

	fprintln(w)
	fprintln(w, "Run 'jr <command> --help' for command flags.")
}
