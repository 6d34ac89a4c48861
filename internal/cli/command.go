package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// Help listing sections, in the order commands are registered.
const (
	groupSession = "Session"
	groupRows    = "Rows"
	groupCSV     = "CSV"
	groupOther   = "Other"
)

// Command is one "jr <verb>" entry. Flags are parsed with pflag and the
// remaining positionals go to Exec.
type Command struct {
	Flags *flag.FlagSet

	// Usage starts with the verb, e.g. "status <id> <status>".
	Usage string
	Short string
	// Long replaces Short in "jr <verb> --help" when set.
	Long string
	// Group is the help listing section; empty sorts last without a heading.
	Group string

	Exec func(ctx context.Context, o *IO, args []string) error
}

// Name is the verb jr dispatches on.
func (c *Command) Name() string {
	verb, _, _ := strings.Cut(c.Usage, " ")

	return verb
}

// HelpLine is the command's row in the "jr --help" listing.
func (c *Command) HelpLine() string {
	return fmt.Sprintf("    %-32s %s", c.Usage, c.Short)
}

func (c *Command) usageLine() string {
	return "Usage: jr " + c.Usage
}

// PrintHelp writes "jr <verb> --help" to o's stdout. Pass o.Stderr() to send
// it with an error instead.
func (c *Command) PrintHelp(o *IO) {
	o.Println(c.usageLine())
	o.Println()

	if c.Long != "" {
		o.Println(c.Long)
	} else {
		o.Println(c.Short)
	}

	if c.Flags == nil || !c.Flags.HasFlags() {
		return
	}

	var defaults strings.Builder

	c.Flags.SetOutput(&defaults)
	c.Flags.PrintDefaults()
	c.Flags.SetOutput(io.Discard)

	o.Println()
	o.Println("Flags:")
	o.Printf("%s", defaults.String())
}

// Run parses args and calls Exec, returning the exit code. Flag errors print
// the full help. Positional argument errors from Exec print only the usage
// line, so a missing row id does not bury the message.
func (c *Command) Run(ctx context.Context, o *IO, args []string) int {
	if c.Flags == nil {
		c.Flags = flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	}

	c.Flags.SetOutput(io.Discard)

	err := c.Flags.Parse(args)

	switch {
	case errors.Is(err, flag.ErrHelp):
		c.PrintHelp(o)

		return 0
	case err != nil:
		o.ErrPrintln("error:", err)
		o.ErrPrintln()
		c.PrintHelp(o.Stderr())

		return 1
	}

	err = c.Exec(ctx, o, c.Flags.Args())
	if err == nil {
		return 0
	}

	o.ErrPrintln("error:", err)

	if isArgError(err) {
		o.ErrPrintln(c.usageLine())
	}

	return 1
}

func isArgError(err error) bool {
	return errors.Is(err, errArgsRequired) ||
		errors.Is(err, errTooManyArgs) ||
		errors.Is(err, errIDRequired)
}

// groupCommands splits commands into help sections, keeping registration
// order inside and across sections.
func groupCommands(commands []*Command) ([]string, map[string][]*Command) {
	var order []string

	byGroup := make(map[string][]*Command)

	for _, cmd := range commands {
		if _, seen := byGroup[cmd.Group]; !seen && cmd.Group != "" {
			order = append(order, cmd.Group)
		}

		byGroup[cmd.Group] = append(byGroup[cmd.Group], cmd)
	}

	if len(byGroup[""]) > 0 {
		order = append(order, "")
	}

	return order, byGroup
}
