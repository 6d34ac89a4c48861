package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/jobsheet/internal/sheet"
)

// LoginCmd returns the login command.
func LoginCmd(env *appEnv) *Command {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.String("email", "", "Email address")
	fs.String("name", "", "Full name")
	fs.String("quick", "", "Log in as a preset user: john|jane")

	return &Command{
		Flags: fs,
		Usage: "login [--email E --name N | --quick U]",
		Short: "Log in (prompts for missing fields)",
		Group: groupSession,
		Long: `Log in. The email is stored lowercased and stamped on rows you create;
only a row's creator may change its status.

Missing fields are prompted for when stdin is a terminal, or read one per
line from stdin otherwise.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			return execLogin(ctx, o, env, fs, args)
		},
	}
}

func execLogin(ctx context.Context, o *IO, env *appEnv, fs *flag.FlagSet, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("%w: login takes no arguments", errTooManyArgs)
	}

	quick, _ := fs.GetString("quick")
	email, _ := fs.GetString("email")
	name, _ := fs.GetString("name")

	if fs.Changed("quick") && (fs.Changed("email") || fs.Changed("name")) {
		return errors.New("--quick cannot be combined with --email or --name")
	}

	return env.withApp(ctx, o, func(app *sheet.App) error {
		var (
			user sheet.User
			err  error
		)

		if fs.Changed("quick") {
			user, err = app.QuickLogin(ctx, quick)
		} else {
			email, name, err = promptMissing(o, env.stdin, email, name)
			if err != nil {
				return err
			}

			user, err = app.Login(ctx, email, name)
		}

		if err != nil {
			return err
		}

		o.Println("logged in as", formatUser(user))

		return nil
	})
}

// prompter reads one answer per call.
type prompter interface {
	Prompt(label string) (string, error)
	Close() error
}

// promptMissing asks for whichever of email and name is empty.
func promptMissing(o *IO, stdin io.Reader, email, name string) (string, string, error) {
	if email != "" && name != "" {
		return email, name, nil
	}

	p, err := newPrompter(o, stdin)
	if err != nil {
		return "", "", err
	}

	defer func() { _ = p.Close() }()

	if email == "" {
		email, err = p.Prompt("Email: ")
		if err != nil {
			return "", "", fmt.Errorf("reading email: %w", err)
		}
	}

	if name == "" {
		name, err = p.Prompt("Full name: ")
		if err != nil {
			return "", "", fmt.Errorf("reading name: %w", err)
		}
	}

	return email, name, nil
}

func newPrompter(o *IO, stdin io.Reader) (prompter, error) {
	if isTerminal(stdin) {
		state := liner.NewLiner()
		state.SetCtrlCAborts(true)

		return state, nil
	}

	if stdin == nil {
		return nil, fmt.Errorf("%w: pass --email and --name", errNotInteractive)
	}

	return &linePrompter{reader: bufio.NewReader(stdin), out: o.Stderr()}, nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok || f != os.Stdin {
		return false
	}

	info, err := f.Stat()
	if err != nil {
		return false
	}

	return info.Mode()&os.ModeCharDevice != 0
}

// linePrompter reads answers from piped input.
type linePrompter struct {
	reader *bufio.Reader
	out    *IO
}

func (p *linePrompter) Prompt(label string) (string, error) {
	p.out.Printf("%s", label)

	line, err := p.reader.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}

	return strings.TrimRight(line, "\r\n"), nil
}

func (p *linePrompter) Close() error {
	return nil
}

// LogoutCmd returns the logout command.
func LogoutCmd(env *appEnv) *Command {
	return &Command{
		Flags: flag.NewFlagSet("logout", flag.ContinueOnError),
		Usage: "logout",
		Short: "Log out",
		Group: groupSession,
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			return env.withApp(ctx, o, func(app *sheet.App) error {
				err := app.Logout(ctx)
				if err != nil {
					return err
				}

				o.Println("logged out")

				return nil
			})
		},
	}
}

// WhoamiCmd returns the whoami command.
func WhoamiCmd(env *appEnv) *Command {
	return &Command{
		Flags: flag.NewFlagSet("whoami", flag.ContinueOnError),
		Usage: "whoami",
		Short: "Show the logged-in user",
		Group: groupSession,
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			return env.withApp(ctx, o, func(app *sheet.App) error {
				user, err := app.User(ctx)
				if err != nil {
					return err
				}

				o.Println(formatUser(user))

				return nil
			})
		},
	}
}

func formatUser(user sheet.User) string {
	return fmt.Sprintf("%s <%s>", user.Name, user.Email)
}
