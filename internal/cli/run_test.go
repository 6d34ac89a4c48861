package cli_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/jobsheet/internal/cli"
)

func Test_Invalid_Global_Flag_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout, stderr, exitCode := c.Run("--invalid-flag", "ls")

	if got, want := exitCode, 1; got != want {
		t.Errorf("exitCode=%d, want=%d", got, want)
	}

	if got, want := stdout, ""; got != want {
		t.Errorf("stdout=%q, want=%q", got, want)
	}

	cli.AssertContains(t, stderr, "unknown flag")
	cli.AssertContains(t, stderr, "--invalid-flag")

	cli.AssertContains(t, stderr, "Global flags:")
	cli.AssertContains(t, stderr, "--help")
	cli.AssertContains(t, stderr, "--cwd")
	cli.AssertContains(t, stderr, "--config")
	cli.AssertContains(t, stderr, "--data-dir")
	cli.AssertContains(t, stderr, "--storage")
}

func Test_Empty_Global_Flags_When_Invoked(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name       string
		flag       string
		wantStderr string
	}{
		{name: "data dir", flag: "--data-dir=", wantStderr: "data_dir cannot be empty"},
		{name: "storage", flag: "--storage=", wantStderr: "storage must be one of"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := cli.NewCLI(t)
			stderr := c.MustFail(tt.flag, "ls")

			cli.AssertContains(t, stderr, tt.wantStderr)
			cli.AssertContains(t, stderr, "Global flags:")
		})
	}
}

func Test_Bare_Command_When_Invoked(t *testing.T) {
	t.Parallel()

	// Call Run directly without test helper (which adds --cwd)
	var stdout, stderr bytes.Buffer

	exitCode := cli.Run(nil, &stdout, &stderr, []string{"jr"}, nil, nil)

	if got, want := exitCode, 0; got != want {
		t.Errorf("exitCode=%d, want=%d", got, want)
	}

	if got, want := stderr.String(), ""; got != want {
		t.Errorf("stderr=%q, want=%q", got, want)
	}

	cli.AssertContains(t, stdout.String(), "jr - job request sheet")
	cli.AssertContains(t, stdout.String(), "--cwd")
	cli.AssertContains(t, stdout.String(), "create <job-request>")
}

func Test_Main_Help_When_Invoked(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name string
		args []string
	}{
		{name: "long flag", args: []string{"--help"}},
		{name: "short flag", args: []string{"-h"}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := cli.NewCLI(t)
			stdout, stderr, exitCode := c.Run(tt.args...)

			if got, want := exitCode, 0; got != want {
				t.Errorf("exitCode=%d, want=%d", got, want)
			}

			if got, want := stderr, ""; got != want {
				t.Errorf("stderr=%q, want=%q", got, want)
			}

			for _, usage := range []string{
				"login [--email E --name N | --quick U]",
				"ls [flags]",
				"show <id>",
				"edit <index> <column> <value>",
				"set <id> <column> <value>",
				"status <id> <status>",
				"import <file|->",
				"export [-o file]",
				"sheet",
				"serve [--listen addr]",
				"print-config",
			} {
				cli.AssertContains(t, stdout, usage)
			}
		})
	}
}

func Test_Command_Help_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun("ls", "--help")

	cli.AssertContains(t, stdout, "Usage: jr ls [flags]")
	cli.AssertContains(t, stdout, "Flags:")
	cli.AssertContains(t, stdout, "--search")
	cli.AssertContains(t, stdout, "--pad")
}

func Test_Usage_Groups_Commands_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun("--help")

	session := strings.Index(stdout, "  Session:")
	rows := strings.Index(stdout, "  Rows:")
	csv := strings.Index(stdout, "  CSV:")
	other := strings.Index(stdout, "  Other:")

	require.NotEqual(t, -1, session, stdout)
	assert.Less(t, session, strings.Index(stdout, "    whoami"))
	assert.Less(t, session, rows)
	assert.Less(t, rows, strings.Index(stdout, "    status <id> <status>"))
	assert.Less(t, rows, csv)
	assert.Less(t, csv, strings.Index(stdout, "    export [-o file]"))
	assert.Less(t, csv, other)
	assert.Less(t, other, strings.Index(stdout, "    print-config"))
}

func Test_Missing_Argument_Prints_Usage_Line_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("show")

	cli.AssertContains(t, stderr, "row id is required")
	cli.AssertContains(t, stderr, "Usage: jr show <id>")
	cli.AssertNotContains(t, stderr, "Flags:")
}

func Test_Failed_Command_Omits_Usage_Line_When_Arguments_Are_Fine(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("show", "99")

	cli.AssertContains(t, stderr, "row not found")
	cli.AssertNotContains(t, stderr, "Usage:")
}

func Test_Unknown_Command_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("not-a-command")

	cli.AssertContains(t, stderr, "unknown command")
	cli.AssertContains(t, stderr, "not-a-command")
	cli.AssertContains(t, stderr, "Commands:")
}

func Test_Invalid_Command_Flag_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("create", "--invalid-flag")

	cli.AssertContains(t, stderr, "error:")
	cli.AssertContains(t, stderr, "unknown flag")
	cli.AssertContains(t, stderr, "--invalid-flag")
	cli.AssertContains(t, stderr, "Usage: jr create <job-request>")
	cli.AssertContains(t, stderr, "Flags:")
}

func Test_Sheet_Fails_When_Stdin_Missing(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("sheet")

	cli.AssertContains(t, stderr, "stdin is not a terminal")
}

func Test_Serve_Fails_When_Arguments_Given(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("serve", "extra")

	cli.AssertContains(t, stderr, "too many arguments")
}
