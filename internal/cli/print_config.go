package cli

import (
	"context"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/jobsheet/internal/sheet"
)

// PrintConfigCmd returns the print-config command.
func PrintConfigCmd(cfg *sheet.Config) *Command {
	return &Command{
		Flags: flag.NewFlagSet("print-config", flag.ContinueOnError),
		Usage: "print-config",
		Short: "Show resolved configuration",
		Group: groupOther,
		Long:  "Display the effective configuration and which files it was loaded from.",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			return execPrintConfig(o, cfg)
		},
	}
}

func execPrintConfig(o *IO, cfg *sheet.Config) error {
	o.Println("effective_cwd=" + cfg.EffectiveCwd)
	o.Println("data_dir=" + cfg.DataDirAbs)
	o.Println("storage=" + cfg.Storage)

	if cfg.RedisURL != "" {
		o.Println("redis_url=" + cfg.RedisURL)
	}

	o.Println("log_level=" + cfg.LogLevel)
	o.Println("listen=" + cfg.Listen)
	o.Println("login_delay=" + cfg.LoginDelayDuration().String())

	o.Println("")
	o.Println("# sources")

	if cfg.Sources.Global == "" && cfg.Sources.Project == "" {
		o.Println("(defaults only)")
	} else {
		if cfg.Sources.Global != "" {
			o.Println("global_config=" + cfg.Sources.Global)
		}

		if cfg.Sources.Project != "" {
			o.Println("project_config=" + cfg.Sources.Project)
		}
	}

	return nil
}
