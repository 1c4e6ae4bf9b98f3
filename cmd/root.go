package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"imgcrush/internal/config"
	"imgcrush/internal/tui"
)

var (
	configPath string
	settings   = viper.New()
)

var rootCmd = &cobra.Command{
	Use:           "imgcrush",
	Short:         "imgcrush - recompress images in place with external optimizers",
	Long:          "imgcrush walks a directory, backs up each image and replaces it with a smaller version produced by mozjpeg, pngquant, optipng, zopflipng or gifsicle.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// ConfigError marks a problem found before any file was examined.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return "configuration: " + e.Err.Error() }

func (e *ConfigError) Unwrap() error { return e.Err }

// Execute runs the root command and exits with 2 for configuration errors
// and 1 for any other fatal error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error:"), err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return 2
	}
	return 1
}

// flagKeys maps command flags onto configuration keys.
var flagKeys = map[string]string{
	"quality":               "quality",
	"workers":               "workers",
	"recursive":             "recursive",
	"formats":               "formats",
	"dry-run":               "dry_run",
	"verbose":               "verbose",
	"log-file":              "log_file",
	"color":                 "color",
	"backup-dir":            "backup.dir",
	"force-no-backup-check": "backup.force_skip_check",
	"report-dir":            "report.dir",
	"no-report":             "report.disabled",
	"skip-breakdown":        "report.skip_breakdown",
}

// loadConfig layers the command's flags over file, env and defaults and
// validates the result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok && bindErr == nil {
			bindErr = settings.BindPFlag(key, f)
		}
	})
	if bindErr != nil {
		return nil, &ConfigError{Err: bindErr}
	}
	if f := cmd.Flags().Lookup("no-backup"); f != nil && f.Changed {
		settings.Set("backup.enabled", false)
	}
	if f := cmd.Flags().Lookup("no-progress"); f != nil && f.Changed {
		settings.Set("progress", false)
	}

	cfg, err := config.Load(settings, configPath)
	if err != nil {
		return nil, &ConfigError{Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, &ConfigError{Err: err}
	}
	return cfg, nil
}

var errorStyle = lipgloss.NewStyle().Bold(true).Foreground(tui.ColorError)

func init() {
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./imgcrush.yaml)")
}
