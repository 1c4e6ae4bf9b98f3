package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"imgcrush/internal/config"
	"imgcrush/internal/display"
	"imgcrush/internal/logging"
	"imgcrush/internal/processor"
	"imgcrush/internal/report"
	"imgcrush/internal/strategy"
	"imgcrush/internal/toolchain"
	"imgcrush/internal/tui"
)

// previewLimit is how many files a dry run lists individually.
const previewLimit = 10

var compressCmd = &cobra.Command{
	Use:   "compress [flags] [path]",
	Short: "Recompress images in place, keeping a backup of each original",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		target, err := resolveTarget(args)
		if err != nil {
			return err
		}
		log, err := logging.NewLogger(cfg)
		if err != nil {
			return fmt.Errorf("open log: %w", err)
		}
		defer log.Close()

		tools := toolchain.Probe(cfg.Tools)
		warnMissing(log, tools)

		guard, jobs, err := discover(cfg, target)
		if err != nil {
			return err
		}
		if len(jobs) == 0 {
			log.Warn("no image files found in %s", target)
			return nil
		}
		if cfg.DryRun {
			printPreview(processor.Preview(jobs, previewLimit))
			return nil
		}

		log.Info("found %d image files", len(jobs))
		if !guard.Active() {
			log.Warn("backups disabled, originals are overwritten without a copy")
		} else {
			log.Info("backing up originals to %s", guard.Dir)
		}

		stats, err := run(cmd.Context(), cfg, jobs, processor.Options{
			Workers:  cfg.Workers,
			Tools:    tools,
			Registry: toolchain.Commands(cfg.Tools),
			Table:    strategy.DefaultTable(),
			Backup:   guard,
			Log:      log,
		}, log)
		if err != nil {
			return err
		}

		fmt.Fprintln(os.Stdout, tui.RenderSummary(tui.StatsRows(stats, cfg.Report.SkipBreakdown)))
		if stats.Processed < stats.Total {
			log.Warn("interrupted after %d of %d files", stats.Processed, stats.Total)
		}

		if cfg.Report.Disabled {
			return nil
		}
		path, err := report.Write(cfg.Report.Dir, report.NewRecord(stats, tools.Map(), time.Now()))
		if err != nil {
			return err
		}
		log.Info("stats saved to %s", path)
		return nil
	},
}

// run drives the processor, with the live progress view when enabled and
// stdout is a terminal.
func run(ctx context.Context, cfg *config.Config, jobs []processor.Job, opts processor.Options, log *logging.Logger) (processor.Stats, error) {
	if !cfg.Progress || !isTerminal(os.Stdout) {
		return processor.Run(ctx, jobs, opts, nil)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates := make(chan processor.ProgressUpdate, 64)
	model := tui.NewModel(updates).WithInterrupt(cancel)
	program := tea.NewProgram(model)

	log.SetQuiet(true)
	defer log.SetQuiet(false)

	uiDone := make(chan struct{})
	go showProgress(program, updates, log, uiDone)

	stats, err := processor.Run(ctx, jobs, opts, updates)
	close(updates)
	<-uiDone
	return stats, err
}

// showProgress runs view until it quits, then drains updates so the
// collector never blocks on a view that exited early. done is closed once
// updates is closed.
func showProgress(view interface{ Run() (tea.Model, error) }, updates <-chan processor.ProgressUpdate, log *logging.Logger, done chan<- struct{}) {
	defer close(done)
	if _, err := view.Run(); err != nil {
		log.Warn("progress view: %v", err)
	}
	for range updates {
	}
}

// resolveTarget returns the path argument, defaulting to the working
// directory. A target that cannot be read is a usage error.
func resolveTarget(args []string) (string, error) {
	target := "."
	if len(args) > 0 {
		target = args[0]
	}
	if _, err := os.Stat(target); err != nil {
		return "", &ConfigError{Err: fmt.Errorf("target %s: %w", target, err)}
	}
	return target, nil
}

// discover builds the backup guard for target and lists its images. The
// guard is rooted at target so mirrors keep paths relative to it.
func discover(cfg *config.Config, target string) (*processor.BackupGuard, []processor.Job, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, nil, err
	}
	root := target
	if !info.IsDir() {
		root = filepath.Dir(target)
	}

	guard, err := processor.NewBackupGuard(cfg.Backup, root)
	if err != nil {
		return nil, nil, err
	}

	jobs, err := processor.Discover(target, processor.DiscoverOptions{
		Recursive: cfg.Recursive,
		Kinds:     cfg.FormatKinds(),
		Exclude:   []string{guard.Dir},
		Quality:   cfg.Quality,
	})
	if err != nil {
		return nil, nil, err
	}
	if !info.IsDir() {
		for i := range jobs {
			jobs[i].Display = target
		}
	}
	return guard, jobs, nil
}

func warnMissing(log *logging.Logger, tools toolchain.Set) {
	missing := tools.Missing()
	if len(missing) == 0 {
		return
	}
	log.Warn("missing compression tools: %v", missing)
	log.Warn("install with: %s", toolchain.InstallHint)
}

func printPreview(res processor.PreviewResult) {
	fmt.Fprintf(os.Stdout, "%s\n", previewTitleStyle.Render(fmt.Sprintf("Dry run: would process %d files", res.Files)))
	for _, e := range res.Entries {
		line := fmt.Sprintf("  %s %s", e.Job.Display, previewDimStyle.Render("("+display.FormatSize(e.Size)+")"))
		switch {
		case e.Err != nil:
			line += " " + previewWarnStyle.Render(e.Err.Error())
		case e.ExifTags > 0:
			line += " " + previewWarnStyle.Render(fmt.Sprintf("%d EXIF tags", e.ExifTags))
		}
		fmt.Fprintln(os.Stdout, line)
	}
	if res.Remaining > 0 {
		fmt.Fprintf(os.Stdout, "  %s\n", previewDimStyle.Render(fmt.Sprintf("... and %d more files", res.Remaining)))
	}
	fmt.Fprintf(os.Stdout, "Total size: %s\n", display.FormatSize(res.TotalSize))
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

var (
	previewTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(tui.ColorAccent)
	previewDimStyle   = lipgloss.NewStyle().Foreground(tui.ColorDim)
	previewWarnStyle  = lipgloss.NewStyle().Foreground(tui.ColorWarn)
)

func init() {
	d := config.DefaultConfig()
	f := compressCmd.Flags()
	f.IntP("quality", "q", d.Quality, "JPEG quality (1-100)")
	f.IntP("workers", "w", d.Workers, "number of parallel workers")
	f.BoolP("recursive", "r", d.Recursive, "descend into subdirectories")
	f.StringSlice("formats", nil, "only process these formats, e.g. jpg,png")
	f.Bool("dry-run", false, "list files that would be processed without changing anything")
	f.BoolP("verbose", "v", false, "log every compression step")
	f.String("log-file", d.LogFile, "log file path, empty to disable")
	f.String("color", string(d.Color), "colored output: auto, always or never")
	f.Bool("no-backup", false, "do not back up originals")
	f.String("backup-dir", d.Backup.Dir, "directory for original copies")
	f.Bool("force-no-backup-check", false, "skip the backup step entirely")
	f.Bool("no-progress", false, "disable the live progress view")
	f.String("report-dir", d.Report.Dir, "directory for the JSON stats record")
	f.Bool("no-report", false, "do not write the JSON stats record")
	f.Bool("skip-breakdown", false, "show skipped counts per cause in the summary")

	rootCmd.AddCommand(compressCmd)
}
