package cmd

import (
	"github.com/spf13/cobra"

	"imgcrush/internal/config"
	"imgcrush/internal/processor"
)

var scanLimit int

var scanCmd = &cobra.Command{
	Use:   "scan [flags] [path]",
	Short: "List the images compress would process without modifying files",
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

		_, jobs, err := discover(cfg, target)
		if err != nil {
			return err
		}
		printPreview(processor.Preview(jobs, scanLimit))
		return nil
	},
}

func init() {
	d := config.DefaultConfig()
	f := scanCmd.Flags()
	f.BoolP("recursive", "r", d.Recursive, "descend into subdirectories")
	f.StringSlice("formats", nil, "only list these formats, e.g. jpg,png")
	f.String("backup-dir", d.Backup.Dir, "backup directory to leave out of the listing")
	f.IntVarP(&scanLimit, "limit", "n", previewLimit, "files to list individually, 0 for all")

	rootCmd.AddCommand(scanCmd)
}
