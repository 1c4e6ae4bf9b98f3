package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"imgcrush/internal/toolchain"
	"imgcrush/internal/tui"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Show which compression tools are installed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		tools := toolchain.Probe(cfg.Tools)
		for _, name := range toolchain.All {
			mark := toolMissingStyle.Render("✗")
			if tools.Has(name) {
				mark = toolOKStyle.Render("✓")
			}
			fmt.Fprintf(os.Stdout, "%s %-10s %s\n", mark, name, toolDimStyle.Render(toolchain.Binary(cfg.Tools, name)))
		}
		if len(tools.Missing()) > 0 {
			fmt.Fprintf(os.Stdout, "\nInstall missing tools with: %s\n", toolchain.InstallHint)
		}
		return nil
	},
}

var (
	toolOKStyle      = lipgloss.NewStyle().Foreground(tui.ColorSuccess)
	toolMissingStyle = lipgloss.NewStyle().Foreground(tui.ColorError)
	toolDimStyle     = lipgloss.NewStyle().Foreground(tui.ColorDim)
)

func init() {
	rootCmd.AddCommand(toolsCmd)
}
