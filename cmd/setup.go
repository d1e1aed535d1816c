package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/recall/internal/config"
	"github.com/fakeyudi/recall/internal/shell"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Choose which sources recall collects from (re-run anytime to edit)",
	// Setup must work when the config file is missing or broken.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetup(cmd)
	},
}

// runSetup runs the interactive setup wizard and writes the config file.
func runSetup(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	path := configPath
	if path == "" {
		def, err := config.DefaultPath()
		if err != nil {
			return err
		}
		path = def
	}

	// Load the existing config as defaults if present.
	var existing *config.Config
	loaded, err := config.Load(path)
	switch {
	case err == nil:
		existing = loaded
	case errors.Is(err, config.ErrNotFound):
	default:
		fmt.Fprintf(out, "  ⚠ Ignoring unreadable config: %v\n", err)
	}

	res, err := config.RunSetup(cmd.InOrStdin(), out, existing)
	if err != nil {
		return fmt.Errorf("setup cancelled: %w", err)
	}

	if err := config.Write(path, res.Config); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Fprintf(out, "  ✓ Config saved to %s\n", path)

	if res.PluginShell != "" {
		if _, err := shell.Install(out, res.PluginShell); err != nil {
			fmt.Fprintf(out, "  ⚠ Plugin install failed: %v\n", err)
			fmt.Fprintln(out, "    You can retry with: recall shell install <zsh|bash>")
		}
	}

	fmt.Fprintln(out, "  Setup complete. Run 'recall' to see today's timeline.")
	fmt.Fprintln(out)
	return nil
}

func init() {
	rootCmd.AddCommand(setupCmd)
}
