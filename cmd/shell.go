package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/recall/internal/shell"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Manage the shell plugin and its command log",
}

var shellInstallCmd = &cobra.Command{
	Use:       "install <zsh|bash>",
	Short:     "Write the shell plugin that records commands",
	Args:      cobra.ExactArgs(1),
	ValidArgs: shell.Supported,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := shell.Install(cmd.OutOrStdout(), args[0])
		return err
	},
}

var shellRotateCmd = &cobra.Command{
	Use:   "rotate",
	Short: "Compress the command log into a .zst archive and start a fresh one",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := shellLogPath()
		if err != nil {
			return err
		}
		archive, err := shell.Rotate(path, time.Now())
		if err != nil {
			return err
		}
		if archive == "" {
			cmd.Printf("Nothing to rotate in %s\n", path)
			return nil
		}
		cmd.Printf("Archived %s to %s\n", path, archive)
		return nil
	},
}

// shellLogPath is the "path" setting of the first shell source, or the
// default log location.
func shellLogPath() (string, error) {
	for _, s := range cfg.Sources {
		if s.Type == "shell" && s.Config["path"] != "" {
			return s.Config["path"], nil
		}
	}
	return shell.DefaultLogPath()
}

func init() {
	shellCmd.AddCommand(shellInstallCmd, shellRotateCmd)
	rootCmd.AddCommand(shellCmd)
}
