package cmd

import (
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/recall/internal/collector"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List configured sources and the available source types",
	RunE: func(cmd *cobra.Command, args []string) error {
		types := collector.Types()

		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("ID", "TYPE", "ENABLED", "SETTINGS")
		for _, s := range cfg.Sources {
			enabled := "no"
			if s.Enabled {
				enabled = "yes"
			}
			if !slices.Contains(types, s.Type) {
				enabled = "unknown type"
			}
			keys := make([]string, 0, len(s.Config))
			for k := range s.Config {
				keys = append(keys, k)
			}
			slices.Sort(keys)
			t.Row(s.Label(), s.Type, enabled, strings.Join(keys, ", "))
		}
		cmd.Println(t.Render())
		cmd.Printf("Available types: %s\n", strings.Join(types, ", "))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}
