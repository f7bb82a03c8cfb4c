package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed models",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, client, closeLog, err := setup(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer closeLog()

		resp, err := client.ListModels(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list models (is Ollama running?): %w", err)
		}

		if len(resp.Models) == 0 {
			fmt.Println("No models installed.")
			return nil
		}

		fmt.Printf("%-40s %10s  %s\n", "NAME", "SIZE", "MODIFIED")
		fmt.Println("──────────────────────────────────────────────────────────────────────")
		for _, m := range resp.Models {
			fmt.Printf("%-40s %10s  %s\n", m.Identifier(), formatSize(m.Size), m.ModifiedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

// formatSize returns a human-readable size string.
func formatSize(bytes int64) string {
	const gb = 1024 * 1024 * 1024
	const mb = 1024 * 1024
	if bytes >= gb {
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(gb))
	}
	return fmt.Sprintf("%.0f MB", float64(bytes)/float64(mb))
}
