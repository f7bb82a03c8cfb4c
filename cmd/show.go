package cmd

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/ThatCatDev/modelinspect/internal/daemon"
	"github.com/ThatCatDev/modelinspect/internal/format"
)

var showCmd = &cobra.Command{
	Use:   "show <model>",
	Short: "Print a model's configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		model := args[0]
		systemOnly, _ := cmd.Flags().GetBool("system")
		noColor, _ := cmd.Flags().GetBool("no-color")

		_, _, client, closeLog, err := setup(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer closeLog()

		rec, err := client.Show(cmd.Context(), model)
		if err != nil {
			return fmt.Errorf("failed to get config for %s: %w", model, err)
		}

		if systemOnly {
			prompt, ok := rec.String(daemon.SystemKey)
			if !ok || prompt == "" {
				fmt.Println("No system prompt configured")
				return nil
			}
			fmt.Println(prompt)
			return nil
		}

		text, err := format.Config(rec)
		if err != nil {
			return fmt.Errorf("failed to format config for %s: %w", model, err)
		}
		if !noColor && isatty.IsTerminal(os.Stdout.Fd()) {
			text = format.Highlight(text)
		}
		fmt.Println(text)
		return nil
	},
}

func init() {
	showCmd.Flags().Bool("system", false, "print only the system prompt")
	showCmd.Flags().Bool("no-color", false, "disable syntax highlighting")
	rootCmd.AddCommand(showCmd)
}
