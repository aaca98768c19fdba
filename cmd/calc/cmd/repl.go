package cmd

import (
	"github.com/spf13/cobra"

	"github.com/pengelbrecht/calc/internal/tui"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive prompt",
	Long: `Start an interactive prompt.

Type "op a b" (for example "mul 4 2.5") and press enter. Each line is an
independent call. Press esc or type quit to leave.`,
	Args: usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		return tui.Run()
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}
