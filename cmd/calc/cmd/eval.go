package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pengelbrecht/calc/internal/script"
)

var evalCmd = &cobra.Command{
	Use:   "eval [FILE|-]",
	Short: "Run a Go script that imports the calculator",
	Long: `Run a Go script that imports the calculator.

Scripts are interpreted, not compiled. They may import "calculator" and a
small set of standard packages (errors, fmt, math, strconv, strings, time).
A missing package clause means package main; main is run if declared.
The run is bounded by script.timeout from the config file.

Examples:
  # Run a script file
  calc eval demo.go

  # Read the script from stdin
  printf 'import "calculator"\nfunc main() { println(calculator.Add(1, 2)) }\n' | calc eval -

  # Evaluate one expression
  calc eval -e 'calculator.Mul(4, 2.5)'`,
	Args: usageArgs(cobra.MaximumNArgs(1)),
	RunE: runEval,
}

var evalExpr string

func init() {
	evalCmd.Flags().StringVarP(&evalExpr, "expr", "e", "", "evaluate a single expression and print the result")

	rootCmd.AddCommand(evalCmd)
}

func runEval(cmd *cobra.Command, args []string) error {
	host := script.New(
		script.WithTimeout(cfg.Script.GetTimeout()),
		script.WithLogger(logger),
		script.WithOutput(cmd.OutOrStdout(), cmd.ErrOrStderr()),
	)

	if evalExpr != "" {
		if len(args) > 0 {
			return usageError{fmt.Errorf("--expr cannot be combined with a script file")}
		}
		result, err := host.Expr(cmd.Context(), evalExpr)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), formatFloat(result))
		return nil
	}

	if len(args) == 0 {
		return usageError{fmt.Errorf("script file or - required")}
	}

	name := args[0]
	var (
		src []byte
		err error
	)
	if name == "-" {
		name = "stdin"
		src, err = io.ReadAll(cmd.InOrStdin())
	} else {
		src, err = os.ReadFile(name)
	}
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}

	return host.Run(cmd.Context(), name, string(src))
}
