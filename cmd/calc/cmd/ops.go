package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pengelbrecht/calc/internal/calculator"
)

var callCmd = &cobra.Command{
	Use:   "call OPERATION [ARG...]",
	Short: "Invoke an operation by name",
	Long: `Invoke an operation by name.

Arguments are validated by the calculator itself, so wrong arity or a
non-numeric argument fails with InvalidArgument (exit 3). Use -- before
negative numbers.

Examples:
  calc call add 2 3

  calc call div 1 0

  calc --json call mul 4 2.5`,
	Args: usageArgs(cobra.MinimumNArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd, args[0], args[1:])
	},
}

func init() {
	for _, op := range calculator.Operations() {
		rootCmd.AddCommand(newOperationCmd(op))
	}
	rootCmd.AddCommand(callCmd)
}

func newOperationCmd(op calculator.Operation) *cobra.Command {
	name := op.Name
	return &cobra.Command{
		Use:   name + " A B",
		Short: op.Doc,
		Long: fmt.Sprintf(`%s.

Examples:
  calc %s 10 2

  calc %s -- -1.5 2`, op.Doc, name, name),
		// Arity is checked by the calculator so it reports InvalidArgument.
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, name, args)
		},
	}
}

type resultPayload struct {
	Op     string `json:"op"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
	Kind   string `json:"kind,omitempty"`
}

func runOperation(cmd *cobra.Command, name string, raw []string) error {
	args := make([]any, len(raw))
	for i, a := range raw {
		args[i] = json.Number(a)
	}

	result, err := calculator.Call(name, args...)
	logger.Debug("call", zap.String("operation", name), zap.Strings("args", raw), zap.Error(err))

	if jsonOutput {
		payload := resultPayload{Op: name}
		if err != nil {
			payload.Error = err.Error()
			payload.Kind = string(calculator.KindOf(err))
		} else {
			payload.Result = jsonFloat(result)
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		if encErr := enc.Encode(payload); encErr != nil {
			return fmt.Errorf("failed to encode json: %w", encErr)
		}
		return err
	}

	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), formatFloat(result))
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// jsonFloat returns f as a JSON number, or as a string when it is not finite.
func jsonFloat(f float64) any {
	if _, err := json.Marshal(f); err != nil {
		return formatFloat(f)
	}
	return f
}
