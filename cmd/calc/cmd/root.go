package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pengelbrecht/calc/internal/calculator"
	"github.com/pengelbrecht/calc/internal/config"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// Exit codes.
const (
	exitSuccess         = 0
	exitFailure         = 1
	exitUsage           = 2
	exitInvalidArgument = 3
	exitDivisionByZero  = 4
)

var (
	configPath string
	verbose    bool
	jsonOutput bool

	cfg         config.Config
	logger      = zap.NewNop()
	atomicLevel = zap.NewAtomicLevel()
	buildLogger = func(zc zap.Config) (*zap.Logger, error) { return zc.Build() }
)

var rootCmd = &cobra.Command{
	Use:   "calc",
	Short: "Floating-point arithmetic from the command line, scripts and websockets",
	Long: `calc exposes four arithmetic operations (add, sub, mul, div) over float64.

The same operations are reachable as subcommands, from Go scripts that
import "calculator", over a websocket call socket, and from an interactive
prompt.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			p, err := config.DefaultPath()
			if err != nil {
				return err
			}
			path = p
		}
		configPath = path

		loaded, err := config.LoadOrDefault(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded

		level := cfg.Log.GetLevel()
		if verbose {
			level = zapcore.DebugLevel
		}
		atomicLevel.SetLevel(level)

		zc := zap.NewProductionConfig()
		zc.Encoding = "console"
		zc.Level = atomicLevel
		zc.ErrorOutputPaths = []string{"stderr"}
		l, err := buildLogger(zc)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $CALC_CONFIG or <user config dir>/calc/calc.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err}
	})
}

// usageError marks command-line misuse.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// usageArgs reports positional argument errors from validate as usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

// Execute runs the root command against os.Args and returns the exit code.
func Execute() int {
	return run(os.Args[1:], os.Stdout, os.Stderr)
}

func run(args []string, stdout, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.Execute()
	_ = logger.Sync()
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintf(stderr, "error: %v\n", err)
	return exitCode(err)
}

func exitCode(err error) int {
	var ue usageError
	switch {
	case err == nil:
		return exitSuccess
	case errors.As(err, &ue):
		return exitUsage
	case calculator.KindOf(err) == calculator.KindInvalidArgument:
		return exitInvalidArgument
	case calculator.KindOf(err) == calculator.KindDivisionByZero:
		return exitDivisionByZero
	}
	return exitFailure
}
