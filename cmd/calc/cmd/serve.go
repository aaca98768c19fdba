package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pengelbrecht/calc/internal/config"
	"github.com/pengelbrecht/calc/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the calculator over a websocket call socket",
	Long: `Serve the calculator over a websocket call socket.

Clients connect to /ws and send frames of the form
  {"type":"call","requestId":"1","operation":"add","args":[2,3]}
and receive
  {"type":"call_response","requestId":"1","success":true,"result":5}

GET /healthz answers "ok" and GET /operations lists the entry points.
Changes to log.level in the config file apply without a restart.

Examples:
  calc serve

  calc serve --addr :9000`,
	Args: usageArgs(cobra.NoArgs),
	RunE: runServe,
}

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, 127.0.0.1:7420)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.GetAddr()
	}

	watcher := config.NewWatcher(configPath)
	if err := watcher.Start(); err != nil {
		logger.Warn("config watch disabled", zap.String("path", configPath), zap.Error(err))
	} else {
		defer watcher.Stop()
		go applyConfigChanges(ctx, watcher)
	}

	srv := server.New(server.Config{
		ReadLimit: cfg.Server.GetReadLimit(),
		Logger:    logger.Named("server"),
	})
	return srv.ListenAndServe(ctx, addr)
}

func applyConfigChanges(ctx context.Context, w *config.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-w.Changes():
			if !ok {
				return
			}
			if !verbose {
				atomicLevel.SetLevel(c.Log.GetLevel())
			}
			logger.Info("config reloaded", zap.String("level", atomicLevel.Level().String()))
		case err, ok := <-w.Errors():
			if !ok {
				return
			}
			logger.Warn("config reload failed", zap.Error(err))
		}
	}
}
