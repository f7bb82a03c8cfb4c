package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/ThatCatDev/modelinspect/internal/daemon"
	"github.com/ThatCatDev/modelinspect/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the model inspector as a web page",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, client, closeLog, err := setup(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer closeLog()

		if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
			cfg.Listen = listen
		}
		if !cfg.Debug {
			gin.SetMode(gin.ReleaseMode)
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log.Info().Str("ollama", client.BaseURL()).Msg("using daemon")
		srv := web.New(cfg.Listen, daemon.New(client, log), log)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().String("listen", "", "listen address (default $MODELINSPECT_LISTEN or 127.0.0.1:8090)")
	rootCmd.AddCommand(serveCmd)
}
