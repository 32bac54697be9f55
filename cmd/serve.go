package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/hh-twin/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the candidate facts tool over HTTP for the voice agent",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "address to listen on (default :8080)")

	viper.BindPFlag("listen", serveCmd.Flags().Lookup("listen"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, config := setup()
	defer logger.Sync() //nolint:errcheck

	if !viper.GetBool("debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("starting the hh-twin server",
		zap.String("version", resolvedVersion()),
		zap.String("backend", config.BackendURL),
	)

	srv := server.New(newBootstrapper(config, logger), logger.Named("server"), config.AI.Gemini.MaxLogLength)
	if err := srv.Run(ctx, config.Listen); err != nil {
		logger.Fatal("serving", zap.Error(err))
	}
}
