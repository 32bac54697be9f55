package cmd

import (
	"log"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/hh-twin/internal/backend"
	"github.com/spigell/hh-twin/internal/logger"
	"github.com/spigell/hh-twin/internal/profile"
	"github.com/spigell/hh-twin/internal/session"
)

// setup builds the logger and reads the config. Failures are fatal.
func setup() (*zap.Logger, *Config) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	return logger, config
}

func newBackend(config *Config, logger *zap.Logger) *backend.Client {
	client := backend.New(logger.Named("backend"), config.BackendURL, config.BackendTimeout)
	if ua := strings.TrimSpace(config.UserAgent); ua != "" {
		client.UserAgent = ua
	}
	return client
}

func newBootstrapper(config *Config, logger *zap.Logger) *session.Bootstrapper {
	return session.NewBootstrapper(
		newBackend(config, logger),
		profile.NewStore(),
		logger.Named("session"),
		config.BackendTimeout,
	)
}
