package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/epitaphe360/cms-backend/api"
	"github.com/epitaphe360/cms-backend/auth"
	"github.com/epitaphe360/cms-backend/config"
	"github.com/epitaphe360/cms-backend/database"
	"github.com/epitaphe360/cms-backend/services"
	"github.com/epitaphe360/cms-backend/storage"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:   "cms-backend",
	Short: "Epitaphe 360 CMS backend",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load environment variables from .env file
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		setupLogging(cfg)
		appConfig = cfg
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var appConfig *config.Config

func main() {
	rootCmd.AddCommand(serveCmd, migrateCmd, createAdminCmd, genQueriesCmd)
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func openDatabase() (*gorm.DB, error) {
	db, err := database.Open(appConfig.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

func newTokens(ctx context.Context) (*auth.Tokens, error) {
	if err := config.ResolveSecrets(ctx, appConfig, nil); err != nil {
		return nil, err
	}
	if err := appConfig.RequireSecret(); err != nil {
		return nil, err
	}
	return auth.NewTokens(appConfig.Auth.Secret, appConfig.Auth.TokenTTL, appConfig.Auth.Issuer), nil
}

func serve(ctx context.Context) error {
	log.Info().Msg("Initializing app...")

	tokens, err := newTokens(ctx)
	if err != nil {
		return err
	}

	db, err := openDatabase()
	if err != nil {
		return err
	}

	var objects storage.ObjectStore
	if appConfig.Storage.Enabled() {
		s3Store, err := storage.NewS3Store(ctx, appConfig.Storage)
		if err != nil {
			return err
		}
		objects = s3Store
	} else {
		log.Warn().Msg("S3_BUCKET is not set, media uploads are disabled")
	}

	svc := services.New(database.New(db), objects, tokens)
	server := api.NewServer(appConfig, svc)

	errChannel := make(chan error, 2)

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	if errors.Is(fatalErr, http.ErrServerClosed) {
		fatalErr = nil
	}
	log.Info().AnErr("reason", fatalErr).Msg("Closing server")

	server.ShutdownGracefully(30 * time.Second)
	return nil
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
