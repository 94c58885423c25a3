package main

import (
	"chat-relay/auth"
	"chat-relay/contract"
	"chat-relay/infrastructure/http/server"
	"chat-relay/infrastructure/websocket"
	"chat-relay/internal"
	"chat-relay/moderation"
	"chat-relay/repositories"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/services"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

const shutdownTimeout = 5 * time.Second

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Relay terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires every component and blocks until a signal arrives.
// Returning instead of exiting lets deferred cleanups (Badger) run.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()

	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}
	accessTTL, err := auth.ParseExpiry(config.AuthJwtTokenExpiresIn)
	if err != nil {
		return exitConfig, fmt.Errorf("AUTH_JWT_TOKEN_EXPIRES_IN: %w", err)
	}
	refreshTTL, err := auth.ParseExpiry(config.AuthRefreshTokenExpiresIn)
	if err != nil {
		return exitConfig, fmt.Errorf("AUTH_REFRESH_TOKEN_EXPIRES_IN: %w", err)
	}

	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Database (BadgerDB)
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Moderation, off unless a dictionary exists
	censor, err := buildCensor(config, db, charReplacement, logger)
	if err != nil {
		return exitRuntime, err
	}

	// 4. Relay core
	authority := auth.NewTokenAuthority(auth.TokenConfig{
		AccessSecret:  []byte(config.AuthJwtSecret),
		RefreshSecret: []byte(config.AuthRefreshSecret),
		AccessTTL:     accessTTL,
		RefreshTTL:    refreshTTL,
	})
	registry := runtime.NewRegistry(config.RoomCapacity)
	gatekeeper := runtime.NewGatekeeper(logger, authority)

	chatService := services.NewChatService(logger, gatekeeper, registry, censor, config.WriteTimeout)
	authService := services.NewAuthService(repositories.NewUserRepository(db), authority)

	router := server.NewRouter(logger,
		server.NewChatServer(logger, chatService,
			websocket.NewUpgrader(config.Origins(), logger),
			websocket.Options{MaxMessageSize: config.MaxMessageSize, PingInterval: config.PingInterval},
		),
		server.NewAuthServer(logger, authService, authority),
	)

	// 5. Supervised workers
	sup := workers.NewSupervisor(logger, config.RestartInterval)
	sup.Add(
		workers.NewHTTPServerWorker(logger, config.Addr(), router, shutdownTimeout),
		workers.NewStatsWorker(logger, registry, config.StatsInterval),
	)

	logger.Info("Starting relay", "addr", config.Addr(), "room_capacity", config.RoomCapacity)
	sup.Run(ctx)

	logger.Info("Program stopped cleanly")
	return exitOK, nil
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG)
	} else {
		options = options.WithLoggingLevel(badger.WARNING)
	}
	return options
}

// buildCensor merges CENSORED_WORDS into the stored dictionary and builds the moderator.
// A nil Censor means moderation is off.
func buildCensor(config internal.Config, db *badger.DB, replacement rune, logger *slog.Logger) (contract.Censor, error) {
	if words := config.Words(); len(words) > 0 {
		if err := moderation.StoreDictionary(db, words); err != nil {
			return nil, fmt.Errorf("storing censored words failed: %w", err)
		}
	}

	words, err := moderation.LoadDictionary(db)
	if err != nil {
		return nil, fmt.Errorf("loading censored words failed: %w", err)
	}
	if len(words) == 0 {
		logger.Info("Moderation disabled")
		return nil, nil
	}

	moderator, err := moderation.NewModerator(words, replacement, logger)
	if err != nil {
		return nil, fmt.Errorf("building moderator failed: %w", err)
	}
	logger.Info("Moderation enabled", "words", len(words))
	return moderator, nil
}
