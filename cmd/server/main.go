package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"

	"github.com/venturehub/community-chat/errors"
	"github.com/venturehub/community-chat/identity"
	"github.com/venturehub/community-chat/internal"
	"github.com/venturehub/community-chat/moderation"
	"github.com/venturehub/community-chat/repositories"
	"github.com/venturehub/community-chat/runtime"
	"github.com/venturehub/community-chat/runtime/workers"
	"github.com/venturehub/community-chat/services"
	"github.com/venturehub/community-chat/transport/ws"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting, so defers (database cleanup in particular)
// execute before the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := internal.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Repositories & directory seeding
	messageRepository := repositories.NewMessageRepository(db, log, config.MaxBodyLength)
	userRepository := repositories.NewUserRepository(db)
	if config.UsersSeedFile != "" {
		if err := seedUsers(log, userRepository, config.UsersSeedFile); err != nil {
			return fmt.Errorf("user seeding failed: %w", err)
		}
	}
	resolver := identity.NewResolver(userRepository, log)

	// 4. Moderation (optional policy)
	moderator, err := buildModerator(config)
	if err != nil {
		return fmt.Errorf("moderation setup failed: %w", err)
	}

	// 5. Hub, supervision, ingest pipeline
	registry := runtime.NewRegistry()
	hub := runtime.NewHub(log, registry, config.BufferSize, config.SinkTimeout)
	chatService := services.NewChatService(log, resolver, messageRepository, hub,
		moderator, config.SubmitTimeout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sup := workers.NewSupervisor(log).Add(hub.Worker())
	go sup.Run(ctx)

	// 6. HTTP server
	server := ws.NewServer(log, chatService, hub, config.ConnectionBufferSize)
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	httpServer := &http.Server{Addr: address, Handler: server.Routes()}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting chat server", "address", address)
		if err := httpServer.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 8. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
	sup.Stop()
	log.Info("Program stopped cleanly")

	return nil
}

func buildModerator(config Config) (*moderation.Moderator, error) {
	words := strings.Split(config.CensoredWords, ",")
	words = trimNonEmpty(words)
	if len(words) == 0 {
		return nil, nil
	}
	replacement := []rune(config.CensorReplacement)
	if len(replacement) != 1 {
		return nil, fmt.Errorf("CENSOR_REPLACEMENT must be a single character, got %q", config.CensorReplacement)
	}
	return moderation.NewModerator(words, replacement[0])
}

func trimNonEmpty(words []string) []string {
	out := words[:0]
	for _, w := range words {
		if trimmed := strings.TrimSpace(w); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

type seedUser struct {
	ExternalID string `json:"externalId"`
	Name       string `json:"name"`
	Avatar     string `json:"avatar"`
}

// seedUsers loads directory entries from a JSON file. Provisioning is an
// external concern in production; the seed path exists for deployments and
// local runs. Already present users are skipped.
func seedUsers(log *slog.Logger, users repositories.IUserRepository, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var entries []seedUser
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	for _, entry := range entries {
		_, err := users.CreateUser(entry.ExternalID, entry.Name, entry.Avatar)
		if stderrors.Is(err, errors.ErrUserAlreadyExists) {
			continue
		}
		if err != nil {
			return err
		}
	}
	log.Info(fmt.Sprintf("%d directory entries seeded", len(entries)))
	return nil
}
