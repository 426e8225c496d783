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

	"krishi-mitra/content"
	"krishi-mitra/cropmodel"
	"krishi-mitra/intent"
	"krishi-mitra/internal"
	"krishi-mitra/repositories"
	"krishi-mitra/search"
	"krishi-mitra/server"
	"krishi-mitra/services"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// This pattern is preferred over calling os.Exit or panic directly because:
// 1. It ensures all 'defer' statements (like database cleanup) are executed before the program exits.
// 2. It improves testability by decoupling the initialization logic from the main entry point.
// 3. It provides a structured way to handle graceful shutdowns for the HTTP server.
func run() error {
	startedAt := time.Now()

	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	//  Defer will be executed before run() returned anything to main()
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Full-text index (Bluge)
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return fmt.Errorf("search index opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing Bluge writer...")
		_ = writer.Close()
	}()

	// 4. Intent rules & seed content
	resolver, err := intent.NewResolver()
	if err != nil {
		return fmt.Errorf("intent rules loading failed: %w", err)
	}
	contentStore, err := content.Load()
	if err != nil {
		return fmt.Errorf("seed content loading failed: %w", err)
	}

	index := search.NewIndex(writer, log, config.SearchPageSize)
	// Article IDs are stable, so re-indexing on every boot just overwrites.
	for _, article := range contentStore.Articles() {
		if err := index.IndexArticle(article); err != nil {
			return fmt.Errorf("seed article indexing failed: %w", err)
		}
	}

	// 5. Services
	chat := services.NewChatService(resolver,
		repositories.NewConversationRepository(db, log), log)
	account := services.NewAuthService(
		repositories.NewUserRepository(db), config.AuthTokenDuration)
	market := services.NewMarketService(
		repositories.NewListingRepository(db, log, config.LimitListings), index, log)
	crop := cropmodel.NewClient(config.ModelServerURL,
		config.ModelRetries, config.ModelBackoff, log)

	// 6. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 7. HTTP Server Setup
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	srv := &http.Server{
		Addr:    address,
		Handler: server.NewServer(log, chat, account, market, crop, contentStore, config.AllowedOrigin),
	}

	if config.DebugPort > 0 {
		internal.StartDebugServer(db, log, config.DebugPort,
			internal.PortalMapper, internal.ProcessStats(db, log, startedAt))
	}

	// Use an error channel to capture ListenAndServe() issues
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 8. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 9. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Info("Program stopped cleanly")

	return nil
}
