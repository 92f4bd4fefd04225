package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mr-games/db"
	"mr-games/logger"
	"mr-games/server"
)

const shutdownTimeout = 5 * time.Second

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a local games store",
	Long: `Runs the games store HTTP API on STORE_LISTEN_ADDR, backed by SQLite and
a covers directory under STORE_DATA_DIR. Point GAMES_API_URL at
<STORE_PUBLIC_URL>/games to browse it.`,
	Run: func(cmd *cobra.Command, _ []string) {
		seed, _ := cmd.Flags().GetBool("seed")
		runServe(seed)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Bool("seed", false, "Insert the demo catalog when the store is empty")
}

func runServe(seed bool) {
	cfg := bootstrap(".")
	if err := cfg.PrepareStore(); err != nil {
		logger.Log.Fatalw("Failed to prepare store directories", zap.Error(err))
	}

	store, err := db.Open(cfg.DatabasePath, logger.ZapLogger.Named("gorm"))
	if err != nil {
		logger.Log.Fatalw("Failed to open database", zap.Error(err))
	}
	defer store.Close()
	logger.Log.Infow("Database initialized", zap.String("path", cfg.DatabasePath))

	if seed {
		added, err := store.Seed()
		if err != nil {
			logger.Log.Fatalw("Failed to seed database", zap.Error(err))
		}
		logger.Log.Infow("Seeded demo catalog", zap.Int("games", added))
	}

	srv := &http.Server{
		Addr: cfg.StoreListenAddr,
		Handler: server.New(server.Options{
			Store:     store,
			CoversDir: cfg.CoversDir,
			PublicURL: cfg.StorePublicURL,
			Token:     cfg.AdminToken,
			Logger:    logger.Log.Named("server"),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	logger.Log.Infow("Games store listening", zap.String("addr", cfg.StoreListenAddr), zap.String("public_url", cfg.StorePublicURL))
	fmt.Printf("Games store listening on %s (API: %s/games)\n", cfg.StoreListenAddr, cfg.StorePublicURL)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Log.Fatalw("Server failed", zap.Error(err))
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("Graceful shutdown failed", zap.Error(err))
	}
	logger.Log.Info("Games store stopped")
}
