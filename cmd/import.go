package cmd

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mr-games/db"
	"mr-games/games"
	"mr-games/logger"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import [file.json]",
	Short: "Import a catalog export into the local games store",
	Long: `Reads a catalog export, either {"games": [...]} as served by the store
or a bare JSON array, and adds every game that is not stored yet.
Example: mr-games import catalog.json`,
	Args: cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		runImport(args[0])
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(path string) {
	cfg := bootstrap(".")
	if err := cfg.PrepareStore(); err != nil {
		logger.Log.Fatalw("Failed to prepare store directories", zap.Error(err))
	}

	store, err := db.Open(cfg.DatabasePath, logger.ZapLogger.Named("gorm"))
	if err != nil {
		logger.Log.Fatalw("Failed to open database", zap.Error(err))
	}
	defer store.Close()

	hash, err := calculateSHA1(path)
	if err != nil {
		logger.Log.Fatalw("Failed to read catalog file", zap.String("file", path), zap.Error(err))
	}
	log := logger.Log.With(zap.String("file", path), zap.String("sha1", hash))

	raw, err := os.ReadFile(path)
	if err != nil {
		log.Fatalw("Failed to read catalog file", zap.Error(err))
	}
	list, err := games.DecodeGameList(raw)
	if err != nil {
		log.Fatalw("Failed to parse catalog file", zap.Error(err))
	}

	imported, skipped := importGames(store, list, log)
	log.Infow("Import finished", zap.Int("imported", imported), zap.Int("skipped", skipped))
	fmt.Printf("Imported %d games, skipped %d\n", imported, skipped)
}

// importGames adds every valid game of list that the store does not hold yet.
// Exports are newest first, so records are inserted oldest first to keep
// that order in the store.
func importGames(store *db.Store, list []games.Game, log *zap.SugaredLogger) (imported, skipped int) {
	for i := len(list) - 1; i >= 0; i-- {
		g := list[i]
		g.Title = strings.TrimSpace(g.Title)
		if g.Title == "" || g.Genre == "" || g.Genre == games.GenreAll {
			log.Warnw("Skipping game without title or genre", zap.Int64("id", g.ID))
			skipped++
			continue
		}

		exists, err := store.Exists(g.Title, string(g.Genre))
		if err != nil {
			log.Errorw("Failed to look up game", zap.String("title", g.Title), zap.Error(err))
			skipped++
			continue
		}
		if exists {
			skipped++
			continue
		}

		rec := db.FromGame(g)
		if err := store.Create(&rec); err != nil {
			log.Errorw("Failed to save imported game", zap.String("title", g.Title), zap.Error(err))
			skipped++
			continue
		}
		log.Infow("Imported game", zap.String("title", g.Title), zap.String("genre", string(g.Genre)))
		imported++
	}
	return imported, skipped
}

func calculateSHA1(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha1.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}
