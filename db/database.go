package db

import (
	"fmt"
	"time"

	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/ncruces/go-sqlite3/gormlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Store is the SQLite-backed games table used by the serve command.
type Store struct {
	db *gorm.DB
}

// Open connects to the SQLite database at dbPath and migrates the schema.
// GORM warnings are written through log.
func Open(dbPath string, log *zap.Logger) (*Store, error) {
	newLogger := gormlogger.New(
		zap.NewStdLog(log),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  false,
		},
	)

	conn, err := gorm.Open(gormlite.Open(dbPath), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := conn.AutoMigrate(&Game{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database schema: %w", err)
	}

	return &Store{db: conn}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// List returns every game, newest first.
func (s *Store) List() ([]Game, error) {
	var list []Game
	if err := s.db.Order("created_at DESC").Order("id DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	return list, nil
}

// Create inserts g and fills in its ID and timestamps.
func (s *Store) Create(g *Game) error {
	if err := s.db.Create(g).Error; err != nil {
		return fmt.Errorf("failed to create game %q: %w", g.Title, err)
	}
	return nil
}

// Delete removes the game with the given id and reports whether it existed.
func (s *Store) Delete(id uint) (bool, error) {
	res := s.db.Unscoped().Delete(&Game{}, id)
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete game %d: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Exists reports whether a game with the same title and genre is stored.
func (s *Store) Exists(title, genre string) (bool, error) {
	var n int64
	if err := s.db.Model(&Game{}).Where("title = ? AND genre = ?", title, genre).Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to look up game %q: %w", title, err)
	}
	return n > 0, nil
}

// Count returns the number of stored games.
func (s *Store) Count() (int64, error) {
	var n int64
	if err := s.db.Model(&Game{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// Seed inserts the demo catalog when the table is empty and reports how many
// rows were added.
func (s *Store) Seed() (int, error) {
	n, err := s.Count()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	seed := DemoGames(time.Now())
	if err := s.db.Create(&seed).Error; err != nil {
		return 0, fmt.Errorf("failed to seed games: %w", err)
	}
	return len(seed), nil
}
