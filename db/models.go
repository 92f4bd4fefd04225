package db

import (
	"time"

	"gorm.io/gorm"

	"mr-games/games"
)

// Game is a stored catalog record.
type Game struct {
	gorm.Model
	Title       string `gorm:"not null"`
	Genre       string `gorm:"not null;index"`
	Size        string
	Rating      float64
	Downloads   string `gorm:"default:'0'"`
	Year        int
	CoverURL    string
	Tag         string
	IsNew       bool
	Description string
}

// FromNewGame builds a record from a create request. coverURL is the public
// address of the stored cover, or "".
func FromNewGame(req games.NewGame, coverURL string) Game {
	return Game{
		Title:       req.Title,
		Genre:       string(req.Genre),
		Size:        req.Size,
		Rating:      req.Rating,
		Downloads:   "0",
		Year:        req.Year,
		CoverURL:    coverURL,
		Tag:         string(req.Tag),
		IsNew:       req.IsNew,
		Description: req.Description,
	}
}

// FromGame builds a record from an exported game, keeping its counters and
// cover. The id and creation time are assigned on insert.
func FromGame(g games.Game) Game {
	downloads := g.Downloads
	if downloads == "" {
		downloads = "0"
	}
	return Game{
		Title:       g.Title,
		Genre:       string(g.Genre),
		Size:        g.Size,
		Rating:      g.Rating,
		Downloads:   downloads,
		Year:        g.Year,
		CoverURL:    g.CoverURL,
		Tag:         string(g.Tag),
		IsNew:       g.IsNew,
		Description: g.Description,
	}
}

// ToAPI converts the record to its wire form.
func (g Game) ToAPI() games.Game {
	return games.Game{
		ID:          int64(g.ID),
		Title:       g.Title,
		Genre:       games.Genre(g.Genre),
		Size:        g.Size,
		Rating:      g.Rating,
		Downloads:   g.Downloads,
		Year:        g.Year,
		CoverURL:    g.CoverURL,
		Tag:         games.Tag(g.Tag),
		IsNew:       g.IsNew,
		Description: g.Description,
		CreatedAt:   g.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// DemoGames is the starter catalog. Records get strictly decreasing creation
// times from now so the listing keeps this order.
func DemoGames(now time.Time) []Game {
	demo := []Game{
		{Title: "Shadow Nexus", Genre: "Экшен", Size: "45 ГБ", Rating: 9.2, Downloads: "2.1М", Year: 2025, IsNew: true, Tag: "Хит"},
		{Title: "Void Protocol", Genre: "Шутер", Size: "32 ГБ", Rating: 8.8, Downloads: "1.5М", Year: 2025, IsNew: true, Tag: "Новинка"},
		{Title: "Neon Dynasty", Genre: "RPG", Size: "78 ГБ", Rating: 9.5, Downloads: "3.2М", Year: 2024, IsNew: false, Tag: "Топ"},
		{Title: "Iron Circuit", Genre: "Гонки", Size: "18 ГБ", Rating: 8.1, Downloads: "890К", Year: 2025, IsNew: true, Tag: "Новинка"},
		{Title: "Dark Frontier", Genre: "Стратегия", Size: "12 ГБ", Rating: 8.6, Downloads: "1.1М", Year: 2024, IsNew: false},
		{Title: "Phantom Echo", Genre: "Хоррор", Size: "28 ГБ", Rating: 8.9, Downloads: "670К", Year: 2025, IsNew: true, Tag: "Хит"},
		{Title: "Cyber Legends", Genre: "RPG", Size: "95 ГБ", Rating: 9.8, Downloads: "5.4М", Year: 2024, IsNew: false, Tag: "Топ"},
		{Title: "Pixel Rebels", Genre: "Инди", Size: "4 ГБ", Rating: 8.3, Downloads: "450К", Year: 2025, IsNew: true, Tag: "Инди"},
	}
	for i := range demo {
		demo[i].CreatedAt = now.Add(-time.Duration(i) * time.Second)
	}
	return demo
}
