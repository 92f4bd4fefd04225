package games

import "strings"

// Genre is one of the fixed catalog genres.
type Genre string

const (
	GenreAll      Genre = "Все" // Filter sentinel, never stored on a record
	GenreAction   Genre = "Экшен"
	GenreRPG      Genre = "RPG"
	GenreShooter  Genre = "Шутер"
	GenreStrategy Genre = "Стратегия"
	GenreRacing   Genre = "Гонки"
	GenreHorror   Genre = "Хоррор"
	GenreIndie    Genre = "Инди"
)

// Genres lists the filter bar in display order, starting with GenreAll.
var Genres = []Genre{
	GenreAll,
	GenreAction,
	GenreRPG,
	GenreShooter,
	GenreStrategy,
	GenreRacing,
	GenreHorror,
	GenreIndie,
}

// Tag is the badge shown on a card.
type Tag string

const (
	TagNone  Tag = ""
	TagHit   Tag = "Хит"
	TagNew   Tag = "Новинка"
	TagTop   Tag = "Топ"
	TagIndie Tag = "Инди"
)

// Tags lists every selectable badge, including no badge.
var Tags = []Tag{TagNone, TagHit, TagNew, TagTop, TagIndie}

// Game is a catalog record as served by the games store.
type Game struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Genre       Genre   `json:"genre"`
	Size        string  `json:"size"`
	Rating      float64 `json:"rating"`
	Downloads   string  `json:"downloads"`
	Year        int     `json:"year"`
	CoverURL    string  `json:"cover_url,omitempty"`
	Tag         Tag     `json:"tag"`
	IsNew       bool    `json:"is_new"`
	Description string  `json:"description,omitempty"`
	CreatedAt   string  `json:"created_at,omitempty"`
}

// Cover returns the cover reference, or fallback when the record has none.
func (g Game) Cover(fallback string) string {
	if strings.TrimSpace(g.CoverURL) == "" {
		return fallback
	}
	return g.CoverURL
}

// NewGame is the body of a create request.
type NewGame struct {
	Title       string  `json:"title"`
	Genre       Genre   `json:"genre"`
	Size        string  `json:"size"`
	Rating      float64 `json:"rating"`
	Year        int     `json:"year"`
	Tag         Tag     `json:"tag"`
	IsNew       bool    `json:"is_new"`
	Description string  `json:"description"`
	CoverBase64 string  `json:"cover_base64,omitempty"`
	CoverExt    string  `json:"cover_ext,omitempty"`
}

type listResponse struct {
	Games []Game `json:"games"`
}

type createResponse struct {
	Success bool  `json:"success"`
	ID      int64 `json:"id"`
}
