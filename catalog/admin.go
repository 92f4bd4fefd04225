package catalog

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"mr-games/games"
)

const defaultCoverExt = "jpg"

// Cover is an image staged for upload with the next submission.
type Cover struct {
	Name    string // Base file name
	Base64  string // Encoded payload sent to the store
	Ext     string // Lower-case extension without the dot
	Preview string // file:// reference for display
	Size    int
}

// Draft is the admin's in-progress new record. Numeric fields stay as typed
// text until the draft is packaged.
type Draft struct {
	Title       string
	Genre       games.Genre
	Size        string
	Rating      string
	Year        string
	Tag         games.Tag
	IsNew       bool
	Description string
	Cover       *Cover
}

// DefaultDraft returns an empty form.
func DefaultDraft() Draft {
	return Draft{
		Year:  strconv.Itoa(time.Now().Year()),
		IsNew: true,
	}
}

// CanSubmit reports whether the submit control is enabled.
func (d Draft) CanSubmit() bool {
	return strings.TrimSpace(d.Title) != "" &&
		d.Genre != "" && d.Genre != games.GenreAll
}

// Package converts the draft into a create request. Unparseable ratings
// become 0 and are clamped to 0..10; unparseable years fall back to the
// current year.
func (d Draft) Package() games.NewGame {
	rating, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(d.Rating), ",", "."), 64)
	if err != nil {
		rating = 0
	}
	if rating < 0 {
		rating = 0
	} else if rating > 10 {
		rating = 10
	}

	year, err := strconv.Atoi(strings.TrimSpace(d.Year))
	if err != nil {
		year = time.Now().Year()
	}

	req := games.NewGame{
		Title:       strings.TrimSpace(d.Title),
		Genre:       d.Genre,
		Size:        strings.TrimSpace(d.Size),
		Rating:      rating,
		Year:        year,
		Tag:         d.Tag,
		IsNew:       d.IsNew,
		Description: strings.TrimSpace(d.Description),
	}
	if d.Cover != nil {
		req.CoverBase64 = d.Cover.Base64
		req.CoverExt = d.Cover.Ext
	}
	return req
}

// CycleDraftGenre steps through the genres a record can carry. An unset
// genre starts from either end of the list.
func CycleDraftGenre(current games.Genre, delta int) games.Genre {
	stored := games.Genres[1:]
	if current == "" || current == games.GenreAll {
		if delta < 0 {
			return stored[len(stored)-1]
		}
		return stored[0]
	}
	return cycle(stored, current, delta)
}

// CycleTag steps through the badges, including no badge.
func CycleTag(current games.Tag, delta int) games.Tag {
	return cycle(games.Tags, current, delta)
}

// withFields copies the user-editable fields of other, keeping the staged cover.
func (d Draft) withFields(other Draft) Draft {
	other.Cover = d.Cover
	return other
}

// LoadCover reads an image file fully into memory and encodes it for upload.
func LoadCover(path string) (Cover, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Cover{}, fmt.Errorf("failed to stat cover '%s': %w", path, err)
	}
	if info.IsDir() {
		return Cover{}, fmt.Errorf("cover '%s' is a directory", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Cover{}, fmt.Errorf("failed to read cover '%s': %w", path, err)
	}

	preview := path
	if abs, err := filepath.Abs(path); err == nil {
		preview = abs
	}

	return Cover{
		Name:    filepath.Base(path),
		Base64:  base64.StdEncoding.EncodeToString(data),
		Ext:     coverExt(path),
		Preview: "file://" + filepath.ToSlash(preview),
		Size:    len(data),
	}, nil
}

func coverExt(path string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		return defaultCoverExt
	}
	return ext
}

// AdminSession is the password-gated part of the engine state.
type AdminSession struct {
	Authenticated bool
	AuthError     string
	Draft         Draft
	Submitting    bool
}

// authenticate compares input with the configured secret. An empty secret
// disables the panel. Failed attempts never lock the session out.
func (a *AdminSession) authenticate(input, secret string) bool {
	if secret == "" {
		a.AuthError = "Admin panel is disabled"
		return false
	}
	if subtle.ConstantTimeCompare([]byte(input), []byte(secret)) != 1 {
		a.AuthError = "Wrong password"
		return false
	}
	a.Authenticated = true
	a.AuthError = ""
	return true
}
