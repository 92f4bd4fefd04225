package catalog

import (
	"strings"

	"mr-games/games"
)

// homeStripSize is how many cards each home page strip shows.
const homeStripSize = 4

// Tab selects which derived view is rendered.
type Tab string

const (
	TabHome      Tab = "home"
	TabCatalog   Tab = "catalog"
	TabNew       Tab = "new"
	TabSearch    Tab = "search"
	TabFavorites Tab = "favorites"
	TabAdmin     Tab = "admin"
)

// Tabs lists the navigation bar in display order.
var Tabs = []Tab{TabHome, TabCatalog, TabNew, TabSearch, TabFavorites, TabAdmin}

func validTab(tab Tab) bool {
	for _, t := range Tabs {
		if t == tab {
			return true
		}
	}
	return false
}

func validGenre(genre games.Genre) bool {
	for _, g := range games.Genres {
		if g == genre {
			return true
		}
	}
	return false
}

// CycleTab returns the tab delta steps away from current, wrapping around.
func CycleTab(current Tab, delta int) Tab {
	return cycle(Tabs, current, delta)
}

// CycleGenre returns the filter genre delta steps away from current, wrapping around.
func CycleGenre(current games.Genre, delta int) games.Genre {
	return cycle(games.Genres, current, delta)
}

func cycle[T comparable](values []T, current T, delta int) T {
	idx := 0
	for i, v := range values {
		if v == current {
			idx = i
			break
		}
	}
	n := len(values)
	return values[((idx+delta)%n+n)%n]
}

// matchesQuery reports whether the title or genre contains query, ignoring case.
func matchesQuery(g games.Game, query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(g.Title), q) ||
		strings.Contains(strings.ToLower(string(g.Genre)), q)
}

// FilterCatalog returns the games matching the genre filter and the search
// query, in original order. GenreAll and an empty query match everything.
func FilterCatalog(list []games.Game, genre games.Genre, query string) []games.Game {
	out := make([]games.Game, 0, len(list))
	for _, g := range list {
		if genre != games.GenreAll && g.Genre != genre {
			continue
		}
		if !matchesQuery(g, query) {
			continue
		}
		out = append(out, g)
	}
	return out
}

// NewReleases returns the games flagged as new, in original order.
func NewReleases(list []games.Game) []games.Game {
	out := make([]games.Game, 0, len(list))
	for _, g := range list {
		if g.IsNew {
			out = append(out, g)
		}
	}
	return out
}

// FavoriteGames returns the favorited games in catalog order. Ids that are no
// longer in the catalog are skipped.
func FavoriteGames(list []games.Game, favorites map[int64]struct{}) []games.Game {
	out := make([]games.Game, 0, len(favorites))
	for _, g := range list {
		if _, ok := favorites[g.ID]; ok {
			out = append(out, g)
		}
	}
	return out
}

// SearchResult is the search tab view. Prompt is set when there is no query
// yet, in which case Games is nil.
type SearchResult struct {
	Prompt bool
	Query  string
	Games  []games.Game
}

// Search applies the catalog predicate, but only once a query was typed.
func Search(list []games.Game, genre games.Genre, query string) SearchResult {
	if query == "" {
		return SearchResult{Prompt: true}
	}
	return SearchResult{Query: query, Games: FilterCatalog(list, genre, query)}
}

// HomeView holds the two strips of the landing page.
type HomeView struct {
	Popular []games.Game
	Fresh   []games.Game
}

// Home builds the landing page strips from the head of the catalog.
func Home(list []games.Game) HomeView {
	return HomeView{
		Popular: head(list, homeStripSize),
		Fresh:   head(NewReleases(list), homeStripSize),
	}
}

func head(list []games.Game, n int) []games.Game {
	if len(list) > n {
		return list[:n]
	}
	return list
}

// FindGame looks a record up by id.
func FindGame(list []games.Game, id int64) (games.Game, bool) {
	for _, g := range list {
		if g.ID == id {
			return g, true
		}
	}
	return games.Game{}, false
}
