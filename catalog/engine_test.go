package catalog

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"mr-games/games"
)

type fakeStore struct {
	mu        sync.Mutex
	games     []games.Game
	listErr   error
	createErr error
	deleteErr error
	nextID    int64
	lists     int
	created   []games.NewGame
	deleted   []int64
}

func (s *fakeStore) ListGames(ctx context.Context) ([]games.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists++
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]games.Game, len(s.games))
	copy(out, s.games)
	return out, nil
}

func (s *fakeStore) CreateGame(ctx context.Context, game games.NewGame) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, game)
	if s.createErr != nil {
		return 0, s.createErr
	}
	s.nextID++
	s.games = append([]games.Game{{ID: s.nextID, Title: game.Title, Genre: game.Genre, IsNew: game.IsNew}}, s.games...)
	return s.nextID, nil
}

func (s *fakeStore) DeleteGame(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, id)
	if s.deleteErr != nil {
		return s.deleteErr
	}
	for i, g := range s.games {
		if g.ID == id {
			s.games = append(s.games[:i], s.games[i+1:]...)
			break
		}
	}
	return nil
}

func sampleGames() []games.Game {
	return []games.Game{
		{ID: 1, Title: "Shadow Nexus", Genre: games.GenreAction, IsNew: true, Tag: games.TagHit},
		{ID: 2, Title: "Void Protocol", Genre: games.GenreShooter, IsNew: true, Tag: games.TagNew},
		{ID: 3, Title: "Neon Dynasty", Genre: games.GenreRPG, IsNew: false, Tag: games.TagTop},
		{ID: 4, Title: "Iron Circuit", Genre: games.GenreRacing, IsNew: true, Tag: games.TagNew},
		{ID: 5, Title: "Dark Frontier", Genre: games.GenreStrategy, IsNew: false},
		{ID: 6, Title: "Phantom Echo", Genre: games.GenreHorror, IsNew: true, Tag: games.TagHit},
		{ID: 7, Title: "Cyber Legends", Genre: games.GenreRPG, IsNew: false, Tag: games.TagTop},
		{ID: 8, Title: "Pixel Rebels", Genre: games.GenreIndie, IsNew: true, Tag: games.TagIndie},
	}
}

func newTestEngine(store Store, password string) Engine {
	return New(Options{
		Store:         store,
		AdminPassword: password,
		AckDelay:      time.Millisecond,
		NoticeDelay:   time.Millisecond,
		Logger:        zap.NewNop().Sugar(),
	})
}

// run executes cmd and feeds every resulting message back into the engine
// until no command is left.
func run(t *testing.T, e Engine, cmd tea.Cmd) Engine {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 100 {
			t.Fatal("command loop did not settle")
		}
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		msg := next()
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		var follow tea.Cmd
		e, follow = e.Update(msg)
		queue = append(queue, follow)
	}
	return e
}

func send(t *testing.T, e Engine, msg tea.Msg) Engine {
	t.Helper()
	e, cmd := e.Update(msg)
	return run(t, e, cmd)
}

func loadedEngine(t *testing.T, store *fakeStore, password string) Engine {
	t.Helper()
	e := newTestEngine(store, password)
	return run(t, e, e.Init())
}

func ids(list []games.Game) []int64 {
	out := make([]int64, len(list))
	for i, g := range list {
		out[i] = g.ID
	}
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestInitialFetchPopulatesCatalog(t *testing.T) {
	store := &fakeStore{games: sampleGames()}
	e := newTestEngine(store, "")
	if !e.Loading() {
		t.Fatal("engine should start in the loading state")
	}

	e = run(t, e, e.Init())
	if e.Loading() {
		t.Error("loading should be finished after the fetch")
	}
	if len(e.Games()) != 8 {
		t.Errorf("Expected 8 games, got %d", len(e.Games()))
	}
	if e.Tab() != TabHome || e.Genre() != games.GenreAll || e.Query() != "" {
		t.Errorf("Unexpected defaults: tab=%s genre=%s query=%q", e.Tab(), e.Genre(), e.Query())
	}
}

func TestFetchFailureClearsCatalog(t *testing.T) {
	store := &fakeStore{games: sampleGames()}
	e := loadedEngine(t, store, "")

	store.listErr = errors.New("connection refused")
	e = send(t, e, RefreshMsg{})

	if e.Loading() {
		t.Error("loading should be finished after a failed fetch")
	}
	if len(e.Games()) != 0 {
		t.Errorf("Expected empty catalog after failure, got %d games", len(e.Games()))
	}
	if store.lists != 2 {
		t.Errorf("Expected no retry, got %d list calls", store.lists)
	}
}

func TestStaleFetchIsDiscarded(t *testing.T) {
	store := &fakeStore{games: sampleGames()}
	e := newTestEngine(store, "")

	first := e.Init()
	e, second := e.Update(RefreshMsg{})

	// The newer fetch lands first, then the superseded one.
	e, _ = e.Update(second())
	store.games = nil
	e, _ = e.Update(first())

	if len(e.Games()) != 8 {
		t.Errorf("stale fetch overwrote the catalog: %d games", len(e.Games()))
	}
}

func TestCatalogGenreFilterScenario(t *testing.T) {
	store := &fakeStore{games: []games.Game{
		{ID: 1, Title: "Shadow Nexus", Genre: games.GenreAction, IsNew: true},
		{ID: 2, Title: "Void Protocol", Genre: games.GenreShooter, IsNew: true},
	}}
	e := loadedEngine(t, store, "")
	e = send(t, e, SelectGenreMsg{Genre: games.GenreShooter})

	if got := ids(e.CatalogView()); !equalIDs(got, []int64{2}) {
		t.Errorf("CatalogView() = %v, want [2]", got)
	}
}

func TestUnknownGenreAndTabAreIgnored(t *testing.T) {
	e := loadedEngine(t, &fakeStore{games: sampleGames()}, "")
	e = send(t, e, SelectGenreMsg{Genre: "Пазл"})
	e = send(t, e, SelectTabMsg{Tab: "settings"})

	if e.Genre() != games.GenreAll {
		t.Errorf("Genre changed to %s", e.Genre())
	}
	if e.Tab() != TabHome {
		t.Errorf("Tab changed to %s", e.Tab())
	}
}

func TestFavoriteToggleIsAnInvolution(t *testing.T) {
	e := loadedEngine(t, &fakeStore{games: sampleGames()}, "")
	e = send(t, e, ToggleFavoriteMsg{ID: 3})
	e = send(t, e, ToggleFavoriteMsg{ID: 6})

	before := ids(e.FavoritesView())
	e = send(t, e, ToggleFavoriteMsg{ID: 1})
	if !e.IsFavorite(1) {
		t.Fatal("first toggle should add the favorite")
	}
	e = send(t, e, ToggleFavoriteMsg{ID: 1})

	if e.IsFavorite(1) {
		t.Error("second toggle should remove the favorite")
	}
	if after := ids(e.FavoritesView()); !equalIDs(before, after) {
		t.Errorf("favorites changed after double toggle: %v -> %v", before, after)
	}
}

func TestFavoritesFollowCatalogOrder(t *testing.T) {
	e := loadedEngine(t, &fakeStore{games: sampleGames()}, "")
	for _, id := range []int64{7, 2, 5} {
		e = send(t, e, ToggleFavoriteMsg{ID: id})
	}

	if got := ids(e.FavoritesView()); !equalIDs(got, []int64{2, 5, 7}) {
		t.Errorf("FavoritesView() = %v, want [2 5 7]", got)
	}
	if e.FavoriteCount() != 3 {
		t.Errorf("FavoriteCount() = %d, want 3", e.FavoriteCount())
	}
}

func TestStaleFavoritesVanishAfterRefetch(t *testing.T) {
	store := &fakeStore{games: sampleGames()}
	e := loadedEngine(t, store, "")
	e = send(t, e, ToggleFavoriteMsg{ID: 2})
	e = send(t, e, ToggleFavoriteMsg{ID: 4})

	// Deleted server-side by someone else.
	store.games = store.games[2:]
	e = send(t, e, RefreshMsg{})

	fav := e.FavoritesView()
	if got := ids(fav); !equalIDs(got, []int64{4}) {
		t.Errorf("FavoritesView() = %v, want [4]", got)
	}
	for _, g := range fav {
		if _, ok := e.Game(g.ID); !ok {
			t.Errorf("favorite %d is not in the catalog", g.ID)
		}
	}
	if e.FavoriteCount() != 1 {
		t.Errorf("FavoriteCount() = %d, want 1", e.FavoriteCount())
	}
}

func TestDownloadAcknowledgementIsNotClobbered(t *testing.T) {
	e := loadedEngine(t, &fakeStore{games: sampleGames()}, "")

	e, tickA := e.Update(DownloadMsg{ID: 1})
	if !e.Acknowledging(1) {
		t.Fatal("A should be acknowledged")
	}
	e, tickB := e.Update(DownloadMsg{ID: 2})
	if e.Acknowledging(1) || !e.Acknowledging(2) {
		t.Fatal("B should replace A immediately")
	}

	// A's timer fires first and must not clear B.
	e, _ = e.Update(tickA())
	if !e.Acknowledging(2) {
		t.Error("A's timer cleared B's acknowledgement")
	}
	if e.Acknowledging(1) {
		t.Error("A shown as acknowledging after B was triggered")
	}

	e, _ = e.Update(tickB())
	if _, ok := e.AcknowledgedID(); ok {
		t.Error("acknowledgement should be cleared after B's delay")
	}
}

func TestAdminLogin(t *testing.T) {
	e := loadedEngine(t, &fakeStore{games: sampleGames()}, "letmein")

	for i := 0; i < 5; i++ {
		e = send(t, e, LoginMsg{Password: "wrong"})
		if e.Admin().Authenticated {
			t.Fatal("wrong password authenticated the session")
		}
		if e.Admin().AuthError == "" {
			t.Fatal("expected inline auth error")
		}
	}

	e = send(t, e, LoginMsg{Password: "letmein"})
	if !e.Admin().Authenticated {
		t.Error("correct password should authenticate after failed attempts")
	}
	if e.Admin().AuthError != "" {
		t.Errorf("auth error should be cleared, got %q", e.Admin().AuthError)
	}
}

func TestAdminDisabledWithoutPassword(t *testing.T) {
	e := loadedEngine(t, &fakeStore{}, "")
	if e.AdminEnabled() {
		t.Fatal("admin should be disabled without a password")
	}
	e = send(t, e, LoginMsg{Password: ""})
	if e.Admin().Authenticated {
		t.Error("empty secret must never authenticate")
	}
}

func authenticated(t *testing.T, store *fakeStore) Engine {
	t.Helper()
	e := loadedEngine(t, store, "letmein")
	return send(t, e, LoginMsg{Password: "letmein"})
}

func TestSubmitRejectedWithoutTitle(t *testing.T) {
	store := &fakeStore{games: sampleGames()}
	e := authenticated(t, store)

	e = send(t, e, EditDraftMsg{Draft: Draft{Title: "", Genre: games.GenreRPG}})
	if e.CanSubmit() {
		t.Fatal("submit control should be disabled without a title")
	}
	e = send(t, e, SubmitDraftMsg{})

	if len(store.created) != 0 {
		t.Errorf("no request should be sent, got %d", len(store.created))
	}
}

func TestSubmitRequiresAuthentication(t *testing.T) {
	store := &fakeStore{}
	e := loadedEngine(t, store, "letmein")
	e = send(t, e, EditDraftMsg{Draft: Draft{Title: "Sneaky", Genre: games.GenreRPG}})
	e = send(t, e, SubmitDraftMsg{})
	e = send(t, e, DeleteGameMsg{ID: 1})

	if len(store.created) != 0 || len(store.deleted) != 0 {
		t.Error("unauthenticated session reached the store")
	}
}

func TestSubmitCreatesAndRefetches(t *testing.T) {
	store := &fakeStore{games: sampleGames(), nextID: 100}
	e := authenticated(t, store)
	listsBefore := store.lists

	e = send(t, e, EditDraftMsg{Draft: Draft{
		Title:  "  Star Forge ",
		Genre:  games.GenreStrategy,
		Size:   "20 ГБ",
		Rating: "8,7",
		Year:   "2026",
		Tag:    games.TagNew,
		IsNew:  true,
	}})

	e, cmd := e.Update(SubmitDraftMsg{})
	if !e.Admin().Submitting {
		t.Fatal("engine should be submitting")
	}
	e = run(t, e, cmd)

	if len(store.created) != 1 {
		t.Fatalf("Expected 1 create request, got %d", len(store.created))
	}
	req := store.created[0]
	if req.Title != "Star Forge" || req.Rating != 8.7 || req.Year != 2026 || req.Genre != games.GenreStrategy {
		t.Errorf("Unexpected request: %+v", req)
	}
	if store.lists != listsBefore+1 {
		t.Errorf("Expected a refetch after create, got %d list calls", store.lists-listsBefore)
	}
	if g, ok := e.Game(101); !ok || g.Title != "Star Forge" {
		t.Errorf("new record with store-assigned id missing: %+v", g)
	}
	if e.Draft().Title != "" || e.Draft().Genre != "" {
		t.Errorf("draft should be reset, got %+v", e.Draft())
	}
	if e.Admin().Submitting {
		t.Error("submitting flag should be cleared")
	}
}

func TestSuccessNoticeExpires(t *testing.T) {
	store := &fakeStore{}
	e := authenticated(t, store)
	e = send(t, e, EditDraftMsg{Draft: Draft{Title: "X", Genre: games.GenreIndie}})

	e, cmd := e.Update(SubmitDraftMsg{})
	e, _ = e.Update(cmd())
	if e.Notice().Kind != NoticeSuccess {
		t.Fatalf("expected success notice, got %+v", e.Notice())
	}

	e, _ = e.Update(noticeExpiredMsg{gen: e.noticeGen - 1})
	if e.Notice().Kind != NoticeSuccess {
		t.Error("older timer cleared the notice")
	}
	e, _ = e.Update(noticeExpiredMsg{gen: e.noticeGen})
	if e.Notice().Kind != NoticeNone {
		t.Error("notice should clear after its own delay")
	}
}

func TestSubmitFailureKeepsDraft(t *testing.T) {
	store := &fakeStore{createErr: errors.New("status 500")}
	e := authenticated(t, store)
	e = send(t, e, EditDraftMsg{Draft: Draft{Title: "Keep Me", Genre: games.GenreHorror}})

	e, cmd := e.Update(SubmitDraftMsg{})
	e, _ = e.Update(cmd())

	if e.Notice().Kind != NoticeError {
		t.Errorf("failure should be surfaced, got %+v", e.Notice())
	}
	if e.Draft().Title != "Keep Me" {
		t.Errorf("draft should be kept, got %+v", e.Draft())
	}
	if !e.CanSubmit() {
		t.Error("draft should be resubmittable")
	}
}

func TestDeleteRefetchesEvenOnFailure(t *testing.T) {
	tests := []struct {
		name      string
		deleteErr error
		wantIDs   []int64
		wantKind  NoticeKind
	}{
		{"success", nil, []int64{1, 3}, NoticeNone},
		{"failure", errors.New("status 404"), []int64{1, 2, 3}, NoticeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{games: sampleGames()[:3], deleteErr: tt.deleteErr}
			e := authenticated(t, store)
			listsBefore := store.lists

			e, cmd := e.Update(DeleteGameMsg{ID: 2})
			if len(e.Games()) != 3 {
				t.Fatal("delete must not be applied optimistically")
			}
			e, cmd = e.Update(cmd())
			if e.Notice().Kind != tt.wantKind {
				t.Errorf("notice = %+v, want kind %d", e.Notice(), tt.wantKind)
			}
			e = run(t, e, cmd)

			if store.lists != listsBefore+1 {
				t.Errorf("Expected one refetch, got %d", store.lists-listsBefore)
			}
			if got := ids(e.Games()); !equalIDs(got, tt.wantIDs) {
				t.Errorf("Games() = %v, want %v", got, tt.wantIDs)
			}
		})
	}
}

func TestStageCover(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Cover.PNG")
	if err := os.WriteFile(path, []byte("png-bytes"), 0644); err != nil {
		t.Fatalf("Failed to write cover: %v", err)
	}

	store := &fakeStore{}
	e := authenticated(t, store)
	e = send(t, e, StageCoverMsg{Path: path})

	cover := e.Draft().Cover
	if cover == nil {
		t.Fatal("cover should be staged")
	}
	if cover.Ext != "png" {
		t.Errorf("Ext = %q, want png", cover.Ext)
	}
	if cover.Base64 != base64.StdEncoding.EncodeToString([]byte("png-bytes")) {
		t.Errorf("unexpected payload %q", cover.Base64)
	}
	if !strings.HasPrefix(cover.Preview, "file://") {
		t.Errorf("unexpected preview %q", cover.Preview)
	}

	// Editing text fields keeps the staged cover.
	e = send(t, e, EditDraftMsg{Draft: Draft{Title: "With Cover", Genre: games.GenreIndie}})
	if e.Draft().Cover == nil {
		t.Fatal("editing the draft dropped the cover")
	}

	e = send(t, e, SubmitDraftMsg{})
	if len(store.created) != 1 || store.created[0].CoverExt != "png" || store.created[0].CoverBase64 == "" {
		t.Errorf("cover not sent: %+v", store.created)
	}
	if e.Draft().Cover != nil {
		t.Error("staged cover should be cleared after submission")
	}
}

func TestStageCoverAfterResetIsDropped(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "late.jpg")
	if err := os.WriteFile(path, []byte("jpg"), 0644); err != nil {
		t.Fatalf("Failed to write cover: %v", err)
	}

	e := authenticated(t, &fakeStore{})
	e = send(t, e, EditDraftMsg{Draft: Draft{Title: "A", Genre: games.GenreRPG}})
	e, stage := e.Update(StageCoverMsg{Path: path})
	e = send(t, e, SubmitDraftMsg{})

	e, _ = e.Update(stage())
	if e.Draft().Cover != nil {
		t.Error("cover read for a submitted draft leaked into the fresh one")
	}
}

func TestStageCoverMissingFile(t *testing.T) {
	e := authenticated(t, &fakeStore{})
	e, cmd := e.Update(StageCoverMsg{Path: filepath.Join(t.TempDir(), "missing.png")})
	e, _ = e.Update(cmd())

	if e.Draft().Cover != nil {
		t.Error("missing file should not stage a cover")
	}
	if e.Notice().Kind != NoticeError {
		t.Errorf("expected error notice, got %+v", e.Notice())
	}
}

func TestClearCover(t *testing.T) {
	e := authenticated(t, &fakeStore{})
	e.admin.Draft.Cover = &Cover{Ext: "jpg"}
	e = send(t, e, ClearCoverMsg{})
	if e.Draft().Cover != nil {
		t.Error("cover should be cleared")
	}
}
