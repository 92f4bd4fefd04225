package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"mr-games/games"
	"mr-games/logger"
)

const (
	DefaultAckDelay       = 2 * time.Second
	DefaultNoticeDelay    = 3 * time.Second
	DefaultRequestTimeout = 10 * time.Second
)

var errNoStore = errors.New("no games store configured")

// Store is the external games store the engine reads from and writes to.
type Store interface {
	ListGames(ctx context.Context) ([]games.Game, error)
	CreateGame(ctx context.Context, game games.NewGame) (int64, error)
	DeleteGame(ctx context.Context, id int64) error
}

// Options configures an Engine. Zero durations use the defaults.
type Options struct {
	Store          Store
	AdminPassword  string
	AckDelay       time.Duration
	NoticeDelay    time.Duration
	RequestTimeout time.Duration
	Logger         *zap.SugaredLogger
}

// NoticeKind tells success notices from failures.
type NoticeKind int

const (
	NoticeNone NoticeKind = iota
	NoticeSuccess
	NoticeError
)

// Notice is a transient admin message.
type Notice struct {
	Kind NoticeKind
	Text string
}

// Engine owns the catalog state. It is only changed through Update, one
// message at a time, and every derived view is recomputed from it on demand.
type Engine struct {
	store          Store
	adminPassword  string
	ackDelay       time.Duration
	noticeDelay    time.Duration
	requestTimeout time.Duration
	log            *zap.SugaredLogger

	games     []games.Game
	favorites map[int64]struct{}
	tab       Tab
	genre     games.Genre
	query     string
	loading   bool
	fetchSeq  uint64

	ackID  int64
	acking bool
	ackGen uint64

	admin     AdminSession
	draftGen  uint64
	notice    Notice
	noticeGen uint64
}

// New creates an engine in the loading state. Init issues the first fetch.
func New(opts Options) Engine {
	e := Engine{
		store:          opts.Store,
		adminPassword:  opts.AdminPassword,
		ackDelay:       opts.AckDelay,
		noticeDelay:    opts.NoticeDelay,
		requestTimeout: opts.RequestTimeout,
		log:            opts.Logger,
		favorites:      make(map[int64]struct{}),
		tab:            TabHome,
		genre:          games.GenreAll,
		loading:        true,
		fetchSeq:       1,
		admin:          AdminSession{Draft: DefaultDraft()},
	}
	if e.ackDelay <= 0 {
		e.ackDelay = DefaultAckDelay
	}
	if e.noticeDelay <= 0 {
		e.noticeDelay = DefaultNoticeDelay
	}
	if e.requestTimeout <= 0 {
		e.requestTimeout = DefaultRequestTimeout
	}
	if e.log == nil {
		e.log = logger.Log.Named("catalog")
	}
	return e
}

// Init returns the initial fetch.
func (e Engine) Init() tea.Cmd {
	return e.fetch(e.fetchSeq)
}

// User intents.
type (
	SelectTabMsg      struct{ Tab Tab }
	SelectGenreMsg    struct{ Genre games.Genre }
	SetQueryMsg       struct{ Query string }
	ToggleFavoriteMsg struct{ ID int64 }
	DownloadMsg       struct{ ID int64 }
	RefreshMsg        struct{}
	LoginMsg          struct{ Password string }
	EditDraftMsg      struct{ Draft Draft } // Replaces every field but the cover
	StageCoverMsg     struct{ Path string }
	ClearCoverMsg     struct{}
	SubmitDraftMsg    struct{}
	DeleteGameMsg     struct{ ID int64 }
)

// Results of commands and timers.
type (
	gamesLoadedMsg struct {
		seq   uint64
		games []games.Game
		err   error
	}
	ackExpiredMsg    struct{ gen uint64 }
	noticeExpiredMsg struct{ gen uint64 }
	gameCreatedMsg   struct {
		id  int64
		err error
	}
	gameDeletedMsg struct {
		id  int64
		err error
	}
	coverStagedMsg struct {
		draftGen uint64
		cover    Cover
		err      error
	}
)

// Update applies one message and returns the follow-up command, if any.
func (e Engine) Update(msg tea.Msg) (Engine, tea.Cmd) {
	switch msg := msg.(type) {
	case SelectTabMsg:
		if validTab(msg.Tab) {
			e.tab = msg.Tab
		}
	case SelectGenreMsg:
		if validGenre(msg.Genre) {
			e.genre = msg.Genre
		}
	case SetQueryMsg:
		e.query = msg.Query
	case ToggleFavoriteMsg:
		e.toggleFavorite(msg.ID)
	case DownloadMsg:
		return e.startDownloadAck(msg.ID)
	case ackExpiredMsg:
		if msg.gen == e.ackGen {
			e.acking = false
		}
	case RefreshMsg:
		return e.refresh()
	case gamesLoadedMsg:
		e.handleGamesLoaded(msg)
	case LoginMsg:
		if !e.admin.authenticate(msg.Password, e.adminPassword) {
			e.log.Warnw("Admin login failed", zap.String("reason", e.admin.AuthError))
		}
	case EditDraftMsg:
		e.admin.Draft = e.admin.Draft.withFields(msg.Draft)
	case StageCoverMsg:
		if e.admin.Authenticated {
			return e, stageCover(msg.Path, e.draftGen)
		}
	case coverStagedMsg:
		return e.handleCoverStaged(msg)
	case ClearCoverMsg:
		e.admin.Draft.Cover = nil
	case SubmitDraftMsg:
		return e.submitDraft()
	case gameCreatedMsg:
		return e.handleGameCreated(msg)
	case DeleteGameMsg:
		if e.admin.Authenticated {
			return e, e.deleteGame(msg.ID)
		}
	case gameDeletedMsg:
		return e.handleGameDeleted(msg)
	case noticeExpiredMsg:
		if msg.gen == e.noticeGen {
			e.notice = Notice{}
		}
	}
	return e, nil
}

func (e *Engine) toggleFavorite(id int64) {
	favorites := make(map[int64]struct{}, len(e.favorites)+1)
	for k := range e.favorites {
		favorites[k] = struct{}{}
	}
	if _, ok := favorites[id]; ok {
		delete(favorites, id)
	} else {
		favorites[id] = struct{}{}
	}
	e.favorites = favorites
}

// startDownloadAck shows the acknowledgement for id. Only the timer of the
// latest trigger may clear it.
func (e Engine) startDownloadAck(id int64) (Engine, tea.Cmd) {
	e.ackGen++
	e.ackID = id
	e.acking = true
	gen := e.ackGen
	e.log.Infow("Simulated download", zap.Int64("game_id", id))
	return e, tea.Tick(e.ackDelay, func(time.Time) tea.Msg {
		return ackExpiredMsg{gen: gen}
	})
}

func (e Engine) refresh() (Engine, tea.Cmd) {
	e.fetchSeq++
	e.loading = true
	return e, e.fetch(e.fetchSeq)
}

func (e Engine) fetch(seq uint64) tea.Cmd {
	store := e.store
	timeout := e.requestTimeout
	return func() tea.Msg {
		if store == nil {
			return gamesLoadedMsg{seq: seq, err: errNoStore}
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		list, err := store.ListGames(ctx)
		return gamesLoadedMsg{seq: seq, games: list, err: err}
	}
}

// handleGamesLoaded replaces the catalog wholesale. A failed fetch empties it.
// Results of superseded fetches are dropped.
func (e *Engine) handleGamesLoaded(msg gamesLoadedMsg) {
	if msg.seq != e.fetchSeq {
		e.log.Debugw("Discarding stale fetch result", zap.Uint64("seq", msg.seq), zap.Uint64("current", e.fetchSeq))
		return
	}
	e.loading = false
	if msg.err != nil {
		e.log.Errorw("Failed to fetch games", zap.Error(msg.err))
		e.games = nil
		return
	}
	e.games = msg.games
	e.log.Infow("Catalog loaded", zap.Int("count", len(msg.games)))
}

func stageCover(path string, draftGen uint64) tea.Cmd {
	return func() tea.Msg {
		cover, err := LoadCover(path)
		return coverStagedMsg{draftGen: draftGen, cover: cover, err: err}
	}
}

func (e Engine) handleCoverStaged(msg coverStagedMsg) (Engine, tea.Cmd) {
	if msg.draftGen != e.draftGen {
		return e, nil
	}
	if msg.err != nil {
		e.log.Warnw("Failed to stage cover", zap.Error(msg.err))
		return e.showNotice(NoticeError, fmt.Sprintf("Cover not loaded: %v", msg.err))
	}
	cover := msg.cover
	e.admin.Draft.Cover = &cover
	return e, nil
}

func (e Engine) submitDraft() (Engine, tea.Cmd) {
	if !e.admin.Authenticated || e.admin.Submitting || !e.admin.Draft.CanSubmit() {
		return e, nil
	}
	e.admin.Submitting = true

	req := e.admin.Draft.Package()
	store := e.store
	timeout := e.requestTimeout
	return e, func() tea.Msg {
		if store == nil {
			return gameCreatedMsg{err: errNoStore}
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		id, err := store.CreateGame(ctx, req)
		return gameCreatedMsg{id: id, err: err}
	}
}

// handleGameCreated keeps the draft on failure so it can be resubmitted.
func (e Engine) handleGameCreated(msg gameCreatedMsg) (Engine, tea.Cmd) {
	e.admin.Submitting = false
	if msg.err != nil {
		e.log.Errorw("Failed to create game", zap.Error(msg.err))
		return e.showNotice(NoticeError, fmt.Sprintf("Game was not added: %v", msg.err))
	}

	e.log.Infow("Game created", zap.Int64("game_id", msg.id))
	e.admin.Draft = DefaultDraft()
	e.draftGen++

	e, noticeCmd := e.showNotice(NoticeSuccess, "Game added")
	e, fetchCmd := e.refresh()
	return e, tea.Batch(noticeCmd, fetchCmd)
}

func (e Engine) deleteGame(id int64) tea.Cmd {
	store := e.store
	timeout := e.requestTimeout
	return func() tea.Msg {
		if store == nil {
			return gameDeletedMsg{id: id, err: errNoStore}
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return gameDeletedMsg{id: id, err: store.DeleteGame(ctx, id)}
	}
}

// handleGameDeleted always refetches so the list reflects the store.
func (e Engine) handleGameDeleted(msg gameDeletedMsg) (Engine, tea.Cmd) {
	var noticeCmd tea.Cmd
	if msg.err != nil {
		e.log.Errorw("Failed to delete game", zap.Int64("game_id", msg.id), zap.Error(msg.err))
		e, noticeCmd = e.showNotice(NoticeError, fmt.Sprintf("Game was not deleted: %v", msg.err))
	} else {
		e.log.Infow("Game deleted", zap.Int64("game_id", msg.id))
	}
	e, fetchCmd := e.refresh()
	return e, tea.Batch(noticeCmd, fetchCmd)
}

func (e Engine) showNotice(kind NoticeKind, text string) (Engine, tea.Cmd) {
	e.noticeGen++
	e.notice = Notice{Kind: kind, Text: text}
	gen := e.noticeGen
	return e, tea.Tick(e.noticeDelay, func(time.Time) tea.Msg {
		return noticeExpiredMsg{gen: gen}
	})
}

// Accessors.

func (e Engine) Games() []games.Game {
	return e.games
}

func (e Engine) Tab() Tab {
	return e.tab
}

func (e Engine) Genre() games.Genre {
	return e.genre
}

func (e Engine) Query() string {
	return e.query
}

func (e Engine) Loading() bool {
	return e.loading
}

func (e Engine) Admin() AdminSession {
	return e.admin
}

func (e Engine) Draft() Draft {
	return e.admin.Draft
}

func (e Engine) Notice() Notice {
	return e.notice
}

// AdminEnabled is false when no admin password is configured.
func (e Engine) AdminEnabled() bool {
	return e.adminPassword != ""
}

// CanSubmit reports whether the create control is enabled.
func (e Engine) CanSubmit() bool {
	return e.admin.Authenticated && !e.admin.Submitting && e.admin.Draft.CanSubmit()
}

func (e Engine) IsFavorite(id int64) bool {
	_, ok := e.favorites[id]
	return ok
}

// Acknowledging reports whether id currently shows "download complete".
func (e Engine) Acknowledging(id int64) bool {
	return e.acking && e.ackID == id
}

// AcknowledgedID returns the acknowledged id, if any.
func (e Engine) AcknowledgedID() (int64, bool) {
	return e.ackID, e.acking
}

// FavoriteCount counts favorites still present in the catalog.
func (e Engine) FavoriteCount() int {
	return len(FavoriteGames(e.games, e.favorites))
}

func (e Engine) CatalogView() []games.Game {
	return FilterCatalog(e.games, e.genre, e.query)
}

func (e Engine) NewReleasesView() []games.Game {
	return NewReleases(e.games)
}

func (e Engine) FavoritesView() []games.Game {
	return FavoriteGames(e.games, e.favorites)
}

func (e Engine) SearchView() SearchResult {
	return Search(e.games, e.genre, e.query)
}

func (e Engine) HomeView() HomeView {
	return Home(e.games)
}

// Game returns the single-game view.
func (e Engine) Game(id int64) (games.Game, bool) {
	return FindGame(e.games, id)
}
