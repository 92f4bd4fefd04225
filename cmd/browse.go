package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mr-games/catalog"
	"mr-games/games"
	"mr-games/logger"
	"mr-games/ui"
)

// browseCmd represents the browse command
var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the games catalog",
	Long: `Launch an interactive TUI to browse the games catalog, keep favorites
and manage the catalog from the password protected admin tab.`,
	Run: func(_ *cobra.Command, _ []string) {
		runBrowse()
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

var tabLabels = map[catalog.Tab]string{
	catalog.TabHome:      "Главная",
	catalog.TabCatalog:   "Каталог",
	catalog.TabNew:       "Новинки",
	catalog.TabSearch:    "Поиск",
	catalog.TabFavorites: "Избранное",
	catalog.TabAdmin:     "Админ",
}

// Model is the browse TUI. Catalog state lives in the engine; the model only
// keeps cursor and input widget state.
type Model struct {
	engine        catalog.Engine
	spinner       spinner.Model
	spinning      bool
	cursor        int
	search        textinput.Model
	searching     bool
	password      textinput.Model
	form          draftForm
	formOpen      bool
	fallbackCover string
	width         int
	height        int
}

func newModel(engine catalog.Engine, fallbackCover string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	search := textinput.New()
	search.Prompt = "🔍 "
	search.Placeholder = "Название игры или жанр"
	search.CharLimit = 64

	password := textinput.New()
	password.Prompt = "Пароль: "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.Focus()

	form := newDraftForm()
	form.sync(engine.Draft())

	return Model{
		engine:        engine,
		spinner:       s,
		spinning:      engine.Loading(),
		search:        search,
		password:      password,
		form:          form,
		fallbackCover: fallbackCover,
		width:         80,
		height:        24,
	}
}

// Init starts the first fetch and the loading spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.engine.Init(),
		m.spinner.Tick,
	)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case spinner.TickMsg:
		if !m.engine.Loading() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m.dispatch(msg)
}

// dispatch hands msg to the engine and reconciles widget state with the result.
func (m Model) dispatch(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.engine, cmd = m.engine.Update(msg)

	m.form.sync(m.engine.Draft())
	m.clampCursor()

	if m.engine.Loading() && !m.spinning {
		m.spinning = true
		cmd = tea.Batch(cmd, m.spinner.Tick)
	}
	return m, cmd
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	tab := m.engine.Tab()
	switch {
	case tab == catalog.TabSearch && m.searching:
		return m.handleSearchKey(msg)
	case tab == catalog.TabAdmin && !m.engine.Admin().Authenticated:
		return m.handlePasswordKey(msg)
	case tab == catalog.TabAdmin && m.formOpen:
		return m.handleFormKey(msg)
	}
	return m.handleBrowseKey(msg)
}

func (m Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q":
		return m, tea.Quit
	case "1", "2", "3", "4", "5", "6":
		return m.selectTab(catalog.Tabs[int(key[0]-'1')])
	case "tab":
		return m.selectTab(catalog.CycleTab(m.engine.Tab(), 1))
	case "shift+tab":
		return m.selectTab(catalog.CycleTab(m.engine.Tab(), -1))
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.visibleGames())-1 {
			m.cursor++
		}
	case "left", "h":
		return m.dispatch(catalog.SelectGenreMsg{Genre: catalog.CycleGenre(m.engine.Genre(), -1)})
	case "right", "l":
		return m.dispatch(catalog.SelectGenreMsg{Genre: catalog.CycleGenre(m.engine.Genre(), 1)})
	case " ":
		if g, ok := m.selectedGame(); ok && m.engine.Tab() != catalog.TabAdmin {
			return m.dispatch(catalog.ToggleFavoriteMsg{ID: g.ID})
		}
	case "enter", "d":
		if g, ok := m.selectedGame(); ok && m.engine.Tab() != catalog.TabAdmin {
			return m.dispatch(catalog.DownloadMsg{ID: g.ID})
		}
	case "/":
		m, _ = m.selectTab(catalog.TabSearch)
		m.searching = true
		cmd := m.search.Focus()
		return m, cmd
	case "r":
		return m.dispatch(catalog.RefreshMsg{})
	case "x":
		if g, ok := m.selectedGame(); ok && m.engine.Tab() == catalog.TabAdmin {
			return m.dispatch(catalog.DeleteGameMsg{ID: g.ID})
		}
	case "n":
		if m.engine.Tab() == catalog.TabAdmin {
			m.formOpen = true
			cmd := m.form.focus(0)
			return m, cmd
		}
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter", "down":
		m.searching = false
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m, engineCmd := m.dispatch(catalog.SetQueryMsg{Query: m.search.Value()})
	return m, tea.Batch(cmd, engineCmd)
}

func (m Model) handlePasswordKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab":
		return m.selectTab(catalog.CycleTab(catalog.TabAdmin, 1))
	case "shift+tab":
		return m.selectTab(catalog.CycleTab(catalog.TabAdmin, -1))
	case "enter":
		input := m.password.Value()
		m.password.Reset()
		return m.dispatch(catalog.LoginMsg{Password: input})
	}
	var cmd tea.Cmd
	m.password, cmd = m.password.Update(msg)
	return m, cmd
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	draft := m.engine.Draft()
	switch msg.String() {
	case "esc":
		m.formOpen = false
		m.form.blur()
		return m, nil
	case "tab", "down":
		cmd := m.form.focus(m.form.focused + 1)
		return m, cmd
	case "shift+tab", "up":
		cmd := m.form.focus(m.form.focused - 1)
		return m, cmd
	case "ctrl+g":
		draft.Genre = catalog.CycleDraftGenre(draft.Genre, 1)
		return m.dispatch(catalog.EditDraftMsg{Draft: draft})
	case "ctrl+t":
		draft.Tag = catalog.CycleTag(draft.Tag, 1)
		return m.dispatch(catalog.EditDraftMsg{Draft: draft})
	case "ctrl+n":
		draft.IsNew = !draft.IsNew
		return m.dispatch(catalog.EditDraftMsg{Draft: draft})
	case "ctrl+o":
		path := strings.TrimSpace(m.form.coverPath())
		if path == "" {
			return m, nil
		}
		return m.dispatch(catalog.StageCoverMsg{Path: path})
	case "ctrl+x":
		return m.dispatch(catalog.ClearCoverMsg{})
	case "ctrl+s":
		return m.dispatch(catalog.SubmitDraftMsg{})
	}

	cmd := m.form.update(msg)
	m, engineCmd := m.dispatch(catalog.EditDraftMsg{Draft: m.form.apply(draft)})
	return m, tea.Batch(cmd, engineCmd)
}

func (m Model) selectTab(tab catalog.Tab) (Model, tea.Cmd) {
	if tab != m.engine.Tab() {
		m.cursor = 0
	}
	if tab != catalog.TabSearch {
		m.searching = false
		m.search.Blur()
	}
	return m.dispatch(catalog.SelectTabMsg{Tab: tab})
}

// visibleGames is the list the cursor moves over on the current tab.
func (m Model) visibleGames() []games.Game {
	switch m.engine.Tab() {
	case catalog.TabHome:
		home := m.engine.HomeView()
		return append(append([]games.Game{}, home.Popular...), home.Fresh...)
	case catalog.TabCatalog:
		return m.engine.CatalogView()
	case catalog.TabNew:
		return m.engine.NewReleasesView()
	case catalog.TabSearch:
		return m.engine.SearchView().Games
	case catalog.TabFavorites:
		return m.engine.FavoritesView()
	case catalog.TabAdmin:
		if m.engine.Admin().Authenticated {
			return m.engine.Games()
		}
	}
	return nil
}

func (m Model) selectedGame() (games.Game, bool) {
	list := m.visibleGames()
	if m.cursor < 0 || m.cursor >= len(list) {
		return games.Game{}, false
	}
	return list[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.visibleGames())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// View renders the UI
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	if m.engine.Loading() && m.engine.Tab() != catalog.TabAdmin {
		b.WriteString(m.renderLoadingScreen())
	} else {
		switch m.engine.Tab() {
		case catalog.TabHome:
			b.WriteString(m.renderHome())
		case catalog.TabCatalog:
			b.WriteString(renderGenreBar(m.engine.Genre()) + "\n\n")
			b.WriteString(m.renderGameList(m.engine.CatalogView(), 0, "Игры не найдены"))
		case catalog.TabNew:
			b.WriteString(m.renderGameList(m.engine.NewReleasesView(), 0, "Новинок пока нет"))
		case catalog.TabSearch:
			b.WriteString(m.renderSearch())
		case catalog.TabFavorites:
			b.WriteString(m.renderGameList(m.engine.FavoritesView(), 0,
				"В избранном пока пусто. Нажмите пробел на карточке, чтобы добавить игру."))
		case catalog.TabAdmin:
			b.WriteString(m.renderAdmin())
		}
	}

	if g, ok := m.selectedGame(); ok && m.engine.Tab() != catalog.TabAdmin {
		b.WriteString("\n" + ui.Detail(g, m.fallbackCover))
	}

	b.WriteString("\n" + m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	logo := ui.AccentStyle.Render("MR") + ui.CyanStyle.Render(" GAMES")

	tabs := make([]string, 0, len(catalog.Tabs))
	for i, tab := range catalog.Tabs {
		label := fmt.Sprintf("%d %s", i+1, tabLabels[tab])
		if tab == catalog.TabFavorites && m.engine.FavoriteCount() > 0 {
			label += fmt.Sprintf(" (%d)", m.engine.FavoriteCount())
		}
		if tab == m.engine.Tab() {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	return logo + "  " + strings.Join(tabs, " ")
}

var (
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#0f0f1a")).
			Background(lipgloss.Color("#a855f7")).
			Padding(0, 1)
	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Padding(0, 1)
	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			Italic(true)
)

func (m Model) renderLoadingScreen() string {
	loadingStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)
	return loadingStyle.Render(m.spinner.View()+" Загрузка игр...") + "\n"
}

func renderGenreBar(active games.Genre) string {
	parts := make([]string, 0, len(games.Genres))
	for _, genre := range games.Genres {
		if genre == active {
			parts = append(parts, activeTabStyle.Render(string(genre)))
		} else {
			parts = append(parts, ui.MutedStyle.Render(string(genre)))
		}
	}
	return strings.Join(parts, " ")
}

func (m Model) renderHome() string {
	home := m.engine.HomeView()
	var b strings.Builder
	b.WriteString(ui.AccentStyle.Render("🔥 Популярное") + "\n")
	b.WriteString(m.renderGameList(home.Popular, 0, "Каталог пуст"))
	b.WriteString("\n" + ui.CyanStyle.Render("✨ Новинки") + "\n")
	b.WriteString(m.renderGameList(home.Fresh, len(home.Popular), "Новинок пока нет"))
	return b.String()
}

func (m Model) renderSearch() string {
	var b strings.Builder
	b.WriteString(renderGenreBar(m.engine.Genre()) + "\n\n")
	b.WriteString(m.search.View() + "\n\n")

	res := m.engine.SearchView()
	if res.Prompt {
		b.WriteString(ui.MutedStyle.Render("Введите название игры или жанр. Нажмите / чтобы начать.") + "\n")
		return b.String()
	}
	b.WriteString(ui.MutedStyle.Render(fmt.Sprintf("Найдено: %d", len(res.Games))) + "\n")
	b.WriteString(m.renderGameList(res.Games, 0, "Ничего не найдено"))
	return b.String()
}

// renderGameList draws list with browse cards. offset is the cursor index of
// the first row, for tabs that show several lists.
func (m Model) renderGameList(list []games.Game, offset int, empty string) string {
	if len(list) == 0 {
		return ui.MutedStyle.Render(empty) + "\n"
	}
	return ui.RenderList(list, ui.BrowseCard, func(i int, g games.Game) ui.CardState {
		return ui.CardState{
			Selected:      offset+i == m.cursor,
			Favorite:      m.engine.IsFavorite(g.ID),
			Acknowledging: m.engine.Acknowledging(g.ID),
			FallbackCover: m.fallbackCover,
		}
	})
}

func (m Model) renderAdmin() string {
	admin := m.engine.Admin()
	var b strings.Builder

	if !admin.Authenticated {
		b.WriteString(ui.AccentStyle.Render("🔒 Вход в админ-панель") + "\n\n")
		if !m.engine.AdminEnabled() {
			b.WriteString(ui.MutedStyle.Render("Админ-панель отключена: ADMIN_PASSWORD не задан.") + "\n")
		}
		b.WriteString(m.password.View() + "\n")
		if admin.AuthError != "" {
			b.WriteString(ui.ErrorStyle.Render(admin.AuthError) + "\n")
		}
		return b.String()
	}

	b.WriteString(m.renderNotice())

	if m.formOpen {
		b.WriteString(m.form.view(m.engine.Draft(), m.engine.CanSubmit(), admin.Submitting))
		return b.String()
	}

	b.WriteString(ui.AccentStyle.Render(fmt.Sprintf("Игры в каталоге: %d", len(m.engine.Games()))) + "\n\n")
	if m.engine.Loading() {
		b.WriteString(m.spinner.View() + " Обновление...\n")
	}
	list := m.engine.Games()
	if len(list) == 0 {
		b.WriteString(ui.MutedStyle.Render("Каталог пуст. Нажмите n, чтобы добавить игру.") + "\n")
		return b.String()
	}
	b.WriteString(ui.RenderList(list, ui.AdminCard, func(i int, g games.Game) ui.CardState {
		return ui.CardState{Selected: i == m.cursor, FallbackCover: m.fallbackCover}
	}))
	return b.String()
}

func (m Model) renderNotice() string {
	notice := m.engine.Notice()
	switch notice.Kind {
	case catalog.NoticeSuccess:
		return ui.OKStyle.Render("✓ "+notice.Text) + "\n\n"
	case catalog.NoticeError:
		return ui.ErrorStyle.Render("✗ "+notice.Text) + "\n\n"
	}
	return ""
}

func (m Model) renderFooter() string {
	var help string
	switch {
	case m.engine.Tab() == catalog.TabSearch && m.searching:
		help = "type to search  enter/esc: done  ctrl+c: quit"
	case m.engine.Tab() == catalog.TabAdmin && !m.engine.Admin().Authenticated:
		help = "enter: log in  tab: next tab  ctrl+c: quit"
	case m.engine.Tab() == catalog.TabAdmin && m.formOpen:
		help = "tab: next field  ctrl+g: genre  ctrl+t: tag  ctrl+n: new  ctrl+o: load cover  ctrl+x: drop cover  ctrl+s: save  esc: close"
	case m.engine.Tab() == catalog.TabAdmin:
		help = "↑/k ↓/j: move  n: new game  x: delete  r: reload  1-6: tabs  q: quit"
	default:
		help = "1-6/tab: tabs  ↑/k ↓/j: move  ←/→: genre  space: favorite  enter/d: download  /: search  r: reload  q: quit"
	}
	return footerStyle.Render(help)
}

func runBrowse() {
	cfg := bootstrap(".")

	client, err := games.NewClient(cfg)
	if err != nil {
		logger.Log.Fatalw("Failed to create games client", zap.Error(err))
	}

	engine := catalog.New(catalog.Options{
		Store:          client,
		AdminPassword:  cfg.AdminPassword,
		RequestTimeout: cfg.RequestTimeout(),
		Logger:         logger.Log.Named("catalog"),
	})
	logger.Log.Infow("Starting catalog browser", zap.String("api", cfg.GamesAPIURL))

	p := tea.NewProgram(newModel(engine, cfg.DefaultCoverURL), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Log.Fatalw("Failed to run browser", zap.Error(err))
	}
}
