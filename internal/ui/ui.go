package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/songcart/internal/models"
	"github.com/desertthunder/songcart/internal/partition"
	"github.com/desertthunder/songcart/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	GenreListView ViewState = iota
	CatalogView
	CartView
	HistoryView
	ConfirmView
	CheckoutView
	ResultView
)

// viewLimit caps how many songs a list fetches.
const viewLimit = 100

// Engine is the catalog and cart API the TUI drives. [tasks.SongEngine] implements it.
type Engine interface {
	Keyer() *partition.Keyer
	Genres(ctx context.Context) ([]string, error)
	List(ctx context.Context, genre string, limit int) ([]*models.Song, error)
	AddToCart(ctx context.Context, userID string, uids []string) (*tasks.CartResult, error)
	RemoveFromCart(ctx context.Context, userID string, uids []string) (int, error)
	Cart(ctx context.Context, userID string, limit int) ([]*models.Song, error)
	History(ctx context.Context, userID string, limit int) ([]*models.Song, error)
	Checkout(ctx context.Context, userID string, progress chan<- tasks.ProgressUpdate) (*tasks.CheckoutResult, error)
}

var _ Engine = (*tasks.SongEngine)(nil)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	engine       Engine
	userID       string
	width        int
	height       int
	genreList    list.Model
	songList     list.Model
	selected     map[string]bool
	status       string
	progressChan chan tasks.ProgressUpdate
	done         chan checkoutComplete
	progress     tasks.ProgressUpdate
	result       *tasks.CheckoutResult
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model for userID. An empty userID browses the catalog without a cart.
func NewModel(ctx context.Context, engine Engine, userID string) *Model {
	return &Model{
		ctx:       ctx,
		view:      GenreListView,
		engine:    engine,
		userID:    userID,
		genreList: newList("Genres"),
		songList:  newList(""),
		selected:  map[string]bool{},
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

func newList(title string) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowHelp(false)
	return l
}

// Init initializes the TUI by fetching the catalog genres.
func (m *Model) Init() tea.Cmd {
	return m.fetchGenres()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.genreList.SetSize(msg.Width-4, msg.Height-8)
		m.songList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.filtering() {
			return m.updateLists(msg)
		}
		switch m.view {
		case GenreListView:
			return m.handleGenreKeys(msg)
		case CatalogView:
			return m.handleCatalogKeys(msg)
		case CartView:
			return m.handleCartKeys(msg)
		case HistoryView:
			return m.handleHistoryKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}
		return m, nil

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgGenresFetched:
		data := msg.data.(genresFetched)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.err = nil
		cmd := m.genreList.SetItems(genreItems(data.genres, m.engine.Keyer().DefaultGenre()))
		m.view = GenreListView
		return m, cmd

	case MsgSongsFetched:
		data := msg.data.(songsFetched)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.err = nil
		clear(m.selected)
		m.songList.Title = data.title
		m.songList.ResetFilter()
		cmd := m.songList.SetItems(songItems(data.songs))
		m.songList.Select(0)
		m.view = data.view
		return m, cmd

	case MsgCartChanged:
		data := msg.data.(cartChanged)
		if data.err != nil {
			m.status = styles.err.Render(data.err.Error())
			return m, nil
		}
		m.status = styles.ok.Render(data.status)
		if m.view == CartView {
			return m, m.fetchCart()
		}
		m.clearSelection()
		return m, nil

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgCheckoutComplete:
		data := msg.data.(checkoutComplete)
		m.result = data.result
		m.err = data.err
		m.view = ResultView
		m.progressChan, m.done = nil, nil
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case GenreListView:
		return m.renderList(m.genreList, m.keys.enter, m.keys.cart, m.keys.history, m.keys.quit)
	case CatalogView:
		return m.renderList(m.songList, m.keys.toggle, m.keys.add, m.keys.cart, m.keys.back, m.keys.quit)
	case CartView:
		return m.renderList(m.songList, m.keys.toggle, m.keys.remove, m.keys.checkout, m.keys.history, m.keys.back, m.keys.quit)
	case HistoryView:
		return m.renderList(m.songList, m.keys.cart, m.keys.back, m.keys.quit)
	case ConfirmView:
		return m.renderConfirm()
	case CheckoutView:
		return m.renderCheckout()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) filtering() bool {
	switch m.view {
	case GenreListView:
		return m.genreList.FilterState() == list.Filtering
	case CatalogView, CartView, HistoryView:
		return m.songList.FilterState() == list.Filtering
	}
	return false
}

func (m *Model) handleGenreKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if g, ok := m.genreList.SelectedItem().(genreItem); ok {
			m.status = ""
			return m, m.fetchCatalog(g.name)
		}
		return m, nil
	case key.Matches(msg, m.keys.cart):
		return m, m.fetchCart()
	case key.Matches(msg, m.keys.history):
		return m, m.fetchHistory()
	}

	var cmd tea.Cmd
	m.genreList, cmd = m.genreList.Update(msg)
	return m, cmd
}

func (m *Model) handleCatalogKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view, m.status = GenreListView, ""
		return m, nil
	case key.Matches(msg, m.keys.toggle):
		return m, m.toggle()
	case key.Matches(msg, m.keys.add):
		return m, m.addSelected()
	case key.Matches(msg, m.keys.cart):
		return m, m.fetchCart()
	case key.Matches(msg, m.keys.history):
		return m, m.fetchHistory()
	}

	var cmd tea.Cmd
	m.songList, cmd = m.songList.Update(msg)
	return m, cmd
}

func (m *Model) handleCartKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view, m.status = GenreListView, ""
		return m, nil
	case key.Matches(msg, m.keys.toggle):
		return m, m.toggle()
	case key.Matches(msg, m.keys.remove):
		return m, m.removeSelected()
	case key.Matches(msg, m.keys.checkout):
		if len(m.songList.Items()) > 0 {
			m.view = ConfirmView
		}
		return m, nil
	case key.Matches(msg, m.keys.history):
		return m, m.fetchHistory()
	}

	var cmd tea.Cmd
	m.songList, cmd = m.songList.Update(msg)
	return m, cmd
}

func (m *Model) handleHistoryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view, m.status = GenreListView, ""
		return m, nil
	case key.Matches(msg, m.keys.cart):
		return m, m.fetchCart()
	}

	var cmd tea.Cmd
	m.songList, cmd = m.songList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit), key.Matches(msg, m.keys.no):
		m.view = CartView
		return m, nil
	case key.Matches(msg, m.keys.yes):
		m.view = CheckoutView
		m.progress = tasks.ProgressUpdate{}
		return m, m.startCheckout()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.history):
		m.result, m.err = nil, nil
		return m, m.fetchHistory()
	case key.Matches(msg, m.keys.restart):
		m.result, m.err, m.status = nil, nil, ""
		return m, m.fetchGenres()
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case GenreListView:
		m.genreList, cmd = m.genreList.Update(msg)
	case CatalogView, CartView, HistoryView:
		m.songList, cmd = m.songList.Update(msg)
	}
	return m, cmd
}

// toggle flips the selection of the highlighted song.
func (m *Model) toggle() tea.Cmd {
	item, ok := m.songList.SelectedItem().(songItem)
	if !ok {
		return nil
	}

	uid := item.song.UID
	if m.selected[uid] {
		delete(m.selected, uid)
	} else {
		m.selected[uid] = true
	}
	item.selected = m.selected[uid]
	return m.songList.SetItem(m.songList.GlobalIndex(), item)
}

func (m *Model) clearSelection() {
	clear(m.selected)
	for i, it := range m.songList.Items() {
		if item, ok := it.(songItem); ok && item.selected {
			item.selected = false
			m.songList.SetItem(i, item)
		}
	}
}

// selectedUIDs returns the checked songs, or the highlighted one when nothing is checked.
func (m *Model) selectedUIDs() []string {
	var uids []string
	for _, it := range m.songList.Items() {
		if item, ok := it.(songItem); ok && m.selected[item.song.UID] {
			uids = append(uids, item.song.UID)
		}
	}
	if len(uids) == 0 {
		if item, ok := m.songList.SelectedItem().(songItem); ok {
			uids = append(uids, item.song.UID)
		}
	}
	return uids
}

func (m *Model) fetchGenres() tea.Cmd {
	return func() tea.Msg {
		genres, err := m.engine.Genres(m.ctx)
		return genresFetchedMsg(genres, err)
	}
}

func (m *Model) fetchCatalog(genre string) tea.Cmd {
	title := genreItem{name: genre}.Title()
	return func() tea.Msg {
		songs, err := m.engine.List(m.ctx, genre, viewLimit)
		return songsFetchedMsg(CatalogView, title, songs, err)
	}
}

func (m *Model) fetchCart() tea.Cmd {
	return func() tea.Msg {
		songs, err := m.engine.Cart(m.ctx, m.userID, viewLimit)
		return songsFetchedMsg(CartView, "Cart", songs, err)
	}
}

func (m *Model) fetchHistory() tea.Cmd {
	return func() tea.Msg {
		songs, err := m.engine.History(m.ctx, m.userID, viewLimit)
		return songsFetchedMsg(HistoryView, "History", songs, err)
	}
}

func (m *Model) addSelected() tea.Cmd {
	if m.userID == "" {
		m.status = styles.warn.Render("Sign in with --user to use a cart")
		return nil
	}

	uids := m.selectedUIDs()
	return func() tea.Msg {
		result, err := m.engine.AddToCart(m.ctx, m.userID, uids)
		if err != nil {
			return cartChangedMsg("", err)
		}
		status := fmt.Sprintf("Added %d songs to cart", len(result.Added))
		if len(result.Skipped) > 0 {
			status += fmt.Sprintf(", skipped %d", len(result.Skipped))
		}
		return cartChangedMsg(status, nil)
	}
}

func (m *Model) removeSelected() tea.Cmd {
	uids := m.selectedUIDs()
	return func() tea.Msg {
		removed, err := m.engine.RemoveFromCart(m.ctx, m.userID, uids)
		return cartChangedMsg(fmt.Sprintf("Removed %d songs from cart", removed), err)
	}
}

func (m *Model) startCheckout() tea.Cmd {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan checkoutComplete, 1)
	m.progressChan, m.done = progress, done

	go func() {
		result, err := m.engine.Checkout(m.ctx, m.userID, progress)
		done <- checkoutComplete{result: result, err: err}
		close(progress)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.done
	return func() tea.Msg {
		if progress == nil {
			return checkoutCompleteMsg(nil, nil)
		}

		update, ok := <-progress
		if !ok {
			out := <-done
			return checkoutCompleteMsg(out.result, out.err)
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderList(l list.Model, bindings ...key.Binding) string {
	var b strings.Builder
	b.WriteString(l.View())
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n")
	}
	b.WriteString(m.renderUser())
	b.WriteString("\n\n")
	b.WriteString(m.help.ShortHelpView(bindings))
	return b.String()
}

func (m *Model) renderUser() string {
	if m.userID == "" {
		return styles.help.Render("browsing anonymously")
	}
	return styles.help.Render("signed in as " + m.userID)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Check out %d songs?", len(m.songList.Items())))
	info := fmt.Sprintf("\nUser: %s\nSongs already in your history are dropped from the cart.\n", m.userID)
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no})
	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderCheckout() string {
	title := styles.title.Render("Checking Out")

	var phase string
	switch m.progress.Phase {
	case tasks.LoadCart:
		phase = "Loading cart..."
	case tasks.MoveSongs:
		phase = fmt.Sprintf("Moving songs (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.CheckoutDone:
		phase = "Finishing..."
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.history, m.keys.restart, m.keys.quit})

	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Checkout failed: %v\n\nYour cart is unchanged.", m.err)) + "\n\n" + helpView
	}
	if m.result == nil {
		return styles.err.Render("No result available") + "\n\n" + helpView
	}

	title := styles.ok.Render("✓ Checkout Complete!")
	info := fmt.Sprintf("\nMoved to history: %d", len(m.result.Moved))
	for _, song := range m.result.Moved {
		info += fmt.Sprintf("\n  • %s - %s", song.ArtistName, song.Title)
	}

	var dup string
	if m.result.Duplicate > 0 {
		dup = "\n\n" + styles.warn.Render(fmt.Sprintf("%d songs were already purchased", m.result.Duplicate))
	}

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, dup, helpView)
}
