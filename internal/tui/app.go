// Package tui is the interactive terminal directory: a searchable channel grid with
// region, category and favorites filters and a player modal.
package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Taichi-iskw/idcable/internal/directory"
	"github.com/Taichi-iskw/idcable/internal/errors"
	"github.com/Taichi-iskw/idcable/internal/player"
)

// Guide is the part of the application controller the grid needs
type Guide interface {
	Load(ctx context.Context) error
	State() *directory.State
	Grid() directory.Grid
	Dispatch(ctx context.Context, intent directory.Intent) error
	FavoritesCountText() string
}

// Player is the part of the player controller the modal needs
type Player interface {
	Snapshot() player.Snapshot
	Close()
}

type viewMode int

const (
	modeGrid viewMode = iota
	modeSearch
	modeRegionPicker
	modeCategoryPicker
)

// Messages
type catalogLoadedMsg struct {
	err error
}

type playerChangedMsg struct{}

type alertMsg struct {
	text string
}

// pickerItem is a region or category choice
type pickerItem struct {
	value string
	name  string
	desc  string
}

func (i pickerItem) Title() string       { return i.name }
func (i pickerItem) Description() string { return i.desc }
func (i pickerItem) FilterValue() string { return i.name }

// App is the bubbletea model for the directory
type App struct {
	ctx    context.Context
	guide  Guide
	player Player

	keys    keyMap
	help    help.Model
	search  textinput.Model
	picker  list.Model
	spinner spinner.Model

	mode    viewMode
	loading bool
	loadErr error
	err     error
	alert   string
	cursor  int

	width  int
	height int
}

// NewApp creates the model. The Bridge returned by NewBridge must be attached to the
// program running it so player changes and alerts reach Update.
func NewApp(ctx context.Context, g Guide, p Player) *App {
	ti := textinput.New()
	ti.Placeholder = "Search channels..."
	ti.CharLimit = 100
	ti.Width = 40

	s := spinner.New()
	s.Spinner = spinner.Dot

	picker := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	picker.SetShowHelp(false)
	picker.SetFilteringEnabled(true)

	return &App{
		ctx:     ctx,
		guide:   g,
		player:  p,
		keys:    defaultKeyMap(),
		help:    help.New(),
		search:  ti,
		picker:  picker,
		spinner: s,
		mode:    modeGrid,
		loading: true,
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.loadCatalog(),
		a.spinner.Tick,
		tea.EnterAltScreen,
	)
}

func (a *App) loadCatalog() tea.Cmd {
	return func() tea.Msg {
		return catalogLoadedMsg{err: a.guide.Load(a.ctx)}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		a.picker.SetSize(msg.Width-4, msg.Height-4)
		return a, nil

	case catalogLoadedMsg:
		a.loading = false
		a.loadErr = msg.err
		return a, nil

	case playerChangedMsg:
		// The modal renders straight from the controller snapshot
		return a, nil

	case alertMsg:
		a.alert = msg.text
		return a, nil

	case spinner.TickMsg:
		if !a.loading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	// The alert blocks everything until dismissed
	if a.alert != "" {
		a.alert = ""
		return a, nil
	}

	if a.playerVisible() {
		if key.Matches(msg, a.keys.Close) {
			a.player.Close()
		}
		return a, nil
	}

	switch a.mode {
	case modeSearch:
		return a.handleSearchKey(msg)
	case modeRegionPicker, modeCategoryPicker:
		return a.handlePickerKey(msg)
	}

	if key.Matches(msg, a.keys.Quit) {
		return a, tea.Quit
	}

	state := a.guide.State()
	if a.loading || state == nil {
		return a, nil
	}
	a.err = nil

	switch {
	case key.Matches(msg, a.keys.Search):
		a.mode = modeSearch
		return a, a.search.Focus()

	case key.Matches(msg, a.keys.Region):
		a.openRegionPicker(state)

	case key.Matches(msg, a.keys.Category):
		a.openCategoryPicker(state)

	case key.Matches(msg, a.keys.FavoritesOnly):
		state.ToggleFavoritesOnly()
		a.cursor = 0

	case key.Matches(msg, a.keys.NextPage):
		if state.NextPage() {
			a.cursor = 0
		}

	case key.Matches(msg, a.keys.PrevPage):
		if state.PrevPage() {
			a.cursor = 0
		}

	case key.Matches(msg, a.keys.Left):
		a.moveCursor(-1)

	case key.Matches(msg, a.keys.Right):
		a.moveCursor(1)

	case key.Matches(msg, a.keys.Up):
		a.moveCursor(-a.columns())

	case key.Matches(msg, a.keys.Down):
		a.moveCursor(a.columns())

	case key.Matches(msg, a.keys.Open):
		if card, ok := a.selectedCard(); ok {
			a.dispatch(card.Open())
		}

	case key.Matches(msg, a.keys.Favorite):
		if card, ok := a.selectedCard(); ok {
			a.dispatch(card.ToggleFavorite())
			a.clampCursor()
		}
	}

	return a, nil
}

func (a *App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		a.search.Blur()
		a.mode = modeGrid
		return a, nil
	}

	var cmd tea.Cmd
	before := a.search.Value()
	a.search, cmd = a.search.Update(msg)
	if a.search.Value() != before {
		// Every keystroke re-filters
		a.guide.State().SetSearch(a.search.Value())
		a.cursor = 0
	}
	return a, cmd
}

func (a *App) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.picker.FilterState() != list.Filtering {
		switch msg.Type {
		case tea.KeyEsc:
			a.mode = modeGrid
			return a, nil
		case tea.KeyEnter:
			if item, ok := a.picker.SelectedItem().(pickerItem); ok {
				state := a.guide.State()
				if a.mode == modeRegionPicker {
					state.SetRegion(item.value)
				} else {
					state.SetCategory(item.value)
				}
				a.cursor = 0
			}
			a.mode = modeGrid
			return a, nil
		}
	}

	var cmd tea.Cmd
	a.picker, cmd = a.picker.Update(msg)
	return a, cmd
}

func (a *App) openRegionPicker(state *directory.State) {
	items := []list.Item{pickerItem{value: directory.All, name: "All Regions"}}
	selected := 0
	for i, r := range state.Regions() {
		items = append(items, pickerItem{value: r.Code, name: r.Name, desc: strings.Join(r.Countries, ", ")})
		if r.Code == state.Filter().Region {
			selected = i + 1
		}
	}
	a.showPicker(modeRegionPicker, "Region", items, selected)
}

func (a *App) openCategoryPicker(state *directory.State) {
	items := []list.Item{pickerItem{value: directory.All, name: "All Categories"}}
	selected := 0
	for i, c := range state.Categories() {
		items = append(items, pickerItem{value: c.ID, name: c.Name, desc: c.ID})
		if c.ID == state.Filter().Category {
			selected = i + 1
		}
	}
	a.showPicker(modeCategoryPicker, "Category", items, selected)
}

func (a *App) showPicker(mode viewMode, title string, items []list.Item, selected int) {
	a.picker.Title = title
	a.picker.ResetFilter()
	a.picker.SetItems(items)
	a.picker.Select(selected)
	a.mode = mode
}

func (a *App) dispatch(intent directory.Intent) {
	err := a.guide.Dispatch(a.ctx, intent)
	// Unsupported playback is reported through the alert
	if err != nil && !errors.HasCode(err, errors.CodeUnsupported) {
		a.err = err
	}
}

func (a *App) playerVisible() bool {
	return a.player != nil && a.player.Snapshot().Visible
}

func (a *App) columns() int {
	cols := a.width / (cardWidth + 4)
	if cols < 1 {
		return 1
	}
	return cols
}

func (a *App) moveCursor(delta int) {
	next := a.cursor + delta
	if next < 0 || next >= a.guide.State().Page().Len() {
		return
	}
	a.cursor = next
}

func (a *App) clampCursor() {
	n := a.guide.State().Page().Len()
	if a.cursor >= n {
		a.cursor = n - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

func (a *App) selectedCard() (directory.Card, bool) {
	grid := a.guide.Grid()
	if grid.Empty || a.cursor >= len(grid.Cards) {
		return directory.Card{}, false
	}
	return grid.Cards[a.cursor], true
}

func (a *App) View() string {
	if a.width == 0 {
		return "Initializing..."
	}

	if a.loading {
		return lipgloss.NewStyle().
			Width(a.width).
			Height(a.height).
			Align(lipgloss.Center, lipgloss.Center).
			Render(a.spinner.View() + " Loading channels...")
	}

	var body string
	switch {
	case a.alert != "":
		body = a.centered(ModalStyle.BorderForeground(ErrorColor).Render(
			lipgloss.JoinVertical(lipgloss.Center,
				ErrorStyle.Render(a.alert),
				"",
				HelpStyle.Render("press any key"),
			)))
	case a.playerVisible():
		body = a.centered(a.renderPlayer())
	case a.mode == modeRegionPicker || a.mode == modeCategoryPicker:
		body = a.picker.View()
	default:
		body = a.renderDirectory()
	}

	return lipgloss.JoinVertical(lipgloss.Left, body, a.renderStatusBar())
}

func (a *App) centered(s string) string {
	return lipgloss.NewStyle().
		Width(a.width).
		Height(a.height-1).
		Align(lipgloss.Center, lipgloss.Center).
		Render(s)
}

func (a *App) renderDirectory() string {
	grid := a.guide.Grid()
	state := a.guide.State()

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		TitleStyle.Render("📡 idcable"),
		"  ",
		a.search.View(),
	)

	var filters []string
	if state != nil {
		f := state.Filter()
		filters = append(filters,
			"region: "+a.regionName(state, f.Region),
			"category: "+a.categoryName(state, f.Category),
		)
		label := state.FavoritesToggleLabel()
		if f.FavoritesOnly {
			label = ActiveToggleStyle.Render(label)
		}
		filters = append(filters, label)
	}
	filterLine := HelpStyle.Render(strings.Join(filters, " • "))

	var content string
	if grid.Empty {
		style := HelpStyle
		if a.loadErr != nil {
			style = ErrorStyle
		}
		content = lipgloss.NewStyle().
			Width(a.width).
			Height(a.height-6).
			Align(lipgloss.Center, lipgloss.Center).
			Render(style.Render(grid.Message))
	} else {
		content = a.renderCards(grid.Cards)
	}

	lines := []string{header, filterLine, content}
	if a.err != nil {
		lines = append(lines, ErrorStyle.Render(a.err.Error()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (a *App) renderCards(cards []directory.Card) string {
	cols := a.columns()
	var rows []string
	for start := 0; start < len(cards); start += cols {
		end := start + cols
		if end > len(cards) {
			end = len(cards)
		}
		var row []string
		for i := start; i < end; i++ {
			row = append(row, renderCard(cards[i], i == a.cursor))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func renderCard(c directory.Card, selected bool) string {
	style := CardStyle
	if selected {
		style = SelectedCardStyle
	}

	glyph := c.FavoriteGlyph
	if c.Favorite {
		glyph = FavoriteStyle.Render(glyph)
	}
	logo := directory.LogoPlaceholder
	if c.HasLogo {
		logo = "🖼"
	}

	return style.Render(lipgloss.JoinVertical(lipgloss.Left,
		glyph+" "+logo,
		CardNameStyle.Render(truncate(c.Name, cardWidth-2)),
		CardCategoryStyle.Render(truncate(c.Category, cardWidth-2)),
	))
}

func (a *App) renderPlayer() string {
	snap := a.player.Snapshot()
	lines := []string{
		TitleStyle.Render(snap.Title),
		HelpStyle.Render(snap.Meta),
		"",
		fmt.Sprintf("▶ %s", snap.State),
	}
	if snap.Proxied {
		lines = append(lines, HelpStyle.Render("via CORS proxy"))
	}
	lines = append(lines, "", a.help.ShortHelpView(a.keys.modalHelp()))
	return ModalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (a *App) renderStatusBar() string {
	var parts []string
	if a.guide.State() != nil {
		grid := a.guide.Grid()
		parts = append(parts,
			grid.CountText,
			a.guide.FavoritesCountText(),
			navLabel("‹ prev", grid.PrevEnabled)+" "+grid.PageInfo+" "+navLabel("next ›", grid.NextEnabled),
		)
	}

	status := HelpStyle.Render(strings.Join(parts, " • "))
	if a.playerVisible() || a.mode != modeGrid {
		return status
	}
	return lipgloss.JoinVertical(lipgloss.Left, status, a.help.ShortHelpView(a.keys.gridHelp()))
}

func (a *App) regionName(state *directory.State, code string) string {
	for _, r := range state.Regions() {
		if r.Code == code {
			return r.Name
		}
	}
	return "All Regions"
}

func (a *App) categoryName(state *directory.State, id string) string {
	for _, c := range state.Categories() {
		if c.ID == id {
			return c.Name
		}
	}
	return "All Categories"
}

func navLabel(label string, enabled bool) string {
	if enabled {
		return label
	}
	return DisabledStyle.Render(label)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// Bridge forwards player changes and alerts from other goroutines into a running program
type Bridge struct {
	mu      sync.Mutex
	program *tea.Program
}

// NewBridge creates an unattached Bridge; messages sent before Attach are dropped
func NewBridge() *Bridge {
	return &Bridge{}
}

// Attach sets the program that receives messages
func (b *Bridge) Attach(p *tea.Program) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.program = p
}

// PlayerChanged is the controller's OnChange hook
func (b *Bridge) PlayerChanged(player.Snapshot) {
	b.send(playerChangedMsg{})
}

// Alert implements player.Notifier
func (b *Bridge) Alert(text string) {
	b.send(alertMsg{text: text})
}

func (b *Bridge) send(msg tea.Msg) {
	b.mu.Lock()
	p := b.program
	b.mu.Unlock()
	if p == nil {
		return
	}
	// Send blocks until Update runs, which may be the caller
	go p.Send(msg)
}
