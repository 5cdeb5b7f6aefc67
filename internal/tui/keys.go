package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up            key.Binding
	Down          key.Binding
	Left          key.Binding
	Right         key.Binding
	Open          key.Binding
	Favorite      key.Binding
	FavoritesOnly key.Binding
	Search        key.Binding
	Region        key.Binding
	Category      key.Binding
	NextPage      key.Binding
	PrevPage      key.Binding
	Close         key.Binding
	Quit          key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:            key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:          key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:          key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right:         key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		Open:          key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play")),
		Favorite:      key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "favorite")),
		FavoritesOnly: key.NewBinding(key.WithKeys("F"), key.WithHelp("F", "favorites only")),
		Search:        key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Region:        key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "region")),
		Category:      key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "category")),
		NextPage:      key.NewBinding(key.WithKeys("n", "pgdown", "]"), key.WithHelp("n", "next page")),
		PrevPage:      key.NewBinding(key.WithKeys("p", "pgup", "["), key.WithHelp("p", "prev page")),
		Close:         key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("esc", "close")),
		Quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) gridHelp() []key.Binding {
	return []key.Binding{k.Open, k.Favorite, k.FavoritesOnly, k.Search, k.Region, k.Category, k.PrevPage, k.NextPage, k.Quit}
}

func (k keyMap) modalHelp() []key.Binding {
	return []key.Binding{k.Close}
}
