package directory

import "github.com/Taichi-iskw/idcable/internal/model"

// Glyphs and fixed texts of the grid
const (
	FavoriteGlyph    = "⭐"
	NotFavoriteGlyph = "☆"
	LogoPlaceholder  = "📺"
	EmptyMessage     = "No channels found matching your criteria."
	LoadErrorMessage = "Error loading data. Please try again later."
)

// Action is what a card interaction asks the controller to do
type Action int

const (
	// ActionOpen opens the player for the card's channel
	ActionOpen Action = iota
	// ActionToggleFavorite flips the favorite state of the card's channel only
	ActionToggleFavorite
)

func (a Action) String() string {
	switch a {
	case ActionOpen:
		return "open"
	case ActionToggleFavorite:
		return "toggle-favorite"
	default:
		return "unknown"
	}
}

// Intent is an action bound to a channel
type Intent struct {
	Action    Action
	ChannelID string
}

// Card is the view-model of one grid item
type Card struct {
	Channel       model.Channel
	Favorite      bool
	FavoriteGlyph string
	Logo          string // logo URL, or LogoPlaceholder
	HasLogo       bool
	Name          string
	Category      string
}

// Open is the intent of activating the card body
func (c Card) Open() Intent {
	return Intent{Action: ActionOpen, ChannelID: c.Channel.ID}
}

// ToggleFavorite is the intent of activating the card's favorite control
func (c Card) ToggleFavorite() Intent {
	return Intent{Action: ActionToggleFavorite, ChannelID: c.Channel.ID}
}

// Grid is the rendered view-model of the current page
type Grid struct {
	Cards          []Card
	Empty          bool
	Message        string
	CountText      string
	PageInfo       string
	PrevEnabled    bool
	NextEnabled    bool
	FavoritesLabel string
}

// NewCard builds the card for ch
func NewCard(ch model.Channel, favorite bool) Card {
	card := Card{
		Channel:       ch,
		Favorite:      favorite,
		FavoriteGlyph: NotFavoriteGlyph,
		Logo:          LogoPlaceholder,
		Name:          ch.Name,
		Category:      ch.PrimaryCategory(),
	}
	if favorite {
		card.FavoriteGlyph = FavoriteGlyph
	}
	if ch.Logo != "" {
		card.Logo = ch.Logo
		card.HasLogo = true
	}
	return card
}

// Render projects the state's current page into a Grid
func Render(s *State) Grid {
	page := s.Page()
	items := s.PageItems()

	grid := Grid{
		CountText:      s.CountText(),
		PageInfo:       page.InfoText(),
		FavoritesLabel: s.FavoritesToggleLabel(),
	}

	if len(items) == 0 {
		grid.Empty = true
		grid.Message = EmptyMessage
		return grid
	}

	grid.Cards = make([]Card, 0, len(items))
	for _, ch := range items {
		grid.Cards = append(grid.Cards, NewCard(ch, s.IsFavorite(ch.ID)))
	}
	grid.PrevEnabled = page.HasPrev
	grid.NextEnabled = page.HasNext
	return grid
}
