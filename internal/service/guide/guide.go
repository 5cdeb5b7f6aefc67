// Package guide is the application controller: it owns the loaded catalog, the browsing
// state and the favorites, and turns grid intents into favorite toggles or playback.
package guide

import (
	"context"
	"fmt"

	"github.com/Taichi-iskw/idcable/internal/catalog"
	"github.com/Taichi-iskw/idcable/internal/directory"
	"github.com/Taichi-iskw/idcable/internal/errors"
	"github.com/Taichi-iskw/idcable/internal/logger"
	"github.com/Taichi-iskw/idcable/internal/model"
)

// CatalogLoader loads the catalog
type CatalogLoader interface {
	Load(ctx context.Context) (*catalog.Catalog, error)
}

// FavoritesStore is the persisted favorites set
type FavoritesStore interface {
	Load(ctx context.Context) error
	Toggle(ctx context.Context, id string) (bool, error)
	Has(id string) bool
	IDs() []string
	CountText() string
}

// Player opens a channel for playback
type Player interface {
	Open(ch model.Channel) error
}

// Listing is one page of a filtered channel list
type Listing struct {
	Channels []model.Channel
	Page     directory.Page
	Total    int
}

// Service is the interface for directory operations
type Service interface {
	Load(ctx context.Context) error
	LoadFavorites(ctx context.Context) error
	List(filter directory.Filter, page int) (*Listing, error)
	Channel(id string) (*model.Channel, error)
	Regions() ([]model.Region, error)
	Categories() ([]model.Category, error)
	ToggleFavorite(ctx context.Context, id string) (bool, error)
	Favorites() ([]model.Channel, []string, error)
	FavoritesCountText() string
	Play(id string) error
}

// Guide implements Service and drives the interactive grid
type Guide struct {
	loader    CatalogLoader
	favorites FavoritesStore
	player    Player
	pageSize  int
	log       logger.Logger

	catalog *catalog.Catalog
	index   *catalog.Index
	state   *directory.State
}

// NewGuide creates a Guide. player may be nil when playback is not needed.
func NewGuide(loader CatalogLoader, favorites FavoritesStore, player Player, pageSize int, log logger.Logger) *Guide {
	if log == nil {
		log = logger.Nop()
	}
	return &Guide{
		loader:    loader,
		favorites: favorites,
		player:    player,
		pageSize:  pageSize,
		log:       log,
	}
}

// Load reads the favorites and the catalog; the catalog is all-or-nothing
func (g *Guide) Load(ctx context.Context) error {
	if err := g.LoadFavorites(ctx); err != nil {
		return err
	}

	c, err := g.loader.Load(ctx)
	if err != nil {
		return err
	}
	index, err := catalog.NewIndex(c)
	if err != nil {
		return err
	}

	g.catalog = c
	g.index = index
	g.state = directory.NewState(c.Channels, c.Regions, c.Categories, g.pageSize, g.favorites.Has)
	return nil
}

// LoadFavorites reads only the favorites, for operations that do not need the catalog
func (g *Guide) LoadFavorites(ctx context.Context) error {
	if err := g.favorites.Load(ctx); err != nil {
		return fmt.Errorf("failed to load favorites: %w", err)
	}
	return nil
}

// State returns the browsing state, nil before Load
func (g *Guide) State() *directory.State {
	return g.state
}

// Grid renders the current page
func (g *Guide) Grid() directory.Grid {
	if g.state == nil {
		return directory.Grid{Empty: true, Message: directory.LoadErrorMessage}
	}
	return directory.Render(g.state)
}

// Dispatch performs a card intent. Toggling a favorite never opens the player and
// opening never changes favorites.
func (g *Guide) Dispatch(ctx context.Context, intent directory.Intent) error {
	switch intent.Action {
	case directory.ActionOpen:
		return g.Play(intent.ChannelID)
	case directory.ActionToggleFavorite:
		_, err := g.ToggleFavorite(ctx, intent.ChannelID)
		return err
	default:
		return errors.New(errors.CodeInvalidArg, fmt.Sprintf("unknown action %d", intent.Action))
	}
}

// List applies filter and returns the requested page, clamped to the valid range
func (g *Guide) List(filter directory.Filter, page int) (*Listing, error) {
	if err := g.requireLoaded(); err != nil {
		return nil, err
	}

	g.state.SetFilter(filter)
	g.state.SetPage(page)

	return &Listing{
		Channels: g.state.PageItems(),
		Page:     g.state.Page(),
		Total:    len(g.state.Filtered()),
	}, nil
}

// Channel looks up a playable channel by id
func (g *Guide) Channel(id string) (*model.Channel, error) {
	if id == "" {
		return nil, errors.New(errors.CodeInvalidArg, "channel ID is required")
	}
	if err := g.requireLoaded(); err != nil {
		return nil, err
	}
	return g.index.Channel(id)
}

// Regions returns the regions in catalog order
func (g *Guide) Regions() ([]model.Region, error) {
	if err := g.requireLoaded(); err != nil {
		return nil, err
	}
	return g.catalog.Regions, nil
}

// Categories returns the categories sorted by name
func (g *Guide) Categories() ([]model.Category, error) {
	if err := g.requireLoaded(); err != nil {
		return nil, err
	}
	return g.catalog.Categories, nil
}

// ToggleFavorite flips the favorite state of id and refreshes the filtered list.
// The id is not checked against the catalog.
func (g *Guide) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	favorite, err := g.favorites.Toggle(ctx, id)
	if err != nil {
		return favorite, fmt.Errorf("failed to toggle favorite: %w", err)
	}
	g.log.Debugf("favorite %s -> %t", id, favorite)

	if g.state != nil {
		g.state.Refresh()
	}
	return favorite, nil
}

// Favorites returns the favorited channels present in the catalog and the stored ids
// that no longer match a playable channel
func (g *Guide) Favorites() ([]model.Channel, []string, error) {
	if err := g.requireLoaded(); err != nil {
		return nil, nil, err
	}

	channels := make([]model.Channel, 0)
	stale := make([]string, 0)
	for _, id := range g.favorites.IDs() {
		ch, err := g.index.Channel(id)
		if err != nil {
			if errors.IsNotFound(err) {
				stale = append(stale, id)
				continue
			}
			return nil, nil, err
		}
		channels = append(channels, *ch)
	}
	return channels, stale, nil
}

// FavoritesCountText renders the favorites counter
func (g *Guide) FavoritesCountText() string {
	return g.favorites.CountText()
}

// Play opens the player for the channel with the given id
func (g *Guide) Play(id string) error {
	if g.player == nil {
		return errors.New(errors.CodeUnsupported, "no player configured")
	}
	ch, err := g.Channel(id)
	if err != nil {
		return err
	}
	return g.player.Open(*ch)
}

func (g *Guide) requireLoaded() error {
	if g.state == nil {
		return errors.New(errors.CodeInternal, "catalog is not loaded")
	}
	return nil
}
