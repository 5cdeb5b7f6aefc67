package directory

import (
	"strings"

	"github.com/Taichi-iskw/idcable/internal/model"
)

// State is the browsing state owned by the application controller.
// Every filter setter resets the page to 1 and recomputes the filtered list.
type State struct {
	channels   []model.Channel
	regions    []model.Region
	categories []model.Category
	isFavorite func(id string) bool

	filter   Filter
	page     int
	pageSize int
	filtered []model.Channel
}

// NewState creates a State over the loaded catalog lists
func NewState(channels []model.Channel, regions []model.Region, categories []model.Category, pageSize int, isFavorite func(id string) bool) *State {
	if pageSize <= 0 {
		pageSize = 60
	}
	s := &State{
		channels:   channels,
		regions:    regions,
		categories: categories,
		isFavorite: isFavorite,
		filter:     DefaultFilter(),
		page:       1,
		pageSize:   pageSize,
	}
	s.Refresh()
	return s
}

// Refresh recomputes the filtered list without touching the page, e.g. after a favorite toggle
func (s *State) Refresh() {
	s.filtered = Apply(s.channels, s.regions, s.filter, s.isFavorite)
}

func (s *State) setFilter(f Filter) {
	s.filter = f
	s.page = 1
	s.Refresh()
}

// SetSearch sets the search text; it is stored lower-cased
func (s *State) SetSearch(text string) {
	f := s.filter
	f.Search = strings.ToLower(text)
	s.setFilter(f)
}

// SetRegion selects a region code or All
func (s *State) SetRegion(code string) {
	f := s.filter
	f.Region = code
	s.setFilter(f)
}

// SetCategory selects a category id or All
func (s *State) SetCategory(id string) {
	f := s.filter
	f.Category = id
	s.setFilter(f)
}

// SetFavoritesOnly sets the favorites-only flag
func (s *State) SetFavoritesOnly(on bool) {
	f := s.filter
	f.FavoritesOnly = on
	s.setFilter(f)
}

// ToggleFavoritesOnly flips the favorites-only flag and returns the new value
func (s *State) ToggleFavoritesOnly() bool {
	s.SetFavoritesOnly(!s.filter.FavoritesOnly)
	return s.filter.FavoritesOnly
}

// SetFilter replaces the whole filter
func (s *State) SetFilter(f Filter) {
	f.Search = strings.ToLower(f.Search)
	if f.Region == "" {
		f.Region = All
	}
	if f.Category == "" {
		f.Category = All
	}
	s.setFilter(f)
}

// SetPage jumps to page, clamped to the valid range
func (s *State) SetPage(page int) {
	pages := s.Page().Count
	switch {
	case page < 1:
		page = 1
	case page > pages:
		page = pages
	}
	s.page = page
}

// NextPage advances one page; it is a no-op on the last page
func (s *State) NextPage() bool {
	if !s.Page().HasNext {
		return false
	}
	s.page++
	return true
}

// PrevPage goes back one page; it is a no-op on the first page
func (s *State) PrevPage() bool {
	if s.page <= 1 {
		return false
	}
	s.page--
	return true
}

// Page returns the pagination of the current filtered list
func (s *State) Page() Page {
	return Paginate(len(s.filtered), s.pageSize, s.page)
}

// PageItems returns the channels visible on the current page
func (s *State) PageItems() []model.Channel {
	p := s.Page()
	return s.filtered[p.Start:p.End]
}

// Filter returns the current filter
func (s *State) Filter() Filter {
	return s.filter
}

// Filtered returns the filtered channel list
func (s *State) Filtered() []model.Channel {
	return s.filtered
}

// Regions returns the region list in catalog order
func (s *State) Regions() []model.Region {
	return s.regions
}

// Categories returns the category list sorted by name
func (s *State) Categories() []model.Category {
	return s.categories
}

// IsFavorite reports the favorite state of id
func (s *State) IsFavorite(id string) bool {
	return s.isFavorite != nil && s.isFavorite(id)
}

// CountText renders the filtered channel counter
func (s *State) CountText() string {
	return CountText(len(s.filtered))
}

// FavoritesToggleLabel renders the label of the favorites-only control
func (s *State) FavoritesToggleLabel() string {
	if s.filter.FavoritesOnly {
		return "⭐ Show All Channels"
	}
	return "⭐ Show Favorites Only"
}
