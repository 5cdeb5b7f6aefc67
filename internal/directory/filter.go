// Package directory holds the browsing pipeline: filtering, pagination and the grid view-model.
// Everything here is a pure function of its inputs.
package directory

import (
	"fmt"
	"strings"

	"github.com/Taichi-iskw/idcable/internal/model"
)

// All is the selector value meaning "no constraint"
const All = "all"

// Filter is the user's current filter selection
type Filter struct {
	Search        string
	Region        string
	Category      string
	FavoritesOnly bool
}

// DefaultFilter matches every channel
func DefaultFilter() Filter {
	return Filter{Region: All, Category: All}
}

// Apply returns the channels matching every active predicate of f, in input order.
// isFavorite may be nil when FavoritesOnly is unset.
func Apply(channels []model.Channel, regions []model.Region, f Filter, isFavorite func(id string) bool) []model.Channel {
	search := strings.ToLower(f.Search)

	// An unknown region code leaves the region unconstrained
	var countries map[string]struct{}
	if f.Region != "" && f.Region != All {
		for _, r := range regions {
			if r.Code == f.Region {
				countries = make(map[string]struct{}, len(r.Countries))
				for _, c := range r.Countries {
					countries[c] = struct{}{}
				}
				break
			}
		}
	}
	category := f.Category
	if category == "" {
		category = All
	}

	filtered := make([]model.Channel, 0, len(channels))
	for i := range channels {
		ch := &channels[i]

		if f.FavoritesOnly && (isFavorite == nil || !isFavorite(ch.ID)) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(ch.Name), search) {
			continue
		}
		if countries != nil {
			if _, ok := countries[ch.Country]; !ok {
				continue
			}
		}
		if category != All && !ch.HasCategory(category) {
			continue
		}
		filtered = append(filtered, *ch)
	}
	return filtered
}

// CountText renders the filtered channel counter
func CountText(n int) string {
	return fmt.Sprintf("%d channels found", n)
}
