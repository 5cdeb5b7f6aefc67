// Package catalog loads the iptv-org catalog and joins channels with their streams.
package catalog

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/Taichi-iskw/idcable/internal/model"
)

// Catalog is the loaded, joined and sorted catalog. It is immutable after load.
type Catalog struct {
	Channels   []model.Channel
	Regions    []model.Region
	Categories []model.Category
}

// Join pairs channel records with the first secure stream that references them.
// Streams are visited in order; a stream is skipped when it names no channel, when its
// channel already has a stream, when its URL is not https, or when the channel is unknown.
// The result is in stream order; callers sort it.
func Join(channels []model.ChannelRecord, streams []model.StreamRecord) []model.Channel {
	byID := make(map[string]*model.ChannelRecord, len(channels))
	for i := range channels {
		byID[channels[i].ID] = &channels[i]
	}

	seen := make(map[string]struct{})
	joined := make([]model.Channel, 0)

	for _, stream := range streams {
		if stream.Channel == "" {
			continue
		}
		if _, ok := seen[stream.Channel]; ok {
			continue
		}
		// Plain http streams are dropped
		if !strings.HasPrefix(stream.URL, "https://") {
			continue
		}

		record, ok := byID[stream.Channel]
		if !ok {
			continue
		}

		categories := record.Categories
		if categories == nil {
			categories = []string{}
		}

		joined = append(joined, model.Channel{
			ID:              record.ID,
			Name:            record.Name,
			Country:         record.Country,
			Categories:      categories,
			Logo:            record.Logo,
			StreamURL:       stream.URL,
			StreamUserAgent: stream.UserAgent,
			StreamReferrer:  stream.Referrer,
		})
		seen[stream.Channel] = struct{}{}
	}

	return joined
}

// SortChannels orders channels by display name using collation rules for locale.
// Equal names keep their relative order.
func SortChannels(channels []model.Channel, locale string) {
	col := newCollator(locale)
	sort.SliceStable(channels, func(i, j int) bool {
		return col.CompareString(channels[i].Name, channels[j].Name) < 0
	})
}

// SortCategories orders categories by display name using collation rules for locale
func SortCategories(categories []model.Category, locale string) {
	col := newCollator(locale)
	sort.SliceStable(categories, func(i, j int) bool {
		return col.CompareString(categories[i].Name, categories[j].Name) < 0
	})
}

func newCollator(locale string) *collate.Collator {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return collate.New(tag)
}
