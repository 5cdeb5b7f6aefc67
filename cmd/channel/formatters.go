package channel

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Taichi-iskw/idcable/internal/directory"
	"github.com/Taichi-iskw/idcable/internal/model"
	"github.com/Taichi-iskw/idcable/internal/service/guide"
)

// Formatter defines interface for output formatting
type Formatter interface {
	FormatListing(listing *guide.Listing) (string, error)
	FormatChannel(channel *model.Channel, favorite bool) (string, error)
}

// NewFormatter returns the formatter for format
func NewFormatter(format string) (Formatter, error) {
	switch format {
	case "", "text":
		return &TextFormatter{}, nil
	case "json":
		return &JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// TextFormatter formats output as plain text
type TextFormatter struct{}

// FormatListing formats one page as a table-like list followed by the counters
func (f *TextFormatter) FormatListing(listing *guide.Listing) (string, error) {
	var output strings.Builder

	if len(listing.Channels) == 0 {
		output.WriteString(directory.EmptyMessage + "\n")
	}
	for _, ch := range listing.Channels {
		output.WriteString(fmt.Sprintf("%-32s %-40s %s • %s\n", ch.ID, ch.Name, ch.PrimaryCategory(), ch.Country))
	}

	output.WriteString("\n")
	output.WriteString(fmt.Sprintf("%s • %s\n", directory.CountText(listing.Total), listing.Page.InfoText()))

	return output.String(), nil
}

// FormatChannel formats a single channel
func (f *TextFormatter) FormatChannel(channel *model.Channel, favorite bool) (string, error) {
	var output strings.Builder

	glyph := directory.NotFavoriteGlyph
	if favorite {
		glyph = directory.FavoriteGlyph
	}

	output.WriteString(fmt.Sprintf("%s %s\n", glyph, channel.Name))
	output.WriteString(fmt.Sprintf("ID: %s\n", channel.ID))
	output.WriteString(fmt.Sprintf("Country: %s\n", channel.Country))
	output.WriteString(fmt.Sprintf("Categories: %s\n", strings.Join(channel.Categories, ", ")))
	if channel.Logo != "" {
		output.WriteString(fmt.Sprintf("Logo: %s\n", channel.Logo))
	}
	output.WriteString(fmt.Sprintf("Stream: %s\n", channel.StreamURL))
	if channel.StreamUserAgent != "" {
		output.WriteString(fmt.Sprintf("User-Agent: %s\n", channel.StreamUserAgent))
	}
	if channel.StreamReferrer != "" {
		output.WriteString(fmt.Sprintf("Referrer: %s\n", channel.StreamReferrer))
	}

	return output.String(), nil
}

// JSONFormatter formats output as JSON
type JSONFormatter struct{}

// FormatListing formats one page with its pagination info
func (f *JSONFormatter) FormatListing(listing *guide.Listing) (string, error) {
	type Output struct {
		Channels []model.Channel `json:"channels"`
		Total    int             `json:"total"`
		Page     int             `json:"page"`
		Pages    int             `json:"pages"`
		HasPrev  bool            `json:"has_prev"`
		HasNext  bool            `json:"has_next"`
	}

	return marshal(Output{
		Channels: listing.Channels,
		Total:    listing.Total,
		Page:     listing.Page.Number,
		Pages:    listing.Page.Count,
		HasPrev:  listing.Page.HasPrev && listing.Total > 0,
		HasNext:  listing.Page.HasNext,
	})
}

// FormatChannel formats a single channel
func (f *JSONFormatter) FormatChannel(channel *model.Channel, favorite bool) (string, error) {
	type Output struct {
		*model.Channel
		Favorite bool `json:"favorite"`
	}

	return marshal(Output{Channel: channel, Favorite: favorite})
}

func marshal(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to format as JSON: %w", err)
	}
	return string(data) + "\n", nil
}
