package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Taichi-iskw/idcable/internal/errors"
	"github.com/Taichi-iskw/idcable/internal/model"
)

func TestIndex(t *testing.T) {
	c := &Catalog{
		Channels: []model.Channel{
			{ID: "AppleNews.us", Name: "Apple News", Country: "US", Categories: []string{"news"}},
			{ID: "BallSports.uk", Name: "Ball Sports", Country: "UK", Categories: []string{"sports"}},
		},
		Regions: []model.Region{
			{Code: "EUR", Name: "Europe", Countries: []string{"UK"}},
		},
		Categories: []model.Category{
			{ID: "news", Name: "News"},
		},
	}

	idx, err := NewIndex(c)
	require.NoError(t, err)

	t.Run("channel found", func(t *testing.T) {
		ch, err := idx.Channel("BallSports.uk")
		require.NoError(t, err)
		assert.Equal(t, "Ball Sports", ch.Name)

		// Returned values are copies
		ch.Name = "changed"
		again, err := idx.Channel("BallSports.uk")
		require.NoError(t, err)
		assert.Equal(t, "Ball Sports", again.Name)
	})

	t.Run("channel not found", func(t *testing.T) {
		_, err := idx.Channel("Nope.xx")
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("region", func(t *testing.T) {
		r, err := idx.Region("EUR")
		require.NoError(t, err)
		assert.Equal(t, []string{"UK"}, r.Countries)

		_, err = idx.Region("ASI")
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("category", func(t *testing.T) {
		cat, err := idx.Category("news")
		require.NoError(t, err)
		assert.Equal(t, "News", cat.Name)

		_, err = idx.Category("music")
		assert.True(t, apperrors.IsNotFound(err))
	})
}
