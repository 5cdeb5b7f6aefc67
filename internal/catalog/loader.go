package catalog

import (
	"context"
	"encoding/json"
	"strings"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/Taichi-iskw/idcable/internal/errors"
	"github.com/Taichi-iskw/idcable/internal/httpclient"
	"github.com/Taichi-iskw/idcable/internal/logger"
	"github.com/Taichi-iskw/idcable/internal/model"
)

// Resource names under the API base
const (
	ResourceChannels   = "channels.json"
	ResourceStreams    = "streams.json"
	ResourceRegions    = "regions.json"
	ResourceCategories = "categories.json"
)

// Loader fetches the four catalog resources and builds a Catalog
type Loader struct {
	client  httpclient.Client
	baseURL string
	locale  string
	log     logger.Logger
}

// NewLoader creates a Loader reading from baseURL (e.g. https://iptv-org.github.io/api)
func NewLoader(client httpclient.Client, baseURL, locale string, log logger.Logger) *Loader {
	if log == nil {
		log = logger.Nop()
	}
	return &Loader{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		locale:  locale,
		log:     log,
	}
}

// Load fetches all resources concurrently and fails as a whole if any fetch or
// decode fails. There is no retry.
func (l *Loader) Load(ctx context.Context) (*Catalog, error) {
	var (
		channels   []model.ChannelRecord
		streams    []model.StreamRecord
		regions    []model.Region
		categories []model.Category
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return l.fetch(gctx, ResourceChannels, &channels) })
	g.Go(func() error { return l.fetch(gctx, ResourceStreams, &streams) })
	g.Go(func() error { return l.fetch(gctx, ResourceRegions, &regions) })
	g.Go(func() error { return l.fetch(gctx, ResourceCategories, &categories) })

	if err := g.Wait(); err != nil {
		l.log.Errorf("catalog load failed: %v", err)
		return nil, err
	}

	joined := Join(channels, streams)
	SortChannels(joined, l.locale)

	for i := range regions {
		if regions[i].Countries == nil {
			regions[i].Countries = []string{}
		}
	}
	SortCategories(categories, l.locale)

	l.log.Logf("catalog loaded: %d playable channels from %d channels and %d streams, %d regions, %d categories",
		len(joined), len(channels), len(streams), len(regions), len(categories))

	return &Catalog{
		Channels:   joined,
		Regions:    regions,
		Categories: categories,
	}, nil
}

func (l *Loader) fetch(ctx context.Context, resource string, out any) error {
	body, err := l.client.Get(ctx, l.baseURL+"/"+resource, nil)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeExternal, "failed to fetch "+resource)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDecode, "failed to parse "+resource)
	}
	return nil
}
