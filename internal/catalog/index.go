package catalog

import (
	"fmt"

	"github.com/hashicorp/go-memdb"

	apperrors "github.com/Taichi-iskw/idcable/internal/errors"
	"github.com/Taichi-iskw/idcable/internal/model"
)

const (
	tableChannel  = "channel"
	tableRegion   = "region"
	tableCategory = "category"
)

// Index answers point lookups by id or code over a loaded Catalog
type Index struct {
	db *memdb.MemDB
}

func indexSchema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			tableChannel: {
				Name: tableChannel,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "ID"},
					},
				},
			},
			tableRegion: {
				Name: tableRegion,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "Code"},
					},
				},
			},
			tableCategory: {
				Name: tableCategory,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "ID"},
					},
				},
			},
		},
	}
}

// NewIndex builds an Index over c
func NewIndex(c *Catalog) (*Index, error) {
	db, err := memdb.NewMemDB(indexSchema())
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to create catalog index")
	}

	txn := db.Txn(true)
	defer txn.Abort()

	for i := range c.Channels {
		ch := c.Channels[i]
		if err := txn.Insert(tableChannel, &ch); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to index channel "+ch.ID)
		}
	}
	for i := range c.Regions {
		r := c.Regions[i]
		if err := txn.Insert(tableRegion, &r); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to index region "+r.Code)
		}
	}
	for i := range c.Categories {
		cat := c.Categories[i]
		if err := txn.Insert(tableCategory, &cat); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to index category "+cat.ID)
		}
	}
	txn.Commit()

	return &Index{db: db}, nil
}

// Channel returns the playable channel with the given id
func (x *Index) Channel(id string) (*model.Channel, error) {
	raw, err := x.first(tableChannel, id)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("channel %q not found", id))
	}
	ch := *raw.(*model.Channel)
	return &ch, nil
}

// Region returns the region with the given code
func (x *Index) Region(code string) (*model.Region, error) {
	raw, err := x.first(tableRegion, code)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("region %q not found", code))
	}
	r := *raw.(*model.Region)
	return &r, nil
}

// Category returns the category with the given id
func (x *Index) Category(id string) (*model.Category, error) {
	raw, err := x.first(tableCategory, id)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("category %q not found", id))
	}
	c := *raw.(*model.Category)
	return &c, nil
}

func (x *Index) first(table, key string) (any, error) {
	txn := x.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(table, "id", key)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to query catalog index")
	}
	return raw, nil
}
