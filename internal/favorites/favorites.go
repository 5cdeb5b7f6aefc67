// Package favorites keeps the user's set of favorited channel ids and persists it
// under a single key of a storage.Repository.
package favorites

import (
	"context"
	"encoding/json"
	"fmt"

	apperrors "github.com/Taichi-iskw/idcable/internal/errors"
	"github.com/Taichi-iskw/idcable/internal/repository/storage"
)

// StorageKey is the repository key holding the serialized id list
const StorageKey = "favorites"

// Store is an insertion-ordered set of channel ids.
// Ids are never validated against the catalog; stale ids stay stored and simply match nothing.
// Re-adding the id removed by the previous toggle puts it back in its old position.
type Store struct {
	repo  storage.Repository
	ids   []string
	index map[string]int

	// last removal, undone in place by an immediate re-add
	removedID string
	removedAt int
}

// NewStore creates an empty Store persisting to repo. Call Load to read the saved set.
func NewStore(repo storage.Repository) *Store {
	return &Store{
		repo:  repo,
		index: make(map[string]int),
	}
}

// Load replaces the in-memory set with the persisted one; an absent key yields an empty set
func (s *Store) Load(ctx context.Context) error {
	raw, err := s.repo.Get(ctx, StorageKey)
	if err != nil {
		if apperrors.IsNotFound(err) {
			s.removedID = ""
			s.reset(nil)
			return nil
		}
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to load favorites")
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDecode, "failed to parse stored favorites")
	}
	s.removedID = ""
	s.reset(ids)
	return nil
}

// Toggle flips membership of id, persists the full set and returns the new membership
func (s *Store) Toggle(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, apperrors.New(apperrors.CodeInvalidArg, "channel ID is required")
	}

	previous := append([]string(nil), s.ids...)
	removedID, removedAt := s.removedID, s.removedAt

	favorite := !s.Has(id)
	if favorite {
		s.reset(s.insert(id))
		s.removedID = ""
	} else {
		at := s.index[id]
		next := make([]string, 0, len(s.ids)-1)
		next = append(next, s.ids[:at]...)
		next = append(next, s.ids[at+1:]...)
		s.reset(next)
		s.removedID, s.removedAt = id, at
	}

	if err := s.persist(ctx); err != nil {
		// Keep memory consistent with what is stored
		s.reset(previous)
		s.removedID, s.removedAt = removedID, removedAt
		return !favorite, err
	}
	return favorite, nil
}

// insert returns the ids with id appended, or back at its old index when it was
// the last one removed
func (s *Store) insert(id string) []string {
	if id != s.removedID || s.removedAt > len(s.ids) {
		return append(append([]string(nil), s.ids...), id)
	}
	next := make([]string, 0, len(s.ids)+1)
	next = append(next, s.ids[:s.removedAt]...)
	next = append(next, id)
	return append(next, s.ids[s.removedAt:]...)
}

// Has reports whether id is favorited
func (s *Store) Has(id string) bool {
	_, ok := s.index[id]
	return ok
}

// IDs returns the favorited ids in the order they were added
func (s *Store) IDs() []string {
	ids := make([]string, len(s.ids))
	copy(ids, s.ids)
	return ids
}

// Count returns the number of favorites
func (s *Store) Count() int {
	return len(s.ids)
}

// CountText renders the favorites counter label
func (s *Store) CountText() string {
	return fmt.Sprintf("%d favorites", s.Count())
}

func (s *Store) persist(ctx context.Context) error {
	ids := s.ids
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to encode favorites")
	}
	if err := s.repo.Put(ctx, StorageKey, string(data)); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to save favorites")
	}
	return nil
}

// reset rebuilds the set from ids, dropping duplicates but keeping first-seen order
func (s *Store) reset(ids []string) {
	s.ids = make([]string, 0, len(ids))
	s.index = make(map[string]int, len(ids))
	for _, id := range ids {
		if _, dup := s.index[id]; dup {
			continue
		}
		s.index[id] = len(s.ids)
		s.ids = append(s.ids, id)
	}
}
