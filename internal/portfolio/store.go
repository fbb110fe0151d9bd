// Package portfolio owns the shared mutable state of the creature engine:
// the creature table and the per-user ownership index. All mutation goes
// through Store methods, each of which is atomic with respect to both
// structures; callers never see a creature that is indexed but missing, or
// removed but still indexed.
package portfolio

import (
	"errors"
	"sort"
	"sync"

	"github.com/nkaruna09/Wealthlings/internal/game"
)

// ErrNotFound signals that a referenced creature id does not exist.
var ErrNotFound = errors.New("creature not found")

// Store holds all creatures and the user ownership index. State is ephemeral
// by contract: the process restarts empty.
type Store struct {
	mu        sync.RWMutex
	creatures map[string]*game.Creature
	byUser    map[string]map[string]struct{}
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		creatures: make(map[string]*game.Creature),
		byUser:    make(map[string]map[string]struct{}),
	}
}

// Get returns a copy of the creature with the given id.
func (s *Store) Get(id string) (game.Creature, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.creatures[id]
	if !ok {
		return game.Creature{}, false
	}
	return *c, true
}

// Upsert atomically creates or updates the creature with the given id and
// registers it under userID. When the id is absent, create() builds the new
// creature; otherwise update mutates the existing one in place. Returns a
// copy of the resulting creature and whether it was newly created. The
// closures run under the store lock and must not block.
func (s *Store) Upsert(userID, id string, create func() game.Creature, update func(*game.Creature)) (game.Creature, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.creatures[id]
	if exists {
		update(c)
	} else {
		created := create()
		c = &created
		s.creatures[id] = c
	}

	if s.byUser[userID] == nil {
		s.byUser[userID] = make(map[string]struct{})
	}
	s.byUser[userID][id] = struct{}{}

	return *c, !exists
}

// Update atomically applies fn to the creature with the given id and returns
// a copy of the result. Returns ErrNotFound when the id is absent, which is
// how a sweep write for a creature sold mid-sweep becomes a no-op.
func (s *Store) Update(id string, fn func(*game.Creature)) (game.Creature, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.creatures[id]
	if !ok {
		return game.Creature{}, ErrNotFound
	}
	fn(c)
	return *c, nil
}

// Remove atomically deletes the creature and its entry in the owner's index,
// returning a copy of the removed creature.
func (s *Store) Remove(id string) (game.Creature, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.creatures[id]
	if !ok {
		return game.Creature{}, ErrNotFound
	}
	delete(s.creatures, id)

	if owned := s.byUser[c.OwnerID]; owned != nil {
		delete(owned, id)
		if len(owned) == 0 {
			delete(s.byUser, c.OwnerID)
		}
	}
	return *c, nil
}

// ListForUser returns copies of all creatures a user holds, sorted by id for
// stable output. Unknown users get an empty slice.
func (s *Store) ListForUser(userID string) []game.Creature {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owned := s.byUser[userID]
	creatures := make([]game.Creature, 0, len(owned))
	for id := range owned {
		if c, ok := s.creatures[id]; ok {
			creatures = append(creatures, *c)
		}
	}
	sort.Slice(creatures, func(i, j int) bool { return creatures[i].ID < creatures[j].ID })
	return creatures
}

// Snapshot returns copies of every stored creature. The sweeper iterates this
// snapshot so it never holds the lock across provider calls.
func (s *Store) Snapshot() []game.Creature {
	s.mu.RLock()
	defer s.mu.RUnlock()

	creatures := make([]game.Creature, 0, len(s.creatures))
	for _, c := range s.creatures {
		creatures = append(creatures, *c)
	}
	return creatures
}

// Len returns the number of stored creatures.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.creatures)
}
