package mockserver

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/mark3labs/swagger2client/internal/fixture"
	"github.com/mark3labs/swagger2client/internal/spec"
)

// Item is one stored record.
type Item = map[string]any

// Store is an in-memory CRUD store keyed by entity name. It is safe for
// concurrent use.
type Store struct {
	mu          sync.RWMutex
	collections map[string][]Item
	nextID      map[string]int
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{collections: make(map[string][]Item), nextID: make(map[string]int)}
}

// Seed fills the collection of every entity with count fixture instances.
func (s *Store) Seed(idx *spec.SchemaIndex, entities []string, count int) error {
	engine := fixture.New(idx)
	for _, name := range entities {
		instances, err := engine.Instances(name, count)
		if err != nil {
			return err
		}
		for _, inst := range instances {
			item, err := toItem(inst)
			if err != nil {
				return fmt.Errorf("seed %s: %w", name, err)
			}
			s.Create(name, item)
		}
	}
	return nil
}

func toItem(v any) (Item, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var item Item
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, err
	}
	return item, nil
}

// List returns a copy of the entity's items in insertion order.
func (s *Store) List(entity string) []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Item(nil), s.collections[entity]...)
}

// Get returns the item whose id matches.
func (s *Store) Get(entity, id string) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.find(entity, id)
	if i < 0 {
		return nil, false
	}
	return s.collections[entity][i], true
}

// Create stores item, assigning the next numeric id when it has none.
func (s *Store) Create(entity string, item Item) Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make(Item, len(item)+1)
	for k, v := range item {
		stored[k] = v
	}
	if n, ok := numericID(stored["id"]); ok && n > s.nextID[entity] {
		s.nextID[entity] = n
	}
	if _, ok := stored["id"]; !ok {
		s.nextID[entity]++
		stored["id"] = s.nextID[entity]
	}
	s.collections[entity] = append(s.collections[entity], stored)
	return stored
}

// Update merges patch into the stored item, or replaces it when replace is
// set. The id is kept either way.
func (s *Store) Update(entity, id string, patch Item, replace bool) (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.find(entity, id)
	if i < 0 {
		return nil, false
	}
	current := s.collections[entity][i]
	next := make(Item, len(current)+len(patch))
	if !replace {
		for k, v := range current {
			next[k] = v
		}
	}
	for k, v := range patch {
		next[k] = v
	}
	next["id"] = current["id"]
	s.collections[entity][i] = next
	return next, true
}

// Delete removes the item whose id matches.
func (s *Store) Delete(entity, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.find(entity, id)
	if i < 0 {
		return false
	}
	items := s.collections[entity]
	s.collections[entity] = append(items[:i:i], items[i+1:]...)
	return true
}

func (s *Store) find(entity, id string) int {
	for i, item := range s.collections[entity] {
		if idString(item["id"]) == id {
			return i
		}
	}
	return -1
}

func idString(v any) string {
	switch id := v.(type) {
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

func numericID(v any) (int, bool) {
	switch id := v.(type) {
	case float64:
		return int(id), id == float64(int(id))
	case int:
		return id, true
	}
	return 0, false
}
