package entity

import "fmt"

// ID is a generation-checked handle into a Store.
// The low 32 bits index a slot; the high 32 bits hold the slot generation when the handle was issued.
// The zero ID never refers to a live entity.
type ID uint64

func newID(index, generation uint32) ID {
	return ID(uint64(generation)<<32 | uint64(index))
}

func (id ID) index() uint32      { return uint32(id) }
func (id ID) generation() uint32 { return uint32(id >> 32) }

func (id ID) String() string {
	return fmt.Sprintf("%d:%d", id.index(), id.generation())
}

type slot struct {
	generation uint32
	ent        *entity
}

// Store is the arena every entity lives in. Handles issued for a slot go stale once the slot is freed,
// so an asynchronous completion holding an old ID can always tell that its target is gone.
// A Store is not safe for concurrent use.
type Store struct {
	slots []slot
	free  []uint32
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{}
}

// Spawn creates a pending entity in the given scene instance and returns it.
//
// Parameters:
//   - name: the entity name
//   - sceneID: the owning scene's instance ID
//   - options: functional options for entity configuration
//
// Returns:
//   - Entity: the new entity, with its ID assigned
func (s *Store) Spawn(name, sceneID string, options ...EntityBuilderOption) Entity {
	e := NewEntity(name, sceneID, options...).(*entity)

	var index uint32
	if n := len(s.free); n > 0 {
		index = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		index = uint32(len(s.slots))
		s.slots = append(s.slots, slot{})
	}

	sl := &s.slots[index]
	sl.generation++
	sl.ent = e
	e.id = newID(index, sl.generation)
	return e
}

// Get resolves an ID.
//
// Parameters:
//   - id: the handle to resolve
//
// Returns:
//   - Entity: the live entity
//   - bool: false if the handle is stale or was never issued
func (s *Store) Get(id ID) (Entity, bool) {
	idx := id.index()
	if id == 0 || int(idx) >= len(s.slots) {
		return nil, false
	}
	sl := s.slots[idx]
	if sl.ent == nil || sl.generation != id.generation() {
		return nil, false
	}
	return sl.ent, true
}

// Find returns the live entity with the given name in the given scene instance.
//
// Parameters:
//   - sceneID: the scene instance ID
//   - name: the entity name
//
// Returns:
//   - Entity: the entity
//   - bool: false if no such entity is live
func (s *Store) Find(sceneID, name string) (Entity, bool) {
	for _, sl := range s.slots {
		if sl.ent != nil && sl.ent.sceneID == sceneID && sl.ent.name == name {
			return sl.ent, true
		}
	}
	return nil, false
}

// InScene returns the live entities of a scene instance in spawn-slot order.
func (s *Store) InScene(sceneID string) []Entity {
	var out []Entity
	for _, sl := range s.slots {
		if sl.ent != nil && sl.ent.sceneID == sceneID {
			out = append(out, sl.ent)
		}
	}
	return out
}

// RemoveScene frees every entity belonging to a scene instance, invalidating their IDs.
//
// Parameters:
//   - sceneID: the scene instance ID
//
// Returns:
//   - int: the number of entities removed
func (s *Store) RemoveScene(sceneID string) int {
	removed := 0
	for i := range s.slots {
		sl := &s.slots[i]
		if sl.ent != nil && sl.ent.sceneID == sceneID {
			sl.ent = nil
			s.free = append(s.free, uint32(i))
			removed++
		}
	}
	return removed
}

// Len returns the number of live entities.
func (s *Store) Len() int {
	return len(s.slots) - len(s.free)
}
