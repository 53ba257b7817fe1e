// Package builder owns an ordered collection of field definitions and the
// mutations over it: add, edit, delete, and neighbor reordering. Persistence
// is a capability injected at construction — the connected mode and the
// standalone mode are two implementations of the same FieldStore interface,
// not separate code paths.
package builder

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mattlowe/formhall/internal/field"
)

// FieldStore is the persistence capability behind a Builder.
type FieldStore interface {
	// Load returns the authoritative field list in sort_order.
	Load(ctx context.Context) ([]field.Definition, error)

	// Add persists a new field and returns it with its assigned id and
	// sort_order.
	Add(ctx context.Context, def field.Definition) (field.Definition, error)

	// Update replaces an existing field's definition.
	Update(ctx context.Context, id string, def field.Definition) (field.Definition, error)

	// Delete removes a field. Implementations renumber the remaining
	// fields' sort_order densely (0..n-1), preserving relative order.
	Delete(ctx context.Context, id string) error

	// SwapSortOrder exchanges exactly the sort_order values of two fields.
	// No other field's order changes.
	SwapSortOrder(ctx context.Context, idA, idB string) error
}

// ChangeFunc is invoked by MemoryStore after every successful mutation with
// the new field list, so an owning component can persist or propagate it.
type ChangeFunc func(fields []field.Definition)

// MemoryStore is the standalone-mode FieldStore: the list lives only in
// memory and each change is reported to the owner's callback.
type MemoryStore struct {
	mu       sync.Mutex
	fields   []field.Definition
	onChange ChangeFunc
}

// NewMemoryStore seeds a standalone store with caller-supplied fields.
// onChange may be nil.
func NewMemoryStore(fields []field.Definition, onChange ChangeFunc) *MemoryStore {
	s := &MemoryStore{onChange: onChange}
	s.fields = append(s.fields, fields...)
	sortBySortOrder(s.fields)
	return s
}

func (s *MemoryStore) Load(_ context.Context) ([]field.Definition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.fields), nil
}

func (s *MemoryStore) Add(_ context.Context, def field.Definition) (field.Definition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if def.ID == "" {
		def.ID = field.NewID()
	}
	def.SortOrder = len(s.fields)
	s.fields = append(s.fields, def)
	s.notify()
	return def, nil
}

func (s *MemoryStore) Update(_ context.Context, id string, def field.Definition) (field.Definition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return field.Definition{}, fmt.Errorf("field %s: not found", id)
	}
	def.ID = id
	def.SortOrder = s.fields[i].SortOrder
	s.fields[i] = def
	s.notify()
	return def, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("field %s: not found", id)
	}
	s.fields = append(s.fields[:i], s.fields[i+1:]...)
	// Renumber densely so deletes never leave gaps.
	for j := range s.fields {
		s.fields[j].SortOrder = j
	}
	s.notify()
	return nil
}

func (s *MemoryStore) SwapSortOrder(_ context.Context, idA, idB string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, b := s.index(idA), s.index(idB)
	if a < 0 || b < 0 {
		return fmt.Errorf("swap %s/%s: field not found", idA, idB)
	}
	s.fields[a].SortOrder, s.fields[b].SortOrder = s.fields[b].SortOrder, s.fields[a].SortOrder
	sortBySortOrder(s.fields)
	s.notify()
	return nil
}

// index returns the position of a field id, or -1. Callers hold mu.
func (s *MemoryStore) index(id string) int {
	for i, f := range s.fields {
		if f.ID == id {
			return i
		}
	}
	return -1
}

// notify reports the current list to the owner. Callers hold mu.
func (s *MemoryStore) notify() {
	if s.onChange != nil {
		s.onChange(snapshot(s.fields))
	}
}

func snapshot(fields []field.Definition) []field.Definition {
	out := make([]field.Definition, len(fields))
	copy(out, fields)
	return out
}

func sortBySortOrder(fields []field.Definition) {
	sort.SliceStable(fields, func(i, j int) bool {
		return fields[i].SortOrder < fields[j].SortOrder
	})
}
