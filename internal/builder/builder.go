package builder

import (
	"context"
	"fmt"

	"github.com/mattlowe/formhall/internal/field"
)

// Direction selects a neighbor for a reorder operation.
type Direction int

const (
	MoveUp   Direction = -1
	MoveDown Direction = +1
)

// Builder orchestrates an ordered field list over an injected FieldStore.
// Local state is only ever replaced wholesale by a reload after a
// successful store round-trip, so a failed mutation leaves the previously
// displayed list untouched.
type Builder struct {
	store  FieldStore
	fields []field.Definition
}

// New loads the initial field list from the store.
func New(ctx context.Context, store FieldStore) (*Builder, error) {
	b := &Builder{store: store}
	if err := b.reload(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

// Fields returns a copy of the current list in sort_order.
func (b *Builder) Fields() []field.Definition {
	return snapshot(b.fields)
}

// AddField persists a new definition and resynchronizes with the store's
// assigned id and ordering.
func (b *Builder) AddField(ctx context.Context, def field.Definition) error {
	if _, err := b.store.Add(ctx, def); err != nil {
		return fmt.Errorf("adding field: %w", err)
	}
	return b.reload(ctx)
}

// UpdateField replaces one definition.
func (b *Builder) UpdateField(ctx context.Context, id string, def field.Definition) error {
	if _, err := b.store.Update(ctx, id, def); err != nil {
		return fmt.Errorf("updating field %s: %w", id, err)
	}
	return b.reload(ctx)
}

// DeleteField removes one definition; the store renumbers the remainder.
func (b *Builder) DeleteField(ctx context.Context, id string) error {
	if err := b.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting field %s: %w", id, err)
	}
	return b.reload(ctx)
}

// Move swaps the sort_order of the identified field with its immediate
// neighbor. Moving the first field up or the last field down is a no-op,
// checked before any store call.
func (b *Builder) Move(ctx context.Context, id string, dir Direction) error {
	i := -1
	for j, f := range b.fields {
		if f.ID == id {
			i = j
			break
		}
	}
	if i < 0 {
		return fmt.Errorf("moving field %s: not found", id)
	}
	n := i + int(dir)
	if n < 0 || n >= len(b.fields) {
		return nil
	}
	if err := b.store.SwapSortOrder(ctx, b.fields[i].ID, b.fields[n].ID); err != nil {
		return fmt.Errorf("reordering field %s: %w", id, err)
	}
	return b.reload(ctx)
}

func (b *Builder) reload(ctx context.Context) error {
	fields, err := b.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading fields: %w", err)
	}
	b.fields = fields
	return nil
}
