package store

import (
	"context"
	"fmt"

	"github.com/austincho/crystal-protocol/option"
)

var _ option.Store = &Buffered{}

// Buffered wraps a store and holds any saved record in memory until it is
// committed. Loads see the pending record. Discard drops the pending record
// so that the wrapped store is left untouched.
//
// Buffered lets a command's record write be applied only after the funds the
// command moves have been settled.
type Buffered struct {
	store   option.Store
	pending *option.Record
}

func NewBuffered(s option.Store) *Buffered {
	return &Buffered{store: s}
}

func (b *Buffered) Load(ctx context.Context) (option.Record, error) {
	if b.pending != nil {
		return *b.pending, nil
	}
	return b.store.Load(ctx)
}

func (b *Buffered) Save(ctx context.Context, r option.Record) error {
	b.pending = &r
	return nil
}

// Pending returns true if a record has been saved and not yet committed or
// discarded.
func (b *Buffered) Pending() bool {
	return b.pending != nil
}

// Commit saves the pending record to the wrapped store.
func (b *Buffered) Commit(ctx context.Context) error {
	if b.pending == nil {
		return nil
	}
	err := b.store.Save(ctx, *b.pending)
	if err != nil {
		return fmt.Errorf("committing record: %w", err)
	}
	b.pending = nil
	return nil
}

// Discard drops the pending record.
func (b *Buffered) Discard() {
	b.pending = nil
}
