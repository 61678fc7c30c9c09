package abstractions

import (
	"context"
	"time"
)

// Kind describes how documents of one type are keyed. Both storage backends
// use it so that uniqueness and ordering behave the same everywhere.
type Kind[E any] struct {
	// Name prefixes keys, e.g. JOURNAL.
	Name string
	ID   func(*E) string
	// Owner is the partition documents are listed by. An empty owner means
	// the kind is only listed as a whole.
	Owner     func(*E) string
	CreatedAt func(*E) time.Time
	// NaturalKey identifies duplicates. Nil or empty means no constraint.
	NaturalKey func(*E) string
}

// UniqueKey returns the natural key of doc, or "" when the kind has none.
func (k Kind[E]) UniqueKey(doc *E) string {
	if k.NaturalKey == nil {
		return ""
	}
	return k.NaturalKey(doc)
}

// OwnerOf returns the listing partition of doc.
func (k Kind[E]) OwnerOf(doc *E) string {
	if k.Owner == nil {
		return ""
	}
	return k.Owner(doc)
}

// Store is a database-agnostic collection of one document kind.
//
// Create fails with a Conflict error when the id or natural key is taken.
// Save upserts and fails with Conflict only when a changed natural key
// collides with another document. Get and Delete return NotFound for a
// missing id. List methods return newest first.
type Store[E any] interface {
	Create(ctx context.Context, doc *E) error
	Save(ctx context.Context, doc *E) error
	Get(ctx context.Context, id string) (*E, error)
	ListByOwner(ctx context.Context, owner string) ([]*E, error)
	List(ctx context.Context) ([]*E, error)
	Delete(ctx context.Context, id string) error
}
