package store

import (
	"context"

	"github.com/KhaledSharif/rocket/internal/types"
)

// Collection is the storage capability the ingestion and query services
// depend on: append one document, and find documents matching a filter.
//
// Implementations must be safe for concurrent use. Documents are never
// updated or deleted through this interface.
type Collection interface {
	InsertOne(ctx context.Context, doc types.Document) error
	Find(ctx context.Context, f Filter) (Cursor, error)
}

// Cursor iterates over the documents returned by Find in the collection's
// native order.
//
//	for cur.Next() {
//	    doc, err := cur.Decode()
//	    ...
//	}
//	if err := cur.Err(); err != nil { ... }
type Cursor interface {
	// Next advances to the next document. It returns false when the
	// iteration is exhausted or failed; check Err afterwards.
	Next() bool

	// Decode reads the current document.
	Decode() (types.Document, error)

	// Err returns the error, if any, that stopped the iteration.
	Err() error

	Close() error
}
