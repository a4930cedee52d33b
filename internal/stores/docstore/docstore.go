// Package docstore defines the document-store collaborator the gateway
// packages talk to. Implementations live in internal/stores; the gateways
// never see which backend is behind the interface.
package docstore

import (
	"context"
	"errors"
)

// Document is one stored record. Reads return the document id under the
// "id" key alongside the stored fields.
type Document map[string]any

// Filter is an equality predicate on a top-level document field.
type Filter struct {
	Field string
	Value string
}

// Ordering sorts query results by a top-level document field.
type Ordering struct {
	Field string
	Desc  bool
}

var ErrNotFound = errors.New("document not found")

type Store interface {
	// Create stores doc in collection and returns the assigned id.
	Create(ctx context.Context, collection string, doc Document) (string, error)

	// GetByID returns the document or ErrNotFound.
	GetByID(ctx context.Context, collection, id string) (Document, error)

	// Update merges fields into an existing document. Returns ErrNotFound
	// if no document with that id exists.
	Update(ctx context.Context, collection, id string, fields Document) error

	// Delete removes the document. Deleting an absent id is not an error.
	Delete(ctx context.Context, collection, id string) error

	// Query returns all documents in collection matching every filter,
	// sorted by order when given.
	Query(ctx context.Context, collection string, filters []Filter, order *Ordering) ([]Document, error)
}
