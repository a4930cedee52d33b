package docstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCreateAndGet(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	id, err := m.Create(ctx, "products", Document{"title": "Mouse", "price": 29.99})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	doc, err := m.GetByID(ctx, "products", id)
	require.NoError(t, err)
	assert.Equal(t, id, doc["id"])
	assert.Equal(t, "Mouse", doc["title"])
	assert.Equal(t, 29.99, doc["price"])
}

func TestMemoryGetUnknown(t *testing.T) {
	m := NewMemory()

	_, err := m.GetByID(context.Background(), "products", "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryUpdateMergesFields(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	id, err := m.Create(ctx, "users", Document{"email": "jo@example.com", "address": ""})
	require.NoError(t, err)

	require.NoError(t, m.Update(ctx, "users", id, Document{"address": "1 Main St"}))

	doc, err := m.GetByID(ctx, "users", id)
	require.NoError(t, err)
	assert.Equal(t, "1 Main St", doc["address"])
	assert.Equal(t, "jo@example.com", doc["email"])

	require.ErrorIs(t, m.Update(ctx, "users", "missing", Document{"a": 1}), ErrNotFound)
}

func TestMemoryDelete(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	id, err := m.Create(ctx, "products", Document{"title": "Mouse"})
	require.NoError(t, err)
	require.NoError(t, m.Delete(ctx, "products", id))

	_, err = m.GetByID(ctx, "products", id)
	require.ErrorIs(t, err, ErrNotFound)

	// Deleting something absent is fine.
	require.NoError(t, m.Delete(ctx, "products", "missing"))
}

func TestMemoryQueryFiltersByEquality(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, err := m.Create(ctx, "orders", Document{"userId": "u1", "total": 10})
	require.NoError(t, err)
	_, err = m.Create(ctx, "orders", Document{"userId": "u2", "total": 20})
	require.NoError(t, err)
	_, err = m.Create(ctx, "orders", Document{"userId": "u1", "total": 30})
	require.NoError(t, err)

	docs, err := m.Query(ctx, "orders", []Filter{{Field: "userId", Value: "u1"}}, nil)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	for _, doc := range docs {
		assert.Equal(t, "u1", doc["userId"])
	}
}

func TestMemoryQueryOrdering(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, err := m.Create(ctx, "orders", Document{"createdAt": "2026-01-02T00:00:00.000000000Z"})
	require.NoError(t, err)
	_, err = m.Create(ctx, "orders", Document{"createdAt": "2026-01-03T00:00:00.000000000Z"})
	require.NoError(t, err)
	_, err = m.Create(ctx, "orders", Document{"createdAt": "2026-01-01T00:00:00.000000000Z"})
	require.NoError(t, err)

	docs, err := m.Query(ctx, "orders", nil, &Ordering{Field: "createdAt", Desc: true})
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "2026-01-03T00:00:00.000000000Z", docs[0]["createdAt"])
	assert.Equal(t, "2026-01-01T00:00:00.000000000Z", docs[2]["createdAt"])

	asc, err := m.Query(ctx, "orders", nil, &Ordering{Field: "createdAt"})
	require.NoError(t, err)
	assert.Equal(t, "2026-01-01T00:00:00.000000000Z", asc[0]["createdAt"])
}

func TestMemoryReturnsCopies(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	id, err := m.Create(ctx, "products", Document{
		"title":  "Mouse",
		"rating": map[string]any{"rate": 4.5},
	})
	require.NoError(t, err)

	doc, err := m.GetByID(ctx, "products", id)
	require.NoError(t, err)
	doc["title"] = "Tampered"
	doc["rating"].(map[string]any)["rate"] = 1.0

	fresh, err := m.GetByID(ctx, "products", id)
	require.NoError(t, err)
	assert.Equal(t, "Mouse", fresh["title"])
	assert.Equal(t, 4.5, fresh["rating"].(map[string]any)["rate"])
}
