package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"storefront/internal/products"
	"storefront/internal/stores/session"
)

func testProduct(id string, price float64) products.Product {
	return products.Product{
		ID:       id,
		Title:    "Product " + id,
		Price:    price,
		Category: "misc",
		Image:    "https://example.com/" + id + ".png",
	}
}

func newTestStore(t *testing.T) (*Store, *session.Memory) {
	t.Helper()
	persist := session.NewMemory()
	s, err := NewStore(context.Background(), persist, "cart:test")
	require.NoError(t, err)
	return s, persist
}

func TestNewStoreValidatesArguments(t *testing.T) {
	_, err := NewStore(context.Background(), nil, "cart:test")
	require.Error(t, err)

	_, err = NewStore(context.Background(), session.NewMemory(), "")
	require.Error(t, err)
}

func TestAddItemMergesDuplicates(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	s.AddItem(ctx, testProduct("1", 9.99))
	s.AddItem(ctx, testProduct("1", 9.99))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 2, s.ItemCount())
}

func TestDistinctLinesNeverExceedDistinctIDs(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	s.AddItem(ctx, testProduct("1", 1))
	s.AddItem(ctx, testProduct("2", 2))
	s.AddItem(ctx, testProduct("1", 1))
	s.AddItem(ctx, testProduct("3", 3))
	s.AddItem(ctx, testProduct("2", 2))

	items := s.Items()
	require.Len(t, items, 3)
	assert.Equal(t, "1", items[0].ID)
	assert.Equal(t, "2", items[1].ID)
	assert.Equal(t, "3", items[2].ID)
}

func TestTotalIsDerivedFromLines(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	s.AddItem(ctx, testProduct("1", 10))
	s.AddItem(ctx, testProduct("1", 10))
	s.AddItem(ctx, testProduct("2", 20))
	assert.Equal(t, 40.0, s.Total())

	require.NoError(t, s.SetQuantity(ctx, "2", 3))
	assert.Equal(t, 80.0, s.Total())

	s.RemoveItem(ctx, "1")
	assert.Equal(t, 60.0, s.Total())
}

func TestClearEmptiesCartAndPersistence(t *testing.T) {
	s, persist := newTestStore(t)
	ctx := context.Background()

	s.AddItem(ctx, testProduct("1", 5))
	s.Clear(ctx)

	assert.Empty(t, s.Items())
	assert.Equal(t, 0.0, s.Total())
	assert.Equal(t, 0, s.ItemCount())

	raw, ok, err := persist.Get(ctx, "cart:test")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, "[]", raw)
}

func TestSetQuantityRejectsBelowOne(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	s.AddItem(ctx, testProduct("1", 5))

	require.ErrorIs(t, s.SetQuantity(ctx, "1", 0), ErrInvalidQuantity)
	require.ErrorIs(t, s.SetQuantity(ctx, "1", -3), ErrInvalidQuantity)
	assert.Equal(t, 1, s.Items()[0].Quantity)
}

func TestSetQuantityOnAbsentIDIsNoop(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	s.AddItem(ctx, testProduct("1", 5))
	require.NoError(t, s.SetQuantity(ctx, "missing", 4))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
}

func TestRemoveAbsentIDIsNoop(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	s.AddItem(ctx, testProduct("1", 5))
	s.RemoveItem(ctx, "missing")

	assert.Len(t, s.Items(), 1)
}

func TestPersistenceRoundTrip(t *testing.T) {
	persist := session.NewMemory()
	ctx := context.Background()

	s, err := NewStore(ctx, persist, "cart:roundtrip")
	require.NoError(t, err)
	s.AddItem(ctx, testProduct("1", 10))
	s.AddItem(ctx, testProduct("2", 20))
	require.NoError(t, s.SetQuantity(ctx, "1", 2))

	rehydrated, err := NewStore(ctx, persist, "cart:roundtrip")
	require.NoError(t, err)
	assert.Equal(t, s.Items(), rehydrated.Items())
	assert.Equal(t, 40.0, rehydrated.Total())
}

func TestCorruptSnapshotStartsEmpty(t *testing.T) {
	persist := session.NewMemory()
	ctx := context.Background()
	require.NoError(t, persist.Set(ctx, "cart:corrupt", "not-json{{{"))

	s, err := NewStore(ctx, persist, "cart:corrupt")
	require.NoError(t, err)
	assert.Empty(t, s.Items())
	assert.Equal(t, 0.0, s.Total())
}

func TestRehydrateDropsInvalidLines(t *testing.T) {
	persist := session.NewMemory()
	ctx := context.Background()
	snapshot := `[
		{"id":"1","title":"a","price":10,"quantity":2},
		{"id":"1","title":"a","price":10,"quantity":5},
		{"id":"2","title":"b","price":20,"quantity":0},
		{"id":"","title":"c","price":30,"quantity":1}
	]`
	require.NoError(t, persist.Set(ctx, "cart:dirty", snapshot))

	s, err := NewStore(ctx, persist, "cart:dirty")
	require.NoError(t, err)

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "1", items[0].ID)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestSubscribeNotifiesOnEveryMutation(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	var notified int
	unsubscribe := s.Subscribe(func() { notified++ })

	s.AddItem(ctx, testProduct("1", 5))
	require.NoError(t, s.SetQuantity(ctx, "1", 3))
	s.RemoveItem(ctx, "1")
	s.Clear(ctx)
	assert.Equal(t, 4, notified)

	unsubscribe()
	s.AddItem(ctx, testProduct("2", 5))
	assert.Equal(t, 4, notified)
}

func TestManagerReturnsSameStorePerUser(t *testing.T) {
	m, err := NewManager(session.NewMemory())
	require.NoError(t, err)
	ctx := context.Background()

	a, err := m.For(ctx, "user-a")
	require.NoError(t, err)
	again, err := m.For(ctx, "user-a")
	require.NoError(t, err)
	b, err := m.For(ctx, "user-b")
	require.NoError(t, err)

	assert.Same(t, a, again)
	assert.NotSame(t, a, b)

	_, err = m.For(ctx, "")
	require.Error(t, err)
}
