package products

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"storefront/internal/stores/docstore"
)

func seedProduct(t *testing.T, conf *Conf, title, category string, price float64) Product {
	t.Helper()
	created, err := conf.Create(context.Background(), NewProduct{
		Title:    title,
		Price:    price,
		Category: category,
		Image:    "https://img.example/" + title + ".png",
	})
	require.NoError(t, err)
	return created
}

func TestCreateAndFetchProduct(t *testing.T) {
	conf, err := NewConf(docstore.NewMemory())
	require.NoError(t, err)
	ctx := context.Background()

	created, err := conf.Create(ctx, NewProduct{
		Title:       "Wireless Mouse",
		Price:       29.99,
		Description: "A mouse",
		Category:    "electronics",
		Image:       "https://img.example/mouse.png",
		Rating:      &Rating{Rate: 4.5, Count: 120},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	fetched, err := conf.ByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Wireless Mouse", fetched.Title)
	assert.Equal(t, 29.99, fetched.Price)
	assert.Equal(t, "electronics", fetched.Category)
	require.NotNil(t, fetched.Rating)
	assert.Equal(t, 4.5, fetched.Rating.Rate)
	assert.Equal(t, 120, fetched.Rating.Count)
}

func TestProductWithoutRating(t *testing.T) {
	conf, err := NewConf(docstore.NewMemory())
	require.NoError(t, err)

	created := seedProduct(t, conf, "Plain", "misc", 5)
	fetched, err := conf.ByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Nil(t, fetched.Rating)
}

func TestByIDNotFound(t *testing.T) {
	conf, err := NewConf(docstore.NewMemory())
	require.NoError(t, err)

	_, err = conf.ByID(context.Background(), "missing")
	require.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestByCategoryFiltersAndEmptyMeansAll(t *testing.T) {
	conf, err := NewConf(docstore.NewMemory())
	require.NoError(t, err)
	ctx := context.Background()

	seedProduct(t, conf, "Shirt", "clothing", 15)
	seedProduct(t, conf, "Jeans", "clothing", 40)
	seedProduct(t, conf, "Mouse", "electronics", 30)

	clothing, err := conf.ByCategory(ctx, "clothing")
	require.NoError(t, err)
	assert.Len(t, clothing, 2)
	for _, p := range clothing {
		assert.Equal(t, "clothing", p.Category)
	}

	all, err := conf.ByCategory(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestCategoriesAreDistinct(t *testing.T) {
	conf, err := NewConf(docstore.NewMemory())
	require.NoError(t, err)

	seedProduct(t, conf, "Shirt", "clothing", 15)
	seedProduct(t, conf, "Jeans", "clothing", 40)
	seedProduct(t, conf, "Mouse", "electronics", 30)

	categories, err := conf.Categories(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"clothing", "electronics"}, categories)
}

func TestUpdateIsPartial(t *testing.T) {
	conf, err := NewConf(docstore.NewMemory())
	require.NoError(t, err)
	ctx := context.Background()

	created := seedProduct(t, conf, "Mouse", "electronics", 30)

	newPrice := 24.99
	require.NoError(t, conf.Update(ctx, created.ID, ProductUpdate{Price: &newPrice}))

	fetched, err := conf.ByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 24.99, fetched.Price)
	assert.Equal(t, "Mouse", fetched.Title)
	assert.Equal(t, "electronics", fetched.Category)
}

func TestUpdateUnknownProduct(t *testing.T) {
	conf, err := NewConf(docstore.NewMemory())
	require.NoError(t, err)

	title := "New"
	err = conf.Update(context.Background(), "missing", ProductUpdate{Title: &title})
	require.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestUpdateWithNoFieldsIsNoop(t *testing.T) {
	conf, err := NewConf(docstore.NewMemory())
	require.NoError(t, err)

	// No fields set, nothing to write; even an unknown id succeeds.
	require.NoError(t, conf.Update(context.Background(), "missing", ProductUpdate{}))
}

func TestDeleteRemovesProduct(t *testing.T) {
	conf, err := NewConf(docstore.NewMemory())
	require.NoError(t, err)
	ctx := context.Background()

	created := seedProduct(t, conf, "Mouse", "electronics", 30)
	require.NoError(t, conf.Delete(ctx, created.ID))

	_, err = conf.ByID(ctx, created.ID)
	require.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestNewProductValidationTags(t *testing.T) {
	validate := validator.New()

	assert.Error(t, validate.Struct(NewProduct{Price: 10, Category: "misc", Image: "x"}))
	assert.Error(t, validate.Struct(NewProduct{Title: "A", Price: -1, Category: "misc", Image: "x"}))
	assert.NoError(t, validate.Struct(NewProduct{Title: "A", Price: 0, Category: "misc", Image: "x"}))
}
