package products

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/stores/docstore"
)

const Collection = "products"

type Conf struct {
	store docstore.Store
}

func NewConf(store docstore.Store) (*Conf, error) {
	if store == nil {
		return nil, fmt.Errorf("document store is nil")
	}
	return &Conf{store: store}, nil
}

func (c *Conf) GetAll(ctx context.Context) ([]Product, error) {
	docs, err := c.store.Query(ctx, Collection, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching products: %w", err)
	}
	return productsFromDocs(docs), nil
}

// ByCategory with an empty category returns the full catalog.
func (c *Conf) ByCategory(ctx context.Context, category string) ([]Product, error) {
	if category == "" {
		return c.GetAll(ctx)
	}
	docs, err := c.store.Query(ctx, Collection,
		[]docstore.Filter{{Field: "category", Value: category}}, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching products in category %s: %w", category, err)
	}
	return productsFromDocs(docs), nil
}

// Categories scans the whole catalog and collects distinct category values in
// first-appearance order. O(total products), fine while the catalog is small.
func (c *Conf) Categories(ctx context.Context) ([]string, error) {
	docs, err := c.store.Query(ctx, Collection, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching categories: %w", err)
	}

	seen := map[string]bool{}
	var categories []string
	for _, doc := range docs {
		category, _ := doc["category"].(string)
		if category == "" || seen[category] {
			continue
		}
		seen[category] = true
		categories = append(categories, category)
	}
	return categories, nil
}

func (c *Conf) ByID(ctx context.Context, id string) (Product, error) {
	doc, err := c.store.GetByID(ctx, Collection, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return Product{}, docstore.ErrNotFound
		}
		return Product{}, fmt.Errorf("fetching product %s: %w", id, err)
	}
	return productFromDoc(doc), nil
}

func (c *Conf) Create(ctx context.Context, np NewProduct) (Product, error) {
	doc := docstore.Document{
		"title":       np.Title,
		"price":       np.Price,
		"description": np.Description,
		"category":    np.Category,
		"image":       np.Image,
	}
	if np.Rating != nil {
		doc["rating"] = map[string]any{"rate": np.Rating.Rate, "count": np.Rating.Count}
	}

	id, err := c.store.Create(ctx, Collection, doc)
	if err != nil {
		return Product{}, fmt.Errorf("creating product: %w", err)
	}
	return Product{
		ID:          id,
		Title:       np.Title,
		Price:       np.Price,
		Description: np.Description,
		Category:    np.Category,
		Image:       np.Image,
		Rating:      np.Rating,
	}, nil
}

func (c *Conf) Update(ctx context.Context, id string, upd ProductUpdate) error {
	fields := docstore.Document{}
	if upd.Title != nil {
		fields["title"] = *upd.Title
	}
	if upd.Price != nil {
		fields["price"] = *upd.Price
	}
	if upd.Description != nil {
		fields["description"] = *upd.Description
	}
	if upd.Category != nil {
		fields["category"] = *upd.Category
	}
	if upd.Image != nil {
		fields["image"] = *upd.Image
	}
	if upd.Rating != nil {
		fields["rating"] = map[string]any{"rate": upd.Rating.Rate, "count": upd.Rating.Count}
	}
	if len(fields) == 0 {
		return nil
	}

	if err := c.store.Update(ctx, Collection, id, fields); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return docstore.ErrNotFound
		}
		return fmt.Errorf("updating product %s: %w", id, err)
	}
	return nil
}

func (c *Conf) Delete(ctx context.Context, id string) error {
	if err := c.store.Delete(ctx, Collection, id); err != nil {
		return fmt.Errorf("deleting product %s: %w", id, err)
	}
	return nil
}

func productsFromDocs(docs []docstore.Document) []Product {
	out := make([]Product, 0, len(docs))
	for _, doc := range docs {
		out = append(out, productFromDoc(doc))
	}
	return out
}

func productFromDoc(doc docstore.Document) Product {
	p := Product{
		ID:          stringField(doc, "id"),
		Title:       stringField(doc, "title"),
		Price:       numField(doc, "price"),
		Description: stringField(doc, "description"),
		Category:    stringField(doc, "category"),
		Image:       stringField(doc, "image"),
	}
	if rating, ok := doc["rating"].(map[string]any); ok {
		p.Rating = &Rating{
			Rate:  numValue(rating["rate"]),
			Count: int(numValue(rating["count"])),
		}
	}
	return p
}

func stringField(doc docstore.Document, key string) string {
	s, _ := doc[key].(string)
	return s
}

func numField(doc docstore.Document, key string) float64 {
	return numValue(doc[key])
}

func numValue(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	}
	return 0
}
