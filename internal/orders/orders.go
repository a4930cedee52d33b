package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"storefront/internal/cart"
	"storefront/internal/stores/docstore"
	"storefront/pkg/logkey"
)

const Collection = "orders"

// Fixed-width fraction so the stored strings sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type Conf struct {
	store docstore.Store
}

func NewConf(store docstore.Store) (*Conf, error) {
	if store == nil {
		return nil, fmt.Errorf("document store is nil")
	}
	return &Conf{store: store}, nil
}

// Create writes a completed order holding a snapshot of the given lines.
func (c *Conf) Create(ctx context.Context, userID string, items []cart.Line, total float64) (Order, error) {
	if userID == "" {
		return Order{}, fmt.Errorf("user id is empty")
	}

	createdAt := time.Now().UTC()
	itemDocs, err := linesToDocs(items)
	if err != nil {
		return Order{}, err
	}

	doc := docstore.Document{
		"userId":      userID,
		"items":       itemDocs,
		"totalAmount": total,
		"status":      StatusCompleted,
		"createdAt":   createdAt.Format(timeLayout),
	}
	id, err := c.store.Create(ctx, Collection, doc)
	if err != nil {
		return Order{}, fmt.Errorf("creating order: %w", err)
	}

	snapshot := make([]cart.Line, len(items))
	copy(snapshot, items)
	return Order{
		ID:          id,
		UserID:      userID,
		Items:       snapshot,
		TotalAmount: total,
		Status:      StatusCompleted,
		CreatedAt:   createdAt,
	}, nil
}

// ForUser lists a user's orders newest first. Gateway failures degrade to an
// empty listing instead of an error so the history view stays usable.
func (c *Conf) ForUser(ctx context.Context, userID string) []Order {
	if userID == "" {
		slog.Error("order listing requested without a user id")
		return nil
	}

	docs, err := c.store.Query(ctx, Collection,
		[]docstore.Filter{{Field: "userId", Value: userID}},
		&docstore.Ordering{Field: "createdAt", Desc: true})
	if err != nil {
		slog.Error("fetching orders for user",
			slog.String(logkey.UserID, userID), slog.String(logkey.ERROR, err.Error()))
		return nil
	}
	return ordersFromDocs(docs)
}

func (c *Conf) ByID(ctx context.Context, id string) (Order, error) {
	doc, err := c.store.GetByID(ctx, Collection, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return Order{}, docstore.ErrNotFound
		}
		return Order{}, fmt.Errorf("fetching order %s: %w", id, err)
	}
	return orderFromDoc(doc), nil
}

// All lists every order newest first, for the admin panel.
func (c *Conf) All(ctx context.Context) ([]Order, error) {
	docs, err := c.store.Query(ctx, Collection, nil,
		&docstore.Ordering{Field: "createdAt", Desc: true})
	if err != nil {
		return nil, fmt.Errorf("fetching all orders: %w", err)
	}
	return ordersFromDocs(docs), nil
}

func linesToDocs(items []cart.Line) ([]any, error) {
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshaling order items: %w", err)
	}
	var docs []any
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("unmarshaling order items: %w", err)
	}
	return docs, nil
}

func ordersFromDocs(docs []docstore.Document) []Order {
	out := make([]Order, 0, len(docs))
	for _, doc := range docs {
		out = append(out, orderFromDoc(doc))
	}
	return out
}

func orderFromDoc(doc docstore.Document) Order {
	o := Order{
		ID:          stringField(doc, "id"),
		UserID:      stringField(doc, "userId"),
		Status:      stringField(doc, "status"),
		TotalAmount: numField(doc, "totalAmount"),
		CreatedAt:   parseCreatedAt(stringField(doc, "createdAt")),
	}
	if raw, ok := doc["items"]; ok {
		data, err := json.Marshal(raw)
		if err == nil {
			var items []cart.Line
			if err := json.Unmarshal(data, &items); err == nil {
				o.Items = items
			}
		}
	}
	return o
}

// parseCreatedAt adapts the stored timestamp string back to a time value,
// accepting plain RFC3339 for documents written by other tools.
func parseCreatedAt(s string) time.Time {
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	return time.Time{}
}

func stringField(doc docstore.Document, key string) string {
	v, _ := doc[key].(string)
	return v
}

func numField(doc docstore.Document, key string) float64 {
	switch t := doc[key].(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	}
	return 0
}
