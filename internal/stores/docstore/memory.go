package docstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-memory Store used by tests and local development.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]map[string]Document
}

func NewMemory() *Memory {
	return &Memory{collections: map[string]map[string]Document{}}
}

func (m *Memory) Create(ctx context.Context, collection string, doc Document) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.NewString()
	coll, ok := m.collections[collection]
	if !ok {
		coll = map[string]Document{}
		m.collections[collection] = coll
	}
	coll[id] = deepCopy(doc)
	return id, nil
}

func (m *Memory) GetByID(ctx context.Context, collection, id string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	out := deepCopy(doc)
	out["id"] = id
	return out, nil
}

func (m *Memory) Update(ctx context.Context, collection, id string, fields Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.collections[collection][id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range deepCopy(fields) {
		doc[k] = v
	}
	return nil
}

func (m *Memory) Delete(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.collections[collection], id)
	return nil
}

func (m *Memory) Query(ctx context.Context, collection string, filters []Filter, order *Ordering) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	type entry struct {
		id  string
		doc Document
	}
	var matched []entry
	for id, doc := range m.collections[collection] {
		if matchesAll(doc, filters) {
			matched = append(matched, entry{id: id, doc: doc})
		}
	}

	// Stable iteration for callers even when no ordering is requested.
	sort.Slice(matched, func(i, j int) bool { return matched[i].id < matched[j].id })
	if order != nil {
		field, desc := order.Field, order.Desc
		sort.SliceStable(matched, func(i, j int) bool {
			a := stringValue(matched[i].doc[field])
			b := stringValue(matched[j].doc[field])
			if desc {
				return a > b
			}
			return a < b
		})
	}

	out := make([]Document, 0, len(matched))
	for _, e := range matched {
		doc := deepCopy(e.doc)
		doc["id"] = e.id
		out = append(out, doc)
	}
	return out, nil
}

func matchesAll(doc Document, filters []Filter) bool {
	for _, f := range filters {
		if stringValue(doc[f.Field]) != f.Value {
			return false
		}
	}
	return true
}

func stringValue(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func deepCopy(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case Document:
		return map[string]any(deepCopy(t))
	case map[string]any:
		return map[string]any(deepCopy(Document(t)))
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}
		return out
	default:
		return v
	}
}
