package memory

import (
	"context"
	"encoding/json"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

// InMemoryStore keeps items in process. Items of one namespace are replaced as
// a whole copy on every Put, so readers never observe a partially written map.
type InMemoryStore struct {
	namespaces *xsync.MapOf[string, map[string]Item]
	now        func() time.Time
}

var _ Store = (*InMemoryStore)(nil)

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		namespaces: xsync.NewMapOf[string, map[string]Item](),
		now:        time.Now,
	}
}

func (s *InMemoryStore) Search(ctx context.Context, ns Namespace) ([]Item, error) {
	if err := ns.Validate(); err != nil {
		return nil, err
	}
	bucket, ok := s.namespaces.Load(ns.Key())
	if !ok {
		return nil, nil
	}

	items := make([]Item, 0, len(bucket))
	for _, it := range bucket {
		it.Value = append(json.RawMessage(nil), it.Value...)
		items = append(items, it)
	}
	sortNewestFirst(items)
	return items, nil
}

func (s *InMemoryStore) Put(ctx context.Context, ns Namespace, key string, value json.RawMessage) error {
	if err := checkPut(ns, key, value); err != nil {
		return err
	}
	now := s.now().UTC()
	stored := append(json.RawMessage(nil), value...)

	s.namespaces.Compute(ns.Key(), func(old map[string]Item, loaded bool) (map[string]Item, bool) {
		next := make(map[string]Item, len(old)+1)
		for k, v := range old {
			next[k] = v
		}
		created := now
		if prev, ok := old[key]; ok {
			created = prev.CreatedAt
		}
		next[key] = Item{
			Namespace: ns,
			Key:       key,
			Value:     stored,
			CreatedAt: created,
			UpdatedAt: now,
		}
		return next, false
	})
	return nil
}
