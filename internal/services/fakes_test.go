package services

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"cloud-kitchen-backend/internal/models"
	"cloud-kitchen-backend/internal/repositories"
	"cloud-kitchen-backend/pkg/cache"

	"github.com/google/uuid"
)

// memCache stores JSON like RedisCache so values round-trip the same way.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}}
}

func (c *memCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	raw, ok := c.data[key]
	c.mu.Unlock()
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	c.sets++
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

type fakeMenuRepo struct {
	mu      sync.Mutex
	items   map[int64]models.MenuItem
	lists   int
	listErr error
}

func newFakeMenuRepo(items ...models.MenuItem) *fakeMenuRepo {
	r := &fakeMenuRepo{items: map[int64]models.MenuItem{}}
	for _, it := range items {
		r.items[it.ID] = it
	}
	return r
}

func (r *fakeMenuRepo) List(_ context.Context, f repositories.MenuFilter) ([]models.MenuItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists++
	if r.listErr != nil {
		return nil, r.listErr
	}

	var out []models.MenuItem
	for _, it := range r.items {
		if f.Category != "" && f.Category != "All" && !strings.EqualFold(f.Category, it.Category) {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(it.Name), strings.ToLower(f.Search)) {
			continue
		}
		if f.AvailableOnly && !it.IsAvailable {
			continue
		}
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeMenuRepo) GetByID(_ context.Context, id int64) (*models.MenuItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &it, nil
}

func (r *fakeMenuRepo) Upsert(_ context.Context, item *models.MenuItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ID] = *item
	return nil
}

func (r *fakeMenuRepo) Categories(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, it := range r.items {
		if !seen[it.Category] {
			seen[it.Category] = true
			out = append(out, it.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

type fakeCartRepo struct {
	mu      sync.Mutex
	carts   map[string]models.CartSnapshot
	saves   int
	saveErr error
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{carts: map[string]models.CartSnapshot{}}
}

func (r *fakeCartRepo) Get(_ context.Context, sessionID string) (*models.CartSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap, ok := r.carts[sessionID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &snap, nil
}

func (r *fakeCartRepo) Save(_ context.Context, snapshot *models.CartSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if r.saveErr != nil {
		return r.saveErr
	}
	r.carts[snapshot.SessionID] = *snapshot
	return nil
}

func (r *fakeCartRepo) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, sessionID)
	return nil
}

func (r *fakeCartRepo) saveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

type fakeOrderRepo struct {
	mu        sync.Mutex
	orders    []models.Order
	createErr error
	lastLimit int
	// onCreate runs before the order is stored, outside the repo lock
	onCreate func()
}

func (r *fakeOrderRepo) Create(_ context.Context, order *models.Order) error {
	if r.onCreate != nil {
		r.onCreate()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.orders = append(r.orders, *order)
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.ID == id {
			o := o
			return &o, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeOrderRepo) List(_ context.Context, limit, offset int) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastLimit = limit
	if offset >= len(r.orders) {
		return nil, nil
	}
	end := offset + limit
	if end > len(r.orders) {
		end = len(r.orders)
	}
	return append([]models.Order(nil), r.orders[offset:end]...), nil
}

type publishedEvent struct {
	topic string
	key   string
	value interface{}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, topic, key string, value interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{topic: topic, key: key, value: value})
	return nil
}

type fakeOrderLog struct {
	mu      sync.Mutex
	entries []any
	err     error
}

func (l *fakeOrderLog) Append(v any) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	l.entries = append(l.entries, v)
	return nil
}

var errBoom = errors.New("boom")

func testMenu() []models.MenuItem {
	return []models.MenuItem{
		{ID: 1, Name: "Bengaluru Vegetable Biryani", Price: 180, Category: "Veg", IsAvailable: true},
		{ID: 2, Name: "Paneer Biryani", Price: 220, Category: "Veg", IsAvailable: true},
		{ID: 9, Name: "Chicken Biryani", Price: 250, Category: "Non-Veg", IsAvailable: true},
		{ID: 14, Name: "Mutton Biryani", Price: 320, Category: "Non-Veg", IsAvailable: false},
	}
}
