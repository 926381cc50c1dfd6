package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vietddude/clipwatch/internal/core/domain"
	"github.com/vietddude/clipwatch/internal/infra/storage"
)

// MemoryStorage backs all repositories with maps; used in tests and for
// dry runs without a database file.
type MemoryStorage struct {
	sources  map[string]*domain.Source
	order    []string
	items    map[string]*domain.Item
	failed   map[string]*domain.FailedItem
	settings map[string]string
	mu       sync.RWMutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		sources:  make(map[string]*domain.Source),
		items:    make(map[string]*domain.Item),
		failed:   make(map[string]*domain.FailedItem),
		settings: make(map[string]string),
	}
}

// -----------------------------------------------------------------------------
// Source Repository
// -----------------------------------------------------------------------------

type SourceRepo struct {
	store *MemoryStorage
}

func NewSourceRepo(store *MemoryStorage) *SourceRepo {
	return &SourceRepo{store: store}
}

func (r *SourceRepo) Get(ctx context.Context, id string) (*domain.Source, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	src, ok := r.store.sources[id]
	if !ok {
		return nil, storage.ErrSourceNotFound
	}
	s := *src
	return &s, nil
}

func (r *SourceRepo) Upsert(ctx context.Context, src *domain.Source) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.sources[src.ID]; !ok {
		r.store.order = append(r.store.order, src.ID)
	}
	s := *src
	r.store.sources[src.ID] = &s
	return nil
}

func (r *SourceRepo) List(ctx context.Context, enabledOnly bool) ([]*domain.Source, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*domain.Source
	for _, id := range r.store.order {
		src, ok := r.store.sources[id]
		if !ok {
			continue
		}
		if enabledOnly && !src.Enabled {
			continue
		}
		s := *src
		out = append(out, &s)
	}
	return out, nil
}

func (r *SourceRepo) SetEnabled(ctx context.Context, id string, enabled bool) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	src, ok := r.store.sources[id]
	if !ok {
		return storage.ErrSourceNotFound
	}
	src.Enabled = enabled
	return nil
}

func (r *SourceRepo) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.sources[id]; !ok {
		return storage.ErrSourceNotFound
	}
	delete(r.store.sources, id)
	for i, sid := range r.store.order {
		if sid == id {
			r.store.order = append(r.store.order[:i], r.store.order[i+1:]...)
			break
		}
	}
	for itemID, item := range r.store.items {
		if item.SourceID == id {
			delete(r.store.items, itemID)
		}
	}
	for fid, fi := range r.store.failed {
		if fi.SourceID == id {
			delete(r.store.failed, fid)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// Item Repository
// -----------------------------------------------------------------------------

type ItemRepo struct {
	store *MemoryStorage
}

func NewItemRepo(store *MemoryStorage) *ItemRepo {
	return &ItemRepo{store: store}
}

func (r *ItemRepo) Exists(ctx context.Context, id string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	_, ok := r.store.items[id]
	return ok, nil
}

func (r *ItemRepo) Upsert(ctx context.Context, item *domain.Item) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	it := *item
	if it.RetrievedAt.IsZero() {
		it.RetrievedAt = time.Now().UTC()
	}
	r.store.items[item.ID] = &it
	return nil
}

func (r *ItemRepo) Count(ctx context.Context) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return len(r.store.items), nil
}

func (r *ItemRepo) CountBySource(ctx context.Context) (map[string]int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	counts := make(map[string]int)
	for _, item := range r.store.items {
		counts[item.SourceID]++
	}
	return counts, nil
}

// -----------------------------------------------------------------------------
// Failed Item Repository
// -----------------------------------------------------------------------------

type FailedItemRepo struct {
	store *MemoryStorage
}

func NewFailedItemRepo(store *MemoryStorage) *FailedItemRepo {
	return &FailedItemRepo{store: store}
}

func (r *FailedItemRepo) Add(ctx context.Context, fi *domain.FailedItem) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	f := *fi
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.Status == "" {
		f.Status = domain.FailedItemStatusPending
	}
	f.LastAttempt = time.Now().UTC()
	r.store.failed[f.ID] = &f
	return nil
}

func (r *FailedItemRepo) GetPending(ctx context.Context, sourceID string) ([]*domain.FailedItem, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*domain.FailedItem
	for _, fi := range r.store.failed {
		if fi.SourceID == sourceID && fi.Status == domain.FailedItemStatusPending {
			f := *fi
			out = append(out, &f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastAttempt.Before(out[j].LastAttempt) })
	return out, nil
}

func (r *FailedItemRepo) MarkResolved(ctx context.Context, itemID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, fi := range r.store.failed {
		if fi.ItemID == itemID && fi.Status == domain.FailedItemStatusPending {
			fi.Status = domain.FailedItemStatusResolved
		}
	}
	return nil
}

func (r *FailedItemRepo) Count(ctx context.Context) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	count := 0
	for _, fi := range r.store.failed {
		if fi.Status == domain.FailedItemStatusPending {
			count++
		}
	}
	return count, nil
}

// -----------------------------------------------------------------------------
// Settings Repository
// -----------------------------------------------------------------------------

type SettingsRepo struct {
	store *MemoryStorage
}

func NewSettingsRepo(store *MemoryStorage) *SettingsRepo {
	return &SettingsRepo{store: store}
}

func (r *SettingsRepo) Get(ctx context.Context, key, fallback string) (string, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if v, ok := r.store.settings[key]; ok {
		return v, nil
	}
	return fallback, nil
}

func (r *SettingsRepo) Set(ctx context.Context, key, value string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.settings[key] = value
	return nil
}
