package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/octobees/lead-intel/internal/cache"
	"github.com/octobees/lead-intel/internal/entity"
	"github.com/octobees/lead-intel/internal/notification"
	"github.com/octobees/lead-intel/internal/repository"
)

type mockOfficersRepository struct {
	findByEmail func(ctx context.Context, email string) (*entity.Officer, error)
	findByID    func(ctx context.Context, id uuid.UUID) (*entity.Officer, error)
	create      func(ctx context.Context, params repository.CreateOfficerParams) (*entity.Officer, error)
	list        func(ctx context.Context) ([]entity.Officer, error)
	update      func(ctx context.Context, id uuid.UUID, params repository.UpdateOfficerParams) (*entity.Officer, error)
	delete      func(ctx context.Context, id uuid.UUID) error
}

func (m *mockOfficersRepository) FindByEmail(ctx context.Context, email string) (*entity.Officer, error) {
	if m.findByEmail != nil {
		return m.findByEmail(ctx, email)
	}
	return nil, errors.New("findByEmail not implemented")
}

func (m *mockOfficersRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Officer, error) {
	if m.findByID != nil {
		return m.findByID(ctx, id)
	}
	return nil, errors.New("FindByID not implemented")
}

func (m *mockOfficersRepository) Create(ctx context.Context, params repository.CreateOfficerParams) (*entity.Officer, error) {
	if m.create != nil {
		return m.create(ctx, params)
	}
	return nil, errors.New("create not implemented")
}

func (m *mockOfficersRepository) List(ctx context.Context) ([]entity.Officer, error) {
	if m.list != nil {
		return m.list(ctx)
	}
	return nil, errors.New("List not implemented")
}

func (m *mockOfficersRepository) Update(ctx context.Context, id uuid.UUID, params repository.UpdateOfficerParams) (*entity.Officer, error) {
	if m.update != nil {
		return m.update(ctx, id, params)
	}
	return nil, errors.New("Update not implemented")
}

func (m *mockOfficersRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.delete != nil {
		return m.delete(ctx, id)
	}
	return errors.New("Delete not implemented")
}

type mockItemsRepository struct {
	getAll  func(ctx context.Context, collection string, filters []repository.Filter, opts repository.ListOptions) (repository.Page, error)
	count   func(ctx context.Context, collection string, filters []repository.Filter) (int, error)
	getByID func(ctx context.Context, collection, id string) (json.RawMessage, error)
	create  func(ctx context.Context, collection, id string, item any) (json.RawMessage, error)
	update  func(ctx context.Context, collection, id string, partial any) (json.RawMessage, error)
}

func (m *mockItemsRepository) GetAll(ctx context.Context, collection string, filters []repository.Filter, opts repository.ListOptions) (repository.Page, error) {
	if m.getAll != nil {
		return m.getAll(ctx, collection, filters, opts)
	}
	return repository.Page{}, errors.New("GetAll not implemented")
}

func (m *mockItemsRepository) Count(ctx context.Context, collection string, filters []repository.Filter) (int, error) {
	if m.count != nil {
		return m.count(ctx, collection, filters)
	}
	return 0, errors.New("Count not implemented")
}

func (m *mockItemsRepository) GetByID(ctx context.Context, collection, id string) (json.RawMessage, error) {
	if m.getByID != nil {
		return m.getByID(ctx, collection, id)
	}
	return nil, errors.New("GetByID not implemented")
}

func (m *mockItemsRepository) Create(ctx context.Context, collection, id string, item any) (json.RawMessage, error) {
	if m.create != nil {
		return m.create(ctx, collection, id, item)
	}
	return nil, errors.New("Create not implemented")
}

func (m *mockItemsRepository) Update(ctx context.Context, collection, id string, partial any) (json.RawMessage, error) {
	if m.update != nil {
		return m.update(ctx, collection, id, partial)
	}
	return nil, errors.New("Update not implemented")
}

// storeEcho returns a create func that stores nothing and echoes the item back.
func storeEcho(t *testing.T) func(ctx context.Context, collection, id string, item any) (json.RawMessage, error) {
	t.Helper()
	return func(ctx context.Context, collection, id string, item any) (json.RawMessage, error) {
		data, err := json.Marshal(item)
		if err != nil {
			t.Fatalf("marshal item: %v", err)
		}
		return data, nil
	}
}

func rawItems(t *testing.T, items ...any) []json.RawMessage {
	t.Helper()
	out := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			t.Fatalf("marshal item: %v", err)
		}
		out = append(out, data)
	}
	return out
}

type recordingDispatcher struct {
	mu   sync.Mutex
	jobs []notification.Job
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, job notification.Job) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.jobs = append(d.jobs, job)
}

func (d *recordingDispatcher) dispatched() []notification.Job {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]notification.Job(nil), d.jobs...)
}

type memoryCache struct {
	data      map[string][]byte
	deleted   []string
	getErr    error
	setErr    error
	deleteErr error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (c *memoryCache) Get(ctx context.Context, key string, dest any) error {
	if c.getErr != nil {
		return c.getErr
	}
	data, ok := c.data[key]
	if !ok {
		return cache.ErrMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *memoryCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if c.setErr != nil {
		return c.setErr
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = data
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, keys ...string) error {
	c.deleted = append(c.deleted, keys...)
	if c.deleteErr != nil {
		return c.deleteErr
	}
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func stringPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func boolPtr(b bool) *bool { return &b }
