package repository

import (
	"context"
	"encoding/json"
	"fmt"
)

// Collection names used by the dashboard.
const (
	CollectionLeads    = "leads"
	CollectionSources  = "sources"
	CollectionOffices  = "regionaloffices"
	CollectionFeedback = "leadfeedback"
)

// PageInfo carries the pagination state of a typed listing.
type PageInfo struct {
	HasNext  bool `json:"hasNext"`
	NextSkip *int `json:"nextSkip,omitempty"`
}

// Collection is a typed view over one collection of an ItemsRepository.
type Collection[T any] struct {
	items ItemsRepository
	name  string
}

// NewCollection binds name to items, decoding documents into T.
func NewCollection[T any](items ItemsRepository, name string) *Collection[T] {
	return &Collection[T]{items: items, name: name}
}

// Name returns the collection name.
func (c *Collection[T]) Name() string {
	return c.name
}

// List decodes one page of items.
func (c *Collection[T]) List(ctx context.Context, filters []Filter, opts ListOptions) ([]T, PageInfo, error) {
	page, err := c.items.GetAll(ctx, c.name, filters, opts)
	if err != nil {
		return nil, PageInfo{}, err
	}
	out := make([]T, 0, len(page.Items))
	for _, raw := range page.Items {
		item, err := c.decode(raw)
		if err != nil {
			return nil, PageInfo{}, err
		}
		out = append(out, item)
	}
	return out, PageInfo{HasNext: page.HasNext, NextSkip: page.NextSkip}, nil
}

// Count returns how many items match filters.
func (c *Collection[T]) Count(ctx context.Context, filters []Filter) (int, error) {
	return c.items.Count(ctx, c.name, filters)
}

// Get fetches one item by id.
func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	raw, err := c.items.GetByID(ctx, c.name, id)
	if err != nil {
		var zero T
		return zero, err
	}
	return c.decode(raw)
}

// Create stores item under id and returns the stored document.
func (c *Collection[T]) Create(ctx context.Context, id string, item T) (T, error) {
	raw, err := c.items.Create(ctx, c.name, id, item)
	if err != nil {
		var zero T
		return zero, err
	}
	return c.decode(raw)
}

// Update merges partial into the item and returns the result.
func (c *Collection[T]) Update(ctx context.Context, id string, partial any) (T, error) {
	raw, err := c.items.Update(ctx, c.name, id, partial)
	if err != nil {
		var zero T
		return zero, err
	}
	return c.decode(raw)
}

func (c *Collection[T]) decode(raw json.RawMessage) (T, error) {
	var item T
	if err := json.Unmarshal(raw, &item); err != nil {
		return item, fmt.Errorf("decode %s item: %w", c.name, err)
	}
	return item, nil
}
