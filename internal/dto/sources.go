package dto

import (
	"time"

	"github.com/octobees/lead-intel/internal/entity"
)

// CreateSourceRequest is the payload of POST /sources.
type CreateSourceRequest struct {
	SourceName  string     `json:"sourceName" validate:"required"`
	SourceType  *string    `json:"sourceType,omitempty"`
	URL         string     `json:"url" validate:"required"`
	TrustScore  *float64   `json:"trustScore,omitempty" validate:"omitempty,gte=0,lte=100"`
	Description *string    `json:"description,omitempty"`
	LastCrawled *time.Time `json:"lastCrawled,omitempty"`
	IsActive    *bool      `json:"isActive,omitempty"`
}

// UpdateSourceRequest carries the fields of a partial source update.
type UpdateSourceRequest struct {
	SourceName  *string    `json:"sourceName,omitempty"`
	SourceType  *string    `json:"sourceType,omitempty"`
	URL         *string    `json:"url,omitempty"`
	TrustScore  *float64   `json:"trustScore,omitempty" validate:"omitempty,gte=0,lte=100"`
	Description *string    `json:"description,omitempty"`
	LastCrawled *time.Time `json:"lastCrawled,omitempty"`
	IsActive    *bool      `json:"isActive,omitempty"`
}

// ListSourcesFilter contains query parameters for the source listing endpoint.
// Status is one of active, inactive or all.
type ListSourcesFilter struct {
	Q      string
	Type   string
	Status string
	Limit  int
	Skip   int
}

// SourcePage is one page of sources plus collection-wide counters.
type SourcePage struct {
	Items       []entity.Source `json:"items"`
	ActiveCount int             `json:"activeCount"`
	HasNext     bool            `json:"hasNext"`
	NextSkip    *int            `json:"nextSkip,omitempty"`
}
