package entity

import "time"

// Source is a data source crawled for lead signals.
type Source struct {
	ID          string     `json:"_id"`
	CreatedDate *time.Time `json:"_createdDate,omitempty"`
	UpdatedDate *time.Time `json:"_updatedDate,omitempty"`
	SourceName  *string    `json:"sourceName,omitempty"`
	SourceType  *string    `json:"sourceType,omitempty"`
	URL         *string    `json:"url,omitempty"`
	TrustScore  *float64   `json:"trustScore,omitempty"`
	Description *string    `json:"description,omitempty"`
	LastCrawled *time.Time `json:"lastCrawled,omitempty"`
	IsActive    *bool      `json:"isActive,omitempty"`
}

// Active reports whether the source is flagged active.
func (s Source) Active() bool {
	return s.IsActive != nil && *s.IsActive
}
