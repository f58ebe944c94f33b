package entity

import (
	"strings"
	"time"
)

// Lead statuses recognised by the dashboard. Stored values are free text and compared case-insensitively.
const (
	StatusHot      = "hot"
	StatusWarm     = "warm"
	StatusCold     = "cold"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// Lead is a prospective customer record from the leads collection.
type Lead struct {
	ID                     string     `json:"_id"`
	CreatedDate            *time.Time `json:"_createdDate,omitempty"`
	UpdatedDate            *time.Time `json:"_updatedDate,omitempty"`
	CompanyName            *string    `json:"companyName,omitempty"`
	IndustryType           *string    `json:"industryType,omitempty"`
	PlantLocations         *string    `json:"plantLocations,omitempty"`
	ContactInformation     *string    `json:"contactInformation,omitempty"`
	LeadScore              *float64   `json:"leadScore,omitempty"`
	TrustScore             *float64   `json:"trustScore,omitempty"`
	Status                 *string    `json:"status,omitempty"`
	ProductRecommendations *string    `json:"productRecommendations,omitempty"`
	ReasonCodes            *string    `json:"reasonCodes,omitempty"`
	LastUpdated            *time.Time `json:"lastUpdated,omitempty"`
}

// Score returns the lead score, treating a missing value as zero.
func (l Lead) Score() float64 {
	if l.LeadScore == nil {
		return 0
	}
	return *l.LeadScore
}

// Trust returns the trust score, treating a missing value as zero.
func (l Lead) Trust() float64 {
	if l.TrustScore == nil {
		return 0
	}
	return *l.TrustScore
}

// StatusKey returns the lower-cased status, or "" when unset.
func (l Lead) StatusKey() string {
	return strings.ToLower(strings.TrimSpace(Value(l.Status)))
}

// Value dereferences an optional string.
func Value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ValueOr dereferences an optional string, returning fallback when it is nil or blank.
func ValueOr(s *string, fallback string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return fallback
	}
	return *s
}
