package dto

import (
	"time"

	"github.com/octobees/lead-intel/internal/entity"
)

// Lead sort keys accepted by the listing endpoint.
const (
	SortScore = "score"
	SortTrust = "trust"
	SortDate  = "date"
)

// CreateLeadRequest is the payload of POST /leads. NotifyPhone overrides the
// alert recipient; Notify=false suppresses the alert entirely.
type CreateLeadRequest struct {
	CompanyName            *string    `json:"companyName,omitempty"`
	IndustryType           *string    `json:"industryType,omitempty"`
	PlantLocations         *string    `json:"plantLocations,omitempty"`
	ContactInformation     *string    `json:"contactInformation,omitempty"`
	LeadScore              *float64   `json:"leadScore,omitempty" validate:"omitempty,gte=0,lte=100"`
	TrustScore             *float64   `json:"trustScore,omitempty" validate:"omitempty,gte=0,lte=100"`
	Status                 *string    `json:"status,omitempty"`
	ProductRecommendations *string    `json:"productRecommendations,omitempty"`
	ReasonCodes            *string    `json:"reasonCodes,omitempty"`
	LastUpdated            *time.Time `json:"lastUpdated,omitempty"`

	Notify      *bool  `json:"notify,omitempty"`
	NotifyPhone string `json:"notifyPhone,omitempty"`
}

// UpdateLeadRequest carries the fields of a partial lead update.
type UpdateLeadRequest struct {
	CompanyName            *string  `json:"companyName,omitempty"`
	IndustryType           *string  `json:"industryType,omitempty"`
	PlantLocations         *string  `json:"plantLocations,omitempty"`
	ContactInformation     *string  `json:"contactInformation,omitempty"`
	LeadScore              *float64 `json:"leadScore,omitempty" validate:"omitempty,gte=0,lte=100"`
	TrustScore             *float64 `json:"trustScore,omitempty" validate:"omitempty,gte=0,lte=100"`
	Status                 *string  `json:"status,omitempty"`
	ProductRecommendations *string  `json:"productRecommendations,omitempty"`
	ReasonCodes            *string  `json:"reasonCodes,omitempty"`
}

// ListLeadsFilter contains query parameters for the lead listing endpoint.
type ListLeadsFilter struct {
	Q      string
	Status string
	Sort   string
	Limit  int
	Skip   int
}

// LeadPage is one page of leads.
type LeadPage struct {
	Items    []entity.Lead `json:"items"`
	HasNext  bool          `json:"hasNext"`
	NextSkip *int          `json:"nextSkip,omitempty"`
}

// OutreachResponse previews the alert for a lead and offers a click-to-chat link.
type OutreachResponse struct {
	Message      string   `json:"message"`
	Link         string   `json:"link"`
	ContactPhone []string `json:"contactPhone,omitempty"`
}

// ImportSummary reports how many CSV rows were stored.
type ImportSummary struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
	Total    int `json:"total"`
}
