package entity

import "time"

// RegionalOffice is a sales office responsible for a state or province.
type RegionalOffice struct {
	ID               string     `json:"_id"`
	CreatedDate      *time.Time `json:"_createdDate,omitempty"`
	UpdatedDate      *time.Time `json:"_updatedDate,omitempty"`
	OfficeName       *string    `json:"officeName,omitempty"`
	RegionIdentifier *string    `json:"regionIdentifier,omitempty"`
	Address          *string    `json:"address,omitempty"`
	City             *string    `json:"city,omitempty"`
	StateProvince    *string    `json:"stateProvince,omitempty"`
	ContactPerson    *string    `json:"contactPerson,omitempty"`
	ContactEmail     *string    `json:"contactEmail,omitempty"`
	ContactPhone     *string    `json:"contactPhone,omitempty"`
	Latitude         *float64   `json:"latitude,omitempty"`
	Longitude        *float64   `json:"longitude,omitempty"`
}
