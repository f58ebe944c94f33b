package dto

// CreateOfficeRequest is the payload of POST /offices.
type CreateOfficeRequest struct {
	OfficeName       string   `json:"officeName" validate:"required"`
	RegionIdentifier *string  `json:"regionIdentifier,omitempty"`
	Address          *string  `json:"address,omitempty"`
	City             *string  `json:"city,omitempty"`
	StateProvince    *string  `json:"stateProvince,omitempty"`
	ContactPerson    *string  `json:"contactPerson,omitempty"`
	ContactEmail     *string  `json:"contactEmail,omitempty" validate:"omitempty,email"`
	ContactPhone     *string  `json:"contactPhone,omitempty"`
	Latitude         *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude        *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
}
