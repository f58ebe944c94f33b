package dto

// CreateOfficerRequest is used by administrators to create officer accounts.
type CreateOfficerRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	Role     string  `json:"role" validate:"omitempty,oneof=admin officer"`
	Name     *string `json:"name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}

// UpdateOfficerRequest captures administrator-triggered partial updates.
type UpdateOfficerRequest struct {
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8"`
	Role     *string `json:"role,omitempty" validate:"omitempty,oneof=admin officer"`
	Name     *string `json:"name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}

// OfficerResponse represents officer data returned to clients.
type OfficerResponse struct {
	ID    string  `json:"id"`
	Email string  `json:"email"`
	Role  string  `json:"role"`
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
}
