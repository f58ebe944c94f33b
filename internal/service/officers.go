package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/octobees/lead-intel/internal/dto"
	"github.com/octobees/lead-intel/internal/entity"
	"github.com/octobees/lead-intel/internal/repository"
)

// OfficerService encapsulates administrative operations for officer accounts.
type OfficerService struct {
	repo     repository.OfficersRepository
	contacts *ContactNormalizer
}

// NewOfficerService builds a new OfficerService instance.
func NewOfficerService(repo repository.OfficersRepository, contacts *ContactNormalizer) *OfficerService {
	if contacts == nil {
		contacts = NewContactNormalizer("")
	}
	return &OfficerService{repo: repo, contacts: contacts}
}

// ListOfficers returns all officers as DTOs.
func (s *OfficerService) ListOfficers(ctx context.Context) ([]dto.OfficerResponse, error) {
	officers, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.OfficerResponse, 0, len(officers))
	for _, o := range officers {
		responses = append(responses, officerResponse(&o))
	}
	return responses, nil
}

// CreateOfficer creates a new officer. The role defaults to officer.
func (s *OfficerService) CreateOfficer(ctx context.Context, req dto.CreateOfficerRequest) (*dto.OfficerResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	role := strings.ToLower(strings.TrimSpace(req.Role))

	if email == "" || req.Password == "" {
		return nil, invalidf("email and password are required")
	}
	if role == "" {
		role = entity.RoleOfficer
	}
	if err := checkRole(role); err != nil {
		return nil, err
	}

	phone, err := s.officerPhone(req.Phone)
	if err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	officer, err := s.repo.Create(ctx, repository.CreateOfficerParams{
		Email:        email,
		PasswordHash: string(hashed),
		Role:         role,
		Name:         trimmedOrNil(req.Name),
		Phone:        phone,
	})
	if err != nil {
		return nil, err
	}

	resp := officerResponse(officer)
	return &resp, nil
}

// UpdateOfficer mutates selected officer fields.
func (s *OfficerService) UpdateOfficer(ctx context.Context, id string, req dto.UpdateOfficerRequest) (*dto.OfficerResponse, error) {
	officerID, err := uuid.Parse(id)
	if err != nil {
		return nil, invalidf("invalid officer id")
	}

	var params repository.UpdateOfficerParams

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email == "" {
			return nil, invalidf("email cannot be empty")
		}
		params.Email = &email
	}

	if req.Role != nil {
		role := strings.ToLower(strings.TrimSpace(*req.Role))
		if err := checkRole(role); err != nil {
			return nil, err
		}
		params.Role = &role
	}

	if req.Password != nil {
		if strings.TrimSpace(*req.Password) == "" {
			return nil, invalidf("password cannot be empty")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		pwd := string(hashed)
		params.PasswordHash = &pwd
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		params.Name = &name
	}

	if req.Phone != nil {
		phone, err := s.officerPhone(req.Phone)
		if err != nil {
			return nil, err
		}
		if phone == nil {
			empty := ""
			phone = &empty
		}
		params.Phone = phone
	}

	officer, err := s.repo.Update(ctx, officerID, params)
	if err != nil {
		return nil, err
	}

	resp := officerResponse(officer)
	return &resp, nil
}

// DeleteOfficer removes an officer by id.
func (s *OfficerService) DeleteOfficer(ctx context.Context, id string) error {
	officerID, err := uuid.Parse(id)
	if err != nil {
		return invalidf("invalid officer id")
	}
	return s.repo.Delete(ctx, officerID)
}

// OfficerPhone returns the alert phone of the officer with the given id, or "" when
// the id is malformed, the officer is unknown or has no phone.
func (s *OfficerService) OfficerPhone(ctx context.Context, id string) (string, error) {
	officerID, err := uuid.Parse(id)
	if err != nil {
		return "", nil
	}
	officer, err := s.repo.FindByID(ctx, officerID)
	if errors.Is(err, repository.ErrOfficerNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("find officer: %w", err)
	}
	return strings.TrimSpace(entity.Value(officer.Phone)), nil
}

// officerPhone normalizes an optional WhatsApp number. A blank value clears it.
func (s *OfficerService) officerPhone(raw *string) (*string, error) {
	value := trimmedOrNil(raw)
	if value == nil {
		return nil, nil
	}
	normalized := s.contacts.NormalizePhone(*value)
	if normalized == "" {
		return nil, invalidf("phone %q is not a valid number", *value)
	}
	return &normalized, nil
}

func checkRole(role string) error {
	if role != entity.RoleAdmin && role != entity.RoleOfficer {
		return invalidf("role must be %s or %s", entity.RoleAdmin, entity.RoleOfficer)
	}
	return nil
}

func officerResponse(o *entity.Officer) dto.OfficerResponse {
	return dto.OfficerResponse{
		ID:    o.ID.String(),
		Email: o.Email,
		Role:  o.Role,
		Name:  o.Name,
		Phone: o.Phone,
	}
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
