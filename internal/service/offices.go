package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/octobees/lead-intel/internal/dto"
	"github.com/octobees/lead-intel/internal/entity"
	"github.com/octobees/lead-intel/internal/repository"
)

// OfficesService manages regional sales offices.
type OfficesService struct {
	offices  *repository.Collection[entity.RegionalOffice]
	contacts *ContactNormalizer
}

// NewOfficesService builds an OfficesService.
func NewOfficesService(items repository.ItemsRepository, contacts *ContactNormalizer) *OfficesService {
	if contacts == nil {
		contacts = NewContactNormalizer("")
	}
	return &OfficesService{
		offices:  repository.NewCollection[entity.RegionalOffice](items, repository.CollectionOffices),
		contacts: contacts,
	}
}

// List returns offices ordered by name.
func (s *OfficesService) List(ctx context.Context, limit, skip int) ([]entity.RegionalOffice, repository.PageInfo, error) {
	return s.offices.List(ctx, nil, repository.ListOptions{
		Limit: limit,
		Skip:  skip,
		Sort:  &repository.Sort{Field: "officeName"},
	})
}

// Create stores a regional office. The contact phone is kept in E.164 form when
// it parses, and verbatim otherwise.
func (s *OfficesService) Create(ctx context.Context, req dto.CreateOfficeRequest) (*entity.RegionalOffice, error) {
	name := strings.TrimSpace(req.OfficeName)
	if name == "" {
		return nil, invalidf("officeName is required")
	}

	office := entity.RegionalOffice{
		ID:               uuid.NewString(),
		OfficeName:       &name,
		RegionIdentifier: trimmedOrNil(req.RegionIdentifier),
		Address:          trimmedOrNil(req.Address),
		City:             trimmedOrNil(req.City),
		StateProvince:    trimmedOrNil(req.StateProvince),
		ContactPerson:    trimmedOrNil(req.ContactPerson),
		ContactPhone:     trimmedOrNil(req.ContactPhone),
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
	}

	if email := trimmedOrNil(req.ContactEmail); email != nil {
		normalized, ok := s.contacts.NormalizeEmail(ctx, *email)
		if !ok {
			return nil, invalidf("contactEmail %q is not a valid address", *email)
		}
		office.ContactEmail = &normalized
	}
	if office.ContactPhone != nil {
		if normalized := s.contacts.NormalizePhone(*office.ContactPhone); normalized != "" {
			office.ContactPhone = &normalized
		}
	}

	created, err := s.offices.Create(ctx, office.ID, office)
	if err != nil {
		return nil, fmt.Errorf("create office: %w", err)
	}
	return &created, nil
}
