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

// SourcesService manages the data sources crawled for lead signals.
type SourcesService struct {
	sources  *repository.Collection[entity.Source]
	contacts *ContactNormalizer
}

// NewSourcesService builds a SourcesService.
func NewSourcesService(items repository.ItemsRepository, contacts *ContactNormalizer) *SourcesService {
	if contacts == nil {
		contacts = NewContactNormalizer("")
	}
	return &SourcesService{
		sources:  repository.NewCollection[entity.Source](items, repository.CollectionSources),
		contacts: contacts,
	}
}

// List returns sources ordered by trust score together with the number of
// active sources in the whole collection.
func (s *SourcesService) List(ctx context.Context, filter dto.ListSourcesFilter) (dto.SourcePage, error) {
	var filters []repository.Filter
	if t := strings.TrimSpace(filter.Type); t != "" && !strings.EqualFold(t, "all") {
		filters = append(filters, repository.Eq("sourceType", t))
	}
	switch strings.ToLower(strings.TrimSpace(filter.Status)) {
	case "", "all":
	case "active":
		filters = append(filters, repository.Bool("isActive", true))
	case "inactive":
		filters = append(filters, repository.Bool("isActive", false))
	default:
		return dto.SourcePage{}, invalidf("status must be one of active, inactive, all")
	}

	opts := repository.ListOptions{
		Limit: filter.Limit,
		Skip:  filter.Skip,
		Sort:  &repository.Sort{Field: "trustScore", Numeric: true, Desc: true},
	}
	if q := strings.TrimSpace(filter.Q); q != "" {
		opts.Search = &repository.Search{Fields: []string{"sourceName", "description"}, Term: q}
	}

	sources, info, err := s.sources.List(ctx, filters, opts)
	if err != nil {
		return dto.SourcePage{}, err
	}
	active, err := s.sources.Count(ctx, []repository.Filter{repository.Bool("isActive", true)})
	if err != nil {
		return dto.SourcePage{}, fmt.Errorf("count active sources: %w", err)
	}

	return dto.SourcePage{
		Items:       sources,
		ActiveCount: active,
		HasNext:     info.HasNext,
		NextSkip:    info.NextSkip,
	}, nil
}

// Create registers a new source. New sources are active unless stated otherwise.
func (s *SourcesService) Create(ctx context.Context, req dto.CreateSourceRequest) (*entity.Source, error) {
	name := strings.TrimSpace(req.SourceName)
	if name == "" {
		return nil, invalidf("sourceName is required")
	}
	if err := checkTrust(req.TrustScore); err != nil {
		return nil, err
	}
	link, err := s.contacts.NormalizeSourceURL(req.URL)
	if err != nil {
		return nil, invalidf("%s", err.Error())
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	source := entity.Source{
		ID:          uuid.NewString(),
		SourceName:  &name,
		SourceType:  trimmedOrNil(req.SourceType),
		URL:         &link,
		TrustScore:  req.TrustScore,
		Description: trimmedOrNil(req.Description),
		LastCrawled: req.LastCrawled,
		IsActive:    &active,
	}

	created, err := s.sources.Create(ctx, source.ID, source)
	if err != nil {
		return nil, fmt.Errorf("create source: %w", err)
	}
	return &created, nil
}

// Update applies a partial update to a source.
func (s *SourcesService) Update(ctx context.Context, id string, req dto.UpdateSourceRequest) (*entity.Source, error) {
	if err := checkTrust(req.TrustScore); err != nil {
		return nil, err
	}

	patch := map[string]any{}
	if req.SourceName != nil {
		name := strings.TrimSpace(*req.SourceName)
		if name == "" {
			return nil, invalidf("sourceName cannot be empty")
		}
		patch["sourceName"] = name
	}
	if req.URL != nil {
		link, err := s.contacts.NormalizeSourceURL(*req.URL)
		if err != nil {
			return nil, invalidf("%s", err.Error())
		}
		patch["url"] = link
	}
	if req.SourceType != nil {
		patch["sourceType"] = strings.TrimSpace(*req.SourceType)
	}
	if req.Description != nil {
		patch["description"] = strings.TrimSpace(*req.Description)
	}
	if req.TrustScore != nil {
		patch["trustScore"] = *req.TrustScore
	}
	if req.LastCrawled != nil {
		patch["lastCrawled"] = req.LastCrawled.UTC()
	}
	if req.IsActive != nil {
		patch["isActive"] = *req.IsActive
	}

	source, err := s.sources.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	return &source, nil
}

func checkTrust(trust *float64) error {
	if trust != nil && (*trust < 0 || *trust > 100) {
		return invalidf("trustScore must be between 0 and 100")
	}
	return nil
}
