package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/octobees/lead-intel/internal/cache"
	"github.com/octobees/lead-intel/internal/dto"
	"github.com/octobees/lead-intel/internal/entity"
	"github.com/octobees/lead-intel/internal/notification"
	"github.com/octobees/lead-intel/internal/repository"
)

// NotifyOptions controls the alert sent after a lead is created. The recipient is
// Phone when set, otherwise the phone of the officer identified by OfficerID,
// otherwise the configured default recipient. The officer lookup runs with the
// alert job, not during the request.
type NotifyOptions struct {
	Disabled  bool
	Phone     string
	OfficerID string
}

// LeadsService manages leads and triggers lead alerts.
type LeadsService struct {
	leads        *repository.Collection[entity.Lead]
	dispatcher   notification.Dispatcher
	cache        cache.Cache
	contacts     *ContactNormalizer
	baseURL      string
	defaultPhone string
	log          *zap.SugaredLogger
	now          func() time.Time
}

// LeadsOption configures optional dependencies.
type LeadsOption func(*LeadsService)

// WithDispatcher enables lead alerts on creation.
func WithDispatcher(d notification.Dispatcher) LeadsOption {
	return func(s *LeadsService) {
		s.dispatcher = d
	}
}

// WithDefaultRecipient sets the phone alerted when no officer phone is known.
func WithDefaultRecipient(phone string) LeadsOption {
	return func(s *LeadsService) {
		s.defaultPhone = strings.TrimSpace(phone)
	}
}

// WithPublicBaseURL sets the base of the dossier link embedded in alerts.
func WithPublicBaseURL(baseURL string) LeadsOption {
	return func(s *LeadsService) {
		s.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithCache lets writes invalidate cached dashboard aggregates.
func WithCache(c cache.Cache) LeadsOption {
	return func(s *LeadsService) {
		s.cache = c
	}
}

// WithContacts overrides the contact normalizer used for outreach previews.
func WithContacts(n *ContactNormalizer) LeadsOption {
	return func(s *LeadsService) {
		if n != nil {
			s.contacts = n
		}
	}
}

// WithLeadsLogger sets the service logger.
func WithLeadsLogger(log *zap.SugaredLogger) LeadsOption {
	return func(s *LeadsService) {
		if log != nil {
			s.log = log
		}
	}
}

// NewLeadsService wires a leads service over the generic items repository.
func NewLeadsService(items repository.ItemsRepository, opts ...LeadsOption) *LeadsService {
	s := &LeadsService{
		leads:    repository.NewCollection[entity.Lead](items, repository.CollectionLeads),
		contacts: NewContactNormalizer(""),
		log:      zap.NewNop().Sugar(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates and stores a lead, then hands an alert to the dispatcher.
// The alert never affects the returned lead or error.
func (s *LeadsService) Create(ctx context.Context, req dto.CreateLeadRequest, notify NotifyOptions) (*entity.Lead, error) {
	if err := checkScores(req.LeadScore, req.TrustScore); err != nil {
		return nil, err
	}

	lead := entity.Lead{
		ID:                     uuid.NewString(),
		CompanyName:            trimmedOrNil(req.CompanyName),
		IndustryType:           trimmedOrNil(req.IndustryType),
		PlantLocations:         trimmedOrNil(req.PlantLocations),
		ContactInformation:     trimmedOrNil(req.ContactInformation),
		LeadScore:              req.LeadScore,
		TrustScore:             req.TrustScore,
		Status:                 trimmedOrNil(req.Status),
		ProductRecommendations: trimmedOrNil(req.ProductRecommendations),
		ReasonCodes:            trimmedOrNil(req.ReasonCodes),
		LastUpdated:            req.LastUpdated,
	}
	if lead.LastUpdated == nil {
		now := s.now().UTC()
		lead.LastUpdated = &now
	} else {
		stamp := lead.LastUpdated.UTC()
		lead.LastUpdated = &stamp
	}

	created, err := s.leads.Create(ctx, lead.ID, lead)
	if err != nil {
		return nil, fmt.Errorf("create lead: %w", err)
	}
	s.invalidateAggregates(ctx)

	if !notify.Disabled {
		s.alert(ctx, created, notify)
	}
	return &created, nil
}

// Get returns a lead by id.
func (s *LeadsService) Get(ctx context.Context, id string) (*entity.Lead, error) {
	lead, err := s.leads.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

// Update applies a partial update and bumps lastUpdated.
func (s *LeadsService) Update(ctx context.Context, id string, req dto.UpdateLeadRequest) (*entity.Lead, error) {
	if err := checkScores(req.LeadScore, req.TrustScore); err != nil {
		return nil, err
	}

	patch := map[string]any{
		"lastUpdated": s.now().UTC(),
	}
	setText := func(key string, value *string) {
		if value != nil {
			patch[key] = strings.TrimSpace(*value)
		}
	}
	setText("companyName", req.CompanyName)
	setText("industryType", req.IndustryType)
	setText("plantLocations", req.PlantLocations)
	setText("contactInformation", req.ContactInformation)
	setText("status", req.Status)
	setText("productRecommendations", req.ProductRecommendations)
	setText("reasonCodes", req.ReasonCodes)
	if req.LeadScore != nil {
		patch["leadScore"] = *req.LeadScore
	}
	if req.TrustScore != nil {
		patch["trustScore"] = *req.TrustScore
	}

	lead, err := s.leads.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.invalidateAggregates(ctx)
	return &lead, nil
}

// List returns one page of leads matching filter.
func (s *LeadsService) List(ctx context.Context, filter dto.ListLeadsFilter) (dto.LeadPage, error) {
	var filters []repository.Filter
	if status := strings.TrimSpace(filter.Status); status != "" && !strings.EqualFold(status, "all") {
		filters = append(filters, repository.Eq("status", status))
	}

	opts := repository.ListOptions{Limit: filter.Limit, Skip: filter.Skip}
	if q := strings.TrimSpace(filter.Q); q != "" {
		opts.Search = &repository.Search{Fields: []string{"companyName", "industryType"}, Term: q}
	}

	switch strings.ToLower(strings.TrimSpace(filter.Sort)) {
	case "", dto.SortScore:
		opts.Sort = &repository.Sort{Field: "leadScore", Numeric: true, Desc: true}
	case dto.SortTrust:
		opts.Sort = &repository.Sort{Field: "trustScore", Numeric: true, Desc: true}
	case dto.SortDate:
		opts.Sort = &repository.Sort{Field: "lastUpdated", Time: true, Desc: true}
	default:
		return dto.LeadPage{}, invalidf("sort must be one of %s, %s, %s", dto.SortScore, dto.SortTrust, dto.SortDate)
	}

	leads, info, err := s.leads.List(ctx, filters, opts)
	if err != nil {
		return dto.LeadPage{}, err
	}
	return dto.LeadPage{Items: leads, HasNext: info.HasNext, NextSkip: info.NextSkip}, nil
}

// Outreach previews the alert message for a lead with a click-to-chat link and
// the phone numbers found in its contact information.
func (s *LeadsService) Outreach(ctx context.Context, id string) (*dto.OutreachResponse, error) {
	lead, err := s.leads.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	message := notification.ComposeLeadAlert(lead, s.leadURL(lead.ID))
	return &dto.OutreachResponse{
		Message:      message,
		Link:         notification.OutreachLink(message),
		ContactPhone: s.contacts.ExtractPhones(entity.Value(lead.ContactInformation)),
	}, nil
}

var leadCSVColumns = map[string]string{
	"companyname":            "companyName",
	"industrytype":           "industryType",
	"plantlocations":         "plantLocations",
	"contactinformation":     "contactInformation",
	"leadscore":              "leadScore",
	"trustscore":             "trustScore",
	"status":                 "status",
	"productrecommendations": "productRecommendations",
	"reasoncodes":            "reasonCodes",
}

// ImportCSV stores one lead per CSV row. Rows without a company name are skipped;
// an invalid score rejects the whole file before anything is stored. Imported
// leads do not trigger alerts.
func (s *LeadsService) ImportCSV(ctx context.Context, r io.Reader) (dto.ImportSummary, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return dto.ImportSummary{}, CSVValidationError{Message: "csv file is empty"}
		}
		return dto.ImportSummary{}, fmt.Errorf("read csv header: %w", err)
	}

	index := make(map[string]int)
	for i, col := range header {
		key := strings.ToLower(strings.TrimSpace(col))
		if _, known := leadCSVColumns[key]; known {
			index[leadCSVColumns[key]] = i
		}
	}
	if _, ok := index["companyName"]; !ok {
		return dto.ImportSummary{}, CSVValidationError{Message: "missing required columns: companyName"}
	}

	var (
		leads   []entity.Lead
		summary dto.ImportSummary
		rowNum  = 1
		now     = s.now().UTC()
	)

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return dto.ImportSummary{}, fmt.Errorf("read csv row: %w", err)
		}
		rowNum++
		summary.Total++

		cell := func(field string) *string {
			i, ok := index[field]
			if !ok || i >= len(row) {
				return nil
			}
			return normalizeString(row[i])
		}

		company := cell("companyName")
		if company == nil {
			summary.Skipped++
			continue
		}

		leadScore, err := parseScore(cell("leadScore"))
		if err != nil {
			return dto.ImportSummary{}, CSVValidationError{Message: fmt.Sprintf("invalid leadScore value on row %d", rowNum)}
		}
		trustScore, err := parseScore(cell("trustScore"))
		if err != nil {
			return dto.ImportSummary{}, CSVValidationError{Message: fmt.Sprintf("invalid trustScore value on row %d", rowNum)}
		}

		leads = append(leads, entity.Lead{
			ID:                     uuid.NewString(),
			CompanyName:            company,
			IndustryType:           cell("industryType"),
			PlantLocations:         cell("plantLocations"),
			ContactInformation:     cell("contactInformation"),
			LeadScore:              leadScore,
			TrustScore:             trustScore,
			Status:                 cell("status"),
			ProductRecommendations: cell("productRecommendations"),
			ReasonCodes:            cell("reasonCodes"),
			LastUpdated:            &now,
		})
	}

	for _, lead := range leads {
		if _, err := s.leads.Create(ctx, lead.ID, lead); err != nil {
			return summary, fmt.Errorf("import lead %q: %w", entity.Value(lead.CompanyName), err)
		}
		summary.Inserted++
	}
	if summary.Inserted > 0 {
		s.invalidateAggregates(ctx)
	}
	return summary, nil
}

func (s *LeadsService) alert(ctx context.Context, lead entity.Lead, notify NotifyOptions) {
	if s.dispatcher == nil {
		return
	}
	job := notification.Job{
		Lead:    lead,
		Phone:   s.defaultPhone,
		LeadURL: s.leadURL(lead.ID),
	}
	if phone := strings.TrimSpace(notify.Phone); phone != "" {
		job.Phone = phone
	} else {
		job.OfficerID = notify.OfficerID
	}
	if job.Phone == "" && job.OfficerID == "" {
		s.log.Infow("lead_alert_skipped", "lead_id", lead.ID, "reason", "no recipient")
		return
	}
	s.dispatcher.Dispatch(ctx, job)
}

func (s *LeadsService) leadURL(id string) string {
	return s.baseURL + "/leads/" + id
}

func (s *LeadsService) invalidateAggregates(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, dashboardCacheKey, statesCacheKey); err != nil {
		s.log.Warnw("dashboard_cache_invalidate_failed", "error", err)
	}
}

func checkScores(lead, trust *float64) error {
	if lead != nil && (*lead < 0 || *lead > 100) {
		return invalidf("leadScore must be between 0 and 100")
	}
	if trust != nil && (*trust < 0 || *trust > 100) {
		return invalidf("trustScore must be between 0 and 100")
	}
	return nil
}

func parseScore(value *string) (*float64, error) {
	if value == nil {
		return nil, nil
	}
	f, err := strconv.ParseFloat(*value, 64)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(f) || f < 0 || f > 100 {
		return nil, fmt.Errorf("score %v out of range", f)
	}
	return &f, nil
}

func normalizeString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
