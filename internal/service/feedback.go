package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/octobees/lead-intel/internal/dto"
	"github.com/octobees/lead-intel/internal/entity"
	"github.com/octobees/lead-intel/internal/repository"
)

const feedbackListLimit = repository.MaxLimit

// Analysis is the root cause analysis derived from an officer's verdict.
type Analysis struct {
	RootCauseAnalysis string
	WeightAdjustment  string
	RevisedReasonCode string
}

// FeedbackService records officer verdicts on leads and analyses them.
type FeedbackService struct {
	feedback *repository.Collection[entity.Feedback]
	leads    *repository.Collection[entity.Lead]
	now      func() time.Time
}

// NewFeedbackService builds a FeedbackService.
func NewFeedbackService(items repository.ItemsRepository) *FeedbackService {
	return &FeedbackService{
		feedback: repository.NewCollection[entity.Feedback](items, repository.CollectionFeedback),
		leads:    repository.NewCollection[entity.Lead](items, repository.CollectionLeads),
		now:      time.Now,
	}
}

// Analyze maps an action and the officer's notes to a root cause and a
// suggested weight adjustment.
func Analyze(action, notes string) (Analysis, error) {
	action = strings.ToLower(strings.TrimSpace(action))
	if strings.TrimSpace(notes) == "" {
		return Analysis{}, invalidf("officerNotes is required")
	}
	lowered := strings.ToLower(notes)

	switch action {
	case entity.ActionRejected:
		switch {
		case strings.Contains(lowered, "wrong product"):
			return Analysis{
				RootCauseAnalysis: "Product Mapping Error: Incorrect industry context mapping. The signal was misinterpreted for this industry vertical.",
				WeightAdjustment:  "Reduce Product Mapping confidence weight by 15% for similar industry signals.",
				RevisedReasonCode: "INDUSTRY_CONTEXT_MISMATCH",
			}, nil
		case strings.Contains(lowered, "already has"):
			return Analysis{
				RootCauseAnalysis: "Entity Resolution Error: Lead already has existing contract. Freshness signal was not properly evaluated.",
				WeightAdjustment:  "Increase Freshness weight by 20% to filter out existing customers.",
				RevisedReasonCode: "EXISTING_CUSTOMER",
			}, nil
		default:
			return Analysis{
				RootCauseAnalysis: "Signal Confidence Issue: The lead signal confidence was overestimated for this market context.",
				WeightAdjustment:  "Reduce Intent weight by 10% for similar market conditions.",
				RevisedReasonCode: "LOW_MARKET_FIT",
			}, nil
		}
	case entity.ActionAccepted:
		return Analysis{
			RootCauseAnalysis: "Lead Quality Confirmed: The inference engine correctly identified this opportunity.",
			WeightAdjustment:  "Increase confidence weights for similar signals by 5%.",
			RevisedReasonCode: "CONFIRMED_OPPORTUNITY",
		}, nil
	case entity.ActionConverted:
		return Analysis{
			RootCauseAnalysis: "High-Value Lead: Successfully converted. Signal inference was accurate and timely.",
			WeightAdjustment:  "Increase all relevant weights by 10% - this is a successful pattern.",
			RevisedReasonCode: "SUCCESSFUL_CONVERSION",
		}, nil
	default:
		return Analysis{}, invalidf("salesOfficerAction must be one of %s, %s, %s", entity.ActionAccepted, entity.ActionRejected, entity.ActionConverted)
	}
}

// Submit analyses the verdict on leadID and stores it.
func (s *FeedbackService) Submit(ctx context.Context, leadID string, req dto.SubmitFeedbackRequest) (*entity.Feedback, error) {
	analysis, err := Analyze(req.Action, req.Notes)
	if err != nil {
		return nil, err
	}

	lead, err := s.leads.Get(ctx, leadID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	record := entity.Feedback{
		ID:                 uuid.NewString(),
		LeadID:             lead.ID,
		OriginalInference:  entity.ValueOr(lead.ProductRecommendations, "Unknown Product"),
		SalesOfficerAction: strings.ToLower(strings.TrimSpace(req.Action)),
		OfficerNotes:       strings.TrimSpace(req.Notes),
		RootCauseAnalysis:  analysis.RootCauseAnalysis,
		WeightAdjustment:   analysis.WeightAdjustment,
		RevisedReasonCode:  analysis.RevisedReasonCode,
		FeedbackTimestamp:  &now,
	}

	created, err := s.feedback.Create(ctx, record.ID, record)
	if err != nil {
		return nil, fmt.Errorf("store feedback: %w", err)
	}
	return &created, nil
}

// List returns feedback records, optionally restricted to one action. The stats
// always cover every record.
func (s *FeedbackService) List(ctx context.Context, action string) (dto.FeedbackList, error) {
	records, _, err := s.feedback.List(ctx, nil, repository.ListOptions{Limit: feedbackListLimit})
	if err != nil {
		return dto.FeedbackList{}, err
	}

	action = strings.ToLower(strings.TrimSpace(action))
	result := dto.FeedbackList{Items: make([]entity.Feedback, 0, len(records))}
	for _, f := range records {
		result.Stats.Total++
		switch f.SalesOfficerAction {
		case entity.ActionAccepted:
			result.Stats.Accepted++
		case entity.ActionRejected:
			result.Stats.Rejected++
		case entity.ActionConverted:
			result.Stats.Converted++
		}
		if action == "" || action == "all" || f.SalesOfficerAction == action {
			result.Items = append(result.Items, f)
		}
	}
	return result, nil
}

var feedbackCSVHeader = []string{"Lead ID", "Action", "Officer Notes", "Root Cause", "Weight Adjustment", "Reason Code", "Timestamp"}

// ExportCSV writes the feedback records matching action as CSV with every cell quoted.
func (s *FeedbackService) ExportCSV(ctx context.Context, w io.Writer, action string) (int, error) {
	list, err := s.List(ctx, action)
	if err != nil {
		return 0, err
	}

	lines := make([]string, 0, len(list.Items)+1)
	lines = append(lines, quoteRow(feedbackCSVHeader))
	for _, f := range list.Items {
		timestamp := ""
		if f.FeedbackTimestamp != nil {
			timestamp = f.FeedbackTimestamp.UTC().Format("2006-01-02T15:04:05.000Z")
		}
		lines = append(lines, quoteRow([]string{
			f.LeadID,
			f.SalesOfficerAction,
			f.OfficerNotes,
			f.RootCauseAnalysis,
			f.WeightAdjustment,
			f.RevisedReasonCode,
			timestamp,
		}))
	}

	if _, err := io.WriteString(w, strings.Join(lines, "\n")); err != nil {
		return 0, fmt.Errorf("write feedback csv: %w", err)
	}
	return len(list.Items), nil
}

func quoteRow(cells []string) string {
	quoted := make([]string, len(cells))
	for i, cell := range cells {
		quoted[i] = `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}
