package entity

import "time"

// Sales officer actions recorded in the feedback loop.
const (
	ActionAccepted  = "accepted"
	ActionRejected  = "rejected"
	ActionConverted = "converted"
)

// Feedback captures a sales officer's verdict on a lead and the resulting analysis.
type Feedback struct {
	ID                 string     `json:"_id"`
	CreatedDate        *time.Time `json:"_createdDate,omitempty"`
	UpdatedDate        *time.Time `json:"_updatedDate,omitempty"`
	LeadID             string     `json:"leadId"`
	OriginalInference  string     `json:"originalInference,omitempty"`
	SalesOfficerAction string     `json:"salesOfficerAction"`
	OfficerNotes       string     `json:"officerNotes"`
	RootCauseAnalysis  string     `json:"rootCauseAnalysis,omitempty"`
	WeightAdjustment   string     `json:"weightAdjustment,omitempty"`
	RevisedReasonCode  string     `json:"revisedReasonCode,omitempty"`
	FeedbackTimestamp  *time.Time `json:"feedbackTimestamp,omitempty"`
}
