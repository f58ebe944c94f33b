package dto

import "github.com/octobees/lead-intel/internal/entity"

// SubmitFeedbackRequest is an officer's verdict on a lead.
type SubmitFeedbackRequest struct {
	Action string `json:"salesOfficerAction" validate:"required,oneof=accepted rejected converted"`
	Notes  string `json:"officerNotes" validate:"required"`
}

// FeedbackStats counts feedback records per action.
type FeedbackStats struct {
	Total     int `json:"total"`
	Accepted  int `json:"accepted"`
	Rejected  int `json:"rejected"`
	Converted int `json:"converted"`
}

// FeedbackList is the feedback listing with its counters.
type FeedbackList struct {
	Items []entity.Feedback `json:"items"`
	Stats FeedbackStats     `json:"stats"`
}
