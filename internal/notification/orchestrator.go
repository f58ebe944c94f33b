package notification

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/octobees/lead-intel/internal/entity"
	"github.com/octobees/lead-intel/internal/metrics"
)

// State is the terminal state of one notification attempt.
type State string

const (
	StateSent   State = "sent"
	StateFailed State = "failed"
)

// NotifyInput identifies the lead to announce and the officer to alert. A phone
// resolved from OfficerID takes precedence over Phone.
type NotifyInput struct {
	Lead      entity.Lead
	Phone     string
	OfficerID string
	LeadURL   string
}

// RecipientResolver looks up the alert phone of an officer. An unknown officer or
// one without a phone yields an empty string and no error.
type RecipientResolver interface {
	OfficerPhone(ctx context.Context, officerID string) (string, error)
}

// Outcome reports how an attempt ended.
type Outcome struct {
	State   State          `json:"state"`
	Message string         `json:"message"`
	Result  DispatchResult `json:"result"`
}

// Notifier runs one notification attempt.
type Notifier interface {
	Notify(ctx context.Context, in NotifyInput) Outcome
}

// Orchestrator sequences compose, validate and dispatch for a single lead alert.
// It holds no per-attempt state and is safe for concurrent use.
type Orchestrator struct {
	sender     Sender
	recipients RecipientResolver
	log        *zap.SugaredLogger
	now        func() time.Time
}

// OrchestratorOption configures optional orchestrator dependencies.
type OrchestratorOption func(*Orchestrator)

// WithRecipientResolver lets jobs name an officer instead of a phone.
func WithRecipientResolver(r RecipientResolver) OrchestratorOption {
	return func(o *Orchestrator) {
		o.recipients = r
	}
}

// NewOrchestrator wires an orchestrator around sender.
func NewOrchestrator(sender Sender, log *zap.SugaredLogger, opts ...OrchestratorOption) *Orchestrator {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	o := &Orchestrator{sender: sender, log: log, now: time.Now}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Notify composes the alert, validates the recipient and dispatches once.
// Failures are logged for manual follow-up; nothing is retried.
func (o *Orchestrator) Notify(ctx context.Context, in NotifyInput) Outcome {
	message := ComposeLeadAlert(in.Lead, in.LeadURL)
	in.Phone = o.recipient(ctx, in)

	if !IsValidE164(in.Phone) {
		err := validationError("invalid phone number format. Expected E.164 format (e.g., +1234567890), got: %s", in.Phone)
		return o.fail(in, message, Failure(err))
	}
	if o.sender == nil {
		return o.fail(in, message, Failure(&Error{Kind: KindConfiguration, Message: "messaging provider is not configured"}))
	}

	result := o.sender.Send(ctx, NotificationRequest{To: in.Phone, Message: message})
	if !result.Success {
		return o.fail(in, message, result)
	}

	metrics.NotificationsTotal.WithLabelValues(string(StateSent), "").Inc()
	o.log.Infow("lead_alert_sent",
		"phone", in.Phone,
		"lead_id", in.Lead.ID,
		"message_id", result.MessageID,
	)
	return Outcome{State: StateSent, Message: message, Result: result}
}

func (o *Orchestrator) recipient(ctx context.Context, in NotifyInput) string {
	if in.OfficerID == "" || o.recipients == nil {
		return in.Phone
	}
	phone, err := o.recipients.OfficerPhone(ctx, in.OfficerID)
	if err != nil {
		o.log.Warnw("lead_alert_recipient_lookup_failed",
			"officer_id", in.OfficerID,
			"lead_id", in.Lead.ID,
			"error", err,
		)
		return in.Phone
	}
	if phone == "" {
		return in.Phone
	}
	return phone
}

func (o *Orchestrator) fail(in NotifyInput, message string, result DispatchResult) Outcome {
	metrics.NotificationsTotal.WithLabelValues(string(StateFailed), string(result.Kind)).Inc()
	o.log.Warnw("lead_alert_failed",
		"phone", in.Phone,
		"lead_id", in.Lead.ID,
		"company", entity.Value(in.Lead.CompanyName),
		"timestamp", o.now().UTC().Format(time.RFC3339),
		"error", result.Error,
		"error_kind", string(result.Kind),
	)
	return Outcome{State: StateFailed, Message: message, Result: result}
}
