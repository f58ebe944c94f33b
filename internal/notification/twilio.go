package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/octobees/lead-intel/internal/config"
	"github.com/octobees/lead-intel/internal/metrics"
)

// MaxMessageLength is the provider's hard limit on a WhatsApp message body, in characters.
const MaxMessageLength = 4096

const (
	defaultTwilioBaseURL = "https://api.twilio.com"
	defaultSendTimeout   = 15 * time.Second
	maxProviderBody      = 64 << 10
	channelPrefix        = "whatsapp:"
)

// NotificationRequest is a single outbound message.
type NotificationRequest struct {
	To      string `json:"to_phone"`
	Message string `json:"message"`
}

// DispatchResult is the outcome of one dispatch. Failures of every kind converge on Success=false.
type DispatchResult struct {
	Success         bool   `json:"success"`
	MessageID       string `json:"message_id,omitempty"`
	Error           string `json:"error,omitempty"`
	Kind            Kind   `json:"error_kind,omitempty"`
	StatusCode      int    `json:"status_code,omitempty"`
	ProviderPayload string `json:"provider_payload,omitempty"`
}

// Sender submits a message to the messaging provider.
type Sender interface {
	Send(ctx context.Context, req NotificationRequest) DispatchResult
}

// TwilioClient sends WhatsApp messages through the Twilio Messages API.
type TwilioClient struct {
	client     *http.Client
	baseURL    string
	accountSID string
	authToken  string
	from       string
	log        *zap.SugaredLogger
}

// TwilioOption configures optional dependencies.
type TwilioOption func(*TwilioClient)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) TwilioOption {
	return func(c *TwilioClient) {
		if client != nil {
			c.client = client
		}
	}
}

// WithLogger sets the logger used for provider diagnostics.
func WithLogger(log *zap.SugaredLogger) TwilioOption {
	return func(c *TwilioClient) {
		if log != nil {
			c.log = log
		}
	}
}

// NewTwilioClient validates the credentials and builds a client. A missing credential
// yields a configuration error naming every absent value.
func NewTwilioClient(cfg config.TwilioConfig, opts ...TwilioOption) (*TwilioClient, error) {
	if missing := cfg.Missing(); len(missing) > 0 {
		return nil, &Error{
			Kind:    KindConfiguration,
			Message: fmt.Sprintf("missing Twilio configuration: set %s", strings.Join(missing, ", ")),
		}
	}
	if !IsValidE164(cfg.WhatsAppNumber) {
		return nil, &Error{
			Kind:    KindConfiguration,
			Message: fmt.Sprintf("TWILIO_WHATSAPP_NUMBER must be in E.164 format, got %q", cfg.WhatsAppNumber),
		}
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultTwilioBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}

	c := &TwilioClient{
		client:     &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		from:       cfg.WhatsAppNumber,
		log:        zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ValidateRequest checks the recipient and message before anything is sent.
func ValidateRequest(req NotificationRequest) error {
	if req.To == "" || req.Message == "" {
		return validationError("missing required fields: to_phone and message")
	}
	if !IsValidE164(req.To) {
		return validationError("invalid phone number format. Expected E.164 format (e.g., +1234567890), got: %s", req.To)
	}
	if utf8.RuneCountInString(req.Message) > MaxMessageLength {
		return validationError("message exceeds maximum length of %d characters", MaxMessageLength)
	}
	return nil
}

// Send performs exactly one provider call. It never returns an error value: every
// failure is reported through the result.
func (c *TwilioClient) Send(ctx context.Context, req NotificationRequest) DispatchResult {
	if err := ValidateRequest(req); err != nil {
		return Failure(err)
	}

	form := url.Values{}
	form.Set("From", channelPrefix+c.from)
	form.Set("To", channelPrefix+req.To)
	form.Set("Body", req.Message)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, url.PathEscape(c.accountSID))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return Failure(&Error{Kind: KindTransport, Message: "failed to create provider request", Err: err})
	}
	httpReq.SetBasicAuth(c.accountSID, c.authToken)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	metrics.DispatchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.log.Warnw("twilio_request_failed", "error", err)
		return Failure(transportError(err))
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxProviderBody))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		perr := providerError(resp.StatusCode, body)
		c.log.Warnw("twilio_api_error", "status", resp.StatusCode, "error", perr.Message)
		return Failure(perr)
	}

	var payload struct {
		SID string `json:"sid"`
	}
	if len(body) > 0 {
		_ = json.Unmarshal(body, &payload)
	}
	return DispatchResult{Success: true, MessageID: payload.SID}
}

// Failure converts err into a failed dispatch result.
func Failure(err error) DispatchResult {
	result := DispatchResult{Success: false, Error: err.Error()}
	var ne *Error
	if errors.As(err, &ne) {
		result.Kind = ne.Kind
		result.Error = ne.Message
		if ne.Kind == KindTransport && ne.Err != nil {
			result.Error = ne.Err.Error()
		}
		result.StatusCode = ne.StatusCode
		result.ProviderPayload = ne.Payload
	}
	return result
}

func transportError(err error) *Error {
	timeout := errors.Is(err, context.DeadlineExceeded)
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		timeout = true
	}
	msg := "provider request failed"
	if timeout {
		msg = "provider request timed out"
	}
	return &Error{Kind: KindTransport, Message: msg, Timeout: timeout, Err: err}
}

func providerError(status int, body []byte) *Error {
	message := "Failed to send WhatsApp message"
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		message = payload.Message
	} else if raw := strings.TrimSpace(string(body)); raw != "" && err != nil {
		message = raw
	}
	return &Error{
		Kind:       KindProvider,
		Message:    message,
		StatusCode: status,
		Payload:    string(body),
	}
}
