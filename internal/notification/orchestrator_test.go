package notification

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/octobees/lead-intel/internal/entity"
	"github.com/octobees/lead-intel/internal/metrics"
)

type stubSender struct {
	mu     sync.Mutex
	calls  []NotificationRequest
	result DispatchResult
	send   func(ctx context.Context, req NotificationRequest) DispatchResult
}

func (s *stubSender) Send(ctx context.Context, req NotificationRequest) DispatchResult {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	s.mu.Unlock()
	if s.send != nil {
		return s.send(ctx, req)
	}
	return s.result
}

func (s *stubSender) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func newObservedLogger() (*zap.SugaredLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.InfoLevel)
	return zap.New(core).Sugar(), logs
}

func acmeLead() entity.Lead {
	return entity.Lead{
		ID:                     "abc",
		CompanyName:            strPtr("Acme Oils"),
		LeadScore:              floatPtr(82),
		TrustScore:             floatPtr(90),
		Status:                 strPtr("hot"),
		ProductRecommendations: strPtr("Hexane"),
		ReasonCodes:            strPtr("capacity expansion"),
	}
}

func TestOrchestrator_InvalidPhoneNeverDispatches(t *testing.T) {
	sender := &stubSender{result: DispatchResult{Success: true}}
	log, logs := newObservedLogger()
	orch := NewOrchestrator(sender, log)

	for _, phone := range []string{"", "12345", "+0123", " +14155552671", "+1 415 555 2671"} {
		outcome := orch.Notify(context.Background(), NotifyInput{Lead: acmeLead(), Phone: phone, LeadURL: "u"})
		if outcome.State != StateFailed {
			t.Fatalf("expected failed state for %q, got %s", phone, outcome.State)
		}
		if outcome.Result.Kind != KindValidation {
			t.Fatalf("expected validation kind for %q, got %q", phone, outcome.Result.Kind)
		}
	}
	if sender.callCount() != 0 {
		t.Fatalf("expected sender never called, got %d calls", sender.callCount())
	}
	if got := logs.FilterMessage("lead_alert_failed").Len(); got != 5 {
		t.Fatalf("expected 5 failure logs, got %d", got)
	}
}

func TestOrchestrator_Success(t *testing.T) {
	sender := &stubSender{result: DispatchResult{Success: true, MessageID: "SM1"}}
	log, logs := newObservedLogger()
	orch := NewOrchestrator(sender, log)

	outcome := orch.Notify(context.Background(), NotifyInput{Lead: acmeLead(), Phone: "+919876543210", LeadURL: "http://localhost:3000/leads/abc"})
	if outcome.State != StateSent {
		t.Fatalf("expected sent, got %+v", outcome)
	}
	if sender.callCount() != 1 {
		t.Fatalf("expected one send, got %d", sender.callCount())
	}
	req := sender.calls[0]
	if req.To != "+919876543210" {
		t.Fatalf("unexpected recipient %s", req.To)
	}
	if req.Message != outcome.Message {
		t.Fatalf("expected composed message to be sent")
	}
	if logs.FilterMessage("lead_alert_sent").Len() != 1 {
		t.Fatalf("expected success log")
	}
}

func TestOrchestrator_FailureIsLogged(t *testing.T) {
	sender := &stubSender{result: DispatchResult{Success: false, Error: "Invalid 'To' Phone Number", Kind: KindProvider, StatusCode: 400}}
	log, logs := newObservedLogger()
	orch := NewOrchestrator(sender, log)
	orch.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }

	outcome := orch.Notify(context.Background(), NotifyInput{Lead: acmeLead(), Phone: "+14155552671", LeadURL: "u"})
	if outcome.State != StateFailed {
		t.Fatalf("expected failed state")
	}

	entries := logs.FilterMessage("lead_alert_failed").All()
	if len(entries) != 1 {
		t.Fatalf("expected one failure log, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["phone"] != "+14155552671" || fields["lead_id"] != "abc" || fields["company"] != "Acme Oils" {
		t.Fatalf("unexpected log fields: %v", fields)
	}
	if fields["timestamp"] != "2024-05-01T10:00:00Z" {
		t.Fatalf("unexpected timestamp: %v", fields["timestamp"])
	}
	if fields["error"] != "Invalid 'To' Phone Number" || fields["error_kind"] != "provider" {
		t.Fatalf("unexpected error fields: %v", fields)
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Fatalf("expected warn level, got %s", entries[0].Level)
	}
}

func TestOrchestrator_NoSenderIsConfigurationFailure(t *testing.T) {
	orch := NewOrchestrator(nil, nil)
	outcome := orch.Notify(context.Background(), NotifyInput{Lead: acmeLead(), Phone: "+14155552671"})
	if outcome.State != StateFailed || outcome.Result.Kind != KindConfiguration {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
}

func TestOrchestrator_EndToEndWithProviderStub(t *testing.T) {
	var body string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		body = r.PostForm.Get("Body")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SMabc"}`))
	}))
	defer server.Close()

	client, err := NewTwilioClient(testTwilioConfig(server.URL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	orch := NewOrchestrator(client, nil)

	outcome := orch.Notify(context.Background(), NotifyInput{
		Lead:    acmeLead(),
		Phone:   "+919876543210",
		LeadURL: "http://localhost:3000/leads/abc",
	})
	if outcome.State != StateSent || outcome.Result.MessageID != "SMabc" {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	for _, fragment := range []string{
		"Target: Acme Oils",
		"Need: Hexane (Based on capacity expansion)",
		"Urgency: High 🔴",
		"Confidence Score: 90%",
		"Dossier Link: http://localhost:3000/leads/abc",
		"Next Best Action: Schedule immediate site visit",
	} {
		if !strings.Contains(body, fragment) {
			t.Fatalf("expected %q in delivered body:\n%s", fragment, body)
		}
	}
}

func TestOrchestrator_CountsOutcomes(t *testing.T) {
	sent := metrics.NotificationsTotal.WithLabelValues(string(StateSent), "")
	failed := metrics.NotificationsTotal.WithLabelValues(string(StateFailed), string(KindValidation))
	sentBefore, failedBefore := testutil.ToFloat64(sent), testutil.ToFloat64(failed)

	orch := NewOrchestrator(&stubSender{result: DispatchResult{Success: true, MessageID: "SM1"}}, nil)
	orch.Notify(context.Background(), NotifyInput{Lead: acmeLead(), Phone: "+14155550100"})
	orch.Notify(context.Background(), NotifyInput{Lead: acmeLead(), Phone: "0415"})

	if got := testutil.ToFloat64(sent) - sentBefore; got != 1 {
		t.Fatalf("expected one sent notification counted, got %v", got)
	}
	if got := testutil.ToFloat64(failed) - failedBefore; got != 1 {
		t.Fatalf("expected one failed notification counted, got %v", got)
	}
}

type resolverFunc func(ctx context.Context, officerID string) (string, error)

func (f resolverFunc) OfficerPhone(ctx context.Context, officerID string) (string, error) {
	return f(ctx, officerID)
}

func TestOrchestrator_ResolvesOfficerRecipient(t *testing.T) {
	resolver := resolverFunc(func(ctx context.Context, officerID string) (string, error) {
		switch officerID {
		case "officer-1":
			return "+919876543210", nil
		case "officer-down":
			return "", errors.New("connection reset")
		}
		return "", nil
	})

	tests := map[string]struct {
		in        NotifyInput
		resolver  RecipientResolver
		wantState State
		wantTo    string
		wantLog   string
	}{
		"officer phone wins over fallback": {
			in:        NotifyInput{Phone: "+14155550100", OfficerID: "officer-1"},
			resolver:  resolver,
			wantState: StateSent,
			wantTo:    "+919876543210",
		},
		"unknown officer uses fallback": {
			in:        NotifyInput{Phone: "+14155550100", OfficerID: "officer-2"},
			resolver:  resolver,
			wantState: StateSent,
			wantTo:    "+14155550100",
		},
		"lookup failure uses fallback": {
			in:        NotifyInput{Phone: "+14155550100", OfficerID: "officer-down"},
			resolver:  resolver,
			wantState: StateSent,
			wantTo:    "+14155550100",
			wantLog:   "lead_alert_recipient_lookup_failed",
		},
		"unknown officer without fallback fails validation": {
			in:        NotifyInput{OfficerID: "officer-2"},
			resolver:  resolver,
			wantState: StateFailed,
			wantLog:   "lead_alert_failed",
		},
		"no resolver uses fallback": {
			in:        NotifyInput{Phone: "+14155550100", OfficerID: "officer-1"},
			wantState: StateSent,
			wantTo:    "+14155550100",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			sender := &stubSender{result: DispatchResult{Success: true, MessageID: "SM1"}}
			log, logs := newObservedLogger()
			var opts []OrchestratorOption
			if tt.resolver != nil {
				opts = append(opts, WithRecipientResolver(tt.resolver))
			}
			orch := NewOrchestrator(sender, log, opts...)

			in := tt.in
			in.Lead = acmeLead()
			in.LeadURL = "https://leads.example.com/leads/abc"
			outcome := orch.Notify(context.Background(), in)

			if outcome.State != tt.wantState {
				t.Fatalf("expected %s, got %s (%s)", tt.wantState, outcome.State, outcome.Result.Error)
			}
			if tt.wantTo != "" {
				if sender.callCount() != 1 || sender.calls[0].To != tt.wantTo {
					t.Fatalf("expected one send to %s, got %+v", tt.wantTo, sender.calls)
				}
			} else if sender.callCount() != 0 {
				t.Fatalf("expected no send, got %+v", sender.calls)
			}
			if tt.wantLog != "" && logs.FilterMessage(tt.wantLog).Len() != 1 {
				t.Fatalf("expected %s to be logged, got %v", tt.wantLog, logs.All())
			}
		})
	}
}
