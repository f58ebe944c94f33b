package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/octobees/lead-intel/internal/entity"
	"github.com/octobees/lead-intel/internal/notification"
	"github.com/octobees/lead-intel/internal/repository"
)

type stubOfficersRepo struct {
	findByEmail func(ctx context.Context, email string) (*entity.Officer, error)
	findByID    func(ctx context.Context, id uuid.UUID) (*entity.Officer, error)
	create      func(ctx context.Context, params repository.CreateOfficerParams) (*entity.Officer, error)
	list        func(ctx context.Context) ([]entity.Officer, error)
	update      func(ctx context.Context, id uuid.UUID, params repository.UpdateOfficerParams) (*entity.Officer, error)
	delete      func(ctx context.Context, id uuid.UUID) error
}

func (s *stubOfficersRepo) FindByEmail(ctx context.Context, email string) (*entity.Officer, error) {
	if s.findByEmail != nil {
		return s.findByEmail(ctx, email)
	}
	return nil, errors.New("not implemented")
}

func (s *stubOfficersRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Officer, error) {
	if s.findByID != nil {
		return s.findByID(ctx, id)
	}
	return nil, repository.ErrOfficerNotFound
}

func (s *stubOfficersRepo) Create(ctx context.Context, params repository.CreateOfficerParams) (*entity.Officer, error) {
	if s.create != nil {
		return s.create(ctx, params)
	}
	return nil, errors.New("not implemented")
}

func (s *stubOfficersRepo) List(ctx context.Context) ([]entity.Officer, error) {
	if s.list != nil {
		return s.list(ctx)
	}
	return nil, errors.New("not implemented")
}

func (s *stubOfficersRepo) Update(ctx context.Context, id uuid.UUID, params repository.UpdateOfficerParams) (*entity.Officer, error) {
	if s.update != nil {
		return s.update(ctx, id, params)
	}
	return nil, errors.New("not implemented")
}

func (s *stubOfficersRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if s.delete != nil {
		return s.delete(ctx, id)
	}
	return errors.New("not implemented")
}

type stubItemsRepo struct {
	getAll  func(ctx context.Context, collection string, filters []repository.Filter, opts repository.ListOptions) (repository.Page, error)
	count   func(ctx context.Context, collection string, filters []repository.Filter) (int, error)
	getByID func(ctx context.Context, collection, id string) (json.RawMessage, error)
	create  func(ctx context.Context, collection, id string, item any) (json.RawMessage, error)
	update  func(ctx context.Context, collection, id string, partial any) (json.RawMessage, error)
}

func (s *stubItemsRepo) GetAll(ctx context.Context, collection string, filters []repository.Filter, opts repository.ListOptions) (repository.Page, error) {
	if s.getAll != nil {
		return s.getAll(ctx, collection, filters, opts)
	}
	return repository.Page{}, nil
}

func (s *stubItemsRepo) Count(ctx context.Context, collection string, filters []repository.Filter) (int, error) {
	if s.count != nil {
		return s.count(ctx, collection, filters)
	}
	return 0, nil
}

func (s *stubItemsRepo) GetByID(ctx context.Context, collection, id string) (json.RawMessage, error) {
	if s.getByID != nil {
		return s.getByID(ctx, collection, id)
	}
	return nil, repository.ErrItemNotFound
}

func (s *stubItemsRepo) Create(ctx context.Context, collection, id string, item any) (json.RawMessage, error) {
	if s.create != nil {
		return s.create(ctx, collection, id, item)
	}
	return json.Marshal(item)
}

func (s *stubItemsRepo) Update(ctx context.Context, collection, id string, partial any) (json.RawMessage, error) {
	if s.update != nil {
		return s.update(ctx, collection, id, partial)
	}
	return nil, repository.ErrItemNotFound
}

type recordingDispatcher struct {
	mu   sync.Mutex
	jobs []notification.Job
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, job notification.Job) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.jobs = append(d.jobs, job)
}

type stubSender struct {
	send func(ctx context.Context, req notification.NotificationRequest) notification.DispatchResult
}

func (s *stubSender) Send(ctx context.Context, req notification.NotificationRequest) notification.DispatchResult {
	return s.send(ctx, req)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(t *testing.T, method, target string, payload any) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	var body []byte
	switch v := payload.(type) {
	case string:
		body = []byte(v)
	case nil:
	default:
		var err error
		if body, err = json.Marshal(v); err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req, httptest.NewRecorder()
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder, data any) APIResponse {
	t.Helper()
	var envelope struct {
		Status  string          `json:"status"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode response: %v (%s)", err, rec.Body.String())
	}
	if data != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, data); err != nil {
			t.Fatalf("failed to decode data: %v", err)
		}
	}
	return APIResponse{Status: envelope.Status, Message: envelope.Message}
}

func stringPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }
