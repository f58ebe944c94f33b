package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/octobees/lead-intel/internal/entity"
	"github.com/octobees/lead-intel/internal/repository"
	"github.com/octobees/lead-intel/internal/service"
)

func TestOfficesHandler_List(t *testing.T) {
	e := newTestEcho()
	req, rec := jsonRequest(t, http.MethodGet, "/offices?limit=1", nil)
	c := e.NewContext(req, rec)

	next := 1
	items := &stubItemsRepo{
		getAll: func(ctx context.Context, collection string, filters []repository.Filter, opts repository.ListOptions) (repository.Page, error) {
			if collection != repository.CollectionOffices || opts.Limit != 1 {
				t.Fatalf("unexpected query: %s %+v", collection, opts)
			}
			raw, _ := json.Marshal(entity.RegionalOffice{ID: "off-1", OfficeName: stringPtr("Mumbai HQ")})
			return repository.Page{Items: []json.RawMessage{raw}, HasNext: true, NextSkip: &next}, nil
		},
	}

	_ = NewOfficesHandler(service.NewOfficesService(items, nil)).List(c)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var page officePage
	decodeResponse(t, rec, &page)
	if len(page.Items) != 1 || !page.HasNext || page.NextSkip == nil || *page.NextSkip != 1 {
		t.Fatalf("unexpected page: %+v", page)
	}
}

func TestOfficesHandler_Create(t *testing.T) {
	e := newTestEcho()

	t.Run("missing name", func(t *testing.T) {
		req, rec := jsonRequest(t, http.MethodPost, "/offices", map[string]any{"city": "Pune"})
		c := e.NewContext(req, rec)

		_ = NewOfficesHandler(service.NewOfficesService(&stubItemsRepo{}, nil)).Create(c)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		req, rec := jsonRequest(t, http.MethodPost, "/offices", map[string]any{
			"officeName":    "Pune Branch",
			"stateProvince": "Maharashtra",
			"contactPhone":  "098201 23456",
		})
		c := e.NewContext(req, rec)

		_ = NewOfficesHandler(service.NewOfficesService(&stubItemsRepo{}, service.NewContactNormalizer("IN"))).Create(c)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
		}

		var office entity.RegionalOffice
		decodeResponse(t, rec, &office)
		if entity.Value(office.ContactPhone) != "+919820123456" {
			t.Fatalf("unexpected phone: %s", entity.Value(office.ContactPhone))
		}
	})
}
