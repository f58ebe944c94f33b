package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/octobees/lead-intel/internal/dto"
	"github.com/octobees/lead-intel/internal/repository"
	"github.com/octobees/lead-intel/internal/service"
)

func newLeadImportHandler(items repository.ItemsRepository) *LeadImportHandler {
	return NewLeadImportHandler(service.NewLeadsService(items))
}

func TestLeadImportHandler_MissingFile(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/admin/leads/import", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	_ = newLeadImportHandler(&stubItemsRepo{}).UploadCSV(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLeadImportHandler_InvalidCSV(t *testing.T) {
	e := echo.New()
	req, rec := multipartRequest(t, "file", "leads.csv", "company,address\nAcme,Main St\n")
	c := e.NewContext(req, rec)

	_ = newLeadImportHandler(&stubItemsRepo{}).UploadCSV(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid csv, got %d", rec.Code)
	}
	if resp := decodeResponse(t, rec, nil); resp.Message != "missing required columns: companyName" {
		t.Fatalf("unexpected message: %q", resp.Message)
	}
}

func TestLeadImportHandler_RepositoryError(t *testing.T) {
	e := echo.New()
	req, rec := multipartRequest(t, "file", "leads.csv", validCSV())
	c := e.NewContext(req, rec)

	handler := newLeadImportHandler(&stubItemsRepo{
		create: func(ctx context.Context, collection, id string, item any) (json.RawMessage, error) {
			return nil, context.DeadlineExceeded
		},
	})

	_ = handler.UploadCSV(c)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestLeadImportHandler_Success(t *testing.T) {
	e := echo.New()
	req, rec := multipartRequest(t, "file", "leads.csv", validCSV())
	c := e.NewContext(req, rec)

	var stored int
	handler := newLeadImportHandler(&stubItemsRepo{
		create: func(ctx context.Context, collection, id string, item any) (json.RawMessage, error) {
			if collection != repository.CollectionLeads {
				t.Fatalf("unexpected collection %s", collection)
			}
			stored++
			return json.Marshal(item)
		},
	})

	_ = handler.UploadCSV(c)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	var summary dto.ImportSummary
	decodeResponse(t, rec, &summary)
	if summary.Inserted != 2 || summary.Skipped != 1 || summary.Total != 3 || stored != 2 {
		t.Fatalf("unexpected summary %+v (stored %d)", summary, stored)
	}
}

func multipartRequest(t *testing.T, field, filename, content string) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/admin/leads/import", body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	return req, httptest.NewRecorder()
}

func validCSV() string {
	return "companyName,industryType,plantLocations,leadScore,trustScore,status\n" +
		"Acme Steel,Steel,\"Pune, Maharashtra\",88,72,hot\n" +
		",Chemicals,Surat,40,50,cold\n" +
		"Blue Dye Works,Textiles,\"Surat, Gujarat\",55,,warm\n"
}
