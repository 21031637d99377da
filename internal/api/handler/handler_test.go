package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/formlab/formgen/internal/api/handler"
	"github.com/formlab/formgen/internal/api/middleware"
	"github.com/formlab/formgen/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestHealthCheck(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	handler.HealthCheck(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response["success"] != true {
		t.Error("expected success to be true")
	}

	data, ok := response["data"].(map[string]any)
	if !ok {
		t.Fatal("expected data to be a map")
	}

	if data["status"] != "ok" {
		t.Errorf("expected status 'ok', got %v", data["status"])
	}
}

func livePrototype() *domain.Prototype {
	return &domain.Prototype{
		ID:         primitive.NewObjectID(),
		LivePublic: true,
		Definition: domain.FormDefinition{
			Title: "Apply for a permit",
			Pages: []domain.FormPage{
				{
					Title: "Your details",
					Fields: []domain.FormField{
						{Name: "full-name", Type: domain.FieldText, Label: "What is your full name?", Required: true},
						{Name: "contact", Type: domain.FieldRadios, Label: "How should we contact you?", Options: []string{"Email", "Phone"}},
					},
				},
			},
		},
	}
}

func TestLiveHandler_View(t *testing.T) {
	h := handler.NewLiveHandler(nil, "formgen_session", time.Hour, false)
	prototype := livePrototype()

	withPrototype := func(r *http.Request) *http.Request {
		rc := &middleware.RequestContext{Prototype: prototype}
		return r.WithContext(middleware.WithRequestContext(r.Context(), rc))
	}

	t.Run("document gets rendered form", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/live/"+prototype.ID.Hex(), nil)
		req.Header.Set("Sec-Fetch-Dest", "document")
		rec := httptest.NewRecorder()

		h.View(rec, withPrototype(req))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		body := rec.Body.String()
		for _, want := range []string{"Apply for a permit", "What is your full name?", `type="radio"`, `name="full-name"`} {
			if !strings.Contains(body, want) {
				t.Errorf("rendered form should contain %q", want)
			}
		}
	})

	t.Run("programmatic gets definition JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/live/"+prototype.ID.Hex(), nil)
		rec := httptest.NewRecorder()

		h.View(rec, withPrototype(req))

		var response struct {
			Success bool                  `json:"success"`
			Data    domain.FormDefinition `json:"data"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if !response.Success {
			t.Error("expected success to be true")
		}
		if response.Data.Title != "Apply for a permit" {
			t.Errorf("unexpected title %q", response.Data.Title)
		}
	})
}
