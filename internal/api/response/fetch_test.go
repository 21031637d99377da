package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/formlab/formgen/internal/api/response"
	"github.com/stretchr/testify/assert"
)

func requestWithDest(dest string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/live/abc", nil)
	if dest != "" {
		r.Header.Set("Sec-Fetch-Dest", dest)
	}
	return r
}

func TestFetchContextFrom(t *testing.T) {
	tests := []struct {
		dest     string
		expected response.FetchContext
	}{
		{"document", response.Document},
		{"iframe", response.Embedded},
		{"frame", response.Embedded},
		{"embed", response.Embedded},
		{"empty", response.Programmatic},
		{"", response.Programmatic},
		{"script", response.Programmatic},
	}

	for _, tt := range tests {
		t.Run("dest="+tt.dest, func(t *testing.T) {
			got := response.FetchContextFrom(requestWithDest(tt.dest))
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDeny_ShapesByFetchContext(t *testing.T) {
	t.Run("programmatic gets JSON", func(t *testing.T) {
		w := httptest.NewRecorder()
		response.Deny(w, requestWithDest(""), http.StatusNotFound, "page not found")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

		var body struct {
			Success bool   `json:"success"`
			Error   string `json:"error"`
		}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.False(t, body.Success)
		assert.Equal(t, "page not found", body.Error)
	})

	t.Run("document gets full page", func(t *testing.T) {
		w := httptest.NewRecorder()
		response.Deny(w, requestWithDest("document"), http.StatusNotFound, "page not found")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, w.Body.String(), "<!DOCTYPE html>")
		assert.Contains(t, w.Body.String(), "Page not found")
	})

	t.Run("embedded gets frame page", func(t *testing.T) {
		w := httptest.NewRecorder()
		response.Deny(w, requestWithDest("iframe"), http.StatusUnauthorized, "you need to sign in")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, w.Body.String(), "you need to sign in")
		// The frame variant stays minimal.
		assert.NotContains(t, w.Body.String(), "govuk-main-wrapper")
	})

	t.Run("same denial differs only in shape", func(t *testing.T) {
		for _, dest := range []string{"", "document", "iframe"} {
			w := httptest.NewRecorder()
			response.Deny(w, requestWithDest(dest), http.StatusForbidden, "your account is deactivated")
			assert.Equal(t, http.StatusForbidden, w.Code, "dest=%q", dest)
		}
	})
}

func TestPasswordChallenge(t *testing.T) {
	t.Run("document gets password form", func(t *testing.T) {
		w := httptest.NewRecorder()
		response.PasswordChallenge(w, requestWithDest("document"), "65b2f0a1d4c3b2a190807061")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, `action="/live/65b2f0a1d4c3b2a190807061/password"`)
		assert.Contains(t, body, `type="password"`)
	})

	t.Run("programmatic gets challenge code", func(t *testing.T) {
		w := httptest.NewRecorder()
		response.PasswordChallenge(w, requestWithDest(""), "65b2f0a1d4c3b2a190807061")

		assert.Equal(t, http.StatusUnauthorized, w.Code)

		var body struct {
			Error map[string]string `json:"error"`
		}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "password_required", body.Error["code"])
		assert.Equal(t, "65b2f0a1d4c3b2a190807061", body.Error["prototype_id"])
	})
}

func TestJSONEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	response.OK(w, map[string]string{"hello": "world"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `"success":true`))
	assert.True(t, strings.Contains(w.Body.String(), `"hello":"world"`))
}
