package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/formlab/formgen/internal/domain"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func serveWith(rc *RequestContext, guard func(http.Handler) http.Handler, r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	guard(next).ServeHTTP(w, r.WithContext(WithRequestContext(r.Context(), rc)))
	return w
}

func TestRequireAdmin(t *testing.T) {
	m := &AuthMiddleware{}

	t.Run("admin passes", func(t *testing.T) {
		rc := &RequestContext{User: &domain.User{ID: primitive.NewObjectID(), IsAdmin: true}}
		w := serveWith(rc, m.RequireAdmin, httptest.NewRequest(http.MethodGet, "/admin/users", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("non-admin sees not found", func(t *testing.T) {
		rc := &RequestContext{User: &domain.User{ID: primitive.NewObjectID()}}
		w := serveWith(rc, m.RequireAdmin, httptest.NewRequest(http.MethodGet, "/admin/users", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("missing user sees not found", func(t *testing.T) {
		w := serveWith(&RequestContext{}, m.RequireAdmin, httptest.NewRequest(http.MethodGet, "/admin/users", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRequireAnonymous(t *testing.T) {
	m := &AuthMiddleware{}

	t.Run("anonymous passes", func(t *testing.T) {
		w := serveWith(&RequestContext{Session: &domain.Session{ID: "s"}}, m.RequireAnonymous,
			httptest.NewRequest(http.MethodPost, "/signin", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("signed-in bounced home", func(t *testing.T) {
		rc := &RequestContext{Session: &domain.Session{ID: "s", CurrentUserID: primitive.NewObjectID()}}
		w := serveWith(rc, m.RequireAnonymous, httptest.NewRequest(http.MethodPost, "/signin", nil))
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
	})
}

func TestRequireUser_NoSession(t *testing.T) {
	m := &AuthMiddleware{}

	w := serveWith(&RequestContext{}, m.RequireUser, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFromContext_Defaults(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	rc := FromContext(r.Context())
	assert.NotNil(t, rc)
	assert.Nil(t, rc.Session)
	assert.False(t, rc.Session.Authenticated())
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		expected string
	}{
		{"missing", "", ""},
		{"well-formed", "Bearer abc.def.ghi", "abc.def.ghi"},
		{"case-insensitive scheme", "bearer abc", "abc"},
		{"wrong scheme", "Basic dXNlcjpwYXNz", ""},
		{"no token", "Bearer", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.expected, bearerToken(r))
		})
	}
}
