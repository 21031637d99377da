package handler

import (
	"net/http"

	"github.com/formlab/formgen/internal/api/response"
	"github.com/formlab/formgen/internal/llm"
	"github.com/formlab/formgen/internal/repository/mongo"
	"github.com/formlab/formgen/internal/repository/redis"
)

// HealthCheck returns a simple health check response
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"status": "ok",
	})
}

// ReadyCheck returns readiness status including datastore connectivity
func ReadyCheck(db *mongo.DB, cache *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			response.Error(w, http.StatusServiceUnavailable, "database not ready")
			return
		}
		if err := cache.Ping(r.Context()); err != nil {
			response.Error(w, http.StatusServiceUnavailable, "session store not ready")
			return
		}

		response.OK(w, map[string]string{
			"status": "ready",
		})
	}
}

// ListProviders returns the configured generation providers
func ListProviders(router *llm.Router) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]any{
			"providers":        router.GetProvidersInfo(),
			"default_provider": router.DefaultProvider(),
		})
	}
}
