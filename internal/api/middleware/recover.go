package middleware

import (
	"net/http"
	"runtime/debug"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/formlab/formgen/internal/api/response"
)

// Recover turns panics into a shaped 500 response instead of a dropped
// connection, logging the stack with the chi request id.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error().
					Str("request_id", chimiddleware.GetReqID(r.Context())).
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")
				response.Deny(w, r, http.StatusInternalServerError, "something went wrong")
			}
		}()

		next.ServeHTTP(w, r)
	})
}
