package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/iota-uz/orgchart/pkg/composables"
)

const tenantHeader = "X-Tenant-ID"

// RequireTenant scopes every request to the tenant named in the X-Tenant-ID
// header. Requests without a valid tenant id are rejected before reaching any
// handler.
func RequireTenant() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(tenantHeader))
			if raw == "" {
				http.Error(w, "missing "+tenantHeader+" header", http.StatusBadRequest)
				return
			}
			tenantID, err := uuid.Parse(raw)
			if err != nil || tenantID == uuid.Nil {
				http.Error(w, "invalid "+tenantHeader+" header", http.StatusBadRequest)
				return
			}
			next.ServeHTTP(w, r.WithContext(composables.WithTenantID(r.Context(), tenantID)))
		})
	}
}
