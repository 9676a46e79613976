package auth

import (
	"net/http"
	"strings"

	"github.com/abed1srour/POS-backend/internal/platform/httpx"
	"github.com/abed1srour/POS-backend/internal/shared"
)

// Middleware rejects requests without a valid Bearer token and stores
// the employee id on the request context.
func Middleware(svc *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			employeeID, _, err := svc.ParseAccess(token)
			if err != nil {
				httpx.RespondError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(shared.WithActor(r.Context(), employeeID)))
		})
	}
}
