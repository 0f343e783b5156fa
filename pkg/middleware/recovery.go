package middleware

import (
	"fmt"
	"log"
	"net/http"
	"runtime/debug"

	"org-sync-backend/pkg/config"
	"org-sync-backend/pkg/utils"
)

// Recovery turns handler panics into 500 responses. Development
// builds ship the stack to the client; production logs it and says
// nothing more.
func Recovery(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					stack := debug.Stack()
					log.Printf("panic serving %s %s: %v\n%s", r.Method, r.URL.Path, err, stack)

					if cfg.IsDevelopment() {
						utils.WriteErrorResponseWithCode(w, http.StatusInternalServerError,
							"INTERNAL_SERVER_ERROR",
							fmt.Sprintf("Internal server error: %v", err),
							string(stack))
					} else {
						utils.WriteInternalServerErrorResponse(w, "Internal server error occurred")
					}
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
