package simulator

import (
	"log"
	"net/http"

	"github.com/louisbranch/cypress-simulator/internal/platform/id"
	"github.com/louisbranch/cypress-simulator/internal/platform/requestctx"
	"github.com/louisbranch/cypress-simulator/internal/services/simulator/platform/cookies"
	"github.com/louisbranch/cypress-simulator/internal/services/simulator/platform/httpx"
)

// withClient resolves the browser context from its cookie, issuing a new
// one on first contact, and stores it in the request context.
func withClient(logger *log.Logger) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		if next == nil {
			next = http.NotFoundHandler()
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID, ok := cookies.Read(r, cookies.ClientName)
			if !ok || !id.Valid(clientID) {
				generated, err := id.NewID()
				if err != nil {
					logger.Printf("issue client id: %v", err)
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
				clientID = generated
				cookies.WriteClient(w, r, clientID)
			}
			next.ServeHTTP(w, r.WithContext(requestctx.WithClientID(r.Context(), clientID)))
		})
	}
}
