package session

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// AdminRoutes returns a router exposing session revocation:
//
//	DELETE /{id}  204 on success, 400 for an invalid id, 500 when the cache fails
//
// Mount it behind the application's own authorization.
func (m *Manager) AdminRoutes() http.Handler {
	r := chi.NewRouter()
	r.Delete("/{id}", m.handleRevoke)
	return r
}

func (m *Manager) handleRevoke(w http.ResponseWriter, r *http.Request) {
	if err := m.Revoke(r.Context(), chi.URLParam(r, "id")); err != nil {
		m.errorHandler(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
