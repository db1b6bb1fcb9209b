package web

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/contactshub/server/internal/auth"
	"github.com/contactshub/server/internal/directory"
)

// Handlers bundles the services behind the HTTP surface.
type Handlers struct {
	auth      *auth.Service
	directory *directory.Service
	logger    *zap.Logger
}

// NewHandlers builds the HTTP handler set.
func NewHandlers(authService *auth.Service, directoryService *directory.Service, logger *zap.Logger) *Handlers {
	return &Handlers{
		auth:      authService,
		directory: directoryService,
		logger:    logger,
	}
}

func (h *Handlers) handleRoot(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"service": "contactshub", "status": "ok"})
}

func (h *Handlers) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Router assembles the full route table with the middleware stack applied.
func (h *Handlers) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.handleRoot)
	mux.HandleFunc("GET /healthz", h.handleHealthz)

	mux.HandleFunc("POST /api/register", h.handleRegister)
	mux.HandleFunc("POST /api/login", h.handleLogin)
	mux.HandleFunc("POST /api/login/federated", h.handleFederatedLogin)

	authed := h.RequireAuth()
	protect := func(handler http.HandlerFunc) http.Handler {
		return authed(handler)
	}

	mux.Handle("GET /api/profile", protect(h.handleProfile))

	mux.Handle("GET /api/contacts", protect(h.handleListContacts))
	mux.Handle("POST /api/contacts", protect(h.handleCreateContact))
	mux.Handle("GET /api/contacts/search", protect(h.handleSearchContacts))
	mux.Handle("GET /api/contacts/{id}", protect(h.handleGetContact))
	mux.Handle("PUT /api/contacts/{id}", protect(h.handleUpdateContact))
	mux.Handle("DELETE /api/contacts/{id}", protect(h.handleDeleteContact))
	mux.Handle("POST /api/contacts/{id}/favorite", protect(h.handleToggleFavorite))
	mux.Handle("POST /api/contacts/{id}/status", protect(h.handleSetStatus))

	mux.Handle("GET /api/activity", protect(h.handleListActivity))

	return Chain(mux,
		RequestID(),
		RecoverPanic(h.logger),
		RequestLog(h.logger),
	)
}
