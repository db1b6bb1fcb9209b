package web

import (
	"net/http"

	"github.com/contactshub/server/internal/directory"
	"github.com/contactshub/server/internal/platform/requestctx"
)

type createContactRequest struct {
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Phone      string   `json:"phone"`
	Categories []string `json:"categories"`
}

func (h *Handlers) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	var req createContactRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	created, err := h.directory.Create(r.Context(), requestctx.UserIDFromContext(r.Context()), directory.CreateRequest{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Categories: req.Categories,
	})
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, toContactView(created))
}

func (h *Handlers) handleListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.directory.List(r.Context(), requestctx.UserIDFromContext(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toContactViews(contacts))
}

func (h *Handlers) handleGetContact(w http.ResponseWriter, r *http.Request) {
	c, err := h.directory.Get(r.Context(), requestctx.UserIDFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toContactView(c))
}

type updateContactRequest struct {
	Name       *string   `json:"name"`
	Email      *string   `json:"email"`
	Phone      *string   `json:"phone"`
	Categories *[]string `json:"categories"`
}

func (h *Handlers) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	var req updateContactRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	updated, err := h.directory.Update(r.Context(), requestctx.UserIDFromContext(r.Context()), r.PathValue("id"), directory.UpdateRequest{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Categories: req.Categories,
	})
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toContactView(updated))
}

func (h *Handlers) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	if err := h.directory.Delete(r.Context(), requestctx.UserIDFromContext(r.Context()), r.PathValue("id")); err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"message": "contact deleted successfully"})
}

func (h *Handlers) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	c, err := h.directory.ToggleFavorite(r.Context(), requestctx.UserIDFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"favorite": c.Favorite})
}

type setStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handlers) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	var req setStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	c, err := h.directory.SetStatus(r.Context(), requestctx.UserIDFromContext(r.Context()), r.PathValue("id"), req.Status)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": string(c.Status)})
}

func (h *Handlers) handleSearchContacts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	contacts, err := h.directory.SearchAndSort(
		r.Context(),
		requestctx.UserIDFromContext(r.Context()),
		query.Get("query"),
		query.Get("sort_by"),
		query.Get("order"),
	)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toContactViews(contacts))
}

func (h *Handlers) handleListActivity(w http.ResponseWriter, r *http.Request) {
	entries, err := h.directory.ListActivity(r.Context(), requestctx.UserIDFromContext(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toActivityViews(entries))
}
