package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/script-shelf/internal/auth"
	"github.com/sakif/script-shelf/internal/service"
)

// TagHandler serves the tag list and the per-snippet attach/detach routes.
type TagHandler struct {
	svc    *service.TagService
	logger *slog.Logger
}

func NewTagHandler(svc *service.TagService, logger *slog.Logger) *TagHandler {
	return &TagHandler{svc: svc, logger: logger}
}

// HandleList returns the caller's tags alphabetically.
//
// HTTP: GET /api/tags → 200 [Tag]
func (h *TagHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	tags, err := h.svc.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tags)
}

// HandleAttach links a tag (created on first use) to one of the caller's
// snippets. Attaching the same name twice is a no-op, not an error.
//
// HTTP: POST /api/snippets/{id}/tags {name} → 201 Tag, or 404 when the
// snippet isn't the caller's.
func (h *TagHandler) HandleAttach(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	snippetID := chi.URLParam(r, "id")

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Msg: "Invalid JSON body"})
		return
	}

	tag, err := h.svc.Attach(r.Context(), userID, snippetID, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, tag)
}

// HandleDetach removes a tag from one of the caller's snippets.
//
// HTTP: DELETE /api/snippets/{id}/tags/{tagID} → 200 {msg}; 404 when the
// snippet isn't the caller's or the tag wasn't on it.
func (h *TagHandler) HandleDetach(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	snippetID := chi.URLParam(r, "id")
	tagID := chi.URLParam(r, "tagID")

	if err := h.svc.Detach(r.Context(), userID, snippetID, tagID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Msg: "Tag removed"})
}
