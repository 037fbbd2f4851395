package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/script-shelf/internal/auth"
	"github.com/sakif/script-shelf/internal/service"
)

// FolderHandler serves folder CRUD.
type FolderHandler struct {
	svc    *service.FolderService
	logger *slog.Logger
}

func NewFolderHandler(svc *service.FolderService, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{svc: svc, logger: logger}
}

// HandleCreate saves a new folder.
//
// HTTP: POST /api/folders {name} → 201 Folder
func (h *FolderHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Msg: "Invalid JSON body"})
		return
	}

	folder, err := h.svc.Create(r.Context(), userID, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, folder)
}

// HandleList returns the caller's folders alphabetically.
//
// HTTP: GET /api/folders → 200 [Folder]
func (h *FolderHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	folders, err := h.svc.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, folders)
}

// HandleDelete removes a folder. Snippets inside it survive, unfoldered.
//
// HTTP: DELETE /api/folders/{id} → 200 {msg}, or 404.
func (h *FolderHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.svc.Delete(r.Context(), userID, id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Msg: "Folder deleted"})
}
