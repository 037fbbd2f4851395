package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/script-shelf/internal/auth"
	"github.com/sakif/script-shelf/internal/service"
)

// SnippetHandler serves snippet CRUD, favorite toggling, and version
// history. All routes sit behind RequireAuth, so UserIDFromContext always
// yields the caller.
type SnippetHandler struct {
	svc    *service.SnippetService
	logger *slog.Logger
}

func NewSnippetHandler(svc *service.SnippetService, logger *slog.Logger) *SnippetHandler {
	return &SnippetHandler{svc: svc, logger: logger}
}

type snippetRequest struct {
	Title       string  `json:"title"`
	Code        string  `json:"code"`
	Language    string  `json:"language"`
	FolderID    *string `json:"folder_id"`
	IsPublic    bool    `json:"is_public"`
	IsFavorited *bool   `json:"is_favorited"`
}

// HandleCreate saves a new snippet.
//
// HTTP: POST /api/snippets {title, code, language, folder_id?} → 201 Snippet
func (h *SnippetHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req snippetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Msg: "Invalid JSON body"})
		return
	}

	snippet, err := h.svc.Create(r.Context(), userID, service.CreateInput{
		Title:    req.Title,
		Code:     req.Code,
		Language: req.Language,
		FolderID: req.FolderID,
		IsPublic: req.IsPublic,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, snippet)
}

// HandleList returns all of the caller's snippets, favorited first, then
// newest first.
//
// HTTP: GET /api/snippets → 200 [Snippet]
func (h *SnippetHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	snippets, err := h.svc.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snippets)
}

// HandleUpdate applies new values to a snippet. The pre-update state lands
// in the version history as part of the same database transaction.
//
// HTTP: PUT /api/snippets/{id} {title, code, language, is_favorited?, folder_id?}
// → 200 Snippet, or 404 when the snippet isn't the caller's.
func (h *SnippetHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req snippetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Msg: "Invalid JSON body"})
		return
	}

	snippet, err := h.svc.Update(r.Context(), userID, id, service.UpdateInput{
		Title:       req.Title,
		Code:        req.Code,
		Language:    req.Language,
		FolderID:    req.FolderID,
		IsFavorited: req.IsFavorited,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snippet)
}

// HandleDelete removes a snippet.
//
// HTTP: DELETE /api/snippets/{id} → 200 {msg}, or 404.
func (h *SnippetHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.svc.Delete(r.Context(), userID, id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Msg: "Snippet deleted"})
}

// HandleToggleFavorite flips the snippet's favorited flag.
//
// HTTP: POST /api/snippets/{id}/favorite (no body) → 200 {is_favorited}
// Each call flips — two calls land back where you started.
func (h *SnippetHandler) HandleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	favorited, err := h.svc.ToggleFavorite(r.Context(), userID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"is_favorited": favorited})
}

// HandleListVersions returns the snippet's version history, newest first.
//
// HTTP: GET /api/snippets/{id}/versions → 200 [SnippetVersion]
// An empty list means the snippet was never updated; 404 means it isn't the
// caller's.
func (h *SnippetHandler) HandleListVersions(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	versions, err := h.svc.ListVersions(r.Context(), userID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, versions)
}
