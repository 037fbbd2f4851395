// Package service contains the business logic layer.
//
// The layering follows the usual three tiers:
//
//	Handler (HTTP)     → parses requests, writes responses
//	Service (business) → validates, enforces ownership rules, orchestrates
//	Repository (data)  → reads/writes the database
//
// Services take repository interfaces, not concrete sqlite types, so tests
// can substitute in-memory mocks and the storage backend stays swappable.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/script-shelf/internal/apperror"
	"github.com/sakif/script-shelf/internal/model"
	"github.com/sakif/script-shelf/internal/repository"
)

const (
	MaxTitleLength = 200
	MaxCodeLength  = 100000 // ~100KB of code
)

// SnippetService handles business logic for snippets, their versions, and
// favorite toggling.
type SnippetService struct {
	repo   repository.SnippetRepository
	logger *slog.Logger
}

func NewSnippetService(repo repository.SnippetRepository, logger *slog.Logger) *SnippetService {
	return &SnippetService{
		repo:   repo,
		logger: logger,
	}
}

// CreateInput carries the fields of a snippet create request.
type CreateInput struct {
	Title    string
	Code     string
	Language string
	FolderID *string
	IsPublic bool
}

// UpdateInput carries the fields of a snippet update request. FolderID and
// IsFavorited are optional; nil leaves the stored value unchanged.
type UpdateInput struct {
	Title       string
	Code        string
	Language    string
	FolderID    *string
	IsFavorited *bool
}

// Create validates and saves a new snippet for the owner. Title and code are
// required; a new snippet always starts unfavorited and private unless the
// caller explicitly marks it public.
func (s *SnippetService) Create(ctx context.Context, ownerID string, in CreateInput) (*model.Snippet, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" || strings.TrimSpace(in.Code) == "" {
		return nil, apperror.ValidationFailed("title", "Please enter a title and code.")
	}
	if len(title) > MaxTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("Title must be %d characters or less", MaxTitleLength))
	}
	if len(in.Code) > MaxCodeLength {
		return nil, apperror.ValidationFailed("code",
			fmt.Sprintf("Code must be %d characters or less", MaxCodeLength))
	}

	snippet := &model.Snippet{
		UserID:   ownerID,
		Title:    title,
		Code:     in.Code,
		Language: in.Language,
		FolderID: normalizeFolderID(in.FolderID),
		IsPublic: in.IsPublic,
	}

	if err := s.repo.Create(ctx, snippet); err != nil {
		s.logger.Error("failed to create snippet",
			slog.String("userID", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating snippet: %w", err)
	}

	s.logger.Info("snippet created",
		slog.String("id", snippet.ID),
		slog.String("userID", ownerID),
	)

	return snippet, nil
}

// List returns all of the owner's snippets, favorited first, newest first.
func (s *SnippetService) List(ctx context.Context, ownerID string) ([]model.Snippet, error) {
	snippets, err := s.repo.List(ctx, ownerID)
	if err != nil {
		s.logger.Error("failed to list snippets",
			slog.String("userID", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing snippets: %w", err)
	}
	return snippets, nil
}

// Update applies new field values to a snippet the owner holds. The
// repository snapshots the pre-update state into the version history inside
// the same transaction — an update without its snapshot cannot happen.
func (s *SnippetService) Update(ctx context.Context, ownerID, id string, in UpdateInput) (*model.Snippet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "Snippet ID is required")
	}

	title := strings.TrimSpace(in.Title)
	if title == "" || strings.TrimSpace(in.Code) == "" {
		return nil, apperror.ValidationFailed("title", "Please enter a title and code.")
	}
	if len(title) > MaxTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("Title must be %d characters or less", MaxTitleLength))
	}
	if len(in.Code) > MaxCodeLength {
		return nil, apperror.ValidationFailed("code",
			fmt.Sprintf("Code must be %d characters or less", MaxCodeLength))
	}

	snippet, err := s.repo.Update(ctx, ownerID, id, repository.SnippetUpdate{
		Title:       title,
		Code:        in.Code,
		Language:    in.Language,
		FolderID:    in.FolderID,
		IsFavorited: in.IsFavorited,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("snippet updated",
		slog.String("id", id),
		slog.String("userID", ownerID),
	)

	return snippet, nil
}

// Delete removes a snippet the owner holds.
func (s *SnippetService) Delete(ctx context.Context, ownerID, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "Snippet ID is required")
	}

	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return err
	}

	s.logger.Info("snippet deleted",
		slog.String("id", id),
		slog.String("userID", ownerID),
	)
	return nil
}

// ToggleFavorite flips the snippet's favorited flag and returns the new
// value. Calling it twice lands back on the original state; this is a
// deliberate toggle, not an idempotent set.
func (s *SnippetService) ToggleFavorite(ctx context.Context, ownerID, id string) (bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return false, apperror.ValidationFailed("id", "Snippet ID is required")
	}

	return s.repo.ToggleFavorite(ctx, ownerID, id)
}

// ListVersions returns the version history for a snippet the owner holds,
// most recent edit first. Never-updated snippets yield an empty list, not an
// error.
func (s *SnippetService) ListVersions(ctx context.Context, ownerID, id string) ([]model.SnippetVersion, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "Snippet ID is required")
	}

	return s.repo.ListVersions(ctx, ownerID, id)
}

// normalizeFolderID maps an explicit empty string to nil so the repository
// only ever sees a real folder reference or none at all.
func normalizeFolderID(folderID *string) *string {
	if folderID == nil || strings.TrimSpace(*folderID) == "" {
		return nil
	}
	return folderID
}
