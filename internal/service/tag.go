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

const MaxTagNameLength = 50

// TagService handles business logic for tags and their snippet links.
type TagService struct {
	repo   repository.TagRepository
	logger *slog.Logger
}

func NewTagService(repo repository.TagRepository, logger *slog.Logger) *TagService {
	return &TagService{
		repo:   repo,
		logger: logger,
	}
}

// Attach links a tag to one of the owner's snippets, creating the tag on
// first use. Names are case-normalized to lowercase here, before the
// repository sees them, so "TODO" and "todo" are the same tag everywhere.
func (s *TagService) Attach(ctx context.Context, ownerID, snippetID, name string) (*model.Tag, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, apperror.ValidationFailed("name", "Please enter a tag name.")
	}
	if len(name) > MaxTagNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("Tag name must be %d characters or less", MaxTagNameLength))
	}

	snippetID = strings.TrimSpace(snippetID)
	if snippetID == "" {
		return nil, apperror.ValidationFailed("id", "Snippet ID is required")
	}

	tag, err := s.repo.Attach(ctx, ownerID, snippetID, name)
	if err != nil {
		return nil, err
	}

	s.logger.Info("tag attached",
		slog.String("tagID", tag.ID),
		slog.String("snippetID", snippetID),
		slog.String("userID", ownerID),
	)

	return tag, nil
}

// Detach removes the link between a tag and one of the owner's snippets.
func (s *TagService) Detach(ctx context.Context, ownerID, snippetID, tagID string) error {
	snippetID = strings.TrimSpace(snippetID)
	tagID = strings.TrimSpace(tagID)
	if snippetID == "" || tagID == "" {
		return apperror.ValidationFailed("id", "Snippet ID and tag ID are required")
	}

	if err := s.repo.Detach(ctx, ownerID, snippetID, tagID); err != nil {
		return err
	}

	s.logger.Info("tag detached",
		slog.String("tagID", tagID),
		slog.String("snippetID", snippetID),
		slog.String("userID", ownerID),
	)
	return nil
}

// List returns the owner's tags alphabetically.
func (s *TagService) List(ctx context.Context, ownerID string) ([]model.Tag, error) {
	tags, err := s.repo.List(ctx, ownerID)
	if err != nil {
		s.logger.Error("failed to list tags",
			slog.String("userID", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	return tags, nil
}
