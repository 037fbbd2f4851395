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

const MaxFolderNameLength = 100

// FolderService handles business logic for snippet folders.
type FolderService struct {
	repo   repository.FolderRepository
	logger *slog.Logger
}

func NewFolderService(repo repository.FolderRepository, logger *slog.Logger) *FolderService {
	return &FolderService{
		repo:   repo,
		logger: logger,
	}
}

// Create validates and saves a new folder.
func (s *FolderService) Create(ctx context.Context, ownerID, name string) (*model.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "Please enter a folder name.")
	}
	if len(name) > MaxFolderNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("Folder name must be %d characters or less", MaxFolderNameLength))
	}

	folder := &model.Folder{
		UserID: ownerID,
		Name:   name,
	}

	if err := s.repo.Create(ctx, folder); err != nil {
		s.logger.Error("failed to create folder",
			slog.String("userID", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating folder: %w", err)
	}

	s.logger.Info("folder created",
		slog.String("id", folder.ID),
		slog.String("userID", ownerID),
	)

	return folder, nil
}

// List returns the owner's folders alphabetically.
func (s *FolderService) List(ctx context.Context, ownerID string) ([]model.Folder, error) {
	folders, err := s.repo.List(ctx, ownerID)
	if err != nil {
		s.logger.Error("failed to list folders",
			slog.String("userID", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing folders: %w", err)
	}
	return folders, nil
}

// Delete removes a folder the owner holds. Snippets inside it are not
// touched — they just lose their folder association.
func (s *FolderService) Delete(ctx context.Context, ownerID, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "Folder ID is required")
	}

	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return err
	}

	s.logger.Info("folder deleted",
		slog.String("id", id),
		slog.String("userID", ownerID),
	)
	return nil
}
