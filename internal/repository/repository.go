// Package repository declares the storage interfaces the service layer
// depends on. The sqlite subpackage provides the real implementation; tests
// substitute in-memory mocks.
//
// Every method that reads or writes user-owned data takes an ownerID and
// filters on it. "Not found" and "not owned by the caller" are the same
// error by design — a query scoped to the wrong owner simply matches no rows.
package repository

import (
	"context"

	"github.com/sakif/script-shelf/internal/model"
)

// SnippetUpdate carries the new field values for a snippet update.
// FolderID and IsFavorited are pointers: nil means "leave unchanged",
// which mirrors the optional fields of the PUT /api/snippets/{id} payload.
type SnippetUpdate struct {
	Title       string
	Code        string
	Language    string
	FolderID    *string
	IsFavorited *bool
}

type SnippetRepository interface {
	Create(ctx context.Context, snippet *model.Snippet) error
	GetByID(ctx context.Context, ownerID, id string) (*model.Snippet, error)
	// List returns all of the owner's snippets, favorited first, then
	// newest first.
	List(ctx context.Context, ownerID string) ([]model.Snippet, error)
	// Update snapshots the snippet's current state into snippet_versions and
	// applies the new values, both inside one transaction. No update is ever
	// applied without its preceding snapshot.
	Update(ctx context.Context, ownerID, id string, upd SnippetUpdate) (*model.Snippet, error)
	Delete(ctx context.Context, ownerID, id string) error
	// ToggleFavorite flips the snippet's favorited flag and returns the new
	// value. Intentionally not idempotent — each call flips.
	ToggleFavorite(ctx context.Context, ownerID, id string) (bool, error)
	// ListVersions returns the snippet's version history, most recent edit
	// first. Empty slice (not an error) when the snippet was never updated.
	ListVersions(ctx context.Context, ownerID, snippetID string) ([]model.SnippetVersion, error)
}

type FolderRepository interface {
	Create(ctx context.Context, folder *model.Folder) error
	// List returns the owner's folders in alphabetical order.
	List(ctx context.Context, ownerID string) ([]model.Folder, error)
	// Delete removes the folder row only. Snippets referencing it survive
	// with folder_id nulled (schema-level ON DELETE SET NULL).
	Delete(ctx context.Context, ownerID, id string) error
}

type TagRepository interface {
	// Attach links a tag (created on first use, reused afterwards) to a
	// snippet the owner holds. The whole operation runs in one transaction;
	// an already-linked tag is not an error.
	Attach(ctx context.Context, ownerID, snippetID, name string) (*model.Tag, error)
	// Detach removes the snippet↔tag link. Returns a not-found error when
	// the snippet isn't owned by the caller, and a distinct one when the
	// link itself doesn't exist.
	Detach(ctx context.Context, ownerID, snippetID, tagID string) error
	// List returns the owner's tags in alphabetical order.
	List(ctx context.Context, ownerID string) ([]model.Tag, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateEmail(ctx context.Context, id, email string) (*model.User, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	// UpsertGitHub creates or refreshes the account for a GitHub identity,
	// keyed on the stable github_id.
	UpsertGitHub(ctx context.Context, user *model.User) error
}
