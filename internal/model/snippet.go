// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other
// languages, but without inheritance. Go favours composition over inheritance.
package model

import "time"

// Snippet is a stored unit of code with a title, a free-form language tag,
// and the code body itself. Every snippet belongs to exactly one user.
//
// JSON tags are snake_case because the API contract predates this server:
// the web client, the browser extension, and the VS Code extension all
// consume fields like "is_favorited" and "folder_id" as-is.
//
// WHY FolderID *string?
// A snippet may live in at most one folder, or in none. A nil pointer
// marshals to JSON null, which is exactly what clients expect for an
// unfoldered snippet. The database column is likewise nullable.
type Snippet struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Code        string    `json:"code"`
	Language    string    `json:"language"`
	FolderID    *string   `json:"folder_id"`
	IsFavorited bool      `json:"is_favorited"`
	IsPublic    bool      `json:"is_public"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SnippetVersion is an immutable copy of a snippet's fields captured
// immediately before an update was applied. Versions are append-only:
// product logic never updates or deletes them.
//
// Ownership is not stored here — it flows through the parent snippet.
// Every read of versions goes through an ownership check on snippet_id.
type SnippetVersion struct {
	ID        string    `json:"id"`
	SnippetID string    `json:"snippet_id"`
	Title     string    `json:"title"`
	Code      string    `json:"code"`
	Language  string    `json:"language"`
	EditedAt  time.Time `json:"edited_at"`
}
