package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/script-shelf/internal/apperror"
	"github.com/sakif/script-shelf/internal/model"
	"github.com/sakif/script-shelf/internal/repository"
)

// Compile-time check that *SnippetRepo implements the repository interface.
// If a method is missing or its signature drifts, the build fails here
// instead of at some distant call site.
var _ repository.SnippetRepository = (*SnippetRepo)(nil)

// SnippetRepo implements repository.SnippetRepository on the shared pool.
type SnippetRepo struct {
	db *DB
}

func NewSnippetRepo(db *DB) *SnippetRepo {
	return &SnippetRepo{db: db}
}

const snippetColumns = `id, user_id, title, code, language, folder_id,
	is_favorited, is_public, created_at, updated_at`

// Create inserts a new snippet. The ID (xid: 20 chars, URL-safe, sortable by
// creation time) and timestamps are filled in on the passed struct.
func (r *SnippetRepo) Create(ctx context.Context, snippet *model.Snippet) error {
	snippet.ID = xid.New().String()

	now := time.Now().UTC()
	snippet.CreatedAt = now
	snippet.UpdatedAt = now

	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO snippets (id, user_id, title, code, language, folder_id,
		                       is_favorited, is_public, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snippet.ID,
		snippet.UserID,
		snippet.Title,
		snippet.Code,
		snippet.Language,
		snippet.FolderID,
		snippet.IsFavorited,
		snippet.IsPublic,
		snippet.CreatedAt,
		snippet.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating snippet: %w", err)
	}

	// A fresh snippet has no tags; [] not null on the wire.
	if snippet.Tags == nil {
		snippet.Tags = []string{}
	}

	return nil
}

// GetByID returns the snippet with the given id, provided it belongs to
// ownerID. The ownership check is the WHERE clause itself — a snippet owned
// by someone else scans zero rows, indistinguishable from a missing one.
func (r *SnippetRepo) GetByID(ctx context.Context, ownerID, id string) (*model.Snippet, error) {
	row := r.db.conn.QueryRowContext(ctx,
		`SELECT `+snippetColumns+`
		 FROM snippets
		 WHERE id = ? AND user_id = ?`,
		id, ownerID,
	)

	snippet, err := scanSnippet(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Snippet")
		}
		return nil, fmt.Errorf("sqlite: getting snippet %s: %w", id, err)
	}

	if err := r.loadTags(ctx, ownerID, snippet); err != nil {
		return nil, err
	}

	return snippet, nil
}

// List returns all of the owner's snippets, favorited ones first, then by
// creation time descending.
func (r *SnippetRepo) List(ctx context.Context, ownerID string) ([]model.Snippet, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT `+snippetColumns+`
		 FROM snippets
		 WHERE user_id = ?
		 ORDER BY is_favorited DESC, created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing snippets: %w", err)
	}
	defer rows.Close()

	snippets := []model.Snippet{}
	for rows.Next() {
		s, err := scanSnippet(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning snippet row: %w", err)
		}
		snippets = append(snippets, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating snippets: %w", err)
	}

	ptrs := make([]*model.Snippet, len(snippets))
	for i := range snippets {
		ptrs[i] = &snippets[i]
	}
	if err := r.loadTags(ctx, ownerID, ptrs...); err != nil {
		return nil, err
	}

	return snippets, nil
}

// loadTags fills the Tags field for the given snippets with one query over
// the join table instead of a query per snippet.
func (r *SnippetRepo) loadTags(ctx context.Context, ownerID string, snippets ...*model.Snippet) error {
	if len(snippets) == 0 {
		return nil
	}

	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT st.snippet_id, t.name
		 FROM snippet_tags st
		 JOIN tags t ON t.id = st.tag_id
		 WHERE t.user_id = ?
		 ORDER BY t.name ASC`,
		ownerID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: loading tags: %w", err)
	}
	defer rows.Close()

	names := map[string][]string{}
	for rows.Next() {
		var snippetID, name string
		if err := rows.Scan(&snippetID, &name); err != nil {
			return fmt.Errorf("sqlite: scanning tag name: %w", err)
		}
		names[snippetID] = append(names[snippetID], name)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("sqlite: iterating tag names: %w", err)
	}

	for _, s := range snippets {
		s.Tags = names[s.ID]
		if s.Tags == nil {
			s.Tags = []string{}
		}
	}

	return nil
}

// Update archives the snippet's current state into snippet_versions and then
// applies the new values — both inside one transaction.
//
// The snapshot is an INSERT ... SELECT from the live row, filtered by id AND
// user_id. If it touches zero rows the snippet is missing or not the
// caller's, and the whole transaction rolls back before anything changed.
// There is no code path that updates a snippet without its snapshot.
func (r *SnippetRepo) Update(ctx context.Context, ownerID, id string, upd repository.SnippetUpdate) (*model.Snippet, error) {
	now := time.Now().UTC()

	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO snippet_versions (id, snippet_id, title, code, language, edited_at)
			 SELECT ?, id, title, code, language, ?
			 FROM snippets
			 WHERE id = ? AND user_id = ?`,
			xid.New().String(), now, id, ownerID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: snapshotting snippet %s: %w", id, err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("sqlite: checking snapshot rows affected: %w", err)
		}
		if affected == 0 {
			return apperror.NotFound("Snippet")
		}

		// Build the UPDATE from the always-set fields plus the optional ones.
		// COALESCE won't do here: a nil FolderID means "keep", not "null".
		query := `UPDATE snippets SET title = ?, code = ?, language = ?, updated_at = ?`
		args := []any{upd.Title, upd.Code, upd.Language, now}
		if upd.FolderID != nil {
			query += `, folder_id = ?`
			args = append(args, nullIfEmpty(*upd.FolderID))
		}
		if upd.IsFavorited != nil {
			query += `, is_favorited = ?`
			args = append(args, *upd.IsFavorited)
		}
		query += ` WHERE id = ? AND user_id = ?`
		args = append(args, id, ownerID)

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("sqlite: updating snippet %s: %w", id, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, ownerID, id)
}

// Delete removes the snippet. Versions and tag links go with it via the
// schema's ON DELETE CASCADE.
func (r *SnippetRepo) Delete(ctx context.Context, ownerID, id string) error {
	result, err := r.db.conn.ExecContext(ctx,
		`DELETE FROM snippets WHERE id = ? AND user_id = ?`,
		id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting snippet %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("Snippet")
	}

	return nil
}

// ToggleFavorite flips is_favorited and returns the new value. The read and
// the write run in one transaction so two racing toggles serialize at the
// database rather than both reading the same starting value.
func (r *SnippetRepo) ToggleFavorite(ctx context.Context, ownerID, id string) (bool, error) {
	var flipped bool

	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		var current bool
		err := tx.QueryRowContext(ctx,
			`SELECT is_favorited FROM snippets WHERE id = ? AND user_id = ?`,
			id, ownerID,
		).Scan(&current)
		if err != nil {
			if err == sql.ErrNoRows {
				return apperror.NotFound("Snippet")
			}
			return fmt.Errorf("sqlite: reading favorite flag for %s: %w", id, err)
		}

		flipped = !current
		_, err = tx.ExecContext(ctx,
			`UPDATE snippets SET is_favorited = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
			flipped, time.Now().UTC(), id, ownerID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: toggling favorite for %s: %w", id, err)
		}

		return nil
	})
	if err != nil {
		return false, err
	}

	return flipped, nil
}

// ListVersions returns the version history of a snippet the caller owns,
// most recent edit first. A snippet that exists but was never updated yields
// an empty slice; a snippet the caller doesn't own yields not-found.
func (r *SnippetRepo) ListVersions(ctx context.Context, ownerID, snippetID string) ([]model.SnippetVersion, error) {
	// Ownership check precedes the versions query — versions carry no
	// user_id of their own.
	if _, err := r.GetByID(ctx, ownerID, snippetID); err != nil {
		return nil, err
	}

	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT id, snippet_id, title, code, language, edited_at
		 FROM snippet_versions
		 WHERE snippet_id = ?
		 ORDER BY edited_at DESC, id DESC`,
		snippetID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing versions for %s: %w", snippetID, err)
	}
	defer rows.Close()

	versions := []model.SnippetVersion{}
	for rows.Next() {
		var v model.SnippetVersion
		if err := rows.Scan(&v.ID, &v.SnippetID, &v.Title, &v.Code, &v.Language, &v.EditedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning version row: %w", err)
		}
		versions = append(versions, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating versions: %w", err)
	}

	return versions, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSnippet(s scanner) (*model.Snippet, error) {
	var (
		snippet  model.Snippet
		folderID sql.NullString
	)
	err := s.Scan(
		&snippet.ID,
		&snippet.UserID,
		&snippet.Title,
		&snippet.Code,
		&snippet.Language,
		&folderID,
		&snippet.IsFavorited,
		&snippet.IsPublic,
		&snippet.CreatedAt,
		&snippet.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if folderID.Valid {
		snippet.FolderID = &folderID.String
	}
	return &snippet, nil
}

// nullIfEmpty maps "" to SQL NULL. Clients clear a snippet's folder by
// sending folder_id as an empty string.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
