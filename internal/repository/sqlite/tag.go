package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/xid"

	"github.com/sakif/script-shelf/internal/apperror"
	"github.com/sakif/script-shelf/internal/model"
	"github.com/sakif/script-shelf/internal/repository"
)

var _ repository.TagRepository = (*TagRepo)(nil)

// TagRepo implements repository.TagRepository on the shared pool.
type TagRepo struct {
	db *DB
}

func NewTagRepo(db *DB) *TagRepo {
	return &TagRepo{db: db}
}

// Attach links a tag to a snippet the owner holds, creating the tag row on
// first use. Everything runs in one transaction: ownership check, tag
// upsert, link insert. Any failure rolls the whole thing back, so partial
// tag state is never observable.
//
// CONCURRENT ATTACHES:
// Two requests attaching the same new tag name race on the tag INSERT. The
// UNIQUE(user_id, name) constraint plus INSERT OR IGNORE makes that safe —
// the loser's insert is a no-op and the follow-up SELECT picks up whichever
// row won. No check-then-insert window exists.
func (r *TagRepo) Attach(ctx context.Context, ownerID, snippetID, name string) (*model.Tag, error) {
	var tag model.Tag

	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		// Ownership check on the snippet before any mutation.
		var one int
		err := tx.QueryRowContext(ctx,
			`SELECT 1 FROM snippets WHERE id = ? AND user_id = ?`,
			snippetID, ownerID,
		).Scan(&one)
		if err != nil {
			if err == sql.ErrNoRows {
				return apperror.NotFound("Snippet")
			}
			return fmt.Errorf("sqlite: checking snippet %s: %w", snippetID, err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO tags (id, user_id, name) VALUES (?, ?, ?)`,
			xid.New().String(), ownerID, name,
		); err != nil {
			return fmt.Errorf("sqlite: upserting tag %q: %w", name, err)
		}

		err = tx.QueryRowContext(ctx,
			`SELECT id, user_id, name FROM tags WHERE user_id = ? AND name = ?`,
			ownerID, name,
		).Scan(&tag.ID, &tag.UserID, &tag.Name)
		if err != nil {
			return fmt.Errorf("sqlite: reading tag %q back: %w", name, err)
		}

		// A pre-existing link is fine — attaching twice is a no-op.
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO snippet_tags (snippet_id, tag_id) VALUES (?, ?)`,
			snippetID, tag.ID,
		); err != nil {
			return fmt.Errorf("sqlite: linking tag %s to snippet %s: %w", tag.ID, snippetID, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &tag, nil
}

// Detach removes the snippet↔tag link. The snippet ownership check comes
// first; a missing link on an owned snippet gets its own message so clients
// can tell "wrong snippet" from "tag wasn't on it".
func (r *TagRepo) Detach(ctx context.Context, ownerID, snippetID, tagID string) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		var one int
		err := tx.QueryRowContext(ctx,
			`SELECT 1 FROM snippets WHERE id = ? AND user_id = ?`,
			snippetID, ownerID,
		).Scan(&one)
		if err != nil {
			if err == sql.ErrNoRows {
				return apperror.NotFound("Snippet")
			}
			return fmt.Errorf("sqlite: checking snippet %s: %w", snippetID, err)
		}

		result, err := tx.ExecContext(ctx,
			`DELETE FROM snippet_tags WHERE snippet_id = ? AND tag_id = ?`,
			snippetID, tagID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: unlinking tag %s from snippet %s: %w", tagID, snippetID, err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("sqlite: checking rows affected: %w", err)
		}
		if affected == 0 {
			return apperror.NotFoundMsg("Tag is not on this snippet")
		}

		return nil
	})
}

// List returns the owner's tags alphabetically.
func (r *TagRepo) List(ctx context.Context, ownerID string) ([]model.Tag, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT id, user_id, name FROM tags WHERE user_id = ? ORDER BY name ASC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing tags: %w", err)
	}
	defer rows.Close()

	tags := []model.Tag{}
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name); err != nil {
			return nil, fmt.Errorf("sqlite: scanning tag row: %w", err)
		}
		tags = append(tags, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tags: %w", err)
	}

	return tags, nil
}
