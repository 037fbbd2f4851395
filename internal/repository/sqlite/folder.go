package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/script-shelf/internal/apperror"
	"github.com/sakif/script-shelf/internal/model"
	"github.com/sakif/script-shelf/internal/repository"
)

var _ repository.FolderRepository = (*FolderRepo)(nil)

// FolderRepo implements repository.FolderRepository on the shared pool.
type FolderRepo struct {
	db *DB
}

func NewFolderRepo(db *DB) *FolderRepo {
	return &FolderRepo{db: db}
}

// Create inserts a new folder for the owner.
func (r *FolderRepo) Create(ctx context.Context, folder *model.Folder) error {
	folder.ID = xid.New().String()
	folder.CreatedAt = time.Now().UTC()

	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO folders (id, user_id, name, created_at) VALUES (?, ?, ?, ?)`,
		folder.ID, folder.UserID, folder.Name, folder.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating folder: %w", err)
	}

	return nil
}

// List returns the owner's folders alphabetically.
func (r *FolderRepo) List(ctx context.Context, ownerID string) ([]model.Folder, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT id, user_id, name, created_at
		 FROM folders
		 WHERE user_id = ?
		 ORDER BY name ASC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing folders: %w", err)
	}
	defer rows.Close()

	folders := []model.Folder{}
	for rows.Next() {
		var f model.Folder
		if err := rows.Scan(&f.ID, &f.UserID, &f.Name, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning folder row: %w", err)
		}
		folders = append(folders, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating folders: %w", err)
	}

	return folders, nil
}

// Delete removes the folder row only. Snippets that referenced it survive:
// the folder_id foreign key is declared ON DELETE SET NULL, so the schema
// unfolders them in the same statement.
func (r *FolderRepo) Delete(ctx context.Context, ownerID, id string) error {
	result, err := r.db.conn.ExecContext(ctx,
		`DELETE FROM folders WHERE id = ? AND user_id = ?`,
		id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting folder %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("Folder")
	}

	return nil
}
