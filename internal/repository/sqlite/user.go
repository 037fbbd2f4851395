package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/script-shelf/internal/apperror"
	"github.com/sakif/script-shelf/internal/model"
	"github.com/sakif/script-shelf/internal/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implements repository.UserRepository on the shared pool.
type UserRepo struct {
	db *DB
}

func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, email, password_hash, github_id, created_at, updated_at`

// Create inserts a new user. A duplicate email surfaces as a Conflict error
// via the UNIQUE constraint — the caller does not need its own existence
// check (and a check-then-insert would race anyway).
func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, github_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.PasswordHash, user.GitHubID, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("User already exists")
		}
		return fmt.Errorf("sqlite: inserting user: %w", err)
	}

	return nil
}

// GetByID returns the user with the given internal ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.getBy(ctx, `id = ?`, id)
}

// GetByEmail returns the user with the given email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getBy(ctx, `email = ?`, email)
}

func (r *UserRepo) getBy(ctx context.Context, where string, arg any) (*model.User, error) {
	var (
		u        model.User
		githubID sql.NullInt64
	)
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+where, arg,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &githubID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFoundMsg("User not found")
		}
		return nil, fmt.Errorf("sqlite: getting user: %w", err)
	}
	if githubID.Valid {
		u.GitHubID = &githubID.Int64
	}
	return &u, nil
}

// UpdateEmail changes the user's email and returns the updated record.
// An email held by another user surfaces as a Conflict.
func (r *UserRepo) UpdateEmail(ctx context.Context, id, email string) (*model.User, error) {
	result, err := r.db.conn.ExecContext(ctx,
		`UPDATE users SET email = ?, updated_at = ? WHERE id = ?`,
		email, time.Now().UTC(), id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperror.Conflict("Email already in use")
		}
		return nil, fmt.Errorf("sqlite: updating email for user %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return nil, apperror.NotFoundMsg("User not found")
	}

	return r.GetByID(ctx, id)
}

// UpdatePasswordHash replaces the user's stored password hash.
func (r *UserRepo) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	result, err := r.db.conn.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		hash, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating password for user %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFoundMsg("User not found")
	}

	return nil
}

// UpsertGitHub creates or refreshes the account for a GitHub identity.
// github_id is GitHub's stable numeric ID, so it is the upsert key; the
// user's internal ID never changes once assigned.
func (r *UserRepo) UpsertGitHub(ctx context.Context, user *model.User) error {
	if user.GitHubID == nil {
		return fmt.Errorf("sqlite: upserting GitHub user: github id is required")
	}

	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		var existingID string
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM users WHERE github_id = ?`, *user.GitHubID,
		).Scan(&existingID)
		if err != nil && err != sql.ErrNoRows {
			return fmt.Errorf("sqlite: looking up user by github_id %d: %w", *user.GitHubID, err)
		}

		now := time.Now().UTC()

		if existingID != "" {
			user.ID = existingID
			user.UpdatedAt = now
			_, err = tx.ExecContext(ctx,
				`UPDATE users SET email = ?, updated_at = ? WHERE id = ?`,
				user.Email, user.UpdatedAt, user.ID,
			)
			if err != nil {
				return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
			}
			return nil
		}

		user.ID = xid.New().String()
		user.CreatedAt = now
		user.UpdatedAt = now

		_, err = tx.ExecContext(ctx,
			`INSERT INTO users (id, email, password_hash, github_id, created_at, updated_at)
			 VALUES (?, ?, '', ?, ?, ?)`,
			user.ID, user.Email, *user.GitHubID, user.CreatedAt, user.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return apperror.Conflict("User already exists")
			}
			return fmt.Errorf("sqlite: inserting user (githubID=%d): %w", *user.GitHubID, err)
		}
		return nil
	})
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure. modernc.org/sqlite exposes the message but not a typed error for
// this, so we match on the stable "UNIQUE constraint failed" prefix the
// engine has used forever.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
