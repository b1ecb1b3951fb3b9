package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/arsip-desa-api/internal/models"
)

const userColumns = `uid, email, role, first_name, last_name, password_hash, created_at, updated_at`

// UserRepository provides database access for user accounts.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail returns a user by email address, case-insensitively.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1) LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// FindByUID returns a user by identity subject id.
func (r *UserRepository) FindByUID(ctx context.Context, uid string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, uid); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find user by uid: %w", err)
	}
	return &user, nil
}

// List returns all users newest first.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`
	users := make([]models.User, 0)
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Count returns the number of accounts.
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return total, nil
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.UID == "" {
		user.UID = uuid.NewString()
	}
	stampUser(user)
	const query = `INSERT INTO users (uid, email, role, first_name, last_name, password_hash, created_at, updated_at)
	VALUES (:uid, :email, :role, :first_name, :last_name, :password_hash, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// CreateIfAbsent inserts the user unless the uid already exists and reports
// whether a row was written.
func (r *UserRepository) CreateIfAbsent(ctx context.Context, user *models.User) (bool, error) {
	stampUser(user)
	const query = `INSERT INTO users (uid, email, role, first_name, last_name, password_hash, created_at, updated_at)
	VALUES (:uid, :email, :role, :first_name, :last_name, :password_hash, :created_at, :updated_at)
	ON CONFLICT (uid) DO NOTHING`
	res, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		return false, fmt.Errorf("ensure user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check ensure user rows: %w", err)
	}
	return affected > 0, nil
}

// Update updates profile fields and role of a user.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	const query = `UPDATE users SET email = :email, role = :role, first_name = :first_name, last_name = :last_name, updated_at = :updated_at WHERE uid = :uid`
	res, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return expectAffected(res, "update user")
}

// UpdatePassword updates the stored password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, uid, passwordHash string, updatedAt time.Time) error {
	const query = `UPDATE users SET password_hash = $2, updated_at = $3 WHERE uid = $1`
	res, err := r.db.ExecContext(ctx, query, uid, passwordHash, updatedAt)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return expectAffected(res, "update password")
}

// Delete removes an account and records a revocation for its uid in the same
// transaction, so tokens issued before the deletion cannot provision it again.
func (r *UserRepository) Delete(ctx context.Context, uid string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete user: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE uid = $1`, uid)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if err := expectAffected(res, "delete user"); err != nil {
		return err
	}
	const revoke = `INSERT INTO revoked_accounts (uid, revoked_at) VALUES ($1, $2)
	ON CONFLICT (uid) DO UPDATE SET revoked_at = EXCLUDED.revoked_at`
	if _, err := tx.ExecContext(ctx, revoke, uid, time.Now().UTC()); err != nil {
		return fmt.Errorf("revoke user: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete user: %w", err)
	}
	return nil
}

// IsRevoked reports whether uid belonged to a deleted account.
func (r *UserRepository) IsRevoked(ctx context.Context, uid string) (bool, error) {
	var revoked bool
	const query = `SELECT EXISTS (SELECT 1 FROM revoked_accounts WHERE uid = $1)`
	if err := r.db.GetContext(ctx, &revoked, query, uid); err != nil {
		return false, fmt.Errorf("check revoked user: %w", err)
	}
	return revoked, nil
}

// ClearRevocation lifts a revocation when an administrator recreates the uid.
func (r *UserRepository) ClearRevocation(ctx context.Context, uid string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM revoked_accounts WHERE uid = $1`, uid); err != nil {
		return fmt.Errorf("clear revoked user: %w", err)
	}
	return nil
}

func stampUser(user *models.User) {
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
}
