package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/arsip-desa-api/internal/models"
)

// DocumentTypeRepository persists archive categories.
type DocumentTypeRepository struct {
	db *sqlx.DB
}

// NewDocumentTypeRepository constructs the repository.
func NewDocumentTypeRepository(db *sqlx.DB) *DocumentTypeRepository {
	return &DocumentTypeRepository{db: db}
}

// List returns all types ordered by name.
func (r *DocumentTypeRepository) List(ctx context.Context) ([]models.DocumentType, error) {
	const query = `SELECT id, name, description, created_at, updated_at FROM document_types ORDER BY name ASC`
	types := make([]models.DocumentType, 0)
	if err := r.db.SelectContext(ctx, &types, query); err != nil {
		return nil, fmt.Errorf("list document types: %w", err)
	}
	return types, nil
}

// GetByID returns one type.
func (r *DocumentTypeRepository) GetByID(ctx context.Context, id string) (*models.DocumentType, error) {
	const query = `SELECT id, name, description, created_at, updated_at FROM document_types WHERE id = $1`
	var dt models.DocumentType
	if err := r.db.GetContext(ctx, &dt, query, id); err != nil {
		return nil, err
	}
	return &dt, nil
}

// Create inserts a new type.
func (r *DocumentTypeRepository) Create(ctx context.Context, dt *models.DocumentType) error {
	return r.insert(ctx, r.db, dt)
}

// CreateMany inserts several types atomically.
func (r *DocumentTypeRepository) CreateMany(ctx context.Context, types []*models.DocumentType) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed document types: %w", err)
	}
	for _, dt := range types {
		if err := r.insert(ctx, tx, dt); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed document types: %w", err)
	}
	return nil
}

// Update rewrites name and description.
func (r *DocumentTypeRepository) Update(ctx context.Context, dt *models.DocumentType) error {
	dt.UpdatedAt = time.Now().UTC()
	const query = `UPDATE document_types SET name = :name, description = :description, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, dt)
	if err != nil {
		return fmt.Errorf("update document type: %w", err)
	}
	return expectAffected(res, "update document type")
}

// Delete removes a type. Archives keep their snapshotted name.
func (r *DocumentTypeRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM document_types WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document type: %w", err)
	}
	return expectAffected(res, "delete document type")
}

// Count returns the number of types.
func (r *DocumentTypeRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM document_types`); err != nil {
		return 0, fmt.Errorf("count document types: %w", err)
	}
	return total, nil
}

func (r *DocumentTypeRepository) insert(ctx context.Context, exec sqlx.ExtContext, dt *models.DocumentType) error {
	if dt.ID == "" {
		dt.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if dt.CreatedAt.IsZero() {
		dt.CreatedAt = now
	}
	dt.UpdatedAt = dt.CreatedAt
	const query = `INSERT INTO document_types (id, name, description, created_at, updated_at)
	VALUES (:id, :name, :description, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, dt); err != nil {
		return fmt.Errorf("create document type: %w", err)
	}
	return nil
}
