package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/arsip-desa-api/internal/models"
)

const archiveColumns = `id, title, document_type_id, document_type_name, file_name, content_type,
       size_bytes, storage_locator, uploaded_by, created_at, updated_at`

// ArchiveRepository handles archive metadata persistence.
type ArchiveRepository struct {
	db *sqlx.DB
}

// NewArchiveRepository constructs the repository.
func NewArchiveRepository(db *sqlx.DB) *ArchiveRepository {
	return &ArchiveRepository{db: db}
}

// Create stores metadata for an uploaded archive file.
func (r *ArchiveRepository) Create(ctx context.Context, item *models.Archive) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = item.CreatedAt
	const query = `INSERT INTO archives
	(id, title, document_type_id, document_type_name, file_name, content_type, size_bytes, storage_locator, uploaded_by, created_at, updated_at)
	VALUES (:id, :title, :document_type_id, :document_type_name, :file_name, :content_type, :size_bytes, :storage_locator, :uploaded_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	return nil
}

// GetByID retrieves one archive row.
func (r *ArchiveRepository) GetByID(ctx context.Context, id string) (*models.Archive, error) {
	query := `SELECT ` + archiveColumns + ` FROM archives WHERE id = $1`
	var item models.Archive
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		return nil, err
	}
	return &item, nil
}

// List returns archives newest first. The date window is half-open: [From, To).
func (r *ArchiveRepository) List(ctx context.Context, filter models.ArchiveFilter) ([]models.Archive, error) {
	builder := strings.Builder{}
	builder.WriteString(`SELECT ` + archiveColumns + ` FROM archives`)
	args := make([]interface{}, 0, 3)
	conditions := make([]string, 0, 3)

	if filter.DocumentTypeID != "" {
		args = append(args, filter.DocumentTypeID)
		conditions = append(conditions, fmt.Sprintf("document_type_id = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, filter.From.UTC())
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, filter.To.UTC())
		conditions = append(conditions, fmt.Sprintf("created_at < $%d", len(args)))
	}

	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY created_at DESC")

	records := make([]models.Archive, 0)
	if err := r.db.SelectContext(ctx, &records, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list archives: %w", err)
	}
	return records, nil
}

// Update rewrites the mutable columns of an archive.
func (r *ArchiveRepository) Update(ctx context.Context, item *models.Archive) error {
	item.UpdatedAt = time.Now().UTC()
	const query = `UPDATE archives SET title = :title, document_type_id = :document_type_id,
	document_type_name = :document_type_name, file_name = :file_name, content_type = :content_type,
	size_bytes = :size_bytes, storage_locator = :storage_locator, updated_at = :updated_at
	WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, item)
	if err != nil {
		return fmt.Errorf("update archive: %w", err)
	}
	return expectAffected(res, "update archive")
}

// Delete removes an archive row.
func (r *ArchiveRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM archives WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete archive: %w", err)
	}
	return expectAffected(res, "delete archive")
}

// Count returns the number of archives.
func (r *ArchiveRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM archives`); err != nil {
		return 0, fmt.Errorf("count archives: %w", err)
	}
	return total, nil
}

// CountByCategory groups archives by their snapshotted type name. Categories are
// ordered by their newest record, matching first-seen order of a newest-first listing.
func (r *ArchiveRepository) CountByCategory(ctx context.Context) ([]models.CategoryCount, error) {
	query := `SELECT COALESCE(NULLIF(document_type_name, ''), '` + models.UncategorizedLabel + `') AS category, COUNT(*) AS count
	FROM archives
	GROUP BY 1
	ORDER BY MAX(created_at) DESC`
	rows := make([]models.CategoryCount, 0)
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count archives by category: %w", err)
	}
	return rows, nil
}

func expectAffected(res sql.Result, op string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check %s rows: %w", op, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
