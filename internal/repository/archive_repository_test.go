package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/arsip-desa-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

var archiveRowColumns = []string{"id", "title", "document_type_id", "document_type_name", "file_name", "content_type",
	"size_bytes", "storage_locator", "uploaded_by", "created_at", "updated_at"}

func TestArchiveRepositoryCreateAssignsIDAndTimestamps(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewArchiveRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO archives")).WillReturnResult(sqlmock.NewResult(1, 1))

	item := &models.Archive{Title: "Surat A", DocumentTypeID: "type-1", DocumentTypeName: "Surat Masuk", FileName: "a.pdf", SizeBytes: 2048}
	require.NoError(t, repo.Create(context.Background(), item))
	assert.NotEmpty(t, item.ID)
	assert.False(t, item.CreatedAt.IsZero())
	assert.Equal(t, item.CreatedAt, item.UpdatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestArchiveRepositoryGetByIDMissing(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewArchiveRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM archives WHERE id = $1")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(archiveRowColumns))

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestArchiveRepositoryListHalfOpenWindow(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewArchiveRepository(db)

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	created := time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE document_type_id = $1 AND created_at >= $2 AND created_at < $3 ORDER BY created_at DESC")).
		WithArgs("type-1", from, to).
		WillReturnRows(sqlmock.NewRows(archiveRowColumns).
			AddRow("a-1", "Surat A", "type-1", "Surat Masuk", "a.pdf", "application/pdf", 2048, "2024/03/a.pdf", "user-1", created, created))

	items, err := repo.List(context.Background(), models.ArchiveFilter{DocumentTypeID: "type-1", From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Surat Masuk", items[0].DocumentTypeName)
	assert.Equal(t, int64(2048), items[0].SizeBytes)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestArchiveRepositoryListWithoutFilter(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewArchiveRepository(db)

	mock.ExpectQuery(`FROM archives ORDER BY created_at DESC$`).
		WillReturnRows(sqlmock.NewRows(archiveRowColumns))

	items, err := repo.List(context.Background(), models.ArchiveFilter{})
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestArchiveRepositoryDeleteMissingReturnsNoRows(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewArchiveRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM archives WHERE id = $1")).
		WithArgs("a-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), "a-1"), sql.ErrNoRows)
}

func TestArchiveRepositoryCountByCategory(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewArchiveRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY 1")).
		WillReturnRows(sqlmock.NewRows([]string{"category", "count"}).
			AddRow("Surat Masuk", 2).
			AddRow(models.UncategorizedLabel, 1))

	rows, err := repo.CountByCategory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.CategoryCount{{Category: "Surat Masuk", Count: 2}, {Category: "uncategorized", Count: 1}}, rows)
}
