package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/arsip-desa-api/internal/models"
)

func TestAuditRepositoryCreateStampsEntry(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewAuditRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_logs")).WillReturnResult(sqlmock.NewResult(1, 1))

	entry := &models.AuditLog{Action: models.AuditActionArchiveCreate, Resource: "archive"}
	require.NoError(t, repo.CreateAuditLog(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
}

func TestAuditRepositoryWrapsErrors(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewAuditRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_logs")).WillReturnError(errors.New("connection reset"))

	err := repo.CreateAuditLog(context.Background(), &models.AuditLog{Action: models.AuditActionLogin, Resource: "user"})
	assert.ErrorContains(t, err, "create audit log")
}
