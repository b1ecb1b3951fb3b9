package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/arsip-desa-api/internal/dto"
	"github.com/noah-isme/arsip-desa-api/internal/models"
	appErrors "github.com/noah-isme/arsip-desa-api/pkg/errors"
)

func TestDocumentTypeListSeedsEmptyRegistry(t *testing.T) {
	repo := newDocumentTypeRepoStub()
	svc := NewDocumentTypeService(repo, nil, nil, nil, true)

	types, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, types, len(models.DefaultDocumentTypeNames))
	assert.Equal(t, "Peraturan Desa", types[0].Name)
	assert.Equal(t, "Surat Masuk", types[4].Name)

	again, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, again, len(models.DefaultDocumentTypeNames))
}

func TestDocumentTypeListWithoutSeeding(t *testing.T) {
	svc := NewDocumentTypeService(newDocumentTypeRepoStub(), nil, nil, nil, false)
	types, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, types)
}

func TestDocumentTypeCreateUpdateDelete(t *testing.T) {
	repo := newDocumentTypeRepoStub()
	audit := &auditStub{}
	cache := &cacheStub{}
	svc := NewDocumentTypeService(repo, audit, cache, nil, false)
	ctx := context.Background()

	_, err := svc.Create(ctx, dto.CreateDocumentTypeRequest{Name: "   "}, "admin")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	blank := " "
	dt, err := svc.Create(ctx, dto.CreateDocumentTypeRequest{Name: " Surat Edaran ", Description: &blank}, "admin")
	require.NoError(t, err)
	assert.Equal(t, "Surat Edaran", dt.Name)
	assert.Nil(t, dt.Description)

	desc := "Edaran kepala desa"
	updated, err := svc.Update(ctx, dt.ID, dto.UpdateDocumentTypeRequest{Description: &desc}, "admin")
	require.NoError(t, err)
	assert.Equal(t, "Surat Edaran", updated.Name)
	require.NotNil(t, updated.Description)
	assert.Equal(t, desc, *updated.Description)

	require.NoError(t, svc.Delete(ctx, dt.ID, "admin"))
	err = svc.Delete(ctx, dt.ID, "admin")
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	_, err = svc.Update(ctx, dt.ID, dto.UpdateDocumentTypeRequest{Name: &desc}, "admin")
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	assert.Equal(t, []string{
		models.AuditActionDocumentTypeCreate,
		models.AuditActionDocumentTypeUpdate,
		models.AuditActionDocumentTypeDelete,
	}, audit.actions())
	assert.Len(t, cache.invalidated, 3)
}
