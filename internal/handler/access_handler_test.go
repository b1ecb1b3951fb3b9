package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/arsip-desa-api/internal/models"
	"github.com/noah-isme/arsip-desa-api/internal/service"
)

func TestAccessHandlerPagesForRegularUser(t *testing.T) {
	h := NewAccessHandler(service.NewAccessService())

	c, w := newGinContext(http.MethodGet, "/access/pages", nil)
	withUser(c, "u-1", models.RoleRegularUser)
	h.Pages(c)

	require.Equal(t, http.StatusOK, w.Code)
	var env struct {
		Data []models.Page `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	paths := make([]string, 0, len(env.Data))
	for _, p := range env.Data {
		paths = append(paths, p.Path)
	}
	assert.Contains(t, paths, "/arsip-dokumen")
	assert.NotContains(t, paths, "/manajemen-user")
	assert.NotContains(t, paths, "/laporan")
}

func TestAccessHandlerCheckDenied(t *testing.T) {
	h := NewAccessHandler(service.NewAccessService())

	c, w := newGinContext(http.MethodGet, "/access/check?page=/profil-instansi", nil)
	withUser(c, "u-1", models.RoleArchiveManager)
	h.Check(c)

	require.Equal(t, http.StatusOK, w.Code)
	var env struct {
		Data models.AccessDecision `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Data.Permitted)
	assert.Equal(t, "/", env.Data.Redirect)
}

func TestAccessHandlerCheckRequiresPage(t *testing.T) {
	h := NewAccessHandler(service.NewAccessService())

	c, w := newGinContext(http.MethodGet, "/access/check", nil)
	h.Check(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
