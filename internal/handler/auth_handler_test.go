package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/arsip-desa-api/internal/dto"
	"github.com/noah-isme/arsip-desa-api/internal/models"
	appErrors "github.com/noah-isme/arsip-desa-api/pkg/errors"
)

type authServiceStub struct {
	login     dto.LoginRequest
	changeUID string
	change    dto.ChangePasswordRequest
	loginResp *models.LoginResponse
	err       error
}

func (s *authServiceStub) Login(_ context.Context, req dto.LoginRequest) (*models.LoginResponse, error) {
	s.login = req
	return s.loginResp, s.err
}

func (s *authServiceStub) ChangePassword(_ context.Context, uid string, req dto.ChangePasswordRequest) error {
	s.changeUID, s.change = uid, req
	return s.err
}

func TestAuthHandlerLoginCapturesClient(t *testing.T) {
	stub := &authServiceStub{loginResp: &models.LoginResponse{AccessToken: "tok", TokenType: "Bearer"}}
	h := NewAuthHandler(stub, nil)

	c, w := newGinContext(http.MethodPost, "/auth/login", []byte(`{"email":"a@desa.id","password":"secret"}`))
	c.Request.Header.Set("User-Agent", "test-agent")
	h.Login(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "a@desa.id", stub.login.Email)
	assert.Equal(t, "test-agent", stub.login.UserAgent)
	assert.NotEmpty(t, stub.login.IP)
	assert.Contains(t, w.Body.String(), `"accessToken":"tok"`)
}

func TestAuthHandlerLoginInvalidCredentials(t *testing.T) {
	stub := &authServiceStub{err: appErrors.ErrInvalidCredentials}
	h := NewAuthHandler(stub, nil)

	c, w := newGinContext(http.MethodPost, "/auth/login", []byte(`{"email":"a@desa.id","password":"wrong"}`))
	h.Login(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var env responseEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "invalid email or password", env.Error)
}

func TestAuthHandlerChangePasswordUsesCaller(t *testing.T) {
	stub := &authServiceStub{}
	h := NewAuthHandler(stub, nil)

	c, w := newGinContext(http.MethodPost, "/auth/change-password", []byte(`{"oldPassword":"a","newPassword":"bcdefg"}`))
	withUser(c, "u-9", models.RoleRegularUser)
	h.ChangePassword(c)

	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "u-9", stub.changeUID)
	assert.Equal(t, "bcdefg", stub.change.NewPassword)
}

func TestAuthHandlerChangePasswordRequiresClaims(t *testing.T) {
	h := NewAuthHandler(&authServiceStub{}, nil)

	c, w := newGinContext(http.MethodPost, "/auth/change-password", []byte(`{}`))
	h.ChangePassword(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandlerMeUsesResolvedRoleAndAccount(t *testing.T) {
	first := "Siti"
	accounts := &userServiceStub{user: &models.User{UID: "u-1", Email: "siti@desa.id", FirstName: &first}}
	h := NewAuthHandler(&authServiceStub{}, accounts)

	c, w := newGinContext(http.MethodGet, "/auth/me", nil)
	withUser(c, "u-1", models.RoleArchiveManager)
	h.Me(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":{"uid":"u-1","email":"siti@desa.id","displayName":"Siti","role":"pengelola_arsip"}}`, w.Body.String())
}
