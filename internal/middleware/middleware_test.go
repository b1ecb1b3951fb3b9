package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/arsip-desa-api/internal/models"
	"github.com/noah-isme/arsip-desa-api/internal/service"
	appErrors "github.com/noah-isme/arsip-desa-api/pkg/errors"
)

type tokenStub struct {
	claims *models.JWTClaims
}

func (s tokenStub) ValidateToken(token string) (*models.JWTClaims, error) {
	if token != "good" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	copy := *s.claims
	return &copy, nil
}

type accountStub struct {
	role  models.UserRole
	calls int
	seen  models.UserRole
	err   error
}

func (a *accountStub) EnsureAccount(ctx context.Context, uid, email, displayName string, defaultRole models.UserRole) (models.UserRole, error) {
	a.calls++
	a.seen = defaultRole
	if a.err != nil {
		return "", a.err
	}
	if a.role == "" {
		return defaultRole, nil
	}
	return a.role, nil
}

// memoryAccounts is a minimal account store for running the real UserService.
type memoryAccounts struct {
	users   map[string]*models.User
	revoked map[string]bool
}

func (m *memoryAccounts) List(ctx context.Context) ([]models.User, error) { return nil, nil }

func (m *memoryAccounts) FindByUID(ctx context.Context, uid string) (*models.User, error) {
	if u, ok := m.users[uid]; ok {
		copy := *u
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memoryAccounts) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, sql.ErrNoRows
}

func (m *memoryAccounts) Create(ctx context.Context, user *models.User) error {
	m.users[user.UID] = user
	return nil
}

func (m *memoryAccounts) CreateIfAbsent(ctx context.Context, user *models.User) (bool, error) {
	if _, ok := m.users[user.UID]; ok {
		return false, nil
	}
	m.users[user.UID] = user
	return true, nil
}

func (m *memoryAccounts) Update(ctx context.Context, user *models.User) error { return nil }

func (m *memoryAccounts) Delete(ctx context.Context, uid string) error {
	if _, ok := m.users[uid]; !ok {
		return sql.ErrNoRows
	}
	delete(m.users, uid)
	m.revoked[uid] = true
	return nil
}

func (m *memoryAccounts) IsRevoked(ctx context.Context, uid string) (bool, error) {
	return m.revoked[uid], nil
}

func (m *memoryAccounts) ClearRevocation(ctx context.Context, uid string) error {
	delete(m.revoked, uid)
	return nil
}

type verifierStub struct{}

func (verifierStub) VerifyDownloadToken(id, token string) error {
	if id == "arch-1" && token == "signed" {
		return nil
	}
	return appErrors.Clone(appErrors.ErrUnauthorized, "download token mismatch")
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func gatedRouter(accounts *accountStub, roles ...models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	auth := JWT(tokenStub{claims: &models.JWTClaims{UserID: "uid-1", Email: "a@desa.id", Role: models.RoleAdministrator}}, accounts, models.RoleRegularUser)
	r.GET("/private", auth, RequireRoles(roles...), func(c *gin.Context) {
		claims := c.MustGet(ContextUserKey).(*models.JWTClaims)
		c.String(http.StatusOK, string(claims.Role))
	})
	r.GET("/archives/:id/download", SignedDownload(verifierStub{}, auth), func(c *gin.Context) {
		c.String(http.StatusOK, "file")
	})
	return r
}

func TestJWTRejectsMissingTokenWithSignInRedirect(t *testing.T) {
	r := gatedRouter(&accountStub{}, models.AllRoles...)

	for _, header := range []string{"", "Basic abc", "Bearer bad", "Bearer "} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
		body := decode(t, w)
		assert.Equal(t, "/signin", body["redirect"])
		assert.IsType(t, "", body["error"])
	}
}

func TestJWTResolvesRoleFromAccount(t *testing.T) {
	accounts := &accountStub{role: models.RoleArchiveManager}
	r := gatedRouter(accounts, models.RoleAdministrator, models.RoleArchiveManager)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer good")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, string(models.RoleArchiveManager), w.Body.String())
	assert.Equal(t, 1, accounts.calls)
	assert.Equal(t, models.RoleRegularUser, accounts.seen)
}

func TestJWTRejectsTokenOfDeletedAccount(t *testing.T) {
	accounts := &accountStub{err: appErrors.Clone(appErrors.ErrUnauthorized, "account has been removed")}
	r := gatedRouter(accounts, models.AllRoles...)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer good")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	body := decode(t, w)
	assert.Equal(t, "/signin", body["redirect"])
	assert.Equal(t, "UNAUTHORIZED", body["code"])
}

func TestJWTTokenStopsWorkingAfterAccountDeletion(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := &memoryAccounts{users: map[string]*models.User{}, revoked: map[string]bool{}}
	users := service.NewUserService(store, nil, nil, nil, nil, models.RoleRegularUser)
	r := gin.New()
	r.GET("/private", JWT(tokenStub{claims: &models.JWTClaims{UserID: "uid-1", Email: "a@desa.id"}}, users, models.RoleRegularUser), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	call := func() int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set("Authorization", "Bearer good")
		r.ServeHTTP(w, req)
		return w.Code
	}

	require.Equal(t, http.StatusOK, call())
	require.Contains(t, store.users, "uid-1")
	require.NoError(t, users.Delete(context.Background(), "uid-1", "admin"))

	assert.Equal(t, http.StatusUnauthorized, call())
	assert.NotContains(t, store.users, "uid-1")
}

func TestRequireRolesForbidsWithHomeRedirect(t *testing.T) {
	r := gatedRouter(&accountStub{}, models.RoleAdministrator)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer good")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	body := decode(t, w)
	assert.Equal(t, "/", body["redirect"])
	assert.Equal(t, "FORBIDDEN", body["code"])
}

func TestSignedDownloadBypassesBearer(t *testing.T) {
	r := gatedRouter(&accountStub{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/archives/arch-1/download?token=signed", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/archives/arch-2/download?token=signed", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/archives/arch-1/download", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/archives/arch-1/download", nil)
	req.Header.Set("Authorization", "Bearer good")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestResponseMetaTracksCacheHit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(WithResponseMeta())
	r.GET("/stats", func(c *gin.Context) {
		SetCacheHit(c, true)
		c.JSON(http.StatusOK, ExtractMeta(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", nil))
	body := decode(t, w)
	assert.Equal(t, true, body["cacheHit"])
	assert.Contains(t, body, "processingTimeMs")
}

func TestAuditContextAttachesRequestInfo(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuditContext())
	var info service.RequestInfo
	r.POST("/x", func(c *gin.Context) {
		info = service.RequestInfoFrom(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.Header.Set("User-Agent", "arsip-test")
	req.RemoteAddr = "192.0.2.10:5000"
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "arsip-test", info.UserAgent)
	assert.Equal(t, "192.0.2.10", info.IP)
}

func TestMetricsRecordsRoutePattern(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	r := gin.New()
	r.Use(Metrics(metrics, "/metrics"))
	r.GET("/archives/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/archives/abc", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), `path="/archives/:id"`)
	assert.Contains(t, w.Body.String(), `path="unmatched"`)
	assert.NotContains(t, w.Body.String(), `path="/metrics"`)
}

func TestBodyLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(BodyLimit(16))
	r.POST("/echo", func(c *gin.Context) {
		data, err := io.ReadAll(c.Request.Body)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.String(http.StatusRequestEntityTooLarge, "%d", MaxBodyBytes(c))
			return
		}
		c.String(http.StatusOK, string(data))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("kecil")))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "kecil", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("x", 64))))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "PAYLOAD_TOO_LARGE", decode(t, w)["code"])

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("x", 64)))
	req.ContentLength = -1
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "16", w.Body.String())
}
