package middleware

import (
	"net/http"
	"net/http/httptest"
	"smartgrade_backend/internal/config"
	"smartgrade_backend/internal/model"
	"smartgrade_backend/internal/util"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubUserStore struct {
	users map[uint]*model.User
}

func (s *stubUserStore) FindByID(id uint) (*model.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT = config.JWTConfig{Secret: "middleware-test-secret", ExpireTime: time.Hour}
	return cfg
}

func signToken(t *testing.T, cfg *config.Config, user *model.User) string {
	t.Helper()
	token, err := util.GenerateJWT(user, cfg.JWT.Secret, cfg.JWT.ExpireTime)
	require.NoError(t, err)
	return token
}

func newGateRouter(cfg *config.Config, store *stubUserStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	gated := router.Group("/api")
	gated.Use(AuthMiddleware(cfg), ApprovedMiddleware(store))
	gated.GET("/tasks", func(c *gin.Context) { c.Status(http.StatusOK) })

	proctor := gated.Group("/proctor")
	proctor.Use(RoleMiddleware(model.Proctor))
	proctor.GET("/invites", func(c *gin.Context) { c.Status(http.StatusOK) })

	return router
}

func doGet(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestApprovalGate(t *testing.T) {
	cfg := testConfig()
	approved := &model.User{BaseModel: model.BaseModel{ID: 1}, Name: "Alice", Role: model.Student, IsApproved: true}
	pending := &model.User{BaseModel: model.BaseModel{ID: 2}, Name: "Bob", Role: model.Student, IsApproved: false}
	store := &stubUserStore{users: map[uint]*model.User{1: approved, 2: pending}}
	router := newGateRouter(cfg, store)

	t.Run("no token", func(t *testing.T) {
		rec := doGet(router, "/api/tasks", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := doGet(router, "/api/tasks", "not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("pending account blocked", func(t *testing.T) {
		rec := doGet(router, "/api/tasks", signToken(t, cfg, pending))
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "awaiting manual approval")
	})

	t.Run("approved account passes", func(t *testing.T) {
		rec := doGet(router, "/api/tasks", signToken(t, cfg, approved))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

// 审核状态查库而非查token：老token在放行后立即可用
func TestApprovalReadFromStore(t *testing.T) {
	cfg := testConfig()
	user := &model.User{BaseModel: model.BaseModel{ID: 3}, Name: "Carol", Role: model.Student, IsApproved: false}
	store := &stubUserStore{users: map[uint]*model.User{3: user}}
	router := newGateRouter(cfg, store)

	token := signToken(t, cfg, user)

	rec := doGet(router, "/api/tasks", token)
	require.Equal(t, http.StatusForbidden, rec.Code)

	user.IsApproved = true
	rec = doGet(router, "/api/tasks", token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoleGate(t *testing.T) {
	cfg := testConfig()
	student := &model.User{BaseModel: model.BaseModel{ID: 1}, Name: "Alice", Role: model.Student, IsApproved: true}
	proctor := &model.User{BaseModel: model.BaseModel{ID: 2}, Name: "Dr. Grey", Role: model.Proctor, IsApproved: true}
	store := &stubUserStore{users: map[uint]*model.User{1: student, 2: proctor}}
	router := newGateRouter(cfg, store)

	rec := doGet(router, "/api/proctor/invites", signToken(t, cfg, student))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doGet(router, "/api/proctor/invites", signToken(t, cfg, proctor))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDeletedAccountRejected(t *testing.T) {
	cfg := testConfig()
	ghost := &model.User{BaseModel: model.BaseModel{ID: 9}, Name: "Ghost", Role: model.Student, IsApproved: true}
	store := &stubUserStore{users: map[uint]*model.User{}}
	router := newGateRouter(cfg, store)

	rec := doGet(router, "/api/tasks", signToken(t, cfg, ghost))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
