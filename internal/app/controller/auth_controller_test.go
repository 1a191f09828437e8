package controller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/toolchest-backend/internal/app/model"
	"github.com/ikkim/toolchest-backend/internal/app/repository"
	"github.com/ikkim/toolchest-backend/internal/app/service"
	apperrors "github.com/ikkim/toolchest-backend/internal/errors"
	"github.com/ikkim/toolchest-backend/internal/middleware"
	"github.com/ikkim/toolchest-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRevoker struct {
	revoked map[string]bool
}

func (r *memoryRevoker) Revoke(_ context.Context, tokenID string, _ time.Duration) error {
	r.revoked[tokenID] = true
	return nil
}

func (r *memoryRevoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	return r.revoked[tokenID], nil
}

func setupAuthControllerTest(t *testing.T) (*gin.Engine, *memoryRevoker) {
	f := setupControllerTest(t)

	adminRepo := repository.NewAdminUserRepository(f.db)
	hash, err := util.HashPassword("Sup3r-secret")
	require.NoError(t, err)
	require.NoError(t, adminRepo.Create(context.Background(), &model.AdminUser{
		Email:        "admin@toolchest.local",
		PasswordHash: hash,
		Name:         "Admin",
		Role:         model.AdminRoleAdmin,
	}))

	revoker := &memoryRevoker{revoked: map[string]bool{}}
	authService := service.NewAuthService(adminRepo, testJWTSecret, 15*time.Minute, 24*time.Hour, revoker)
	ctrl := NewAuthController(authService)
	authMiddleware := middleware.NewAuthMiddleware(testJWTSecret).WithRevocation(revoker)

	router := gin.New()
	router.POST("/login", ctrl.Login)
	router.POST("/refresh", ctrl.RefreshToken)
	router.POST("/logout", authMiddleware.Authenticate(), ctrl.Logout)
	router.GET("/me", authMiddleware.Authenticate(), ctrl.GetMe)
	return router, revoker
}

func login(t *testing.T, router *gin.Engine) (access, refresh string) {
	w := performJSON(router, http.MethodPost, "/login", LoginRequest{
		Email:    "Admin@Toolchest.local",
		Password: "Sup3r-secret",
	})
	require.Equal(t, http.StatusOK, w.Code)
	tokens := decodeBody(t, w)["tokens"].(map[string]interface{})
	return tokens["access_token"].(string), tokens["refresh_token"].(string)
}

func withBearer(router *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthController_Login(t *testing.T) {
	router, _ := setupAuthControllerTest(t)

	tests := []struct {
		name   string
		body   interface{}
		status int
		code   string
	}{
		{"wrong password", LoginRequest{Email: "admin@toolchest.local", Password: "nope"}, http.StatusUnauthorized, apperrors.AuthInvalidCredentials},
		{"unknown email", LoginRequest{Email: "ghost@toolchest.local", Password: "Sup3r-secret"}, http.StatusUnauthorized, apperrors.AuthInvalidCredentials},
		{"invalid email", LoginRequest{Email: "not-an-email", Password: "x"}, http.StatusBadRequest, apperrors.ValidationInvalidInput},
		{"missing body", nil, http.StatusBadRequest, apperrors.ValidationInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performJSON(router, http.MethodPost, "/login", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decodeError(t, w).Error)
		})
	}

	access, refresh := login(t, router)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
}

func TestAuthController_MeAndRefresh(t *testing.T) {
	router, _ := setupAuthControllerTest(t)
	access, refresh := login(t, router)

	w := withBearer(router, http.MethodGet, "/me", access)
	require.Equal(t, http.StatusOK, w.Code)
	user := decodeBody(t, w)["user"].(map[string]interface{})
	assert.Equal(t, "admin@toolchest.local", user["email"])
	assert.NotContains(t, user, "password_hash")

	w = performJSON(router, http.MethodPost, "/refresh", RefreshTokenRequest{RefreshToken: refresh})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decodeBody(t, w), "tokens")

	// 액세스 토큰으로는 재발급 불가
	w = performJSON(router, http.MethodPost, "/refresh", RefreshTokenRequest{RefreshToken: access})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, apperrors.AuthTokenInvalid, decodeError(t, w).Error)
}

func TestAuthController_Logout(t *testing.T) {
	router, revoker := setupAuthControllerTest(t)
	access, _ := login(t, router)

	w := withBearer(router, http.MethodPost, "/logout", access)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, revoker.revoked, 1)

	w = withBearer(router, http.MethodGet, "/me", access)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
