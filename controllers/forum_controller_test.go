package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/lmenendez/agora/config"
	"github.com/lmenendez/agora/utils"
)

func newOptionalAuthContext(t *testing.T, header string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	ctx.Request = httptest.NewRequest(http.MethodGet, "/api/v1/forums/general", nil)
	if header != "" {
		ctx.Request.Header.Set("Authorization", header)
	}
	return ctx
}

func TestBearerUserIDValidToken(t *testing.T) {
	config.SetForTesting(config.AppConfig{JWTSecret: "forum-test-secret"})

	token, err := utils.GenerateToken(7, "alice", time.Hour)
	require.NoError(t, err)

	userID, ok := bearerUserID(newOptionalAuthContext(t, "Bearer "+token))
	require.True(t, ok)
	require.EqualValues(t, 7, userID)
}

func TestBearerUserIDAnonymous(t *testing.T) {
	config.SetForTesting(config.AppConfig{JWTSecret: "forum-test-secret"})

	_, ok := bearerUserID(newOptionalAuthContext(t, ""))
	require.False(t, ok)
}

func TestBearerUserIDBadToken(t *testing.T) {
	config.SetForTesting(config.AppConfig{JWTSecret: "forum-test-secret"})

	_, ok := bearerUserID(newOptionalAuthContext(t, "Bearer bogus"))
	require.False(t, ok)

	_, ok = bearerUserID(newOptionalAuthContext(t, "Basic dXNlcjpwYXNz"))
	require.False(t, ok)
}
