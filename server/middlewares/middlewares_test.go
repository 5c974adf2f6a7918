package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/murtaza309/streemza/account"
	"github.com/murtaza309/streemza/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(verifier TokenVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(JWT(verifier))
	router.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, GetActorId(c))
	})
	return router
}

func TestJWT(t *testing.T) {
	issuer := account.NewTokenIssuer("secret", time.Hour)
	token, err := issuer.Issue(&model.User{Id: "u1", Username: "alice"})
	require.NoError(t, err)
	router := newTestRouter(issuer)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami?token="+token, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())
}

func TestJWTRejects(t *testing.T) {
	issuer := account.NewTokenIssuer("secret", time.Hour)
	forged, err := account.NewTokenIssuer("other", time.Hour).Issue(&model.User{Id: "u1"})
	require.NoError(t, err)
	router := newTestRouter(issuer)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"message": "empty jwt token"}`, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
