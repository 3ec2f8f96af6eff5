package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uirecorder/pkg/auth"
	"uirecorder/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func protectedRouter(j *auth.JWT) *gin.Engine {
	r := gin.New()
	r.Use(AuthMiddleware(j))
	r.GET("/me", func(c *gin.Context) {
		id, _ := UserID(c)
		response.Success(c, gin.H{"id": id, "name": c.GetString(UsernameKey)})
	})
	return r
}

func call(t *testing.T, r http.Handler, req *http.Request) response.Response {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var body response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthMiddleware(t *testing.T) {
	j := auth.NewJWT("secret", time.Hour)
	r := protectedRouter(j)
	token, err := j.GenerateToken(3, "carol")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		query  string
		code   int
	}{
		{name: "bearer header", header: "Bearer " + token, code: 200},
		{name: "query token", query: "?token=" + token, code: 200},
		{name: "missing", code: 401},
		{name: "wrong scheme", header: "Basic " + token, code: 401},
		{name: "garbage", header: "Bearer nope", code: 401},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			body := call(t, r, req)
			assert.Equal(t, tt.code, body.Code)
			if tt.code == 200 {
				data := body.Data.(map[string]interface{})
				assert.EqualValues(t, 3, data["id"])
				assert.Equal(t, "carol", data["name"])
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/x", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestLoggerMiddleware(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	r := gin.New()
	r.Use(Logger(logger))
	r.GET("/x/:id", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x/1", nil))
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "/x/:id", hook.LastEntry().Data["path"])
	assert.Equal(t, http.StatusTeapot, hook.LastEntry().Data["status"])
}
