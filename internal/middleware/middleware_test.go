package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/iep-planner-api/internal/models"
	"github.com/noah-isme/iep-planner-api/internal/service"
	appErrors "github.com/noah-isme/iep-planner-api/pkg/errors"
)

type tokenValidatorStub struct {
	claims *models.ShareClaims
	seen   []string
}

func (s *tokenValidatorStub) ValidateToken(token string) (*models.ShareClaims, error) {
	s.seen = append(s.seen, token)
	if token != "good" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid share link")
	}
	return s.claims, nil
}

func shareRouter(v ShareTokenValidator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/shared", ShareToken(v), func(c *gin.Context) {
		claims := ShareClaims(c)
		c.JSON(http.StatusOK, gin.H{"subject": claims.Subject})
	})
	return r
}

func TestShareTokenFromHeaderAndQuery(t *testing.T) {
	stub := &tokenValidatorStub{claims: &models.ShareClaims{Scope: models.ShareScopePlanRead}}
	stub.claims.Subject = "stu-1"
	r := shareRouter(stub)

	for _, req := range []*http.Request{
		func() *http.Request {
			req := httptest.NewRequest(http.MethodGet, "/shared", nil)
			req.Header.Set("Authorization", "Bearer good")
			return req
		}(),
		httptest.NewRequest(http.MethodGet, "/shared?token=good", nil),
	} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"subject":"stu-1"}`, rec.Body.String())
	}
	assert.Equal(t, []string{"good", "good"}, stub.seen)
}

func TestShareTokenRejects(t *testing.T) {
	stub := &tokenValidatorStub{}
	r := shareRouter(stub)

	cases := map[string]func(*http.Request){
		"missing":    func(*http.Request) {},
		"bad scheme": func(req *http.Request) { req.Header.Set("Authorization", "Basic good") },
		"bad token":  func(req *http.Request) { req.Header.Set("Authorization", "Bearer forged") },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/shared", nil)
			mutate(req)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, false, body["success"])
		})
	}
}

func TestResponseMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var captured map[string]interface{}
	r.Use(WithResponseMeta())
	r.GET("/", func(c *gin.Context) {
		SetSource(c, "fallback")
		SetSource(c, "")
		SetMeta(c, "count", 3)
		captured = ExtractMeta(c)
		c.Status(http.StatusNoContent)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotNil(t, captured)
	assert.Equal(t, "fallback", captured["source"])
	assert.Equal(t, 3, captured["count"])
	assert.Contains(t, captured, "processing_time_ms")
}

func TestMetricsMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	r := gin.New()
	r.Use(Metrics(metrics))
	r.GET("/profile/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/profile/abc", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `path="/profile/:id"`)
	assert.Contains(t, body, `path="unmatched"`)
	assert.NotContains(t, body, "/profile/abc")
	assert.Equal(t, uint64(2), metrics.Snapshot().Requests)
}
