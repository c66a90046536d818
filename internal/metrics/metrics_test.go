package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.NonceIssued()
	m.NonceIssued()
	m.Login(OutcomeSuccess)
	m.Login(OutcomeReplay)
	m.Login(OutcomeReplay)
	m.Registered("DONOR")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.noncesIssued))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.logins.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.logins.WithLabelValues(OutcomeReplay)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.registrations.WithLabelValues("DONOR")))
}

func TestNilAuthIsNoop(t *testing.T) {
	var m *Auth
	assert.NotPanics(t, func() {
		m.NonceIssued()
		m.Login(OutcomeError)
		m.Registered("VENDOR")
	})
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New(prometheus.NewRegistry())

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `securerelief_http_request_duration_seconds_count{method="GET",route="/ping",status="204"} 1`)
}
