package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(ToolInvocationsTotal.WithLabelValues("analyze_bridge_route", "ok"))
	ToolInvocationsTotal.WithLabelValues("analyze_bridge_route", "ok").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(ToolInvocationsTotal.WithLabelValues("analyze_bridge_route", "ok")))

	before = testutil.ToFloat64(ProviderFailuresTotal.WithLabelValues("routes"))
	ProviderFailuresTotal.WithLabelValues("routes").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(ProviderFailuresTotal.WithLabelValues("routes")))
}

func TestPausedGauge(t *testing.T) {
	BridgePaused.Set(1)
	assert.Equal(t, 1.0, testutil.ToFloat64(BridgePaused))
	BridgePaused.Set(0)
	assert.Equal(t, 0.0, testutil.ToFloat64(BridgePaused))
}

func TestMiddlewareRecordsRoutePattern(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/tools", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/tools", "200"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tools", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, before+1, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/tools", "200")))
}

func TestMiddlewareLabelsUnmatchedRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, before+1, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")))
}
