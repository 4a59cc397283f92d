package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_RouteLabels(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics())
	r.GET("/api/telegram/pedidos/:id", func(c *gin.Context) { c.String(http.StatusOK, "{}") })

	okLabels := []string{"GET", "/api/telegram/pedidos/:id", "200"}
	missLabels := []string{"GET", "unmatched", "404"}
	baseOK := testutil.ToFloat64(httpReqs.WithLabelValues(okLabels...))
	baseMiss := testutil.ToFloat64(httpReqs.WithLabelValues(missLabels...))

	for _, p := range []string{"/api/telegram/pedidos/1", "/api/telegram/pedidos/2", "/nope"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	if got := testutil.ToFloat64(httpReqs.WithLabelValues(okLabels...)); got != baseOK+2 {
		t.Fatalf("route counter = %v, want %v", got, baseOK+2)
	}
	if got := testutil.ToFloat64(httpReqs.WithLabelValues(missLabels...)); got != baseMiss+1 {
		t.Fatalf("unmatched counter = %v", got)
	}
	if got := testutil.ToFloat64(httpInflight); got != 0 {
		t.Fatalf("inflight = %v", got)
	}
	if n := testutil.CollectAndCount(httpLat); n == 0 {
		t.Fatalf("latency histogram empty")
	}
}
