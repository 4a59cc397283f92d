package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/pedidos-backend/internal/domain"
)

func lastLine(t *testing.T, s string) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(s), "\n")
	var m map[string]any
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &m); err != nil {
		t.Fatalf("decode log line: %v (%s)", err, s)
	}
	return m
}

func TestRedactingLogger_MasksTokensAndPII(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID(), RedactingLogger(RedactOptions{MaskHeaders: []string{"X-Api-Key"}}))
	r.GET("/ws/pedidos", func(c *gin.Context) {
		c.Set(ctxKeyUser, &domain.User{ID: 7})
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet,
		"/ws/pedidos?token=eyJhbGciOi.abc.def&email=ana@example.com&estado=confirmado", nil)
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("X-Api-Key", "k")
	req.Header.Set("X-Contact", "call 212-555-1212")
	r.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	for _, leak := range []string{"eyJhbGciOi", "ana@example.com", "Bearer secret", "555-1212"} {
		if strings.Contains(out, leak) {
			t.Fatalf("log leaked %q: %s", leak, out)
		}
	}
	m := lastLine(t, out)
	if m["query"] != "token=[REDACTED]&email=[REDACTED:email]&estado=confirmado" {
		t.Fatalf("query = %v", m["query"])
	}
	if m["level"] != "info" || m["path"] != "/ws/pedidos" || m["user_id"] != float64(7) {
		t.Fatalf("line = %v", m)
	}
	headers := m["headers"].(map[string]any)
	if headers["Authorization"] != redacted || headers["X-Api-Key"] != redacted {
		t.Fatalf("headers = %v", headers)
	}
}

func TestRedactingLogger_LevelsAndScopedLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID(), RedactingLogger(RedactOptions{}))
	r.GET("/warn", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/err", func(c *gin.Context) {
		LoggerFrom(c).Info().Msg("inside handler")
		_ = c.Error(http.ErrAbortHandler)
		c.Status(http.StatusInternalServerError)
	})

	req := httptest.NewRequest(http.MethodGet, "/warn", nil)
	req.Header.Set(requestIDHeader, "rid-w")
	r.ServeHTTP(httptest.NewRecorder(), req)
	if m := lastLine(t, buf.String()); m["level"] != "warn" || m["request_id"] != "rid-w" {
		t.Fatalf("warn line = %v", m)
	}

	buf.Reset()
	req = httptest.NewRequest(http.MethodGet, "/err", nil)
	req.Header.Set(requestIDHeader, "rid-e")
	r.ServeHTTP(httptest.NewRecorder(), req)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || !strings.Contains(lines[0], `"request_id":"rid-e"`) {
		t.Fatalf("handler log must carry request fields: %v", lines)
	}
	if m := lastLine(t, buf.String()); m["level"] != "error" || m["errors"] == nil {
		t.Fatalf("error line = %v", m)
	}
}

func TestRedactQuery_KeepsOrder(t *testing.T) {
	mask := lowerSet([]string{"password"}, []string{" Refresh_Token "})
	got := redactQuery("a=1&PASSWORD=x&refresh_token=y&flag", mask)
	if got != "a=1&PASSWORD=[REDACTED]&refresh_token=[REDACTED]&flag" {
		t.Fatalf("got %q", got)
	}
	if redactQuery("", mask) != "" {
		t.Fatalf("empty query")
	}
}
