package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"payment_service/internal/infrastructure/logging"

	"github.com/gin-gonic/gin"
)

func TestCorrelationID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var seen string
	r := gin.New()
	r.Use(CorrelationID())
	r.GET("/x", func(c *gin.Context) {
		seen = logging.CorrelationID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	t.Run("propagates caller id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set(HeaderCorrelationID, "abc-123")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if seen != "abc-123" || w.Header().Get(HeaderCorrelationID) != "abc-123" {
			t.Fatalf("expected abc-123, got ctx=%q header=%q", seen, w.Header().Get(HeaderCorrelationID))
		}
	})

	t.Run("generates id when missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		got := w.Header().Get(HeaderCorrelationID)
		if got == "" || got != seen {
			t.Fatalf("expected generated id in header and context, got header=%q ctx=%q", got, seen)
		}
	})

	t.Run("replaces oversized id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set(HeaderCorrelationID, strings.Repeat("a", 500))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if len(w.Header().Get(HeaderCorrelationID)) > maxCorrelationIDLength {
			t.Fatalf("oversized id should be replaced")
		}
	})
}

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	logging.Setup(logging.Options{ServiceName: "payment-service", Level: "info", Output: &buf})

	r := gin.New()
	r.Use(CorrelationID(), RequestLogger())
	r.GET("/payments/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	req := httptest.NewRequest(http.MethodGet, "/payments/pay-1", nil)
	req.Header.Set(HeaderCorrelationID, "corr-1")
	r.ServeHTTP(httptest.NewRecorder(), req)

	line := buf.String()
	for _, want := range []string{`"route":"/payments/:id"`, `"status":404`, `"correlation_id":"corr-1"`, `"level":"warn"`} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %s in log line: %s", want, line)
		}
	}
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}
