package middlewares

import (
	"bytes"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"staybook/logger"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

func newLoggedRouter(buf *bytes.Buffer, handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestLogger(logger.New(log.New(buf, "", 0))))
	router.GET("/ping", handler)
	return router
}

func TestRequestLoggerCarriesTraceParent(t *testing.T) {
	const traceID = "4bf92f3577b34da6a3ce929d0e0e4736"

	var buf bytes.Buffer
	var seen string
	router := newLoggedRouter(&buf, func(c *gin.Context) {
		seen = trace.SpanContextFromContext(c.Request.Context()).TraceID().String()
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("traceparent", "00-"+traceID+"-00f067aa0ba902b7-01")
	req.Header.Set(RequestIDHeader, "req-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if seen != traceID {
		t.Errorf("handler trace id %q, want %q", seen, traceID)
	}
	if w.Header().Get(RequestIDHeader) != "req-1" {
		t.Errorf("request id header %q", w.Header().Get(RequestIDHeader))
	}
	line := buf.String()
	if !strings.Contains(line, "traceID: "+traceID) || !strings.Contains(line, "requestID: req-1") {
		t.Errorf("access line %q", line)
	}
}

func TestRequestLoggerWithoutTraceParent(t *testing.T) {
	var buf bytes.Buffer
	router := newLoggedRouter(&buf, func(c *gin.Context) {
		_ = c.Error(http.ErrBodyNotAllowed)
		c.Status(http.StatusInternalServerError)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if w.Header().Get(RequestIDHeader) == "" {
		t.Error("no request id generated")
	}
	out := buf.String()
	if !strings.Contains(out, "traceID: ,") {
		t.Errorf("access line without trace %q", out)
	}
	if !strings.Contains(out, "type: handler") || !strings.Contains(out, http.ErrBodyNotAllowed.Error()) {
		t.Errorf("handler error not logged: %q", out)
	}
}
