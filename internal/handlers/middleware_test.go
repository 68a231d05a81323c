package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"rover_control/internal/logger"
	"rover_control/internal/service"

	"github.com/gin-gonic/gin"
)

// minimal router wiring only the middleware + an echo endpoint
func newMiddlewareOnlyRouter(s *service.Service, log *logger.Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(s, log, 0)
	r.GET("/echo", h.requestLogger, func(c *gin.Context) {
		id, _ := c.Get("requestId")
		c.JSON(http.StatusOK, gin.H{"requestId": id})
	})
	return r
}

func TestRequestLogger_RequestID(t *testing.T) {
	cases := []struct {
		name     string
		header   string
		wantSame bool
	}{
		{name: "generated when missing", header: ""},
		{name: "propagated when present", header: "abc-123", wantSame: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newMiddlewareOnlyRouter(&service.Service{}, logger.Nop())

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/echo", nil)
			if tc.header != "" {
				req.Header.Set(requestIDHeader, tc.header)
			}
			r.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("status: got %d", w.Code)
			}
			got := w.Header().Get(requestIDHeader)
			if got == "" {
				t.Fatalf("missing %s response header", requestIDHeader)
			}
			if tc.wantSame && got != tc.header {
				t.Fatalf("request id: got %q, want %q", got, tc.header)
			}

			var out struct {
				RequestID string `json:"requestId"`
			}
			_ = json.Unmarshal(w.Body.Bytes(), &out)
			if out.RequestID != got {
				t.Fatalf("context id %q != header id %q", out.RequestID, got)
			}
		})
	}
}

func TestRequestLogger_NilLogger(t *testing.T) {
	r := newMiddlewareOnlyRouter(&service.Service{}, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/echo", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
}
