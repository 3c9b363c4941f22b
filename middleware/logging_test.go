package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestSplitTraceParent(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  []string
	}{
		{
			name:  "well formed",
			value: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01",
			want:  []string{"00", "4bf92f3577b34da6a3ce929d0e0e4736", "00f067aa0ba902b7", "01"},
		},
		{name: "empty", value: "", want: []string{}},
		{name: "no separators", value: "justonepart", want: []string{"justonepart"}},
		{name: "double hyphen skips empty segment", value: "00--abc", want: []string{"00", "abc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitTraceParent(tt.value)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d (%v)", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("part %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestGetTraceIDPrecedence(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newCtx := func(headers map[string]string) *gin.Context {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		for k, v := range headers {
			c.Request.Header.Set(k, v)
		}
		return c
	}

	t.Run("traceparent wins", func(t *testing.T) {
		c := newCtx(map[string]string{
			TraceParentHeader: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01",
			TraceIDHeader:     "header-trace-id",
		})
		if got := GetTraceID(c); got != "4bf92f3577b34da6a3ce929d0e0e4736" {
			t.Fatalf("GetTraceID = %q", got)
		}
	})

	t.Run("x-trace-id fallback", func(t *testing.T) {
		c := newCtx(map[string]string{TraceIDHeader: "header-trace-id"})
		if got := GetTraceID(c); got != "header-trace-id" {
			t.Fatalf("GetTraceID = %q", got)
		}
	})

	t.Run("generated when absent", func(t *testing.T) {
		c := newCtx(nil)
		got := GetTraceID(c)
		if len(got) != 32 {
			t.Fatalf("generated trace id length = %d, want 32", len(got))
		}
	})
}

func TestLoggingMiddlewareSetsTraceHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(LoggingMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Header().Get(TraceIDHeader) == "" {
		t.Fatal("response missing X-Trace-ID header")
	}
}
