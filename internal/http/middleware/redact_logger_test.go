package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRedactingLogger_MasksCredentialsAndPII(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID(), RedactingLogger(RedactOptions{MaskHeaders: []string{"X-Api-Key"}}))
	r.GET("/ws/:user_id", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet,
		"/ws/alice?token=eyJhbGciOiJIUzI1NiJ9.secret.sig&email=alice@example.com&rid=6f1c1d8e-3d4b-4c59-9a0e-1b2c3d4e5f60", nil)
	req.Header.Set("Authorization", "Bearer abc.def.ghi")
	req.Header.Set("X-Api-Key", "k-123")
	req.Header.Set("X-Note", "call 212-555-1212")
	r.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	for _, leak := range []string{"eyJhbGciOiJIUzI1NiJ9", "abc.def.ghi", "k-123", "alice@example.com", "6f1c1d8e-3d4b", "212-555-1212"} {
		if strings.Contains(out, leak) {
			t.Fatalf("log leaked %q: %s", leak, out)
		}
	}
	for _, want := range []string{"token=[REDACTED]", "[REDACTED:email]", "[REDACTED:id]", "[REDACTED:phone]", `"path":"/ws/:user_id"`, `"level":"info"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in log: %s", want, out)
		}
	}
}

func TestRedactingLogger_LevelsAndUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RedactingLogger(RedactOptions{}))
	r.GET("/warn", func(c *gin.Context) {
		c.Set(ctxKeyUser, "bob")
		c.Status(http.StatusNotFound)
	})
	r.GET("/err", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/warn", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/err", nil))

	lines := logLines(t, buf)
	if len(lines) != 2 {
		t.Fatalf("expected two access lines, got %s", buf.String())
	}
	if lines[0]["level"] != "warn" || lines[0]["user_id"] != "bob" {
		t.Fatalf("4xx should log at warn with user: %v", lines[0])
	}
	if lines[1]["level"] != "error" {
		t.Fatalf("5xx should log at error: %v", lines[1])
	}
}

func TestRedactQuery_Unparseable(t *testing.T) {
	mask := lowerSet([]string{"token"}, nil)
	if got := redactQuery("%zz&mail=a@b.io", mask); strings.Contains(got, "a@b.io") {
		t.Fatalf("fallback path must still scrub PII: %q", got)
	}
	if got := redactQuery("", mask); got != "" {
		t.Fatalf("empty query should stay empty")
	}
	if got := redactQuery("TOKEN=x", mask); got != "TOKEN=[REDACTED]" {
		t.Fatalf("parameter match is case-insensitive, got %q", got)
	}
}
