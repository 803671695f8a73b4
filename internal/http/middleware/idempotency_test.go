package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

type lookupCall struct {
	user, scope, key string
}

func recordingLookup(rid string, err error, calls *[]lookupCall) IdempotencyLookup {
	return func(_ context.Context, user, scope, key string, _ time.Time) (string, error) {
		*calls = append(*calls, lookupCall{user, scope, key})
		return rid, err
	}
}

func idemRouter(lookup IdempotencyLookup, opts IdempotencyOptions) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(ctxKeyUser, "alice"); c.Next() })
	r.Use(IdempotencyValidator(opts, lookup))
	handler := func(c *gin.Context) {
		key, _ := GetIdempotencyKey(c)
		rid, _ := ReplayResourceID(c)
		c.JSON(http.StatusOK, gin.H{
			"key":    key,
			"replay": rid,
			"bypass": IsRateBypass(c),
			"scope":  IdempotencyScope(c),
		})
	}
	r.POST("/requests", handler)
	r.GET("/requests", handler)
	return r
}

func doIdem(r http.Handler, method, key string) (*httptest.ResponseRecorder, map[string]any) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, "/requests", nil)
	if key != "" {
		req.Header.Set(HeaderIdempotencyKey, key)
	}
	r.ServeHTTP(w, req)
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestIdempotencyValidator_NoHeaderOrSafeMethod_NoLookup(t *testing.T) {
	var calls []lookupCall
	r := idemRouter(recordingLookup("", nil, &calls), IdempotencyOptions{})

	if w, body := doIdem(r, http.MethodPost, ""); w.Code != http.StatusOK || body["key"] != "" {
		t.Fatalf("no header: code=%d body=%v", w.Code, body)
	}
	if w, body := doIdem(r, http.MethodGet, "k1"); w.Code != http.StatusOK || body["key"] != "" {
		t.Fatalf("GET must ignore the header: code=%d body=%v", w.Code, body)
	}
	if len(calls) != 0 {
		t.Fatalf("lookup should not run, got %v", calls)
	}
}

func TestIdempotencyValidator_InvalidKeys(t *testing.T) {
	r := idemRouter(nil, IdempotencyOptions{MaxLen: 8, Pattern: regexp.MustCompile(`^[a-z]+$`)})

	for _, key := range []string{"toolongkey", "BAD"} {
		w, body := doIdem(r, http.MethodPost, key)
		if w.Code != http.StatusBadRequest || body["code"] != "bad_idempotency_key" {
			t.Fatalf("key %q: code=%d body=%v", key, w.Code, body)
		}
	}
}

func TestIdempotencyValidator_MissAndHit(t *testing.T) {
	var calls []lookupCall
	r := idemRouter(recordingLookup("", nil, &calls), IdempotencyOptions{})
	_, body := doIdem(r, http.MethodPost, "key-1")
	if body["key"] != "key-1" || body["replay"] != "" || body["bypass"] != false {
		t.Fatalf("miss: %v", body)
	}
	if len(calls) != 1 || calls[0] != (lookupCall{"alice", "/requests", "key-1"}) {
		t.Fatalf("lookup args: %v", calls)
	}

	calls = nil
	r = idemRouter(recordingLookup("res-9", nil, &calls), IdempotencyOptions{})
	_, body = doIdem(r, http.MethodPost, "key-1")
	if body["replay"] != "res-9" || body["bypass"] != true || body["scope"] != "/requests" {
		t.Fatalf("hit: %v", body)
	}
}

func TestIdempotencyValidator_LookupErrorProceeds(t *testing.T) {
	buf := captureLogger(t)
	var calls []lookupCall
	r := idemRouter(recordingLookup("", errors.New("db down"), &calls), IdempotencyOptions{})

	w, body := doIdem(r, http.MethodPost, "key-2")
	if w.Code != http.StatusOK || body["replay"] != "" || body["key"] != "key-2" {
		t.Fatalf("lookup error should not block: code=%d body=%v", w.Code, body)
	}
	if !strings.Contains(buf.String(), "idempotency lookup failed") {
		t.Fatalf("lookup error should be logged: %s", buf.String())
	}
}

func TestIdempotencyAccessors_WrongTypes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/raw/path", nil)

	if _, ok := GetIdempotencyKey(c); ok || IsReplay(c) {
		t.Fatalf("accessors should report absence by default")
	}
	c.Set(ctxKeyIdemKey, 123)
	c.Set(ctxKeyIdemReplay, true)
	if _, ok := GetIdempotencyKey(c); ok || IsReplay(c) {
		t.Fatalf("non-string values must be ignored")
	}
	if got := IdempotencyScope(c); got != "/raw/path" {
		t.Fatalf("scope should fall back to the raw path, got %q", got)
	}
}
