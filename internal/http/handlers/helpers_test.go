package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/skillswap-backend/internal/auth"
	"github.com/tbourn/skillswap-backend/internal/domain"
	"github.com/tbourn/skillswap-backend/internal/http/middleware"
	"github.com/tbourn/skillswap-backend/internal/realtime"
	"github.com/tbourn/skillswap-backend/internal/repo"
	"github.com/tbourn/skillswap-backend/internal/search"
	"github.com/tbourn/skillswap-backend/internal/services"
)

const testSecret = "handlers-test-secret-0123456789"

// ---------- test env ----------

type testEnv struct {
	db   *gorm.DB
	reg  *realtime.Registry
	chat *services.ChatService
	h    *Handlers
	r    *gin.Engine
}

func newHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:handlers_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// newEnv wires real services over an in-memory database behind the same
// auth and idempotency middleware the router uses.
func newEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := newHandlerDB(t)
	reg := realtime.NewRegistry(zerolog.Nop())
	notify := realtime.NewRouter(reg, nil, zerolog.Nop())

	chat := services.NewChatService(db, notify)
	h := New(
		services.NewUserService(db),
		services.NewSkillService(db, notify, search.New()),
		services.NewRequestService(db, notify),
		chat,
		reg,
		Options{IdempotencyTTL: time.Hour, WS: realtime.Options{PingInterval: time.Second}},
	)

	verifier := auth.NewVerifier(testSecret, "")
	lookup := func(ctx context.Context, userID, scope, key string, now time.Time) (string, error) {
		rec, err := repo.GetIdempotency(ctx, db, userID, scope, key, now)
		if err != nil {
			return "", nil
		}
		return rec.ResourceID, nil
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	api := r.Group("/api/v1")
	api.GET("/ws/:user_id", middleware.Auth(verifier, middleware.AuthOptions{QueryParam: "token"}), h.Websocket)

	authed := api.Group("")
	authed.Use(middleware.Auth(verifier, middleware.AuthOptions{}))
	authed.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, lookup))
	h.Register(authed)

	return &testEnv{db: db, reg: reg, chat: chat, h: h, r: r}
}

func signToken(t *testing.T, sub string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sub,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	s, err := tok.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

// do performs an authenticated request as user (anonymous when empty).
func (e *testEnv) do(t *testing.T, user, method, path string, body any, hdr ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, "/api/v1"+path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set("Authorization", "Bearer "+signToken(t, user))
	}
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func mustCode(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d; body=%s", w.Code, want, w.Body.String())
	}
}

// seedSkill lists a skill for owner through the API and returns its id.
func (e *testEnv) seedSkill(t *testing.T, owner, title string) string {
	t.Helper()
	w := e.do(t, owner, http.MethodPost, "/skills", CreateSkillRequest{
		Title: title, Description: "lessons", Category: "music", Availability: "weekends",
	})
	mustCode(t, w, http.StatusCreated)
	return decode[MessageResponse](t, w).ID
}

// seedRequest files a request from user on skillID and returns its id.
func (e *testEnv) seedRequest(t *testing.T, from, skillID string) string {
	t.Helper()
	w := e.do(t, from, http.MethodPost, "/requests", CreateRequestRequest{SkillID: skillID, Message: "hello"})
	mustCode(t, w, http.StatusCreated)
	return decode[MessageResponse](t, w).ID
}

func (e *testEnv) countMessages(t *testing.T) int64 {
	t.Helper()
	var n int64
	if err := e.db.Model(&domain.ChatMessage{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}
