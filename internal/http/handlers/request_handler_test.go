package handlers

import (
	"net/http"
	"testing"

	"github.com/tbourn/skillswap-backend/internal/domain"
	"github.com/tbourn/skillswap-backend/internal/http/middleware"
)

func TestCreateRequest_SelfRequestRejected(t *testing.T) {
	e := newEnv(t)
	id := e.seedSkill(t, "bob", "Guitar Lessons")

	w := e.do(t, "bob", http.MethodPost, "/requests", CreateRequestRequest{SkillID: id})
	mustCode(t, w, http.StatusBadRequest)
	if got := decode[ErrorResponse](t, w); got.Code != ErrCodeSelfRequest {
		t.Fatalf("code = %q", got.Code)
	}
	var n int64
	e.db.Model(&domain.ExchangeRequest{}).Count(&n)
	if n != 0 {
		t.Fatalf("no request may be stored, got %d", n)
	}
}

func TestCreateRequest_NotifiesOwnerAndLists(t *testing.T) {
	e := newEnv(t)
	bob := &recConn{}
	e.reg.Connect("bob", bob)
	skill := e.seedSkill(t, "bob", "Guitar Lessons")

	w := e.do(t, "alice", http.MethodPost, "/requests", CreateRequestRequest{SkillID: skill, Message: "Can you teach Tuesdays?"})
	mustCode(t, w, http.StatusCreated)
	resp := decode[MessageResponse](t, w)
	if resp.Message != "Request sent" || resp.ID == "" {
		t.Fatalf("unexpected body: %+v", resp)
	}

	var got map[string]any
	for _, ev := range bob.events(t) {
		if ev["type"] == domain.EventNewRequest {
			got = ev
		}
	}
	if got == nil || got["request_id"] != resp.ID || got["from_user"] != "alice" ||
		got["skill_title"] != "Guitar Lessons" || got["skill_id"] != skill || got["message"] != "Can you teach Tuesdays?" {
		t.Fatalf("unexpected new_request event: %v", got)
	}

	w = e.do(t, "bob", http.MethodGet, "/requests/received", nil)
	mustCode(t, w, http.StatusOK)
	if recv := decode[[]domain.ExchangeRequest](t, w); len(recv) != 1 || recv[0].Status != domain.StatusPending {
		t.Fatalf("unexpected received: %+v", recv)
	}
	w = e.do(t, "alice", http.MethodGet, "/requests/sent", nil)
	mustCode(t, w, http.StatusOK)
	if sent := decode[[]domain.ExchangeRequest](t, w); len(sent) != 1 || sent[0].ID != resp.ID {
		t.Fatalf("unexpected sent: %+v", sent)
	}
}

func TestCreateRequest_Errors(t *testing.T) {
	e := newEnv(t)

	mustCode(t, e.do(t, "alice", http.MethodPost, "/requests", map[string]string{}), http.StatusBadRequest)
	mustCode(t, e.do(t, "alice", http.MethodPost, "/requests", CreateRequestRequest{SkillID: "nope"}), http.StatusBadRequest)
	mustCode(t, e.do(t, "alice", http.MethodPost, "/requests",
		CreateRequestRequest{SkillID: "6f1c1d8e-3d4b-4c59-9a0e-1b2c3d4e5f60"}), http.StatusNotFound)
}

func TestCreateRequest_IdempotentReplay(t *testing.T) {
	e := newEnv(t)
	skill := e.seedSkill(t, "bob", "Guitar Lessons")
	body := CreateRequestRequest{SkillID: skill, Message: "hi"}

	w1 := e.do(t, "alice", http.MethodPost, "/requests", body, middleware.HeaderIdempotencyKey, "k-123")
	mustCode(t, w1, http.StatusCreated)
	if w1.Header().Get(middleware.HeaderIdempotencyReplayed) != "" {
		t.Fatalf("first call must not be a replay")
	}

	w2 := e.do(t, "alice", http.MethodPost, "/requests", body, middleware.HeaderIdempotencyKey, "k-123")
	mustCode(t, w2, http.StatusCreated)
	if w2.Header().Get(middleware.HeaderIdempotencyReplayed) != "true" {
		t.Fatalf("second call should be replayed")
	}
	if a, b := decode[MessageResponse](t, w1).ID, decode[MessageResponse](t, w2).ID; a != b {
		t.Fatalf("replay returned a different request: %s vs %s", a, b)
	}

	// Keys are per user: another user with the same key gets a fresh request.
	w3 := e.do(t, "carol", http.MethodPost, "/requests", body, middleware.HeaderIdempotencyKey, "k-123")
	mustCode(t, w3, http.StatusCreated)
	if w3.Header().Get(middleware.HeaderIdempotencyReplayed) != "" {
		t.Fatalf("other user's key must not replay")
	}

	var n int64
	e.db.Model(&domain.ExchangeRequest{}).Count(&n)
	if n != 2 {
		t.Fatalf("expected 2 stored requests, got %d", n)
	}

	w := e.do(t, "alice", http.MethodPost, "/requests", body, middleware.HeaderIdempotencyKey, "bad key!")
	mustCode(t, w, http.StatusBadRequest)
}

func TestRespondToRequest(t *testing.T) {
	e := newEnv(t)
	alice := &recConn{}
	e.reg.Connect("alice", alice)
	skill := e.seedSkill(t, "bob", "Guitar Lessons")
	id := e.seedRequest(t, "alice", skill)

	mustCode(t, e.do(t, "bob", http.MethodPut, "/requests/"+id+"/respond", RespondRequest{Action: "maybe"}), http.StatusBadRequest)
	mustCode(t, e.do(t, "alice", http.MethodPut, "/requests/"+id+"/respond", RespondRequest{Action: "accepted"}), http.StatusForbidden)

	w := e.do(t, "bob", http.MethodPut, "/requests/"+id+"/respond", RespondRequest{Action: "Accepted"})
	mustCode(t, w, http.StatusOK)
	if got := decode[domain.ExchangeRequest](t, w); got.Status != domain.StatusAccepted {
		t.Fatalf("status = %q", got.Status)
	}

	var resp map[string]any
	for _, ev := range alice.events(t) {
		if ev["type"] == domain.EventRequestResponse {
			resp = ev
		}
	}
	if resp == nil || resp["status"] != domain.StatusAccepted || resp["from_user"] != "bob" || resp["skill_title"] != "Guitar Lessons" {
		t.Fatalf("unexpected request_response event: %v", resp)
	}

	w = e.do(t, "bob", http.MethodPut, "/requests/"+id+"/respond", RespondRequest{Action: "declined"})
	mustCode(t, w, http.StatusConflict)
	if got := decode[ErrorResponse](t, w); got.Code != ErrCodeConflict {
		t.Fatalf("code = %q", got.Code)
	}
}

func TestReceivedRequests_ETag(t *testing.T) {
	e := newEnv(t)
	skill := e.seedSkill(t, "bob", "Guitar Lessons")
	id := e.seedRequest(t, "alice", skill)

	w := e.do(t, "bob", http.MethodGet, "/requests/received", nil)
	mustCode(t, w, http.StatusOK)
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("expected ETag")
	}

	w = e.do(t, "bob", http.MethodGet, "/requests/received", nil, "If-None-Match", etag)
	mustCode(t, w, http.StatusNotModified)

	mustCode(t, e.do(t, "bob", http.MethodPut, "/requests/"+id+"/respond", RespondRequest{Action: "declined"}), http.StatusOK)

	w = e.do(t, "bob", http.MethodGet, "/requests/received", nil, "If-None-Match", etag)
	mustCode(t, w, http.StatusOK)
	if w.Header().Get("ETag") == etag {
		t.Fatalf("ETag should change after a response")
	}
}
