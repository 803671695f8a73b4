package handlers

import (
	"net/http"
	"testing"

	"github.com/tbourn/skillswap-backend/internal/domain"
	"github.com/tbourn/skillswap-backend/internal/services"
)

func TestChatHistory_AuthorizationAndETag(t *testing.T) {
	e := newEnv(t)
	skill := e.seedSkill(t, "bob", "Guitar Lessons")
	id := e.seedRequest(t, "alice", skill)

	mustCode(t, e.do(t, "mallory", http.MethodGet, "/chat/"+id, nil), http.StatusForbidden)
	mustCode(t, e.do(t, "alice", http.MethodGet, "/chat/xyz", nil), http.StatusBadRequest)
	mustCode(t, e.do(t, "alice", http.MethodGet, "/chat/6f1c1d8e-3d4b-4c59-9a0e-1b2c3d4e5f60", nil), http.StatusNotFound)

	w := e.do(t, "alice", http.MethodGet, "/chat/"+id, nil)
	mustCode(t, w, http.StatusOK)
	if w.Body.String() != "[]" {
		t.Fatalf("expected empty history, got %s", w.Body.String())
	}
	etag := w.Header().Get("ETag")
	mustCode(t, e.do(t, "alice", http.MethodGet, "/chat/"+id, nil, "If-None-Match", etag), http.StatusNotModified)

	mustCode(t, e.do(t, "bob", http.MethodPost, "/chat/"+id, PostChatMessageRequest{Content: "hello"}), http.StatusCreated)

	w = e.do(t, "alice", http.MethodGet, "/chat/"+id, nil, "If-None-Match", etag)
	mustCode(t, w, http.StatusOK)
	msgs := decode[[]domain.ChatMessage](t, w)
	if len(msgs) != 1 || msgs[0].FromUser != "bob" || msgs[0].ToUser != "alice" || msgs[0].Content != "hello" {
		t.Fatalf("unexpected history: %+v", msgs)
	}
}

func TestPostChatMessage_DeliversAndValidates(t *testing.T) {
	e := newEnv(t)
	bob := &recConn{}
	e.reg.Connect("bob", bob)
	skill := e.seedSkill(t, "bob", "Guitar Lessons")
	id := e.seedRequest(t, "alice", skill)

	w := e.do(t, "alice", http.MethodPost, "/chat/"+id, PostChatMessageRequest{To: "bob", Content: "  hi  "})
	mustCode(t, w, http.StatusCreated)
	m := decode[domain.ChatMessage](t, w)
	if m.ID == "" || m.RequestID != id || m.Content != "hi" {
		t.Fatalf("unexpected message: %+v", m)
	}

	var fwd map[string]any
	for _, ev := range bob.events(t) {
		if ev["_id"] == m.ID {
			fwd = ev
		}
	}
	if fwd == nil || fwd["request_id"] != id || fwd["from_user"] != "alice" || fwd["to_user"] != "bob" || fwd["content"] != "hi" {
		t.Fatalf("message not forwarded as stored: %v", fwd)
	}

	// A non-participant writes nothing.
	mustCode(t, e.do(t, "mallory", http.MethodPost, "/chat/"+id, PostChatMessageRequest{Content: "spam"}), http.StatusForbidden)
	// Addressing anyone but the counterpart is refused.
	mustCode(t, e.do(t, "alice", http.MethodPost, "/chat/"+id, PostChatMessageRequest{To: "mallory", Content: "x"}), http.StatusForbidden)
	// Blank content.
	mustCode(t, e.do(t, "alice", http.MethodPost, "/chat/"+id, PostChatMessageRequest{Content: "   "}), http.StatusBadRequest)

	if n := e.countMessages(t); n != 1 {
		t.Fatalf("expected exactly one stored message, got %d", n)
	}
}

func TestPostChatMessage_RequireAccepted(t *testing.T) {
	e := newEnv(t)
	e.chat.RequireAccepted = true
	skill := e.seedSkill(t, "bob", "Guitar Lessons")
	id := e.seedRequest(t, "alice", skill)

	w := e.do(t, "alice", http.MethodPost, "/chat/"+id, PostChatMessageRequest{Content: "hi"})
	mustCode(t, w, http.StatusConflict)
	if got := decode[ErrorResponse](t, w); got.Code != ErrCodeNotAccepted {
		t.Fatalf("code = %q", got.Code)
	}

	mustCode(t, e.do(t, "bob", http.MethodPut, "/requests/"+id+"/respond", RespondRequest{Action: "accepted"}), http.StatusOK)
	mustCode(t, e.do(t, "alice", http.MethodPost, "/chat/"+id, PostChatMessageRequest{Content: "hi"}), http.StatusCreated)
}

func TestChatConnections(t *testing.T) {
	e := newEnv(t)
	skill := e.seedSkill(t, "bob", "Guitar Lessons")
	id := e.seedRequest(t, "alice", skill)

	w := e.do(t, "alice", http.MethodGet, "/chats/connections", nil)
	mustCode(t, w, http.StatusOK)
	if w.Body.String() != "[]" {
		t.Fatalf("pending requests are not connections, got %s", w.Body.String())
	}

	mustCode(t, e.do(t, "bob", http.MethodPut, "/requests/"+id+"/respond", RespondRequest{Action: "accepted"}), http.StatusOK)

	for user, other := range map[string]string{"alice": "bob", "bob": "alice"} {
		w = e.do(t, user, http.MethodGet, "/chats/connections", nil)
		mustCode(t, w, http.StatusOK)
		got := decode[[]services.Connection](t, w)
		want := services.Connection{RequestID: id, OtherUser: other, SkillID: skill, SkillTitle: "Guitar Lessons"}
		if len(got) != 1 || got[0] != want {
			t.Fatalf("%s: connections = %+v, want %+v", user, got, want)
		}
	}
}
