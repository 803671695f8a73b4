// Package services – ChatService
//
// ChatService is the chat session manager. It authorizes a sender against
// the exchange request a conversation belongs to, persists the message with
// a server timestamp and only then hands it to the notifier. Delivery never
// changes the result: an offline recipient still gets a stored message.
//
// Inbound websocket frames and the REST send endpoint both go through
// SendMessage, so the rules are identical on either path.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/skillswap-backend/internal/domain"
	"github.com/tbourn/skillswap-backend/internal/repo"
)

const defaultMaxContentRunes = 2000

// Connection is an accepted exchange seen from one participant.
type Connection struct {
	RequestID  string `json:"request_id"`
	OtherUser  string `json:"other_user"`
	SkillID    string `json:"skill_id"`
	SkillTitle string `json:"skill_title"`
}

// ChatService provides message sending, history and the list of chat
// connections.
type ChatService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Notify delivers chat_message events.
	Notify Notifier

	// RequireAccepted restricts chat to accepted requests.
	RequireAccepted bool
	// MaxContentRunes caps message length; <= 0 disables the check.
	MaxContentRunes int

	// now is overridable in tests.
	now func() time.Time

	mu   sync.Mutex
	last time.Time
}

// NewChatService constructs a ChatService with default limits.
func NewChatService(db *gorm.DB, n Notifier) *ChatService {
	return &ChatService{
		DB:              db,
		Notify:          notifierOr(n),
		MaxContentRunes: defaultMaxContentRunes,
	}
}

// SendMessage stores a message from fromUser on the given request and
// delivers it to the other participant if they are online. A non-empty
// toUser must name the other participant. The stored message is returned.
func (s *ChatService) SendMessage(ctx context.Context, requestID, fromUser, toUser, content string) (*domain.ChatMessage, error) {
	ctx, span := otel.Tracer("services/ChatService").Start(ctx, "SendMessage",
		trace.WithAttributes(
			attribute.String("user.id", fromUser),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	id, err := parseID(requestID)
	if err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	if s.MaxContentRunes > 0 && utf8.RuneCountInString(content) > s.MaxContentRunes {
		return nil, ErrContentTooLong
	}

	req, err := s.participantRequest(ctx, id, fromUser)
	if err != nil {
		return nil, err
	}
	other := req.Counterpart(fromUser)
	if toUser = strings.TrimSpace(toUser); toUser != "" && toUser != other {
		return nil, ErrForbidden
	}
	if s.RequireAccepted && req.Status != domain.StatusAccepted {
		return nil, ErrRequestNotAccepted
	}

	msg := &domain.ChatMessage{
		RequestID: id,
		FromUser:  fromUser,
		ToUser:    other,
		Content:   content,
		Timestamp: s.stamp(),
	}
	if err := repo.CreateMessage(ctx, s.DB, msg); err != nil {
		return nil, fmt.Errorf("store message: %w", err)
	}
	span.SetAttributes(attribute.String("message.id", msg.ID))

	delivered := s.Notify.ChatMessage(*msg)
	span.SetAttributes(attribute.Bool("delivered", delivered))
	return msg, nil
}

// History returns every message of a request in ascending timestamp order.
// Only participants may read it.
func (s *ChatService) History(ctx context.Context, requestID, requester string) ([]domain.ChatMessage, error) {
	ctx, span := otel.Tracer("services/ChatService").Start(ctx, "History",
		trace.WithAttributes(
			attribute.String("user.id", requester),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	id, err := parseID(requestID)
	if err != nil {
		return nil, err
	}
	if _, err := s.participantRequest(ctx, id, requester); err != nil {
		return nil, err
	}
	msgs, err := repo.ListMessages(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []domain.ChatMessage{}
	}
	return msgs, nil
}

// Authorize checks that user participates in the request. Handlers use it
// before computing cache validators for the history.
func (s *ChatService) Authorize(ctx context.Context, requestID, user string) (string, error) {
	id, err := parseID(requestID)
	if err != nil {
		return "", err
	}
	if _, err := s.participantRequest(ctx, id, user); err != nil {
		return "", err
	}
	return id, nil
}

// Connections lists the accepted exchanges of user with the other party and
// the skill they are about.
func (s *ChatService) Connections(ctx context.Context, user string) ([]Connection, error) {
	ctx, span := otel.Tracer("services/ChatService").Start(ctx, "Connections",
		trace.WithAttributes(attribute.String("user.id", user)),
	)
	defer span.End()

	reqs, err := repo.ListAcceptedRequests(ctx, s.DB, user)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.SkillID)
	}
	skills, err := repo.ListSkillsByIDs(ctx, s.DB, ids)
	if err != nil {
		return nil, err
	}
	titles := make(map[string]string, len(skills))
	for _, sk := range skills {
		titles[sk.ID] = sk.Title
	}

	out := make([]Connection, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, Connection{
			RequestID:  r.ID,
			OtherUser:  r.Counterpart(user),
			SkillID:    r.SkillID,
			SkillTitle: titles[r.SkillID],
		})
	}
	return out, nil
}

func (s *ChatService) participantRequest(ctx context.Context, id, user string) (*domain.ExchangeRequest, error) {
	req, err := repo.GetRequest(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	if !req.Participant(user) {
		return nil, ErrForbidden
	}
	return req, nil
}

// stamp returns a UTC timestamp that never goes backwards within this
// process, so stored order matches send order even if the wall clock steps.
func (s *ChatService) stamp() time.Time {
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	t := now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !t.After(s.last) {
		t = s.last.Add(time.Microsecond)
	}
	s.last = t
	return t
}
