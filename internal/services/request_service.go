// Package services – RequestService
//
// RequestService handles exchange requests between a learner and a skill
// owner. Creating a request notifies the owner; responding notifies the
// requester. Each event is dispatched once, after the write commits.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/skillswap-backend/internal/domain"
	"github.com/tbourn/skillswap-backend/internal/repo"
)

const maxRequestMessageRunes = 1000

// RequestService coordinates request persistence and notifications.
type RequestService struct {
	DB     *gorm.DB
	Notify Notifier
}

// NewRequestService constructs a RequestService.
func NewRequestService(db *gorm.DB, n Notifier) *RequestService {
	return &RequestService{DB: db, Notify: notifierOr(n)}
}

// Create files a pending request from fromUser for the given skill and
// notifies the skill owner. Requesting one's own skill is rejected without
// writing anything.
func (s *RequestService) Create(ctx context.Context, fromUser, skillID, message string) (*domain.ExchangeRequest, error) {
	ctx, span := otel.Tracer("services/RequestService").Start(ctx, "Create",
		trace.WithAttributes(
			attribute.String("user.id", fromUser),
			attribute.String("skill.id", skillID),
		),
	)
	defer span.End()

	id, err := parseID(skillID)
	if err != nil {
		return nil, err
	}
	sk, err := repo.GetSkill(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrSkillNotFound
	}
	if err != nil {
		return nil, err
	}
	if sk.Owner == fromUser {
		return nil, ErrSelfRequest
	}

	message = strings.TrimSpace(message)
	if r := []rune(message); len(r) > maxRequestMessageRunes {
		message = string(r[:maxRequestMessageRunes])
	}

	req := &domain.ExchangeRequest{
		SkillID:  sk.ID,
		FromUser: fromUser,
		ToUser:   sk.Owner,
		Message:  message,
	}
	if err := repo.CreateRequest(ctx, s.DB, req); err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	span.SetAttributes(attribute.String("request.id", req.ID))

	s.Notify.NewRequest(*req, sk.Title)
	return req, nil
}

// Respond records the recipient's decision on a pending request and
// notifies the requester. action must be accepted or declined.
func (s *RequestService) Respond(ctx context.Context, user, requestID, action string) (*domain.ExchangeRequest, error) {
	ctx, span := otel.Tracer("services/RequestService").Start(ctx, "Respond",
		trace.WithAttributes(
			attribute.String("user.id", user),
			attribute.String("request.id", requestID),
			attribute.String("action", action),
		),
	)
	defer span.End()

	id, err := parseID(requestID)
	if err != nil {
		return nil, err
	}
	status, err := normalizeAction(action)
	if err != nil {
		return nil, err
	}

	req, err := repo.GetRequest(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	if req.ToUser != user {
		return nil, ErrForbidden
	}

	switch err := repo.UpdateRequestStatus(ctx, s.DB, id, status); {
	case errors.Is(err, repo.ErrNotPending):
		return nil, ErrAlreadyResponded
	case errors.Is(err, repo.ErrNotFound):
		return nil, ErrRequestNotFound
	case err != nil:
		return nil, fmt.Errorf("update request: %w", err)
	}
	req.Status = status

	// The skill may have been deleted in between; the event still goes out.
	title := ""
	if sk, err := repo.GetSkill(ctx, s.DB, req.SkillID); err == nil {
		title = sk.Title
	}
	s.Notify.RequestResponse(*req, title)
	return req, nil
}

// Get returns a request visible to user (either participant).
func (s *RequestService) Get(ctx context.Context, user, requestID string) (*domain.ExchangeRequest, error) {
	id, err := parseID(requestID)
	if err != nil {
		return nil, err
	}
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

// Sent lists requests created by user.
func (s *RequestService) Sent(ctx context.Context, user string) ([]domain.ExchangeRequest, error) {
	return repo.ListSentRequests(ctx, s.DB, user)
}

// Received lists requests addressed to user.
func (s *RequestService) Received(ctx context.Context, user string) ([]domain.ExchangeRequest, error) {
	return repo.ListReceivedRequests(ctx, s.DB, user)
}

func normalizeAction(a string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(a)) {
	case domain.StatusAccepted:
		return domain.StatusAccepted, nil
	case domain.StatusDeclined:
		return domain.StatusDeclined, nil
	}
	return "", ErrInvalidStatus
}
