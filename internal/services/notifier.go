package services

import (
	"strings"

	"github.com/google/uuid"

	"github.com/tbourn/skillswap-backend/internal/domain"
)

// Notifier delivers realtime events after a write commits. Delivery is
// best-effort and its outcome never changes a service result.
// realtime.Router is the production implementation.
type Notifier interface {
	NewSkill(s domain.Skill) int
	NewRequest(r domain.ExchangeRequest, skillTitle string) bool
	RequestResponse(r domain.ExchangeRequest, skillTitle string) bool
	ChatMessage(m domain.ChatMessage) bool
}

// nopNotifier is used when a service is built without a Notifier.
type nopNotifier struct{}

func (nopNotifier) NewSkill(domain.Skill) int                           { return 0 }
func (nopNotifier) NewRequest(domain.ExchangeRequest, string) bool      { return false }
func (nopNotifier) RequestResponse(domain.ExchangeRequest, string) bool { return false }
func (nopNotifier) ChatMessage(domain.ChatMessage) bool                 { return false }

func notifierOr(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}

// parseID validates an external identifier and returns its canonical form.
func parseID(s string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", ErrInvalidID
	}
	return id.String(), nil
}
