package realtime

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/tbourn/skillswap-backend/internal/domain"
)

// Router turns domain changes into outbound events and hands them to the
// registry. Every method is fire-and-forget: the return value only reports
// whether a local delivery happened and callers must not branch on it for
// correctness.
type Router struct {
	reg   *Registry
	relay *Relay
	log   zerolog.Logger
}

// NewRouter returns a router over reg. relay may be nil for single-instance
// deployments.
func NewRouter(reg *Registry, relay *Relay, log zerolog.Logger) *Router {
	return &Router{reg: reg, relay: relay, log: log.With().Str("component", "router").Logger()}
}

// NewSkill broadcasts a new_skill event and returns the local delivery count.
func (r *Router) NewSkill(s domain.Skill) int {
	b, err := json.Marshal(domain.NewSkillEventFor(s))
	if err != nil {
		r.log.Error().Err(err).Msg("marshal new_skill")
		return 0
	}
	n := r.reg.BroadcastRaw(b)
	wsEvents.WithLabelValues(domain.EventNewSkill, outcomeDelivered).Add(float64(n))
	if r.relay != nil {
		if err := r.relay.PublishBroadcast(b); err != nil {
			r.log.Warn().Err(err).Msg("relay new_skill")
		} else {
			wsEvents.WithLabelValues(domain.EventNewSkill, outcomeRelayed).Inc()
		}
	}
	return n
}

// NewRequest notifies the skill owner (the request's ToUser).
func (r *Router) NewRequest(req domain.ExchangeRequest, skillTitle string) bool {
	return r.deliver(domain.EventNewRequest, req.ToUser, domain.NewRequestEventFor(req, skillTitle))
}

// RequestResponse notifies the requester (the request's FromUser).
func (r *Router) RequestResponse(req domain.ExchangeRequest, skillTitle string) bool {
	return r.deliver(domain.EventRequestResponse, req.FromUser, domain.RequestResponseEventFor(req, skillTitle))
}

// ChatMessage forwards a stored message to its recipient.
func (r *Router) ChatMessage(m domain.ChatMessage) bool {
	return r.deliver(domain.EventChatMessage, m.ToUser, m)
}

func (r *Router) deliver(kind, user string, payload any) bool {
	b, err := json.Marshal(payload)
	if err != nil {
		r.log.Error().Err(err).Str("kind", kind).Msg("marshal event")
		return false
	}

	online := r.reg.Online(user)
	if r.reg.SendRaw(user, b) {
		wsEvents.WithLabelValues(kind, outcomeDelivered).Inc()
		return true
	}
	if online {
		wsEvents.WithLabelValues(kind, outcomeFailed).Inc()
	} else {
		wsEvents.WithLabelValues(kind, outcomeOffline).Inc()
	}

	if r.relay != nil {
		if err := r.relay.PublishUser(user, b); err != nil {
			r.log.Warn().Err(err).Str("kind", kind).Str("user", user).Msg("relay event")
		} else {
			wsEvents.WithLabelValues(kind, outcomeRelayed).Inc()
		}
	}
	return false
}
