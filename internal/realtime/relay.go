package realtime

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Publisher is the part of *nats.Conn the relay needs to fan events out.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// relayEnvelope wraps a pre-serialized event on the wire.
type relayEnvelope struct {
	Origin  string          `json:"origin"`
	User    string          `json:"user,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// Relay forwards events between instances over NATS core pub/sub. A
// personal event that finds no local connection is published on the user's
// subject; broadcasts are always published. Every instance delivers what it
// receives to its own registry only and ignores messages it originated.
type Relay struct {
	pub      Publisher
	prefix   string
	instance string
	reg      *Registry
	log      zerolog.Logger
}

// NewRelay builds a relay with a random instance id.
func NewRelay(pub Publisher, prefix string, reg *Registry, log zerolog.Logger) *Relay {
	return &Relay{
		pub:      pub,
		prefix:   prefix,
		instance: uuid.NewString(),
		reg:      reg,
		log:      log.With().Str("component", "relay").Logger(),
	}
}

// Instance returns the id stamped on every published envelope.
func (r *Relay) Instance() string { return r.instance }

// UserSubject returns the subject used for personal events. Usernames are
// encoded so dots and wildcards cannot alter the subject hierarchy.
func (r *Relay) UserSubject(user string) string {
	return fmt.Sprintf("%s.user.%s", r.prefix, base64.RawURLEncoding.EncodeToString([]byte(user)))
}

// BroadcastSubject returns the subject used for broadcasts.
func (r *Relay) BroadcastSubject() string {
	return r.prefix + ".broadcast"
}

// PublishUser relays a personal event for user.
func (r *Relay) PublishUser(user string, payload []byte) error {
	return r.publish(r.UserSubject(user), relayEnvelope{Origin: r.instance, User: user, Payload: payload})
}

// PublishBroadcast relays a broadcast event.
func (r *Relay) PublishBroadcast(payload []byte) error {
	return r.publish(r.BroadcastSubject(), relayEnvelope{Origin: r.instance, Payload: payload})
}

func (r *Relay) publish(subject string, env relayEnvelope) error {
	b, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return r.pub.Publish(subject, b)
}

// Handle delivers a relayed message to the local registry. Messages from
// this instance and malformed envelopes are dropped.
func (r *Relay) Handle(subject string, data []byte) {
	var env relayEnvelope
	if err := json.Unmarshal(data, &env); err != nil || len(env.Payload) == 0 {
		r.log.Warn().Err(err).Str("subject", subject).Msg("drop malformed relay message")
		return
	}
	if env.Origin == r.instance {
		return
	}
	if subject == r.BroadcastSubject() {
		r.reg.BroadcastRaw(env.Payload)
		return
	}
	if env.User != "" && subject == r.UserSubject(env.User) {
		r.reg.SendRaw(env.User, env.Payload)
	}
}

// Subscribe attaches the relay to nc. The returned function removes both
// subscriptions.
func (r *Relay) Subscribe(nc *nats.Conn) (func() error, error) {
	handler := func(m *nats.Msg) { r.Handle(m.Subject, m.Data) }

	userSub, err := nc.Subscribe(r.prefix+".user.*", handler)
	if err != nil {
		return nil, fmt.Errorf("subscribe user events: %w", err)
	}
	bcastSub, err := nc.Subscribe(r.BroadcastSubject(), handler)
	if err != nil {
		_ = userSub.Unsubscribe()
		return nil, fmt.Errorf("subscribe broadcast events: %w", err)
	}
	return func() error {
		err1 := userSub.Unsubscribe()
		err2 := bcastSub.Unsubscribe()
		if err1 != nil {
			return err1
		}
		return err2
	}, nil
}

// ConnectNATS dials url with reconnect handling suited to a long-lived relay.
func ConnectNATS(url, name string, log zerolog.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("nats disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("nats reconnected")
		}),
		nats.ErrorHandler(func(_ *nats.Conn, sub *nats.Subscription, err error) {
			ev := log.Error().Err(err)
			if sub != nil {
				ev = ev.Str("subject", sub.Subject)
			}
			ev.Msg("nats error")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return nc, nil
}
