// Package handlers exposes the REST and websocket endpoints of the
// marketplace. Handlers are transport-thin: they bind input, call the
// application services and translate results into responses.
package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/skillswap-backend/internal/domain"
	"github.com/tbourn/skillswap-backend/internal/http/middleware"
	"github.com/tbourn/skillswap-backend/internal/realtime"
	"github.com/tbourn/skillswap-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// UserService reads and updates profiles.
type UserService interface {
	Profile(ctx context.Context, user string) (*domain.User, error)
	UpdateProfile(ctx context.Context, user string, in services.ProfileInput) (*domain.User, error)
}

// SkillService manages skill listings.
type SkillService interface {
	Create(ctx context.Context, owner string, in services.SkillInput) (*domain.Skill, error)
	Market(ctx context.Context, user string) ([]domain.Skill, error)
	Mine(ctx context.Context, user string) ([]domain.Skill, error)
	Delete(ctx context.Context, user, skillID string) error
	Search(ctx context.Context, user, q string, k int) ([]domain.Skill, error)
	Summary(ctx context.Context, user string) (*services.Summary, error)
}

// RequestService manages exchange requests.
type RequestService interface {
	Create(ctx context.Context, fromUser, skillID, message string) (*domain.ExchangeRequest, error)
	Respond(ctx context.Context, user, requestID, action string) (*domain.ExchangeRequest, error)
	Get(ctx context.Context, user, requestID string) (*domain.ExchangeRequest, error)
	Sent(ctx context.Context, user string) ([]domain.ExchangeRequest, error)
	Received(ctx context.Context, user string) ([]domain.ExchangeRequest, error)
}

// ChatService is the chat session manager.
type ChatService interface {
	SendMessage(ctx context.Context, requestID, fromUser, toUser, content string) (*domain.ChatMessage, error)
	History(ctx context.Context, requestID, requester string) ([]domain.ChatMessage, error)
	Authorize(ctx context.Context, requestID, user string) (string, error)
	Connections(ctx context.Context, user string) ([]services.Connection, error)
}

//
// Handler wiring
//

// Options carries transport settings that are not owned by a service.
type Options struct {
	// IdempotencyTTL is how long a POST /requests result is replayable.
	IdempotencyTTL time.Duration
	// WS tunes websocket clients.
	WS realtime.Options
}

// Handlers groups the HTTP endpoints.
type Handlers struct {
	userSvc  UserService
	skillSvc SkillService
	reqSvc   RequestService
	chatSvc  ChatService
	reg      *realtime.Registry
	opts     Options
}

// New constructs Handlers bound to the given services and registry.
func New(userSvc UserService, skillSvc SkillService, reqSvc RequestService, chatSvc ChatService, reg *realtime.Registry, opts Options) *Handlers {
	if opts.IdempotencyTTL <= 0 {
		opts.IdempotencyTTL = 24 * time.Hour
	}
	return &Handlers{
		userSvc:  userSvc,
		skillSvc: skillSvc,
		reqSvc:   reqSvc,
		chatSvc:  chatSvc,
		reg:      reg,
		opts:     opts,
	}
}

// currentUser returns the authenticated identity set by middleware.Auth.
func currentUser(c *gin.Context) string { return middleware.UserID(c) }

// Register mounts the authenticated REST routes on g. The websocket route
// is mounted separately because it accepts the token as a query parameter.
func (h *Handlers) Register(g gin.IRoutes) {
	// Profile
	g.GET("/profile", h.GetProfile)
	g.PUT("/profile", h.UpdateProfile)

	// Skills
	g.POST("/skills", h.CreateSkill)
	g.GET("/skills/market", h.MarketSkills)
	g.GET("/skills/mine", h.MySkills)
	g.GET("/skills/search", h.SearchSkills)
	g.DELETE("/skills/:id", h.DeleteSkill)
	g.GET("/dashboard/summary", h.DashboardSummary)

	// Requests
	g.POST("/requests", h.CreateRequest)
	g.GET("/requests/sent", h.SentRequests)
	g.GET("/requests/received", h.ReceivedRequests)
	g.PUT("/requests/:id/respond", h.RespondToRequest)

	// Chat
	g.GET("/chat/:request_id", h.ChatHistory)
	g.POST("/chat/:request_id", h.PostChatMessage)
	g.GET("/chats/connections", h.ChatConnections)
}
