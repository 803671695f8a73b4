// Exchange request HTTP handlers.
//
//   - POST /requests                 (request an exchange, Idempotency-Key aware)
//   - GET  /requests/sent            (weak ETag)
//   - GET  /requests/received        (weak ETag)
//   - PUT  /requests/{id}/respond    (accept or decline)
//
// Idempotency:
// When the middleware found a live record for (user, route, key) the handler
// answers with the request created the first time and sets
// `Idempotency-Replayed: true`.
package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tbourn/skillswap-backend/internal/http/middleware"
	"github.com/tbourn/skillswap-backend/internal/repo"
	"github.com/tbourn/skillswap-backend/internal/services"
)

// CreateRequestRequest is the JSON payload for requesting an exchange.
type CreateRequestRequest struct {
	SkillID string `json:"skill_id" binding:"required" example:"6f1c1d8e-3d4b-4c59-9a0e-1b2c3d4e5f60"`
	Message string `json:"message" example:"Can you teach Tuesdays?"`
}

// RespondRequest is the JSON payload for answering a request.
type RespondRequest struct {
	Action string `json:"action" binding:"required" enums:"accepted,declined" example:"accepted"`
}

// requestDB digs the GORM handle out of the concrete service for the
// idempotency store and list validators.
func requestDB(svc RequestService) *gorm.DB {
	if s, ok := svc.(*services.RequestService); ok {
		return s.DB
	}
	return nil
}

// CreateRequest godoc
// @ID          createRequest
// @Summary     Request a skill exchange
// @Description Files a pending request to the skill owner and notifies them if online.
// @Description Supports idempotency via the Idempotency-Key header (same key → same request).
// @Tags        Requests
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       Idempotency-Key  header  string  false  "Idempotency key for safe retries"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       body             body    handlers.CreateRequestRequest  true  "Request payload"
// @Success     201  {object}  handlers.MessageResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request or own skill"
// @Failure     404  {object}  handlers.ErrorResponse  "Skill not found"
// @Router      /requests [post]
func (h *Handlers) CreateRequest(c *gin.Context) {
	ctx := c.Request.Context()
	user := currentUser(c)

	// Replay path: the key was already used for this route.
	if rid, replay := middleware.ReplayResourceID(c); replay {
		if prev, err := h.reqSvc.Get(ctx, user, rid); err == nil {
			c.Header(middleware.HeaderIdempotencyReplayed, "true")
			ok(c, http.StatusCreated, MessageResponse{Message: "Request sent", ID: prev.ID})
			return
		}
	}

	var req CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "skill_id required")
		return
	}

	created, err := h.reqSvc.Create(ctx, user, req.SkillID, req.Message)
	if err != nil {
		failErr(c, err)
		return
	}

	// Store path, best effort.
	if key, has := middleware.GetIdempotencyKey(c); has {
		if db := requestDB(h.reqSvc); db != nil {
			if _, err := repo.CreateIdempotency(ctx, db, user, middleware.IdempotencyScope(c), key, created.ID, http.StatusCreated, h.opts.IdempotencyTTL); err != nil {
				middleware.LoggerFrom(c).Warn().Err(err).Msg("store idempotency key")
			}
		}
	}

	ok(c, http.StatusCreated, MessageResponse{Message: "Request sent", ID: created.ID})
}

// SentRequests godoc
// @ID          sentRequests
// @Summary     Requests I sent
// @Description Supports weak ETag via If-None-Match and may return 304.
// @Tags        Requests
// @Produce     json
// @Security    BearerAuth
// @Success     200  {array}  domain.ExchangeRequest
// @Success     304  "Not Modified"
// @Router      /requests/sent [get]
func (h *Handlers) SentRequests(c *gin.Context) {
	user := currentUser(c)
	if h.requestsNotModified(c, user) {
		return
	}
	items, err := h.reqSvc.Sent(c.Request.Context(), user)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, items)
}

// ReceivedRequests godoc
// @ID          receivedRequests
// @Summary     Requests addressed to me
// @Description Supports weak ETag via If-None-Match and may return 304.
// @Tags        Requests
// @Produce     json
// @Security    BearerAuth
// @Success     200  {array}  domain.ExchangeRequest
// @Success     304  "Not Modified"
// @Router      /requests/received [get]
func (h *Handlers) ReceivedRequests(c *gin.Context) {
	user := currentUser(c)
	if h.requestsNotModified(c, user) {
		return
	}
	items, err := h.reqSvc.Received(c.Request.Context(), user)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, items)
}

// RespondToRequest godoc
// @ID          respondToRequest
// @Summary     Accept or decline a request
// @Description Only the skill owner may answer, and only once. The requester is notified if online.
// @Tags        Requests
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path  string                   true  "Request ID (UUID)"  format(uuid)
// @Param       body  body  handlers.RespondRequest  true  "Decision"
// @Success     200  {object}  domain.ExchangeRequest
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     403  {object}  handlers.ErrorResponse  "Not the recipient"
// @Failure     404  {object}  handlers.ErrorResponse  "Request not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Already responded"
// @Router      /requests/{id}/respond [put]
func (h *Handlers) RespondToRequest(c *gin.Context) {
	var req RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "action required")
		return
	}
	out, err := h.reqSvc.Respond(c.Request.Context(), currentUser(c), c.Param("id"), req.Action)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// requestsNotModified sets a weak ETag over every request the user is party
// to and answers 304 when it matches If-None-Match. Both lists share the
// validator; a change on either side invalidates it.
func (h *Handlers) requestsNotModified(c *gin.Context, user string) bool {
	db := requestDB(h.reqSvc)
	if db == nil {
		return false
	}
	count, latest, err := repo.RequestsStats(c.Request.Context(), db, user)
	if err != nil {
		return false
	}
	return notModified(c, fmt.Sprintf(`W/"requests:%d:%d"`, count, unixNano(latest)))
}

// notModified writes etag and, when the client already holds it, a 304.
func notModified(c *gin.Context, etag string) bool {
	c.Header("ETag", etag)
	if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
		c.Status(http.StatusNotModified)
		return true
	}
	return false
}

func unixNano(t *time.Time) int64 {
	if t == nil {
		return 0
	}
	return t.UnixNano()
}

