// Chat HTTP handlers.
//
//   - GET  /chat/{request_id}     (history, weak ETag)
//   - POST /chat/{request_id}     (send over REST; same path as the websocket)
//   - GET  /chats/connections     (accepted exchanges with the other party)
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tbourn/skillswap-backend/internal/repo"
	"github.com/tbourn/skillswap-backend/internal/services"
)

// PostChatMessageRequest is the JSON payload for sending a chat line.
// To is optional; when set it must name the other participant.
type PostChatMessageRequest struct {
	To      string `json:"to" example:"bob"`
	Content string `json:"content" binding:"required" example:"hi"`
}

func chatDB(svc ChatService) *gorm.DB {
	if s, ok := svc.(*services.ChatService); ok {
		return s.DB
	}
	return nil
}

// ChatHistory godoc
// @ID          chatHistory
// @Summary     Chat history of an exchange
// @Description Messages in ascending timestamp order. Only the two participants may read it.
// @Description Supports weak ETag via If-None-Match and may return 304.
// @Tags        Chat
// @Produce     json
// @Security    BearerAuth
// @Param       request_id  path  string  true  "Request ID (UUID)"  format(uuid)
// @Success     200  {array}   domain.ChatMessage
// @Success     304  "Not Modified"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     403  {object}  handlers.ErrorResponse  "Not a participant"
// @Failure     404  {object}  handlers.ErrorResponse  "Request not found"
// @Router      /chat/{request_id} [get]
func (h *Handlers) ChatHistory(c *gin.Context) {
	ctx := c.Request.Context()
	user := currentUser(c)

	id, err := h.chatSvc.Authorize(ctx, c.Param("request_id"), user)
	if err != nil {
		failErr(c, err)
		return
	}

	// ETag pre-check (best effort).
	if db := chatDB(h.chatSvc); db != nil {
		if count, latest, err := repo.MessagesStats(ctx, db, id); err == nil {
			if notModified(c, fmt.Sprintf(`W/"messages:%s:%d:%d"`, id, count, unixNano(latest))) {
				return
			}
		}
	}

	msgs, err := h.chatSvc.History(ctx, id, user)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, msgs)
}

// PostChatMessage godoc
// @ID          postChatMessage
// @Summary     Send a chat message
// @Description Stores the message and forwards it live to the other participant when online.
// @Tags        Chat
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request_id  path  string                           true  "Request ID (UUID)"  format(uuid)
// @Param       body        body  handlers.PostChatMessageRequest  true  "Message"
// @Success     201  {object}  domain.ChatMessage
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     403  {object}  handlers.ErrorResponse  "Not a participant"
// @Failure     404  {object}  handlers.ErrorResponse  "Request not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Request not accepted"
// @Router      /chat/{request_id} [post]
func (h *Handlers) PostChatMessage(c *gin.Context) {
	var req PostChatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content required")
		return
	}
	m, err := h.chatSvc.SendMessage(c.Request.Context(), c.Param("request_id"), currentUser(c), req.To, req.Content)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, m)
}

// ChatConnections godoc
// @ID          chatConnections
// @Summary     My accepted exchanges
// @Tags        Chat
// @Produce     json
// @Security    BearerAuth
// @Success     200  {array}   services.Connection
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Router      /chats/connections [get]
func (h *Handlers) ChatConnections(c *gin.Context) {
	items, err := h.chatSvc.Connections(c.Request.Context(), currentUser(c))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, items)
}
