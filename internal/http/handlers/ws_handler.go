package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tbourn/skillswap-backend/internal/domain"
	"github.com/tbourn/skillswap-backend/internal/http/middleware"
	"github.com/tbourn/skillswap-backend/internal/realtime"
)

// Websocket godoc
// @ID          websocket
// @Summary     Open the realtime connection
// @Description Upgrades to a websocket registered under the token subject. The path
// @Description identity must equal the subject. Pass the token as ?token= when the
// @Description client cannot set headers.
// @Tags        Realtime
// @Param       user_id  path   string  true   "Own username"
// @Param       token    query  string  false  "Bearer token"
// @Success     101  "Switching Protocols"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     403  {object}  handlers.ErrorResponse  "Path identity mismatch"
// @Router      /ws/{user_id} [get]
func (h *Handlers) Websocket(c *gin.Context) {
	user := currentUser(c)
	if c.Param("user_id") != user {
		fail(c, http.StatusForbidden, ErrCodeForbidden, "path identity does not match token")
		return
	}

	lg := *middleware.LoggerFrom(c)
	client, err := realtime.Upgrade(c.Writer, c.Request, user, h.opts.WS, lg)
	if err != nil {
		// The upgrader has already answered.
		lg.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	client.Run(c.Request.Context(), h.reg, h.frameHandler(lg))
}

// frameHandler dispatches inbound frames of one connection. Malformed and
// unknown frames are dropped; rejected chat messages are answered with an
// error frame to the sender.
func (h *Handlers) frameHandler(lg zerolog.Logger) realtime.FrameFunc {
	return func(ctx context.Context, cl *realtime.Client, data []byte) {
		var f domain.InboundFrame
		if err := json.Unmarshal(data, &f); err != nil {
			lg.Warn().Err(err).Msg("drop malformed frame")
			return
		}
		if f.Type != domain.EventChatMessage {
			lg.Debug().Str("type", f.Type).Msg("drop unknown frame")
			return
		}

		if _, err := h.chatSvc.SendMessage(ctx, f.RequestID, cl.User(), f.To, f.Content); err != nil {
			status, code := classify(err)
			msg := err.Error()
			if status >= http.StatusInternalServerError {
				lg.Error().Err(err).Str("exchange_request", f.RequestID).Msg("chat frame failed")
				msg = "internal error"
			} else {
				lg.Info().Err(err).Str("exchange_request", f.RequestID).Msg("chat frame rejected")
			}
			_ = cl.SendJSON(domain.ErrorFrameFor(code, msg))
		}
	}
}
