// Skill HTTP handlers.
//
//   - POST   /skills               (create, broadcast new_skill)
//   - GET    /skills/market        (others' skills, newest first)
//   - GET    /skills/mine          (own skills)
//   - GET    /skills/search?q=&k=  (keyword search over others' skills)
//   - DELETE /skills/{id}          (owner delete, cascades requests and chat)
//   - GET    /dashboard/summary
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/skillswap-backend/internal/services"
	"github.com/tbourn/skillswap-backend/internal/utils"
)

const (
	defaultSearchK = 10
	maxSearchK     = 50
)

// CreateSkillRequest is the JSON payload for listing a skill.
type CreateSkillRequest struct {
	Title        string `json:"title"        binding:"required" example:"Guitar Lessons"`
	Description  string `json:"description"  example:"Beginner chords and strumming"`
	Category     string `json:"category"     binding:"required" example:"Music"`
	Availability string `json:"availability" example:"Weekends"`
}

// CreateSkill godoc
// @ID          createSkill
// @Summary     List a new skill
// @Description Stores the skill and broadcasts a new_skill event to every connected user.
// @Tags        Skills
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      handlers.CreateSkillRequest  true  "Skill payload"
// @Success     201   {object}  handlers.MessageResponse
// @Failure     400   {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401   {object}  handlers.ErrorResponse  "Unauthorized"
// @Router      /skills [post]
func (h *Handlers) CreateSkill(c *gin.Context) {
	var req CreateSkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "title and category required")
		return
	}
	sk, err := h.skillSvc.Create(c.Request.Context(), currentUser(c), services.SkillInput{
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Availability: req.Availability,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, MessageResponse{Message: "Skill added", ID: sk.ID})
}

// MarketSkills godoc
// @ID          marketSkills
// @Summary     Browse other users' skills
// @Tags        Skills
// @Produce     json
// @Security    BearerAuth
// @Success     200  {array}   domain.Skill
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Router      /skills/market [get]
func (h *Handlers) MarketSkills(c *gin.Context) {
	items, err := h.skillSvc.Market(c.Request.Context(), currentUser(c))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, items)
}

// MySkills godoc
// @ID          mySkills
// @Summary     List my skills
// @Tags        Skills
// @Produce     json
// @Security    BearerAuth
// @Success     200  {array}   domain.Skill
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Router      /skills/mine [get]
func (h *Handlers) MySkills(c *gin.Context) {
	items, err := h.skillSvc.Mine(c.Request.Context(), currentUser(c))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, items)
}

// SearchSkills godoc
// @ID          searchSkills
// @Summary     Search other users' skills
// @Tags        Skills
// @Produce     json
// @Security    BearerAuth
// @Param       q  query     string  true   "Keywords"
// @Param       k  query     int     false  "Max results"  minimum(1) maximum(50) default(10)
// @Success     200  {array}   domain.Skill
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Router      /skills/search [get]
func (h *Handlers) SearchSkills(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "q required")
		return
	}
	k := utils.IntParam(c.Query("k"), defaultSearchK, 1, maxSearchK)

	items, err := h.skillSvc.Search(c.Request.Context(), currentUser(c), q, k)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, items)
}

// DeleteSkill godoc
// @ID          deleteSkill
// @Summary     Delete my skill
// @Description Removes the skill together with its exchange requests and their chat history.
// @Tags        Skills
// @Security    BearerAuth
// @Param       id  path  string  true  "Skill ID (UUID)"  format(uuid)
// @Success     204
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     403  {object}  handlers.ErrorResponse  "Not the owner"
// @Failure     404  {object}  handlers.ErrorResponse  "Skill not found"
// @Router      /skills/{id} [delete]
func (h *Handlers) DeleteSkill(c *gin.Context) {
	if err := h.skillSvc.Delete(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}

// DashboardSummary godoc
// @ID          dashboardSummary
// @Summary     Dashboard counters and suggestion
// @Tags        Dashboard
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  services.Summary
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Router      /dashboard/summary [get]
func (h *Handlers) DashboardSummary(c *gin.Context) {
	s, err := h.skillSvc.Summary(c.Request.Context(), currentUser(c))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, s)
}
