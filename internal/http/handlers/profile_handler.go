package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/skillswap-backend/internal/services"
)

// UpdateProfileRequest is a partial profile update; omitted fields are kept.
type UpdateProfileRequest struct {
	Email         *string `json:"email"          example:"alice@example.com"`
	Bio           *string `json:"bio"            example:"Guitarist and part-time baker"`
	SkillsOffered *string `json:"skills_offered" example:"guitar baking"`
}

// GetProfile godoc
// @ID          getProfile
// @Summary     Get my profile
// @Tags        Profile
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  domain.User
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse  "No profile"
// @Router      /profile [get]
func (h *Handlers) GetProfile(c *gin.Context) {
	u, err := h.userSvc.Profile(c.Request.Context(), currentUser(c))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, u)
}

// UpdateProfile godoc
// @ID          updateProfile
// @Summary     Create or update my profile
// @Tags        Profile
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      handlers.UpdateProfileRequest  true  "Profile fields"
// @Success     200   {object}  domain.User
// @Failure     400   {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401   {object}  handlers.ErrorResponse  "Unauthorized"
// @Router      /profile [put]
func (h *Handlers) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	u, err := h.userSvc.UpdateProfile(c.Request.Context(), currentUser(c), services.ProfileInput{
		Email:         req.Email,
		Bio:           req.Bio,
		SkillsOffered: req.SkillsOffered,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, u)
}
