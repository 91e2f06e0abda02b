// File: handlers/auth.go
package handlers

import (
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/middleware"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/services/user"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler exposes account endpoints.
type AuthHandler struct {
	Svc user.UserService
}

func NewAuthHandler(svc user.UserService) *AuthHandler {
	return &AuthHandler{Svc: svc}
}

// RegisterHandler handles POST /api/auth/register.
func (h *AuthHandler) RegisterHandler(c *gin.Context) {
	var req user.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.WrapError(utils.KindValidation, "INVALID_BODY", err.Error(), err))
		return
	}

	resp, err := h.Svc.Register(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondCreated(c, "Account created", resp)
}

// LoginHandler handles POST /api/auth/login.
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.WrapError(utils.KindValidation, "INVALID_BODY", err.Error(), err))
		return
	}

	resp, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, "Logged in", resp)
}

// LogoutHandler handles POST /api/auth/logout.
func (h *AuthHandler) LogoutHandler(c *gin.Context) {
	auth := middleware.AuthFrom(c)
	if err := h.Svc.Logout(c.Request.Context(), auth.UserID); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, "Logged out", nil)
}

// MeHandler handles GET /api/auth/me.
func (h *AuthHandler) MeHandler(c *gin.Context) {
	auth := middleware.AuthFrom(c)
	u, err := h.Svc.GetProfile(c.Request.Context(), auth.UserID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, "Profile", u)
}
