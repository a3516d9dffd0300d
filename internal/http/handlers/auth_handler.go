// README: Registration and login handlers issuing JWTs.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ridehub/internal/auth"
	"ridehub/internal/modules/user"
	"ridehub/internal/types"
)

type AuthHandler struct {
	users  *user.Service
	tokens *auth.TokenManager
}

func NewAuthHandler(users *user.Service, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

type registerReq struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role"`
}

type loginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type authResponse struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	u, err := h.users.Register(c.Request.Context(), user.RegisterCommand{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     types.Role(req.Role),
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	token, err := h.tokens.Issue(u.ID, u.Role)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respond(c, http.StatusCreated, "account created", authResponse{Token: token, User: u})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	u, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	token, err := h.tokens.Issue(u.ID, u.Role)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, "login successful", authResponse{Token: token, User: u})
}
