// README: User account handlers (profile, admin listing, block/unblock).
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ridehub/internal/modules/user"
	"ridehub/internal/types"
)

type UserHandler struct {
	users *user.Service
}

func NewUserHandler(users *user.Service) *UserHandler {
	return &UserHandler{users: users}
}

type updateUserReq struct {
	Name  *string `json:"name"`
	Email *string `json:"email" binding:"omitempty,email"`
	Role  *string `json:"role"`
}

func (h *UserHandler) Get(c *gin.Context) {
	actor, ok := callerIdentity(c)
	if !ok {
		return
	}
	u, err := h.users.Get(c.Request.Context(), types.ID(c.Param("id")), actor)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, "user", u)
}

func (h *UserHandler) Me(c *gin.Context) {
	actor, ok := callerIdentity(c)
	if !ok {
		return
	}
	u, err := h.users.Get(c.Request.Context(), actor.UserID, actor)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, "user", u)
}

func (h *UserHandler) List(c *gin.Context) {
	actor, ok := callerIdentity(c)
	if !ok {
		return
	}
	users, err := h.users.List(c.Request.Context(), actor)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respondList(c, "users", users, len(users))
}

func (h *UserHandler) Update(c *gin.Context) {
	actor, ok := callerIdentity(c)
	if !ok {
		return
	}
	var req updateUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	cmd := user.UpdateCommand{
		ID:    types.ID(c.Param("id")),
		Actor: actor,
		Name:  req.Name,
		Email: req.Email,
	}
	if req.Role != nil {
		role := types.Role(*req.Role)
		cmd.Role = &role
	}
	u, err := h.users.Update(c.Request.Context(), cmd)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, "user updated", u)
}

func (h *UserHandler) Block(c *gin.Context) {
	actor, ok := callerIdentity(c)
	if !ok {
		return
	}
	u, err := h.users.Block(c.Request.Context(), types.ID(c.Param("id")), actor)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, "user blocked", u)
}

func (h *UserHandler) Unblock(c *gin.Context) {
	actor, ok := callerIdentity(c)
	if !ok {
		return
	}
	u, err := h.users.Unblock(c.Request.Context(), types.ID(c.Param("id")), actor)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, "user unblocked", u)
}
