// README: Ride lifecycle handlers (create, match, transition, queries).
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ridehub/internal/modules/ride"
	"ridehub/internal/types"
)

type RideHandler struct {
	rides *ride.Service
}

func NewRideHandler(rides *ride.Service) *RideHandler {
	return &RideHandler{rides: rides}
}

type createRideReq struct {
	Passengers int     `json:"passengers" binding:"required,min=1"`
	From       string  `json:"from" binding:"required"`
	To         string  `json:"to" binding:"required"`
	Fare       float64 `json:"fare" binding:"omitempty,gte=0"`
}

type statusReq struct {
	Status string `json:"status" binding:"required"`
}

func (h *RideHandler) Create(c *gin.Context) {
	actor, ok := callerIdentity(c)
	if !ok {
		return
	}
	var req createRideReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	r, err := h.rides.Create(c.Request.Context(), ride.CreateCommand{
		Actor:      actor,
		Passengers: req.Passengers,
		From:       req.From,
		To:         req.To,
		Fare:       req.Fare,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respond(c, http.StatusCreated, "ride requested", r)
}

func (h *RideHandler) Available(c *gin.Context) {
	actor, ok := callerIdentity(c)
	if !ok {
		return
	}
	rides, err := h.rides.AvailableRides(c.Request.Context(), actor)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respondList(c, "available rides", rides, len(rides))
}

func (h *RideHandler) Accept(c *gin.Context) {
	actor, ok := callerIdentity(c)
	if !ok {
		return
	}
	r, err := h.rides.Accept(c.Request.Context(), ride.AcceptCommand{
		RideID: types.ID(c.Param("id")),
		Actor:  actor,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, "ride accepted", r)
}

func (h *RideHandler) Reject(c *gin.Context) {
	actor, ok := callerIdentity(c)
	if !ok {
		return
	}
	r, err := h.rides.Reject(c.Request.Context(), ride.RejectCommand{
		RideID: types.ID(c.Param("id")),
		Actor:  actor,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, "ride rejected", r)
}

func (h *RideHandler) Cancel(c *gin.Context) {
	actor, ok := callerIdentity(c)
	if !ok {
		return
	}
	r, err := h.rides.Cancel(c.Request.Context(), ride.CancelCommand{
		RideID: types.ID(c.Param("id")),
		Actor:  actor,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, "ride cancelled", r)
}

func (h *RideHandler) UpdateStatus(c *gin.Context) {
	actor, ok := callerIdentity(c)
	if !ok {
		return
	}
	var req statusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	to := ride.Status(req.Status)
	if !to.Valid() {
		respondError(c, http.StatusBadRequest, "validation_error", "unknown ride status")
		return
	}
	r, err := h.rides.RequestTransition(c.Request.Context(), ride.TransitionCommand{
		RideID: types.ID(c.Param("id")),
		To:     to,
		Actor:  actor,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, "ride status updated", r)
}

func (h *RideHandler) Get(c *gin.Context) {
	actor, ok := callerIdentity(c)
	if !ok {
		return
	}
	r, err := h.rides.Get(c.Request.Context(), types.ID(c.Param("id")), actor)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, "ride", r)
}

func (h *RideHandler) ListMine(c *gin.Context) {
	actor, ok := callerIdentity(c)
	if !ok {
		return
	}
	rides, err := h.rides.ListMine(c.Request.Context(), actor)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respondList(c, "my rides", rides, len(rides))
}

func (h *RideHandler) ListAll(c *gin.Context) {
	actor, ok := callerIdentity(c)
	if !ok {
		return
	}
	rides, err := h.rides.ListAll(c.Request.Context(), actor)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respondList(c, "all rides", rides, len(rides))
}

func (h *RideHandler) ListByDriver(c *gin.Context) {
	actor, ok := callerIdentity(c)
	if !ok {
		return
	}
	rides, err := h.rides.ListByDriver(c.Request.Context(), types.ID(c.Param("id")), actor)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respondList(c, "driver rides", rides, len(rides))
}

func (h *RideHandler) ListByRider(c *gin.Context) {
	actor, ok := callerIdentity(c)
	if !ok {
		return
	}
	rides, err := h.rides.ListByRider(c.Request.Context(), types.ID(c.Param("id")), actor)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respondList(c, "rider rides", rides, len(rides))
}
