// README: Driver profile handlers (application, review, availability).
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ridehub/internal/modules/driver"
	"ridehub/internal/types"
)

type DriverHandler struct {
	drivers *driver.Service
}

func NewDriverHandler(drivers *driver.Service) *DriverHandler {
	return &DriverHandler{drivers: drivers}
}

type applyReq struct {
	VehicleLicense  string `json:"vehicleLicense" binding:"required"`
	VehicleCapacity int    `json:"vehicleCapacity" binding:"required,min=1"`
}

type updateVehicleReq struct {
	VehicleLicense  *string `json:"vehicleLicense"`
	VehicleCapacity *int    `json:"vehicleCapacity" binding:"omitempty,min=1"`
}

type availabilityReq struct {
	ActiveStatus string `json:"activeStatus" binding:"required,oneof=online offline"`
}

func (h *DriverHandler) Apply(c *gin.Context) {
	actor, ok := callerIdentity(c)
	if !ok {
		return
	}
	var req applyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	p, err := h.drivers.Apply(c.Request.Context(), driver.ApplyCommand{
		Actor:           actor,
		VehicleLicense:  req.VehicleLicense,
		VehicleCapacity: req.VehicleCapacity,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respond(c, http.StatusCreated, "driver application submitted", p)
}

func (h *DriverHandler) Get(c *gin.Context) {
	actor, ok := callerIdentity(c)
	if !ok {
		return
	}
	view, err := h.drivers.Get(c.Request.Context(), types.ID(c.Param("id")), actor)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, "driver profile", view)
}

func (h *DriverHandler) Me(c *gin.Context) {
	actor, ok := callerIdentity(c)
	if !ok {
		return
	}
	view, err := h.drivers.Get(c.Request.Context(), actor.UserID, actor)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, "driver profile", view)
}

func (h *DriverHandler) List(c *gin.Context) {
	actor, ok := callerIdentity(c)
	if !ok {
		return
	}
	profiles, err := h.drivers.List(c.Request.Context(), actor)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respondList(c, "drivers", profiles, len(profiles))
}

func (h *DriverHandler) UpdateVehicle(c *gin.Context) {
	actor, ok := callerIdentity(c)
	if !ok {
		return
	}
	var req updateVehicleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	p, err := h.drivers.UpdateVehicle(c.Request.Context(), driver.UpdateVehicleCommand{
		AccountID:       types.ID(c.Param("id")),
		Actor:           actor,
		VehicleLicense:  req.VehicleLicense,
		VehicleCapacity: req.VehicleCapacity,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, "vehicle updated", p)
}

func (h *DriverHandler) Approve(c *gin.Context) {
	actor, ok := callerIdentity(c)
	if !ok {
		return
	}
	p, err := h.drivers.Approve(c.Request.Context(), types.ID(c.Param("id")), actor)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, "driver approved", p)
}

func (h *DriverHandler) Reject(c *gin.Context) {
	actor, ok := callerIdentity(c)
	if !ok {
		return
	}
	p, err := h.drivers.RejectApplication(c.Request.Context(), types.ID(c.Param("id")), actor)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, "driver application rejected", p)
}

func (h *DriverHandler) Suspend(c *gin.Context) {
	actor, ok := callerIdentity(c)
	if !ok {
		return
	}
	p, err := h.drivers.Suspend(c.Request.Context(), types.ID(c.Param("id")), actor)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, "driver suspended", p)
}

func (h *DriverHandler) SetAvailability(c *gin.Context) {
	actor, ok := callerIdentity(c)
	if !ok {
		return
	}
	var req availabilityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	p, err := h.drivers.SetActiveStatus(c.Request.Context(), actor.UserID, actor, driver.ActiveStatus(req.ActiveStatus))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, "availability updated", p)
}
