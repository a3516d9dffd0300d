// README: HTTP router registration and route-level access policy.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"ridehub/internal/auth"
	"ridehub/internal/http/handlers"
	"ridehub/internal/http/middleware"
	"ridehub/internal/modules/driver"
	"ridehub/internal/modules/ride"
	"ridehub/internal/modules/user"
	"ridehub/internal/types"
)

type RouterDeps struct {
	Users   *user.Service
	Rides   *ride.Service
	Drivers *driver.Service
	Tokens  *auth.TokenManager
	Log     *logrus.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.Recovery(deps.Log))
	engine.Use(middleware.RequestLogger(deps.Log))
	engine.Use(middleware.Metrics())

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authHandler := handlers.NewAuthHandler(deps.Users, deps.Tokens)
	rideHandler := handlers.NewRideHandler(deps.Rides)
	userHandler := handlers.NewUserHandler(deps.Users)
	driverHandler := handlers.NewDriverHandler(deps.Drivers)

	v1 := engine.Group("/api/v1")

	v1.POST("/auth/register", authHandler.Register)
	v1.POST("/auth/login", authHandler.Login)

	authed := v1.Group("", middleware.Authenticate(deps.Tokens))

	rides := authed.Group("/rides")
	rides.POST("", middleware.RequireRoles(types.RoleRider), rideHandler.Create)
	rides.GET("/available", middleware.RequireRoles(types.RoleDriver), rideHandler.Available)
	rides.GET("/me", rideHandler.ListMine)
	rides.GET("", middleware.RequireRoles(types.RoleAdmin), rideHandler.ListAll)
	rides.GET("/driver/:id", rideHandler.ListByDriver)
	rides.GET("/rider/:id", rideHandler.ListByRider)
	rides.GET("/:id", rideHandler.Get)
	rides.POST("/:id/accept", middleware.RequireRoles(types.RoleDriver), rideHandler.Accept)
	rides.POST("/:id/reject", middleware.RequireRoles(types.RoleDriver), rideHandler.Reject)
	rides.POST("/:id/cancel", middleware.RequireRoles(types.RoleRider), rideHandler.Cancel)
	rides.PATCH("/:id/status", rideHandler.UpdateStatus)

	users := authed.Group("/users")
	users.GET("/me", userHandler.Me)
	users.GET("", middleware.RequireRoles(types.RoleAdmin), userHandler.List)
	users.GET("/:id", userHandler.Get)
	users.PATCH("/:id", userHandler.Update)
	users.POST("/:id/block", middleware.RequireRoles(types.RoleAdmin), userHandler.Block)
	users.POST("/:id/unblock", middleware.RequireRoles(types.RoleAdmin), userHandler.Unblock)

	drivers := authed.Group("/drivers")
	drivers.POST("/apply", middleware.RequireRoles(types.RoleDriver), driverHandler.Apply)
	drivers.GET("/me", middleware.RequireRoles(types.RoleDriver), driverHandler.Me)
	drivers.PUT("/availability", middleware.RequireRoles(types.RoleDriver), driverHandler.SetAvailability)
	drivers.GET("", middleware.RequireRoles(types.RoleAdmin), driverHandler.List)
	drivers.GET("/:id", driverHandler.Get)
	drivers.PATCH("/:id/vehicle", driverHandler.UpdateVehicle)
	drivers.POST("/:id/approve", middleware.RequireRoles(types.RoleAdmin), driverHandler.Approve)
	drivers.POST("/:id/reject", middleware.RequireRoles(types.RoleAdmin), driverHandler.Reject)
	drivers.POST("/:id/suspend", middleware.RequireRoles(types.RoleAdmin), driverHandler.Suspend)

	return engine
}
