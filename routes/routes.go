package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/peercall/signal-server/controllers"
)

// Controllers bundles the handler set SetupRoutes wires up.
type Controllers struct {
	Room       *controllers.RoomController
	Membership *controllers.MembershipController
	Signaling  *controllers.SignalingController
	Ws         *controllers.WsController
}

func SetupRoutes(r *gin.Engine, ctl Controllers) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})
	r.GET("/health", controllers.HealthCheck)

	api := r.Group("/api")
	{
		rooms := api.Group("/rooms")
		{
			rooms.POST("", ctl.Room.CreateRoom)
			rooms.GET("/:id", ctl.Room.GetRoom)
			rooms.GET("/:id/status", ctl.Room.GetRoomStatus)

			rooms.POST("/:id/join", ctl.Membership.JoinRoom)
			rooms.POST("/:id/leave", ctl.Membership.LeaveRoom)

			rooms.POST("/:id/messages", ctl.Signaling.SendMessage)
			rooms.GET("/:id/messages", ctl.Signaling.ListMessages)
		}
	}

	r.GET("/ws/rooms/:id", ctl.Ws.Subscribe)
}
