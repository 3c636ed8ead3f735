package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/peercall/signal-server/models"
	"github.com/peercall/signal-server/realtime"
	"github.com/peercall/signal-server/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  64 * 1024,
	WriteBufferSize: 64 * 1024,

	// Origin is not checked here; cross-origin policy is handled by the CORS
	// layer for the REST API and deployments front this with a proxy.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WsController struct {
	hub   *realtime.Hub
	rooms *services.RoomService
}

func NewWsController(hub *realtime.Hub, rooms *services.RoomService) *WsController {
	return &WsController{hub: hub, rooms: rooms}
}

// GET /ws/rooms/:id?userId=
//
// Subscribes the caller to the room's message stream. Subscribing is not
// joining: membership state is only changed through the join/leave endpoints,
// and a subscriber that never joined simply watches broadcasts.
func (ctl *WsController) Subscribe(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "userId query parameter is required"})
		return
	}

	roomID := c.Param("id")
	if _, err := ctl.rooms.GetRoom(c.Request.Context(), roomID); err != nil {
		if errors.Is(err, services.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Room not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not load room"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	client := &realtime.Client{
		Hub:    ctl.hub,
		Conn:   conn,
		RoomID: roomID,
		UserID: userID,
		Send:   make(chan *models.SignalingMessage, 32),
	}
	client.Register()
}
