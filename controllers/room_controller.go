package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/peercall/signal-server/services"
)

type RoomController struct {
	rooms  *services.RoomService
	status *services.StatusService
}

func NewRoomController(rooms *services.RoomService, status *services.StatusService) *RoomController {
	return &RoomController{rooms: rooms, status: status}
}

// POST /api/rooms
func (ctl *RoomController) CreateRoom(c *gin.Context) {
	var req struct {
		RoomID          string `json:"roomId"`
		MaxParticipants int    `json:"maxParticipants"`
	}
	// An empty body is fine: generated id, default capacity.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
		return
	}

	room, err := ctl.rooms.CreateRoom(c.Request.Context(), req.RoomID, req.MaxParticipants)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRoomExists):
			c.JSON(http.StatusConflict, gin.H{"message": "Room already exists"})
		case errors.Is(err, services.ErrInvalidCapacity):
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not create room"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Room created",
		"data":    room,
	})
}

// GET /api/rooms/:id
func (ctl *RoomController) GetRoom(c *gin.Context) {
	room, err := ctl.rooms.GetRoom(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Room not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not load room"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": room})
}

// GET /api/rooms/:id/status
func (ctl *RoomController) GetRoomStatus(c *gin.Context) {
	status, err := ctl.status.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"message": "Room not found",
				"data":    nil,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not load room status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": status})
}
