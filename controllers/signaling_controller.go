package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/peercall/signal-server/models"
	"github.com/peercall/signal-server/services"
)

type SignalingController struct {
	signaling *services.SignalingService
}

func NewSignalingController(signaling *services.SignalingService) *SignalingController {
	return &SignalingController{signaling: signaling}
}

// POST /api/rooms/:id/messages
func (ctl *SignalingController) SendMessage(c *gin.Context) {
	var req struct {
		Type       string          `json:"type" binding:"required"`
		Payload    json.RawMessage `json:"payload"`
		FromUserID string          `json:"fromUserId" binding:"required"`
		ToUserID   *string         `json:"toUserId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
		return
	}

	msg := models.SignalingMessage{
		RoomID:     c.Param("id"),
		FromUserID: req.FromUserID,
		ToUserID:   req.ToUserID,
		Type:       models.SignalType(req.Type),
		Payload:    req.Payload,
	}

	stored, err := ctl.signaling.Send(c.Request.Context(), &msg)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRoomNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "Room not found"})
		case errors.Is(err, services.ErrInvalidMessageType), errors.Is(err, services.ErrInvalidPayload):
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not store message"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Message stored",
		"data":    stored,
	})
}

// GET /api/rooms/:id/messages?since=<epoch-millis>
//
// Returns messages with timestamp strictly greater than since, oldest first.
// Clients poll with the timestamp of the last message they processed.
func (ctl *SignalingController) ListMessages(c *gin.Context) {
	since, err := strconv.ParseInt(c.DefaultQuery("since", "0"), 10, 64)
	if err != nil || since < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid since cursor"})
		return
	}

	msgs, err := ctl.signaling.ListSince(c.Request.Context(), c.Param("id"), since)
	if err != nil {
		if errors.Is(err, services.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Room not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not list messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": msgs})
}
