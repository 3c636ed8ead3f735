package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/peercall/signal-server/services"
)

type MembershipController struct {
	membership *services.MembershipService
}

func NewMembershipController(membership *services.MembershipService) *MembershipController {
	return &MembershipController{membership: membership}
}

// POST /api/rooms/:id/join
//
// Join preconditions (missing room, already a member, room full) are expected
// operational outcomes the client branches on, so they come back as
// success=false with a reason rather than an error status.
func (ctl *MembershipController) JoinRoom(c *gin.Context) {
	var req struct {
		UserID string `json:"userId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
		return
	}

	status, err := ctl.membership.Join(c.Request.Context(), c.Param("id"), req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRoomNotFound),
			errors.Is(err, services.ErrAlreadyMember),
			errors.Is(err, services.ErrRoomFull):
			c.JSON(http.StatusOK, gin.H{
				"success": false,
				"error":   err.Error(),
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not join room"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"roomStatus": status,
	})
}

// POST /api/rooms/:id/leave
func (ctl *MembershipController) LeaveRoom(c *gin.Context) {
	var req struct {
		UserID string `json:"userId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
		return
	}

	if err := ctl.membership.Leave(c.Request.Context(), c.Param("id"), req.UserID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not leave room"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
