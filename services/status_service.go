package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/peercall/signal-server/models"
)

// StatusService is the read-only projection of a room and its currently
// connected members. It owns no storage and is safe to call concurrently,
// which is what the polling clients do.
type StatusService struct {
	db *gorm.DB
}

func NewStatusService(db *gorm.DB) *StatusService {
	return &StatusService{db: db}
}

// Status returns the current occupancy snapshot for a room.
func (s *StatusService) Status(ctx context.Context, roomID string) (*models.RoomStatus, error) {
	var room models.Room
	if err := s.db.WithContext(ctx).First(&room, "id = ?", roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("load room: %w", err)
	}
	return projectStatus(s.db.WithContext(ctx), &room)
}

// projectStatus builds the snapshot from connected records only; historical
// disconnected rows never count. Participants come back in join order so
// clients render deterministically. Shared with the join transaction.
func projectStatus(db *gorm.DB, room *models.Room) (*models.RoomStatus, error) {
	var records []models.MembershipRecord
	if err := db.
		Where("room_id = ? AND connected = ?", room.ID, true).
		Order("joined_at asc, id asc").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}

	participants := make([]models.Participant, 0, len(records))
	for _, r := range records {
		participants = append(participants, models.Participant{
			UserID:    r.UserID,
			JoinedAt:  r.JoinedAt,
			Connected: r.Connected,
		})
	}

	return &models.RoomStatus{
		RoomID:           room.ID,
		ParticipantCount: len(participants),
		MaxParticipants:  room.MaxParticipants,
		Participants:     participants,
		Active:           room.Active,
	}, nil
}
