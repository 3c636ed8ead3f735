package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/peercall/signal-server/models"
	"github.com/peercall/signal-server/utils"
)

// RoomService owns the rooms table: creation and lookup. Rooms are never
// updated or deleted here; deactivation is a future extension point.
type RoomService struct {
	db *gorm.DB
}

func NewRoomService(db *gorm.DB) *RoomService {
	return &RoomService{db: db}
}

// CreateRoom persists a new active room. When requestedID is empty a fresh
// 8-character id is generated, retrying on collision. A zero maxParticipants
// falls back to the minimum of 2.
func (s *RoomService) CreateRoom(ctx context.Context, requestedID string, maxParticipants int) (*models.Room, error) {
	if maxParticipants == 0 {
		maxParticipants = models.MinParticipants
	}
	if maxParticipants < models.MinParticipants || maxParticipants > models.MaxParticipants {
		return nil, ErrInvalidCapacity
	}

	logCtx := logrus.WithField("max_participants", maxParticipants)

	id := requestedID
	if id != "" {
		exists, err := s.roomExists(ctx, id)
		if err != nil {
			return nil, err
		}
		if exists {
			logCtx.WithField("room_id", id).Warn("Room id already taken")
			return nil, ErrRoomExists
		}
	} else {
		generated, err := s.generateUniqueRoomID(ctx)
		if err != nil {
			logCtx.WithError(err).Error("Failed to generate unique room id")
			return nil, err
		}
		id = generated
	}

	room := models.Room{
		ID:              id,
		MaxParticipants: maxParticipants,
		Active:          true,
	}
	if err := s.db.WithContext(ctx).Create(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race against a concurrent create for the same id.
			return nil, ErrRoomExists
		}
		logCtx.WithError(err).Error("Failed to save new room")
		return nil, fmt.Errorf("create room: %w", err)
	}

	logCtx.WithField("room_id", room.ID).Info("Room created")
	return &room, nil
}

// GetRoom looks a room up by id.
func (s *RoomService) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	var room models.Room
	if err := s.db.WithContext(ctx).First(&room, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("load room: %w", err)
	}
	return &room, nil
}

func (s *RoomService) roomExists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Room{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check room id: %w", err)
	}
	return count > 0, nil
}

func (s *RoomService) generateUniqueRoomID(ctx context.Context) (string, error) {
	const maxAttempts = 10

	for attempt := 0; attempt < maxAttempts; attempt++ {
		id, err := utils.GenerateRoomID()
		if err != nil {
			return "", err
		}
		exists, err := s.roomExists(ctx, id)
		if err != nil {
			return "", err
		}
		if !exists {
			return id, nil
		}
		logrus.WithField("room_id", id).Warnf("Generated room id already exists, retrying (attempt %d)", attempt+1)
	}
	return "", fmt.Errorf("no unique room id after %d attempts", maxAttempts)
}
