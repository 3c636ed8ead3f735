package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/peercall/signal-server/models"
)

// MembershipService owns membership records and drives the
// Absent -> Connected -> Absent transitions per (room, user) pair.
type MembershipService struct {
	db *gorm.DB
}

func NewMembershipService(db *gorm.DB) *MembershipService {
	return &MembershipService{db: db}
}

// Join admits a user into a room and returns the updated status snapshot.
// The whole check-then-insert sequence runs in one transaction holding a lock
// on the room row, so two concurrent joins cannot both pass the capacity
// check. Checks are evaluated in order: room missing/inactive, already a
// member, room full.
func (s *MembershipService) Join(ctx context.Context, roomID, userID string) (*models.RoomStatus, error) {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "user_id": userID})

	var status *models.RoomStatus
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room models.Room
		if err := lockForUpdate(tx).First(&room, "id = ?", roomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoomNotFound
			}
			return fmt.Errorf("load room: %w", err)
		}
		if !room.Active {
			return ErrRoomNotFound
		}

		var alreadyIn int64
		if err := tx.Model(&models.MembershipRecord{}).
			Where("room_id = ? AND user_id = ? AND connected = ?", roomID, userID, true).
			Count(&alreadyIn).Error; err != nil {
			return fmt.Errorf("check membership: %w", err)
		}
		if alreadyIn > 0 {
			return ErrAlreadyMember
		}

		var connected int64
		if err := tx.Model(&models.MembershipRecord{}).
			Where("room_id = ? AND connected = ?", roomID, true).
			Count(&connected).Error; err != nil {
			return fmt.Errorf("count members: %w", err)
		}
		if connected >= int64(room.MaxParticipants) {
			return ErrRoomFull
		}

		record := models.MembershipRecord{
			RoomID:    roomID,
			UserID:    userID,
			JoinedAt:  time.Now(),
			Connected: true,
		}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("insert membership: %w", err)
		}

		st, err := projectStatus(tx, &room)
		if err != nil {
			return err
		}
		status = st
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrRoomNotFound), errors.Is(err, ErrAlreadyMember), errors.Is(err, ErrRoomFull):
			logCtx.WithError(err).Warn("Join rejected")
		default:
			logCtx.WithError(err).Error("Join failed")
		}
		return nil, err
	}

	logCtx.WithField("participant_count", status.ParticipantCount).Info("User joined room")
	return status, nil
}

// Leave flips the connected record for the pair to disconnected. It is
// idempotent: leaving with no connected record is a no-op success, so clients
// can call it defensively from cleanup paths. The record itself is kept.
func (s *MembershipService) Leave(ctx context.Context, roomID, userID string) error {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "user_id": userID})

	res := s.db.WithContext(ctx).Model(&models.MembershipRecord{}).
		Where("room_id = ? AND user_id = ? AND connected = ?", roomID, userID, true).
		Update("connected", false)
	if res.Error != nil {
		logCtx.WithError(res.Error).Error("Leave failed")
		return fmt.Errorf("leave room: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		logCtx.Debug("Leave with no connected record, nothing to do")
		return nil
	}

	logCtx.Info("User left room")
	return nil
}

// lockForUpdate adds a row lock where the dialect supports it. SQLite (used
// by the test suite) has no SELECT ... FOR UPDATE; its writes are serialized
// by the engine itself.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
