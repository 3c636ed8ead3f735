package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/peercall/signal-server/models"
)

// Publisher receives every stored message for best-effort push delivery.
// The persisted log stays the authoritative catch-up path.
type Publisher interface {
	Publish(msg *models.SignalingMessage)
}

// SignalingService owns the append-only signaling log: it validates, records
// and serves back handshake messages. Payloads are shape-checked but never
// interpreted.
type SignalingService struct {
	db        *gorm.DB
	publisher Publisher
}

func NewSignalingService(db *gorm.DB, publisher Publisher) *SignalingService {
	return &SignalingService{db: db, publisher: publisher}
}

// Send validates and records a message, assigning id and server timestamp.
// Timestamps are epoch milliseconds, kept non-decreasing within a room; the
// auto-increment seq preserves insertion order for same-millisecond messages.
// The room must exist but need not be active, since teardown messages may
// still flow. Room existence is checked before type and payload, so a message
// to a missing room always reports NotFound. Holding the room row lock from
// the existence check through the insert serializes appends per room: without
// it two writers could read the same MAX(timestamp) and commit out of order,
// and a poller sitting at the higher cursor would skip the earlier message
// forever.
func (s *SignalingService) Send(ctx context.Context, msg *models.SignalingMessage) (*models.SignalingMessage, error) {
	logCtx := logrus.WithFields(logrus.Fields{
		"room_id": msg.RoomID,
		"from":    msg.FromUserID,
		"type":    msg.Type,
	})

	if msg.ToUserID != nil && *msg.ToUserID == "" {
		msg.ToUserID = nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room models.Room
		if err := lockForUpdate(tx).First(&room, "id = ?", msg.RoomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoomNotFound
			}
			return fmt.Errorf("load room: %w", err)
		}

		if !msg.Type.Valid() {
			return ErrInvalidMessageType
		}
		if err := validatePayload(msg.Type, msg.Payload); err != nil {
			return err
		}

		var last int64
		if err := tx.Model(&models.SignalingMessage{}).
			Where("room_id = ?", msg.RoomID).
			Select("COALESCE(MAX(timestamp), 0)").
			Scan(&last).Error; err != nil {
			return fmt.Errorf("read last timestamp: %w", err)
		}

		now := time.Now().UnixMilli()
		if now < last {
			now = last
		}
		msg.ID = uuid.NewString()
		msg.Timestamp = now

		if err := tx.Create(msg).Error; err != nil {
			return fmt.Errorf("store message: %w", err)
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrRoomNotFound):
			logCtx.Warn("Message for unknown room")
		case errors.Is(err, ErrInvalidMessageType):
			logCtx.Warn("Rejected message with unrecognized type")
		case errors.Is(err, ErrInvalidPayload):
			logCtx.Warn("Rejected message with malformed payload")
		default:
			logCtx.WithError(err).Error("Failed to store message")
		}
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.Publish(msg)
	}

	logCtx.WithField("message_id", msg.ID).Debug("Message stored")
	return msg, nil
}

// ListSince returns the room's messages with timestamp strictly greater than
// after, ordered by timestamp then insertion order. Callers use the timestamp
// of the last message they saw as the next cursor.
func (s *SignalingService) ListSince(ctx context.Context, roomID string, after int64) ([]models.SignalingMessage, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Room{}).Where("id = ?", roomID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check room: %w", err)
	}
	if count == 0 {
		return nil, ErrRoomNotFound
	}

	var msgs []models.SignalingMessage
	if err := s.db.WithContext(ctx).
		Where("room_id = ? AND timestamp > ?", roomID, after).
		Order("timestamp asc, seq asc").
		Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}

// validatePayload checks that the payload carries the fields its type
// declares. Field values stay opaque; only presence is enforced.
func validatePayload(t models.SignalType, payload json.RawMessage) error {
	switch t {
	case models.SignalOffer, models.SignalAnswer:
		var p models.SessionDescriptionPayload
		if len(payload) == 0 || json.Unmarshal(payload, &p) != nil {
			return ErrInvalidPayload
		}
		if p.Type == nil || p.SDP == nil {
			return ErrInvalidPayload
		}
		if *p.Type != string(t) {
			return ErrInvalidPayload
		}
	case models.SignalICECandidate:
		var p models.ICECandidatePayload
		if len(payload) == 0 || json.Unmarshal(payload, &p) != nil {
			return ErrInvalidPayload
		}
		if p.Candidate == nil || p.SDPMid == nil || p.SDPMLineIndex == nil {
			return ErrInvalidPayload
		}
	default:
		// Presence/control messages carry no payload.
		if !emptyPayload(payload) {
			return ErrInvalidPayload
		}
	}
	return nil
}

func emptyPayload(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null" || s == "{}"
}
