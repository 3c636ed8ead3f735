package models

import "encoding/json"

// SignalType is the kind of a signaling message.
type SignalType string

const (
	SignalOffer        SignalType = "offer"
	SignalAnswer       SignalType = "answer"
	SignalICECandidate SignalType = "ice-candidate"
	SignalJoinRoom     SignalType = "join-room"
	SignalLeaveRoom    SignalType = "leave-room"
	SignalUserJoined   SignalType = "user-joined"
	SignalUserLeft     SignalType = "user-left"
	SignalRoomFull     SignalType = "room-full"
)

// Valid reports whether t is a recognized signal type.
func (t SignalType) Valid() bool {
	switch t {
	case SignalOffer, SignalAnswer, SignalICECandidate,
		SignalJoinRoom, SignalLeaveRoom,
		SignalUserJoined, SignalUserLeft, SignalRoomFull:
		return true
	}
	return false
}

// SignalingMessage is one recorded handshake datum. Rows are immutable once
// written. Seq is the insertion order tiebreak for messages sharing a
// millisecond timestamp; Timestamp is epoch milliseconds, assigned by the
// server, non-decreasing within a room.
type SignalingMessage struct {
	Seq        uint64          `gorm:"column:seq;primaryKey;autoIncrement" json:"-"`
	ID         string          `gorm:"column:id;size:36;uniqueIndex;not null" json:"id"`
	RoomID     string          `gorm:"column:room_id;size:64;not null;index:idx_signal_room_ts" json:"roomId"`
	FromUserID string          `gorm:"column:from_user_id;size:100;not null" json:"fromUserId"`
	ToUserID   *string         `gorm:"column:to_user_id;size:100" json:"toUserId,omitempty"`
	Type       SignalType      `gorm:"column:type;size:20;not null" json:"type"`
	Payload    json.RawMessage `gorm:"column:payload" json:"payload,omitempty"`
	Timestamp  int64           `gorm:"column:timestamp;not null;index:idx_signal_room_ts" json:"timestamp"`
}

func (SignalingMessage) TableName() string {
	return "signaling_messages"
}

// Broadcast reports whether the message has no specific recipient.
func (m *SignalingMessage) Broadcast() bool {
	return m.ToUserID == nil || *m.ToUserID == ""
}

// SessionDescriptionPayload is the expected payload shape for offer and
// answer messages. The SDP itself is opaque to the server.
type SessionDescriptionPayload struct {
	Type *string `json:"type"`
	SDP  *string `json:"sdp"`
}

// ICECandidatePayload is the expected payload shape for ice-candidate
// messages, mirroring the browser's RTCIceCandidateInit.
type ICECandidatePayload struct {
	Candidate        *string `json:"candidate"`
	SDPMid           *string `json:"sdpMid"`
	SDPMLineIndex    *int    `json:"sdpMLineIndex"`
	UsernameFragment *string `json:"usernameFragment,omitempty"`
}
