package models

import "time"

// Participant is one currently-connected member in a RoomStatus snapshot.
type Participant struct {
	UserID    string    `json:"userId"`
	JoinedAt  time.Time `json:"joinedAt"`
	Connected bool      `json:"connected"`
}

// RoomStatus is the derived, read-only snapshot of a room's occupancy.
// It is computed on demand and never stored.
type RoomStatus struct {
	RoomID           string        `json:"roomId"`
	ParticipantCount int           `json:"participantCount"`
	MaxParticipants  int           `json:"maxParticipants"`
	Participants     []Participant `json:"participants"`
	Active           bool          `json:"active"`
}
