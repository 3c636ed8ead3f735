package models

import "time"

// Capacity bounds for a room, fixed at creation.
const (
	MinParticipants = 2
	MaxParticipants = 10
)

type Room struct {
	ID              string    `gorm:"column:id;primaryKey;size:64" json:"roomId"`
	MaxParticipants int       `gorm:"column:max_participants;not null" json:"maxParticipants"`
	Active          bool      `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`

	Memberships []MembershipRecord `gorm:"foreignKey:RoomID" json:"-"`
}

func (Room) TableName() string {
	return "rooms"
}
