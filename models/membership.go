package models

import "time"

// MembershipRecord is one join/leave cycle of a user in a room. Records are
// never deleted; leaving flips Connected to false and a re-join inserts a new
// row, so the full history stays queryable. At most one record per
// (room_id, user_id) may be connected at any instant.
type MembershipRecord struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	RoomID    string    `gorm:"column:room_id;size:64;not null;index:idx_membership_room" json:"roomId"`
	UserID    string    `gorm:"column:user_id;size:100;not null" json:"userId"`
	JoinedAt  time.Time `gorm:"column:joined_at;autoCreateTime" json:"joinedAt"`
	Connected bool      `gorm:"column:connected;not null;default:true;index:idx_membership_room" json:"connected"`
}

func (MembershipRecord) TableName() string {
	return "membership_records"
}
