package utils

import (
	"crypto/rand"
	"fmt"
)

const roomIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// RoomIDLength is the length of generated room ids.
const RoomIDLength = 8

// GenerateRoomID returns a random 8-character uppercase alphanumeric id.
// Uniqueness is checked by the caller against the store.
func GenerateRoomID() (string, error) {
	b := make([]byte, RoomIDLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate room id: %w", err)
	}
	for i := range b {
		b[i] = roomIDAlphabet[int(b[i])%len(roomIDAlphabet)]
	}
	return string(b), nil
}
