package model

import (
	"time"

	"gorm.io/datatypes"
)

// User is a guest identity. Usernames double as the participant identity the
// rules engine sees, so they are unique.
type User struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Username  string `gorm:"unique;not null"`
	Status    string `gorm:"default:normal;not null"` // normal/banned
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Room is the durable record of a table. Only the room itself is persisted;
// game history is not (the live game lives in the room runtime).
type Room struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Code         string `gorm:"unique;not null"` // short join code
	Name         string
	OwnerID      int64
	Status       string `gorm:"default:waiting;not null"` // waiting/playing/ended
	HandSize     int
	PasswordHash string         // empty for public rooms
	PlayersJSON  datatypes.JSON // ordered list of member usernames
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
