package Models

import (
	"time"
)

type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"userId" gorm:"type:varchar(64);not null;uniqueIndex"`
	Password  []byte    `json:"-" gorm:"not null"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	Email     string    `json:"email,omitempty" gorm:"type:varchar(255)"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserSummary is the public slice of a user embedded in other responses.
type UserSummary struct {
	ID     uint   `json:"id"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, UserID: u.UserID, Name: u.Name}
}
