package model

import "time"

// User is an account holder. Password holds the bcrypt hash and is never serialized.
type User struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Password  string    `gorm:"not null" json:"-"`
	Email     *string   `gorm:"size:255" json:"email"`
	FarmName  *string   `gorm:"size:255" json:"farmName"`
	Location  *string   `gorm:"size:255" json:"location"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
}
