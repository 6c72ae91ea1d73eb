package model

import "time"

// Farm belongs to a single user. Coordinates are stored as "lat,lng".
type Farm struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	UserID      string    `gorm:"index;size:36;not null" json:"userId"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Location    string    `gorm:"size:255;not null" json:"location"`
	Size        *float64  `json:"size"`
	SoilType    *string   `gorm:"size:64" json:"soilType"`
	Coordinates *string   `gorm:"size:64" json:"coordinates"`
	CreatedAt   time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"not null" json:"updatedAt"`
}
