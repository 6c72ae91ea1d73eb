package model

import (
	"time"

	"gorm.io/datatypes"
)

// CropRecommendation is a client-supplied recommendation record.
type CropRecommendation struct {
	ID               string         `gorm:"primaryKey;size:36" json:"id"`
	UserID           string         `gorm:"index;size:36;not null" json:"userId"`
	FarmID           *string        `gorm:"size:36" json:"farmId"`
	RecommendedCrops datatypes.JSON `gorm:"not null" json:"recommendedCrops"`
	Factors          datatypes.JSON `json:"factors"`
	ConfidenceScore  *float64       `json:"confidenceScore"`
	CreatedAt        time.Time      `gorm:"not null;index" json:"createdAt"`
}
