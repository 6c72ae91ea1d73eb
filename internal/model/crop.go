package model

import "time"

// CropStatus is the lifecycle stage of a crop.
type CropStatus string

const (
	CropStatusPlanned   CropStatus = "planned"
	CropStatusPlanted   CropStatus = "planted"
	CropStatusGrowing   CropStatus = "growing"
	CropStatusHarvested CropStatus = "harvested"
)

// Valid reports whether s is one of the known statuses.
func (s CropStatus) Valid() bool {
	switch s {
	case CropStatusPlanned, CropStatusPlanted, CropStatusGrowing, CropStatusHarvested:
		return true
	}
	return false
}

// Crop is a planting on a farm.
type Crop struct {
	ID                  string     `gorm:"primaryKey;size:36" json:"id"`
	FarmID              string     `gorm:"index;size:36;not null" json:"farmId"`
	Name                string     `gorm:"size:255;not null" json:"name"`
	Variety             *string    `gorm:"size:255" json:"variety"`
	PlantingDate        *time.Time `json:"plantingDate"`
	ExpectedHarvestDate *time.Time `json:"expectedHarvestDate"`
	ActualHarvestDate   *time.Time `json:"actualHarvestDate"`
	Area                *float64   `json:"area"`
	Status              CropStatus `gorm:"size:16;not null;default:planned" json:"status"`
	PredictedYield      *float64   `json:"predictedYield"`
	ActualYield         *float64   `json:"actualYield"`
	CreatedAt           time.Time  `gorm:"not null" json:"createdAt"`
	UpdatedAt           time.Time  `gorm:"not null" json:"updatedAt"`
}
