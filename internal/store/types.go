package store

import (
	"time"

	"gorm.io/datatypes"

	"farm-records-backend/internal/model"
)

// NewUser is the input for CreateUser. PasswordHash must already be hashed.
type NewUser struct {
	Username     string
	PasswordHash string
	Email        *string
	FarmName     *string
	Location     *string
}

// NewFarm is the input for CreateFarm.
type NewFarm struct {
	UserID      string
	Name        string
	Location    string
	Size        *float64
	SoilType    *string
	Coordinates *string
}

// FarmUpdate carries the fields of a partial farm update; nil fields are left alone.
type FarmUpdate struct {
	Name        *string
	Location    *string
	Size        *float64
	SoilType    *string
	Coordinates *string
}

func (u FarmUpdate) columns() map[string]any {
	cols := make(map[string]any)
	if u.Name != nil {
		cols["name"] = *u.Name
	}
	if u.Location != nil {
		cols["location"] = *u.Location
	}
	if u.Size != nil {
		cols["size"] = *u.Size
	}
	if u.SoilType != nil {
		cols["soil_type"] = *u.SoilType
	}
	if u.Coordinates != nil {
		cols["coordinates"] = *u.Coordinates
	}
	return cols
}

func (u FarmUpdate) apply(f *model.Farm) {
	if u.Name != nil {
		f.Name = *u.Name
	}
	if u.Location != nil {
		f.Location = *u.Location
	}
	if u.Size != nil {
		f.Size = u.Size
	}
	if u.SoilType != nil {
		f.SoilType = u.SoilType
	}
	if u.Coordinates != nil {
		f.Coordinates = u.Coordinates
	}
}

// NewCrop is the input for CreateCrop. An empty Status means planned.
type NewCrop struct {
	FarmID              string
	Name                string
	Variety             *string
	PlantingDate        *time.Time
	ExpectedHarvestDate *time.Time
	ActualHarvestDate   *time.Time
	Area                *float64
	Status              model.CropStatus
	PredictedYield      *float64
	ActualYield         *float64
}

// CropUpdate carries the fields of a partial crop update; nil fields are left alone.
type CropUpdate struct {
	Name                *string
	Variety             *string
	PlantingDate        *time.Time
	ExpectedHarvestDate *time.Time
	ActualHarvestDate   *time.Time
	Area                *float64
	Status              *model.CropStatus
	PredictedYield      *float64
	ActualYield         *float64
}

func (u CropUpdate) columns() map[string]any {
	cols := make(map[string]any)
	if u.Name != nil {
		cols["name"] = *u.Name
	}
	if u.Variety != nil {
		cols["variety"] = *u.Variety
	}
	if u.PlantingDate != nil {
		cols["planting_date"] = *u.PlantingDate
	}
	if u.ExpectedHarvestDate != nil {
		cols["expected_harvest_date"] = *u.ExpectedHarvestDate
	}
	if u.ActualHarvestDate != nil {
		cols["actual_harvest_date"] = *u.ActualHarvestDate
	}
	if u.Area != nil {
		cols["area"] = *u.Area
	}
	if u.Status != nil {
		cols["status"] = *u.Status
	}
	if u.PredictedYield != nil {
		cols["predicted_yield"] = *u.PredictedYield
	}
	if u.ActualYield != nil {
		cols["actual_yield"] = *u.ActualYield
	}
	return cols
}

func (u CropUpdate) apply(c *model.Crop) {
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.Variety != nil {
		c.Variety = u.Variety
	}
	if u.PlantingDate != nil {
		c.PlantingDate = u.PlantingDate
	}
	if u.ExpectedHarvestDate != nil {
		c.ExpectedHarvestDate = u.ExpectedHarvestDate
	}
	if u.ActualHarvestDate != nil {
		c.ActualHarvestDate = u.ActualHarvestDate
	}
	if u.Area != nil {
		c.Area = u.Area
	}
	if u.Status != nil {
		c.Status = *u.Status
	}
	if u.PredictedYield != nil {
		c.PredictedYield = u.PredictedYield
	}
	if u.ActualYield != nil {
		c.ActualYield = u.ActualYield
	}
}

// NewWeather is the input for CreateWeather.
type NewWeather struct {
	FarmID        string
	Date          time.Time
	Temperature   *float64
	Humidity      *float64
	Precipitation *float64
	WindSpeed     *float64
	Conditions    *string
	Forecast      datatypes.JSON
}

// NewRecommendation is the input for CreateRecommendation.
type NewRecommendation struct {
	UserID           string
	FarmID           *string
	RecommendedCrops datatypes.JSON
	Factors          datatypes.JSON
	ConfidenceScore  *float64
}
