package model

import (
	"time"

	"gorm.io/datatypes"
)

// WeatherObservation is a dated weather record for a farm. Forecast is opaque JSON.
type WeatherObservation struct {
	ID            string         `gorm:"primaryKey;size:36" json:"id"`
	FarmID        string         `gorm:"size:36;not null;index:idx_weather_farm_date,priority:1" json:"farmId"`
	Date          time.Time      `gorm:"not null;index:idx_weather_farm_date,priority:2,sort:desc" json:"date"`
	Temperature   *float64       `json:"temperature"`
	Humidity      *float64       `json:"humidity"`
	Precipitation *float64       `json:"precipitation"`
	WindSpeed     *float64       `json:"windSpeed"`
	Conditions    *string        `gorm:"size:255" json:"conditions"`
	Forecast      datatypes.JSON `json:"forecast"`
	CreatedAt     time.Time      `gorm:"not null" json:"createdAt"`
}
