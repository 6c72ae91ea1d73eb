package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"farm-records-backend/internal/parse"
	"farm-records-backend/internal/store"
)

type createWeatherRequest struct {
	Date          string          `json:"date" binding:"required,isodate"`
	Temperature   *float64        `json:"temperature"`
	Humidity      *float64        `json:"humidity" binding:"omitempty,gte=0,lte=100"`
	Precipitation *float64        `json:"precipitation" binding:"omitempty,gte=0"`
	WindSpeed     *float64        `json:"windSpeed" binding:"omitempty,gte=0"`
	Conditions    *string         `json:"conditions" binding:"omitempty,max=255"`
	Forecast      json.RawMessage `json:"forecast"`
}

// ListWeather handles GET /api/farms/:farmId/weather.
func (h *Handler) ListWeather(c *gin.Context) {
	farm, ok := h.ownedFarm(c, c.Param("farmId"))
	if !ok {
		return
	}
	rows, err := h.store.ListWeatherByFarm(c.Request.Context(), farm.ID)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"weather": rows})
}

// LatestWeather handles GET /api/farms/:farmId/weather/latest.
func (h *Handler) LatestWeather(c *gin.Context) {
	farm, ok := h.ownedFarm(c, c.Param("farmId"))
	if !ok {
		return
	}
	latest, err := h.store.GetLatestWeather(c.Request.Context(), farm.ID)
	if err != nil {
		internalError(c, err)
		return
	}
	if latest == nil {
		notFound(c, "weather data")
		return
	}
	c.JSON(http.StatusOK, gin.H{"weather": latest})
}

// CreateWeather handles POST /api/farms/:farmId/weather.
func (h *Handler) CreateWeather(c *gin.Context) {
	farm, ok := h.ownedFarm(c, c.Param("farmId"))
	if !ok {
		return
	}

	var req createWeatherRequest
	if !bindJSON(c, &req) {
		return
	}
	date, err := parse.ParseDate(req.Date)
	if err != nil {
		validationFailed(c, FieldIssue{Field: "date", Message: err.Error()})
		return
	}

	in := store.NewWeather{
		FarmID:        farm.ID,
		Date:          date,
		Temperature:   req.Temperature,
		Humidity:      req.Humidity,
		Precipitation: req.Precipitation,
		WindSpeed:     req.WindSpeed,
		Conditions:    req.Conditions,
	}
	if !isNullJSON(req.Forecast) {
		in.Forecast = datatypes.JSON(req.Forecast)
	}

	w, err := h.store.CreateWeather(c.Request.Context(), in)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"weather": w})
}

// DeleteWeather handles DELETE /api/weather/:id.
func (h *Handler) DeleteWeather(c *gin.Context) {
	ctx := c.Request.Context()
	w, err := h.store.GetWeather(ctx, c.Param("id"))
	if err != nil {
		internalError(c, err)
		return
	}
	if w == nil {
		notFound(c, "weather data")
		return
	}
	if _, ok := h.ownedFarm(c, w.FarmID); !ok {
		return
	}

	deleted, err := h.store.DeleteWeather(ctx, w.ID)
	if err != nil {
		internalError(c, err)
		return
	}
	if !deleted {
		notFound(c, "weather data")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "weather data deleted"})
}
