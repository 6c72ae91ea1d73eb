package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"farm-records-backend/internal/mw"
	"farm-records-backend/internal/parse"
	"farm-records-backend/internal/store"
)

// createFarmRequest has no userId field; the owner is always the session user.
type createFarmRequest struct {
	Name        string   `json:"name" binding:"required,max=255"`
	Location    string   `json:"location" binding:"required,max=255"`
	Size        *float64 `json:"size" binding:"omitempty,gt=0"`
	SoilType    *string  `json:"soilType" binding:"omitempty,max=64"`
	Coordinates *string  `json:"coordinates" binding:"omitempty,coordinates"`
}

type updateFarmRequest struct {
	Name        *string  `json:"name" binding:"omitempty,min=1,max=255"`
	Location    *string  `json:"location" binding:"omitempty,min=1,max=255"`
	Size        *float64 `json:"size" binding:"omitempty,gt=0"`
	SoilType    *string  `json:"soilType" binding:"omitempty,max=64"`
	Coordinates *string  `json:"coordinates" binding:"omitempty,coordinates"`
}

// ListFarms handles GET /api/farms.
func (h *Handler) ListFarms(c *gin.Context) {
	farms, err := h.store.ListFarmsByUser(c.Request.Context(), mw.UserID(c))
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"farms": farms})
}

// CreateFarm handles POST /api/farms.
func (h *Handler) CreateFarm(c *gin.Context) {
	var req createFarmRequest
	if !bindJSON(c, &req) {
		return
	}

	farm, err := h.store.CreateFarm(c.Request.Context(), store.NewFarm{
		UserID:      mw.UserID(c),
		Name:        req.Name,
		Location:    req.Location,
		Size:        req.Size,
		SoilType:    req.SoilType,
		Coordinates: normalizeCoordinates(req.Coordinates),
	})
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"farm": farm})
}

// GetFarm handles GET /api/farms/:farmId.
func (h *Handler) GetFarm(c *gin.Context) {
	farm, ok := h.ownedFarm(c, c.Param("farmId"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"farm": farm})
}

// UpdateFarm handles PUT /api/farms/:farmId.
func (h *Handler) UpdateFarm(c *gin.Context) {
	farm, ok := h.ownedFarm(c, c.Param("farmId"))
	if !ok {
		return
	}

	var req updateFarmRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.store.UpdateFarm(c.Request.Context(), farm.ID, store.FarmUpdate{
		Name:        req.Name,
		Location:    req.Location,
		Size:        req.Size,
		SoilType:    req.SoilType,
		Coordinates: normalizeCoordinates(req.Coordinates),
	})
	if err != nil {
		internalError(c, err)
		return
	}
	if updated == nil {
		notFound(c, "farm")
		return
	}
	c.JSON(http.StatusOK, gin.H{"farm": updated})
}

// DeleteFarm handles DELETE /api/farms/:farmId. Crops and weather rows of the
// farm are left in place.
func (h *Handler) DeleteFarm(c *gin.Context) {
	farm, ok := h.ownedFarm(c, c.Param("farmId"))
	if !ok {
		return
	}

	deleted, err := h.store.DeleteFarm(c.Request.Context(), farm.ID)
	if err != nil {
		internalError(c, err)
		return
	}
	if !deleted {
		notFound(c, "farm")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "farm deleted"})
}

// normalizeCoordinates rewrites validated coordinates into the stored "lat,lng" form.
func normalizeCoordinates(raw *string) *string {
	if raw == nil {
		return nil
	}
	coords, err := parse.ParseCoordinates(*raw)
	if err != nil {
		return raw
	}
	s := coords.String()
	return &s
}
