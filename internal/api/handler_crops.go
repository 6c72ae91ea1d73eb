package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"farm-records-backend/internal/model"
	"farm-records-backend/internal/notification"
	"farm-records-backend/internal/parse"
	"farm-records-backend/internal/store"
)

type createCropRequest struct {
	Name                string            `json:"name" binding:"required,max=255"`
	Variety             *string           `json:"variety" binding:"omitempty,max=255"`
	PlantingDate        *string           `json:"plantingDate" binding:"omitempty,isodate"`
	ExpectedHarvestDate *string           `json:"expectedHarvestDate" binding:"omitempty,isodate"`
	ActualHarvestDate   *string           `json:"actualHarvestDate" binding:"omitempty,isodate"`
	Area                *float64          `json:"area" binding:"omitempty,gt=0"`
	Status              *model.CropStatus `json:"status" binding:"omitempty,oneof=planned planted growing harvested"`
	PredictedYield      *float64          `json:"predictedYield" binding:"omitempty,gte=0"`
	ActualYield         *float64          `json:"actualYield" binding:"omitempty,gte=0"`
}

type updateCropRequest struct {
	Name                *string           `json:"name" binding:"omitempty,min=1,max=255"`
	Variety             *string           `json:"variety" binding:"omitempty,max=255"`
	PlantingDate        *string           `json:"plantingDate" binding:"omitempty,isodate"`
	ExpectedHarvestDate *string           `json:"expectedHarvestDate" binding:"omitempty,isodate"`
	ActualHarvestDate   *string           `json:"actualHarvestDate" binding:"omitempty,isodate"`
	Area                *float64          `json:"area" binding:"omitempty,gt=0"`
	Status              *model.CropStatus `json:"status" binding:"omitempty,oneof=planned planted growing harvested"`
	PredictedYield      *float64          `json:"predictedYield" binding:"omitempty,gte=0"`
	ActualYield         *float64          `json:"actualYield" binding:"omitempty,gte=0"`
}

// optionalDate converts an already validated date string.
func optionalDate(raw *string) *time.Time {
	if raw == nil {
		return nil
	}
	t, err := parse.ParseDate(*raw)
	if err != nil {
		return nil
	}
	return &t
}

// ListCrops handles GET /api/farms/:farmId/crops.
func (h *Handler) ListCrops(c *gin.Context) {
	farm, ok := h.ownedFarm(c, c.Param("farmId"))
	if !ok {
		return
	}
	crops, err := h.store.ListCropsByFarm(c.Request.Context(), farm.ID)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"crops": crops})
}

// CreateCrop handles POST /api/farms/:farmId/crops.
func (h *Handler) CreateCrop(c *gin.Context) {
	farm, ok := h.ownedFarm(c, c.Param("farmId"))
	if !ok {
		return
	}

	var req createCropRequest
	if !bindJSON(c, &req) {
		return
	}

	in := store.NewCrop{
		FarmID:              farm.ID,
		Name:                req.Name,
		Variety:             req.Variety,
		PlantingDate:        optionalDate(req.PlantingDate),
		ExpectedHarvestDate: optionalDate(req.ExpectedHarvestDate),
		ActualHarvestDate:   optionalDate(req.ActualHarvestDate),
		Area:                req.Area,
		PredictedYield:      req.PredictedYield,
		ActualYield:         req.ActualYield,
	}
	if req.Status != nil {
		in.Status = *req.Status
	}

	crop, err := h.store.CreateCrop(c.Request.Context(), in)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"crop": crop})
}

// GetCrop handles GET /api/crops/:id.
func (h *Handler) GetCrop(c *gin.Context) {
	crop, _, ok := h.ownedCrop(c, c.Param("id"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"crop": crop})
}

// UpdateCrop handles PUT /api/crops/:id. A status change is forwarded to the
// notifier when one is configured.
func (h *Handler) UpdateCrop(c *gin.Context) {
	crop, farm, ok := h.ownedCrop(c, c.Param("id"))
	if !ok {
		return
	}

	var req updateCropRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.store.UpdateCrop(c.Request.Context(), crop.ID, store.CropUpdate{
		Name:                req.Name,
		Variety:             req.Variety,
		PlantingDate:        optionalDate(req.PlantingDate),
		ExpectedHarvestDate: optionalDate(req.ExpectedHarvestDate),
		ActualHarvestDate:   optionalDate(req.ActualHarvestDate),
		Area:                req.Area,
		Status:              req.Status,
		PredictedYield:      req.PredictedYield,
		ActualYield:         req.ActualYield,
	})
	if err != nil {
		internalError(c, err)
		return
	}
	if updated == nil {
		notFound(c, "crop")
		return
	}

	if h.notifier != nil && updated.Status != crop.Status {
		event := notification.CropStatusChange{
			UserID:   farm.UserID,
			FarmName: farm.Name,
			CropName: updated.Name,
			From:     crop.Status,
			To:       updated.Status,
		}
		if !h.notifier.Dispatch(event) {
			log.Printf("status change for crop %s was not queued", updated.ID)
		}
	}

	c.JSON(http.StatusOK, gin.H{"crop": updated})
}

// DeleteCrop handles DELETE /api/crops/:id.
func (h *Handler) DeleteCrop(c *gin.Context) {
	crop, _, ok := h.ownedCrop(c, c.Param("id"))
	if !ok {
		return
	}

	deleted, err := h.store.DeleteCrop(c.Request.Context(), crop.ID)
	if err != nil {
		internalError(c, err)
		return
	}
	if !deleted {
		notFound(c, "crop")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "crop deleted"})
}
