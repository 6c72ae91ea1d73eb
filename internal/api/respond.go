package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"farm-records-backend/internal/model"
	"farm-records-backend/internal/mw"
)

// internalError logs err and returns a generic 500 without leaking details.
func internalError(c *gin.Context, err error) {
	log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

func notFound(c *gin.Context, what string) {
	c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": what + " not found"})
}

func forbidden(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
}

// ownedFarm loads a farm and checks it belongs to the session user. A missing
// farm is a 404, somebody else's farm is a 403.
func (h *Handler) ownedFarm(c *gin.Context, farmID string) (*model.Farm, bool) {
	farm, err := h.store.GetFarm(c.Request.Context(), farmID)
	if err != nil {
		internalError(c, err)
		return nil, false
	}
	if farm == nil {
		notFound(c, "farm")
		return nil, false
	}
	if farm.UserID != mw.UserID(c) {
		forbidden(c)
		return nil, false
	}
	return farm, true
}

// ownedCrop loads a crop and checks its parent farm belongs to the session user.
func (h *Handler) ownedCrop(c *gin.Context, cropID string) (*model.Crop, *model.Farm, bool) {
	crop, err := h.store.GetCrop(c.Request.Context(), cropID)
	if err != nil {
		internalError(c, err)
		return nil, nil, false
	}
	if crop == nil {
		notFound(c, "crop")
		return nil, nil, false
	}
	farm, ok := h.ownedFarm(c, crop.FarmID)
	if !ok {
		return nil, nil, false
	}
	return crop, farm, true
}
