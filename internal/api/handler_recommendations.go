package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"farm-records-backend/internal/mw"
	"farm-records-backend/internal/store"
)

type createRecommendationRequest struct {
	FarmID           *string         `json:"farmId" binding:"omitempty,max=36"`
	RecommendedCrops json.RawMessage `json:"recommendedCrops"`
	Factors          json.RawMessage `json:"factors"`
	ConfidenceScore  *float64        `json:"confidenceScore" binding:"omitempty,gte=0,lte=100"`
}

// ListRecommendations handles GET /api/recommendations.
func (h *Handler) ListRecommendations(c *gin.Context) {
	recs, err := h.store.ListRecommendationsByUser(c.Request.Context(), mw.UserID(c), 0)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": recs})
}

// CreateRecommendation handles POST /api/recommendations.
func (h *Handler) CreateRecommendation(c *gin.Context) {
	var req createRecommendationRequest
	issues, ok := decodeJSON(c, &req)
	if !ok {
		return
	}
	if isNullJSON(req.RecommendedCrops) {
		issues = append(issues, FieldIssue{Field: "recommendedCrops", Message: "is required"})
	}
	if len(issues) > 0 {
		validationFailed(c, issues...)
		return
	}
	if req.FarmID != nil {
		if _, ok := h.ownedFarm(c, *req.FarmID); !ok {
			return
		}
	}

	in := store.NewRecommendation{
		UserID:           mw.UserID(c),
		FarmID:           req.FarmID,
		RecommendedCrops: datatypes.JSON(req.RecommendedCrops),
		ConfidenceScore:  req.ConfidenceScore,
	}
	if !isNullJSON(req.Factors) {
		in.Factors = datatypes.JSON(req.Factors)
	}

	rec, err := h.store.CreateRecommendation(c.Request.Context(), in)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"recommendation": rec})
}

// GetRecommendation handles GET /api/recommendations/:id.
func (h *Handler) GetRecommendation(c *gin.Context) {
	rec, err := h.store.GetRecommendation(c.Request.Context(), c.Param("id"))
	if err != nil {
		internalError(c, err)
		return
	}
	if rec == nil {
		notFound(c, "recommendation")
		return
	}
	if rec.UserID != mw.UserID(c) {
		forbidden(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommendation": rec})
}

// DeleteRecommendation handles DELETE /api/recommendations/:id.
func (h *Handler) DeleteRecommendation(c *gin.Context) {
	ctx := c.Request.Context()
	rec, err := h.store.GetRecommendation(ctx, c.Param("id"))
	if err != nil {
		internalError(c, err)
		return
	}
	if rec == nil {
		notFound(c, "recommendation")
		return
	}
	if rec.UserID != mw.UserID(c) {
		forbidden(c)
		return
	}

	deleted, err := h.store.DeleteRecommendation(ctx, rec.ID)
	if err != nil {
		internalError(c, err)
		return
	}
	if !deleted {
		notFound(c, "recommendation")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "recommendation deleted"})
}
