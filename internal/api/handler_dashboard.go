package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"farm-records-backend/internal/model"
	"farm-records-backend/internal/mw"
)

const dashboardRecommendations = 5

// dashboardFarm is a farm with its crops and most recent weather observation.
type dashboardFarm struct {
	model.Farm
	Crops         []model.Crop              `json:"crops"`
	LatestWeather *model.WeatherObservation `json:"latestWeather"`
}

type dashboardSummary struct {
	TotalFarms  int `json:"totalFarms"`
	TotalCrops  int `json:"totalCrops"`
	ActiveCrops int `json:"activeCrops"`
}

// Dashboard handles GET /api/dashboard. The per-farm reads run concurrently
// and are not taken from a single snapshot.
func (h *Handler) Dashboard(c *gin.Context) {
	userID := mw.UserID(c)

	farms, err := h.store.ListFarmsByUser(c.Request.Context(), userID)
	if err != nil {
		internalError(c, err)
		return
	}

	g, ctx := errgroup.WithContext(c.Request.Context())
	out := make([]dashboardFarm, len(farms))
	for i, farm := range farms {
		i, farm := i, farm
		out[i].Farm = farm
		g.Go(func() error {
			crops, err := h.store.ListCropsByFarm(ctx, farm.ID)
			out[i].Crops = crops
			return err
		})
		g.Go(func() error {
			latest, err := h.store.GetLatestWeather(ctx, farm.ID)
			out[i].LatestWeather = latest
			return err
		})
	}

	var recent []model.CropRecommendation
	g.Go(func() error {
		var err error
		recent, err = h.store.ListRecommendationsByUser(ctx, userID, dashboardRecommendations)
		return err
	})

	if err := g.Wait(); err != nil {
		internalError(c, err)
		return
	}

	summary := dashboardSummary{TotalFarms: len(out)}
	for _, f := range out {
		summary.TotalCrops += len(f.Crops)
		for _, crop := range f.Crops {
			if crop.Status == model.CropStatusGrowing {
				summary.ActiveCrops++
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"farms":                 out,
		"recentRecommendations": recent,
		"summary":               summary,
	})
}
