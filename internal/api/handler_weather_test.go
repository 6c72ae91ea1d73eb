package api

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farm-records-backend/internal/model"
)

type weatherBody struct {
	Weather model.WeatherObservation `json:"weather"`
}

func addWeather(t *testing.T, c *client, farmID string, body gin.H) model.WeatherObservation {
	t.Helper()
	w := c.do(http.MethodPost, "/api/farms/"+farmID+"/weather", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[weatherBody](t, w).Weather
}

func TestWeather_ListAndLatest(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	farm := createFarm(t, alice, "North Field")

	w := alice.do(http.MethodGet, "/api/farms/"+farm.ID+"/weather/latest", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"weather data not found"}`, w.Body.String())

	addWeather(t, alice, farm.ID, gin.H{"date": "2024-06-01", "temperature": 21.5})
	newest := addWeather(t, alice, farm.ID, gin.H{
		"date":       "2024-06-03",
		"humidity":   40,
		"conditions": "sunny",
		"forecast":   gin.H{"tomorrow": "rain"},
	})
	addWeather(t, alice, farm.ID, gin.H{"date": "2024-06-02"})
	assert.JSONEq(t, `{"tomorrow":"rain"}`, string(newest.Forecast))

	list := decode[struct{ Weather []model.WeatherObservation }](t, alice.do(http.MethodGet, "/api/farms/"+farm.ID+"/weather", nil))
	require.Len(t, list.Weather, 3)
	assert.Equal(t, newest.ID, list.Weather[0].ID)
	assert.Equal(t, "2024-06-01", list.Weather[2].Date.Format("2006-01-02"))

	latest := decode[weatherBody](t, alice.do(http.MethodGet, "/api/farms/"+farm.ID+"/weather/latest", nil)).Weather
	assert.Equal(t, newest.ID, latest.ID)
}

func TestCreateWeather_Validation(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	farm := createFarm(t, alice, "North Field")

	w := alice.do(http.MethodPost, "/api/farms/"+farm.ID+"/weather", gin.H{"humidity": 140})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[errorBody](t, w)
	assert.ElementsMatch(t, []FieldIssue{
		{Field: "date", Message: "is required"},
		{Field: "humidity", Message: "must be less than or equal to 100"},
	}, body.Details)
}

func TestDeleteWeather(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	farm := createFarm(t, alice, "North Field")
	obs := addWeather(t, alice, farm.ID, gin.H{"date": "2024-06-01"})

	assert.Equal(t, http.StatusForbidden, bob.do(http.MethodDelete, "/api/weather/"+obs.ID, nil).Code)
	assert.Equal(t, http.StatusForbidden, bob.do(http.MethodGet, "/api/farms/"+farm.ID+"/weather", nil).Code)

	w := alice.do(http.MethodDelete, "/api/weather/"+obs.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"weather data deleted"}`, w.Body.String())
	assert.Equal(t, http.StatusNotFound, alice.do(http.MethodDelete, "/api/weather/"+obs.ID, nil).Code)
}
