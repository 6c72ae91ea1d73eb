package weatherfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"gorm.io/datatypes"

	"farm-records-backend/config"
	"farm-records-backend/internal/model"
	"farm-records-backend/internal/parse"
	"farm-records-backend/internal/store"
)

// Service periodically imports observations for every farm that has coordinates.
type Service struct {
	cfg    config.WeatherFeedConfig
	store  store.Store
	client *http.Client
}

// NewService creates and initializes a new weather feed service.
func NewService(cfg config.WeatherFeedConfig, s store.Store) *Service {
	var transport http.RoundTripper = &http.Transport{}
	if cfg.HTTPProxy != "" {
		proxyURL, err := url.Parse(cfg.HTTPProxy)
		if err != nil {
			log.Printf("Warning: Invalid proxy URL %q: %v. Weather feed will not use a proxy.", cfg.HTTPProxy, err)
		} else {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}

	return &Service{
		cfg:   cfg,
		store: s,
		client: &http.Client{
			Transport: transport,
			Timeout:   time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

// Run imports once immediately and then on every interval until ctx is done.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Enabled {
		log.Println("Weather feed is disabled. Not starting.")
		return
	}
	log.Println("Starting weather feed service...")

	s.SyncOnce(ctx)

	timer := time.NewTimer(s.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Weather feed service shutting down.")
			return
		case <-timer.C:
			s.SyncOnce(ctx)
			timer.Reset(s.cfg.Interval)
		}
	}
}

// SyncOnce performs a single import round and returns the number of stored observations.
func (s *Service) SyncOnce(ctx context.Context) int {
	farms, err := s.store.ListFarmsWithCoordinates(ctx)
	if err != nil {
		log.Printf("Error listing farms for weather sync: %v", err)
		return 0
	}

	stored := 0
	for _, farm := range farms {
		ok, err := s.syncFarm(ctx, farm)
		if err != nil {
			log.Printf("Error syncing weather for farm %s: %v", farm.ID, err)
			continue
		}
		if ok {
			stored++
		}
	}
	log.Printf("Weather sync finished: %d/%d farms updated", stored, len(farms))
	return stored
}

func (s *Service) syncFarm(ctx context.Context, farm model.Farm) (bool, error) {
	coords, err := parse.ParseCoordinates(*farm.Coordinates)
	if err != nil {
		return false, err
	}

	obs, err := s.fetch(ctx, coords)
	if err != nil {
		return false, err
	}

	observedAt, err := parse.ParseDate(obs.ObservedAt)
	if err != nil {
		return false, err
	}

	latest, err := s.store.GetLatestWeather(ctx, farm.ID)
	if err != nil {
		return false, err
	}
	// Observations on or before the newest stored day are already covered.
	if latest != nil && !utcDay(observedAt).After(utcDay(latest.Date)) {
		return false, nil
	}

	in := store.NewWeather{
		FarmID:        farm.ID,
		Date:          observedAt,
		Temperature:   obs.Temperature,
		Humidity:      obs.Humidity,
		Precipitation: obs.Precipitation,
		WindSpeed:     obs.WindSpeed,
		Conditions:    obs.Conditions,
	}
	if len(obs.Forecast) > 0 && string(obs.Forecast) != "null" {
		in.Forecast = datatypes.JSON(obs.Forecast)
	}
	if _, err := s.store.CreateWeather(ctx, in); err != nil {
		return false, err
	}
	return true, nil
}

func utcDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// fetch requests the current observation for a location from the upstream API.
func (s *Service) fetch(ctx context.Context, coords parse.Coordinates) (*Observation, error) {
	u, err := url.Parse(s.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid weather feed url: %w", err)
	}
	q := u.Query()
	q.Set("lat", fmt.Sprintf("%g", coords.Lat))
	q.Set("lon", fmt.Sprintf("%g", coords.Lng))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range s.cfg.Headers {
		req.Header.Set(key, value)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var apiResp ApiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal api response: %w", err)
	}
	if apiResp.Code != 0 {
		return nil, fmt.Errorf("API returned non-zero application code: %d", apiResp.Code)
	}
	return &apiResp.Data, nil
}
