package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"farm-records-backend/internal/model"
)

// memStore is an in-memory Store used by tests and local development.
type memStore struct {
	mu    sync.RWMutex
	users map[string]model.User
	farms map[string]model.Farm
	crops map[string]model.Crop
	wx    map[string]model.WeatherObservation
	recs  map[string]model.CropRecommendation
	subs  map[string]model.PushSubscription

	// seq keeps insertion order stable when timestamps collide.
	seq   int64
	order map[string]int64
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() Store {
	return &memStore{
		users: make(map[string]model.User),
		farms: make(map[string]model.Farm),
		crops: make(map[string]model.Crop),
		wx:    make(map[string]model.WeatherObservation),
		recs:  make(map[string]model.CropRecommendation),
		subs:  make(map[string]model.PushSubscription),
		order: make(map[string]int64),
	}
}

func (m *memStore) Ping(ctx context.Context) error { return nil }

func (m *memStore) track(id string) {
	m.seq++
	m.order[id] = m.seq
}

// --- Users ---

func (m *memStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (m *memStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, nil
}

func (m *memStore) CreateUser(ctx context.Context, in NewUser) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == in.Username {
			return nil, ErrDuplicateUsername
		}
	}
	u := model.User{
		ID:        uuid.NewString(),
		Username:  in.Username,
		Password:  in.PasswordHash,
		Email:     in.Email,
		FarmName:  in.FarmName,
		Location:  in.Location,
		CreatedAt: time.Now().UTC(),
	}
	m.users[u.ID] = u
	m.track(u.ID)
	return &u, nil
}

// --- Farms ---

func (m *memStore) GetFarm(ctx context.Context, id string) (*model.Farm, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if f, ok := m.farms[id]; ok {
		return &f, nil
	}
	return nil, nil
}

func (m *memStore) ListFarmsByUser(ctx context.Context, userID string) ([]model.Farm, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	farms := []model.Farm{}
	for _, f := range m.farms {
		if f.UserID == userID {
			farms = append(farms, f)
		}
	}
	sort.Slice(farms, func(i, j int) bool { return m.order[farms[i].ID] < m.order[farms[j].ID] })
	return farms, nil
}

func (m *memStore) ListFarmsWithCoordinates(ctx context.Context) ([]model.Farm, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	farms := []model.Farm{}
	for _, f := range m.farms {
		if f.Coordinates != nil && *f.Coordinates != "" {
			farms = append(farms, f)
		}
	}
	sort.Slice(farms, func(i, j int) bool { return m.order[farms[i].ID] < m.order[farms[j].ID] })
	return farms, nil
}

func (m *memStore) CreateFarm(ctx context.Context, in NewFarm) (*model.Farm, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	f := model.Farm{
		ID:          uuid.NewString(),
		UserID:      in.UserID,
		Name:        in.Name,
		Location:    in.Location,
		Size:        in.Size,
		SoilType:    in.SoilType,
		Coordinates: in.Coordinates,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.farms[f.ID] = f
	m.track(f.ID)
	return &f, nil
}

func (m *memStore) UpdateFarm(ctx context.Context, id string, in FarmUpdate) (*model.Farm, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.farms[id]
	if !ok {
		return nil, nil
	}
	in.apply(&f)
	f.UpdatedAt = time.Now().UTC()
	m.farms[id] = f
	return &f, nil
}

func (m *memStore) DeleteFarm(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.farms[id]; !ok {
		return false, nil
	}
	delete(m.farms, id)
	return true, nil
}

// --- Crops ---

func (m *memStore) GetCrop(ctx context.Context, id string) (*model.Crop, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.crops[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (m *memStore) ListCropsByFarm(ctx context.Context, farmID string) ([]model.Crop, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	crops := []model.Crop{}
	for _, c := range m.crops {
		if c.FarmID == farmID {
			crops = append(crops, c)
		}
	}
	sort.Slice(crops, func(i, j int) bool { return m.order[crops[i].ID] < m.order[crops[j].ID] })
	return crops, nil
}

func (m *memStore) CreateCrop(ctx context.Context, in NewCrop) (*model.Crop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := buildCrop(in, time.Now().UTC())
	m.crops[c.ID] = c
	m.track(c.ID)
	return &c, nil
}

func (m *memStore) UpdateCrop(ctx context.Context, id string, in CropUpdate) (*model.Crop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.crops[id]
	if !ok {
		return nil, nil
	}
	in.apply(&c)
	c.UpdatedAt = time.Now().UTC()
	m.crops[id] = c
	return &c, nil
}

func (m *memStore) DeleteCrop(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.crops[id]; !ok {
		return false, nil
	}
	delete(m.crops, id)
	return true, nil
}

// --- Weather ---

func (m *memStore) GetWeather(ctx context.Context, id string) (*model.WeatherObservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if w, ok := m.wx[id]; ok {
		return &w, nil
	}
	return nil, nil
}

func (m *memStore) ListWeatherByFarm(ctx context.Context, farmID string) ([]model.WeatherObservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows := []model.WeatherObservation{}
	for _, w := range m.wx {
		if w.FarmID == farmID {
			rows = append(rows, w)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date.After(rows[j].Date) })
	return rows, nil
}

func (m *memStore) GetLatestWeather(ctx context.Context, farmID string) (*model.WeatherObservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *model.WeatherObservation
	for _, w := range m.wx {
		if w.FarmID != farmID {
			continue
		}
		if latest == nil || w.Date.After(latest.Date) {
			w := w
			latest = &w
		}
	}
	return latest, nil
}

func (m *memStore) CreateWeather(ctx context.Context, in NewWeather) (*model.WeatherObservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w := buildWeather(in, time.Now().UTC())
	m.wx[w.ID] = w
	m.track(w.ID)
	return &w, nil
}

func (m *memStore) DeleteWeather(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.wx[id]; !ok {
		return false, nil
	}
	delete(m.wx, id)
	return true, nil
}

// --- Recommendations ---

func (m *memStore) GetRecommendation(ctx context.Context, id string) (*model.CropRecommendation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.recs[id]; ok {
		return &r, nil
	}
	return nil, nil
}

func (m *memStore) ListRecommendationsByUser(ctx context.Context, userID string, limit int) ([]model.CropRecommendation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	recs := []model.CropRecommendation{}
	for _, r := range m.recs {
		if r.UserID == userID {
			recs = append(recs, r)
		}
	}
	// newest first
	sort.Slice(recs, func(i, j int) bool { return m.order[recs[i].ID] > m.order[recs[j].ID] })
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

func (m *memStore) CreateRecommendation(ctx context.Context, in NewRecommendation) (*model.CropRecommendation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := model.CropRecommendation{
		ID:               uuid.NewString(),
		UserID:           in.UserID,
		FarmID:           in.FarmID,
		RecommendedCrops: in.RecommendedCrops,
		Factors:          in.Factors,
		ConfidenceScore:  in.ConfidenceScore,
		CreatedAt:        time.Now().UTC(),
	}
	m.recs[r.ID] = r
	m.track(r.ID)
	return &r, nil
}

func (m *memStore) DeleteRecommendation(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.recs[id]; !ok {
		return false, nil
	}
	delete(m.recs, id)
	return true, nil
}

// --- Push subscriptions ---

func (m *memStore) SavePushSubscription(ctx context.Context, sub model.PushSubscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.subs[sub.Endpoint]; ok {
		sub.CreatedAt = existing.CreatedAt
	} else if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}
	m.subs[sub.Endpoint] = sub
	return nil
}

func (m *memStore) ListPushSubscriptionsByUser(ctx context.Context, userID string) ([]model.PushSubscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	subs := []model.PushSubscription{}
	for _, s := range m.subs {
		if s.UserID == userID {
			subs = append(subs, s)
		}
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].Endpoint < subs[j].Endpoint })
	return subs, nil
}

func (m *memStore) DeletePushSubscription(ctx context.Context, userID, endpoint string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subs[endpoint]
	if !ok || s.UserID != userID {
		return false, nil
	}
	delete(m.subs, endpoint)
	return true, nil
}
