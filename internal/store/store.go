package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"farm-records-backend/internal/model"
)

// ErrDuplicateUsername is returned by CreateUser when the username is taken.
var ErrDuplicateUsername = errors.New("username already exists")

// Store defines the interface for all persistence operations.
//
// Lookups return a nil record and a nil error when nothing matches. List
// operations return an empty slice. Updates return a nil record when the id
// does not exist, and deletes report whether a row was removed.
type Store interface {
	Ping(ctx context.Context) error

	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	CreateUser(ctx context.Context, in NewUser) (*model.User, error)

	GetFarm(ctx context.Context, id string) (*model.Farm, error)
	ListFarmsByUser(ctx context.Context, userID string) ([]model.Farm, error)
	ListFarmsWithCoordinates(ctx context.Context) ([]model.Farm, error)
	CreateFarm(ctx context.Context, in NewFarm) (*model.Farm, error)
	UpdateFarm(ctx context.Context, id string, in FarmUpdate) (*model.Farm, error)
	DeleteFarm(ctx context.Context, id string) (bool, error)

	GetCrop(ctx context.Context, id string) (*model.Crop, error)
	ListCropsByFarm(ctx context.Context, farmID string) ([]model.Crop, error)
	CreateCrop(ctx context.Context, in NewCrop) (*model.Crop, error)
	UpdateCrop(ctx context.Context, id string, in CropUpdate) (*model.Crop, error)
	DeleteCrop(ctx context.Context, id string) (bool, error)

	GetWeather(ctx context.Context, id string) (*model.WeatherObservation, error)
	ListWeatherByFarm(ctx context.Context, farmID string) ([]model.WeatherObservation, error)
	GetLatestWeather(ctx context.Context, farmID string) (*model.WeatherObservation, error)
	CreateWeather(ctx context.Context, in NewWeather) (*model.WeatherObservation, error)
	DeleteWeather(ctx context.Context, id string) (bool, error)

	GetRecommendation(ctx context.Context, id string) (*model.CropRecommendation, error)
	ListRecommendationsByUser(ctx context.Context, userID string, limit int) ([]model.CropRecommendation, error)
	CreateRecommendation(ctx context.Context, in NewRecommendation) (*model.CropRecommendation, error)
	DeleteRecommendation(ctx context.Context, id string) (bool, error)

	SavePushSubscription(ctx context.Context, sub model.PushSubscription) error
	ListPushSubscriptionsByUser(ctx context.Context, userID string) ([]model.PushSubscription, error)
	DeletePushSubscription(ctx context.Context, userID, endpoint string) (bool, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// first loads a single row into dest and maps "no rows" to found == false.
func (s *gormStore) first(ctx context.Context, dest any, query string, args ...any) (bool, error) {
	err := s.db.WithContext(ctx).Where(query, args...).Take(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *gormStore) delete(ctx context.Context, value any, id string) (bool, error) {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(value)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// --- Users ---

func (s *gormStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	found, err := s.first(ctx, &u, "id = ?", id)
	if err != nil || !found {
		return nil, wrap(err, "get user %s", id)
	}
	return &u, nil
}

func (s *gormStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	found, err := s.first(ctx, &u, "username = ?", username)
	if err != nil || !found {
		return nil, wrap(err, "get user by username")
	}
	return &u, nil
}

func (s *gormStore) CreateUser(ctx context.Context, in NewUser) (*model.User, error) {
	u := model.User{
		ID:        uuid.NewString(),
		Username:  in.Username,
		Password:  in.PasswordHash,
		Email:     in.Email,
		FarmName:  in.FarmName,
		Location:  in.Location,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &u, nil
}

// --- Farms ---

func (s *gormStore) GetFarm(ctx context.Context, id string) (*model.Farm, error) {
	var f model.Farm
	found, err := s.first(ctx, &f, "id = ?", id)
	if err != nil || !found {
		return nil, wrap(err, "get farm %s", id)
	}
	return &f, nil
}

func (s *gormStore) ListFarmsByUser(ctx context.Context, userID string) ([]model.Farm, error) {
	farms := []model.Farm{}
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at").Find(&farms).Error; err != nil {
		return nil, fmt.Errorf("failed to list farms for user %s: %w", userID, err)
	}
	return farms, nil
}

func (s *gormStore) ListFarmsWithCoordinates(ctx context.Context) ([]model.Farm, error) {
	farms := []model.Farm{}
	if err := s.db.WithContext(ctx).Where("coordinates IS NOT NULL AND coordinates <> ''").Find(&farms).Error; err != nil {
		return nil, fmt.Errorf("failed to list farms with coordinates: %w", err)
	}
	return farms, nil
}

func (s *gormStore) CreateFarm(ctx context.Context, in NewFarm) (*model.Farm, error) {
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
	if err := s.db.WithContext(ctx).Create(&f).Error; err != nil {
		return nil, fmt.Errorf("failed to create farm: %w", err)
	}
	return &f, nil
}

func (s *gormStore) UpdateFarm(ctx context.Context, id string, in FarmUpdate) (*model.Farm, error) {
	cols := in.columns()
	cols["updated_at"] = time.Now().UTC()
	if err := s.db.WithContext(ctx).Model(&model.Farm{}).Where("id = ?", id).Updates(cols).Error; err != nil {
		return nil, fmt.Errorf("failed to update farm %s: %w", id, err)
	}
	return s.GetFarm(ctx, id)
}

func (s *gormStore) DeleteFarm(ctx context.Context, id string) (bool, error) {
	ok, err := s.delete(ctx, &model.Farm{}, id)
	return ok, wrap(err, "delete farm %s", id)
}

// --- Crops ---

func (s *gormStore) GetCrop(ctx context.Context, id string) (*model.Crop, error) {
	var c model.Crop
	found, err := s.first(ctx, &c, "id = ?", id)
	if err != nil || !found {
		return nil, wrap(err, "get crop %s", id)
	}
	return &c, nil
}

func (s *gormStore) ListCropsByFarm(ctx context.Context, farmID string) ([]model.Crop, error) {
	crops := []model.Crop{}
	if err := s.db.WithContext(ctx).Where("farm_id = ?", farmID).Order("created_at").Find(&crops).Error; err != nil {
		return nil, fmt.Errorf("failed to list crops for farm %s: %w", farmID, err)
	}
	return crops, nil
}

func (s *gormStore) CreateCrop(ctx context.Context, in NewCrop) (*model.Crop, error) {
	c := buildCrop(in, time.Now().UTC())
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, fmt.Errorf("failed to create crop: %w", err)
	}
	return &c, nil
}

func (s *gormStore) UpdateCrop(ctx context.Context, id string, in CropUpdate) (*model.Crop, error) {
	cols := in.columns()
	cols["updated_at"] = time.Now().UTC()
	if err := s.db.WithContext(ctx).Model(&model.Crop{}).Where("id = ?", id).Updates(cols).Error; err != nil {
		return nil, fmt.Errorf("failed to update crop %s: %w", id, err)
	}
	return s.GetCrop(ctx, id)
}

func (s *gormStore) DeleteCrop(ctx context.Context, id string) (bool, error) {
	ok, err := s.delete(ctx, &model.Crop{}, id)
	return ok, wrap(err, "delete crop %s", id)
}

// --- Weather ---

func (s *gormStore) GetWeather(ctx context.Context, id string) (*model.WeatherObservation, error) {
	var w model.WeatherObservation
	found, err := s.first(ctx, &w, "id = ?", id)
	if err != nil || !found {
		return nil, wrap(err, "get weather %s", id)
	}
	return &w, nil
}

func (s *gormStore) ListWeatherByFarm(ctx context.Context, farmID string) ([]model.WeatherObservation, error) {
	rows := []model.WeatherObservation{}
	if err := s.db.WithContext(ctx).Where("farm_id = ?", farmID).Order("date DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list weather for farm %s: %w", farmID, err)
	}
	return rows, nil
}

func (s *gormStore) GetLatestWeather(ctx context.Context, farmID string) (*model.WeatherObservation, error) {
	var w model.WeatherObservation
	err := s.db.WithContext(ctx).Where("farm_id = ?", farmID).Order("date DESC").Take(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest weather for farm %s: %w", farmID, err)
	}
	return &w, nil
}

func (s *gormStore) CreateWeather(ctx context.Context, in NewWeather) (*model.WeatherObservation, error) {
	w := buildWeather(in, time.Now().UTC())
	if err := s.db.WithContext(ctx).Create(&w).Error; err != nil {
		return nil, fmt.Errorf("failed to create weather observation: %w", err)
	}
	return &w, nil
}

func (s *gormStore) DeleteWeather(ctx context.Context, id string) (bool, error) {
	ok, err := s.delete(ctx, &model.WeatherObservation{}, id)
	return ok, wrap(err, "delete weather %s", id)
}

// --- Recommendations ---

func (s *gormStore) GetRecommendation(ctx context.Context, id string) (*model.CropRecommendation, error) {
	var r model.CropRecommendation
	found, err := s.first(ctx, &r, "id = ?", id)
	if err != nil || !found {
		return nil, wrap(err, "get recommendation %s", id)
	}
	return &r, nil
}

func (s *gormStore) ListRecommendationsByUser(ctx context.Context, userID string, limit int) ([]model.CropRecommendation, error) {
	recs := []model.CropRecommendation{}
	q := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list recommendations for user %s: %w", userID, err)
	}
	return recs, nil
}

func (s *gormStore) CreateRecommendation(ctx context.Context, in NewRecommendation) (*model.CropRecommendation, error) {
	r := model.CropRecommendation{
		ID:               uuid.NewString(),
		UserID:           in.UserID,
		FarmID:           in.FarmID,
		RecommendedCrops: in.RecommendedCrops,
		Factors:          in.Factors,
		ConfidenceScore:  in.ConfidenceScore,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&r).Error; err != nil {
		return nil, fmt.Errorf("failed to create recommendation: %w", err)
	}
	return &r, nil
}

func (s *gormStore) DeleteRecommendation(ctx context.Context, id string) (bool, error) {
	ok, err := s.delete(ctx, &model.CropRecommendation{}, id)
	return ok, wrap(err, "delete recommendation %s", id)
}

// --- Push subscriptions ---

func (s *gormStore) SavePushSubscription(ctx context.Context, sub model.PushSubscription) error {
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "p256dh", "auth"}),
	}).Create(&sub).Error
	if err != nil {
		return fmt.Errorf("failed to save push subscription: %w", err)
	}
	return nil
}

func (s *gormStore) ListPushSubscriptionsByUser(ctx context.Context, userID string) ([]model.PushSubscription, error) {
	subs := []model.PushSubscription{}
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to list push subscriptions for user %s: %w", userID, err)
	}
	return subs, nil
}

func (s *gormStore) DeletePushSubscription(ctx context.Context, userID, endpoint string) (bool, error) {
	res := s.db.WithContext(ctx).Where("endpoint = ? AND user_id = ?", endpoint, userID).Delete(&model.PushSubscription{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete push subscription: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// isUniqueViolation reports a unique index rejection. Postgres errors arrive
// translated by gorm; the sqlite driver hands back the raw sqlite3 error.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// --- helpers shared with the in-memory store ---

func buildCrop(in NewCrop, now time.Time) model.Crop {
	status := in.Status
	if status == "" {
		status = model.CropStatusPlanned
	}
	return model.Crop{
		ID:                  uuid.NewString(),
		FarmID:              in.FarmID,
		Name:                in.Name,
		Variety:             in.Variety,
		PlantingDate:        in.PlantingDate,
		ExpectedHarvestDate: in.ExpectedHarvestDate,
		ActualHarvestDate:   in.ActualHarvestDate,
		Area:                in.Area,
		Status:              status,
		PredictedYield:      in.PredictedYield,
		ActualYield:         in.ActualYield,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

func buildWeather(in NewWeather, now time.Time) model.WeatherObservation {
	return model.WeatherObservation{
		ID:            uuid.NewString(),
		FarmID:        in.FarmID,
		Date:          in.Date,
		Temperature:   in.Temperature,
		Humidity:      in.Humidity,
		Precipitation: in.Precipitation,
		WindSpeed:     in.WindSpeed,
		Conditions:    in.Conditions,
		Forecast:      in.Forecast,
		CreatedAt:     now,
	}
}

// wrap annotates err, passing nil through.
func wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("failed to "+format+": %w", append(args, err)...)
}
