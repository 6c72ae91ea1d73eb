package store

import (
	"context"
	"database/sql/driver"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"farm-records-backend/config"
	"farm-records-backend/internal/db"
	"farm-records-backend/internal/model"
)

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// newSQLiteStore opens sqlite the same way the service does, so error
// translation and migrations match production wiring.
func newSQLiteStore(t *testing.T) Store {
	t.Helper()
	gormDB, err := db.Init(&config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		MaxOpenConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return NewGormStore(gormDB)
}

func ptr[T any](v T) *T { return &v }

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

// TestStoreContract runs the same behavioural checks against every Store implementation.
func TestStoreContract(t *testing.T) {
	impls := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemStore() },
		"sqlite": newSQLiteStore,
	}

	for name, newStore := range impls {
		t.Run(name, func(t *testing.T) {
			t.Run("users", func(t *testing.T) { testUsers(t, newStore(t)) })
			t.Run("farms", func(t *testing.T) { testFarms(t, newStore(t)) })
			t.Run("crops", func(t *testing.T) { testCrops(t, newStore(t)) })
			t.Run("weather", func(t *testing.T) { testWeather(t, newStore(t)) })
			t.Run("recommendations", func(t *testing.T) { testRecommendations(t, newStore(t)) })
			t.Run("push subscriptions", func(t *testing.T) { testPushSubscriptions(t, newStore(t)) })
		})
	}
}

func testUsers(t *testing.T, s Store) {
	ctx := context.Background()

	missing, err := s.GetUser(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, missing)

	u, err := s.CreateUser(ctx, NewUser{Username: "alice", PasswordHash: "hash", Email: ptr("a@example.com")})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "hash", got.Password)

	byName, err := s.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, u.ID, byName.ID)

	_, err = s.CreateUser(ctx, NewUser{Username: "alice", PasswordHash: "other"})
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	again, err := s.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)
}

func testFarms(t *testing.T, s Store) {
	ctx := context.Background()

	f1, err := s.CreateFarm(ctx, NewFarm{UserID: "u1", Name: "North", Location: "Valley", Size: ptr(12.5)})
	require.NoError(t, err)
	f2, err := s.CreateFarm(ctx, NewFarm{UserID: "u1", Name: "South", Location: "Hill", Coordinates: ptr("10.5,20.25")})
	require.NoError(t, err)
	_, err = s.CreateFarm(ctx, NewFarm{UserID: "u2", Name: "Other", Location: "Elsewhere"})
	require.NoError(t, err)

	assert.NotEqual(t, f1.ID, f2.ID)

	farms, err := s.ListFarmsByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, farms, 2)

	none, err := s.ListFarmsByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	withCoords, err := s.ListFarmsWithCoordinates(ctx)
	require.NoError(t, err)
	require.Len(t, withCoords, 1)
	assert.Equal(t, f2.ID, withCoords[0].ID)

	updated, err := s.UpdateFarm(ctx, f1.ID, FarmUpdate{Name: ptr("North Field")})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "North Field", updated.Name)
	assert.Equal(t, "Valley", updated.Location, "fields not supplied must be kept")
	require.NotNil(t, updated.Size)
	assert.InDelta(t, 12.5, *updated.Size, 0.001)

	missing, err := s.UpdateFarm(ctx, uuid.NewString(), FarmUpdate{Name: ptr("x")})
	require.NoError(t, err)
	assert.Nil(t, missing)

	crop, err := s.CreateCrop(ctx, NewCrop{FarmID: f1.ID, Name: "Wheat"})
	require.NoError(t, err)

	deleted, err := s.DeleteFarm(ctx, f1.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.DeleteFarm(ctx, f1.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	orphan, err := s.GetCrop(ctx, crop.ID)
	require.NoError(t, err)
	assert.NotNil(t, orphan, "deleting a farm does not cascade to its crops")
}

func testCrops(t *testing.T, s Store) {
	ctx := context.Background()

	c, err := s.CreateCrop(ctx, NewCrop{FarmID: "f1", Name: "Maize", PlantingDate: ptr(day("2024-04-01"))})
	require.NoError(t, err)
	assert.Equal(t, model.CropStatusPlanned, c.Status)

	growing := model.CropStatusGrowing
	updated, err := s.UpdateCrop(ctx, c.ID, CropUpdate{Status: &growing, PredictedYield: ptr(4.2)})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, model.CropStatusGrowing, updated.Status)
	assert.Equal(t, "Maize", updated.Name)
	require.NotNil(t, updated.PlantingDate)
	assert.Equal(t, "2024-04-01", updated.PlantingDate.UTC().Format("2006-01-02"))

	missing, err := s.UpdateCrop(ctx, uuid.NewString(), CropUpdate{Name: ptr("x")})
	require.NoError(t, err)
	assert.Nil(t, missing)

	list, err := s.ListCropsByFarm(ctx, "f1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	deleted, err := s.DeleteCrop(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.DeleteCrop(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	gone, err := s.GetCrop(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func testWeather(t *testing.T, s Store) {
	ctx := context.Background()

	latest, err := s.GetLatestWeather(ctx, "f1")
	require.NoError(t, err)
	assert.Nil(t, latest)

	for _, d := range []string{"2024-01-01", "2024-03-01", "2024-02-01"} {
		_, err := s.CreateWeather(ctx, NewWeather{FarmID: "f1", Date: day(d), Temperature: ptr(20.0)})
		require.NoError(t, err)
	}
	_, err = s.CreateWeather(ctx, NewWeather{FarmID: "f2", Date: day("2025-01-01")})
	require.NoError(t, err)

	latest, err = s.GetLatestWeather(ctx, "f1")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "2024-03-01", latest.Date.UTC().Format("2006-01-02"))

	list, err := s.ListWeatherByFarm(ctx, "f1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "2024-03-01", list[0].Date.UTC().Format("2006-01-02"))
	assert.Equal(t, "2024-01-01", list[2].Date.UTC().Format("2006-01-02"))

	w, err := s.CreateWeather(ctx, NewWeather{
		FarmID:   "f3",
		Date:     day("2024-05-05"),
		Forecast: datatypes.JSON(`{"days":[{"high":21}]}`),
	})
	require.NoError(t, err)
	got, err := s.GetWeather(ctx, w.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.JSONEq(t, `{"days":[{"high":21}]}`, string(got.Forecast))

	deleted, err := s.DeleteWeather(ctx, w.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = s.DeleteWeather(ctx, w.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func testRecommendations(t *testing.T, s Store) {
	ctx := context.Background()

	var last *model.CropRecommendation
	for i := 0; i < 7; i++ {
		r, err := s.CreateRecommendation(ctx, NewRecommendation{
			UserID:           "u1",
			RecommendedCrops: datatypes.JSON(fmt.Sprintf(`[{"name":"crop-%d"}]`, i)),
			ConfidenceScore:  ptr(80.0),
		})
		require.NoError(t, err)
		last = r
		time.Sleep(2 * time.Millisecond)
	}

	recent, err := s.ListRecommendationsByUser(ctx, "u1", 5)
	require.NoError(t, err)
	require.Len(t, recent, 5)
	assert.Equal(t, last.ID, recent[0].ID, "newest first")

	all, err := s.ListRecommendationsByUser(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Len(t, all, 7)

	got, err := s.GetRecommendation(ctx, last.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.JSONEq(t, `[{"name":"crop-6"}]`, string(got.RecommendedCrops))

	deleted, err := s.DeleteRecommendation(ctx, last.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = s.DeleteRecommendation(ctx, last.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func testPushSubscriptions(t *testing.T, s Store) {
	ctx := context.Background()

	require.NoError(t, s.SavePushSubscription(ctx, model.PushSubscription{Endpoint: "https://push/1", UserID: "u1", P256DH: "k1", Auth: "a1"}))
	require.NoError(t, s.SavePushSubscription(ctx, model.PushSubscription{Endpoint: "https://push/1", UserID: "u1", P256DH: "k2", Auth: "a2"}))

	subs, err := s.ListPushSubscriptionsByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "k2", subs[0].P256DH)

	deleted, err := s.DeletePushSubscription(ctx, "u2", "https://push/1")
	require.NoError(t, err)
	assert.False(t, deleted, "only the owner can remove a subscription")

	deleted, err = s.DeletePushSubscription(ctx, "u1", "https://push/1")
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestMemStore_DuplicateUsername(t *testing.T) {
	s := NewMemStore()
	_, err := s.CreateUser(context.Background(), NewUser{Username: "bob", PasswordHash: "h"})
	require.NoError(t, err)

	_, err = s.CreateUser(context.Background(), NewUser{Username: "bob", PasswordHash: "h"})
	assert.ErrorIs(t, err, ErrDuplicateUsername)
}

func TestGormStore_DeleteCrop(t *testing.T) {
	testCases := []struct {
		name     string
		affected int64
		expected bool
	}{
		{name: "row removed", affected: 1, expected: true},
		{name: "nothing to remove", affected: 0, expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gormDB, mock := newTestDB(t)
			s := NewGormStore(gormDB)

			mock.ExpectBegin()
			mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "crops" WHERE id = $1`)).
				WithArgs("crop-1").
				WillReturnResult(sqlmock.NewResult(0, tc.affected))
			mock.ExpectCommit()

			deleted, err := s.DeleteCrop(context.Background(), "crop-1")
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, deleted)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGormStore_GetLatestWeather(t *testing.T) {
	query := `SELECT \* FROM "weather_observations" WHERE farm_id = \$1 ORDER BY date DESC`

	t.Run("returns the newest row", func(t *testing.T) {
		gormDB, mock := newTestDB(t)
		s := NewGormStore(gormDB)

		mock.ExpectQuery(query).
			WillReturnRows(sqlmock.NewRows([]string{"id", "farm_id", "date"}).
				AddRow("w-3", "farm-1", day("2024-03-01")))

		w, err := s.GetLatestWeather(context.Background(), "farm-1")
		require.NoError(t, err)
		require.NotNil(t, w)
		assert.Equal(t, "w-3", w.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no rows is not an error", func(t *testing.T) {
		gormDB, mock := newTestDB(t)
		s := NewGormStore(gormDB)

		mock.ExpectQuery(query).
			WillReturnRows(sqlmock.NewRows([]string{"id", "farm_id", "date"}))

		w, err := s.GetLatestWeather(context.Background(), "farm-1")
		assert.NoError(t, err)
		assert.Nil(t, w)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStore_UpdateFarmNotFound(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "farms" SET`)).
		WithArgs("Renamed", Any{}, "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "farms" WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	f, err := s.UpdateFarm(context.Background(), "missing", FarmUpdate{Name: ptr("Renamed")})
	assert.NoError(t, err)
	assert.Nil(t, f)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Any is a helper for sqlmock to match any argument.
type Any struct{}

// Match satisfies the sqlmock.Argument interface
func (a Any) Match(v driver.Value) bool {
	return true
}
