package db

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"farm-records-backend/config"
	"farm-records-backend/internal/model"
)

func TestInit_SQLite(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		MaxOpenConns: 1,
		LogLevel:     "silent",
	}

	gormDB, err := Init(cfg)
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	for _, m := range Models {
		assert.True(t, gormDB.Migrator().HasTable(m), "table for %T should exist", m)
	}
	assert.True(t, gormDB.Migrator().HasIndex(&model.WeatherObservation{}, "idx_weather_farm_date"))
}

func TestInit_Errors(t *testing.T) {
	_, err := Init(&config.DatabaseConfig{Driver: "sqlite"})
	assert.Error(t, err, "missing dsn")

	_, err = Init(&config.DatabaseConfig{Driver: "oracle", DSN: "x"})
	assert.Error(t, err, "unknown driver")
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, logger.Silent, logLevel("silent"))
	assert.Equal(t, logger.Info, logLevel("INFO"))
	assert.Equal(t, logger.Warn, logLevel(""))
}
