package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sudharshini/backend/internal/infrastructure/telemetry"
)

type widget struct {
	ID   int64
	Name string
}

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&widget{}))
	return db
}

func TestDBMetrics_RecordsQueries(t *testing.T) {
	reader, mp := newReader(t)
	db := openSQLite(t)

	m, err := telemetry.NewDBMetrics(mp.Meter("db"), telemetry.DBMetricsConfig{SlowQueryThreshold: time.Hour}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, db.Use(m))

	require.NoError(t, db.Create(&widget{Name: "a"}).Error)
	var got []widget
	require.NoError(t, db.Find(&got).Error)
	require.NoError(t, db.Model(&widget{}).Where("id = ?", got[0].ID).Update("name", "b").Error)

	metrics := collect(t, reader)
	assert.Equal(t, int64(3), sumValue(t, metrics["db_query_total"]))
	_, slow := metrics["db_slow_query_total"]
	assert.False(t, slow)
}

func TestDBMetrics_SlowQuery(t *testing.T) {
	reader, mp := newReader(t)
	m, err := telemetry.NewDBMetrics(mp.Meter("db"), telemetry.DBMetricsConfig{SlowQueryThreshold: time.Millisecond}, nil)
	require.NoError(t, err)

	m.RecordQuery(context.Background(), "select", "orders", 5*time.Millisecond)
	m.RecordQuery(context.Background(), "", "", 5*time.Millisecond)

	metrics := collect(t, reader)
	assert.Equal(t, int64(2), sumValue(t, metrics["db_slow_query_total"]))
}

func TestDBMetrics_PoolStats(t *testing.T) {
	reader, mp := newReader(t)
	db := openSQLite(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)

	m, err := telemetry.NewDBMetrics(mp.Meter("db"), telemetry.DBMetricsConfig{PoolStatsInterval: time.Hour}, nil)
	require.NoError(t, err)
	m.StartPoolStats(context.Background(), sqlDB)
	t.Cleanup(m.Stop)

	assert.Eventually(t, func() bool {
		_, ok := collect(t, reader)["db_pool_connections"]
		return ok
	}, time.Second, 10*time.Millisecond)
	m.Stop()
}

func TestDBTracingPlugin_Register(t *testing.T) {
	recorder := installRecorder(t)
	db := openSQLite(t)

	plugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{Enabled: true, DBSystem: "sqlite"}, zap.NewNop())
	require.NoError(t, plugin.Register(db))

	assert.NotNil(t, db.Callback().Create().Get("otel_timing:after_create"))
	assert.NotNil(t, db.Callback().Raw().Get("otel_timing:before_raw"))

	require.NoError(t, db.WithContext(context.Background()).Create(&widget{Name: "x"}).Error)
	assert.NotEmpty(t, recorder.Ended())
}

func TestDBTracingPlugin_Disabled(t *testing.T) {
	db := openSQLite(t)
	plugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{}, zap.NewNop())
	require.NoError(t, plugin.Register(db))
	assert.Nil(t, db.Callback().Create().Get("otel_timing:after_create"))
}
