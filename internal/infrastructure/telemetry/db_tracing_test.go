package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func zapNop() *zap.Logger { return zap.NewNop() }

type tracedRow struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&tracedRow{}))
	return db
}

func TestRegisterDBTracing_Disabled(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, RegisterDBTracing(db, DBTracingConfig{Enabled: false}, zapNop()))
	assert.Nil(t, db.Callback().Query().Get("otel:before_query"))
}

func TestRegisterDBTracing_CreatesSpans(t *testing.T) {
	sr := setupTestTracer(t)
	db := openTestDB(t)
	require.NoError(t, RegisterDBTracing(db, DBTracingConfig{Enabled: true, DBName: "storefront"}, zapNop()))

	ctx, parent := StartSpan(context.Background(), "test.parent")
	require.NoError(t, db.WithContext(ctx).Create(&tracedRow{Name: "a"}).Error)
	parent.End()

	names := make([]string, 0)
	for _, s := range sr.Ended() {
		names = append(names, s.Name())
	}
	assert.Contains(t, names, "test.parent")
	assert.Greater(t, len(names), 1)
}

func TestSlowQueryCallbacks(t *testing.T) {
	sr := setupTestTracer(t)
	db := openTestDB(t)
	require.NoError(t, registerSlowQueryCallbacks(db, time.Nanosecond))

	ctx, span := StartSpan(context.Background(), "test.slow")
	var rows []tracedRow
	require.NoError(t, db.WithContext(ctx).Find(&rows).Error)
	span.End()

	events := sr.Ended()[0].Events()
	require.NotEmpty(t, events)
	assert.Equal(t, "slow_query", events[0].Name)
	assert.Equal(t, "traced_rows", attrMap(events[0].Attributes)["db.sql.table"].AsString())
}
