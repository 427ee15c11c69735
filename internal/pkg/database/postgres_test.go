package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/anicoll/huawei-solar-integration/internal/pkg/database/migration"
	"github.com/anicoll/huawei-solar-integration/internal/pkg/model"
)

const migrationsFolder = "../../../migrations"

func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	ctx := context.Background()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("huawei"),
		postgres.WithUsername("huawei"),
		postgres.WithPassword("huawei"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, migration.Migrate(dsn, migrationsFolder))
	// a second run finds nothing to do
	require.NoError(t, migration.Migrate(dsn, migrationsFolder))

	db, err := Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func ptr(s string) *string { return &s }

var device = model.Device{ID: "roof", Model: "SUN2000-5KTL-L1", SerialNumber: "HV2050012345"}

func TestDatabase_WriteAndRead(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()
	identifier := device.Identifier()
	base := time.Date(2021, 7, 1, 10, 30, 0, 0, time.UTC)

	require.NoError(t, db.RegisterDevice(ctx, device, nil))
	require.NoError(t, db.RegisterDevice(ctx, device, nil))

	require.NoError(t, db.Write(ctx, []model.Reading{
		{Identifier: identifier, Slug: "daily_yield_hv2050012345", Value: ptr("12.5"), Unit: "kWh", Timestamp: base},
		{Identifier: identifier, Slug: identifier, Value: ptr("1500"), Unit: "W", Timestamp: base},
		{Identifier: identifier, Slug: "total_yield_hv2050012345", Unit: "kWh", Timestamp: base},
	}))
	require.NoError(t, db.Write(ctx, []model.Reading{
		{Identifier: identifier, Slug: "daily_yield_hv2050012345", Value: ptr("12.7"), Unit: "kWh", Timestamp: base.Add(time.Minute)},
	}))

	from, to := base.Add(-time.Hour), base.Add(time.Hour)
	history, err := db.GetProperties(ctx, identifier, "daily_yield_hv2050012345", &from, &to)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "12.7", history[0].Value)
	assert.Equal(t, "12.5", history[1].Value)

	latest, err := db.GetLatestProperties(ctx, identifier)
	require.NoError(t, err)
	require.Len(t, latest, 2, "readings without a value are not stored")
	values := map[string]string{}
	for _, p := range latest {
		values[p.Slug] = p.Value
	}
	assert.Equal(t, "12.7", values["daily_yield_hv2050012345"])
	assert.Equal(t, "1500", values[identifier])

	empty, err := db.GetLatestProperties(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDatabase_Cleanup(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()
	now := time.Date(2021, 7, 10, 0, 0, 0, 0, time.UTC)
	db.now = func() time.Time { return now }

	require.NoError(t, db.Write(ctx, []model.Reading{
		{Identifier: "a", Slug: "old", Value: ptr("1"), Timestamp: now.Add(-9 * 24 * time.Hour)},
		{Identifier: "a", Slug: "new", Value: ptr("2"), Timestamp: now.Add(-24 * time.Hour)},
	}))

	require.NoError(t, db.Cleanup(ctx))

	latest, err := db.GetLatestProperties(ctx, "a")
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, "new", latest[0].Slug)
}
