package database

import (
	"context"

	"github.com/anicoll/huawei-solar-integration/internal/pkg/model"
)

// Write stores one cycle's readings in a single transaction. Readings
// without a value carry only availability and are not stored.
func (db *Database) Write(ctx context.Context, readings []model.Reading) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, r := range readings {
		if r.Value == nil {
			continue
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO property (time_stamp, unit_of_measurement, value, identifier, slug)
			VALUES ($1, $2, $3, $4, $5)
		`, r.Timestamp, r.Unit, *r.Value, r.Identifier, r.Slug); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (db *Database) RegisterDevice(ctx context.Context, device model.Device, _ []model.Entity) error {
	_, err := db.pool.Exec(ctx, `
		INSERT INTO device (id, name, model, serial_number)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, model = EXCLUDED.model, serial_number = EXCLUDED.serial_number, updated_at = NOW();`,
		device.Identifier(), device.ID, device.Model, device.SerialNumber)
	return err
}
