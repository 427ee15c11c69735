package database

import (
	"context"

	"go.uber.org/zap"
)

// Cleanup removes readings older than the retention window.
func (db *Database) Cleanup(ctx context.Context) error {
	tag, err := db.pool.Exec(ctx, "DELETE FROM property WHERE time_stamp < $1", db.now().Add(-retention))
	if err != nil {
		return err
	}
	zap.L().Info("cleaned up properties", zap.Int64("deleted", tag.RowsAffected()))
	return nil
}
