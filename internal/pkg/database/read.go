package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/anicoll/huawei-solar-integration/internal/pkg/model"
)

// historyWindow is used when a history query does not bound both ends.
const historyWindow = 2 * 24 * time.Hour

func (db *Database) GetProperties(ctx context.Context, identifier, slug string, from, to *time.Time) (model.Properties, error) {
	if from == nil || to == nil {
		end := db.now()
		start := end.Add(-historyWindow)
		from, to = &start, &end
	}
	const query = `
	SELECT id, time_stamp, unit_of_measurement, value, identifier, slug
	FROM property
	WHERE identifier = $1 AND slug = $2 AND time_stamp BETWEEN $3 AND $4
	ORDER BY time_stamp DESC;
	`

	rows, err := db.pool.Query(ctx, query, identifier, slug, *from, *to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProperties(rows)
}

// GetLatestProperties returns the newest reading of every slug stored for identifier.
func (db *Database) GetLatestProperties(ctx context.Context, identifier string) (model.Properties, error) {
	const query = `
	SELECT DISTINCT ON (slug) id, time_stamp, unit_of_measurement, value, identifier, slug
	FROM property
	WHERE identifier = $1
	ORDER BY slug, time_stamp DESC;
	`

	rows, err := db.pool.Query(ctx, query, identifier)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProperties(rows)
}

func scanProperties(rows pgx.Rows) (model.Properties, error) {
	properties := model.Properties{}
	for rows.Next() {
		var property model.Property
		if err := rows.Scan(&property.ID, &property.TimeStamp, &property.Unit, &property.Value, &property.Identifier, &property.Slug); err != nil {
			return nil, err
		}
		properties = append(properties, property)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return properties, nil
}
