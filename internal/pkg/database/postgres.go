package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// retention is how long readings are kept before Cleanup removes them.
const retention = 8 * 24 * time.Hour

type Database struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// Connect opens a pool against dsn and checks it is reachable. The schema
// is managed by the migration package.
func Connect(ctx context.Context, dsn string) (*Database, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return NewDatabase(pool), nil
}

func NewDatabase(pool *pgxpool.Pool) *Database {
	return &Database{
		pool: pool,
		now:  time.Now,
	}
}

func (db *Database) Close() error {
	if db.pool == nil {
		return nil
	}
	db.pool.Close()
	return nil
}
