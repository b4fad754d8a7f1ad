package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/meeplemedia/creatordex/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses; pgxmock satisfies it.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool (used by tests).
func NewPostgresFromPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS channel_cache (
	id         TEXT PRIMARY KEY,
	channel_id TEXT NOT NULL,
	payload    JSONB NOT NULL,
	cached_at  BIGINT NOT NULL,
	expires_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS query_cache (
	id         TEXT PRIMARY KEY,
	query      TEXT NOT NULL,
	payload    JSONB NOT NULL,
	cached_at  BIGINT NOT NULL,
	expires_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_channel_cache_channel_id ON channel_cache(channel_id);
CREATE INDEX IF NOT EXISTS idx_channel_cache_expires_at ON channel_cache(expires_at);
CREATE INDEX IF NOT EXISTS idx_query_cache_query ON query_cache(query);
CREATE INDEX IF NOT EXISTS idx_query_cache_expires_at ON query_cache(expires_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) GetChannel(ctx context.Context, channelID string) (*model.ChannelInfo, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM channel_cache WHERE channel_id = $1 AND expires_at > $2 ORDER BY cached_at DESC LIMIT 1`,
		channelID, time.Now().Unix(),
	).Scan(&payload)
	if eris.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get channel")
	}

	var info model.ChannelInfo
	if err := json.Unmarshal(payload, &info); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal channel")
	}
	return &info, nil
}

func (s *PostgresStore) SetChannel(ctx context.Context, channelID string, info *model.ChannelInfo, ttl time.Duration) error {
	payload, err := json.Marshal(info)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal channel")
	}

	now := time.Now()
	_, err = s.pool.Exec(ctx,
		`INSERT INTO channel_cache (id, channel_id, payload, cached_at, expires_at) VALUES ($1, $2, $3, $4, $5)`,
		uuid.New().String(), channelID, payload, now.Unix(), now.Add(ttl).Unix(),
	)
	return eris.Wrap(err, "postgres: set channel")
}

func (s *PostgresStore) GetQuery(ctx context.Context, query string) (*model.ResolvedChannel, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM query_cache WHERE query = $1 AND expires_at > $2 ORDER BY cached_at DESC LIMIT 1`,
		query, time.Now().Unix(),
	).Scan(&payload)
	if eris.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get query")
	}

	var res model.ResolvedChannel
	if err := json.Unmarshal(payload, &res); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal query")
	}
	return &res, nil
}

func (s *PostgresStore) SetQuery(ctx context.Context, query string, res *model.ResolvedChannel, ttl time.Duration) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal query")
	}

	now := time.Now()
	_, err = s.pool.Exec(ctx,
		`INSERT INTO query_cache (id, query, payload, cached_at, expires_at) VALUES ($1, $2, $3, $4, $5)`,
		uuid.New().String(), query, payload, now.Unix(), now.Add(ttl).Unix(),
	)
	return eris.Wrap(err, "postgres: set query")
}

func (s *PostgresStore) DeleteExpired(ctx context.Context) (int, error) {
	now := time.Now().Unix()
	total := 0
	for _, table := range []string{"channel_cache", "query_cache"} {
		tag, err := s.pool.Exec(ctx, `DELETE FROM `+table+` WHERE expires_at <= $1`, now)
		if err != nil {
			return total, eris.Wrapf(err, "postgres: delete expired %s", table)
		}
		total += int(tag.RowsAffected())
	}
	return total, nil
}
