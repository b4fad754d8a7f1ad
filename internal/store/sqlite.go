package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/meeplemedia/creatordex/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

// Timestamps are stored as unix seconds to keep expiry comparisons portable
// across drivers.
const sqliteMigration = `
CREATE TABLE IF NOT EXISTS channel_cache (
	id         TEXT PRIMARY KEY,
	channel_id TEXT NOT NULL,
	payload    TEXT NOT NULL,
	cached_at  INTEGER NOT NULL,
	expires_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS query_cache (
	id         TEXT PRIMARY KEY,
	query      TEXT NOT NULL,
	payload    TEXT NOT NULL,
	cached_at  INTEGER NOT NULL,
	expires_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_channel_cache_channel_id ON channel_cache(channel_id);
CREATE INDEX IF NOT EXISTS idx_channel_cache_expires_at ON channel_cache(expires_at);
CREATE INDEX IF NOT EXISTS idx_query_cache_query ON query_cache(query);
CREATE INDEX IF NOT EXISTS idx_query_cache_expires_at ON query_cache(expires_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetChannel(ctx context.Context, channelID string) (*model.ChannelInfo, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM channel_cache WHERE channel_id = ? AND expires_at > ? ORDER BY cached_at DESC LIMIT 1`,
		channelID, time.Now().Unix(),
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get channel")
	}

	var info model.ChannelInfo
	if err := json.Unmarshal([]byte(payload), &info); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal channel")
	}
	return &info, nil
}

func (s *SQLiteStore) SetChannel(ctx context.Context, channelID string, info *model.ChannelInfo, ttl time.Duration) error {
	payload, err := json.Marshal(info)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal channel")
	}

	now := time.Now()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO channel_cache (id, channel_id, payload, cached_at, expires_at) VALUES (?, ?, ?, ?, ?)`,
		uuid.New().String(), channelID, string(payload), now.Unix(), now.Add(ttl).Unix(),
	)
	return eris.Wrap(err, "sqlite: set channel")
}

func (s *SQLiteStore) GetQuery(ctx context.Context, query string) (*model.ResolvedChannel, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM query_cache WHERE query = ? AND expires_at > ? ORDER BY cached_at DESC LIMIT 1`,
		query, time.Now().Unix(),
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get query")
	}

	var res model.ResolvedChannel
	if err := json.Unmarshal([]byte(payload), &res); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal query")
	}
	return &res, nil
}

func (s *SQLiteStore) SetQuery(ctx context.Context, query string, res *model.ResolvedChannel, ttl time.Duration) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal query")
	}

	now := time.Now()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO query_cache (id, query, payload, cached_at, expires_at) VALUES (?, ?, ?, ?, ?)`,
		uuid.New().String(), query, string(payload), now.Unix(), now.Add(ttl).Unix(),
	)
	return eris.Wrap(err, "sqlite: set query")
}

func (s *SQLiteStore) DeleteExpired(ctx context.Context) (int, error) {
	now := time.Now().Unix()
	total := 0
	for _, table := range []string{"channel_cache", "query_cache"} {
		res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE expires_at <= ?`, now)
		if err != nil {
			return total, eris.Wrapf(err, "sqlite: delete expired %s", table)
		}
		if n, err := res.RowsAffected(); err == nil {
			total += int(n)
		}
	}
	return total, nil
}
