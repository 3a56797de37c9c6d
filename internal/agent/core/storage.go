package core

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/MayuCoding/DebateAgent/config"
)

// ErrRunNotFound is returned when a run id has no stored record
var ErrRunNotFound = errors.New("run not found")

// RunRecord is the persisted form of a completed run. The response is kept
// as raw JSON tagged with its format so records survive schema evolution.
type RunRecord struct {
	ID             string          `json:"id"`
	Submission     Submission      `json:"submission"`
	Format         Format          `json:"format"`
	ResponseJSON   json.RawMessage `json:"response"`
	Rendered       string          `json:"rendered"`
	Cost           float64         `json:"cost"`
	TokensUsed     int64           `json:"tokens_used"`
	ProcessingTime time.Duration   `json:"processing_time"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Storage persists run history. Persistence is best-effort and optional:
// the pipeline itself never depends on stored state.
type Storage interface {
	SaveRun(ctx context.Context, rec RunRecord) error
	GetRun(ctx context.Context, id string) (RunRecord, error)
	Close() error
}

// NewStorage prefers Postgres when configured, falls back to Redis, and
// degrades to a no-op store otherwise.
func NewStorage(cfg config.StorageConfig) (Storage, error) {
	if cfg.Postgres.URL != "" || cfg.Postgres.Host != "" || cfg.Postgres.DBName != "" {
		ps, err := NewPostgresStorage(cfg.Postgres)
		if err == nil {
			return ps, nil
		}
		log.Printf("Warning: Postgres storage init failed: %v, falling back to Redis", err)
	}
	if cfg.Redis.Host != "" {
		return NewRedisStorage(cfg.Redis), nil
	}
	return NoopStorage{}, nil
}

// PostgresStorage implements Storage using PostgreSQL
type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(cfg config.PostgresConfig) (*PostgresStorage, error) {
	dsn := cfg.URL
	if dsn == "" {
		host := cfg.Host
		if host == "" {
			host = "localhost"
		}
		port := cfg.Port
		if port == "" {
			port = "5432"
		}
		ssl := cfg.SSLMode
		if ssl == "" {
			ssl = "disable"
		}
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", cfg.User, cfg.Password, host, port, cfg.DBName, ssl)
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	ps := &PostgresStorage{db: db}
	if err := ps.ensureSchema(); err != nil {
		return nil, err
	}
	return ps, nil
}

func (s *PostgresStorage) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS debate_runs (
    id TEXT PRIMARY KEY,
    submission JSONB NOT NULL,
    format TEXT NOT NULL,
    response JSONB,
    rendered TEXT,
    cost DOUBLE PRECISION,
    tokens_used BIGINT,
    processing_time BIGINT,
    created_at TIMESTAMPTZ DEFAULT NOW()
);
`)
	return err
}

func (s *PostgresStorage) SaveRun(ctx context.Context, rec RunRecord) error {
	submission, err := json.Marshal(rec.Submission)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO debate_runs (
  id, submission, format, response, rendered, cost, tokens_used, processing_time, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
ON CONFLICT (id) DO UPDATE SET
  submission = EXCLUDED.submission,
  format = EXCLUDED.format,
  response = EXCLUDED.response,
  rendered = EXCLUDED.rendered,
  cost = EXCLUDED.cost,
  tokens_used = EXCLUDED.tokens_used,
  processing_time = EXCLUDED.processing_time;
`,
		rec.ID, submission, string(rec.Format), []byte(rec.ResponseJSON), rec.Rendered,
		rec.Cost, rec.TokensUsed, int64(rec.ProcessingTime),
	)
	return err
}

func (s *PostgresStorage) GetRun(ctx context.Context, id string) (RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT submission, format, response, rendered, cost, tokens_used, processing_time, created_at
        FROM debate_runs WHERE id = $1`, id)

	var (
		submissionB, responseB []byte
		rec                    RunRecord
		format                 string
		processingTime         int64
	)
	rec.ID = id
	if err := row.Scan(&submissionB, &format, &responseB, &rec.Rendered, &rec.Cost, &rec.TokensUsed, &processingTime, &rec.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunRecord{}, ErrRunNotFound
		}
		return RunRecord{}, err
	}
	if err := decodeRunRow(&rec, submissionB, format, responseB, processingTime); err != nil {
		return RunRecord{}, err
	}
	return rec, nil
}

// decodeRunRow fills the JSON-backed columns of a scanned row. A submission
// blob that fails to decode marks the row as corrupt rather than returning a
// half-populated record.
func decodeRunRow(rec *RunRecord, submissionB []byte, format string, responseB []byte, processingTime int64) error {
	if err := json.Unmarshal(submissionB, &rec.Submission); err != nil {
		return fmt.Errorf("decoding stored submission for run %s: %w", rec.ID, err)
	}
	rec.Format = Format(format)
	rec.ResponseJSON = responseB
	rec.ProcessingTime = time.Duration(processingTime)
	return nil
}

func (s *PostgresStorage) Close() error { return s.db.Close() }

// RedisStorage implements Storage using Redis
type RedisStorage struct {
	client *redis.Client
}

const runKeyPrefix = "debate:run:"

func NewRedisStorage(cfg config.RedisConfig) *RedisStorage {
	client := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.Timeout,
	})
	return &RedisStorage{client: client}
}

func (s *RedisStorage) SaveRun(ctx context.Context, rec RunRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, runKeyPrefix+rec.ID, data, 0).Err()
}

func (s *RedisStorage) GetRun(ctx context.Context, id string) (RunRecord, error) {
	data, err := s.client.Get(ctx, runKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return RunRecord{}, ErrRunNotFound
		}
		return RunRecord{}, err
	}
	var rec RunRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return RunRecord{}, err
	}
	return rec, nil
}

func (s *RedisStorage) Close() error { return s.client.Close() }

// NoopStorage is used when no persistence backend is configured
type NoopStorage struct{}

func (NoopStorage) SaveRun(ctx context.Context, rec RunRecord) error { return nil }
func (NoopStorage) GetRun(ctx context.Context, id string) (RunRecord, error) {
	return RunRecord{}, ErrRunNotFound
}
func (NoopStorage) Close() error { return nil }
