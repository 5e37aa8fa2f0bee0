package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore persists history in Postgres through the pgx stdlib driver.
// The schema is ensured once on first use; writes are plain inserts, the
// store never updates or deletes rows.
type PostgresStore struct {
	db *sql.DB

	schemaOnce sync.Once
	schemaErr  error
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return sql.ErrConnDone
	}
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS analysis_history (
  id BIGSERIAL PRIMARY KEY,
  kind TEXT NOT NULL DEFAULT 'snippet',
  language TEXT NOT NULL,
  summary TEXT NOT NULL DEFAULT '',
  ai_model TEXT NOT NULL DEFAULT '',
  used_fallback BOOLEAN NOT NULL DEFAULT FALSE,
  before_metrics JSONB NOT NULL DEFAULT '{}',
  after_metrics JSONB NOT NULL DEFAULT '{}',
  co2 JSONB NOT NULL DEFAULT '{}',
  session_emissions JSONB NOT NULL DEFAULT '{}',
  alternative_code TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_analysis_history_created_at ON analysis_history (created_at);
`)
	})
	return s.schemaErr
}

func (s *PostgresStore) Insert(ctx context.Context, rec Record) (int64, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return 0, err
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	before, _ := json.Marshal(rec.Before)
	after, _ := json.Marshal(rec.After)
	co2, _ := json.Marshal(rec.CO2)
	emissions, _ := json.Marshal(rec.SessionEmissions)

	var id int64
	err := s.db.QueryRowContext(ctx, `
INSERT INTO analysis_history (
  kind, language, summary, ai_model, used_fallback, before_metrics,
  after_metrics, co2, session_emissions, alternative_code, created_at
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
RETURNING id`,
		rec.Kind, rec.Language, rec.Summary, rec.AIModel, rec.UsedFallback,
		before, after, co2, emissions, rec.AlternativeCode, rec.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *PostgresStore) Recent(ctx context.Context, n int) ([]Record, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, kind, language, summary, ai_model, used_fallback, before_metrics,
       after_metrics, co2, session_emissions, alternative_code, created_at
FROM analysis_history
ORDER BY id DESC
LIMIT $1`, clampRecent(n))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Record, 0, clampRecent(n))
	for rows.Next() {
		var rec Record
		var before, after, co2, emissions []byte
		if err := rows.Scan(
			&rec.ID, &rec.Kind, &rec.Language, &rec.Summary, &rec.AIModel,
			&rec.UsedFallback, &before, &after, &co2, &emissions,
			&rec.AlternativeCode, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		_ = json.Unmarshal(before, &rec.Before)
		_ = json.Unmarshal(after, &rec.After)
		_ = json.Unmarshal(co2, &rec.CO2)
		_ = json.Unmarshal(emissions, &rec.SessionEmissions)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Dashboard(ctx context.Context) (Dashboard, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return Dashboard{}, err
	}
	var d Dashboard
	err := s.db.QueryRowContext(ctx, `
SELECT COUNT(*),
       COUNT(*) FILTER (WHERE used_fallback),
       COALESCE(SUM((co2->>'energy_saved_kwh')::float8), 0),
       COALESCE(SUM((co2->'before'->>'co2_kg')::float8 - (co2->'after'->>'co2_kg')::float8), 0)
FROM analysis_history`).Scan(
		&d.TotalAnalyses, &d.FallbackCount, &d.TotalEnergySavedKWh, &d.TotalCO2SavedKg)
	if err != nil {
		return Dashboard{}, err
	}
	d.TotalEnergySavedKWh = roundKWh(d.TotalEnergySavedKWh)
	d.TotalCO2SavedKg = roundKWh(d.TotalCO2SavedKg)

	rows, err := s.db.QueryContext(ctx, `
SELECT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day,
       COUNT(*),
       COALESCE(SUM((co2->>'energy_saved_kwh')::float8), 0)
FROM analysis_history
GROUP BY day
ORDER BY day`)
	if err != nil {
		return Dashboard{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var bucket DayBucket
		if err := rows.Scan(&bucket.Day, &bucket.Analyses, &bucket.EnergySavedKWh); err != nil {
			return Dashboard{}, err
		}
		bucket.EnergySavedKWh = roundKWh(bucket.EnergySavedKWh)
		d.Timeseries = append(d.Timeseries, bucket)
	}
	if err := rows.Err(); err != nil {
		return Dashboard{}, err
	}
	d.Report = narrative(d)
	return d, nil
}

func (s *PostgresStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
