package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"PatientPulse/internal/domain/models"
	domrepo "PatientPulse/internal/domain/repository"
	applogger "PatientPulse/pkg/logger"

	sq "github.com/Masterminds/squirrel"
)

const insertChunk = 2000

// CHObservationArchive stores hourly observations in ClickHouse.
type CHObservationArchive struct {
	db      *sql.DB
	table   string
	builder sq.StatementBuilderType
	l       *applogger.Logger
}

// NewCHObservationArchive uses table (e.g. "hospital.patient_observations").
func NewCHObservationArchive(db *sql.DB, table string) *CHObservationArchive {
	return &CHObservationArchive{
		db:      db,
		table:   table,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Question),
		l:       applogger.NewNop(),
	}
}

// SetLogger injects a structured logger.
func (s *CHObservationArchive) SetLogger(l *applogger.Logger) {
	if l != nil {
		s.l = l
	}
}

// SchemaStatements returns the DDL for the archive table.
func (s *CHObservationArchive) SchemaStatements() []string {
	return []string{fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            ts        DateTime('UTC'),
            patients  UInt32,
            source    LowCardinality(String),
            ingested  DateTime('UTC') DEFAULT now()
        )
        ENGINE = ReplacingMergeTree(ingested)
        ORDER BY ts
    `, s.table)}
}

func (s *CHObservationArchive) Store(ctx context.Context, obs models.Observation) error {
	return s.StoreBatch(ctx, []models.Observation{obs})
}

// StoreBatch inserts in chunks of multi-row VALUES.
func (s *CHObservationArchive) StoreBatch(ctx context.Context, obs []models.Observation) error {
	for start := 0; start < len(obs); start += insertChunk {
		end := start + insertChunk
		if end > len(obs) {
			end = len(obs)
		}
		q, args, err := s.insertQuery(obs[start:end])
		if err != nil {
			return err
		}
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			s.l.Error("clickhouse insert observations error",
				applogger.String("table", s.table),
				applogger.Int("rows", end-start),
				applogger.Error(err),
			)
			return fmt.Errorf("insert observations: %w", err)
		}
	}
	return nil
}

func (s *CHObservationArchive) insertQuery(obs []models.Observation) (string, []interface{}, error) {
	ins := s.builder.Insert(s.table).Columns("ts", "patients", "source")
	for _, o := range obs {
		ins = ins.Values(o.Timestamp.UTC(), uint32(o.Patients), "ingest")
	}
	q, args, err := ins.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build insert: %w", err)
	}
	return q, args, nil
}

// LoadRecent returns the newest n observations in chronological order.
// FINAL collapses re-ingested hours to their latest value.
func (s *CHObservationArchive) LoadRecent(ctx context.Context, n int) ([]models.Observation, error) {
	start := time.Now()
	q, args, err := s.recentQuery(n)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		s.l.Error("clickhouse load_recent query error",
			applogger.String("table", s.table),
			applogger.Int("limit", n),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("load recent observations: %w", err)
	}
	defer rows.Close()

	out := make([]models.Observation, 0, n)
	for rows.Next() {
		var (
			ts       time.Time
			patients uint32
		)
		if err := rows.Scan(&ts, &patients); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		out = append(out, models.Observation{Timestamp: ts, Patients: int(patients)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	// newest first from the query
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	s.l.Info("clickhouse load_recent ok",
		applogger.String("table", s.table),
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return out, nil
}

func (s *CHObservationArchive) recentQuery(n int) (string, []interface{}, error) {
	q, args, err := s.builder.
		Select("ts", "patients").
		From(s.table + " FINAL").
		OrderBy("ts DESC").
		Limit(uint64(n)).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build select: %w", err)
	}
	return q, args, nil
}

func (s *CHObservationArchive) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

var _ domrepo.ObservationArchive = (*CHObservationArchive)(nil)
