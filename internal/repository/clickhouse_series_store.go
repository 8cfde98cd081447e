package repository

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"time"

	domrepo "github.com/NimaArnar/CryptoMarket-Dashboard/internal/domain/repository"
	applogger "github.com/NimaArnar/CryptoMarket-Dashboard/pkg/logger"
)

// sqlExecer is satisfied by *sql.DB.
type sqlExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PingContext(ctx context.Context) error
}

// CHSeriesStore implements SeriesStore backed by ClickHouse.
type CHSeriesStore struct {
	db    sqlExecer
	table string
	owner io.Closer
	l     *applogger.Logger
}

var _ domrepo.SeriesStore = (*CHSeriesStore)(nil)

// snapshotChunk bounds the rows of one INSERT.
const snapshotChunk = 2000

// NewCHSeriesStore creates a store writing to database.table.
func NewCHSeriesStore(db sqlExecer, database, table string, l *applogger.Logger) *CHSeriesStore {
	if l == nil {
		l = applogger.Nop()
	}
	if database != "" {
		table = database + "." + table
	}
	return &CHSeriesStore{db: db, table: table, l: l}
}

// Schema returns the DDL Init runs.
func (s *CHSeriesStore) Schema() []string {
	return []string{fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            run_id     String,
            symbol     LowCardinality(String),
            date       Date,
            market_cap Float64,
            price      Float64,
            corrected  UInt8,
            loaded_at  DateTime DEFAULT now()
        )
        ENGINE = MergeTree
        ORDER BY (symbol, date, run_id)
    `, s.table)}
}

func (s *CHSeriesStore) Init(ctx context.Context) error {
	for _, stmt := range s.Schema() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init %s: %w", s.table, err)
		}
	}
	return nil
}

// StoreSnapshot inserts rows in chunks using multi-row VALUES.
func (s *CHSeriesStore) StoreSnapshot(ctx context.Context, rows []domrepo.SnapshotRow) error {
	if len(rows) == 0 {
		return nil
	}
	start := time.Now()
	for lo := 0; lo < len(rows); lo += snapshotChunk {
		hi := min(lo+snapshotChunk, len(rows))

		values := make([]string, 0, hi-lo)
		args := make([]interface{}, 0, (hi-lo)*6)
		for _, r := range rows[lo:hi] {
			values = append(values, "(?, ?, ?, ?, ?, ?)")
			corrected := uint8(0)
			if r.Corrected {
				corrected = 1
			}
			args = append(args, r.RunID, r.Symbol, r.Date, r.MarketCap, r.Price, corrected)
		}
		q := fmt.Sprintf("INSERT INTO %s (run_id, symbol, date, market_cap, price, corrected) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			s.l.Error("clickhouse store_snapshot error",
				applogger.String("table", s.table),
				applogger.Int("rows", hi-lo),
				applogger.Error(err),
			)
			return fmt.Errorf("store snapshot: %w", err)
		}
	}
	s.l.Info("clickhouse store_snapshot ok",
		applogger.String("table", s.table),
		applogger.Int("rows", len(rows)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return nil
}

func (s *CHSeriesStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// WithOwner makes Close release c, usually the client owning the pool.
func (s *CHSeriesStore) WithOwner(c io.Closer) *CHSeriesStore {
	s.owner = c
	return s
}

func (s *CHSeriesStore) Close() error {
	if s.owner != nil {
		return s.owner.Close()
	}
	return nil
}
