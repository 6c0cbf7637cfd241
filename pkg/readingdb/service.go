// Package readingdb stores readings in a relational sensor_data table.
// PostgreSQL and SQLite are supported, chosen by the connection string.
// Every write is a single row insert, so no cross statement transactions are needed.
package readingdb

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"
	"time"

	"github.com/AdilzhanB/Spilldataserver/pkg/types"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const DefaultTimeout = 5 * time.Second

//go:embed schema/*.sql
var schemaFS embed.FS

type Options struct {
	// Upper bound for connecting and for each statement.
	Timeout time.Duration
	Logger  *zap.Logger
}

type Store struct {
	db      *sql.DB
	dialect dialect
	timeout time.Duration
	log     *zap.Logger
}

// Open connects using dsn and creates the sensor_data table when missing.
// Any failure wraps types.ErrBackendUnavailable.
func Open(ctx context.Context, dsn string, opts Options) (*Store, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	d, driverDSN, err := parseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrBackendUnavailable, err)
	}

	db, err := sql.Open(d.driver, driverDSN)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", types.ErrBackendUnavailable, d.name, err)
	}
	if d.singleConn {
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db, dialect: d, timeout: opts.Timeout, log: opts.Logger}

	pingCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping %s: %v", types.ErrBackendUnavailable, d.name, err)
	}

	if err := s.createSchema(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: create schema: %v", types.ErrBackendUnavailable, err)
	}

	s.log.Info("relational storage ready", zap.String("dialect", d.name))
	return s, nil
}

func (s *Store) createSchema(ctx context.Context) error {
	ddl, err := schemaFS.ReadFile(s.dialect.schema)
	if err != nil {
		return err
	}
	// One statement per Exec, drivers differ in multi statement support.
	for _, stmt := range strings.Split(string(ddl), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Dialect reports "sqlite" or "postgres".
func (s *Store) Dialect() string {
	return s.dialect.name
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
