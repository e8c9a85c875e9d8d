// Package sql implements a batchwriter.Sink storing predictions in a SQL
// database in long format:
//
//	<prefix>variants    (run_id, row_idx, chr, pos, id, ref, alt, line_idx)
//	<prefix>predictions (run_id, row_idx, method, column_name, value)
//
// line_idx is NULL for batches without line ids. Every batch is written in
// one transaction, so a failing batch leaves no
// rows behind. SQLite (modernc.org/sqlite) and PostgreSQL (pgx) are
// supported.
package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"             // pure go sqlite driver

	"github.com/hupe1980/veffgo"
	"github.com/hupe1980/veffgo/batchwriter"
)

// Dialect selects the driver and SQL flavour.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

// Driver returns the database/sql driver name.
func (d Dialect) Driver() string {
	if d == Postgres {
		return "pgx"
	}
	return "sqlite"
}

func (d Dialect) placeholders(n int) string {
	ph := make([]string, n)
	for i := range ph {
		if d == Postgres {
			ph[i] = fmt.Sprintf("$%d", i+1)
		} else {
			ph[i] = "?"
		}
	}
	return strings.Join(ph, ",")
}

var identifierRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Sink writes flat batches to two tables.
type Sink struct {
	db      *sql.DB
	own     bool
	dialect Dialect
	prefix  string
	runID   string
	next    int64
	closed  bool
}

var _ batchwriter.Sink = (*Sink)(nil)

// Option configures a Sink.
type Option func(*Sink)

// WithTablePrefix prefixes both table names. Default: "veff_".
func WithTablePrefix(prefix string) Option {
	return func(s *Sink) {
		s.prefix = prefix
	}
}

// WithRunID tags every row with id instead of a random UUID.
func WithRunID(id string) Option {
	return func(s *Sink) {
		s.runID = id
	}
}

// Open connects to dsn and prepares the tables. The connection is closed by
// Close.
func Open(ctx context.Context, d Dialect, dsn string, optFns ...Option) (*Sink, error) {
	db, err := sql.Open(d.Driver(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.Driver(), err)
	}
	if d == SQLite {
		// One connection keeps ":memory:" databases alive and matches
		// SQLite's single-writer model.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", d.Driver(), err)
	}
	s, err := New(ctx, db, d, optFns...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.own = true
	return s, nil
}

// New prepares the tables on db. The caller keeps ownership of db.
func New(ctx context.Context, db *sql.DB, d Dialect, optFns ...Option) (*Sink, error) {
	s := &Sink{db: db, dialect: d, prefix: "veff_"}
	for _, fn := range optFns {
		fn(s)
	}
	if s.prefix != "" && !identifierRE.MatchString(s.prefix) {
		return nil, fmt.Errorf("sql: invalid table prefix %q", s.prefix)
	}
	if s.runID == "" {
		s.runID = uuid.NewString()
	}
	if err := s.ensureTables(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// VariantsTable returns the name of the variants table.
func (s *Sink) VariantsTable() string { return s.prefix + "variants" }

// PredictionsTable returns the name of the predictions table.
func (s *Sink) PredictionsTable() string { return s.prefix + "predictions" }

// RunID returns the identifier tagging this sink's rows.
func (s *Sink) RunID() string { return s.runID }

// DB returns the underlying database handle.
func (s *Sink) DB() *sql.DB { return s.db }

func (s *Sink) ensureTables(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS ` + s.VariantsTable() + ` (
			run_id TEXT NOT NULL,
			row_idx BIGINT NOT NULL,
			chr TEXT NOT NULL,
			pos BIGINT NOT NULL,
			id TEXT NOT NULL,
			ref TEXT NOT NULL,
			alt TEXT NOT NULL,
			line_idx TEXT,
			PRIMARY KEY (run_id, row_idx)
		)`,
		`CREATE TABLE IF NOT EXISTS ` + s.PredictionsTable() + ` (
			run_id TEXT NOT NULL,
			row_idx BIGINT NOT NULL,
			method TEXT NOT NULL,
			column_name TEXT NOT NULL,
			value DOUBLE PRECISION,
			PRIMARY KEY (run_id, row_idx, method, column_name)
		)`,
	}
	for _, stmt := range ddl {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}
	return nil
}

// BatchWrite implements batchwriter.Sink.
func (s *Sink) BatchWrite(ctx context.Context, f *batchwriter.Flat) (retErr error) {
	if s.closed {
		return veffgo.ErrClosed
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return veffgo.NewIOError("begin", s.VariantsTable(), err)
	}
	defer func() {
		if retErr != nil {
			retErr = errors.Join(retErr, ignoreDone(tx.Rollback()))
		}
	}()

	variants, err := tx.PrepareContext(ctx, `INSERT INTO `+s.VariantsTable()+
		` (run_id, row_idx, chr, pos, id, ref, alt, line_idx) VALUES (`+s.dialect.placeholders(8)+`)`)
	if err != nil {
		return veffgo.NewIOError("prepare", s.VariantsTable(), err)
	}
	defer variants.Close()
	preds, err := tx.PrepareContext(ctx, `INSERT INTO `+s.PredictionsTable()+
		` (run_id, row_idx, method, column_name, value) VALUES (`+s.dialect.placeholders(5)+`)`)
	if err != nil {
		return veffgo.NewIOError("prepare", s.PredictionsTable(), err)
	}
	defer preds.Close()

	for i := range f.Len() {
		row := s.next + int64(i)
		var lineIdx any
		if f.HasLineIdx() {
			lineIdx = f.LineIdx[i]
		}
		if _, err := variants.ExecContext(ctx, s.runID, row, f.Chrom[i], f.Pos[i], f.ID[i], f.Ref[i], f.Alt[i], lineIdx); err != nil {
			return veffgo.NewIOError("insert", s.VariantsTable(), err)
		}
		for _, p := range f.Preds {
			for j, c := range p.Columns {
				if _, err := preds.ExecContext(ctx, s.runID, row, p.Method, c, p.Values[j][i]); err != nil {
					return veffgo.NewIOError("insert", s.PredictionsTable(), err)
				}
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return veffgo.NewIOError("commit", s.VariantsTable(), err)
	}
	s.next += int64(f.Len())
	return nil
}

func ignoreDone(err error) error {
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

// Close releases the connection if the sink opened it. It is idempotent.
func (s *Sink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if !s.own {
		return nil
	}
	return s.db.Close()
}
