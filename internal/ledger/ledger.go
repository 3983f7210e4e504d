// Package ledger keeps a SQLite history of conformance reports so that a
// changed checksum between runs can be flagged.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/wippyai/lexconv/conformance"
)

var (
	// ErrClosed is returned by Ledger methods when the ledger has been closed.
	ErrClosed = errors.New("ledger is closed")
)

const (
	memory = ":memory:"
)

var memoryID atomic.Int64

// Ledger is a report history backed by SQLite.
type Ledger struct {
	cfg *Config
	db  *sql.DB
}

// Entry is a recorded report.
type Entry struct {
	conformance.Report
	RecordedAt time.Time
}

// Regression is a report whose checksum differs from the last recorded one
// with the same key.
type Regression struct {
	Key      string
	Previous uint32
	Current  uint32
}

// Open creates or opens a ledger with the provided configuration functions.
//
// Default configuration:
//   - File: ":memory:" (in-memory database)
//   - Conns: 1
func Open(configFuncs ...ConfigFunc) (*Ledger, error) {
	cfg := &Config{}
	cfg.File(memory)
	cfg.Conns(1)
	for _, cf := range configFuncs {
		cf(cfg)
	}

	db, err := open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	if err := setup(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("setup: %w", err)
	}

	return &Ledger{cfg: cfg, db: db}, nil
}

// Record stores reports in one transaction.
//
// Returns [ErrClosed] if the ledger has been closed.
func (l *Ledger) Record(ctx context.Context, reports ...conformance.Report) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return closedOr(err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UnixMilli()
	for _, r := range reports {
		if _, err := tx.ExecContext(ctx,
			`
			insert into report (
				key,
				codec,
				width,
				pattern,
				reference,
				atoms,
				calls,
				checksum,
				recorded_at
			) values (
				:key,
				:codec,
				:width,
				:pattern,
				:reference,
				:atoms,
				:calls,
				:checksum,
				:recorded_at
			)
			`,
			sql.Named("key", r.Key()),
			sql.Named("codec", r.Codec),
			sql.Named("width", r.Width),
			sql.Named("pattern", r.Pattern),
			sql.Named("reference", r.ReferenceFile),
			sql.Named("atoms", r.AtomCount),
			sql.Named("calls", r.Calls),
			sql.Named("checksum", int64(r.Checksum)),
			sql.Named("recorded_at", now),
		); err != nil {
			return fmt.Errorf("insert %s: %w", r.Key(), err)
		}
	}
	return tx.Commit()
}

// Last returns the most recently recorded report for key. The boolean is
// false when nothing was recorded yet.
func (l *Ledger) Last(ctx context.Context, key string) (Entry, bool, error) {
	var (
		e        Entry
		checksum int64
		at       int64
	)
	err := l.db.QueryRowContext(ctx,
		`
		select
			codec,
			width,
			pattern,
			reference,
			atoms,
			calls,
			checksum,
			recorded_at
		from
			report
		where
			key = :key
		order by
			id desc
		limit 1
		`,
		sql.Named("key", key),
	).Scan(
		&e.Codec,
		&e.Width,
		&e.Pattern,
		&e.ReferenceFile,
		&e.AtomCount,
		&e.Calls,
		&checksum,
		&at,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	} else if err != nil {
		return Entry{}, false, closedOr(err)
	}

	e.Checksum = uint32(checksum)
	e.RecordedAt = time.UnixMilli(at)
	return e, true, nil
}

// Regressions compares reports with the last recorded run of each key.
// Keys without history are not regressions.
func (l *Ledger) Regressions(ctx context.Context, reports []conformance.Report) ([]Regression, error) {
	var out []Regression
	for _, r := range reports {
		prev, ok, err := l.Last(ctx, r.Key())
		if err != nil {
			return nil, err
		}
		if ok && prev.Checksum != r.Checksum {
			out = append(out, Regression{Key: r.Key(), Previous: prev.Checksum, Current: r.Checksum})
		}
	}
	return out, nil
}

// Close closes the underlying SQLite database.
//
// After closing, all methods on Ledger will return [ErrClosed].
func (l *Ledger) Close() error {
	return l.db.Close()
}

func closedOr(err error) error {
	if err != nil && err.Error() == "sql: database is closed" {
		return ErrClosed
	}
	return err
}

func open(cfg *Config) (*sql.DB, error) {
	params := url.Values{}
	params.Add("_txlock", "immediate")
	params.Add("_timeout", "5000") // 5s
	name := cfg.file
	if name == memory {
		name = "ledger-" + strconv.Itoa(os.Getpid()) + "-" + strconv.FormatInt(memoryID.Add(1), 10)
		params.Add("mode", "memory")
		params.Add("cache", "shared")
	} else {
		params.Add("_journal", "wal")
		params.Add("_sync", "normal")
	}

	uri := url.URL{Scheme: "file", Opaque: name, RawQuery: params.Encode()}
	db, err := sql.Open("sqlite3", uri.String())
	if err != nil {
		return nil, err
	}

	db.SetConnMaxIdleTime(0)
	db.SetConnMaxLifetime(0)
	if params.Get("mode") == "memory" {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		db.SetMaxOpenConns(cfg.conns)
		db.SetMaxIdleConns(cfg.conns)
	}

	return db, nil
}

func setup(db *sql.DB) error {
	if _, err := db.Exec(
		`
		create table if not exists report (
			id          integer primary key autoincrement,
			key         text not null,
			codec       text not null,
			width       int not null,
			pattern     text not null,
			reference   text not null,
			atoms       int not null,
			calls       int not null,
			checksum    int not null,
			recorded_at int not null
		) strict
		`,
	); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(
		`
		create index if not exists idx_report_key
		on report (key, id)
		`,
	); err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	return nil
}
