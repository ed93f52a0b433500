package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/onokazu777/edinet-viewer/internal/cache"
)

// Dialect selects the storage backend.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgresql"
)

// Options configures Open.
type Options struct {
	Dialect Dialect
	Path    string // SQLite database file
	DSN     string // PostgreSQL connection string
}

// Store provides read-only access to the disclosure database produced by
// the ingestion pipeline. All queries are parameterized; identifier and
// keyword inputs are never interpolated into SQL text.
type Store struct {
	db      *sql.DB
	dialect Dialect
	caps    Capabilities
	memo    *cache.Memo
	logger  *slog.Logger
}

// Open connects to the configured backend and resolves the schema
// capability descriptor once. A missing SQLite file reports
// ErrStorageUnavailable rather than a driver error.
func Open(ctx context.Context, opts Options, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		db  *sql.DB
		err error
	)
	switch opts.Dialect {
	case DialectPostgres:
		db, err = sql.Open("pgx", opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("opening postgres connection: %w", err)
		}
	case DialectSQLite, "":
		if _, statErr := os.Stat(opts.Path); statErr != nil {
			return nil, fmt.Errorf("database file %s: %w", opts.Path, ErrStorageUnavailable)
		}
		db, err = sql.Open("sqlite", "file:"+opts.Path+"?mode=ro")
		if err != nil {
			return nil, fmt.Errorf("opening sqlite database: %w", err)
		}
		opts.Dialect = DialectSQLite
	default:
		return nil, fmt.Errorf("unsupported storage dialect %q", opts.Dialect)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging %s backend: %w", opts.Dialect, ErrStorageUnavailable)
	}

	s := &Store{
		db:      db,
		dialect: opts.Dialect,
		memo:    cache.New(),
		logger:  logger,
	}

	caps, err := resolveCapabilities(ctx, s)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("resolving schema capabilities: %w", err)
	}
	s.caps = caps
	logger.Debug("storage opened",
		"dialect", string(opts.Dialect),
		"financials", caps.HasFinancials,
		"key_financials", caps.HasKeyFinancials,
		"text_blocks", caps.HasTextBlocks,
	)
	return s, nil
}

// Capabilities reports the resolved schema capability descriptor.
func (s *Store) Capabilities() Capabilities {
	return s.caps
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// rebind converts ?-style placeholders to the backend's notation.
func (s *Store) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	return rows, nil
}

func (s *Store) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, s.rebind(query), args...)
}

// inPlaceholders builds a "?, ?, ?" list for a variable-length IN clause.
func inPlaceholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
