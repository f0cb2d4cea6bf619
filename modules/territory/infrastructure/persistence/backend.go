package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/Olbrasoft/cr/migrations"
	"github.com/Olbrasoft/cr/modules/territory/domain/territory"
	"github.com/Olbrasoft/cr/pkg/composables"
)

var ErrUnsupportedURL = gerrors.New("unsupported database URL")

// Backend bundles the write store, the reader and the raw handle used for
// migrations for one database.
type Backend struct {
	Dialect migrations.Dialect
	Store   territory.Store
	Reader  territory.Reader
	DB      *sql.DB
	// Pool is nil for SQLite.
	Pool *pgxpool.Pool
}

// Open connects to databaseURL. postgres:// and postgresql:// URLs use
// pgx; sqlite://<path> and file:<path> open a local SQLite database.
func Open(ctx context.Context, databaseURL string, connectTimeout time.Duration) (*Backend, error) {
	raw := strings.TrimSpace(databaseURL)
	switch {
	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"):
		return openPostgres(ctx, raw, connectTimeout)
	case strings.HasPrefix(raw, "sqlite://"):
		return openSQLite(ctx, strings.TrimPrefix(raw, "sqlite://"))
	case strings.HasPrefix(raw, "file:"):
		return openSQLite(ctx, strings.TrimPrefix(raw, "file:"))
	default:
		scheme := raw
		if u, err := url.Parse(raw); err == nil && u.Scheme != "" {
			scheme = u.Scheme
		}
		return nil, fmt.Errorf("%w: %q (expected postgres://, postgresql://, sqlite:// or file:)", ErrUnsupportedURL, scheme)
	}
}

func openPostgres(ctx context.Context, databaseURL string, connectTimeout time.Duration) (*Backend, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, gerrors.Wrap(err, "parse database url")
	}
	config.MaxConns = 4
	config.MinConns = 1
	config.MaxConnLifetime = time.Minute * 5
	config.MaxConnIdleTime = time.Second * 30

	if connectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, connectTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, gerrors.Wrap(err, "db connect failed")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, gerrors.Wrap(err, "db connect failed")
	}

	return &Backend{
		Dialect: migrations.DialectPostgres,
		Store:   NewPgStore(pool),
		Reader:  NewPgRepository(),
		DB:      stdlib.OpenDBFromPool(pool),
		Pool:    pool,
	}, nil
}

func openSQLite(ctx context.Context, path string) (*Backend, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty sqlite path", ErrUnsupportedURL)
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	dsn := path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, gerrors.Wrap(err, "open sqlite")
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, gerrors.Wrap(err, "open sqlite")
	}
	return &Backend{
		Dialect: migrations.DialectSQLite,
		Store:   NewSQLiteStore(db),
		Reader:  NewSQLiteRepository(db),
		DB:      db,
	}, nil
}

// Context attaches the pool to ctx so PgRepository can find it.
func (b *Backend) Context(ctx context.Context) context.Context {
	if b.Pool == nil {
		return ctx
	}
	return composables.WithPool(ctx, b.Pool)
}

// ReadTx runs fn so that all its reads see one snapshot. On Postgres fn
// gets a context carrying a transaction; SQLite reads run directly.
func (b *Backend) ReadTx(ctx context.Context, fn func(context.Context) error) error {
	if b.Pool == nil {
		return fn(ctx)
	}
	return composables.InTx(b.Context(ctx), fn)
}

func (b *Backend) Migrate(ctx context.Context) ([]int64, error) {
	return migrations.Up(ctx, b.DB, b.Dialect)
}

// EnsureEmpty fails when any territory table already holds rows; the
// import only ever creates the hierarchy from scratch.
func (b *Backend) EnsureEmpty(ctx context.Context) error {
	for _, table := range territoryTables {
		var n int64
		if err := b.DB.QueryRowContext(ctx, "SELECT count(*) FROM "+table).Scan(&n); err != nil {
			return gerrors.Wrap(err, "check "+table+" empty")
		}
		if n > 0 {
			return fmt.Errorf("%w: %s already has %d rows", territory.ErrNotEmpty, table, n)
		}
	}
	return nil
}

func (b *Backend) Close() {
	if b.DB != nil {
		_ = b.DB.Close()
	}
	if b.Pool != nil {
		b.Pool.Close()
	}
}
