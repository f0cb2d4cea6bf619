package persistence

import (
	"context"
	"errors"
	"fmt"

	gerrors "github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Olbrasoft/cr/modules/territory/domain/territory"
)

const pgUniqueViolation = "23505"

// PgStore writes through a pgx pool; each unit of work is one pgx.Tx.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore returns a store backed by pool.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

func (s *PgStore) Begin(ctx context.Context) (territory.UnitOfWork, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, gerrors.Wrap(err, "begin tx")
	}
	return &pgUnitOfWork{tx: tx}, nil
}

type pgUnitOfWork struct {
	tx pgx.Tx
}

func (u *pgUnitOfWork) insert(ctx context.Context, table, query string, args ...any) (int64, error) {
	var id int64
	if err := u.tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, mapPgError(err, table)
	}
	return id, nil
}

func (u *pgUnitOfWork) InsertRegion(ctx context.Context, r territory.Region) (int64, error) {
	return u.insert(ctx, "regions", insertRegionQuery, r.Name(), r.Slug(), r.Code(), r.NUTSCode())
}

func (u *pgUnitOfWork) InsertDistrict(ctx context.Context, d territory.District) (int64, error) {
	return u.insert(ctx, "districts", insertDistrictQuery, d.Name(), d.Slug(), d.Code(), d.RegionID())
}

func (u *pgUnitOfWork) InsertOffice(ctx context.Context, o territory.Office) (int64, error) {
	return u.insert(ctx, "orp", insertOfficeQuery, o.Name(), o.Slug(), o.Code(), o.DistrictID())
}

func (u *pgUnitOfWork) InsertMunicipality(ctx context.Context, m territory.Municipality) (int64, error) {
	return u.insert(ctx, "municipalities", insertMunicipalityQuery,
		m.Name(), m.Slug(), m.Code(), m.SubOfficeCode(), m.OfficeID())
}

func (u *pgUnitOfWork) Commit(ctx context.Context) error {
	if err := u.tx.Commit(ctx); err != nil {
		return gerrors.Wrap(err, "commit tx")
	}
	return nil
}

func (u *pgUnitOfWork) Rollback(ctx context.Context) error {
	if err := u.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return gerrors.Wrap(err, "rollback tx")
	}
	return nil
}

func mapPgError(err error, table string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %s", territory.ErrAlreadyExists, pgErr.ConstraintName)
	}
	return gerrors.Wrap(err, "insert "+table)
}
