package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	gerrors "github.com/go-faster/errors"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/Olbrasoft/cr/modules/territory/domain/territory"
)

// SQLiteStore writes through database/sql with ? placeholders. It is used
// with the modernc SQLite driver for local databases.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore returns a store backed by db.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Begin(ctx context.Context) (territory.UnitOfWork, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, gerrors.Wrap(err, "begin tx")
	}
	return &sqliteUnitOfWork{tx: tx}, nil
}

type sqliteUnitOfWork struct {
	tx *sql.Tx
}

func (u *sqliteUnitOfWork) insert(ctx context.Context, table, query string, args ...any) (int64, error) {
	var id int64
	if err := u.tx.QueryRowContext(ctx, questionMarks(query), args...).Scan(&id); err != nil {
		return 0, mapSQLiteError(err, table)
	}
	return id, nil
}

func (u *sqliteUnitOfWork) InsertRegion(ctx context.Context, r territory.Region) (int64, error) {
	return u.insert(ctx, "regions", insertRegionQuery, r.Name(), r.Slug(), r.Code(), r.NUTSCode())
}

func (u *sqliteUnitOfWork) InsertDistrict(ctx context.Context, d territory.District) (int64, error) {
	return u.insert(ctx, "districts", insertDistrictQuery, d.Name(), d.Slug(), d.Code(), d.RegionID())
}

func (u *sqliteUnitOfWork) InsertOffice(ctx context.Context, o territory.Office) (int64, error) {
	return u.insert(ctx, "orp", insertOfficeQuery, o.Name(), o.Slug(), o.Code(), o.DistrictID())
}

func (u *sqliteUnitOfWork) InsertMunicipality(ctx context.Context, m territory.Municipality) (int64, error) {
	return u.insert(ctx, "municipalities", insertMunicipalityQuery,
		m.Name(), m.Slug(), m.Code(), m.SubOfficeCode(), m.OfficeID())
}

func (u *sqliteUnitOfWork) Commit(ctx context.Context) error {
	if err := u.tx.Commit(); err != nil {
		return gerrors.Wrap(err, "commit tx")
	}
	return nil
}

func (u *sqliteUnitOfWork) Rollback(ctx context.Context) error {
	if err := u.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return gerrors.Wrap(err, "rollback tx")
	}
	return nil
}

func mapSQLiteError(err error, table string) error {
	var se *sqlite.Error
	if errors.As(err, &se) {
		code := se.Code()
		unique := code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
		// Without extended result codes only the primary code is set.
		if code == sqlite3.SQLITE_CONSTRAINT && strings.Contains(se.Error(), "UNIQUE") {
			unique = true
		}
		if unique {
			return fmt.Errorf("%w: %s", territory.ErrAlreadyExists, se.Error())
		}
	}
	return gerrors.Wrap(err, "insert "+table)
}
