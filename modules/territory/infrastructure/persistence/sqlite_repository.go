package persistence

import (
	"context"
	"database/sql"
	"errors"

	gerrors "github.com/go-faster/errors"

	"github.com/Olbrasoft/cr/modules/territory/domain/territory"
)

// SQLiteRepository reads the hierarchy through database/sql.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) territory.Reader {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) ListRegions(ctx context.Context) ([]territory.Region, error) {
	return sqlQueryAll(ctx, r.db, listRegionsQuery, scanRegion)
}

func (r *SQLiteRepository) RegionBySlug(ctx context.Context, slug string) (territory.Region, error) {
	return sqlQueryOne(ctx, r.db, regionBySlug, scanRegion, slug)
}

func (r *SQLiteRepository) OfficesByRegion(ctx context.Context, regionID int64) ([]territory.Office, error) {
	return sqlQueryAll(ctx, r.db, officesByRegionQuery, scanOffice, regionID)
}

func (r *SQLiteRepository) OfficeBySlug(ctx context.Context, regionID int64, slug string) (territory.Office, error) {
	return sqlQueryOne(ctx, r.db, officeBySlugQuery, scanOffice, regionID, slug)
}

func (r *SQLiteRepository) MunicipalitiesByOffice(ctx context.Context, officeID int64) ([]territory.Municipality, error) {
	return sqlQueryAll(ctx, r.db, municipalitiesByOfficeQuery, scanMunicipality, officeID)
}

func (r *SQLiteRepository) MunicipalityBySlug(ctx context.Context, officeID int64, slug string) (territory.Municipality, error) {
	return sqlQueryOne(ctx, r.db, municipalityBySlugQuery, scanMunicipality, officeID, slug)
}

func sqlQueryOne[T any](ctx context.Context, db *sql.DB, query string, scan func(rowScanner) (T, error), args ...any) (T, error) {
	var zero T
	v, err := scan(db.QueryRowContext(ctx, questionMarks(query), args...))
	if errors.Is(err, sql.ErrNoRows) {
		return zero, territory.ErrNotFound
	}
	if err != nil {
		return zero, gerrors.Wrap(err, "query")
	}
	return v, nil
}

func sqlQueryAll[T any](ctx context.Context, db *sql.DB, query string, scan func(rowScanner) (T, error), args ...any) ([]T, error) {
	rows, err := db.QueryContext(ctx, questionMarks(query), args...)
	if err != nil {
		return nil, gerrors.Wrap(err, "query")
	}
	defer func() { _ = rows.Close() }()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, gerrors.Wrap(err, "scan")
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, gerrors.Wrap(err, "rows")
	}
	return out, nil
}
