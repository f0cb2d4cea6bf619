package persistence

import (
	"context"
	"errors"

	gerrors "github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/Olbrasoft/cr/modules/territory/domain/territory"
	"github.com/Olbrasoft/cr/pkg/composables"
)

// PgRepository reads through the transaction or pool carried by ctx.
type PgRepository struct{}

func NewPgRepository() territory.Reader {
	return &PgRepository{}
}

func (r *PgRepository) ListRegions(ctx context.Context) ([]territory.Region, error) {
	return pgQueryAll(ctx, listRegionsQuery, scanRegion)
}

func (r *PgRepository) RegionBySlug(ctx context.Context, slug string) (territory.Region, error) {
	return pgQueryOne(ctx, regionBySlug, scanRegion, slug)
}

func (r *PgRepository) OfficesByRegion(ctx context.Context, regionID int64) ([]territory.Office, error) {
	return pgQueryAll(ctx, officesByRegionQuery, scanOffice, regionID)
}

func (r *PgRepository) OfficeBySlug(ctx context.Context, regionID int64, slug string) (territory.Office, error) {
	return pgQueryOne(ctx, officeBySlugQuery, scanOffice, regionID, slug)
}

func (r *PgRepository) MunicipalitiesByOffice(ctx context.Context, officeID int64) ([]territory.Municipality, error) {
	return pgQueryAll(ctx, municipalitiesByOfficeQuery, scanMunicipality, officeID)
}

func (r *PgRepository) MunicipalityBySlug(ctx context.Context, officeID int64, slug string) (territory.Municipality, error) {
	return pgQueryOne(ctx, municipalityBySlugQuery, scanMunicipality, officeID, slug)
}

func pgQueryOne[T any](ctx context.Context, query string, scan func(rowScanner) (T, error), args ...any) (T, error) {
	var zero T
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return zero, err
	}
	v, err := scan(tx.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return zero, territory.ErrNotFound
	}
	if err != nil {
		return zero, gerrors.Wrap(err, "query")
	}
	return v, nil
}

func pgQueryAll[T any](ctx context.Context, query string, scan func(rowScanner) (T, error), args ...any) ([]T, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, gerrors.Wrap(err, "query")
	}
	defer rows.Close()

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
