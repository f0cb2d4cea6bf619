package territory

import "context"

// Store opens units of work against the territory tables.
type Store interface {
	Begin(ctx context.Context) (UnitOfWork, error)
}

// UnitOfWork is one atomic write scope. Nothing inserted through it is
// visible to readers until Commit succeeds. Rollback after a successful
// Commit is a no-op, so callers may always defer it.
type UnitOfWork interface {
	InsertRegion(ctx context.Context, r Region) (int64, error)
	InsertDistrict(ctx context.Context, d District) (int64, error)
	InsertOffice(ctx context.Context, o Office) (int64, error)
	InsertMunicipality(ctx context.Context, m Municipality) (int64, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Reader serves slug lookups for the public portal.
type Reader interface {
	ListRegions(ctx context.Context) ([]Region, error)
	RegionBySlug(ctx context.Context, slug string) (Region, error)
	OfficesByRegion(ctx context.Context, regionID int64) ([]Office, error)
	OfficeBySlug(ctx context.Context, regionID int64, slug string) (Office, error)
	MunicipalitiesByOffice(ctx context.Context, officeID int64) ([]Municipality, error)
	MunicipalityBySlug(ctx context.Context, officeID int64, slug string) (Municipality, error)
}
