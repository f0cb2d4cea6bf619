package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Olbrasoft/cr/modules/territory/domain/territory"
	"github.com/Olbrasoft/cr/pkg/slug"
)

// ImportOptions tunes a single Import call.
type ImportOptions struct {
	// Strict fails the run when a code reappears with a different name or
	// parent. Otherwise the first occurrence wins.
	Strict bool
}

// ImportResult reports what one committed import created.
type ImportResult struct {
	Counts territory.Counts

	// Natural key to surrogate id, per level.
	Regions        map[string]int64
	Districts      map[string]int64
	Offices        map[string]int64
	Municipalities map[string]int64
}

// ImportService turns parsed rows into a persisted territorial hierarchy.
type ImportService struct {
	store  territory.Store
	logger logrus.FieldLogger
}

// NewImportService returns a service writing through store.
func NewImportService(store territory.Store, logger logrus.FieldLogger) *ImportService {
	return &ImportService{store: store, logger: logger}
}

// Import writes the hierarchy described by rows in four passes, top level
// first, inside a single unit of work. On any error the unit of work is
// rolled back and nothing from this run is persisted.
func (s *ImportService) Import(ctx context.Context, rows []territory.Row, opts ImportOptions) (*ImportResult, error) {
	if len(rows) == 0 {
		return nil, &territory.ImportError{Kind: territory.KindParse, Err: territory.ErrNoRows}
	}

	uow, err := s.store.Begin(ctx)
	if err != nil {
		return nil, &territory.ImportError{Kind: territory.KindPersistence, Err: fmt.Errorf("begin: %w", err)}
	}

	result, err := s.runPasses(ctx, uow, rows, opts)
	if err != nil {
		if rErr := uow.Rollback(ctx); rErr != nil {
			return nil, errors.Join(err, fmt.Errorf("rollback: %w", rErr))
		}
		return nil, err
	}
	if err := uow.Commit(ctx); err != nil {
		_ = uow.Rollback(ctx)
		return nil, &territory.ImportError{Kind: territory.KindPersistence, Err: fmt.Errorf("commit: %w", err)}
	}

	s.logger.WithFields(logrus.Fields{
		"regions":        result.Counts.Regions,
		"districts":      result.Counts.Districts,
		"offices":        result.Counts.Offices,
		"municipalities": result.Counts.Municipalities,
		"total":          result.Counts.Total(),
	}).Info("territory import committed")
	return result, nil
}

func (s *ImportService) runPasses(ctx context.Context, uow territory.UnitOfWork, rows []territory.Row, opts ImportOptions) (*ImportResult, error) {
	regionIDs, err := s.dedupPass(territory.LevelRegion, rows, nil, opts,
		func(row territory.Row, slug string, _ int64) (int64, error) {
			return uow.InsertRegion(ctx, territory.NewRegion(row.RegionName, slug, row.RegionCode, row.RegionNUTSCode))
		})
	if err != nil {
		return nil, err
	}

	districtIDs, err := s.dedupPass(territory.LevelDistrict, rows, regionIDs, opts,
		func(row territory.Row, slug string, regionID int64) (int64, error) {
			return uow.InsertDistrict(ctx, territory.NewDistrict(row.DistrictName, slug, row.DistrictCode, regionID))
		})
	if err != nil {
		return nil, err
	}

	officeIDs, err := s.dedupPass(territory.LevelOffice, rows, districtIDs, opts,
		func(row territory.Row, slug string, districtID int64) (int64, error) {
			return uow.InsertOffice(ctx, territory.NewOffice(row.OfficeName, slug, row.OfficeCode, districtID))
		})
	if err != nil {
		return nil, err
	}

	municipalityIDs, inserted, err := s.municipalityPass(ctx, uow, rows, officeIDs)
	if err != nil {
		return nil, err
	}

	return &ImportResult{
		Counts: territory.Counts{
			Regions:        len(regionIDs),
			Districts:      len(districtIDs),
			Offices:        len(officeIDs),
			Municipalities: inserted,
		},
		Regions:        regionIDs,
		Districts:      districtIDs,
		Offices:        officeIDs,
		Municipalities: municipalityIDs,
	}, nil
}

type insertFunc func(row territory.Row, slug string, parentID int64) (int64, error)

// dedupPass inserts one record per distinct natural key of level, in order
// of first appearance. parentIDs is the previous pass's result and is nil
// for the top level.
func (s *ImportService) dedupPass(
	level territory.Level,
	rows []territory.Row,
	parentIDs map[string]int64,
	opts ImportOptions,
	insert insertFunc,
) (map[string]int64, error) {
	ids := make(map[string]int64)
	firstSeen := make(map[string]territory.Row)
	claims := slugClaims{}

	for _, row := range rows {
		code := row.NaturalKey(level)
		if first, ok := firstSeen[code]; ok {
			if opts.Strict {
				if err := checkConsistent(level, first, row); err != nil {
					return nil, err
				}
			}
			continue
		}

		var parentID int64
		if parentIDs != nil {
			id, err := resolveParent(level, row, parentIDs)
			if err != nil {
				return nil, err
			}
			parentID = id
		}

		// Regions, districts and offices are addressed by slug nationwide.
		sl, err := claims.claim(level, row, 0)
		if err != nil {
			return nil, err
		}

		id, err := insert(row, sl, parentID)
		if err != nil {
			return nil, persistenceError(level, row, err)
		}
		ids[code] = id
		firstSeen[code] = row

		s.logger.WithFields(logrus.Fields{
			"level": level,
			"code":  code,
			"slug":  sl,
			"id":    id,
		}).Debug("inserted")
	}

	s.logger.WithFields(logrus.Fields{"level": level, "inserted": len(ids)}).Info("pass complete")
	return ids, nil
}

// municipalityPass inserts one municipality per row; the source never
// repeats a municipality code.
func (s *ImportService) municipalityPass(
	ctx context.Context,
	uow territory.UnitOfWork,
	rows []territory.Row,
	officeIDs map[string]int64,
) (map[string]int64, int, error) {
	level := territory.LevelMunicipality
	ids := make(map[string]int64, len(rows))
	claims := slugClaims{}

	for _, row := range rows {
		officeID, err := resolveParent(level, row, officeIDs)
		if err != nil {
			return nil, 0, err
		}
		sl, err := claims.claim(level, row, officeID)
		if err != nil {
			return nil, 0, err
		}

		m := territory.NewMunicipality(row.MunicipalityName, sl, row.MunicipalityCode, row.SubOfficeCode, officeID)
		id, err := uow.InsertMunicipality(ctx, m)
		if err != nil {
			return nil, 0, persistenceError(level, row, err)
		}
		ids[row.MunicipalityCode] = id
	}

	s.logger.WithFields(logrus.Fields{"level": level, "inserted": len(rows)}).Info("pass complete")
	return ids, len(rows), nil
}

func resolveParent(level territory.Level, row territory.Row, parentIDs map[string]int64) (int64, error) {
	parent, _ := level.Parent()
	key := row.NaturalKey(parent)
	id, ok := parentIDs[key]
	if !ok {
		return 0, &territory.ImportError{
			Kind:  territory.KindReferential,
			Level: level,
			Line:  row.Line,
			Name:  row.Name(level),
			Code:  row.NaturalKey(level),
			Err:   fmt.Errorf("%w: %s %s", territory.ErrUnresolvedParent, parent, key),
		}
	}
	return id, nil
}

func checkConsistent(level territory.Level, first, row territory.Row) error {
	var diff string
	if first.Name(level) != row.Name(level) {
		diff = fmt.Sprintf("name %q, line %d has %q", row.Name(level), first.Line, first.Name(level))
	} else if parent, ok := level.Parent(); ok && first.NaturalKey(parent) != row.NaturalKey(parent) {
		diff = fmt.Sprintf("%s %s, line %d has %s", parent, row.NaturalKey(parent), first.Line, first.NaturalKey(parent))
	}
	if diff == "" {
		return nil
	}
	return &territory.ImportError{
		Kind:  territory.KindReferential,
		Level: level,
		Line:  row.Line,
		Name:  row.Name(level),
		Code:  row.NaturalKey(level),
		Err:   fmt.Errorf("%w: %s", territory.ErrInconsistentRow, diff),
	}
}

func persistenceError(level territory.Level, row territory.Row, err error) error {
	return &territory.ImportError{
		Kind:  territory.KindPersistence,
		Level: level,
		Line:  row.Line,
		Name:  row.Name(level),
		Code:  row.NaturalKey(level),
		Err:   fmt.Errorf("insert %s: %w", level, err),
	}
}

type slugScope struct {
	parentID int64
	slug     string
}

// slugClaims remembers which natural key owns each slug within a scope.
type slugClaims map[slugScope]string

func (c slugClaims) claim(level territory.Level, row territory.Row, parentID int64) (string, error) {
	name, code := row.Name(level), row.NaturalKey(level)
	sl := slug.Make(name)
	if sl == "" {
		return "", &territory.ImportError{
			Kind:  territory.KindSlugConflict,
			Level: level,
			Line:  row.Line,
			Name:  name,
			Code:  code,
			Err:   territory.ErrEmptySlug,
		}
	}
	key := slugScope{parentID: parentID, slug: sl}
	if owner, ok := c[key]; ok && owner != code {
		return "", &territory.ImportError{
			Kind:  territory.KindSlugConflict,
			Level: level,
			Line:  row.Line,
			Name:  name,
			Code:  code,
			Err:   fmt.Errorf("%w: %q belongs to %s %s", territory.ErrSlugConflict, sl, level, owner),
		}
	}
	c[key] = code
	return sl, nil
}
