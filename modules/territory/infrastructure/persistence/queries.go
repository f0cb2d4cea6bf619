package persistence

import (
	"fmt"
	"regexp"
	"time"

	"github.com/Olbrasoft/cr/modules/territory/domain/territory"
)

const (
	insertRegionQuery = `INSERT INTO regions (name, slug, region_code, nuts_code)
VALUES ($1, $2, $3, $4) RETURNING id`
	insertDistrictQuery = `INSERT INTO districts (name, slug, district_code, region_id)
VALUES ($1, $2, $3, $4) RETURNING id`
	insertOfficeQuery = `INSERT INTO orp (name, slug, orp_code, district_id)
VALUES ($1, $2, $3, $4) RETURNING id`
	insertMunicipalityQuery = `INSERT INTO municipalities (name, slug, municipality_code, pou_code, orp_id)
VALUES ($1, $2, $3, $4, $5) RETURNING id`

	selectRegions    = `SELECT id, name, slug, region_code, nuts_code, created_at FROM regions`
	listRegionsQuery = selectRegions + ` ORDER BY name, id`
	regionBySlug     = selectRegions + ` WHERE slug = $1`

	selectOffices = `SELECT o.id, o.name, o.slug, o.orp_code, o.district_id, o.created_at
FROM orp o JOIN districts d ON d.id = o.district_id`
	officesByRegionQuery = selectOffices + ` WHERE d.region_id = $1 ORDER BY o.name, o.id`
	officeBySlugQuery    = selectOffices + ` WHERE d.region_id = $1 AND o.slug = $2`

	selectMunicipalities = `SELECT id, name, slug, municipality_code, pou_code, orp_id, created_at
FROM municipalities`
	municipalitiesByOfficeQuery = selectMunicipalities + ` WHERE orp_id = $1 ORDER BY name, id`
	municipalityBySlugQuery     = selectMunicipalities + ` WHERE orp_id = $1 AND slug = $2`
)

// territoryTables lists the tables in dependency order, parents first.
var territoryTables = []string{"regions", "districts", "orp", "municipalities"}

var placeholder = regexp.MustCompile(`\$\d+`)

// questionMarks rewrites $N placeholders to ?. Every query above uses each
// parameter once and in ascending order.
func questionMarks(q string) string {
	return placeholder.ReplaceAllString(q, "?")
}

type rowScanner interface {
	Scan(dest ...any) error
}

// timestamp scans TIMESTAMPTZ values from pgx as well as the text form
// SQLite stores for CURRENT_TIMESTAMP.
type timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func (t *timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = v
		return nil
	case []byte:
		return t.parse(string(v))
	case string:
		return t.parse(v)
	default:
		return fmt.Errorf("cannot scan %T into timestamp", src)
	}
}

func (t *timestamp) parse(s string) error {
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

func scanRegion(s rowScanner) (territory.Region, error) {
	var (
		id                   int64
		name, sl, code, nuts string
		createdAt            timestamp
	)
	if err := s.Scan(&id, &name, &sl, &code, &nuts, &createdAt); err != nil {
		return territory.Region{}, err
	}
	return territory.HydrateRegion(id, name, sl, code, nuts, createdAt.Time), nil
}

func scanOffice(s rowScanner) (territory.Office, error) {
	var (
		id, districtID int64
		name, sl, code string
		createdAt      timestamp
	)
	if err := s.Scan(&id, &name, &sl, &code, &districtID, &createdAt); err != nil {
		return territory.Office{}, err
	}
	return territory.HydrateOffice(id, name, sl, code, districtID, createdAt.Time), nil
}

func scanMunicipality(s rowScanner) (territory.Municipality, error) {
	var (
		id, officeID        int64
		name, sl, code, pou string
		createdAt           timestamp
	)
	if err := s.Scan(&id, &name, &sl, &code, &pou, &officeID, &createdAt); err != nil {
		return territory.Municipality{}, err
	}
	return territory.HydrateMunicipality(id, name, sl, code, pou, officeID, createdAt.Time), nil
}
