package territory

import (
	"strings"
	"time"
)

type District struct {
	id        int64
	name      string
	slug      string
	code      string
	regionID  int64
	createdAt time.Time
}

func NewDistrict(name, slug, code string, regionID int64) District {
	return District{
		name:     strings.TrimSpace(name),
		slug:     slug,
		code:     strings.TrimSpace(code),
		regionID: regionID,
	}
}

func HydrateDistrict(id int64, name, slug, code string, regionID int64, createdAt time.Time) District {
	d := NewDistrict(name, slug, code, regionID)
	d.id = id
	d.createdAt = createdAt
	return d
}

func (d District) ID() int64            { return d.id }
func (d District) Name() string         { return d.name }
func (d District) Slug() string         { return d.slug }
func (d District) Code() string         { return d.code }
func (d District) RegionID() int64      { return d.regionID }
func (d District) CreatedAt() time.Time { return d.createdAt }
