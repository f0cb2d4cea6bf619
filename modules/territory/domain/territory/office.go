package territory

import (
	"strings"
	"time"
)

// Office is a municipality with extended powers (ORP), the administrative
// level between a district and its municipalities.
type Office struct {
	id         int64
	name       string
	slug       string
	code       string
	districtID int64
	createdAt  time.Time
}

func NewOffice(name, slug, code string, districtID int64) Office {
	return Office{
		name:       strings.TrimSpace(name),
		slug:       slug,
		code:       strings.TrimSpace(code),
		districtID: districtID,
	}
}

func HydrateOffice(id int64, name, slug, code string, districtID int64, createdAt time.Time) Office {
	o := NewOffice(name, slug, code, districtID)
	o.id = id
	o.createdAt = createdAt
	return o
}

func (o Office) ID() int64            { return o.id }
func (o Office) Name() string         { return o.name }
func (o Office) Slug() string         { return o.slug }
func (o Office) Code() string         { return o.code }
func (o Office) DistrictID() int64    { return o.districtID }
func (o Office) CreatedAt() time.Time { return o.createdAt }
