package territory

import (
	"strings"
	"time"
)

type Region struct {
	id        int64
	name      string
	slug      string
	code      string
	nutsCode  string
	createdAt time.Time
}

func NewRegion(name, slug, code, nutsCode string) Region {
	return Region{
		name:     strings.TrimSpace(name),
		slug:     slug,
		code:     strings.TrimSpace(code),
		nutsCode: strings.TrimSpace(nutsCode),
	}
}

func HydrateRegion(id int64, name, slug, code, nutsCode string, createdAt time.Time) Region {
	r := NewRegion(name, slug, code, nutsCode)
	r.id = id
	r.createdAt = createdAt
	return r
}

func (r Region) ID() int64            { return r.id }
func (r Region) Name() string         { return r.name }
func (r Region) Slug() string         { return r.slug }
func (r Region) Code() string         { return r.code }
func (r Region) NUTSCode() string     { return r.nutsCode }
func (r Region) CreatedAt() time.Time { return r.createdAt }
