package territory

import (
	"strings"
	"time"
)

type Municipality struct {
	id            int64
	name          string
	slug          string
	code          string
	subOfficeCode string
	officeID      int64
	createdAt     time.Time
}

func NewMunicipality(name, slug, code, subOfficeCode string, officeID int64) Municipality {
	return Municipality{
		name:          strings.TrimSpace(name),
		slug:          slug,
		code:          strings.TrimSpace(code),
		subOfficeCode: strings.TrimSpace(subOfficeCode),
		officeID:      officeID,
	}
}

func HydrateMunicipality(id int64, name, slug, code, subOfficeCode string, officeID int64, createdAt time.Time) Municipality {
	m := NewMunicipality(name, slug, code, subOfficeCode, officeID)
	m.id = id
	m.createdAt = createdAt
	return m
}

func (m Municipality) ID() int64             { return m.id }
func (m Municipality) Name() string          { return m.name }
func (m Municipality) Slug() string          { return m.slug }
func (m Municipality) Code() string          { return m.code }
func (m Municipality) SubOfficeCode() string { return m.subOfficeCode }
func (m Municipality) OfficeID() int64       { return m.officeID }
func (m Municipality) CreatedAt() time.Time  { return m.createdAt }
