package territory

// Row is one flat source record: a municipality together with the office,
// district and region it belongs to.
type Row struct {
	// Line is the 1-based position in the source, header included.
	Line int

	MunicipalityName string
	MunicipalityCode string
	// SubOfficeCode is the code of the municipality's authorized
	// municipal office (POU).
	SubOfficeCode string

	OfficeName string
	OfficeCode string

	DistrictName string
	DistrictCode string

	RegionName string
	RegionCode string
	// RegionNUTSCode is the region's NUTS 3 classification code.
	RegionNUTSCode string
}

// NaturalKey returns the row's code for the given level.
func (r Row) NaturalKey(l Level) string {
	switch l {
	case LevelRegion:
		return r.RegionCode
	case LevelDistrict:
		return r.DistrictCode
	case LevelOffice:
		return r.OfficeCode
	case LevelMunicipality:
		return r.MunicipalityCode
	default:
		return ""
	}
}

// Name returns the row's display name for the given level.
func (r Row) Name(l Level) string {
	switch l {
	case LevelRegion:
		return r.RegionName
	case LevelDistrict:
		return r.DistrictName
	case LevelOffice:
		return r.OfficeName
	case LevelMunicipality:
		return r.MunicipalityName
	default:
		return ""
	}
}
