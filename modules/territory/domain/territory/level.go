package territory

type Level string

const (
	LevelRegion       Level = "region"
	LevelDistrict     Level = "district"
	LevelOffice       Level = "office"
	LevelMunicipality Level = "municipality"
)

// Levels lists the hierarchy top-down, in import pass order.
func Levels() []Level {
	return []Level{LevelRegion, LevelDistrict, LevelOffice, LevelMunicipality}
}

func (l Level) Parent() (Level, bool) {
	switch l {
	case LevelDistrict:
		return LevelRegion, true
	case LevelOffice:
		return LevelDistrict, true
	case LevelMunicipality:
		return LevelOffice, true
	default:
		return "", false
	}
}

// Counts holds the number of records inserted per level.
type Counts struct {
	Regions        int `json:"regions"`
	Districts      int `json:"districts"`
	Offices        int `json:"offices"`
	Municipalities int `json:"municipalities"`
}

func (c Counts) Of(l Level) int {
	switch l {
	case LevelRegion:
		return c.Regions
	case LevelDistrict:
		return c.Districts
	case LevelOffice:
		return c.Offices
	case LevelMunicipality:
		return c.Municipalities
	default:
		return 0
	}
}

func (c Counts) Total() int {
	return c.Regions + c.Districts + c.Offices + c.Municipalities
}
