package extract

import (
	"fmt"
	"sort"
	"strings"
)

// Role is the meaning of a source column, independent of its header label.
type Role string

const (
	RoleMunicipalityName Role = "municipality_name"
	RoleMunicipalityCode Role = "municipality_code"
	RoleSubOfficeCode    Role = "sub_office_code"
	RoleOfficeName       Role = "office_name"
	RoleOfficeCode       Role = "office_code"
	RoleDistrictName     Role = "district_name"
	RoleDistrictCode     Role = "district_code"
	RoleRegionName       Role = "region_name"
	RoleRegionCode       Role = "region_code"
	RoleRegionNUTSCode   Role = "region_nuts_code"
)

var roles = []Role{
	RoleMunicipalityName, RoleMunicipalityCode, RoleSubOfficeCode,
	RoleOfficeName, RoleOfficeCode,
	RoleDistrictName, RoleDistrictCode,
	RoleRegionName, RoleRegionCode, RoleRegionNUTSCode,
}

// optionalValue lists roles whose column must exist but may hold empty cells.
var optionalValue = map[Role]bool{
	RoleSubOfficeCode:  true,
	RoleRegionNUTSCode: true,
}

// Columns maps every role to the header label carrying it.
type Columns map[Role]string

// DefaultColumns returns the labels of the ČSÚ territorial structure extract.
func DefaultColumns() Columns {
	return Columns{
		RoleMunicipalityName: "obec_text",
		RoleMunicipalityCode: "obec_kod",
		RoleSubOfficeCode:    "pou_csu_cis61_kod",
		RoleOfficeName:       "orp_text",
		RoleOfficeCode:       "orp_csu_cis65_kod",
		RoleDistrictName:     "okres_text",
		RoleDistrictCode:     "okres_csu_cis101_lau_kod",
		RoleRegionName:       "kraj_text",
		RoleRegionCode:       "kraj_csu_cis100_kod",
		RoleRegionNUTSCode:   "kraj_csu_cis108_nuts_kod",
	}
}

// Override returns a copy of c with labels replaced per role name.
func (c Columns) Override(labels map[string]string) (Columns, error) {
	out := make(Columns, len(c))
	for k, v := range c {
		out[k] = v
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		role := Role(strings.TrimSpace(k))
		if !knownRole(role) {
			return nil, fmt.Errorf("unknown column role %q (expected one of %s)", k, roleList())
		}
		label := strings.TrimSpace(labels[k])
		if label == "" {
			return nil, fmt.Errorf("empty header label for role %s", role)
		}
		out[role] = label
	}
	return out, nil
}

func knownRole(r Role) bool {
	for _, known := range roles {
		if r == known {
			return true
		}
	}
	return false
}

func roleList() string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, "|")
}
