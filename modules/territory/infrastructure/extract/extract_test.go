package extract

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"github.com/Olbrasoft/cr/modules/territory/domain/territory"
)

const csuHeader = "obec_text,obec_kod,pou_csu_cis61_kod,orp_text,orp_csu_cis65_kod,okres_text,okres_csu_cis101_lau_kod,kraj_text,kraj_csu_cis100_kod,kraj_csu_cis108_nuts_kod"

func csuCSV(lines ...string) string {
	return strings.Join(append([]string{csuHeader}, lines...), "\n") + "\n"
}

func TestReadCSV_CSULayout(t *testing.T) {
	src := "\ufeff" + csuCSV(
		"Benešov,529303,2101,Benešov,2101,Benešov,CZ0201,Středočeský kraj,27,CZ020",
		"",
		`"Bystřice",529451,2101,Benešov,2101,Benešov,CZ0201,Středočeský kraj,27,CZ020`,
		"Vlašim,530824,2117,Vlašim,2117,Benešov,CZ0201,Středočeský kraj,27,",
	)

	rows, err := ReadCSV(strings.NewReader(src), Options{})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	require.Equal(t, territory.Row{
		Line:             2,
		MunicipalityName: "Benešov",
		MunicipalityCode: "529303",
		SubOfficeCode:    "2101",
		OfficeName:       "Benešov",
		OfficeCode:       "2101",
		DistrictName:     "Benešov",
		DistrictCode:     "CZ0201",
		RegionName:       "Středočeský kraj",
		RegionCode:       "27",
		RegionNUTSCode:   "CZ020",
	}, rows[0])
	require.Equal(t, 4, rows[1].Line)
	require.Equal(t, "Bystřice", rows[1].MunicipalityName)
	require.Equal(t, "", rows[2].RegionNUTSCode)
}

func TestReadCSV_ExtraColumnsAndReorderedHeader(t *testing.T) {
	src := "kraj_text,kraj_csu_cis100_kod,kraj_csu_cis108_nuts_kod,okres_text,okres_csu_cis101_lau_kod,orp_text,orp_csu_cis65_kod,pou_csu_cis61_kod,obec_kod,obec_text,poznamka\n" +
		"Zlínský kraj,141,CZ072,Zlín,CZ0724,Zlín,7213,721301,585068,Zlín,krajské město\n"

	rows, err := ReadCSV(strings.NewReader(src), Options{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "585068", rows[0].MunicipalityCode)
	require.Equal(t, "721301", rows[0].SubOfficeCode)
	require.Equal(t, "CZ072", rows[0].RegionNUTSCode)
}

func TestReadCSV_Errors(t *testing.T) {
	cases := []struct {
		name    string
		src     string
		kind    territory.ErrorKind
		target  error
		message string
	}{
		{
			name:    "missing column",
			src:     "obec_text,obec_kod\nPraha,554782\n",
			kind:    territory.KindParse,
			target:  territory.ErrMissingColumn,
			message: `line 1: missing required column: sub_office_code (header "pou_csu_cis61_kod")`,
		},
		{
			name:    "empty name",
			src:     csuCSV("Benešov,529303,2101,Benešov,2101,Benešov,CZ0201,,27,CZ020"),
			kind:    territory.KindParse,
			target:  territory.ErrEmptyField,
			message: "line 2: required field is empty: region_name",
		},
		{
			name:    "short row",
			src:     csuCSV("Benešov,529303,2101,Benešov,2101,Benešov,CZ0201,Středočeský kraj,27,CZ020", "Vlašim,530824"),
			kind:    territory.KindParse,
			message: "line 3: expected at least 10 fields, got 2",
		},
		{
			name:    "header only",
			src:     csuCSV(),
			kind:    territory.KindParse,
			target:  territory.ErrNoRows,
			message: "no data rows found",
		},
		{
			name:    "empty input",
			src:     "",
			kind:    territory.KindParse,
			message: "line 1: missing header",
		},
		{
			name:    "broken quoting",
			src:     csuCSV(`"Benešov,529303,2101,Benešov,2101,Benešov,CZ0201,Středočeský kraj,27,CZ020`),
			kind:    territory.KindParse,
			message: "line 2:",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tc.src), Options{})
			require.Error(t, err)
			require.Equal(t, tc.kind, territory.KindOf(err))
			if tc.target != nil {
				require.ErrorIs(t, err, tc.target)
			}
			require.Contains(t, err.Error(), tc.message)
		})
	}
}

func TestReadCSV_Windows1250Semicolon(t *testing.T) {
	utf := strings.ReplaceAll(csuCSV("Žďár nad Sázavou,595209,6114,Žďár nad Sázavou,6114,Žďár nad Sázavou,CZ0635,Kraj Vysočina,108,CZ063"), ",", ";")
	encoded, err := charmap.Windows1250.NewEncoder().String(utf)
	require.NoError(t, err)

	_, err = ReadCSV(strings.NewReader(encoded), Options{Delimiter: ';'})
	require.Error(t, err, "cp1250 bytes are not valid UTF-8")

	rows, err := ReadCSV(strings.NewReader(encoded), Options{Delimiter: ';', Encoding: "windows-1250"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "Žďár nad Sázavou", rows[0].MunicipalityName)
	require.Equal(t, "Kraj Vysočina", rows[0].RegionName)

	_, err = ReadCSV(strings.NewReader(encoded), Options{Encoding: "klingon"})
	require.Equal(t, territory.KindConfiguration, territory.KindOf(err))

	require.True(t, IsSupportedEncoding("iso-8859-2"))
	require.True(t, IsSupportedEncoding(""))
	require.False(t, IsSupportedEncoding("klingon"))
}

func TestReadCSV_ColumnOverride(t *testing.T) {
	cols, err := DefaultColumns().Override(map[string]string{"municipality_name": "nazev_obce"})
	require.NoError(t, err)
	require.Equal(t, "obec_text", DefaultColumns()[RoleMunicipalityName])

	src := strings.Replace(csuCSV("Kolín,533165,2104,Kolín,2104,Kolín,CZ0204,Středočeský kraj,27,CZ020"), "obec_text", "nazev_obce", 1)
	rows, err := ReadCSV(strings.NewReader(src), Options{Columns: cols})
	require.NoError(t, err)
	require.Equal(t, "Kolín", rows[0].MunicipalityName)

	_, err = DefaultColumns().Override(map[string]string{"street": "ulice"})
	require.ErrorContains(t, err, `unknown column role "street"`)
	_, err = DefaultColumns().Override(map[string]string{"region_code": " "})
	require.Error(t, err)
}

func TestReadFile_MissingPathIsConfigurationError(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.csv"), Options{})
	require.Equal(t, territory.KindConfiguration, territory.KindOf(err))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func writeWorkbook(t *testing.T, sheet string, grid [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })
	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for i, row := range grid {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	path := filepath.Join(t.TempDir(), "struktura.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadXLSX(t *testing.T) {
	header := make([]any, 0, 10)
	for _, h := range strings.Split(csuHeader, ",") {
		header = append(header, h)
	}
	path := writeWorkbook(t, "Sheet1", [][]any{
		header,
		{"Benešov", "529303", "2101", "Benešov", "2101", "Benešov", "CZ0201", "Středočeský kraj", "27", "CZ020"},
		{},
		// Trailing NUTS cell left empty.
		{"Vlašim", "530824", "2117", "Vlašim", "2117", "Benešov", "CZ0201", "Středočeský kraj", "27"},
	})

	rows, err := ReadFile(path, Options{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, 2, rows[0].Line)
	require.Equal(t, 4, rows[1].Line)
	require.Equal(t, "Vlašim", rows[1].MunicipalityName)
	require.Equal(t, "", rows[1].RegionNUTSCode)

	_, err = ReadFile(path, Options{Sheet: "Obce"})
	require.Equal(t, territory.KindConfiguration, territory.KindOf(err))
}

func TestReadXLSX_NamedSheetAndMissingValue(t *testing.T) {
	header := make([]any, 0, 10)
	for _, h := range strings.Split(csuHeader, ",") {
		header = append(header, h)
	}
	path := writeWorkbook(t, "Obce", [][]any{
		header,
		{"Kolín", "533165", "2104", "Kolín", "2104", "Kolín", "CZ0204", "Středočeský kraj"},
	})

	_, err := ReadFile(path, Options{Sheet: "Obce"})
	require.ErrorIs(t, err, territory.ErrEmptyField)
	require.Contains(t, err.Error(), "line 2: required field is empty: region_code")

	_, err = ReadXLSX(bytes.NewReader([]byte("not a zip")), Options{})
	require.Equal(t, territory.KindParse, territory.KindOf(err))
}
