package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/spf13/cobra"

	"github.com/Olbrasoft/cr/modules/territory/domain/territory"
)

func newLookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup [<region> [<office> [<municipality>]]]",
		Short: "Resolve a region/office/municipality slug path and print it as JSON",
		Args:  cobra.MaximumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(cmd.Context(), cmd.OutOrStdout(), args)
		},
	}
}

type regionView struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Code     string `json:"code"`
	NUTSCode string `json:"nuts_code,omitempty"`
}

type officeView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
	Code string `json:"code"`
}

type municipalityView struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Slug          string `json:"slug"`
	Code          string `json:"code"`
	SubOfficeCode string `json:"sub_office_code,omitempty"`
}

type lookupResult struct {
	Regions          []regionView       `json:"regions,omitempty"`
	Region           *regionView        `json:"region,omitempty"`
	Offices          []officeView       `json:"offices,omitempty"`
	Office           *officeView        `json:"office,omitempty"`
	MainMunicipality *municipalityView  `json:"main_municipality,omitempty"`
	Municipalities   []municipalityView `json:"municipalities,omitempty"`
	Municipality     *municipalityView  `json:"municipality,omitempty"`
}

func runLookup(ctx context.Context, stdout io.Writer, path []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	b, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	var res *lookupResult
	err = b.ReadTx(ctx, func(txCtx context.Context) error {
		var err error
		res, err = lookup(txCtx, b.Reader, path)
		return err
	})
	if err != nil {
		var ce *cliError
		if errors.As(err, &ce) {
			return err
		}
		return withCode(exitDB, fmt.Errorf("read transaction: %w", err))
	}
	return writeJSONLine(stdout, res)
}

// lookup walks path top-down. An empty path lists the regions; a region
// lists its offices; an office splits its municipalities into the one
// sharing the office slug and the rest.
func lookup(ctx context.Context, r territory.Reader, path []string) (*lookupResult, error) {
	res := &lookupResult{}
	if len(path) == 0 {
		regions, err := r.ListRegions(ctx)
		if err != nil {
			return nil, readError("list regions", err)
		}
		res.Regions = make([]regionView, 0, len(regions))
		for _, reg := range regions {
			res.Regions = append(res.Regions, toRegionView(reg))
		}
		return res, nil
	}

	region, err := r.RegionBySlug(ctx, path[0])
	if err != nil {
		what := fmt.Sprintf("region %q", path[0])
		if errors.Is(err, territory.ErrNotFound) {
			if regions, lerr := r.ListRegions(ctx); lerr == nil {
				what += didYouMean(path[0], regionSlugs(regions))
			}
		}
		return nil, readError(what, err)
	}
	rv := toRegionView(region)
	res.Region = &rv

	if len(path) == 1 {
		offices, err := r.OfficesByRegion(ctx, region.ID())
		if err != nil {
			return nil, readError("list offices", err)
		}
		res.Offices = make([]officeView, 0, len(offices))
		for _, o := range offices {
			res.Offices = append(res.Offices, toOfficeView(o))
		}
		return res, nil
	}

	office, err := r.OfficeBySlug(ctx, region.ID(), path[1])
	if err != nil {
		what := fmt.Sprintf("office %q in region %q", path[1], path[0])
		if errors.Is(err, territory.ErrNotFound) {
			if offices, lerr := r.OfficesByRegion(ctx, region.ID()); lerr == nil {
				what += didYouMean(path[1], officeSlugs(offices))
			}
		}
		return nil, readError(what, err)
	}
	ov := toOfficeView(office)
	res.Office = &ov

	if len(path) == 2 {
		municipalities, err := r.MunicipalitiesByOffice(ctx, office.ID())
		if err != nil {
			return nil, readError("list municipalities", err)
		}
		res.Municipalities = make([]municipalityView, 0, len(municipalities))
		for _, m := range municipalities {
			mv := toMunicipalityView(m)
			if m.Slug() == office.Slug() && res.MainMunicipality == nil {
				res.MainMunicipality = &mv
				continue
			}
			res.Municipalities = append(res.Municipalities, mv)
		}
		return res, nil
	}

	m, err := r.MunicipalityBySlug(ctx, office.ID(), path[2])
	if err != nil {
		return nil, readError(fmt.Sprintf("municipality %q in office %q", path[2], path[1]), err)
	}
	mv := toMunicipalityView(m)
	res.Municipality = &mv
	return res, nil
}

func readError(what string, err error) error {
	if errors.Is(err, territory.ErrNotFound) {
		return withCode(exitValidation, fmt.Errorf("%s: %w", what, err))
	}
	return withCode(exitDB, fmt.Errorf("%s: %w", what, err))
}

const maxSuggestions = 3

// didYouMean ranks candidates that contain the characters of slug in order.
func didYouMean(slug string, candidates []string) string {
	ranks := fuzzy.RankFindNormalizedFold(slug, candidates)
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	names := make([]string, 0, maxSuggestions)
	for _, rank := range ranks {
		if len(names) == maxSuggestions {
			break
		}
		names = append(names, rank.Target)
	}
	return " (did you mean " + strings.Join(names, ", ") + "?)"
}

func regionSlugs(regions []territory.Region) []string {
	out := make([]string, len(regions))
	for i, r := range regions {
		out[i] = r.Slug()
	}
	return out
}

func officeSlugs(offices []territory.Office) []string {
	out := make([]string, len(offices))
	for i, o := range offices {
		out[i] = o.Slug()
	}
	return out
}

func toRegionView(r territory.Region) regionView {
	return regionView{ID: r.ID(), Name: r.Name(), Slug: r.Slug(), Code: r.Code(), NUTSCode: r.NUTSCode()}
}

func toOfficeView(o territory.Office) officeView {
	return officeView{ID: o.ID(), Name: o.Name(), Slug: o.Slug(), Code: o.Code()}
}

func toMunicipalityView(m territory.Municipality) municipalityView {
	return municipalityView{ID: m.ID(), Name: m.Name(), Slug: m.Slug(), Code: m.Code(), SubOfficeCode: m.SubOfficeCode()}
}
