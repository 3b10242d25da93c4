package imaging

import (
	"math"
	"sort"

	"github.com/radiokit/aperture/skyimage"
	"github.com/radiokit/aperture/visibility"
)

// facetExtent is a facet's sub-extent within the model image, in pixels.
type facetExtent struct {
	y0, x0 int
	ny, nx int
}

// partition is a read-only view over the visibility rows and the image
// extent one work unit covers. Partitions never copy data: rows index into
// the shared visibility, the extent indexes into the shared image. group
// identifies the time/w cell a partition belongs to; all facets of one group
// share the same rows, so group-level quantities like the sum of weights are
// accounted once per group.
type partition struct {
	rows    []int
	facet   facetExtent
	group   int
	facetID int
	// wCentre is the representative w of the group in metres; the gridder
	// handles only the residual w and the image-domain screen handles the
	// rest.
	wCentre float64
}

// rowGroup is a time or w cell before the facet product is applied.
type rowGroup struct {
	rows    []int
	wCentre float64
}

// buildPartitions forms the Cartesian product of row groups (from the time
// or w axis) and facets (from the image), as requested by the context tag.
func buildPartitions(vis *visibility.Visibility, model *skyimage.Image, context string, p Params) []partition {
	var groups []rowGroup
	switch {
	case contextUsesTimeslice(context):
		groups = timesliceGroups(vis, p)
	case contextUsesWStack(context):
		groups = wstackGroups(vis, p)
	default:
		groups = []rowGroup{{rows: allRows(vis)}}
	}

	var facets []facetExtent
	_, _, ny, nx := model.Shape()
	if contextUsesFacets(context) {
		fny, fnx := ny/p.Facets, nx/p.Facets
		for fy := 0; fy < p.Facets; fy++ {
			for fx := 0; fx < p.Facets; fx++ {
				facets = append(facets, facetExtent{y0: fy * fny, x0: fx * fnx, ny: fny, nx: fnx})
			}
		}
	} else {
		facets = []facetExtent{{y0: 0, x0: 0, ny: ny, nx: nx}}
	}

	parts := make([]partition, 0, len(groups)*len(facets))
	for g, grp := range groups {
		for f, fc := range facets {
			parts = append(parts, partition{
				rows:    grp.rows,
				facet:   fc,
				group:   g,
				facetID: f,
				wCentre: grp.wCentre,
			})
		}
	}
	return parts
}

func allRows(vis *visibility.Visibility) []int {
	rows := make([]int, vis.NumRows())
	for i := range rows {
		rows[i] = i
	}
	return rows
}

// timesliceGroups windows the rows along the time axis. Auto groups by
// distinct integration timestamp; otherwise fixed windows of width
// p.Timeslice span the observation. Each group's representative w is the
// mean w of its rows, realising the single mid-window w correction the
// timeslice approximation rests on.
func timesliceGroups(vis *visibility.Visibility, p Params) []rowGroup {
	if vis.NumRows() == 0 {
		return nil
	}
	byKey := make(map[int][]int)
	var keys []int

	if p.TimesliceAuto {
		// Distinct timestamps, keyed by first occurrence order. Rows are
		// time-major so timestamps arrive sorted.
		seen := make(map[float64]int)
		for r, t := range vis.Time {
			key, ok := seen[t]
			if !ok {
				key = len(seen)
				seen[t] = key
				keys = append(keys, key)
			}
			byKey[key] = append(byKey[key], r)
		}
	} else {
		tmin := vis.Time[0]
		for _, t := range vis.Time {
			if t < tmin {
				tmin = t
			}
		}
		for r, t := range vis.Time {
			key := int(math.Floor((t - tmin) / p.Timeslice))
			if _, ok := byKey[key]; !ok {
				keys = append(keys, key)
			}
			byKey[key] = append(byKey[key], r)
		}
		sort.Ints(keys)
	}

	groups := make([]rowGroup, 0, len(keys))
	for _, key := range keys {
		rows := byKey[key]
		groups = append(groups, rowGroup{rows: rows, wCentre: meanW(vis, rows)})
	}
	return groups
}

// wstackGroups bins the rows by w coordinate (metres) into bins of width
// p.WStack, each represented by its bin centre.
func wstackGroups(vis *visibility.Visibility, p Params) []rowGroup {
	byBin := make(map[int][]int)
	var bins []int
	for r := range vis.UVW {
		bin := roundHalfAway(vis.UVW[r][2] / p.WStack)
		if _, ok := byBin[bin]; !ok {
			bins = append(bins, bin)
		}
		byBin[bin] = append(byBin[bin], r)
	}
	sort.Ints(bins)

	groups := make([]rowGroup, 0, len(bins))
	for _, bin := range bins {
		groups = append(groups, rowGroup{rows: byBin[bin], wCentre: float64(bin) * p.WStack})
	}
	return groups
}

func meanW(vis *visibility.Visibility, rows []int) float64 {
	if len(rows) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, r := range rows {
		sum += vis.UVW[r][2]
	}
	return sum / float64(len(rows))
}

// roundHalfAway rounds to the nearest integer with ties away from zero,
// matching the w-plane bucketing rule.
func roundHalfAway(x float64) int {
	if x >= 0 {
		return int(math.Floor(x + 0.5))
	}
	return -int(math.Floor(-x + 0.5))
}
