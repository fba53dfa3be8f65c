// Package directory holds the static region → district → warehouse reference
// dataset shipped with the service. It is loaded once at init and queried
// synchronously; all lookups are pure functions of the bundled data plus the
// caller's current selection, which is what drives the cascading selects on
// the booking form.
package directory

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
)

//go:embed warehouses.json
var rawWarehouses []byte

// Entry is one row of the bundled dataset: a district service centre and the
// warehouse areas it covers.
type Entry struct {
	Region      string   `json:"region"`
	District    string   `json:"district"`
	City        string   `json:"city"`
	CoveredArea []string `json:"covered_area"`
}

// Directory answers region/district/warehouse lookups.
type Directory struct {
	entries     []Entry
	regions     []string
	byWarehouse map[string]Entry
}

// Load parses the embedded dataset. It is cheap enough to call once at
// startup; subsequent queries allocate nothing but result slices.
func Load() (*Directory, error) {
	var entries []Entry
	if err := json.Unmarshal(rawWarehouses, &entries); err != nil {
		return nil, fmt.Errorf("directory: parse dataset: %w", err)
	}

	d := &Directory{
		entries:     entries,
		byWarehouse: make(map[string]Entry),
	}

	seen := make(map[string]struct{})
	for _, e := range entries {
		if _, ok := seen[e.Region]; !ok {
			seen[e.Region] = struct{}{}
			d.regions = append(d.regions, e.Region)
		}
		for _, wh := range e.CoveredArea {
			d.byWarehouse[wh] = e
		}
	}
	sort.Strings(d.regions)

	return d, nil
}

// Regions returns the distinct regions, sorted.
func (d *Directory) Regions() []string {
	out := make([]string, len(d.regions))
	copy(out, d.regions)
	return out
}

// HasRegion reports whether region exists in the dataset.
func (d *Directory) HasRegion(region string) bool {
	for _, r := range d.regions {
		if r == region {
			return true
		}
	}
	return false
}

// Districts returns the districts available under region, in dataset order.
// Unknown region yields an empty list, mirroring a reset dependent select.
func (d *Directory) Districts(region string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, e := range d.entries {
		if e.Region != region {
			continue
		}
		if _, ok := seen[e.District]; ok {
			continue
		}
		seen[e.District] = struct{}{}
		out = append(out, e.District)
	}
	return out
}

// Warehouses returns the warehouse areas covered by district within region.
func (d *Directory) Warehouses(region, district string) []string {
	var out []string
	for _, e := range d.entries {
		if e.Region != region || e.District != district {
			continue
		}
		out = append(out, e.CoveredArea...)
	}
	return out
}

// Covers reports whether warehouse belongs to district within region. Used to
// validate booking input end-to-end: a warehouse selected under a stale
// parent selection is rejected.
func (d *Directory) Covers(region, district, warehouse string) bool {
	e, ok := d.byWarehouse[warehouse]
	return ok && e.Region == region && e.District == district
}

// DistrictOfWarehouse resolves the district serving a warehouse area, used
// when matching riders to a parcel's receiving side.
func (d *Directory) DistrictOfWarehouse(warehouse string) (string, bool) {
	e, ok := d.byWarehouse[warehouse]
	if !ok {
		return "", false
	}
	return e.District, true
}
