// Package geo provides high-income metro detection for revenue band
// adjustment. Practices in high-income metros carry materially higher
// case values for elective procedures, which shifts the indicative
// revenue band upward.
package geo

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// MetroTable answers whether a city/state pair sits in a high-income
// metro. The table is immutable after construction.
type MetroTable struct {
	cities map[string]struct{}
	states map[string]struct{}
}

// metroFile is the YAML shape for an override table.
type metroFile struct {
	Cities []string `yaml:"cities"`
	States []string `yaml:"states"`
}

// Curated from US Census ACS median household income data, filtered to
// metros where median HHI exceeds $90k.
var defaultCities = []string{
	// Northeast
	"new york", "manhattan", "brooklyn", "queens", "bronx",
	"stamford", "greenwich", "westport", "darien",
	"hoboken", "jersey city", "princeton", "morristown",
	"boston", "cambridge", "brookline", "newton", "wellesley",
	"washington", "bethesda", "arlington", "mclean", "alexandria",
	"chevy chase", "potomac", "great falls",
	"philadelphia", "wayne", "bryn mawr", "radnor",
	"hartford", "west hartford", "glastonbury",
	// Southeast
	"miami", "miami beach", "coral gables", "boca raton",
	"palm beach", "west palm beach", "naples", "sarasota",
	"charlotte", "raleigh", "chapel hill", "durham",
	"atlanta", "buckhead", "alpharetta", "roswell",
	"nashville", "franklin",
	// Midwest
	"chicago", "evanston", "naperville", "lake forest", "winnetka",
	"hinsdale", "highland park",
	"minneapolis", "edina", "wayzata", "plymouth",
	"detroit", "birmingham", "bloomfield hills", "ann arbor",
	"columbus", "dublin", "upper arlington",
	// Southwest / Mountain
	"dallas", "university park", "plano", "frisco",
	"houston", "the woodlands", "sugar land", "river oaks",
	"austin", "westlake", "lakeway",
	"scottsdale", "paradise valley", "gilbert", "chandler",
	"denver", "cherry hills village", "greenwood village", "boulder",
	"salt lake city", "park city",
	"las vegas", "henderson", "summerlin",
	// West Coast
	"san francisco", "palo alto", "menlo park", "atherton",
	"mountain view", "sunnyvale", "cupertino", "saratoga",
	"san jose", "los gatos", "campbell",
	"los angeles", "beverly hills", "santa monica", "brentwood",
	"manhattan beach", "hermosa beach", "redondo beach",
	"pasadena", "la canada flintridge", "san marino",
	"irvine", "newport beach", "laguna beach", "dana point",
	"huntington beach", "carlsbad", "la jolla", "del mar",
	"san diego", "coronado", "encinitas",
	"seattle", "bellevue", "mercer island", "kirkland",
	"redmond", "sammamish", "medina",
	"portland", "lake oswego", "west linn",
	// Hawaii
	"honolulu",
}

// States where the majority of metro areas have elevated HHI.
var defaultStates = []string{
	"connecticut", "ct",
	"massachusetts", "ma",
	"new jersey", "nj",
	"maryland", "md",
	"hawaii", "hi",
}

// DefaultMetroTable returns the built-in curated table.
func DefaultMetroTable() *MetroTable {
	return newMetroTable(defaultCities, defaultStates)
}

// LoadMetroTable reads a replacement table from a YAML file. The file
// must carry at least one city or state entry.
func LoadMetroTable(path string) (*MetroTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: read metro table %s", path)
	}

	var f metroFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "geo: parse metro table")
	}
	if len(f.Cities) == 0 && len(f.States) == 0 {
		return nil, eris.Errorf("geo: metro table %s has no entries", path)
	}

	return newMetroTable(f.Cities, f.States), nil
}

func newMetroTable(cities, states []string) *MetroTable {
	t := &MetroTable{
		cities: make(map[string]struct{}, len(cities)),
		states: make(map[string]struct{}, len(states)),
	}
	for _, c := range cities {
		t.cities[normalize(c)] = struct{}{}
	}
	for _, s := range states {
		t.states[normalize(s)] = struct{}{}
	}
	return t
}

// IsHighIncome reports whether the city or state is on the high-income
// list. Matching is case-insensitive; either argument may be empty.
func (t *MetroTable) IsHighIncome(city, state string) bool {
	if c := normalize(city); c != "" {
		if _, ok := t.cities[c]; ok {
			return true
		}
	}
	if s := normalize(state); s != "" {
		if _, ok := t.states[s]; ok {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
