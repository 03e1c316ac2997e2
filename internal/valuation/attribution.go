package valuation

import (
	"sort"
	"strings"
)

// MaterialityThreshold is the absolute attribution value (in currency units)
// at or below which a merged row is treated as noise and dropped.
const MaterialityThreshold = 50.0

// Aggregate turns the raw per-feature attribution map into the ranked display
// rows: relevance filter, relabel, merge by label, materiality cut, then a
// stable sort by descending absolute value. An empty map yields nil.
//
// Raw keys are visited in lexicographic order so that equal-magnitude rows
// rank reproducibly regardless of map iteration.
func Aggregate(raw map[string]float64, form *FormState) []AttributionRow {
	if len(raw) == 0 {
		return nil
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	selections := form.selectedValues()

	var rows []AttributionRow
	index := map[string]int{}
	for _, key := range keys {
		k := strings.ToLower(key)
		if !relevant(k, form, selections) {
			continue
		}
		label := relabel(k, key, form)
		if i, ok := index[label]; ok {
			rows[i].Value += raw[key]
			continue
		}
		index[label] = len(rows)
		rows = append(rows, AttributionRow{Label: label, Value: raw[key]})
	}

	kept := rows[:0]
	for _, row := range rows {
		if abs(row.Value) > MaterialityThreshold {
			kept = append(kept, row)
		}
	}
	if len(kept) == 0 {
		return nil
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return abs(kept[i].Value) > abs(kept[j].Value)
	})
	return kept
}

// relevant is a conservative inclusion filter: a key survives only when it
// matches the always-numeric vocabulary, an amenity the user actually set, or
// the text of a categorical value the user selected. Amenity keys for unset
// flags are dropped so the model's one-hot evidence for options the user did
// not pick never leaks into the explanation.
func relevant(k string, form *FormState, selections []string) bool {
	for _, numeric := range [...]string{"area", "rooms", "floor", "year"} {
		if strings.Contains(k, numeric) {
			return true
		}
	}

	switch form.Kind {
	case KindFlat:
		if (strings.Contains(k, "lift") || strings.Contains(k, "elevator")) && form.Flag(FlagLift) {
			return true
		}
		if (strings.Contains(k, "outdoor") || strings.Contains(k, "balcony")) && form.Flag(FlagOutdoor) {
			return true
		}
		if (strings.Contains(k, "parking") || strings.Contains(k, "garage")) && form.Flag(FlagParking) {
			return true
		}
	case KindHouse:
		if (strings.Contains(k, "parking") || strings.Contains(k, "garage")) && form.Flag(FlagGarage) {
			return true
		}
		if strings.Contains(k, "basement") && form.Flag(FlagBasement) {
			return true
		}
		if strings.Contains(k, "gas") && !strings.Contains(k, "heating") && form.Flag(FlagGas) {
			return true
		}
		if strings.Contains(k, "sewerage") && form.Flag(FlagSewerage) {
			return true
		}
		if (strings.Contains(k, "access") || strings.Contains(k, "hard")) && form.Flag(FlagHardAccess) {
			return true
		}
	case KindPlot:
		if strings.Contains(k, "electricity") && form.Flag(FlagElectricity) {
			return true
		}
		if strings.Contains(k, "water") && form.Flag(FlagWater) {
			return true
		}
		if strings.Contains(k, "gas") && form.Flag(FlagGas) {
			return true
		}
		if strings.Contains(k, "sewerage") && form.Flag(FlagSewerage) {
			return true
		}
		if (strings.Contains(k, "access") || strings.Contains(k, "hard")) && form.Flag(FlagHardAccess) {
			return true
		}
		if strings.Contains(k, "fence") && form.Flag(FlagFence) {
			return true
		}
	}

	for _, selection := range selections {
		if strings.Contains(k, selection) {
			return true
		}
	}
	return false
}

// labelPair is one token→name rule; slices keep the evaluation order fixed
// (longer tokens first where one contains another).
type labelPair struct {
	token string
	name  string
}

var flatBuildTypes = []labelPair{
	{"block", "Blok"},
	{"tenement", "Kamienica"},
	{"apartment", "Apartamentowiec"},
	{"house", "Dom wielorodzinny"},
}

var houseBuildTypes = []labelPair{
	{"semi_detached", "Bliźniak"},
	{"detached", "Wolnostojący"},
	{"ribbon", "Szeregowiec"},
	{"manor", "Dworek"},
}

var heatingNames = map[string]string{
	"district":  "Miejskie",
	"gas":       "Gazowe",
	"electric":  "Elektryczne",
	"boiler":    "Kotłownia",
	"heat_pump": "Pompa ciepła",
	"coal":      "Węglowe",
	"fireplace": "Kominek",
}

var plotTypeNames = []labelPair{
	{"agricultural_building", "Rolno-budowlana"},
	{"agricultural", "Rolna"},
	{"building", "Budowlana"},
	{"recreational", "Rekreacyjna"},
	{"commercial", "Inwestycyjna"},
	{"woodland", "Leśna"},
	{"habitat", "Siedliskowa"},
}

var locationTypeNames = map[string]string{
	"city":     "Miejskie",
	"suburban": "Podmiejskie",
	"country":  "Wiejskie",
}

// relabel maps one raw key to its display label. Rules are ordered substring
// checks per concept family; the first match wins and the fallback is the raw
// key itself. Location labels interpolate the form's current values.
func relabel(k, original string, form *FormState) string {
	contains := func(parts ...string) bool {
		for _, p := range parts {
			if strings.Contains(k, p) {
				return true
			}
		}
		return false
	}

	switch {
	case contains("total"):
		return "Liczba pięter w budynku"
	case contains("floor"):
		if form.Kind == KindHouse {
			return "Liczba pięter"
		}
		return "Piętro"
	case contains("area") && (form.Kind == KindPlot || contains("plot")):
		return "Powierzchnia działki"
	case contains("area"):
		return "Metraż"
	case contains("rooms"):
		return "Liczba pokoi"
	case contains("year"):
		return "Rok budowy"
	case contains("lift", "elevator"):
		return "Winda"
	case contains("outdoor", "balcony"):
		return "Balkon / Ogród"
	case contains("parking", "garage"):
		return "Miejsce parkingowe"
	case contains("basement"):
		return "Piwnica"
	case contains("electricity"):
		return "Prąd"
	case contains("water"):
		return "Woda"
	case contains("heating"):
		value := form.Field(FieldHeating)
		if form.Kind == KindHouse {
			value = form.Field(FieldHeatingType)
		}
		if name, ok := heatingNames[value]; ok {
			return "Ogrzewanie: " + name
		}
		if value != "" {
			return "Ogrzewanie: " + value
		}
		return "Ogrzewanie"
	case contains("gas"):
		return "Gaz"
	case contains("sewerage"):
		return "Kanalizacja"
	case contains("access", "hard"):
		return "Dojazd utwardzony"
	case contains("fence"):
		return "Ogrodzenie"
	case contains("market") && contains("secondary"):
		return "Rynek: Wtórny"
	case contains("market") && contains("primary"):
		return "Rynek: Pierwotny"
	case contains("city"):
		return "Lokalizacja: " + form.Field(FieldCity)
	case contains("province", "region"):
		return "Woj.: " + form.Field(FieldProvince)
	case contains("district"):
		if d := form.Field(FieldDistrict); d != "" {
			return "Dzielnica: " + d
		}
		return "Dzielnica"
	case contains("finish", "construction"):
		switch {
		case contains("ready", "use"):
			return "Stan: Do zamieszkania"
		case contains("completion", "develop"):
			return "Stan: Do wykończenia"
		case contains("renovate", "renovation"):
			return "Stan: Do remontu"
		}
		return "Stan wykończenia"
	case form.Kind == KindPlot && contains("type"):
		for _, p := range plotTypeNames {
			if strings.Contains(k, p.token) {
				return "Typ: " + p.name
			}
		}
		for _, p := range plotTypeNames {
			if p.token == form.Field(FieldPlotType) {
				return "Typ: " + p.name
			}
		}
		return "Typ: " + form.Field(FieldPlotType)
	case contains("location"):
		if name, ok := locationTypeNames[form.Field(FieldLocationType)]; ok {
			return "Położenie: " + name
		}
		return "Położenie: " + form.Field(FieldLocationType)
	case contains("build"):
		types := flatBuildTypes
		if form.Kind == KindHouse {
			types = houseBuildTypes
		}
		for _, p := range types {
			if strings.Contains(k, p.token) {
				return "Typ: " + p.name
			}
		}
		for _, p := range types {
			if p.token == form.Field(FieldBuildType) {
				return "Typ: " + p.name
			}
		}
		return "Typ: Inny"
	}
	return original
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
