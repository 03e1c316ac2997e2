package valuation

import (
	"strconv"
	"strings"
)

// Field names shared across kinds. Numeric fields hold raw text until
// submission, where Payload coerces them.
const (
	FieldArea               = "area"
	FieldAreaHouse          = "areaHouse"
	FieldAreaPlot           = "areaPlot"
	FieldRooms              = "rooms"
	FieldFloor              = "floor"
	FieldTotalFloors        = "totalFloors"
	FieldFloors             = "floors"
	FieldYear               = "year"
	FieldBuildType          = "buildType"
	FieldMaterial           = "material"
	FieldHeating            = "heating"
	FieldHeatingType        = "heatingType"
	FieldRoofType           = "roofType"
	FieldFenceType          = "fenceType"
	FieldMarket             = "market"
	FieldConstructionStatus = "constructionStatus"
	FieldPlotType           = "type"
	FieldLocationType       = "locationType"
	FieldCity               = "city"
	FieldDistrict           = "district"
	FieldProvince           = "province"
)

// Amenity flag names.
const (
	FlagLift        = "hasLift"
	FlagOutdoor     = "hasOutdoor"
	FlagParking     = "hasParking"
	FlagGarage      = "hasGarage"
	FlagBasement    = "hasBasement"
	FlagGas         = "hasGas"
	FlagSewerage    = "hasSewerage"
	FlagHardAccess  = "isHardAccess"
	FlagElectricity = "hasElectricity"
	FlagWater       = "hasWater"
	FlagFence       = "hasFence"
)

var flagNames = map[string]struct{}{
	FlagLift: {}, FlagOutdoor: {}, FlagParking: {}, FlagGarage: {},
	FlagBasement: {}, FlagGas: {}, FlagSewerage: {}, FlagHardAccess: {},
	FlagElectricity: {}, FlagWater: {}, FlagFence: {},
}

// IsFlagName reports whether name is an amenity flag rather than a text field.
func IsFlagName(name string) bool {
	_, ok := flagNames[name]
	return ok
}

var numericFields = map[string]struct{}{
	FieldArea:        {},
	FieldAreaHouse:   {},
	FieldAreaPlot:    {},
	FieldRooms:       {},
	FieldFloor:       {},
	FieldTotalFloors: {},
	FieldFloors:      {},
	FieldYear:        {},
}

// categoricalFields lists, per kind, the fields whose selected value feeds the
// attribution relevance filter.
var categoricalFields = map[Kind][]string{
	KindFlat: {
		FieldBuildType, FieldMaterial, FieldHeating, FieldConstructionStatus,
		FieldMarket, FieldCity, FieldProvince, FieldDistrict,
	},
	KindHouse: {
		FieldBuildType, FieldMaterial, FieldHeatingType, FieldRoofType,
		FieldFenceType, FieldConstructionStatus, FieldMarket, FieldCity,
		FieldProvince,
	},
	KindPlot: {
		FieldPlotType, FieldLocationType, FieldCity, FieldProvince,
	},
}

// FormState holds one form instance's values. Text fields keep numerics as raw
// text; amenity checkboxes live in flags. A FormState is owned by exactly one
// Controller and never shared across forms.
type FormState struct {
	Kind   Kind
	fields map[string]string
	flags  map[string]bool
}

// NewFormState returns a form pre-filled with the kind's defaults.
func NewFormState(kind Kind) *FormState {
	f := &FormState{
		Kind:   kind,
		fields: map[string]string{},
		flags:  map[string]bool{},
	}
	switch kind {
	case KindFlat:
		f.fields[FieldBuildType] = "block"
		f.fields[FieldMaterial] = "brick"
		f.fields[FieldHeating] = "district"
		f.fields[FieldMarket] = "secondary"
		f.fields[FieldConstructionStatus] = "ready_to_use"
		f.fields[FieldCity] = "Warszawa"
		f.fields[FieldProvince] = "Mazowieckie"
		f.flags[FlagLift] = false
		f.flags[FlagOutdoor] = false
		f.flags[FlagParking] = false
	case KindHouse:
		f.fields[FieldBuildType] = "detached"
		f.fields[FieldMaterial] = "brick"
		f.fields[FieldRoofType] = "tile"
		f.fields[FieldMarket] = "secondary"
		f.fields[FieldConstructionStatus] = "ready_to_use"
		f.fields[FieldCity] = "Warszawa"
		f.fields[FieldProvince] = "Mazowieckie"
		f.flags[FlagGarage] = false
		f.flags[FlagBasement] = false
		f.flags[FlagGas] = false
		f.flags[FlagSewerage] = false
		f.flags[FlagHardAccess] = false
	case KindPlot:
		f.fields[FieldPlotType] = "building"
		f.fields[FieldLocationType] = "suburban"
		f.fields[FieldCity] = "Warszawa"
		f.fields[FieldProvince] = "Mazowieckie"
		f.flags[FlagElectricity] = false
		f.flags[FlagWater] = false
		f.flags[FlagGas] = false
		f.flags[FlagSewerage] = false
		f.flags[FlagHardAccess] = false
		f.flags[FlagFence] = false
	}
	return f
}

func (f *FormState) Field(name string) string { return f.fields[name] }

func (f *FormState) SetField(name, value string) { f.fields[name] = value }

func (f *FormState) Flag(name string) bool { return f.flags[name] }

func (f *FormState) SetFlag(name string, on bool) { f.flags[name] = on }

// selectedValues returns the lowercased non-blank categorical selections for
// the relevance filter.
func (f *FormState) selectedValues() []string {
	var out []string
	for _, name := range categoricalFields[f.Kind] {
		v := strings.TrimSpace(f.fields[name])
		if v == "" {
			continue
		}
		out = append(out, strings.ToLower(v))
	}
	return out
}

// Payload builds the submission body: numeric fields coerced to numbers,
// amenity flags to 0/1, everything else passed through. Validate must have
// returned empty before calling this.
func (f *FormState) Payload() map[string]any {
	payload := make(map[string]any, len(f.fields)+len(f.flags))
	for name, value := range f.fields {
		if _, ok := numericFields[name]; ok {
			n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
			if err != nil {
				continue
			}
			payload[name] = n
			continue
		}
		payload[name] = value
	}
	for name, on := range f.flags {
		if on {
			payload[name] = 1
		} else {
			payload[name] = 0
		}
	}
	return payload
}
