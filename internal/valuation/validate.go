package valuation

import (
	"strconv"
	"strings"
	"time"
)

// Validate recomputes the full error map for the form's current values. It is
// deterministic, reports every violated field at once, and never panics; a
// non-empty result blocks submission.
func Validate(form *FormState) ValidationErrors {
	errs := ValidationErrors{}
	switch form.Kind {
	case KindFlat:
		validateFlat(form, errs)
	case KindHouse:
		validateHouse(form, errs)
	case KindPlot:
		validatePlot(form, errs)
	}
	return errs
}

func validateFlat(form *FormState, errs ValidationErrors) {
	area, areaOK := number(form, FieldArea)
	if !areaOK || area < 10 {
		errs[FieldArea] = "Min. 10 m²"
	} else if area > 500 {
		errs[FieldArea] = "Max. 500 m²"
	}

	rooms, roomsOK := number(form, FieldRooms)
	if !roomsOK || rooms < 1 {
		errs[FieldRooms] = "Min. 1 pokój"
	} else if rooms > 15 {
		errs[FieldRooms] = "Max. 15 pokoi"
	}

	floor, floorOK := number(form, FieldFloor)
	if !floorOK || floor < -1 {
		errs[FieldFloor] = "Min. -1 (piwnica)"
	} else if floor > 50 {
		errs[FieldFloor] = "Max. 50 piętro"
	}

	total, totalOK := number(form, FieldTotalFloors)
	if !totalOK || total < 1 {
		errs[FieldTotalFloors] = "Min. 1 piętro"
	} else if total > 50 {
		errs[FieldTotalFloors] = "Max. 50 pięter"
	}
	if floorOK && totalOK && floor > total {
		errs[FieldFloor] = "Piętro nie może być wyższe niż budynek"
	}

	validateYear(form, errs)
	requireText(form, FieldCity, errs)
	requireText(form, FieldProvince, errs)
}

func validateHouse(form *FormState, errs ValidationErrors) {
	areaHouse, houseOK := number(form, FieldAreaHouse)
	if !houseOK || areaHouse < 15 {
		errs[FieldAreaHouse] = "Min. 15 m²"
	} else if areaHouse > 1500 {
		errs[FieldAreaHouse] = "Max. 1500 m²"
	}

	areaPlot, plotOK := number(form, FieldAreaPlot)
	if !plotOK || areaPlot < 100 {
		errs[FieldAreaPlot] = "Min. 100 m²"
	} else if areaPlot > 1000000 {
		errs[FieldAreaPlot] = "Max. 100 ha (1 000 000 m²)"
	}

	rooms, roomsOK := number(form, FieldRooms)
	if !roomsOK || rooms < 1 {
		errs[FieldRooms] = "Min. 1 pokój"
	} else if rooms > 20 {
		errs[FieldRooms] = "Max. 20 pokoi"
	}

	floors, floorsOK := number(form, FieldFloors)
	if !floorsOK || floors < 0 {
		errs[FieldFloors] = "Min. 0 (parterowy)"
	} else if floors > 4 {
		errs[FieldFloors] = "Max. 4 piętra"
	}

	// Footprint estimate: a house spread over floors+1 storeys cannot stand on
	// a smaller plot. floors == 0 means a single storey, so the divisor is 1.
	if houseOK && plotOK && floorsOK {
		storeys := floors + 1
		if storeys < 1 {
			storeys = 1
		}
		if areaHouse/storeys > areaPlot {
			errs[FieldAreaPlot] = "Działka mniejsza niż obrys domu"
		}
	}

	// Minimum plausible room size is 6 m².
	if houseOK && roomsOK && rooms >= 1 && areaHouse/rooms < 6 {
		errs[FieldRooms] = "Za dużo pokoi jak na ten metraż"
	}

	validateYear(form, errs)
	requireText(form, FieldCity, errs)
}

func validatePlot(form *FormState, errs ValidationErrors) {
	area, ok := number(form, FieldArea)
	if !ok || area < 100 {
		errs[FieldArea] = "Min. 100 m²"
	} else if area > 1000000 {
		errs[FieldArea] = "Max. 100 ha (1 000 000 m²)"
	}
	requireText(form, FieldCity, errs)
}

func validateYear(form *FormState, errs ValidationErrors) {
	year, ok := number(form, FieldYear)
	currentYear := float64(time.Now().Year())
	if !ok || year < 1800 {
		errs[FieldYear] = "Zbyt stary rok"
	} else if year > currentYear+5 {
		errs[FieldYear] = "Rok z przyszłości?"
	}
}

func requireText(form *FormState, name string, errs ValidationErrors) {
	if strings.TrimSpace(form.Field(name)) == "" {
		errs[name] = "Wymagane"
	}
}

func number(form *FormState, name string) (float64, bool) {
	raw := strings.TrimSpace(form.Field(name))
	if raw == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
