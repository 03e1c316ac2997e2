package valuation

import "testing"

func validFlatForm() *FormState {
	f := NewFormState(KindFlat)
	f.SetField(FieldArea, "50")
	f.SetField(FieldRooms, "2")
	f.SetField(FieldFloor, "3")
	f.SetField(FieldTotalFloors, "4")
	f.SetField(FieldYear, "2010")
	return f
}

func validHouseForm() *FormState {
	f := NewFormState(KindHouse)
	f.SetField(FieldAreaHouse, "120")
	f.SetField(FieldAreaPlot, "800")
	f.SetField(FieldRooms, "5")
	f.SetField(FieldFloors, "1")
	f.SetField(FieldYear, "1995")
	return f
}

func validPlotForm() *FormState {
	f := NewFormState(KindPlot)
	f.SetField(FieldArea, "1500")
	return f
}

func TestValidateWellFormedInputs(t *testing.T) {
	for _, form := range []*FormState{validFlatForm(), validHouseForm(), validPlotForm()} {
		if errs := Validate(form); len(errs) != 0 {
			t.Fatalf("%s: expected no errors, got %v", form.Kind, errs)
		}
	}
}

func TestValidateFlatAreaBounds(t *testing.T) {
	cases := []struct {
		area string
		want string
	}{
		{"", "Min. 10 m²"},
		{"9", "Min. 10 m²"},
		{"501", "Max. 500 m²"},
		{"abc", "Min. 10 m²"},
	}
	for _, tc := range cases {
		f := validFlatForm()
		f.SetField(FieldArea, tc.area)
		errs := Validate(f)
		if errs[FieldArea] != tc.want {
			t.Fatalf("area=%q: got %q, want %q", tc.area, errs[FieldArea], tc.want)
		}
	}
}

func TestValidateFlatFloorAboveBuilding(t *testing.T) {
	f := validFlatForm()
	f.SetField(FieldFloor, "7")
	f.SetField(FieldTotalFloors, "4")
	errs := Validate(f)
	if errs[FieldFloor] != "Piętro nie może być wyższe niż budynek" {
		t.Fatalf("expected floor error, got %v", errs)
	}
	if _, ok := errs[FieldTotalFloors]; ok {
		t.Fatalf("cross-field rule must not spill onto totalFloors: %v", errs)
	}
	if len(errs) != 1 {
		t.Fatalf("expected only a floor error, got %v", errs)
	}
}

func TestValidateFlatCrossFieldNeedsBothOperands(t *testing.T) {
	f := validFlatForm()
	f.SetField(FieldFloor, "7")
	f.SetField(FieldTotalFloors, "")
	errs := Validate(f)
	if errs[FieldFloor] != "" {
		t.Fatalf("cross-field rule fired without both operands: %v", errs)
	}
	if errs[FieldTotalFloors] != "Min. 1 piętro" {
		t.Fatalf("expected totalFloors range error, got %v", errs)
	}
}

func TestValidateReportsAllViolationsAtOnce(t *testing.T) {
	f := NewFormState(KindFlat)
	f.SetField(FieldCity, " ")
	errs := Validate(f)
	for _, field := range []string{FieldArea, FieldRooms, FieldFloor, FieldTotalFloors, FieldYear, FieldCity} {
		if errs[field] == "" {
			t.Fatalf("expected error on %s, got %v", field, errs)
		}
	}
}

func TestValidateYearWindow(t *testing.T) {
	f := validFlatForm()
	f.SetField(FieldYear, "1799")
	if errs := Validate(f); errs[FieldYear] != "Zbyt stary rok" {
		t.Fatalf("got %v", errs)
	}
	f.SetField(FieldYear, "2200")
	if errs := Validate(f); errs[FieldYear] != "Rok z przyszłości?" {
		t.Fatalf("got %v", errs)
	}
}

func TestValidateHouseFootprint(t *testing.T) {
	f := validHouseForm()
	// 300 m² over one storey needs at least 300 m² of plot.
	f.SetField(FieldAreaHouse, "300")
	f.SetField(FieldFloors, "0")
	f.SetField(FieldAreaPlot, "200")
	errs := Validate(f)
	if errs[FieldAreaPlot] != "Działka mniejsza niż obrys domu" {
		t.Fatalf("expected footprint error on areaPlot, got %v", errs)
	}

	// Two extra storeys shrink the footprint below the plot size.
	f.SetField(FieldFloors, "2")
	if errs := Validate(f); errs[FieldAreaPlot] != "" {
		t.Fatalf("footprint rule should pass with 3 storeys, got %v", errs)
	}
}

func TestValidateHouseRoomSize(t *testing.T) {
	f := validHouseForm()
	f.SetField(FieldAreaHouse, "60")
	f.SetField(FieldRooms, "11")
	errs := Validate(f)
	if errs[FieldRooms] != "Za dużo pokoi jak na ten metraż" {
		t.Fatalf("expected room-size error, got %v", errs)
	}
}

func TestValidateHouseFloorsRange(t *testing.T) {
	f := validHouseForm()
	f.SetField(FieldFloors, "5")
	if errs := Validate(f); errs[FieldFloors] != "Max. 4 piętra" {
		t.Fatalf("got %v", errs)
	}
	f.SetField(FieldFloors, "0")
	if errs := Validate(f); errs[FieldFloors] != "" {
		t.Fatalf("floors=0 must be allowed, got %v", errs)
	}
}

func TestValidatePlotAreaBounds(t *testing.T) {
	f := validPlotForm()
	f.SetField(FieldArea, "99")
	if errs := Validate(f); errs[FieldArea] != "Min. 100 m²" {
		t.Fatalf("got %v", errs)
	}
	f.SetField(FieldArea, "1000001")
	if errs := Validate(f); errs[FieldArea] != "Max. 100 ha (1 000 000 m²)" {
		t.Fatalf("got %v", errs)
	}
}

func TestValidateCityTrimmed(t *testing.T) {
	f := validPlotForm()
	f.SetField(FieldCity, "   ")
	if errs := Validate(f); errs[FieldCity] != "Wymagane" {
		t.Fatalf("got %v", errs)
	}
}
