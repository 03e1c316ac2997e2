package report

import (
	"strings"
	"testing"
	"time"

	"properlytics/internal/valuation"
)

func sampleReport() *Report {
	form := valuation.NewFormState(valuation.KindFlat)
	form.SetField(valuation.FieldArea, "50")
	form.SetField(valuation.FieldRooms, "2")
	form.SetField(valuation.FieldFloor, "3")
	form.SetField(valuation.FieldTotalFloors, "4")
	form.SetField(valuation.FieldYear, "2010")
	form.SetFlag(valuation.FlagLift, true)

	return &Report{
		Kind:   valuation.KindFlat,
		Form:   form,
		Result: &valuation.PredictionResult{PriceMin: 400000, PriceMax: 450000},
		Rows: []valuation.AttributionRow{
			{Label: "Metraż", Value: 8000},
			{Label: "Ogrzewanie: Gazowe", Value: -300},
		},
		GeneratedAt: time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
	}
}

func TestBuildMarkdown(t *testing.T) {
	md := sampleReport().BuildMarkdown()

	for _, want := range []string{
		"# Wycena nieruchomości — Mieszkanie",
		"Wygenerowano: 2026-03-14 10:30",
		"## Parametry",
		"| area | 50 |",
		"| hasLift | tak |",
		"**400 000 zł – 450 000 zł**",
		"| Metraż | +8 000 zł |",
		"| Ogrzewanie: Gazowe | -300 zł |",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
	// Unset flags stay out of the parameter table.
	if strings.Contains(md, "hasParking") {
		t.Fatalf("unset flag leaked into markdown:\n%s", md)
	}
}

func TestBuildMarkdownWithoutRows(t *testing.T) {
	r := sampleReport()
	r.Rows = nil
	md := r.BuildMarkdown()
	if strings.Contains(md, "Wpływ cech") {
		t.Fatalf("empty attribution section rendered:\n%s", md)
	}
}

func TestRenderHTML(t *testing.T) {
	htmlDoc, err := RenderHTML(sampleReport().BuildMarkdown())
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"<!doctype html>",
		"<h1",
		"Wycena nieruchomości",
		"<table>",
		"Metraż",
	} {
		if !strings.Contains(htmlDoc, want) {
			t.Fatalf("html missing %q", want)
		}
	}
}
