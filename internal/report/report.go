// Package report renders a valuation into markdown, HTML, and PDF.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"properlytics/internal/listing"
	"properlytics/internal/valuation"
)

// Report is one completed valuation ready for rendering.
type Report struct {
	Kind        valuation.Kind
	Form        *valuation.FormState
	Result      *valuation.PredictionResult
	Rows        []valuation.AttributionRow
	GeneratedAt time.Time
}

var kindNames = map[valuation.Kind]string{
	valuation.KindFlat:  "Mieszkanie",
	valuation.KindHouse: "Dom",
	valuation.KindPlot:  "Działka",
}

// BuildMarkdown renders the report as GFM markdown: header, input parameters,
// the predicted range, and the ranked attribution table.
func (r *Report) BuildMarkdown() string {
	var b strings.Builder

	b.WriteString("# Wycena nieruchomości — " + kindNames[r.Kind] + "\n\n")
	b.WriteString("Wygenerowano: " + r.GeneratedAt.Format("2006-01-02 15:04") + "\n\n")

	b.WriteString("## Parametry\n\n")
	b.WriteString("| Parametr | Wartość |\n")
	b.WriteString("| --- | --- |\n")
	for _, row := range formRows(r.Form) {
		b.WriteString("| " + row[0] + " | " + row[1] + " |\n")
	}
	b.WriteString("\n")

	b.WriteString("## Szacowana cena\n\n")
	min := r.Result.PriceMin
	max := r.Result.PriceMax
	b.WriteString(fmt.Sprintf("**%s – %s**\n\n", listing.FormatPrice(&min), listing.FormatPrice(&max)))

	if len(r.Rows) > 0 {
		b.WriteString("## Wpływ cech na cenę\n\n")
		b.WriteString("| Cecha | Wpływ |\n")
		b.WriteString("| --- | --- |\n")
		for _, row := range r.Rows {
			b.WriteString("| " + row.Label + " | " + signedPrice(row.Value) + " |\n")
		}
		b.WriteString("\n")
	}

	return b.String()
}

func signedPrice(v float64) string {
	formatted := listing.FormatPrice(&v)
	if v > 0 {
		return "+" + formatted
	}
	return formatted
}

// formRows flattens the form into display pairs: payload values sorted by
// field name, with set flags rendered as "tak".
func formRows(form *valuation.FormState) [][2]string {
	payload := form.Payload()
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([][2]string, 0, len(keys))
	for _, k := range keys {
		switch v := payload[k].(type) {
		case float64:
			out = append(out, [2]string{k, strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")})
		case int:
			if v == 1 {
				out = append(out, [2]string{k, "tak"})
			}
		case string:
			if v != "" {
				out = append(out, [2]string{k, v})
			}
		}
	}
	return out
}
