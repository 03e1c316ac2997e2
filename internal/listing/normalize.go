// Package listing normalizes backend listing records whose field names drifted
// across schema versions into one canonical shape.
package listing

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Record is the canonical, schema-independent view of a listing. Price is nil
// when no price field of any vintage is present.
type Record struct {
	Price    *float64 `json:"price"`
	Title    string   `json:"title"`
	Location string   `json:"location"`
	Photos   []string `json:"photos"`
}

// Field precedence chains, newest schema first. Kept as explicit lists so the
// order is inspectable and testable rather than buried in conditionals.
var (
	priceFields = []string{"price_offer", "price", "cena", "predicted_price"}
	photoFields = []string{"photos_url", "photos", "photosUrls"}
)

// Normalize builds the canonical record from a raw decoded listing object.
// fallbackTitle is used when the record carries no usable title.
func Normalize(raw map[string]any, fallbackTitle string) Record {
	return Record{
		Price:    PickPrice(raw),
		Title:    PickTitle(raw, fallbackTitle),
		Location: PickLocation(raw),
		Photos:   PickPhotos(raw),
	}
}

// PickPrice returns the first numeric value along the price precedence chain,
// or nil when none is present or parseable.
func PickPrice(raw map[string]any) *float64 {
	for _, field := range priceFields {
		v, ok := raw[field]
		if !ok || v == nil {
			continue
		}
		if n, ok := asNumber(v); ok {
			return &n
		}
	}
	return nil
}

// PickTitle returns the trimmed title if non-blank, else fallback.
func PickTitle(raw map[string]any, fallback string) string {
	if t := strings.TrimSpace(stringField(raw, "title")); t != "" {
		return t
	}
	return fallback
}

// PickLocation composes the display location: city with district, else city
// with province, else city alone, else province alone, else "". Older records
// store the province under "region".
func PickLocation(raw map[string]any) string {
	city := strings.TrimSpace(stringField(raw, "city"))
	district := strings.TrimSpace(stringField(raw, "district"))
	province := strings.TrimSpace(stringField(raw, "province"))
	if province == "" {
		province = strings.TrimSpace(stringField(raw, "region"))
	}

	switch {
	case city != "" && district != "":
		return city + ", " + district
	case city != "" && province != "":
		return city + ", " + province
	case city != "":
		return city
	}
	return province
}

// PickPhotos resolves the photo field along its precedence chain and parses it.
func PickPhotos(raw map[string]any) []string {
	for _, field := range photoFields {
		if v, ok := raw[field]; ok && v != nil {
			if photos := ParsePhotos(v); len(photos) > 0 {
				return photos
			}
		}
	}
	return []string{}
}

// ParsePhotos accepts either a sequence of strings or one delimited string
// (comma, semicolon, or newline) and returns the trimmed non-empty entries in
// their original order. There is no escaping; a URL containing a separator
// splits. Unknown shapes yield an empty slice, never an error.
func ParsePhotos(v any) []string {
	out := []string{}
	switch photos := v.(type) {
	case []string:
		for _, p := range photos {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	case []any:
		for _, item := range photos {
			if s, ok := item.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		}
	case string:
		for _, p := range strings.FieldsFunc(photos, func(r rune) bool {
			return r == ',' || r == ';' || r == '\n'
		}) {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// FormatPrice renders a price the Polish way: thousands separated by spaces,
// rounded to whole złoty. Non-finite input renders empty.
func FormatPrice(price *float64) string {
	if price == nil {
		return ""
	}
	n := int64(*price + 0.5)
	if *price < 0 {
		n = int64(*price - 0.5)
	}
	digits := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(digits, "-")
	if neg {
		digits = digits[1:]
	}

	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(d)
	}
	out := b.String() + " zł"
	if neg {
		out = "-" + out
	}
	return out
}

func stringField(raw map[string]any, name string) string {
	if s, ok := raw[name].(string); ok {
		return s
	}
	return ""
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}
