// Command properlytics requests a price estimate for a flat, house, or plot,
// prints the predicted range with the feature explanation, and can render the
// result as a report or publish it as a listing.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"

	"properlytics/internal/apiclient"
	"properlytics/internal/config"
	"properlytics/internal/listing"
	"properlytics/internal/report"
	"properlytics/internal/telemetry"
	"properlytics/internal/valuation"
)

// formFile is the on-disk shape of a property description.
type formFile struct {
	Kind   string            `yaml:"kind"`
	Fields map[string]string `yaml:"fields"`
	Flags  map[string]bool   `yaml:"flags"`
}

// multiFlag collects repeated -set key=value pairs.
type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }

func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}

func main() {
	configPath := flag.String("config", "", "path to YAML config")
	backendURL := flag.String("backend", "http://localhost:8000", "valuation backend base URL")
	kindFlag := flag.String("kind", "", "property kind: flat, house, or plot")
	formPath := flag.String("form", "", "path to a YAML property description")
	reportPath := flag.String("report", "", "write a markdown report to this path")
	htmlPath := flag.String("html", "", "write an HTML report to this path")
	pdfPath := flag.String("pdf", "", "write a PDF report to this path")
	publish := flag.Bool("publish", false, "publish the property as a listing after valuation")
	title := flag.String("title", "", "listing title (with -publish)")
	description := flag.String("description", "", "listing description (with -publish)")
	phone := flag.String("phone", "", "listing phone number (with -publish)")
	photos := flag.String("photos", "", "listing photo URLs, comma-separated (with -publish)")
	priceOffer := flag.Float64("price", 0, "listing offer price (with -publish; defaults to the predicted maximum)")
	var sets multiFlag
	flag.Var(&sets, "set", "override one form value, e.g. -set area=50 or -set hasLift=true (repeatable)")
	flag.Parse()

	var cfg *config.Config
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		*backendURL = cfg.Backend.URL
		if cfg.Telemetry.Enabled {
			shutdown, err := telemetry.Setup(context.Background(), "properlytics", cfg.Telemetry.Endpoint)
			if err != nil {
				log.Fatalf("telemetry setup: %v", err)
			}
			defer func() {
				_ = shutdown(context.Background())
			}()
		}
	}

	form, err := buildForm(*kindFlag, *formPath, sets)
	if err != nil {
		log.Fatal(err)
	}

	client := apiclient.NewClient(*backendURL, apiclient.NewSession())
	controller := valuation.NewController(form, client, apiclient.Classify)

	ctx := context.Background()
	phase := controller.Submit(ctx)
	switch phase {
	case valuation.PhaseIdle:
		printValidationErrors(controller.Errors())
		os.Exit(1)
	case valuation.PhaseFailed:
		failure, _ := controller.Failure()
		if failure.Redirect != 0 {
			fmt.Fprintf(os.Stderr, "Błąd HTTP %d — przekierowanie na stronę błędu.\n", failure.Redirect)
		} else {
			fmt.Fprintln(os.Stderr, failure.Message)
		}
		os.Exit(1)
	}

	result, rows, _ := controller.Result()
	printResult(result, rows)

	// Report output defaults to the configured directory when no explicit
	// path was given.
	if *reportPath == "" && *htmlPath == "" && *pdfPath == "" && cfg != nil && cfg.Report.OutputDir != "" {
		stamp := time.Now().Format("20060102-150405")
		*reportPath = filepath.Join(cfg.Report.OutputDir, "wycena-"+stamp+".md")
		if cfg.Report.PDF {
			*pdfPath = filepath.Join(cfg.Report.OutputDir, "wycena-"+stamp+".pdf")
		}
	}

	if *reportPath != "" || *htmlPath != "" || *pdfPath != "" {
		if err := writeReports(ctx, form, result, rows, *reportPath, *htmlPath, *pdfPath); err != nil {
			log.Fatal(err)
		}
	}

	if *publish {
		if *title == "" {
			log.Fatal("-publish requires -title")
		}
		offer := *priceOffer
		if offer == 0 {
			offer = result.PriceMax
		}
		record := buildListingRecord(form, offer, *title, *description, *phone, *photos)
		created, err := client.PublishListing(ctx, form.Kind, record)
		if err != nil {
			log.Fatalf("publish listing: %v", err)
		}
		fmt.Printf("\nOgłoszenie opublikowane (id=%v)\n", created["id"])
	}
}

func buildForm(kind, formPath string, sets multiFlag) (*valuation.FormState, error) {
	var file formFile
	if formPath != "" {
		blob, err := os.ReadFile(formPath)
		if err != nil {
			return nil, fmt.Errorf("read form: %w", err)
		}
		if err := yaml.Unmarshal(blob, &file); err != nil {
			return nil, fmt.Errorf("parse form: %w", err)
		}
	}
	if kind == "" {
		kind = file.Kind
	}
	switch valuation.Kind(kind) {
	case valuation.KindFlat, valuation.KindHouse, valuation.KindPlot:
	default:
		return nil, fmt.Errorf("unknown kind %q (want flat, house, or plot)", kind)
	}

	form := valuation.NewFormState(valuation.Kind(kind))
	for name, value := range file.Fields {
		form.SetField(name, value)
	}
	for name, on := range file.Flags {
		form.SetFlag(name, on)
	}
	for _, pair := range sets {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid -set %q (want key=value)", pair)
		}
		if valuation.IsFlagName(name) {
			form.SetFlag(name, value == "true" || value == "1" || value == "tak")
			continue
		}
		form.SetField(name, value)
		if name == valuation.FieldCity {
			if province, ok := valuation.DeriveProvince(value); ok {
				form.SetField(valuation.FieldProvince, province)
			}
		}
	}
	return form, nil
}

func printValidationErrors(errs valuation.ValidationErrors) {
	fmt.Fprintln(os.Stderr, "Formularz zawiera błędy:")
	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		fmt.Fprintf(os.Stderr, "  %s: %s\n", field, errs[field])
	}
}

const chartWidth = 24

func printResult(result *valuation.PredictionResult, rows []valuation.AttributionRow) {
	min := result.PriceMin
	max := result.PriceMax
	fmt.Printf("Szacowana cena: %s – %s\n", listing.FormatPrice(&min), listing.FormatPrice(&max))

	if len(rows) == 0 {
		return
	}
	fmt.Println("\nWpływ cech na cenę:")

	labelWidth := 0
	maxAbs := 0.0
	for _, row := range rows {
		if w := runewidth.StringWidth(row.Label); w > labelWidth {
			labelWidth = w
		}
		if abs := row.Value; abs < 0 {
			if -abs > maxAbs {
				maxAbs = -abs
			}
		} else if abs > maxAbs {
			maxAbs = abs
		}
	}

	for _, row := range rows {
		abs := row.Value
		if abs < 0 {
			abs = -abs
		}
		n := 1
		if maxAbs > 0 {
			n = int(abs / maxAbs * chartWidth)
			if n < 1 {
				n = 1
			}
		}
		fmt.Printf("  %s  %s %s\n",
			runewidth.FillRight(row.Label, labelWidth),
			strings.Repeat("█", n),
			signedPrice(row.Value),
		)
	}
}

func signedPrice(v float64) string {
	abs := v
	if abs < 0 {
		abs = -abs
	}
	s := listing.FormatPrice(&abs)
	if v < 0 {
		return "-" + s
	}
	return "+" + s
}

func writeReports(ctx context.Context, form *valuation.FormState, result *valuation.PredictionResult, rows []valuation.AttributionRow, mdPath, htmlPath, pdfPath string) error {
	r := &report.Report{
		Kind:        form.Kind,
		Form:        form,
		Result:      result,
		Rows:        rows,
		GeneratedAt: time.Now(),
	}
	markdown := r.BuildMarkdown()

	if mdPath != "" {
		if err := writeFile(mdPath, []byte(markdown)); err != nil {
			return err
		}
	}
	if htmlPath == "" && pdfPath == "" {
		return nil
	}

	htmlDoc, err := report.RenderHTML(markdown)
	if err != nil {
		return err
	}
	if htmlPath != "" {
		if err := writeFile(htmlPath, []byte(htmlDoc)); err != nil {
			return err
		}
	}
	if pdfPath != "" {
		pdf, err := report.NewPDFRenderer().Render(ctx, htmlDoc)
		if err != nil {
			return fmt.Errorf("render pdf: %w", err)
		}
		if err := writeFile(pdfPath, pdf); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, blob []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		return err
	}
	fmt.Printf("Zapisano %s\n", path)
	return nil
}

// buildListingRecord maps the form payload onto the listing schema for the
// form's kind. Column names differ per kind and vintage, so the mapping is
// explicit.
func buildListingRecord(form *valuation.FormState, priceOffer float64, title, description, phone, photos string) map[string]any {
	payload := form.Payload()
	record := map[string]any{
		"title":        title,
		"description":  description,
		"price_offer":  priceOffer,
		"phone_number": phone,
		"photos_url":   photos,
		"city":         payload[valuation.FieldCity],
		"district":     payload[valuation.FieldDistrict],
		"province":     payload[valuation.FieldProvince],
	}

	copyKeys := func(keys ...string) {
		for _, k := range keys {
			if v, ok := payload[k]; ok {
				record[k] = v
			}
		}
	}

	switch form.Kind {
	case valuation.KindFlat:
		copyKeys(
			valuation.FieldArea, valuation.FieldRooms, valuation.FieldFloor,
			valuation.FieldTotalFloors, valuation.FieldYear, valuation.FieldBuildType,
			valuation.FieldMaterial, valuation.FieldHeating, valuation.FieldMarket,
			valuation.FieldConstructionStatus,
			valuation.FlagLift, valuation.FlagOutdoor, valuation.FlagParking,
		)
	case valuation.KindHouse:
		record["area"] = payload[valuation.FieldAreaHouse]
		record["plot_area"] = payload[valuation.FieldAreaPlot]
		record["heating"] = payload[valuation.FieldHeatingType]
		copyKeys(
			valuation.FieldRooms, valuation.FieldFloors, valuation.FieldYear,
			valuation.FieldBuildType, valuation.FieldMaterial, valuation.FieldMarket,
			valuation.FieldConstructionStatus, valuation.FlagGarage,
		)
	case valuation.KindPlot:
		record["area"] = payload[valuation.FieldArea]
		record["plot_type"] = payload[valuation.FieldPlotType]
		record["has_electricity"] = payload[valuation.FlagElectricity]
		record["has_water"] = payload[valuation.FlagWater]
		record["has_gas"] = payload[valuation.FlagGas]
		record["has_sewage"] = payload[valuation.FlagSewerage]
		record["is_fenced"] = payload[valuation.FlagFence]
		if payload[valuation.FlagHardAccess] == 1 {
			record["access_road"] = "utwardzona"
		}
	}
	return record
}
