package valuation

// Kind identifies the property type behind a form instance.
type Kind string

const (
	KindFlat  Kind = "flat"
	KindHouse Kind = "house"
	KindPlot  Kind = "plot"
)

// ListingPath returns the plural path segment used by the listing API.
func (k Kind) ListingPath() string {
	switch k {
	case KindFlat:
		return "flats"
	case KindHouse:
		return "houses"
	case KindPlot:
		return "plots"
	}
	return string(k)
}

// PredictionResult is the valuation backend's response. PriceMin > PriceMax is
// a producer bug; it is displayed as given, never coerced.
type PredictionResult struct {
	PriceMin     float64            `json:"price_min"`
	PriceMax     float64            `json:"price_max"`
	Price        float64            `json:"cena,omitempty"`
	Attributions map[string]float64 `json:"shap_values"`
}

// AttributionRow is one bar of the explanation chart. Labels are unique within
// one aggregated sequence.
type AttributionRow struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ValidationErrors maps field name to a human message. Empty means submittable.
type ValidationErrors map[string]string

// Phase is the submission state of a single form instance.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseValidating Phase = "validating"
	PhaseSubmitting Phase = "submitting"
	PhaseSucceeded  Phase = "succeeded"
	PhaseFailed     Phase = "failed"
)

// Failure is a classified submission failure. Redirect is non-zero when the
// response status (403, 500, 503) maps to a static error view; in that case
// the shell navigates and Message is not shown against the form.
type Failure struct {
	Redirect int
	Message  string
}

// FailureClassifier turns a transport-layer error into a Failure. The
// transport never navigates; the caller decides what a Redirect means.
type FailureClassifier func(error) Failure
