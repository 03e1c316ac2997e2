package valuation

import (
	"context"
	"sync"
)

// Predictor is the abstract transport the controller submits through.
type Predictor interface {
	Predict(ctx context.Context, kind Kind, payload map[string]any) (*PredictionResult, error)
}

// Controller owns one form's submission lifecycle:
//
//	Idle --submit--> Validating --errors--> Idle (errors surfaced, no call)
//	                 Validating --clean---> Submitting --ok--> Succeeded
//	                                        Submitting --err-> Failed
//
// Any edit in a terminal state returns to Idle and discards the stale result
// or failure. Submit is inert while a request is in flight; there is no
// cancellation primitive and no queuing.
type Controller struct {
	mu        sync.Mutex
	form      *FormState
	predictor Predictor
	classify  FailureClassifier

	phase    Phase
	errors   ValidationErrors
	result   *PredictionResult
	rows     []AttributionRow
	failure  Failure
	inFlight bool
}

// NewController binds a form to a predictor. classify may be nil, in which
// case every failure surfaces as a generic message.
func NewController(form *FormState, predictor Predictor, classify FailureClassifier) *Controller {
	if classify == nil {
		classify = func(err error) Failure {
			return Failure{Message: "Wystąpił nieoczekiwany błąd aplikacji."}
		}
	}
	return &Controller{
		form:      form,
		predictor: predictor,
		classify:  classify,
		phase:     PhaseIdle,
	}
}

func (c *Controller) Form() *FormState { return c.form }

func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Errors returns the validation errors from the last submit attempt.
func (c *Controller) Errors() ValidationErrors {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(ValidationErrors, len(c.errors))
	for k, v := range c.errors {
		out[k] = v
	}
	return out
}

// Result returns the prediction and its aggregated rows once Succeeded.
func (c *Controller) Result() (*PredictionResult, []AttributionRow, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseSucceeded {
		return nil, nil, false
	}
	return c.result, c.rows, true
}

// Failure returns the classified failure once Failed.
func (c *Controller) Failure() (Failure, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseFailed {
		return Failure{}, false
	}
	return c.failure, true
}

// SetField updates one field, clears its pending error, derives the province
// on a city change, and resets a terminal state to Idle so a stale result is
// never shown against edited inputs.
func (c *Controller) SetField(name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form.SetField(name, value)
	delete(c.errors, name)
	if name == FieldCity {
		if province, ok := DeriveProvince(value); ok {
			c.form.SetField(FieldProvince, province)
		}
	}
	c.resetTerminal()
}

// SetFlag updates one amenity flag with the same reset semantics as SetField.
func (c *Controller) SetFlag(name string, on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form.SetFlag(name, on)
	c.resetTerminal()
}

func (c *Controller) resetTerminal() {
	if c.phase == PhaseSucceeded || c.phase == PhaseFailed {
		c.phase = PhaseIdle
		c.result = nil
		c.rows = nil
		c.failure = Failure{}
	}
}

// Submit runs validate → predict → aggregate and returns the resulting phase.
// While a request is in flight the call is a no-op returning the current
// phase.
func (c *Controller) Submit(ctx context.Context) Phase {
	c.mu.Lock()
	if c.inFlight {
		phase := c.phase
		c.mu.Unlock()
		return phase
	}

	c.phase = PhaseValidating
	c.result = nil
	c.rows = nil
	c.failure = Failure{}

	errs := Validate(c.form)
	if len(errs) > 0 {
		c.errors = errs
		c.phase = PhaseIdle
		c.mu.Unlock()
		return PhaseIdle
	}
	c.errors = nil
	c.phase = PhaseSubmitting
	c.inFlight = true

	kind := c.form.Kind
	payload := c.form.Payload()
	predictor := c.predictor
	c.mu.Unlock()

	result, err := predictor.Predict(ctx, kind, payload)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false
	if err != nil {
		c.failure = c.classify(err)
		c.phase = PhaseFailed
		return PhaseFailed
	}
	c.result = result
	c.rows = Aggregate(result.Attributions, c.form)
	c.phase = PhaseSucceeded
	return PhaseSucceeded
}
