package inference

import (
	"context"
	"fmt"
	"time"

	"careercast/internal/artifacts"
	"careercast/internal/domain/prediction"
	"careercast/internal/features"
	"careercast/internal/metrics"
	"careercast/internal/storage"
	"careercast/pkg/errors"
	"careercast/pkg/logger"
)

// State is the terminal outcome of a single inference request.
type State string

const (
	// StateSuccess means the model produced a prediction.
	StateSuccess State = "success"
	// StateNoModel means no model is loaded; serving continues degraded.
	StateNoModel State = "no_model"
	// StateFailed means both invocation strategies failed.
	StateFailed State = "failed"
)

// NoModelLabel is the sentinel label recorded and returned while the process
// runs without a loaded model.
const NoModelLabel = "Model not available (dev)."

// Result is the outcome of one inference request.
type Result struct {
	PredictedID int64
	Label       string
	Confidence  *float64
	State       State
}

// Executor runs the serving pipeline: reconcile input, invoke the model with
// fallback, decode the label, and persist the attempt. Every terminal state
// (success, no-model, failed) writes exactly one prediction record before the
// caller sees a response.
type Executor struct {
	bundle *artifacts.Bundle
	store  storage.Gateway
	log    *logger.Logger
}

// NewExecutor creates an executor over an immutable artifact bundle.
func NewExecutor(bundle *artifacts.Bundle, store storage.Gateway) *Executor {
	return &Executor{
		bundle: bundle,
		store:  store,
		log:    logger.Get().With("component", "inference"),
	}
}

// Execute handles one prediction request. keys, when non-nil, carries the
// caller's field order for schema-less pass-through reconciliation.
//
// Only the failed state returns a non-nil error; absence of a model is a
// degraded-but-running state, not a request failure.
func (e *Executor) Execute(ctx context.Context, input map[string]any, keys []string, userID *string) (*Result, error) {
	start := time.Now()

	if !e.bundle.HasModel() {
		result := &Result{PredictedID: -1, Label: NoModelLabel, State: StateNoModel}
		e.persist(ctx, input, userID, result)
		metrics.RecordPrediction(string(StateNoModel), time.Since(start), nil)
		return result, nil
	}

	vec := features.Reconcile(input, keys, e.bundle.Schema)

	class, probs, err := e.invoke(vec)
	if err != nil {
		result := &Result{Label: "Prediction failed: " + err.Error(), State: StateFailed}
		e.persist(ctx, input, userID, result)
		metrics.RecordPrediction(string(StateFailed), time.Since(start), nil)
		return nil, errors.Wrap(errors.ErrInferenceFailed, err.Error())
	}

	result := &Result{
		PredictedID: class,
		Label:       e.bundle.Labels.DecodeCode(class),
		Confidence:  maxProbability(probs),
		State:       StateSuccess,
	}

	e.persist(ctx, input, userID, result)
	metrics.RecordPrediction(string(StateSuccess), time.Since(start), result.Confidence)
	return result, nil
}

// invoke tries the structured invocation first and retries once with the raw
// positional form for models that reject it. The returned error concatenates
// both failures so the persisted record explains the whole attempt.
func (e *Executor) invoke(vec features.Vector) (int64, []float64, error) {
	var primaryErr error

	if floats, ok := vec.Floats(); ok {
		class, probs, err := e.bundle.Model.Predict(floats)
		if err == nil {
			return class, probs, nil
		}
		primaryErr = err
	} else {
		primaryErr = errors.Wrap(errors.ErrInvalidInput, "non-numeric values in feature vector")
	}

	e.log.Warnf("Structured invocation failed, retrying raw form: %v", primaryErr)

	class, probs, fallbackErr := e.bundle.Model.PredictRaw(vec.FloatsLossy())
	if fallbackErr != nil {
		return 0, nil, fmt.Errorf("%v; %v", primaryErr, fallbackErr)
	}
	return class, probs, nil
}

// persist writes the prediction record. History writes never fail the request:
// a storage error here is logged and dropped.
func (e *Executor) persist(ctx context.Context, input map[string]any, userID *string, result *Result) {
	rec := &prediction.Record{
		UserID:        userID,
		Input:         input,
		PredictedRole: result.Label,
		Confidence:    result.Confidence,
	}

	if err := e.store.SavePrediction(ctx, rec); err != nil {
		e.log.Warnf("Failed to save prediction record: %v", err)
	}
}

// maxProbability extracts the confidence score: the maximum class probability,
// or the value itself in the scalar case. Scores are passed through without
// clamping; calibration is the model's job.
func maxProbability(probs []float64) *float64 {
	if len(probs) == 0 {
		return nil
	}

	max := probs[0]
	for _, p := range probs[1:] {
		if p > max {
			max = p
		}
	}
	return &max
}
