package ml

import (
	"sync"

	onnxruntime "github.com/yalue/onnxruntime_go"

	"careercast/pkg/errors"
)

var (
	initOnce sync.Once
	initErr  error
)

// initRuntime initializes the ONNX runtime environment once per process.
// Loading may probe several candidate files, so this must be re-entrant.
func initRuntime() error {
	initOnce.Do(func() {
		initErr = onnxruntime.InitializeEnvironment()
	})
	return initErr
}

// Model wraps an ONNX Runtime session for classifier inference.
// A loaded model is immutable and safe for concurrent Predict calls.
type Model struct {
	session  *onnxruntime.DynamicAdvancedSession
	path     string
	hasProba bool
}

// Load opens an ONNX classifier from file.
//
// It first assumes the exported-classifier convention with two outputs
// ("output" with the class code, "probabilities" with the class distribution).
// Models exported without a probability output fall back to a class-only
// session; such models never report a confidence score.
func Load(modelPath string) (*Model, error) {
	if err := initRuntime(); err != nil {
		return nil, errors.Wrap(err, "failed to initialize ONNX runtime")
	}

	options, err := onnxruntime.NewSessionOptions()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create session options")
	}
	defer options.Destroy()

	session, err := onnxruntime.NewDynamicAdvancedSession(modelPath,
		[]string{"input"}, []string{"output", "probabilities"}, options)
	if err == nil {
		return &Model{session: session, path: modelPath, hasProba: true}, nil
	}

	session, err2 := onnxruntime.NewDynamicAdvancedSession(modelPath,
		[]string{"input"}, []string{"output"}, options)
	if err2 != nil {
		return nil, errors.Wrapf(errors.ErrArtifactCorrupt, "%s: %v; %v", modelPath, err, err2)
	}

	return &Model{session: session, path: modelPath, hasProba: false}, nil
}

// Path returns the file the model was loaded from.
func (m *Model) Path() string {
	return m.path
}

// HasProbabilities reports whether the model exposes a probability output.
func (m *Model) HasProbabilities() bool {
	return m.hasProba
}

// Predict runs the primary invocation: a [1, len(features)] input tensor, the
// structured form positional models expect. Returns the raw class code and,
// when the model supports it, the class probability distribution.
func (m *Model) Predict(features []float64) (int64, []float64, error) {
	shape := onnxruntime.NewShape(1, int64(len(features)))
	return m.run(features, shape)
}

// PredictRaw runs the secondary invocation with a flat [len(features)] tensor,
// the calling convention for models that reject the structured form.
func (m *Model) PredictRaw(features []float64) (int64, []float64, error) {
	shape := onnxruntime.NewShape(int64(len(features)))
	return m.run(features, shape)
}

func (m *Model) run(features []float64, inputShape onnxruntime.Shape) (int64, []float64, error) {
	if m.session == nil {
		return 0, nil, errors.New("model session is nil")
	}
	if len(features) == 0 {
		return 0, nil, errors.Wrap(errors.ErrInvalidInput, "empty feature vector")
	}

	inputTensor, err := onnxruntime.NewTensor(inputShape, features)
	if err != nil {
		return 0, nil, errors.Wrap(err, "failed to create input tensor")
	}
	defer inputTensor.Destroy()

	// Class output: int64, shape [1]
	classOutput := make([]int64, 1)
	classTensor, err := onnxruntime.NewTensor(onnxruntime.NewShape(1), classOutput)
	if err != nil {
		return 0, nil, errors.Wrap(err, "failed to create class output tensor")
	}
	defer classTensor.Destroy()

	inputs := []onnxruntime.Value{inputTensor}
	outputs := []onnxruntime.Value{classTensor}
	if m.hasProba {
		// The class count is unknown up front; a nil entry makes the
		// runtime allocate the probabilities tensor for us.
		outputs = append(outputs, nil)
	}

	if err := m.session.Run(inputs, outputs); err != nil {
		return 0, nil, errors.Wrap(err, "inference failed")
	}

	var probabilities []float64
	if m.hasProba && outputs[1] != nil {
		probabilities = extractProbabilities(outputs[1])
		outputs[1].Destroy()
	}

	return classOutput[0], probabilities, nil
}

// extractProbabilities reads a runtime-allocated probability tensor. Exporters
// disagree on the element type, so both float widths are accepted; anything
// else yields no distribution (and therefore no confidence score).
func extractProbabilities(value onnxruntime.Value) []float64 {
	switch t := value.(type) {
	case *onnxruntime.Tensor[float64]:
		out := make([]float64, len(t.GetData()))
		copy(out, t.GetData())
		return out
	case *onnxruntime.Tensor[float32]:
		data := t.GetData()
		out := make([]float64, len(data))
		for i, v := range data {
			out[i] = float64(v)
		}
		return out
	default:
		return nil
	}
}

// Destroy cleans up the ONNX session
func (m *Model) Destroy() {
	if m.session != nil {
		m.session.Destroy()
		m.session = nil
	}
}
