package artifacts

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"careercast/internal/ml"
	"careercast/pkg/logger"
)

// SchemaFileName is the well-known feature schema file: an ordered JSON list
// of the column names the model was trained on.
const SchemaFileName = "feature_columns.json"

var (
	modelKeywords = []string{"model", "career", "prediction"}
	modelExts     = []string{".onnx", ".ort"}

	labelKeywords = []string{"label", "mapping"}
	labelExts     = []string{".json", ".yaml", ".yml"}
)

// Bundle holds everything loaded from the artifacts directory. It is built
// once during startup and read-only afterwards; any field may be absent and
// the serving pipeline degrades accordingly.
type Bundle struct {
	Model  *ml.Model
	Labels LabelMap
	Schema []string
}

// HasModel reports whether a usable model was loaded.
func (b *Bundle) HasModel() bool {
	return b != nil && b.Model != nil
}

// Close releases the model session, if any.
func (b *Bundle) Close() {
	if b != nil && b.Model != nil {
		b.Model.Destroy()
	}
}

// Load scans dir for a model, a label map and a feature schema using filename
// heuristics, and loads whatever it can. Candidates that fail to deserialize
// are logged and skipped; a missing or unreadable directory yields an empty
// bundle. Load never fails: every degraded outcome is a valid serving state.
func Load(dir string) *Bundle {
	log := logger.Get().With("component", "artifacts")
	bundle := &Bundle{}

	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Warnf("Artifacts directory %s not readable: %v", dir, err)
		return bundle
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}

	loadModel(bundle, dir, names, log)
	loadLabels(bundle, dir, names, log)
	loadSchema(bundle, dir, log)

	return bundle
}

func loadModel(bundle *Bundle, dir string, names []string, log *logger.Logger) {
	candidates := matchCandidates(names, modelKeywords, modelExts)
	if len(candidates) == 0 {
		log.Warnf("No candidate model files found in %s", dir)
		return
	}
	log.Infof("Found candidate model files: %v", candidates)

	for _, fn := range candidates {
		path := filepath.Join(dir, fn)
		model, err := ml.Load(path)
		if err != nil {
			log.Warnf("Failed to load model %s: %v", fn, err)
			continue
		}
		log.Infof("Loaded model from %s (probabilities=%v)", fn, model.HasProbabilities())
		bundle.Model = model
		return
	}
	log.Warn("All model candidates failed to load; predictions will return the fallback message")
}

func loadLabels(bundle *Bundle, dir string, names []string, log *logger.Logger) {
	candidates := matchCandidates(names, labelKeywords, labelExts)
	if len(candidates) == 0 {
		log.Info("No label mapping file found (optional)")
		return
	}

	for _, fn := range candidates {
		labels, err := ParseLabelMap(filepath.Join(dir, fn))
		if err != nil {
			log.Warnf("Failed to load label map %s: %v", fn, err)
			continue
		}
		log.Infof("Loaded label mapping from %s (%d classes)", fn, labels.Len())
		bundle.Labels = labels
		return
	}
}

func loadSchema(bundle *Bundle, dir string, log *logger.Logger) {
	path := filepath.Join(dir, SchemaFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Infof("%s not found (optional)", SchemaFileName)
		} else {
			log.Warnf("Failed to read %s: %v", SchemaFileName, err)
		}
		return
	}

	var schema []string
	if err := json.Unmarshal(data, &schema); err != nil {
		log.Warnf("Failed to parse %s: %v", SchemaFileName, err)
		return
	}
	log.Infof("Loaded feature schema (%d columns)", len(schema))
	bundle.Schema = schema
}

// matchCandidates returns names whose lowercased form contains any keyword and
// ends with any of the extensions, preserving listing order.
func matchCandidates(names, keywords, exts []string) []string {
	var out []string
	for _, name := range names {
		lower := strings.ToLower(name)
		if !hasAnyExt(lower, exts) {
			continue
		}
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				out = append(out, name)
				break
			}
		}
	}
	return out
}

func hasAnyExt(lowerName string, exts []string) bool {
	for _, ext := range exts {
		if strings.HasSuffix(lowerName, ext) {
			return true
		}
	}
	return false
}
