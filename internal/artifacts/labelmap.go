package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"careercast/pkg/errors"
)

// LabelMap maps raw classifier codes to human-readable role names. Training
// pipelines export it in either direction (code->name or name->code), so
// decoding probes both; see Decode.
type LabelMap map[string]any

// ParseLabelMap loads a label map from a JSON or YAML file.
func ParseLabelMap(path string) (LabelMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read label map")
	}

	m := make(map[string]any)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &m)
	default:
		err = json.Unmarshal(data, &m)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrArtifactCorrupt, err.Error())
	}
	if len(m) == 0 {
		return nil, errors.Wrap(errors.ErrArtifactCorrupt, "label map is empty")
	}

	return LabelMap(m), nil
}

// Decode resolves a raw class code to a label using an ordered list of lookup
// strategies:
//
//  1. exact key match on the raw code
//  2. key match on the whitespace-trimmed code
//  3. reverse scan: a key whose value string-compares equal to the code
//     (covers name->code maps; O(n) in map size, which is class-count-sized)
//
// When every strategy misses, or the map is nil, the raw code itself is the
// label.
func (lm LabelMap) Decode(rawCode string) string {
	if lm == nil {
		return rawCode
	}

	if v, ok := lm[rawCode]; ok {
		return stringify(v)
	}

	trimmed := strings.TrimSpace(rawCode)
	if v, ok := lm[trimmed]; ok {
		return stringify(v)
	}

	for k, v := range lm {
		if stringify(v) == trimmed {
			return k
		}
	}

	return rawCode
}

// DecodeCode resolves a numeric class code.
func (lm LabelMap) DecodeCode(code int64) string {
	return lm.Decode(fmt.Sprintf("%d", code))
}

// Len returns the number of classes in the map.
func (lm LabelMap) Len() int {
	return len(lm)
}

// stringify renders a label-map value for comparison and display. JSON decodes
// numeric codes as float64; those must not print as "1.000000".
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	case int:
		return fmt.Sprintf("%d", t)
	case int64:
		return fmt.Sprintf("%d", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
