package artifacts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoad_MissingDirectory(t *testing.T) {
	bundle := Load(filepath.Join(t.TempDir(), "does-not-exist"))

	require.NotNil(t, bundle)
	assert.False(t, bundle.HasModel())
	assert.Nil(t, bundle.Labels)
	assert.Nil(t, bundle.Schema)
}

func TestLoad_EmptyDirectory(t *testing.T) {
	bundle := Load(t.TempDir())

	require.NotNil(t, bundle)
	assert.False(t, bundle.HasModel())
}

func TestLoad_CorruptModelCandidateSkipped(t *testing.T) {
	dir := t.TempDir()
	// Matches the model keyword/extension heuristics but is not a real model
	writeFile(t, dir, "career_model.onnx", "definitely not an onnx file")

	bundle := Load(dir)

	require.NotNil(t, bundle)
	assert.False(t, bundle.HasModel())
}

func TestLoad_LabelsAndSchemaWithoutModel(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "label_mapping.json", `{"0":"Engineer","1":"Analyst"}`)
	writeFile(t, dir, SchemaFileName, `["math_score"," Coding_Skill ","communication"]`)

	bundle := Load(dir)

	require.NotNil(t, bundle)
	assert.False(t, bundle.HasModel())
	require.NotNil(t, bundle.Labels)
	assert.Equal(t, "Analyst", bundle.Labels.DecodeCode(1))
	assert.Equal(t, []string{"math_score", " Coding_Skill ", "communication"}, bundle.Schema)
}

func TestLoad_CorruptLabelMapSkipped(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "label_mapping.json", "{broken")
	writeFile(t, dir, "role_labels.json", `{"0":"Engineer"}`)

	bundle := Load(dir)

	require.NotNil(t, bundle.Labels)
	assert.Equal(t, "Engineer", bundle.Labels.DecodeCode(0))
}

func TestLoad_CorruptSchemaIgnored(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, SchemaFileName, "not a json array")

	bundle := Load(dir)

	assert.Nil(t, bundle.Schema)
}

func TestMatchCandidates(t *testing.T) {
	names := []string{
		"Career_Prediction_Model.onnx",
		"notes.txt",
		"model.ort",
		"unrelated.onnx",
		"old_model.onnx.bak",
	}

	got := matchCandidates(names, modelKeywords, modelExts)

	assert.Equal(t, []string{"Career_Prediction_Model.onnx", "model.ort"}, got)
}
