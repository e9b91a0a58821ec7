package schemas

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileName(t *testing.T) {
	assert.Equal(t, "schema_Monitor.json", FileName("Monitor"))
	assert.Equal(t, "schema_Graphics_Card.json", FileName("Graphics Card"))
	assert.Equal(t, "schema_Laptop_Bag.json", FileName("Laptop/Bag"))
}

func TestCategoryFromFileName(t *testing.T) {
	assert.Equal(t, "Monitor", categoryFromFileName("schema_Monitor.json"))
	assert.Equal(t, "Graphics Card", categoryFromFileName("schema_Graphics_Card.json"))
}

func TestSaveAndLoadDir(t *testing.T) {
	dir := t.TempDir()
	monitor := Template{"brand": "", "screen_size": "", "resolution": ""}
	gpu := Template{"brand": "", "memory": ""}

	require.NoError(t, Save(dir, "Monitor", monitor))
	require.NoError(t, Save(dir, "Graphics Card", gpu))

	// Unrelated files in the directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0o644))

	loaded, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, monitor, loaded["Monitor"])
	assert.Equal(t, gpu, loaded["Graphics Card"])
}

func TestLoadDir_MissingDirectory(t *testing.T) {
	_, err := LoadDir(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestLoadDir_CorruptSchemaFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "schema_Bad.json"), []byte("{broken"), 0o644))
	_, err := LoadDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema_Bad.json")
}

func TestValidatePayload_Conforming(t *testing.T) {
	tmpl := Template{"brand": "", "screen_size": ""}
	assert.NoError(t, ValidatePayload("Monitor", tmpl, `{"brand":"Dell","screen_size":"27"}`))
}

func TestValidatePayload_NullAndMissingFieldsAllowed(t *testing.T) {
	tmpl := Template{"brand": "", "screen_size": ""}
	assert.NoError(t, ValidatePayload("Monitor", tmpl, `{"brand":null}`))
	assert.NoError(t, ValidatePayload("Monitor", tmpl, `{}`))
}

func TestValidatePayload_ExtraFieldsAllowed(t *testing.T) {
	tmpl := Template{"brand": ""}
	assert.NoError(t, ValidatePayload("Monitor", tmpl, `{"brand":"Dell","panel_type":"IPS"}`))
}

func TestValidatePayload_WrongTypeFails(t *testing.T) {
	tmpl := Template{"screen_size": ""}
	err := ValidatePayload("Monitor", tmpl, `{"screen_size":27}`)
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.NotEmpty(t, ve.Errors)
	assert.Equal(t, "screen_size", ve.Errors[0].Field)
}

func TestValidatePayload_NonObjectFails(t *testing.T) {
	tmpl := Template{"brand": ""}
	err := ValidatePayload("Monitor", tmpl, `["not","an","object"]`)
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestValidatePayload_UnparsablePayload(t *testing.T) {
	tmpl := Template{"brand": ""}
	err := ValidatePayload("Monitor", tmpl, `{broken json`)
	require.Error(t, err)

	var le *SchemaLoadError
	assert.True(t, errors.As(err, &le), "malformed payload surfaces as a load error, not a validation error")
}
