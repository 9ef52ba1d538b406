package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Reference", "reference"},
		{"Due Date", "due_date"},
		{"  Due -- Date!  ", "due_date"},
		{"OWNER (name/email)", "owner_name_email"},
		{"___", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeHeader(tt.input), "input %q", tt.input)
	}
}

func TestMapColumnsExact(t *testing.T) {
	known := []string{"reference", "title", "description", "due_date"}

	mapping, warnings := MapColumns([]string{"Reference", "Title", "Due Date"}, known)
	assert.Empty(t, warnings)
	require.Len(t, mapping.Columns, 3)
	assert.Equal(t, "reference", mapping.Columns[0].TargetField)
	assert.Equal(t, "title", mapping.Columns[1].TargetField)
	assert.Equal(t, "due_date", mapping.Columns[2].TargetField)
	assert.True(t, mapping.Columns[0].AutoDetected)
}

func TestMapColumnsFuzzy(t *testing.T) {
	known := []string{"reference", "title", "description"}

	mapping, warnings := MapColumns([]string{"Descripton"}, known)
	require.Len(t, mapping.Columns, 1)
	assert.Equal(t, "description", mapping.Columns[0].TargetField)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "Descripton")
	assert.Contains(t, warnings[0], "description")
}

func TestMapColumnsUnmapped(t *testing.T) {
	known := []string{"reference", "title"}

	mapping, warnings := MapColumns([]string{"Completely Unrelated"}, known)
	assert.Empty(t, warnings)
	assert.Empty(t, mapping.Columns[0].TargetField)
}

func TestMapColumnsConflict(t *testing.T) {
	known := []string{"reference", "title"}

	mapping, _ := MapColumns([]string{"Reference", "reference"}, known)
	conflicts := mapping.Conflicts()
	require.Contains(t, conflicts, "reference")
	assert.Equal(t, []int{0, 1}, conflicts["reference"])
}
