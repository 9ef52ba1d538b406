package importer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceValueNull(t *testing.T) {
	for _, kind := range []FieldKind{KindString, KindInt, KindFloat, KindBool, KindDate, KindList} {
		v, warn := CoerceValue("", kind)
		assert.Nil(t, v, "kind %s", kind)
		assert.Empty(t, warn)
	}
}

func TestCoerceValueNumbers(t *testing.T) {
	v, warn := CoerceValue("42", KindInt)
	assert.Equal(t, 42, v)
	assert.Empty(t, warn)

	v, warn = CoerceValue("1234,56", KindFloat)
	assert.Equal(t, 1234.56, v)
	assert.Empty(t, warn)

	v, warn = CoerceValue("1234.56", KindFloat)
	assert.Equal(t, 1234.56, v)
	assert.Empty(t, warn)

	v, warn = CoerceValue("forty", KindInt)
	assert.Nil(t, v)
	assert.Contains(t, warn, "forty")
}

func TestCoerceValueBool(t *testing.T) {
	for _, raw := range []string{"true", "Yes", "y", "1", "ON"} {
		v, warn := CoerceValue(raw, KindBool)
		assert.Equal(t, true, v, raw)
		assert.Empty(t, warn)
	}
	for _, raw := range []string{"false", "No", "n", "0", "off"} {
		v, warn := CoerceValue(raw, KindBool)
		assert.Equal(t, false, v, raw)
		assert.Empty(t, warn)
	}

	v, warn := CoerceValue("maybe", KindBool)
	assert.Nil(t, v)
	assert.NotEmpty(t, warn)
}

func TestCoerceValueDate(t *testing.T) {
	v, warn := CoerceValue("2025-01-15", KindDate)
	require.Empty(t, warn)
	parsed, ok := v.(time.Time)
	require.True(t, ok)
	assert.Equal(t, "2025-01-15", parsed.Format("2006-01-02"))

	v, warn = CoerceValue("2025-02-29", KindDate)
	assert.Nil(t, v)
	assert.NotEmpty(t, warn)
}

func TestCoerceValueList(t *testing.T) {
	v, warn := CoerceValue(`["a","b"]`, KindList)
	assert.Empty(t, warn)
	assert.Equal(t, []interface{}{"a", "b"}, v)

	// Non-JSON input falls back to a single-element list
	v, warn = CoerceValue("plain text", KindList)
	assert.Empty(t, warn)
	assert.Equal(t, []interface{}{"plain text"}, v)
}

func TestNormalizeEnum(t *testing.T) {
	tests := []struct {
		value    string
		enumType EnumType
		want     string
	}{
		{"bau", EnumWorkType, "BAU"},
		{"BAU", EnumWorkType, "BAU"},
		{"growth", EnumWorkType, "Non BAU"},
		{"transformative", EnumWorkType, "Non BAU"},
		{"non-bau", EnumWorkType, "Non BAU"},
		{"done", EnumStatus, "Completed"},
		{"pending", EnumStatus, "On Hold"},
		{"3", EnumPriority, "High"},
		{"h", EnumPriority, "High"},
		{"orange", EnumRAG, "Amber"},
		{"b", EnumRAG, "Blue"},
		{"annual", EnumFrequency, "Annually"},
		{"yearly", EnumFrequency, "Annually"},
		{"quarter", EnumFrequency, "Quarterly"},
		{"  Amber  ", EnumRAG, "Amber"},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, warn := NormalizeEnum(tt.value, tt.enumType)
			assert.Equal(t, tt.want, got)
			assert.Empty(t, warn)
		})
	}
}

func TestNormalizeEnumUnresolved(t *testing.T) {
	got, warn := NormalizeEnum("invalid_value", EnumRAG)
	assert.Empty(t, got)
	assert.Contains(t, warn, "invalid_value")
	assert.Contains(t, warn, string(EnumRAG))
}
