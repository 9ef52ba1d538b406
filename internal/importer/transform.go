package importer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FieldKind selects the coercion applied to a raw cell value.
type FieldKind string

const (
	KindString   FieldKind = "string"
	KindInt      FieldKind = "int"
	KindFloat    FieldKind = "float"
	KindBool     FieldKind = "bool"
	KindDate     FieldKind = "date"
	KindDateTime FieldKind = "datetime"
	KindList     FieldKind = "list"
)

// EnumType names a controlled vocabulary.
type EnumType string

const (
	EnumWorkType  EnumType = "work_type"
	EnumStatus    EnumType = "status"
	EnumPriority  EnumType = "priority"
	EnumRAG       EnumType = "rag_status"
	EnumFrequency EnumType = "frequency"
)

var truthyTokens = map[string]bool{
	"true": true, "yes": true, "y": true, "1": true, "on": true,
}

var falsyTokens = map[string]bool{
	"false": true, "no": true, "n": true, "0": true, "off": true,
}

// CoerceValue converts a raw cell to the requested type. A null input returns
// nil for every kind. Failures degrade to nil plus a warning; they never
// become errors at this layer.
func CoerceValue(raw string, kind FieldKind) (interface{}, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ""
	}

	switch kind {
	case KindString:
		return raw, ""

	case KindInt:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Sprintf("value %q is not a valid integer", raw)
		}
		return v, ""

	case KindFloat:
		normalized := raw
		// European decimal comma: "1234,56" but not "1,234.56"
		if strings.Count(normalized, ",") == 1 && !strings.Contains(normalized, ".") {
			normalized = strings.Replace(normalized, ",", ".", 1)
		}
		v, err := strconv.ParseFloat(normalized, 64)
		if err != nil {
			return nil, fmt.Sprintf("value %q is not a valid number", raw)
		}
		return v, ""

	case KindBool:
		token := strings.ToLower(raw)
		if truthyTokens[token] {
			return true, ""
		}
		if falsyTokens[token] {
			return false, ""
		}
		return nil, fmt.Sprintf("value %q is not a recognized boolean", raw)

	case KindDate, KindDateTime:
		t := ParseDate(raw)
		if t == nil {
			return nil, fmt.Sprintf("value %q could not be parsed as a date", raw)
		}
		return *t, ""

	case KindList:
		var items []interface{}
		if err := json.Unmarshal([]byte(raw), &items); err == nil {
			return items, ""
		}
		return []interface{}{raw}, ""
	}

	return raw, ""
}

// enumCanonical holds the canonical value set per enum type, keyed by the
// case-folded form.
var enumCanonical = map[EnumType]map[string]string{
	EnumWorkType: {
		"bau":     "BAU",
		"non bau": "Non BAU",
	},
	EnumStatus: {
		"not started": "Not Started",
		"in progress": "In Progress",
		"completed":   "Completed",
		"on hold":     "On Hold",
		"cancelled":   "Cancelled",
	},
	EnumPriority: {
		"low":      "Low",
		"medium":   "Medium",
		"high":     "High",
		"critical": "Critical",
	},
	EnumRAG: {
		"red":   "Red",
		"amber": "Amber",
		"green": "Green",
		"blue":  "Blue",
	},
	EnumFrequency: {
		"monthly":   "Monthly",
		"quarterly": "Quarterly",
		"annually":  "Annually",
	},
}

// enumAliases maps recognized spellings that are not themselves canonical.
// Keys are case-folded and whitespace-trimmed before lookup.
var enumAliases = map[EnumType]map[string]string{
	EnumWorkType: {
		"business as usual": "BAU",
		"growth":            "Non BAU",
		"transformative":    "Non BAU",
		"non-bau":           "Non BAU",
		"nonbau":            "Non BAU",
	},
	EnumStatus: {
		"done":        "Completed",
		"complete":    "Completed",
		"finished":    "Completed",
		"pending":     "On Hold",
		"hold":        "On Hold",
		"wip":         "In Progress",
		"in-progress": "In Progress",
		"ongoing":     "In Progress",
		"canceled":    "Cancelled",
	},
	EnumPriority: {
		"1": "Low",
		"2": "Medium",
		"3": "High",
		"4": "Critical",
		"l": "Low",
		"m": "Medium",
		"h": "High",
		"c": "Critical",
	},
	EnumRAG: {
		"r":      "Red",
		"a":      "Amber",
		"g":      "Green",
		"b":      "Blue",
		"orange": "Amber",
	},
	EnumFrequency: {
		"annual":  "Annually",
		"yearly":  "Annually",
		"quarter": "Quarterly",
		"month":   "Monthly",
	},
}

// NormalizeEnum resolves a raw value to its canonical enum spelling. An
// unresolved value yields the empty string plus a warning naming both the
// value and the enum type.
func NormalizeEnum(value string, enumType EnumType) (string, string) {
	token := strings.ToLower(strings.TrimSpace(value))
	if token == "" {
		return "", ""
	}

	if canonical, ok := enumCanonical[enumType][token]; ok {
		return canonical, ""
	}
	if canonical, ok := enumAliases[enumType][token]; ok {
		return canonical, ""
	}

	return "", fmt.Sprintf("unrecognized %s value %q", enumType, value)
}
