package importer

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"registry-web/internal/models"
)

// fuzzyHeaderThreshold is the minimum whole-string similarity for a fuzzy
// header match.
const fuzzyHeaderThreshold = 80.0

var headerSeparators = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeHeader canonicalizes a source header for matching: lowercase,
// non-alphanumeric runs collapsed to a single underscore, separators trimmed.
func NormalizeHeader(s string) string {
	s = strings.ToLower(s)
	s = headerSeparators.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// MapColumns maps source headers to known target-field keys: exact match on
// the normalized header first, then the single best fuzzy candidate above the
// threshold, recorded with a warning. Two source columns mapping to the same
// target are left in place; ColumnMapping.Conflicts exposes them for the
// caller to arbitrate.
func MapColumns(headers []string, knownFields []string) (models.ColumnMapping, []string) {
	known := make(map[string]bool, len(knownFields))
	for _, f := range knownFields {
		known[f] = true
	}
	// Sorted candidate order keeps fuzzy ties deterministic.
	sorted := append([]string(nil), knownFields...)
	sort.Strings(sorted)

	var mapping models.ColumnMapping
	var warnings []string

	for i, header := range headers {
		entry := models.ColumnEntry{
			SourceIndex:  i,
			SourceHeader: header,
			AutoDetected: true,
		}

		normalized := NormalizeHeader(header)
		if known[normalized] {
			entry.TargetField = normalized
		} else if normalized != "" {
			best := ""
			bestScore := 0.0
			for _, field := range sorted {
				score := SimilarityPercent(normalized, field)
				if score > bestScore {
					best = field
					bestScore = score
				}
			}
			if bestScore >= fuzzyHeaderThreshold {
				entry.TargetField = best
				warnings = append(warnings,
					fmt.Sprintf("assumed column %q refers to field %q", header, best))
			}
		}

		mapping.Columns = append(mapping.Columns, entry)
	}

	return mapping, warnings
}
