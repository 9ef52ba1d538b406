package importer

import (
	"sort"
	"strings"

	"registry-web/internal/models"
)

// FieldSpec describes one target field of an entity type.
type FieldSpec struct {
	Kind FieldKind
	Enum EnumType // only for enum-backed string fields
}

// EntityDescriptor parameterizes the import pipeline per entity type: its
// known fields, natural key, duplicate-detection scope and thresholds, and
// the required-field checks the orchestrator runs. One table here replaces
// five hand-copied code paths.
type EntityDescriptor struct {
	Type      string
	KeyField  string // natural key target field
	NameField string // short display/comparison name
	TextField string // long free-text comparison field, empty when none
	// ScopeField narrows fuzzy candidate search; when set, rows missing it
	// are not fuzzy-matched at all.
	ScopeField string
	// NameThreshold and TextThreshold are minimum similarity percentages for
	// fuzzy matches on the name and text fields respectively.
	NameThreshold float64
	TextThreshold float64
	Required      []string
	Fields        map[string]FieldSpec
}

// CandidateLimit caps the fuzzy candidate set fetched per row.
const CandidateLimit = 3

// MinKeywords is the minimum significant-keyword count for fuzzy search.
const MinKeywords = 2

// Descriptors is the strategy table keyed by entity type.
var Descriptors = map[string]EntityDescriptor{
	models.EntityWorkItem: {
		Type:          models.EntityWorkItem,
		KeyField:      "reference",
		NameField:     "title",
		TextField:     "description",
		ScopeField:    "department",
		NameThreshold: 65,
		TextThreshold: 60,
		Required:      []string{"reference", "title"},
		Fields: map[string]FieldSpec{
			"reference":   {Kind: KindString},
			"title":       {Kind: KindString},
			"description": {Kind: KindString},
			"department":  {Kind: KindString},
			"owner":       {Kind: KindString},
			"category":    {Kind: KindString},
			"status":      {Kind: KindString, Enum: EnumStatus},
			"priority":    {Kind: KindString, Enum: EnumPriority},
			"work_type":   {Kind: KindString, Enum: EnumWorkType},
			"rag_status":  {Kind: KindString, Enum: EnumRAG},
			"start_date":  {Kind: KindDate},
			"due_date":    {Kind: KindDate},
		},
	},
	models.EntitySupplier: {
		Type:          models.EntitySupplier,
		KeyField:      "reference",
		NameField:     "name",
		NameThreshold: 70,
		Required:      []string{"reference", "name"},
		Fields: map[string]FieldSpec{
			"reference":        {Kind: KindString},
			"name":             {Kind: KindString},
			"description":      {Kind: KindString},
			"department":       {Kind: KindString},
			"owner":            {Kind: KindString},
			"category":         {Kind: KindString},
			"rag_status":       {Kind: KindString, Enum: EnumRAG},
			"review_frequency": {Kind: KindString, Enum: EnumFrequency},
			"review_date":      {Kind: KindDate},
		},
	},
	models.EntityRisk: {
		Type:          models.EntityRisk,
		KeyField:      "reference",
		NameField:     "title",
		TextField:     "description",
		ScopeField:    "department",
		NameThreshold: 65,
		TextThreshold: 60,
		Required:      []string{"reference", "title"},
		Fields: map[string]FieldSpec{
			"reference":   {Kind: KindString},
			"title":       {Kind: KindString},
			"description": {Kind: KindString},
			"department":  {Kind: KindString},
			"owner":       {Kind: KindString},
			"severity":    {Kind: KindString, Enum: EnumPriority},
			"rag_status":  {Kind: KindString, Enum: EnumRAG},
			"review_date": {Kind: KindDate},
		},
	},
	models.EntityGovernanceItem: {
		Type:          models.EntityGovernanceItem,
		KeyField:      "reference",
		NameField:     "title",
		ScopeField:    "department",
		NameThreshold: 65,
		Required:      []string{"reference", "title"},
		Fields: map[string]FieldSpec{
			"reference":  {Kind: KindString},
			"title":      {Kind: KindString},
			"department": {Kind: KindString},
			"owner":      {Kind: KindString},
			"frequency":  {Kind: KindString, Enum: EnumFrequency},
			"status":     {Kind: KindString, Enum: EnumStatus},
			"due_date":   {Kind: KindDate},
		},
	},
	models.EntityInvoice: {
		Type:          models.EntityInvoice,
		KeyField:      "invoice_number",
		NameField:     "supplier_name",
		NameThreshold: 70,
		Required:      []string{"invoice_number", "supplier_name", "amount"},
		Fields: map[string]FieldSpec{
			"invoice_number": {Kind: KindString},
			"supplier_name":  {Kind: KindString},
			"description":    {Kind: KindString},
			"department":     {Kind: KindString},
			"amount":         {Kind: KindFloat},
			"invoice_date":   {Kind: KindDate},
			"due_date":       {Kind: KindDate},
			"status":         {Kind: KindString, Enum: EnumStatus},
		},
	},
}

// KnownFields lists the target-field keys of an entity type for the column
// mapper.
func KnownFields(entityType string) []string {
	desc, ok := Descriptors[entityType]
	if !ok {
		return nil
	}
	fields := make([]string, 0, len(desc.Fields))
	for f := range desc.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// stopWords covers common English and French function words excluded from
// keyword extraction.
var stopWords = map[string]bool{
	// English
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "with": true, "this": true, "that": true, "from": true,
	"they": true, "will": true, "have": true, "has": true, "was": true,
	"were": true, "been": true, "all": true, "can": true,
	"its": true, "per": true, "any": true, "our": true, "out": true,
	"into": true, "over": true, "under": true, "between": true,
	// French
	"les": true, "des": true, "une": true, "dans": true, "pour": true,
	"avec": true, "sur": true, "est": true, "par": true, "aux": true,
	"mais": true, "sont": true, "ces": true, "son": true, "ses": true,
	"leur": true, "elle": true, "ils": true, "nous": true, "vous": true,
	"qui": true, "que": true, "pas": true, "plus": true, "tout": true,
}

// ExtractKeywords pulls significant comparison keywords out of free text:
// lowercase tokens of three or more letters that are not stop words, first
// occurrence order, deduplicated.
func ExtractKeywords(text string) []string {
	seen := make(map[string]bool)
	var keywords []string
	for _, token := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9') &&
			!(r >= 0x00C0 && r <= 0x017F) // accented Latin stays word-internal
	}) {
		if len([]rune(token)) < 3 || stopWords[token] || seen[token] {
			continue
		}
		seen[token] = true
		keywords = append(keywords, token)
	}
	return keywords
}

// RecordFinder is the persistence surface the detector needs. FindByNaturalKey
// returns (nil, nil) when no record matches.
type RecordFinder interface {
	FindByNaturalKey(entityType, key string) (*models.Record, error)
	// SearchCandidates returns up to limit records of the given type whose
	// text contains every keyword, filtered to the scope when non-empty.
	SearchCandidates(entityType, scope string, keywords []string, limit int) ([]models.Record, error)
}

// DetectDuplicates finds existing-record matches for each to-be-imported data
// row. Rows are data rows only (header already removed); row numbers are the
// zero-based data index plus 2. A row appears in the output only when at
// least one match was found, and an exact natural-key match is always
// returned alone.
func DetectDuplicates(entityType string, rows [][]string, mapping models.ColumnMapping, store RecordFinder) ([]models.DuplicatePreviewRow, error) {
	desc, ok := Descriptors[entityType]
	if !ok {
		return nil, nil
	}

	var preview []models.DuplicatePreviewRow
	for i, row := range rows {
		fields := mapping.FieldValues(row)
		entry := models.DuplicatePreviewRow{
			RowNumber:    i + 2,
			ImportedRef:  fields[desc.KeyField],
			ImportedName: fields[desc.NameField],
		}

		if entry.ImportedRef != "" {
			existing, err := store.FindByNaturalKey(entityType, entry.ImportedRef)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				entry.Matches = []models.DuplicateMatch{{
					RecordID:    existing.ID,
					NaturalKey:  existing.Reference,
					DisplayName: existing.Name,
					MatchType:   "exact_ref",
					Confidence:  100,
					Action:      "update",
				}}
				preview = append(preview, entry)
				continue
			}
		}

		matches, err := fuzzyMatches(desc, fields, store)
		if err != nil {
			return nil, err
		}
		if len(matches) > 0 {
			entry.Matches = matches
			preview = append(preview, entry)
		}
	}

	return preview, nil
}

func fuzzyMatches(desc EntityDescriptor, fields map[string]string, store RecordFinder) ([]models.DuplicateMatch, error) {
	comparison := fields[desc.TextField]
	matchType := "similar_description"
	threshold := desc.TextThreshold
	if desc.TextField == "" || comparison == "" {
		comparison = fields[desc.NameField]
		matchType = "similar_name"
		threshold = desc.NameThreshold
	}
	if comparison == "" {
		return nil, nil
	}

	scope := ""
	if desc.ScopeField != "" {
		scope = fields[desc.ScopeField]
		if scope == "" {
			return nil, nil
		}
	}

	keywords := ExtractKeywords(comparison)
	if len(keywords) < MinKeywords {
		return nil, nil
	}
	if len(keywords) > 3 {
		keywords = keywords[:3]
	}

	candidates, err := store.SearchCandidates(desc.Type, scope, keywords, CandidateLimit)
	if err != nil {
		return nil, err
	}

	var matches []models.DuplicateMatch
	for _, cand := range candidates {
		target := cand.Name
		if matchType == "similar_description" && cand.Description != nil {
			target = *cand.Description
		}
		score := SimilarityPercent(strings.ToLower(comparison), strings.ToLower(target))
		if score < threshold {
			continue
		}
		matches = append(matches, models.DuplicateMatch{
			RecordID:    cand.ID,
			NaturalKey:  cand.Reference,
			DisplayName: cand.Name,
			MatchType:   matchType,
			Confidence:  int(score),
			Action:      "review",
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})
	return matches, nil
}
