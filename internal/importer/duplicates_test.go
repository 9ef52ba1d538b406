package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"registry-web/internal/models"
)

type fakeRecordStore struct {
	records []models.Record
}

func (s *fakeRecordStore) FindByNaturalKey(entityType, key string) (*models.Record, error) {
	for i := range s.records {
		if s.records[i].EntityType == entityType && s.records[i].Reference == key {
			return &s.records[i], nil
		}
	}
	return nil, nil
}

func (s *fakeRecordStore) SearchCandidates(entityType, scope string, keywords []string, limit int) ([]models.Record, error) {
	var out []models.Record
	for _, rec := range s.records {
		if rec.EntityType != entityType {
			continue
		}
		if scope != "" && (rec.Department == nil || *rec.Department != scope) {
			continue
		}
		text := strings.ToLower(rec.Name)
		if rec.Description != nil {
			text += " " + strings.ToLower(*rec.Description)
		}
		all := true
		for _, kw := range keywords {
			if !strings.Contains(text, kw) {
				all = false
				break
			}
		}
		if all {
			out = append(out, rec)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func strPtr(s string) *string { return &s }

func workItemMapping() models.ColumnMapping {
	return models.ColumnMapping{Columns: []models.ColumnEntry{
		{SourceIndex: 0, TargetField: "reference"},
		{SourceIndex: 1, TargetField: "title"},
		{SourceIndex: 2, TargetField: "description"},
		{SourceIndex: 3, TargetField: "department"},
	}}
}

func TestDetectDuplicatesExactRef(t *testing.T) {
	store := &fakeRecordStore{records: []models.Record{
		{ID: 10, EntityType: models.EntityWorkItem, Reference: "WI-001", Name: "Existing item"},
	}}

	rows := [][]string{
		{"WI-001", "Renamed item", "totally different text here", "Finance"},
	}

	preview, err := DetectDuplicates(models.EntityWorkItem, rows, workItemMapping(), store)
	require.NoError(t, err)
	require.Len(t, preview, 1)
	require.Len(t, preview[0].Matches, 1)

	m := preview[0].Matches[0]
	assert.Equal(t, 10, m.RecordID)
	assert.Equal(t, "exact_ref", m.MatchType)
	assert.Equal(t, 100, m.Confidence)
	assert.Equal(t, "update", m.Action)
	assert.Equal(t, "WI-001", m.NaturalKey)
}

func TestDetectDuplicatesSimilarDescription(t *testing.T) {
	store := &fakeRecordStore{records: []models.Record{
		{
			ID:          11,
			EntityType:  models.EntityWorkItem,
			Reference:   "WI-100",
			Name:        "Network upgrade",
			Description: strPtr("upgrade datacenter network switches building A"),
			Department:  strPtr("Infrastructure"),
		},
	}}

	rows := [][]string{
		{"WI-999", "Network upgrade phase 2", "upgrade datacenter network switches building B", "Infrastructure"},
	}

	preview, err := DetectDuplicates(models.EntityWorkItem, rows, workItemMapping(), store)
	require.NoError(t, err)
	require.Len(t, preview, 1)
	require.Len(t, preview[0].Matches, 1)

	m := preview[0].Matches[0]
	assert.Equal(t, "similar_description", m.MatchType)
	assert.Equal(t, "review", m.Action)
	assert.GreaterOrEqual(t, m.Confidence, 60)
	assert.Less(t, m.Confidence, 100)
}

func TestDetectDuplicatesScopeMismatch(t *testing.T) {
	store := &fakeRecordStore{records: []models.Record{
		{
			ID:          12,
			EntityType:  models.EntityWorkItem,
			Reference:   "WI-100",
			Name:        "Network upgrade",
			Description: strPtr("upgrade datacenter network switches building A"),
			Department:  strPtr("Infrastructure"),
		},
	}}

	// Same text, different department: the scoping field filters it out.
	rows := [][]string{
		{"WI-999", "Network upgrade", "upgrade datacenter network switches building A", "Finance"},
	}

	preview, err := DetectDuplicates(models.EntityWorkItem, rows, workItemMapping(), store)
	require.NoError(t, err)
	assert.Empty(t, preview)
}

func TestDetectDuplicatesNoMatches(t *testing.T) {
	store := &fakeRecordStore{records: []models.Record{
		{
			ID:          13,
			EntityType:  models.EntityWorkItem,
			Reference:   "WI-100",
			Name:        "Payroll migration",
			Description: strPtr("migrate payroll processing vendor system"),
			Department:  strPtr("Finance"),
		},
	}}

	rows := [][]string{
		{"WI-200", "Office relocation", "relocate office furniture third floor", "Facilities"},
	}

	preview, err := DetectDuplicates(models.EntityWorkItem, rows, workItemMapping(), store)
	require.NoError(t, err)
	assert.Empty(t, preview)
}

func TestDetectDuplicatesRowNumbering(t *testing.T) {
	store := &fakeRecordStore{records: []models.Record{
		{ID: 14, EntityType: models.EntityWorkItem, Reference: "WI-003", Name: "Third"},
	}}

	rows := [][]string{
		{"WI-001", "First", "", ""},
		{"WI-002", "Second", "", ""},
		{"WI-003", "Third", "", ""},
	}

	preview, err := DetectDuplicates(models.EntityWorkItem, rows, workItemMapping(), store)
	require.NoError(t, err)
	require.Len(t, preview, 1)
	// Zero-based data index 2, reported as header-inclusive row 4.
	assert.Equal(t, 4, preview[0].RowNumber)
}

func TestDetectDuplicatesTooFewKeywords(t *testing.T) {
	store := &fakeRecordStore{records: []models.Record{
		{
			ID:          15,
			EntityType:  models.EntityWorkItem,
			Reference:   "WI-100",
			Name:        "Upgrade",
			Description: strPtr("upgrade"),
			Department:  strPtr("IT"),
		},
	}}

	// One significant keyword is below the minimum of two.
	rows := [][]string{
		{"WI-999", "Upgrade", "the upgrade", "IT"},
	}

	preview, err := DetectDuplicates(models.EntityWorkItem, rows, workItemMapping(), store)
	require.NoError(t, err)
	assert.Empty(t, preview)
}

func TestExtractKeywords(t *testing.T) {
	got := ExtractKeywords("Upgrade the network switches for les data centres")
	assert.Equal(t, []string{"upgrade", "network", "switches", "data", "centres"}, got)

	assert.Empty(t, ExtractKeywords("the and for"))
	assert.Empty(t, ExtractKeywords(""))
}
