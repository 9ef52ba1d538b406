package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"registry-web/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecordStore struct {
	records    map[string]*models.Record
	categories map[string]models.Category
	nextID     int
	commits    int
	rollbacks  int
}

func newFakeRecordStore() *fakeRecordStore {
	return &fakeRecordStore{
		records:    make(map[string]*models.Record),
		categories: map[string]models.Category{"OPS": {ID: 1, Code: "OPS", Name: "Operations"}},
	}
}

func (s *fakeRecordStore) key(entityType, ref string) string {
	return entityType + "|" + ref
}

func (s *fakeRecordStore) FindByNaturalKey(entityType, key string) (*models.Record, error) {
	if r, ok := s.records[s.key(entityType, key)]; ok {
		clone := *r
		return &clone, nil
	}
	return nil, nil
}

func (s *fakeRecordStore) SearchCandidates(entityType, scope string, keywords []string, limit int) ([]models.Record, error) {
	var out []models.Record
	for _, r := range s.records {
		if r.EntityType != entityType {
			continue
		}
		if scope != "" && (r.Department == nil || *r.Department != scope) {
			continue
		}
		out = append(out, *r)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *fakeRecordStore) Begin() (RecordTx, error) {
	return &fakeRecordTx{store: s}, nil
}

type fakeRecordTx struct {
	store *fakeRecordStore
}

func (t *fakeRecordTx) FindByNaturalKey(entityType, key string) (*models.Record, error) {
	return t.store.FindByNaturalKey(entityType, key)
}

func (t *fakeRecordTx) SearchCandidates(entityType, scope string, keywords []string, limit int) ([]models.Record, error) {
	return t.store.SearchCandidates(entityType, scope, keywords, limit)
}

func (t *fakeRecordTx) FindCategoryByCode(code string) (*models.Category, error) {
	if c, ok := t.store.categories[code]; ok {
		return &c, nil
	}
	return nil, nil
}

func (t *fakeRecordTx) CreateRecord(record *models.Record) error {
	t.store.nextID++
	record.ID = t.store.nextID
	clone := *record
	t.store.records[t.store.key(record.EntityType, record.Reference)] = &clone
	return nil
}

func (t *fakeRecordTx) UpdateRecord(record *models.Record) error {
	clone := *record
	t.store.records[t.store.key(record.EntityType, record.Reference)] = &clone
	return nil
}

func (t *fakeRecordTx) Commit() error {
	t.store.commits++
	return nil
}

func (t *fakeRecordTx) Rollback() error {
	t.store.rollbacks++
	return nil
}

type fakeUserDirectory struct {
	users []models.User
}

func (d *fakeUserDirectory) ListActive() ([]models.User, error) {
	return d.users, nil
}

func writeTempCSV(t *testing.T, lines []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload.csv")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644))
	return path
}

func sessionFor(path string) *models.UploadSession {
	return &models.UploadSession{
		ID:          1,
		SessionCode: "sess-test",
		EntityType:  models.EntityWorkItem,
		Filename:    filepath.Base(path),
		FilePath:    path,
	}
}

func newTestService(store *fakeRecordStore) *ImportService {
	directory := &fakeUserDirectory{users: []models.User{
		{ID: 7, Name: "Jane Smith", Email: "jane.smith@example.com", IsActive: true},
	}}
	return NewImportService(store, directory)
}

func TestRunCreatesRecords(t *testing.T) {
	path := writeTempCSV(t, []string{
		"Reference,Title,Description,Department,Owner,Status,Due Date",
		"WI-001,Migrate archive,Move old files to cold storage,Operations,Jane Smith,done,2024-03-01",
		"WI-002,Renew contracts,Annual supplier renewals,Operations,,in progress,15/04/2024",
	})

	store := newFakeRecordStore()
	result, err := newTestService(store).Run(sessionFor(path), models.ColumnMapping{}, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, 0, result.Skipped)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 1, store.commits)

	created := store.records["work_item|WI-001"]
	require.NotNil(t, created)
	assert.Equal(t, "Migrate archive", created.Name)
	require.NotNil(t, created.Status)
	assert.Equal(t, "Completed", *created.Status)
	require.NotNil(t, created.OwnerID)
	assert.Equal(t, 7, *created.OwnerID)
	require.NotNil(t, created.DueDate)
	assert.Equal(t, "2024-03-01", created.DueDate.Format("2006-01-02"))
}

func TestRunReimportUpdatesInsteadOfDuplicating(t *testing.T) {
	path := writeTempCSV(t, []string{
		"Reference,Title,Status",
		"WI-001,Migrate archive,in progress",
	})
	store := newFakeRecordStore()
	svc := newTestService(store)
	session := sessionFor(path)

	first, err := svc.Run(session, models.ColumnMapping{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Created)

	second, err := svc.Run(session, models.ColumnMapping{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 1, second.Updated)
	assert.Len(t, store.records, 1)
}

func TestRunUpdatePreservesUnsuppliedFields(t *testing.T) {
	store := newFakeRecordStore()
	svc := newTestService(store)

	full := writeTempCSV(t, []string{
		"Reference,Title,Description,Status",
		"WI-001,Migrate archive,Move old files,in progress",
	})
	_, err := svc.Run(sessionFor(full), models.ColumnMapping{}, nil)
	require.NoError(t, err)

	partial := writeTempCSV(t, []string{
		"Reference,Title,Status",
		"WI-001,Migrate archive,done",
	})
	_, err = svc.Run(sessionFor(partial), models.ColumnMapping{}, nil)
	require.NoError(t, err)

	record := store.records["work_item|WI-001"]
	require.NotNil(t, record.Description)
	assert.Equal(t, "Move old files", *record.Description)
	require.NotNil(t, record.Status)
	assert.Equal(t, "Completed", *record.Status)
}

func TestRunSkipsRowsMissingRequiredFields(t *testing.T) {
	path := writeTempCSV(t, []string{
		"Reference,Title",
		"WI-001,",
		",Second item",
		"WI-003,Third item",
	})

	store := newFakeRecordStore()
	result, err := newTestService(store).Run(sessionFor(path), models.ColumnMapping{}, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 2, result.Skipped)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "Row 2:")
	assert.Contains(t, result.Errors[0], "title")
	assert.Contains(t, result.Errors[1], "Row 3:")
	assert.Contains(t, result.Errors[1], "reference")
}

func TestRunStopsRecordingErrorsAtCap(t *testing.T) {
	lines := []string{"Reference,Title"}
	for i := 0; i < 120; i++ {
		lines = append(lines, fmt.Sprintf("WI-%03d,", i))
	}
	path := writeTempCSV(t, lines)

	store := newFakeRecordStore()
	result, err := newTestService(store).Run(sessionFor(path), models.ColumnMapping{}, nil)
	require.NoError(t, err)

	assert.Equal(t, 120, result.Total)
	assert.Len(t, result.Errors, models.MaxImportErrors)
	assert.Equal(t, models.MaxImportErrors, result.Skipped)
	assert.Equal(t, 20, result.NotAttempted)
}

func TestRunReportsProgress(t *testing.T) {
	path := writeTempCSV(t, []string{
		"Reference,Title",
		"WI-001,One",
		"WI-002,",
		"WI-003,Three",
	})

	var calls []int
	store := newFakeRecordStore()
	result, err := newTestService(store).Run(sessionFor(path), models.ColumnMapping{}, func(processed, total int) {
		calls = append(calls, processed)
		assert.Equal(t, 3, total)
	})
	require.NoError(t, err)

	// Skipped rows still advance the counter.
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, []int{1, 2, 3}, calls)
}

func TestRunSkipsInvoiceWithUnparseableAmount(t *testing.T) {
	path := writeTempCSV(t, []string{
		"Invoice Number,Supplier Name,Amount",
		"INV-001,Acme Corp,notanumber",
		"INV-002,Acme Corp,1200.50",
	})

	store := newFakeRecordStore()
	session := sessionFor(path)
	session.EntityType = models.EntityInvoice
	result, err := newTestService(store).Run(session, models.ColumnMapping{}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Row 2:")
	assert.Contains(t, result.Errors[0], "amount")

	assert.Nil(t, store.records["invoice|INV-001"])
	created := store.records["invoice|INV-002"]
	require.NotNil(t, created)
	require.NotNil(t, created.Amount)
	assert.Equal(t, 1200.5, *created.Amount)
}

func TestRunRecordsUnresolvedOwnerAsRowError(t *testing.T) {
	path := writeTempCSV(t, []string{
		"Reference,Title,Owner",
		"WI-001,Fix ledger,Nobody Known",
		"WI-002,Renew contracts,Jane Smith",
	})

	store := newFakeRecordStore()
	result, err := newTestService(store).Run(sessionFor(path), models.ColumnMapping{}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, `Row 2: owner "Nobody Known" not matched to a user`, result.Errors[0])
	assert.Nil(t, store.records["work_item|WI-001"])
}

func TestRunRecordsUnknownCategoryAsRowError(t *testing.T) {
	path := writeTempCSV(t, []string{
		"Reference,Title,Category",
		"WI-001,Fix ledger,ZZZ",
		"WI-002,Renew contracts,OPS",
	})

	store := newFakeRecordStore()
	result, err := newTestService(store).Run(sessionFor(path), models.ColumnMapping{}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, `Row 2: unknown category code "ZZZ"`, result.Errors[0])

	created := store.records["work_item|WI-002"]
	require.NotNil(t, created)
	require.NotNil(t, created.CategoryCode)
	assert.Equal(t, "OPS", *created.CategoryCode)
}

func TestRunRejectsUnknownEntityType(t *testing.T) {
	session := &models.UploadSession{EntityType: "widget"}
	_, err := newTestService(newFakeRecordStore()).Run(session, models.ColumnMapping{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "widget")
}

func TestInspectUploadProposesMapping(t *testing.T) {
	path := writeTempCSV(t, []string{
		"Reference,Descripton,Unrelated Column",
		"WI-001,First item,x",
		"WI-002,Second item,y",
	})

	inspection, err := newTestService(newFakeRecordStore()).InspectUpload(sessionFor(path))
	require.NoError(t, err)

	assert.Equal(t, 2, inspection.RowCount)
	require.Len(t, inspection.Mapping.Columns, 3)
	assert.Equal(t, "reference", inspection.Mapping.Columns[0].TargetField)
	assert.Equal(t, "description", inspection.Mapping.Columns[1].TargetField)
	assert.True(t, inspection.Mapping.Columns[1].AutoDetected)
	assert.Equal(t, "", inspection.Mapping.Columns[2].TargetField)
}

func TestPreviewDuplicatesFindsExactReference(t *testing.T) {
	store := newFakeRecordStore()
	dept := "Operations"
	store.records["work_item|WI-001"] = &models.Record{
		ID: 1, EntityType: models.EntityWorkItem, Reference: "WI-001",
		Name: "Migrate archive", Department: &dept,
	}

	path := writeTempCSV(t, []string{
		"Reference,Title",
		"WI-001,Migrate archive again",
		"WI-999,Completely new",
	})

	preview, err := newTestService(store).PreviewDuplicates(sessionFor(path), models.ColumnMapping{})
	require.NoError(t, err)

	require.Len(t, preview, 1)
	assert.Equal(t, 2, preview[0].RowNumber)
	require.Len(t, preview[0].Matches, 1)
	assert.Equal(t, "exact_ref", preview[0].Matches[0].MatchType)
	assert.Equal(t, "update", preview[0].Matches[0].Action)
}

func TestSuggestUsers(t *testing.T) {
	suggestions, err := newTestService(newFakeRecordStore()).SuggestUsers("J. Smith", 5)
	require.NoError(t, err)
	require.NotEmpty(t, suggestions)
	assert.Equal(t, 7, suggestions[0].UserID)
}
