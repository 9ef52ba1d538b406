package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"registry-web/internal/importer"
	"registry-web/internal/models"
	"registry-web/internal/utils"

	"github.com/sirupsen/logrus"
)

// RecordTx is the transactional persistence surface one import run writes
// through. Everything between Begin and Commit is a single database
// transaction.
type RecordTx interface {
	importer.RecordFinder
	FindCategoryByCode(code string) (*models.Category, error)
	CreateRecord(record *models.Record) error
	UpdateRecord(record *models.Record) error
	Commit() error
	Rollback() error
}

// RecordStore opens import transactions and serves the read-only duplicate
// preview.
type RecordStore interface {
	importer.RecordFinder
	Begin() (RecordTx, error)
}

// UserDirectory supplies the active-user set for owner resolution.
type UserDirectory interface {
	ListActive() ([]models.User, error)
}

type ImportService struct {
	store  RecordStore
	users  UserDirectory
	logger *logrus.Logger
}

func NewImportService(store RecordStore, users UserDirectory) *ImportService {
	return &ImportService{
		store:  store,
		users:  users,
		logger: utils.GetLogger(),
	}
}

// UploadInspection describes a freshly parsed upload: its header, the
// auto-detected column mapping, and anything worth flagging before import.
type UploadInspection struct {
	Header     []string             `json:"header"`
	Mapping    models.ColumnMapping `json:"mapping"`
	Conflicts  map[string][]int     `json:"conflicts,omitempty"`
	RowCount   int                  `json:"row_count"`
	SampleRows [][]string           `json:"sample_rows,omitempty"`
	Warnings   []string             `json:"warnings,omitempty"`
}

// InspectUpload parses an uploaded file far enough to propose a column
// mapping and report row counts, without touching the database.
func (s *ImportService) InspectUpload(session *models.UploadSession) (*UploadInspection, error) {
	rows, warnings, err := s.parseRows(session)
	if err != nil {
		return nil, err
	}

	header := rows[0]
	mapping, mapWarnings := importer.MapColumns(header, importer.KnownFields(session.EntityType))
	warnings = append(warnings, mapWarnings...)

	inspection := &UploadInspection{
		Header:   header,
		Mapping:  mapping,
		RowCount: len(rows) - 1,
		Warnings: warnings,
	}
	if conflicts := mapping.Conflicts(); len(conflicts) > 0 {
		inspection.Conflicts = conflicts
	}
	sample := rows[1:]
	if len(sample) > 5 {
		sample = sample[:5]
	}
	inspection.SampleRows = sample

	return inspection, nil
}

// PreviewDuplicates reports which rows of an upload collide with records
// already in the registry. It reads committed data only.
func (s *ImportService) PreviewDuplicates(session *models.UploadSession, mapping models.ColumnMapping) ([]models.DuplicatePreviewRow, error) {
	rows, _, err := s.parseRows(session)
	if err != nil {
		return nil, err
	}

	if len(mapping.Columns) == 0 {
		mapping, _ = importer.MapColumns(rows[0], importer.KnownFields(session.EntityType))
	}

	return importer.DetectDuplicates(session.EntityType, rows[1:], mapping, s.store)
}

// SuggestUsers resolves a free-text person reference against the active user
// directory and returns ranked candidates.
func (s *ImportService) SuggestUsers(input string, limit int) ([]models.UserSuggestion, error) {
	users, err := s.users.ListActive()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = importer.DefaultSuggestionLimit
	}
	return importer.NewUserResolver(users).Resolve(input, limit), nil
}

// Run executes one import end to end: parse, map, normalize, and upsert every
// data row inside a single transaction. Row-level problems become entries in
// the result; only file-level failures return an error, and those roll the
// whole batch back.
func (s *ImportService) Run(session *models.UploadSession, mapping models.ColumnMapping, onProgress func(processed, total int)) (*models.ImportResult, error) {
	desc, ok := importer.Descriptors[session.EntityType]
	if !ok {
		return nil, fmt.Errorf("unknown entity type %q", session.EntityType)
	}

	rows, warnings, err := s.parseRows(session)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		s.logger.WithField("session", session.SessionCode).Debug(w)
	}

	if len(mapping.Columns) == 0 {
		var mapWarnings []string
		mapping, mapWarnings = importer.MapColumns(rows[0], importer.KnownFields(session.EntityType))
		for _, w := range mapWarnings {
			s.logger.WithField("session", session.SessionCode).Debug(w)
		}
	}

	activeUsers, err := s.users.ListActive()
	if err != nil {
		return nil, fmt.Errorf("load user directory: %w", err)
	}
	resolver := importer.NewUserResolver(activeUsers)

	tx, err := s.store.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin import transaction: %w", err)
	}

	data := rows[1:]
	result := &models.ImportResult{Total: len(data)}

	for i, row := range data {
		if len(result.Errors) >= models.MaxImportErrors {
			result.NotAttempted = len(data) - i
			break
		}

		fields := mapping.FieldValues(row)
		if err := s.importRow(tx, desc, resolver, fields, i+2, session.SessionCode, result); err != nil {
			tx.Rollback()
			return nil, err
		}

		// Progress counts attempted rows, skipped ones included.
		if onProgress != nil {
			onProgress(i+1, len(data))
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"session": session.SessionCode,
		"entity":  session.EntityType,
		"total":   result.Total,
		"created": result.Created,
		"updated": result.Updated,
		"skipped": result.Skipped,
	}).Info("import completed")

	return result, nil
}

// parseRows reads the session's file into uniform rows, picking the reader by
// extension. The first row is always the header.
func (s *ImportService) parseRows(session *models.UploadSession) ([][]string, []string, error) {
	ext := strings.ToLower(filepath.Ext(session.Filename))

	var rows [][]string
	var warnings []string
	var err error

	switch ext {
	case ".xlsx", ".xls":
		rows, err = importer.ReadWorkbook(session.FilePath)
	default:
		var data []byte
		data, err = os.ReadFile(session.FilePath)
		if err == nil {
			rows, warnings, err = importer.ReadDelimited(data)
		}
	}
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", session.Filename, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("parse %s: file contains no rows", session.Filename)
	}
	return rows, warnings, nil
}

// importRow maps, validates and persists a single data row, updating the
// result counters. A returned error is fatal to the whole run; row-level
// failures land in the error list instead.
func (s *ImportService) importRow(tx RecordTx, desc importer.EntityDescriptor, resolver *importer.UserResolver, fields map[string]string, rowNum int, sessionCode string, result *models.ImportResult) error {
	if msg := missingRequired(desc, fields); msg != "" {
		recordRowErrors(result, rowNum, msg)
		return nil
	}

	record, rowWarnings, rowErrs := s.buildRecord(desc, fields, resolver, tx)
	for _, w := range rowWarnings {
		s.logger.WithFields(logrus.Fields{
			"session": sessionCode,
			"row":     rowNum,
		}).Debug(w)
	}

	// A required cell may survive the raw check yet coerce to nothing, an
	// unparseable invoice amount for instance. That counts as missing.
	if len(rowErrs) == 0 {
		if msg := missingAfterCoercion(desc, record); msg != "" {
			rowErrs = append(rowErrs, msg)
		}
	}
	if len(rowErrs) > 0 {
		recordRowErrors(result, rowNum, rowErrs...)
		return nil
	}

	existing, err := tx.FindByNaturalKey(desc.Type, record.Reference)
	if err != nil {
		return fmt.Errorf("lookup natural key at row %d: %w", rowNum, err)
	}

	if existing != nil {
		applyUpdate(existing, record)
		if err := tx.UpdateRecord(existing); err != nil {
			recordRowErrors(result, rowNum, err.Error())
			return nil
		}
		result.Updated++
		return nil
	}

	if err := tx.CreateRecord(record); err != nil {
		recordRowErrors(result, rowNum, err.Error())
		return nil
	}
	result.Created++
	return nil
}

func missingRequired(desc importer.EntityDescriptor, fields map[string]string) string {
	for _, f := range desc.Required {
		if strings.TrimSpace(fields[f]) == "" {
			return fmt.Sprintf("missing required field %q", f)
		}
	}
	return ""
}

// missingAfterCoercion re-checks required fields against the built record, so
// a required cell that coerced to null still blocks the row.
func missingAfterCoercion(desc importer.EntityDescriptor, record *models.Record) string {
	for _, f := range desc.Required {
		missing := false
		switch f {
		case "reference", "invoice_number":
			missing = record.Reference == ""
		case "title", "name", "supplier_name":
			missing = record.Name == ""
		case "amount":
			missing = record.Amount == nil
		}
		if missing {
			return fmt.Sprintf("required field %q has no usable value", f)
		}
	}
	return ""
}

// recordRowErrors counts one skipped row and appends its messages, never
// letting the error list grow past the cap.
func recordRowErrors(result *models.ImportResult, rowNum int, msgs ...string) {
	result.Skipped++
	for _, m := range msgs {
		if len(result.Errors) >= models.MaxImportErrors {
			break
		}
		result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %s", rowNum, m))
	}
}

// buildRecord coerces a mapped row into a record. Bad cell values degrade to
// nil plus a warning; an owner or category reference that fails its exact
// lookup is a row error.
func (s *ImportService) buildRecord(desc importer.EntityDescriptor, fields map[string]string, resolver *importer.UserResolver, tx RecordTx) (*models.Record, []string, []string) {
	record := &models.Record{EntityType: desc.Type}
	var warnings, rowErrs []string

	if raw := strings.TrimSpace(fields["owner"]); raw != "" {
		if user := resolver.ResolveExact(raw); user != nil {
			record.OwnerID = &user.ID
		} else {
			rowErrs = append(rowErrs, fmt.Sprintf("owner %q not matched to a user", raw))
		}
	}
	if code := strings.TrimSpace(fields["category"]); code != "" {
		category, err := tx.FindCategoryByCode(code)
		if err != nil || category == nil {
			rowErrs = append(rowErrs, fmt.Sprintf("unknown category code %q", code))
		} else {
			record.CategoryCode = &category.Code
		}
	}

	for field, fs := range desc.Fields {
		if field == "owner" || field == "category" {
			continue
		}
		raw, ok := fields[field]
		if !ok {
			continue
		}

		if fs.Enum != "" {
			canonical, warning := importer.NormalizeEnum(raw, fs.Enum)
			if warning != "" {
				warnings = append(warnings, warning)
				continue
			}
			if canonical != "" {
				assignField(record, field, canonical)
			}
			continue
		}

		value, warning := importer.CoerceValue(raw, fs.Kind)
		if warning != "" {
			warnings = append(warnings, warning)
			continue
		}
		if value != nil {
			assignField(record, field, value)
		}
	}

	return record, warnings, rowErrs
}

// assignField routes a coerced target-field value onto the shared record
// shape. Fields that several entity types spell differently land on the same
// column.
func assignField(record *models.Record, field string, value interface{}) {
	switch field {
	case "reference", "invoice_number":
		record.Reference, _ = value.(string)
	case "title", "name", "supplier_name":
		record.Name, _ = value.(string)
	case "description":
		setString(&record.Description, value)
	case "department":
		setString(&record.Department, value)
	case "status":
		setString(&record.Status, value)
	case "rag_status":
		setString(&record.RAGStatus, value)
	case "priority", "severity":
		setString(&record.Priority, value)
	case "work_type":
		setString(&record.WorkType, value)
	case "frequency", "review_frequency":
		setString(&record.Frequency, value)
	case "amount":
		if v, ok := value.(float64); ok {
			record.Amount = &v
		}
	case "start_date", "invoice_date":
		setDate(&record.StartDate, value)
	case "due_date":
		setDate(&record.DueDate, value)
	case "review_date":
		setDate(&record.ReviewDate, value)
	}
}

func setString(dst **string, value interface{}) {
	if v, ok := value.(string); ok {
		*dst = &v
	}
}

func setDate(dst **time.Time, value interface{}) {
	if v, ok := value.(time.Time); ok {
		*dst = &v
	}
}

// applyUpdate folds an incoming row onto an existing record. Only fields the
// row actually supplied overwrite; absent fields keep their stored values.
func applyUpdate(existing, incoming *models.Record) {
	if incoming.Name != "" {
		existing.Name = incoming.Name
	}
	if incoming.Description != nil {
		existing.Description = incoming.Description
	}
	if incoming.Department != nil {
		existing.Department = incoming.Department
	}
	if incoming.OwnerID != nil {
		existing.OwnerID = incoming.OwnerID
	}
	if incoming.CategoryCode != nil {
		existing.CategoryCode = incoming.CategoryCode
	}
	if incoming.Status != nil {
		existing.Status = incoming.Status
	}
	if incoming.RAGStatus != nil {
		existing.RAGStatus = incoming.RAGStatus
	}
	if incoming.Priority != nil {
		existing.Priority = incoming.Priority
	}
	if incoming.WorkType != nil {
		existing.WorkType = incoming.WorkType
	}
	if incoming.Frequency != nil {
		existing.Frequency = incoming.Frequency
	}
	if incoming.Amount != nil {
		existing.Amount = incoming.Amount
	}
	if incoming.StartDate != nil {
		existing.StartDate = incoming.StartDate
	}
	if incoming.DueDate != nil {
		existing.DueDate = incoming.DueDate
	}
	if incoming.ReviewDate != nil {
		existing.ReviewDate = incoming.ReviewDate
	}
}
