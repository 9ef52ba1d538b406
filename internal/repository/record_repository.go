package repository

import (
	"database/sql"
	"strings"

	"registry-web/internal/models"

	"github.com/jmoiron/sqlx"
)

const recordColumns = `id, entity_type, reference, name, description, department,
	owner_id, category_code, status, rag_status, priority, work_type, frequency,
	amount, start_date, due_date, review_date, created_at, updated_at`

type RecordRepository struct {
	db *sqlx.DB
}

func NewRecordRepository(db *sqlx.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// Begin opens a transaction scoped view of the repository. Batch imports run
// entirely inside one transaction so a fatal error leaves nothing behind.
func (r *RecordRepository) Begin() (*RecordTx, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, err
	}
	return &RecordTx{tx: tx}, nil
}

func (r *RecordRepository) FindByNaturalKey(entityType, key string) (*models.Record, error) {
	return findByNaturalKey(r.db, entityType, key)
}

func (r *RecordRepository) SearchCandidates(entityType, scope string, keywords []string, limit int) ([]models.Record, error) {
	return searchCandidates(r.db, entityType, scope, keywords, limit)
}

func (r *RecordRepository) FindByID(id int) (*models.Record, error) {
	var record models.Record
	query := "SELECT " + recordColumns + " FROM records WHERE id = ? LIMIT 1"
	err := r.db.Get(&record, query, id)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *RecordRepository) List(entityType string, limit, offset int) ([]models.Record, int, error) {
	var records []models.Record
	var total int

	countQuery := "SELECT COUNT(*) FROM records WHERE entity_type = ?"
	err := r.db.Get(&total, countQuery, entityType)
	if err != nil {
		return nil, 0, err
	}

	query := "SELECT " + recordColumns + ` FROM records WHERE entity_type = ?
	          ORDER BY updated_at DESC, id DESC LIMIT ? OFFSET ?`
	err = r.db.Select(&records, query, entityType, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// RecordTx wraps a sqlx transaction with the record operations the import
// pipeline needs. Duplicate lookups during a batch see rows committed by
// earlier batches plus this batch's own writes.
type RecordTx struct {
	tx *sqlx.Tx
}

func (t *RecordTx) Commit() error {
	return t.tx.Commit()
}

func (t *RecordTx) Rollback() error {
	return t.tx.Rollback()
}

func (t *RecordTx) FindByNaturalKey(entityType, key string) (*models.Record, error) {
	return findByNaturalKey(t.tx, entityType, key)
}

func (t *RecordTx) SearchCandidates(entityType, scope string, keywords []string, limit int) ([]models.Record, error) {
	return searchCandidates(t.tx, entityType, scope, keywords, limit)
}

func (t *RecordTx) FindCategoryByCode(code string) (*models.Category, error) {
	var category models.Category
	query := "SELECT id, code, name FROM categories WHERE code = ? LIMIT 1"
	err := t.tx.Get(&category, query, code)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (t *RecordTx) CreateRecord(record *models.Record) error {
	query := `INSERT INTO records (entity_type, reference, name, description, department,
	          owner_id, category_code, status, rag_status, priority, work_type, frequency,
	          amount, start_date, due_date, review_date)
	          VALUES (:entity_type, :reference, :name, :description, :department,
	          :owner_id, :category_code, :status, :rag_status, :priority, :work_type,
	          :frequency, :amount, :start_date, :due_date, :review_date)`
	result, err := t.tx.NamedExec(query, record)
	if err != nil {
		return err
	}
	id, _ := result.LastInsertId()
	record.ID = int(id)
	return nil
}

func (t *RecordTx) UpdateRecord(record *models.Record) error {
	query := `UPDATE records SET name = :name, description = :description,
	          department = :department, owner_id = :owner_id, category_code = :category_code,
	          status = :status, rag_status = :rag_status, priority = :priority,
	          work_type = :work_type, frequency = :frequency, amount = :amount,
	          start_date = :start_date, due_date = :due_date, review_date = :review_date
	          WHERE id = :id`
	_, err := t.tx.NamedExec(query, record)
	return err
}

// queryer is satisfied by both *sqlx.DB and *sqlx.Tx so the lookup helpers can
// serve the preview endpoint and the transactional import path alike.
type queryer interface {
	Get(dest interface{}, query string, args ...interface{}) error
	Select(dest interface{}, query string, args ...interface{}) error
}

func findByNaturalKey(q queryer, entityType, key string) (*models.Record, error) {
	var record models.Record
	query := "SELECT " + recordColumns + " FROM records WHERE entity_type = ? AND reference = ? LIMIT 1"
	err := q.Get(&record, query, entityType, key)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// candidateQuery builds the candidate fetch for fuzzy duplicate matching.
// Every keyword must appear somewhere in the candidate's name or description.
func candidateQuery(entityType, scope string, keywords []string, limit int) (string, []interface{}) {
	conditions := []string{"entity_type = ?"}
	args := []interface{}{entityType}

	if scope != "" {
		conditions = append(conditions, "department = ?")
		args = append(args, scope)
	}

	for _, kw := range keywords {
		conditions = append(conditions, "(name LIKE ? OR description LIKE ?)")
		pattern := "%" + kw + "%"
		args = append(args, pattern, pattern)
	}

	query := "SELECT " + recordColumns + " FROM records WHERE " +
		strings.Join(conditions, " AND ") + " ORDER BY updated_at DESC LIMIT ?"
	args = append(args, limit)

	return query, args
}

func searchCandidates(q queryer, entityType, scope string, keywords []string, limit int) ([]models.Record, error) {
	var records []models.Record
	query, args := candidateQuery(entityType, scope, keywords, limit)
	if err := q.Select(&records, query, args...); err != nil {
		return nil, err
	}
	return records, nil
}
