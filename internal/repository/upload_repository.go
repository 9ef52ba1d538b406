package repository

import (
	"registry-web/internal/models"

	"github.com/jmoiron/sqlx"
)

type UploadRepository struct {
	db *sqlx.DB
}

func NewUploadRepository(db *sqlx.DB) *UploadRepository {
	return &UploadRepository{db: db}
}

func (r *UploadRepository) CreateSession(session *models.UploadSession) error {
	query := `INSERT INTO upload_sessions (session_code, user_id, entity_type, filename,
	          file_path, total_rows, status) VALUES (:session_code, :user_id, :entity_type,
	          :filename, :file_path, :total_rows, :status)`
	result, err := r.db.NamedExec(query, session)
	if err != nil {
		return err
	}
	id, _ := result.LastInsertId()
	session.ID = int(id)
	return nil
}

func (r *UploadRepository) GetSessionByID(id int) (*models.UploadSession, error) {
	var session models.UploadSession
	query := "SELECT * FROM upload_sessions WHERE id = ? LIMIT 1"
	err := r.db.Get(&session, query, id)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *UploadRepository) GetSessionByCode(code string) (*models.UploadSession, error) {
	var session models.UploadSession
	query := "SELECT * FROM upload_sessions WHERE session_code = ? LIMIT 1"
	err := r.db.Get(&session, query, code)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *UploadRepository) GetSessions(limit, offset int, userID int) ([]models.UploadSession, int, error) {
	var sessions []models.UploadSession
	var total int

	whereClause := ""
	args := []interface{}{}

	if userID > 0 {
		whereClause = "WHERE user_id = ?"
		args = append(args, userID)
	}

	countQuery := "SELECT COUNT(*) FROM upload_sessions " + whereClause
	err := r.db.Get(&total, countQuery, args...)
	if err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM upload_sessions " + whereClause + " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)
	err = r.db.Select(&sessions, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return sessions, total, nil
}

func (r *UploadRepository) UpdateSession(session *models.UploadSession) error {
	query := `UPDATE upload_sessions SET total_rows = :total_rows, status = :status,
	          error_message = :error_message WHERE id = :id`
	_, err := r.db.NamedExec(query, session)
	return err
}

func (r *UploadRepository) UpdateSessionStatus(id int, status string) error {
	query := "UPDATE upload_sessions SET status = ? WHERE id = ?"
	_, err := r.db.Exec(query, status, id)
	return err
}

func (r *UploadRepository) DeleteSession(id int) error {
	query := "DELETE FROM upload_sessions WHERE id = ?"
	_, err := r.db.Exec(query, id)
	return err
}
