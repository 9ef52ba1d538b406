package repository

import (
	"registry-web/internal/models"

	"github.com/jmoiron/sqlx"
)

type NotificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(notification *models.Notification) error {
	query := `INSERT INTO notifications (user_id, job_id, title, body, is_read)
	          VALUES (:user_id, :job_id, :title, :body, :is_read)`
	result, err := r.db.NamedExec(query, notification)
	if err != nil {
		return err
	}
	id, _ := result.LastInsertId()
	notification.ID = int(id)
	return nil
}

func (r *NotificationRepository) ListByUser(userID int, limit, offset int) ([]models.Notification, int, error) {
	var notifications []models.Notification
	var total int

	countQuery := "SELECT COUNT(*) FROM notifications WHERE user_id = ?"
	err := r.db.Get(&total, countQuery, userID)
	if err != nil {
		return nil, 0, err
	}

	query := `SELECT * FROM notifications WHERE user_id = ?
	          ORDER BY created_at DESC LIMIT ? OFFSET ?`
	err = r.db.Select(&notifications, query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	return notifications, total, nil
}

func (r *NotificationRepository) MarkRead(id, userID int) error {
	query := "UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?"
	_, err := r.db.Exec(query, id, userID)
	return err
}

func (r *NotificationRepository) UnreadCount(userID int) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = 0"
	err := r.db.Get(&count, query, userID)
	return count, err
}
