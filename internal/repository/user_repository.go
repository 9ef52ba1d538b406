package repository

import (
	"github.com/jmoiron/sqlx"

	"registry-web/internal/models"
)

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) findOne(where string, arg interface{}) (*models.User, error) {
	var user models.User
	err := r.db.Get(&user, "SELECT * FROM users WHERE "+where+" LIMIT 1", arg)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByUsername(username string) (*models.User, error) {
	return r.findOne("username = ?", username)
}

func (r *UserRepository) FindByEmail(email string) (*models.User, error) {
	return r.findOne("email = ?", email)
}

func (r *UserRepository) FindByID(id int) (*models.User, error) {
	return r.findOne("id = ?", id)
}

// ListActive returns every active user, the candidate set for free-text
// person resolution.
func (r *UserRepository) ListActive() ([]models.User, error) {
	var users []models.User
	err := r.db.Select(&users, "SELECT * FROM users WHERE is_active = 1 ORDER BY name")
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) Create(user *models.User) error {
	query := `INSERT INTO users (name, username, email, password_hash, role, is_active)
	          VALUES (:name, :username, :email, :password_hash, :role, :is_active)`
	result, err := r.db.NamedExec(query, user)
	if err != nil {
		return err
	}
	id, _ := result.LastInsertId()
	user.ID = int(id)
	return nil
}
