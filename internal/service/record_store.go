package service

import (
	"registry-web/internal/models"
	"registry-web/internal/repository"
)

// SQLRecordStore adapts the sqlx-backed record repository to the import
// service's store interface.
type SQLRecordStore struct {
	Repo *repository.RecordRepository
}

func (s SQLRecordStore) Begin() (RecordTx, error) {
	return s.Repo.Begin()
}

func (s SQLRecordStore) FindByNaturalKey(entityType, key string) (*models.Record, error) {
	return s.Repo.FindByNaturalKey(entityType, key)
}

func (s SQLRecordStore) SearchCandidates(entityType, scope string, keywords []string, limit int) ([]models.Record, error) {
	return s.Repo.SearchCandidates(entityType, scope, keywords, limit)
}
