package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCandidateQueryRequiresEveryKeyword(t *testing.T) {
	query, args := candidateQuery("work_item", "Finance", []string{"ledger", "migration"}, 3)

	assert.Contains(t, query,
		"entity_type = ? AND department = ? AND (name LIKE ? OR description LIKE ?) AND (name LIKE ? OR description LIKE ?)")
	assert.Equal(t, []interface{}{"work_item", "Finance", "%ledger%", "%ledger%", "%migration%", "%migration%", 3}, args)
}

func TestCandidateQueryWithoutScope(t *testing.T) {
	query, args := candidateQuery("supplier", "", []string{"acme"}, 3)

	assert.NotContains(t, query, "department")
	assert.Equal(t, []interface{}{"supplier", "%acme%", "%acme%", 3}, args)
}
