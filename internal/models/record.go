package models

import "time"

// Entity type discriminators for imported records.
const (
	EntityWorkItem       = "work_item"
	EntitySupplier       = "supplier"
	EntityRisk           = "risk"
	EntityGovernanceItem = "governance_item"
	EntityInvoice        = "invoice"
)

// Record is the shared shape of all five importable entity types. The
// entity_type column discriminates; fields that do not apply to a type stay
// null.
type Record struct {
	ID           int        `db:"id" json:"id"`
	EntityType   string     `db:"entity_type" json:"entity_type"`
	Reference    string     `db:"reference" json:"reference"` // natural key
	Name         string     `db:"name" json:"name"`
	Description  *string    `db:"description" json:"description,omitempty"`
	Department   *string    `db:"department" json:"department,omitempty"`
	OwnerID      *int       `db:"owner_id" json:"owner_id,omitempty"`
	CategoryCode *string    `db:"category_code" json:"category_code,omitempty"`
	Status       *string    `db:"status" json:"status,omitempty"`
	RAGStatus    *string    `db:"rag_status" json:"rag_status,omitempty"`
	Priority     *string    `db:"priority" json:"priority,omitempty"`
	WorkType     *string    `db:"work_type" json:"work_type,omitempty"`
	Frequency    *string    `db:"frequency" json:"frequency,omitempty"`
	Amount       *float64   `db:"amount" json:"amount,omitempty"`
	StartDate    *time.Time `db:"start_date" json:"start_date,omitempty"`
	DueDate      *time.Time `db:"due_date" json:"due_date,omitempty"`
	ReviewDate   *time.Time `db:"review_date" json:"review_date,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

type Category struct {
	ID   int    `db:"id" json:"id"`
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`
}
