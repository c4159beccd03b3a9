package models

import "time"

type RecordType string

const (
	RecordTypeIncome  RecordType = "income"
	RecordTypeExpense RecordType = "expense"
)

// RecordDateLayout is the wire format of Record.RecordDate.
const RecordDateLayout = "2006-01-02"

// Record is a single income or expense entry. The server is the source of
// truth; clients hold records only as a page-sized cache.
type Record struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Type        RecordType `json:"type"`
	Amount      float64    `json:"amount"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	RecordDate  string     `json:"recordDate"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// RecordForm is the create/update payload for /records.
type RecordForm struct {
	Type        string  `json:"type" validate:"required,oneof=income expense"`
	Amount      float64 `json:"amount" validate:"gte=0"`
	Category    string  `json:"category" validate:"required"`
	Description string  `json:"description"`
	RecordDate  string  `json:"recordDate" validate:"required,datetime=2006-01-02"`
}
