package borrower

import "time"

// Flag is the per-borrower outstanding-loan marker: true from loan-request
// creation until full repayment or rejection. It is what enforces one open
// loan per borrower system-wide, across both individual and group paths.
type Flag struct {
	Borrower    string    `gorm:"size:32;primaryKey;column:borrower" json:"borrower"`
	HasOpenLoan bool      `gorm:"not null;default:false" json:"has_open_loan"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Flag) TableName() string { return "borrower_flags" }
