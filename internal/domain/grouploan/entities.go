package grouploan

import (
	"time"

	"gorm.io/gorm"
)

type RequestStatus string

const (
	RequestRequested RequestStatus = "requested"
	RequestApproved  RequestStatus = "approved"
	RequestRejected  RequestStatus = "rejected"
)

type LoanStatus string

const (
	LoanActive   LoanStatus = "active"
	LoanRepaid   LoanStatus = "repaid"
	LoanPaidLate LoanStatus = "paid_late"
)

// Request is a group-level borrowing request; at most one per group may be
// in the requested state at a time.
type Request struct {
	ID        uint64         `gorm:"primaryKey;column:id" json:"-"`
	GroupID   uint64         `gorm:"not null;uniqueIndex:ux_group_requests,priority:1" json:"group_id"`
	RequestID uint64         `gorm:"not null;uniqueIndex:ux_group_requests,priority:2" json:"request_id"`
	Amount    int64          `gorm:"not null" json:"amount"`
	TenorDays uint32         `gorm:"not null" json:"tenor_days"`
	Status    RequestStatus  `gorm:"type:enum('requested','approved','rejected');default:'requested'" json:"status"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Request) TableName() string { return "group_loan_requests" }

// Loan is the accounting record materialized when a group loan request is
// approved; it shares its LoanID with the originating request.
type Loan struct {
	ID                 uint64         `gorm:"primaryKey;column:id" json:"-"`
	GroupID            uint64         `gorm:"not null;uniqueIndex:ux_group_loans,priority:1" json:"group_id"`
	LoanID             uint64         `gorm:"not null;uniqueIndex:ux_group_loans,priority:2" json:"loan_id"`
	Principal          int64          `gorm:"not null" json:"principal"`
	Interest           int64          `gorm:"not null" json:"interest"`
	RepaidPrincipal    int64          `gorm:"not null;default:0" json:"repaid_principal"`
	RepaidInterest     int64          `gorm:"not null;default:0" json:"repaid_interest"`
	RemainingPrincipal int64          `gorm:"not null" json:"remaining_principal"`
	RemainingInterest  int64          `gorm:"not null" json:"remaining_interest"`
	DisbursedDate      time.Time      `gorm:"not null" json:"disbursed_date"`
	MaturityDate       time.Time      `gorm:"not null" json:"maturity_date"`
	TenorDays          uint32         `gorm:"not null" json:"tenor_days"`
	Status             LoanStatus     `gorm:"type:enum('active','repaid','paid_late');default:'active'" json:"status"`
	CreatedAt          time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Loan) TableName() string { return "group_loans" }
