package loan

import (
	"time"

	"gorm.io/gorm"
)

type RequestStatus string

const (
	RequestRequested RequestStatus = "requested"
	RequestSigned    RequestStatus = "signed"
	RequestApproved  RequestStatus = "approved"
	RequestRejected  RequestStatus = "rejected"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusRepaid   Status = "repaid"
	StatusPaidLate Status = "paid_late"
)

type Frequency string

const (
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// Request is a borrower-level loan request. Group-sourced requests
// (GroupID != 0) need two distinct signatories before approval; individual
// requests (GroupID == 0) are approved directly by an admin.
type Request struct {
	ID                uint64         `gorm:"primaryKey;column:id" json:"-"`
	Borrower          string         `gorm:"size:32;not null;uniqueIndex:ux_loan_requests,priority:1" json:"borrower"`
	RequestID         uint64         `gorm:"not null;uniqueIndex:ux_loan_requests,priority:2" json:"request_id"`
	GroupID           uint64         `gorm:"not null;index:idx_loan_requests_group" json:"group_id"`
	Amount            int64          `gorm:"not null" json:"amount"`
	Interest          int64          `gorm:"not null" json:"interest"`
	TenorDays         uint32         `gorm:"not null" json:"tenor_days"`
	Frequency         Frequency      `gorm:"size:16;not null" json:"frequency"`
	Installments      uint32         `gorm:"not null" json:"installments"`
	InstallmentAmount int64          `gorm:"not null" json:"installment_amount"`
	Token             string         `gorm:"size:32;not null" json:"token"`
	Status            RequestStatus  `gorm:"type:enum('requested','signed','approved','rejected');default:'requested'" json:"status"`
	Signatory1        string         `gorm:"size:32;default:''" json:"signatory1,omitempty"`
	Signatory2        string         `gorm:"size:32;default:''" json:"signatory2,omitempty"`
	CreatedAt         time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Request) TableName() string { return "loan_requests" }

// SignedBy reports whether the principal already signed this request.
func (r *Request) SignedBy(principal string) bool {
	return r.Signatory1 == principal || r.Signatory2 == principal
}

// Loan is a disbursed loan. It shares its RequestID with the originating
// Request, which is retained as audit history.
type Loan struct {
	ID                uint64         `gorm:"primaryKey;column:id" json:"-"`
	Borrower          string         `gorm:"size:32;not null;uniqueIndex:ux_loans,priority:1" json:"borrower"`
	RequestID         uint64         `gorm:"not null;uniqueIndex:ux_loans,priority:2" json:"request_id"`
	GroupID           uint64         `gorm:"not null;index:idx_loans_group" json:"group_id"`
	Principal         int64          `gorm:"not null" json:"principal"`
	Interest          int64          `gorm:"not null" json:"interest"`
	RepaidAmount      int64          `gorm:"not null;default:0" json:"repaid_amount"`
	DisbursedDate     time.Time      `gorm:"not null" json:"disbursed_date"`
	DueDate           time.Time      `gorm:"not null" json:"due_date"`
	MaturityDate      time.Time      `gorm:"not null" json:"maturity_date"`
	LastRepaymentAt   *time.Time     `json:"last_repayment_at,omitempty"`
	TenorDays         uint32         `gorm:"not null" json:"tenor_days"`
	Frequency         Frequency      `gorm:"size:16;not null" json:"frequency"`
	Installments      uint32         `gorm:"not null" json:"installments"`
	InstallmentAmount int64          `gorm:"not null" json:"installment_amount"`
	Token             string         `gorm:"size:32;not null" json:"token"`
	Status            Status         `gorm:"type:enum('active','repaid','paid_late');default:'active'" json:"status"`
	CreatedAt         time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Loan) TableName() string { return "loans" }

// TotalOwed is principal plus the fixed interest set at approval time.
func (l *Loan) TotalOwed() int64 { return l.Principal + l.Interest }
