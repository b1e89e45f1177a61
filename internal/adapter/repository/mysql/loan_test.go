package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "groupfund-backend/internal/domain/loan"
	"groupfund-backend/pkg/id"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// --- SQLite-friendly schemas only for tests (no ENUM) ---

type loanRequestSQLite struct {
	ID                uint64         `gorm:"primaryKey;column:id"`
	Borrower          string         `gorm:"size:32;uniqueIndex:ux_loan_requests,priority:1"`
	RequestID         uint64         `gorm:"uniqueIndex:ux_loan_requests,priority:2"`
	GroupID           uint64         `gorm:"index:idx_loan_requests_group"`
	Amount            int64          ``
	Interest          int64          ``
	TenorDays         uint32         ``
	Frequency         string         `gorm:"type:text"`
	Installments      uint32         ``
	InstallmentAmount int64          ``
	Token             string         `gorm:"size:32"`
	Status            string         `gorm:"type:text"` // ← no enum
	Signatory1        string         `gorm:"size:32"`
	Signatory2        string         `gorm:"size:32"`
	CreatedAt         time.Time      ``
	UpdatedAt         time.Time      ``
	DeletedAt         gorm.DeletedAt ``
}

func (loanRequestSQLite) TableName() string { return "loan_requests" }

type loanSQLite struct {
	ID                uint64         `gorm:"primaryKey;column:id"`
	Borrower          string         `gorm:"size:32;uniqueIndex:ux_loans,priority:1"`
	RequestID         uint64         `gorm:"uniqueIndex:ux_loans,priority:2"`
	GroupID           uint64         `gorm:"index:idx_loans_group"`
	Principal         int64          ``
	Interest          int64          ``
	RepaidAmount      int64          ``
	DisbursedDate     time.Time      ``
	DueDate           time.Time      ``
	MaturityDate      time.Time      ``
	LastRepaymentAt   *time.Time     ``
	TenorDays         uint32         ``
	Frequency         string         `gorm:"type:text"`
	Installments      uint32         ``
	InstallmentAmount int64          ``
	Token             string         `gorm:"size:32"`
	Status            string         `gorm:"type:text"` // ← no enum
	CreatedAt         time.Time      ``
	UpdatedAt         time.Time      ``
	DeletedAt         gorm.DeletedAt ``
}

func (loanSQLite) TableName() string { return "loans" }

// openTestDB creates an in-memory sqlite DB and migrates ONLY the sqlite-safe schema.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&loanRequestSQLite{}, &loanSQLite{}); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

func makeRequest(borrower string, requestID uint64) *domain.Request {
	return &domain.Request{
		Borrower:          borrower,
		RequestID:         requestID,
		GroupID:           7,
		Amount:            1000,
		Interest:          100,
		TenorDays:         30,
		Frequency:         domain.FrequencyMonthly,
		Installments:      2,
		InstallmentAmount: 550,
		Token:             id.NewID32(),
		Status:            domain.RequestRequested,
	}
}

func TestCreateAndGetRequest(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	borrower := id.NewID32()
	if err := repo.CreateRequest(ctx, makeRequest(borrower, 1)); err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}

	got, err := repo.GetRequest(ctx, borrower, 1)
	if err != nil {
		t.Fatalf("GetRequest: %v", err)
	}
	if got.Borrower != borrower || got.RequestID != 1 || got.Status != domain.RequestRequested {
		t.Errorf("unexpected request: %+v", got)
	}
}

func TestGetRequest_NotFound(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)

	_, err := repo.GetRequest(context.Background(), id.NewID32(), 1)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestNextRequestID_SequentialPerBorrower(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	b1 := id.NewID32()
	b2 := id.NewID32()

	next, err := repo.NextRequestID(ctx, b1)
	if err != nil {
		t.Fatalf("NextRequestID: %v", err)
	}
	if next != 1 {
		t.Fatalf("first id = %d, want 1", next)
	}

	if err := repo.CreateRequest(ctx, makeRequest(b1, 1)); err != nil {
		t.Fatal(err)
	}
	if err := repo.CreateRequest(ctx, makeRequest(b1, 2)); err != nil {
		t.Fatal(err)
	}

	next, err = repo.NextRequestID(ctx, b1)
	if err != nil {
		t.Fatalf("NextRequestID: %v", err)
	}
	if next != 3 {
		t.Fatalf("id after two requests = %d, want 3", next)
	}

	// ids are per borrower, not global
	next, err = repo.NextRequestID(ctx, b2)
	if err != nil {
		t.Fatalf("NextRequestID: %v", err)
	}
	if next != 1 {
		t.Fatalf("other borrower id = %d, want 1", next)
	}
}

func TestSaveRequest_UpdatesSignatories(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	borrower := id.NewID32()
	req := makeRequest(borrower, 1)
	if err := repo.CreateRequest(ctx, req); err != nil {
		t.Fatal(err)
	}

	sig := id.NewID32()
	req.Signatory1 = sig
	req.Status = domain.RequestSigned
	if err := repo.SaveRequest(ctx, req); err != nil {
		t.Fatalf("SaveRequest: %v", err)
	}

	got, err := repo.GetRequestForUpdate(ctx, borrower, 1)
	if err != nil {
		t.Fatalf("GetRequestForUpdate: %v", err)
	}
	if got.Signatory1 != sig || got.Status != domain.RequestSigned {
		t.Errorf("update not persisted: %+v", got)
	}
}

func TestCreateAndGetLoan(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	borrower := id.NewID32()
	now := time.Now().UTC()
	l := &domain.Loan{
		Borrower:          borrower,
		RequestID:         1,
		GroupID:           7,
		Principal:         1000,
		Interest:          100,
		DisbursedDate:     now,
		DueDate:           now.AddDate(0, 0, 30),
		MaturityDate:      now.AddDate(0, 0, 30),
		TenorDays:         30,
		Frequency:         domain.FrequencyMonthly,
		Installments:      1,
		InstallmentAmount: 1100,
		Token:             id.NewID32(),
		Status:            domain.StatusActive,
	}
	if err := repo.CreateLoan(ctx, l); err != nil {
		t.Fatalf("CreateLoan: %v", err)
	}
	if l.ID == 0 {
		t.Fatalf("CreateLoan did not set auto-increment ID")
	}

	got, err := repo.GetLoanForUpdate(ctx, borrower, 1)
	if err != nil {
		t.Fatalf("GetLoanForUpdate: %v", err)
	}
	if got.Principal != 1000 || got.Status != domain.StatusActive {
		t.Errorf("unexpected loan: %+v", got)
	}

	got.RepaidAmount = 1100
	got.Status = domain.StatusRepaid
	if err := repo.SaveLoan(ctx, got); err != nil {
		t.Fatalf("SaveLoan: %v", err)
	}
	got, err = repo.GetLoan(ctx, borrower, 1)
	if err != nil {
		t.Fatalf("GetLoan: %v", err)
	}
	if got.Status != domain.StatusRepaid || got.RepaidAmount != 1100 {
		t.Errorf("repayment not persisted: %+v", got)
	}
}
