package loan

import "errors"

var (
	ErrNotFound            = errors.New("loan not found")
	ErrExistingLoan        = errors.New("borrower already has an open loan")
	ErrInvalidInstallments = errors.New("number of installments must be at least 1")
	ErrNotRequested        = errors.New("loan request is not in requested state")
	ErrNotSigned           = errors.New("loan request is not signed off")
	ErrAlreadySigned       = errors.New("signatory already signed this request")
	ErrAlreadySignedOff    = errors.New("loan request already has two signatories")
	ErrNotActive           = errors.New("loan is not active")
)
