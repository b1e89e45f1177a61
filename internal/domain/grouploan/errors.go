package grouploan

import "errors"

var (
	ErrNotFound            = errors.New("group loan request not found")
	ErrActiveRequestExists = errors.New("group already has an active loan request")
	ErrNotRequested        = errors.New("group loan request is not in requested state")
)
