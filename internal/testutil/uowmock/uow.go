package uowmock

import (
	"context"

	"groupfund-backend/internal/domain/uow"
)

// UoW passes a fixed repo bundle through; Err short-circuits the tx.
type UoW struct {
	Repos uow.Repos
	Err   error
}

func (u *UoW) WithinTx(_ context.Context, fn func(r uow.Repos) error) error {
	if u.Err != nil {
		return u.Err
	}
	return fn(u.Repos)
}
