package groupmock

import (
	"context"

	domain "groupfund-backend/internal/domain/group"

	"gorm.io/gorm"
)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn           func(ctx context.Context, g *domain.Group) error
	GetByIDFn          func(ctx context.Context, id uint64) (*domain.Group, error)
	GetByIDForUpdateFn func(ctx context.Context, id uint64) (*domain.Group, error)
	SaveFn             func(ctx context.Context, g *domain.Group) error
	AddMemberFn        func(ctx context.Context, m *domain.Membership) error
	RemoveMemberFn     func(ctx context.Context, groupID uint64, principal string) error
	GetMembershipFn    func(ctx context.Context, principal string) (*domain.Membership, error)
	ListMembersFn      func(ctx context.Context, groupID uint64) ([]domain.Membership, error)
}

func (m *Repo) Create(ctx context.Context, g *domain.Group) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, g)
	}
	g.ID = 1
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.Group, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id uint64) (*domain.Group, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) Save(ctx context.Context, g *domain.Group) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, g)
	}
	return nil
}

func (m *Repo) AddMember(ctx context.Context, mb *domain.Membership) error {
	if m.AddMemberFn != nil {
		return m.AddMemberFn(ctx, mb)
	}
	return nil
}

func (m *Repo) RemoveMember(ctx context.Context, groupID uint64, principal string) error {
	if m.RemoveMemberFn != nil {
		return m.RemoveMemberFn(ctx, groupID, principal)
	}
	return nil
}

func (m *Repo) GetMembership(ctx context.Context, principal string) (*domain.Membership, error) {
	if m.GetMembershipFn != nil {
		return m.GetMembershipFn(ctx, principal)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) ListMembers(ctx context.Context, groupID uint64) ([]domain.Membership, error) {
	if m.ListMembersFn != nil {
		return m.ListMembersFn(ctx, groupID)
	}
	return nil, nil
}
