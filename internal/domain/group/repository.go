package group

import "context"

type Repository interface {
	Create(ctx context.Context, g *Group) error
	GetByID(ctx context.Context, id uint64) (*Group, error)
	// GetByIDForUpdate locks the group row for the enclosing transaction.
	GetByIDForUpdate(ctx context.Context, id uint64) (*Group, error)
	Save(ctx context.Context, g *Group) error

	AddMember(ctx context.Context, m *Membership) error
	RemoveMember(ctx context.Context, groupID uint64, principal string) error
	// GetMembership returns the (single) membership of a principal, any group.
	GetMembership(ctx context.Context, principal string) (*Membership, error)
	ListMembers(ctx context.Context, groupID uint64) ([]Membership, error)
}
