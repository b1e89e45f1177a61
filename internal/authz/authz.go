// Package authz is the authorization gate: a pure decision layer over an
// external capability store and administrative flags. It holds no capability
// logic itself; every mutating operation asks it before touching state.
package authz

import (
	"context"
	"errors"
)

type Kind string

const (
	SystemAdmin      Kind = "system_admin"
	RegisteredMember Kind = "registered_member"
	GroupManager     Kind = "group_manager"
	GroupMember      Kind = "group_member"
	GroupSignatory   Kind = "group_signatory"
)

// Capability is one grantable right; group-scoped kinds carry the group id.
type Capability struct {
	Kind    Kind
	GroupID uint64
}

func Admin() Capability                { return Capability{Kind: SystemAdmin} }
func Registered() Capability           { return Capability{Kind: RegisteredMember} }
func Manager(groupID uint64) Capability {
	return Capability{Kind: GroupManager, GroupID: groupID}
}
func Member(groupID uint64) Capability {
	return Capability{Kind: GroupMember, GroupID: groupID}
}
func Signatory(groupID uint64) Capability {
	return Capability{Kind: GroupSignatory, GroupID: groupID}
}

// CapabilityStore is the external role/capability collaborator.
type CapabilityStore interface {
	Has(ctx context.Context, principal string, c Capability) (bool, error)
	Grant(ctx context.Context, c Capability, principal string) error
	Revoke(ctx context.Context, c Capability, principal string) error
}

// AdminState is the external administrative surface: global pause,
// per-principal block, and member registration flags.
type AdminState interface {
	IsPaused(ctx context.Context) (bool, error)
	IsBlocked(ctx context.Context, principal string) (bool, error)
	IsRegistered(ctx context.Context, principal string) (bool, error)
}

var (
	ErrUnauthorized  = errors.New("principal lacks required capability")
	ErrNotRegistered = errors.New("principal is not a registered member")
	ErrBlocked       = errors.New("principal is blocked")
	ErrPaused        = errors.New("system is paused")
)

type Gate struct {
	caps  CapabilityStore
	admin AdminState
}

func NewGate(caps CapabilityStore, admin AdminState) *Gate {
	return &Gate{caps: caps, admin: admin}
}

// Precheck runs the pause and block gates that precede every capability
// check on non-administrative operations.
func (g *Gate) Precheck(ctx context.Context, principal string) error {
	paused, err := g.admin.IsPaused(ctx)
	if err != nil {
		return err
	}
	if paused {
		return ErrPaused
	}
	blocked, err := g.admin.IsBlocked(ctx, principal)
	if err != nil {
		return err
	}
	if blocked {
		return ErrBlocked
	}
	return nil
}

// Require passes when the principal holds any one of the listed capabilities.
func (g *Gate) Require(ctx context.Context, principal string, caps ...Capability) error {
	for _, c := range caps {
		ok, err := g.caps.Has(ctx, principal, c)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return ErrUnauthorized
}

// RequireRegistered fails with ErrNotRegistered rather than ErrUnauthorized
// so callers can surface the distinct error identity.
func (g *Gate) RequireRegistered(ctx context.Context, principal string) error {
	ok, err := g.admin.IsRegistered(ctx, principal)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotRegistered
	}
	return nil
}
