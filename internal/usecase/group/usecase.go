package group

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"groupfund-backend/internal/authz"
	domain "groupfund-backend/internal/domain/group"
	domainLoan "groupfund-backend/internal/domain/loan"
	"groupfund-backend/internal/domain/uow"
	"groupfund-backend/internal/events"
	"groupfund-backend/internal/guard"
)

type Usecase struct {
	uow    uow.UnitOfWork
	gate   *authz.Gate
	caps   authz.CapabilityStore
	guard  *guard.Guard
	events events.Emitter
}

func NewUsecase(tx uow.UnitOfWork, gate *authz.Gate, caps authz.CapabilityStore, g *guard.Guard, em events.Emitter) *Usecase {
	return &Usecase{uow: tx, gate: gate, caps: caps, guard: g, events: em}
}

type CreateGroupInput struct {
	Creator      string `json:"creator"`
	Manager      string `json:"manager"`
	FundingToken string `json:"funding_token"`
	NoSignOff    bool   `json:"no_sign_off"`
}

type GroupDTO struct {
	GroupID      uint64    `json:"group_id"`
	Manager      string    `json:"manager"`
	FundingToken string    `json:"funding_token"`
	FundingPool  int64     `json:"funding_pool"`
	IsOpen       bool      `json:"is_open"`
	NoSignOff    bool      `json:"no_sign_off"`
	CreatedAt    time.Time `json:"created_at"`
}

func toDTO(g *domain.Group) *GroupDTO {
	return &GroupDTO{
		GroupID:      g.ID,
		Manager:      g.Manager,
		FundingToken: g.FundingToken,
		FundingPool:  g.FundingPool,
		IsOpen:       g.IsOpen,
		NoSignOff:    g.NoSignOff,
		CreatedAt:    g.CreatedAt,
	}
}

// CreateGroup sets the manager up as the sole initial member and grants the
// group-scoped capabilities. Held under the reentrancy guard because the
// capability store is an external call.
func (u *Usecase) CreateGroup(ctx context.Context, in CreateGroupInput) (*GroupDTO, error) {
	if err := u.guard.Enter(); err != nil {
		return nil, err
	}
	defer u.guard.Exit()

	if err := u.gate.Precheck(ctx, in.Creator); err != nil {
		return nil, err
	}
	if err := u.gate.RequireRegistered(ctx, in.Creator); err != nil {
		return nil, err
	}
	if err := u.gate.RequireRegistered(ctx, in.Manager); err != nil {
		return nil, err
	}

	var g *domain.Group
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := r.Groups.GetMembership(ctx, in.Manager); err == nil {
			return domain.ErrAlreadyInGroup
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		g = &domain.Group{
			Manager:      in.Manager,
			FundingToken: in.FundingToken,
			IsOpen:       true,
			NoSignOff:    in.NoSignOff,
		}
		if err := r.Groups.Create(ctx, g); err != nil {
			return err
		}
		if err := r.Groups.AddMember(ctx, &domain.Membership{GroupID: g.ID, Principal: in.Manager}); err != nil {
			return err
		}
		// Grants happen before commit; a store failure rolls the group back.
		for _, c := range []authz.Capability{authz.Manager(g.ID), authz.Signatory(g.ID), authz.Member(g.ID)} {
			if err := u.caps.Grant(ctx, c, in.Manager); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.events.Emit(events.Event{Name: "group_created", Actor: in.Creator, GroupID: g.ID})
	return toDTO(g), nil
}

func (u *Usecase) Get(ctx context.Context, groupID uint64) (*GroupDTO, error) {
	var g *domain.Group
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		g, err = r.Groups.GetByID(ctx, groupID)
		return notFound(err)
	})
	if err != nil {
		return nil, err
	}
	return toDTO(g), nil
}

// AddMembers admits registered principals with no current group assignment.
func (u *Usecase) AddMembers(ctx context.Context, actor string, groupID uint64, members []string) error {
	if err := u.gate.Precheck(ctx, actor); err != nil {
		return err
	}
	if err := u.gate.Require(ctx, actor, authz.Admin(), authz.Manager(groupID)); err != nil {
		return err
	}

	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		g, err := r.Groups.GetByIDForUpdate(ctx, groupID)
		if err != nil {
			return notFound(err)
		}
		if !g.IsOpen {
			return domain.ErrClosed
		}
		for _, m := range members {
			if err := u.gate.RequireRegistered(ctx, m); err != nil {
				return err
			}
			if _, err := r.Groups.GetMembership(ctx, m); err == nil {
				return domain.ErrAlreadyInGroup
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if err := r.Groups.AddMember(ctx, &domain.Membership{GroupID: groupID, Principal: m}); err != nil {
				return err
			}
			if err := u.caps.Grant(ctx, authz.Member(groupID), m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	u.events.Emit(events.Event{Name: "members_added", Actor: actor, GroupID: groupID})
	return nil
}

// RemoveMembers evicts members; anyone with an open loan stays put.
func (u *Usecase) RemoveMembers(ctx context.Context, actor string, groupID uint64, members []string) error {
	if err := u.gate.Precheck(ctx, actor); err != nil {
		return err
	}
	if err := u.gate.Require(ctx, actor, authz.Admin(), authz.Manager(groupID)); err != nil {
		return err
	}
	if err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		g, err := r.Groups.GetByID(ctx, groupID)
		if err != nil {
			return notFound(err)
		}
		for _, m := range members {
			if err := u.removeOne(ctx, r, g, m); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}
	u.events.Emit(events.Event{Name: "members_removed", Actor: actor, GroupID: groupID})
	return nil
}

// LeaveGroup is the member-initiated counterpart of RemoveMembers.
func (u *Usecase) LeaveGroup(ctx context.Context, member string, groupID uint64) error {
	if err := u.gate.Precheck(ctx, member); err != nil {
		return err
	}
	if err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		g, err := r.Groups.GetByID(ctx, groupID)
		if err != nil {
			return notFound(err)
		}
		return u.removeOne(ctx, r, g, member)
	}); err != nil {
		return err
	}
	u.events.Emit(events.Event{Name: "member_left", Actor: member, GroupID: groupID})
	return nil
}

// removeOne drops a membership and its group-scoped capabilities. The seated
// manager stays until ChangeManager reassigns the seat.
func (u *Usecase) removeOne(ctx context.Context, r uow.Repos, g *domain.Group, member string) error {
	if member == g.Manager {
		return domain.ErrManagerSeated
	}
	m, err := r.Groups.GetMembership(ctx, member)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotGroupMember
		}
		return err
	}
	if m.GroupID != g.ID {
		return domain.ErrNotGroupMember
	}
	open, err := r.Borrowers.HasOpenLoan(ctx, member)
	if err != nil {
		return err
	}
	if open {
		return domainLoan.ErrExistingLoan
	}
	if err := r.Groups.RemoveMember(ctx, g.ID, member); err != nil {
		return err
	}
	for _, c := range []authz.Capability{authz.Member(g.ID), authz.Signatory(g.ID)} {
		if err := u.caps.Revoke(ctx, c, member); err != nil {
			return err
		}
	}
	return nil
}

// ChangeManager reassigns the manager seat, auto-admitting the new manager
// when they are not yet in the group.
func (u *Usecase) ChangeManager(ctx context.Context, admin string, groupID uint64, newManager string) error {
	if err := u.gate.Require(ctx, admin, authz.Admin()); err != nil {
		return err
	}
	if err := u.gate.RequireRegistered(ctx, newManager); err != nil {
		return err
	}

	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		g, err := r.Groups.GetByIDForUpdate(ctx, groupID)
		if err != nil {
			return notFound(err)
		}
		if !g.IsOpen {
			return domain.ErrClosed
		}
		m, err := r.Groups.GetMembership(ctx, newManager)
		switch {
		case err == nil && m.GroupID != groupID:
			return domain.ErrAlreadyInGroup
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := r.Groups.AddMember(ctx, &domain.Membership{GroupID: groupID, Principal: newManager}); err != nil {
				return err
			}
		case err != nil:
			return err
		}
		oldManager := g.Manager
		g.Manager = newManager
		if err := r.Groups.Save(ctx, g); err != nil {
			return err
		}
		for _, c := range []authz.Capability{authz.Manager(groupID), authz.Signatory(groupID)} {
			if err := u.caps.Revoke(ctx, c, oldManager); err != nil {
				return err
			}
			if err := u.caps.Grant(ctx, c, newManager); err != nil {
				return err
			}
		}
		return u.caps.Grant(ctx, authz.Member(groupID), newManager)
	})
	if err != nil {
		return err
	}

	u.events.Emit(events.Event{Name: "manager_changed", Actor: admin, GroupID: groupID})
	return nil
}

// SetGroupStatus opens or closes a group; a no-op flip is rejected.
func (u *Usecase) SetGroupStatus(ctx context.Context, admin string, groupID uint64, isOpen bool) error {
	if err := u.gate.Require(ctx, admin, authz.Admin()); err != nil {
		return err
	}
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		g, err := r.Groups.GetByIDForUpdate(ctx, groupID)
		if err != nil {
			return notFound(err)
		}
		if g.IsOpen == isOpen {
			return domain.ErrNoChange
		}
		g.IsOpen = isOpen
		return r.Groups.Save(ctx, g)
	})
	if err != nil {
		return err
	}
	status := "closed"
	if isOpen {
		status = "open"
	}
	u.events.Emit(events.Event{Name: "group_status_changed", Actor: admin, GroupID: groupID, Status: status})
	return nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}
