package group

import (
	"context"
	"errors"
	"strings"
	"testing"

	"groupfund-backend/internal/authz"
	domain "groupfund-backend/internal/domain/group"
	domainLoan "groupfund-backend/internal/domain/loan"
	"groupfund-backend/internal/domain/uow"
	"groupfund-backend/internal/events"
	"groupfund-backend/internal/guard"
	"groupfund-backend/internal/testutil/borrowermock"
	"groupfund-backend/internal/testutil/groupmock"
	"groupfund-backend/internal/testutil/uowmock"
)

var (
	adminID   = strings.Repeat("a", 32)
	managerID = strings.Repeat("c", 32)
	memberID  = strings.Repeat("d", 32)
	tokenID   = strings.Repeat("f", 32)
)

type fixture struct {
	uc        *Usecase
	store     *authz.Store
	groups    *groupmock.Repo
	borrowers *borrowermock.Repo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:     authz.NewStore(),
		groups:    &groupmock.Repo{},
		borrowers: &borrowermock.Repo{},
	}
	tx := &uowmock.UoW{Repos: uow.Repos{Groups: f.groups, Borrowers: f.borrowers}}
	gate := authz.NewGate(f.store, f.store)
	f.uc = NewUsecase(tx, gate, f.store, guard.New(), events.Nop{})

	f.store.SetRegistered(managerID, true)
	f.store.SetRegistered(memberID, true)
	_ = f.store.Grant(context.Background(), authz.Admin(), adminID)
	return f
}

func TestCreateGroup_GrantsManagerCapabilities(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dto, err := f.uc.CreateGroup(ctx, CreateGroupInput{
		Creator: managerID, Manager: managerID, FundingToken: tokenID, NoSignOff: false,
	})
	if err != nil {
		t.Fatalf("CreateGroup err: %v", err)
	}
	if dto.GroupID != 1 || !dto.IsOpen {
		t.Fatalf("unexpected group: %+v", dto)
	}
	for _, c := range []authz.Capability{authz.Manager(1), authz.Signatory(1), authz.Member(1)} {
		ok, _ := f.store.Has(ctx, managerID, c)
		if !ok {
			t.Fatalf("manager missing capability %+v", c)
		}
	}
}

func TestCreateGroup_ManagerNotRegistered(t *testing.T) {
	f := newFixture(t)
	stranger := strings.Repeat("e", 32)

	_, err := f.uc.CreateGroup(context.Background(), CreateGroupInput{
		Creator: managerID, Manager: stranger, FundingToken: tokenID,
	})
	if !errors.Is(err, authz.ErrNotRegistered) {
		t.Fatalf("err = %v, want ErrNotRegistered", err)
	}
}

func TestCreateGroup_ManagerAlreadyInGroup(t *testing.T) {
	f := newFixture(t)
	f.groups.GetMembershipFn = func(ctx context.Context, principal string) (*domain.Membership, error) {
		return &domain.Membership{GroupID: 3, Principal: principal}, nil
	}
	_, err := f.uc.CreateGroup(context.Background(), CreateGroupInput{
		Creator: managerID, Manager: managerID, FundingToken: tokenID,
	})
	if !errors.Is(err, domain.ErrAlreadyInGroup) {
		t.Fatalf("err = %v, want ErrAlreadyInGroup", err)
	}
}

func TestCreateGroup_Paused(t *testing.T) {
	f := newFixture(t)
	f.store.SetPaused(true)
	_, err := f.uc.CreateGroup(context.Background(), CreateGroupInput{
		Creator: managerID, Manager: managerID, FundingToken: tokenID,
	})
	if !errors.Is(err, authz.ErrPaused) {
		t.Fatalf("err = %v, want ErrPaused", err)
	}
}

// failingCaps fails every Grant; Has and Revoke fall through to the store.
type failingCaps struct {
	*authz.Store
	grantErr error
}

func (c *failingCaps) Grant(ctx context.Context, cb authz.Capability, principal string) error {
	if c.grantErr != nil {
		return c.grantErr
	}
	return c.Store.Grant(ctx, cb, principal)
}

func TestCreateGroup_GrantFailureAbortsTx(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	grantErr := errors.New("role service unavailable")
	caps := &failingCaps{Store: f.store, grantErr: grantErr}

	var inTx bool
	tx := &uowmock.UoW{Repos: uow.Repos{Groups: f.groups, Borrowers: f.borrowers}}
	f.groups.AddMemberFn = func(ctx context.Context, m *domain.Membership) error {
		inTx = true
		return nil
	}
	uc := NewUsecase(tx, authz.NewGate(f.store, f.store), caps, guard.New(), events.Nop{})

	_, err := uc.CreateGroup(ctx, CreateGroupInput{
		Creator: managerID, Manager: managerID, FundingToken: tokenID,
	})
	if !errors.Is(err, grantErr) {
		t.Fatalf("err = %v, want grant failure", err)
	}
	// The grant ran inside the same closure that wrote the membership, so a
	// real unit of work rolls both back together.
	if !inTx {
		t.Fatal("membership write never reached the tx closure")
	}
}

func TestAddMembers_GrantsMemberCapability(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_ = f.store.Grant(ctx, authz.Manager(1), managerID)
	f.groups.GetByIDForUpdateFn = func(ctx context.Context, id uint64) (*domain.Group, error) {
		return &domain.Group{ID: 1, Manager: managerID, IsOpen: true}, nil
	}
	var added []string
	f.groups.AddMemberFn = func(ctx context.Context, m *domain.Membership) error {
		added = append(added, m.Principal)
		return nil
	}

	if err := f.uc.AddMembers(ctx, managerID, 1, []string{memberID}); err != nil {
		t.Fatalf("AddMembers err: %v", err)
	}
	if len(added) != 1 || added[0] != memberID {
		t.Fatalf("added = %v", added)
	}
	ok, _ := f.store.Has(ctx, memberID, authz.Member(1))
	if !ok {
		t.Fatal("member capability not granted")
	}
}

func TestAddMembers_AlreadyInGroup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_ = f.store.Grant(ctx, authz.Manager(1), managerID)
	f.groups.GetByIDForUpdateFn = func(ctx context.Context, id uint64) (*domain.Group, error) {
		return &domain.Group{ID: 1, IsOpen: true}, nil
	}
	f.groups.GetMembershipFn = func(ctx context.Context, principal string) (*domain.Membership, error) {
		return &domain.Membership{GroupID: 2, Principal: principal}, nil
	}
	if err := f.uc.AddMembers(ctx, managerID, 1, []string{memberID}); !errors.Is(err, domain.ErrAlreadyInGroup) {
		t.Fatalf("err = %v, want ErrAlreadyInGroup", err)
	}
}

func TestAddMembers_ClosedGroup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_ = f.store.Grant(ctx, authz.Manager(1), managerID)
	f.groups.GetByIDForUpdateFn = func(ctx context.Context, id uint64) (*domain.Group, error) {
		return &domain.Group{ID: 1, IsOpen: false}, nil
	}
	if err := f.uc.AddMembers(ctx, managerID, 1, []string{memberID}); !errors.Is(err, domain.ErrClosed) {
		t.Fatalf("err = %v, want ErrClosed", err)
	}
}

func TestAddMembers_NotManager(t *testing.T) {
	f := newFixture(t)
	if err := f.uc.AddMembers(context.Background(), memberID, 1, []string{memberID}); !errors.Is(err, authz.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestRemoveMembers_OpenLoanBlocksRemoval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_ = f.store.Grant(ctx, authz.Manager(1), managerID)
	f.groups.GetByIDFn = func(ctx context.Context, id uint64) (*domain.Group, error) {
		return &domain.Group{ID: 1, Manager: managerID, IsOpen: true}, nil
	}
	f.groups.GetMembershipFn = func(ctx context.Context, principal string) (*domain.Membership, error) {
		return &domain.Membership{GroupID: 1, Principal: principal}, nil
	}
	f.borrowers.Flags = map[string]bool{memberID: true}

	if err := f.uc.RemoveMembers(ctx, managerID, 1, []string{memberID}); !errors.Is(err, domainLoan.ErrExistingLoan) {
		t.Fatalf("err = %v, want ErrExistingLoan", err)
	}
}

func TestRemoveMembers_RevokesCapabilities(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_ = f.store.Grant(ctx, authz.Manager(1), managerID)
	_ = f.store.Grant(ctx, authz.Member(1), memberID)
	_ = f.store.Grant(ctx, authz.Signatory(1), memberID)
	f.groups.GetByIDFn = func(ctx context.Context, id uint64) (*domain.Group, error) {
		return &domain.Group{ID: 1, Manager: managerID, IsOpen: true}, nil
	}
	f.groups.GetMembershipFn = func(ctx context.Context, principal string) (*domain.Membership, error) {
		return &domain.Membership{GroupID: 1, Principal: principal}, nil
	}

	if err := f.uc.RemoveMembers(ctx, managerID, 1, []string{memberID}); err != nil {
		t.Fatalf("RemoveMembers err: %v", err)
	}
	if ok, _ := f.store.Has(ctx, memberID, authz.Member(1)); ok {
		t.Fatal("member capability not revoked")
	}
	if ok, _ := f.store.Has(ctx, memberID, authz.Signatory(1)); ok {
		t.Fatal("signatory capability not revoked")
	}
}

func TestRemoveMembers_ManagerSeated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_ = f.store.Grant(ctx, authz.Manager(1), managerID)
	f.groups.GetByIDFn = func(ctx context.Context, id uint64) (*domain.Group, error) {
		return &domain.Group{ID: 1, Manager: managerID, IsOpen: true}, nil
	}
	f.groups.GetMembershipFn = func(ctx context.Context, principal string) (*domain.Membership, error) {
		return &domain.Membership{GroupID: 1, Principal: principal}, nil
	}
	var removed bool
	f.groups.RemoveMemberFn = func(ctx context.Context, groupID uint64, principal string) error {
		removed = true
		return nil
	}

	if err := f.uc.RemoveMembers(ctx, managerID, 1, []string{managerID}); !errors.Is(err, domain.ErrManagerSeated) {
		t.Fatalf("err = %v, want ErrManagerSeated", err)
	}
	if removed {
		t.Fatal("manager membership removed while still seated")
	}
}

func TestLeaveGroup_NotAMember(t *testing.T) {
	f := newFixture(t)
	f.groups.GetByIDFn = func(ctx context.Context, id uint64) (*domain.Group, error) {
		return &domain.Group{ID: 1, Manager: managerID, IsOpen: true}, nil
	}
	if err := f.uc.LeaveGroup(context.Background(), memberID, 1); !errors.Is(err, domain.ErrNotGroupMember) {
		t.Fatalf("err = %v, want ErrNotGroupMember", err)
	}
}

func TestLeaveGroup_WrongGroup(t *testing.T) {
	f := newFixture(t)
	f.groups.GetByIDFn = func(ctx context.Context, id uint64) (*domain.Group, error) {
		return &domain.Group{ID: 1, Manager: managerID, IsOpen: true}, nil
	}
	f.groups.GetMembershipFn = func(ctx context.Context, principal string) (*domain.Membership, error) {
		return &domain.Membership{GroupID: 2, Principal: principal}, nil
	}
	if err := f.uc.LeaveGroup(context.Background(), memberID, 1); !errors.Is(err, domain.ErrNotGroupMember) {
		t.Fatalf("err = %v, want ErrNotGroupMember", err)
	}
}

func TestLeaveGroup_ManagerSeated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.groups.GetByIDFn = func(ctx context.Context, id uint64) (*domain.Group, error) {
		return &domain.Group{ID: 1, Manager: managerID, IsOpen: true}, nil
	}
	f.groups.GetMembershipFn = func(ctx context.Context, principal string) (*domain.Membership, error) {
		return &domain.Membership{GroupID: 1, Principal: principal}, nil
	}
	if err := f.uc.LeaveGroup(ctx, managerID, 1); !errors.Is(err, domain.ErrManagerSeated) {
		t.Fatalf("err = %v, want ErrManagerSeated", err)
	}
}

func TestChangeManager_ReassignsCapabilities(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_ = f.store.Grant(ctx, authz.Manager(1), managerID)
	_ = f.store.Grant(ctx, authz.Signatory(1), managerID)

	g := &domain.Group{ID: 1, Manager: managerID, IsOpen: true}
	f.groups.GetByIDForUpdateFn = func(ctx context.Context, id uint64) (*domain.Group, error) {
		return g, nil
	}
	var autoAdded string
	f.groups.AddMemberFn = func(ctx context.Context, m *domain.Membership) error {
		autoAdded = m.Principal
		return nil
	}

	if err := f.uc.ChangeManager(ctx, adminID, 1, memberID); err != nil {
		t.Fatalf("ChangeManager err: %v", err)
	}
	if g.Manager != memberID {
		t.Fatalf("manager = %s, want %s", g.Manager, memberID)
	}
	if autoAdded != memberID {
		t.Fatal("new manager not auto-admitted")
	}
	if ok, _ := f.store.Has(ctx, managerID, authz.Manager(1)); ok {
		t.Fatal("old manager keeps manager capability")
	}
	for _, c := range []authz.Capability{authz.Manager(1), authz.Signatory(1), authz.Member(1)} {
		if ok, _ := f.store.Has(ctx, memberID, c); !ok {
			t.Fatalf("new manager missing %+v", c)
		}
	}
}

func TestChangeManager_NewManagerInOtherGroup(t *testing.T) {
	f := newFixture(t)
	f.groups.GetByIDForUpdateFn = func(ctx context.Context, id uint64) (*domain.Group, error) {
		return &domain.Group{ID: 1, IsOpen: true}, nil
	}
	f.groups.GetMembershipFn = func(ctx context.Context, principal string) (*domain.Membership, error) {
		return &domain.Membership{GroupID: 2, Principal: principal}, nil
	}
	if err := f.uc.ChangeManager(context.Background(), adminID, 1, memberID); !errors.Is(err, domain.ErrAlreadyInGroup) {
		t.Fatalf("err = %v, want ErrAlreadyInGroup", err)
	}
}

func TestSetGroupStatus_NoChange(t *testing.T) {
	f := newFixture(t)
	f.groups.GetByIDForUpdateFn = func(ctx context.Context, id uint64) (*domain.Group, error) {
		return &domain.Group{ID: 1, IsOpen: true}, nil
	}
	if err := f.uc.SetGroupStatus(context.Background(), adminID, 1, true); !errors.Is(err, domain.ErrNoChange) {
		t.Fatalf("err = %v, want ErrNoChange", err)
	}
}

func TestSetGroupStatus_Close(t *testing.T) {
	f := newFixture(t)
	g := &domain.Group{ID: 1, IsOpen: true}
	f.groups.GetByIDForUpdateFn = func(ctx context.Context, id uint64) (*domain.Group, error) {
		return g, nil
	}
	if err := f.uc.SetGroupStatus(context.Background(), adminID, 1, false); err != nil {
		t.Fatalf("SetGroupStatus err: %v", err)
	}
	if g.IsOpen {
		t.Fatal("group still open")
	}
}

func TestSetGroupStatus_NotAdmin(t *testing.T) {
	f := newFixture(t)
	if err := f.uc.SetGroupStatus(context.Background(), managerID, 1, false); !errors.Is(err, authz.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	f := newFixture(t)
	if _, err := f.uc.Get(context.Background(), 99); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
