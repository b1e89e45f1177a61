package mysql

import (
	"context"

	domain "groupfund-backend/internal/domain/group"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GroupRepository struct{ db *gorm.DB }

func NewGroupRepository(db *gorm.DB) *GroupRepository { return &GroupRepository{db: db} }

func (r *GroupRepository) Create(ctx context.Context, g *domain.Group) error {
	return r.db.WithContext(ctx).Create(g).Error
}

func (r *GroupRepository) Save(ctx context.Context, g *domain.Group) error {
	return r.db.WithContext(ctx).Save(g).Error
}

func (r *GroupRepository) GetByID(ctx context.Context, id uint64) (*domain.Group, error) {
	var out domain.Group
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *GroupRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*domain.Group, error) {
	var out domain.Group
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *GroupRepository) AddMember(ctx context.Context, m *domain.Membership) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *GroupRepository) RemoveMember(ctx context.Context, groupID uint64, principal string) error {
	return r.db.WithContext(ctx).
		Where("group_id = ? AND principal = ?", groupID, principal).
		Delete(&domain.Membership{}).Error
}

func (r *GroupRepository) GetMembership(ctx context.Context, principal string) (*domain.Membership, error) {
	var out domain.Membership
	res := r.db.WithContext(ctx).Where("principal = ?", principal).First(&out)
	return &out, res.Error
}

func (r *GroupRepository) ListMembers(ctx context.Context, groupID uint64) ([]domain.Membership, error) {
	var out []domain.Membership
	res := r.db.WithContext(ctx).Where("group_id = ?", groupID).Order("id ASC").Find(&out)
	return out, res.Error
}
