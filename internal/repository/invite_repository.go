package repository

import (
	"smartgrade_backend/internal/model"
	"smartgrade_backend/internal/util"

	"gorm.io/gorm"
)

type InviteRepository struct {
	DB *gorm.DB
}

func NewInviteRepository(db *gorm.DB) *InviteRepository {
	return &InviteRepository{DB: db}
}

func (r *InviteRepository) Create(invite *model.InviteToken) error {
	return r.DB.Create(invite).Error
}

func (r *InviteRepository) FindByCode(code string) (*model.InviteToken, error) {
	var invite model.InviteToken
	err := r.DB.Where("code = ?", code).First(&invite).Error
	return &invite, err
}

func (r *InviteRepository) ListAll() ([]model.InviteToken, error) {
	var invites []model.InviteToken
	err := r.DB.Order("created_at DESC").Find(&invites).Error
	return invites, err
}

// Consume 消费邀请码。条件更新保证一次性：已用过的码影响行数为0
func (r *InviteRepository) Consume(code, usedBy string) error {
	res := r.DB.Model(&model.InviteToken{}).
		Where("code = ? AND is_used = ?", code, false).
		Updates(map[string]interface{}{"is_used": true, "used_by": usedBy})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrInvalidInviteCode
	}
	return nil
}

// DeleteUnused 撤销未使用的邀请码
func (r *InviteRepository) DeleteUnused(code string) error {
	res := r.DB.Where("code = ? AND is_used = ?", code, false).Delete(&model.InviteToken{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrInviteNotFound
	}
	return nil
}
