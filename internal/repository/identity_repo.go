package repository

import (
	"context"

	"Plume/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IdentityRepo 账号映射的各级来源
type IdentityRepo interface {
	GetCampaignEmployeeHandles(ctx context.Context, campaignID, userID uint64) ([]*model.CampaignEmployeeHandle, error)
	GetCampaignParticipants(ctx context.Context, campaignID uint64) ([]*model.CampaignParticipant, error)
	GetUserHandles(ctx context.Context, userID uint64) ([]*model.UserHandle, error)
	SaveCampaignEmployeeHandle(ctx context.Context, h *model.CampaignEmployeeHandle) error
	SaveUserHandle(ctx context.Context, h *model.UserHandle) error
}

type identityRepoImpl struct {
	db *gorm.DB
}

func NewIdentityRepository(db *gorm.DB) IdentityRepo {
	return &identityRepoImpl{db: db}
}

func (r *identityRepoImpl) GetCampaignEmployeeHandles(ctx context.Context, campaignID, userID uint64) ([]*model.CampaignEmployeeHandle, error) {
	rows := make([]*model.CampaignEmployeeHandle, 0)
	err := r.db.WithContext(ctx).
		Where("campaign_id = ? AND user_id = ?", campaignID, userID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *identityRepoImpl) GetCampaignParticipants(ctx context.Context, campaignID uint64) ([]*model.CampaignParticipant, error) {
	rows := make([]*model.CampaignParticipant, 0)
	err := r.db.WithContext(ctx).
		Where("campaign_id = ?", campaignID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *identityRepoImpl) GetUserHandles(ctx context.Context, userID uint64) ([]*model.UserHandle, error) {
	rows := make([]*model.UserHandle, 0)
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SaveCampaignEmployeeHandle 已存在时忽略
func (r *identityRepoImpl) SaveCampaignEmployeeHandle(ctx context.Context, h *model.CampaignEmployeeHandle) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(h).Error
}

// SaveUserHandle 已存在时忽略
func (r *identityRepoImpl) SaveUserHandle(ctx context.Context, h *model.UserHandle) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(h).Error
}
