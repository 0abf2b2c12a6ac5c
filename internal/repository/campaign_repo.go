package repository

import (
	"context"
	"errors"

	"Plume/internal/model"

	"gorm.io/gorm"
)

type CampaignRepo interface {
	GetCampaignById(ctx context.Context, id uint64) (*model.Campaign, error)
	GetCampaignByIds(ctx context.Context, ids []uint64) ([]*model.Campaign, error)
	GetMemberIDs(ctx context.Context, campaignID uint64) ([]uint64, error)
}

type campaignRepoImpl struct {
	db *gorm.DB
}

func NewCampaignRepository(db *gorm.DB) CampaignRepo {
	return &campaignRepoImpl{db: db}
}

// GetCampaignById 不存在时返回 nil, nil
func (r *campaignRepoImpl) GetCampaignById(ctx context.Context, id uint64) (*model.Campaign, error) {
	campaign := &model.Campaign{}
	err := r.db.WithContext(ctx).First(campaign, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return campaign, nil
}

func (r *campaignRepoImpl) GetCampaignByIds(ctx context.Context, ids []uint64) ([]*model.Campaign, error) {
	campaigns := make([]*model.Campaign, 0)
	if len(ids) == 0 {
		return campaigns, nil
	}
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&campaigns).Error
	if err != nil {
		return nil, err
	}
	return campaigns, nil
}

// GetMemberIDs 活动分配的员工，按 user_id 升序
func (r *campaignRepoImpl) GetMemberIDs(ctx context.Context, campaignID uint64) ([]uint64, error) {
	ids := make([]uint64, 0)
	err := r.db.WithContext(ctx).
		Model(&model.CampaignMember{}).
		Where("campaign_id = ?", campaignID).
		Order("user_id ASC").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
