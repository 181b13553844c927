package repository

import (
	"context"

	"github.com/LOSTXKER/anajakdoc-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WhtRepository interface {
	Create(ctx context.Context, tracking *model.WhtTracking) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.WhtTracking, error)
	ListByBox(ctx context.Context, boxID uuid.UUID) ([]model.WhtTracking, error)
	Update(ctx context.Context, tracking *model.WhtTracking) error
}

type whtRepository struct {
	db *gorm.DB
}

func NewWhtRepository(db *gorm.DB) WhtRepository {
	return &whtRepository{db: db}
}

func (r *whtRepository) Create(ctx context.Context, tracking *model.WhtTracking) error {
	return GetDB(ctx, r.db).Create(tracking).Error
}

func (r *whtRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.WhtTracking, error) {
	var tracking model.WhtTracking
	if err := GetDB(ctx, r.db).Preload("Contact").First(&tracking, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tracking, nil
}

func (r *whtRepository) ListByBox(ctx context.Context, boxID uuid.UUID) ([]model.WhtTracking, error) {
	var trackings []model.WhtTracking
	if err := GetDB(ctx, r.db).Preload("Contact").Where("box_id = ?", boxID).Order("created_at asc").Find(&trackings).Error; err != nil {
		return nil, err
	}
	return trackings, nil
}

func (r *whtRepository) Update(ctx context.Context, tracking *model.WhtTracking) error {
	return GetDB(ctx, r.db).Save(tracking).Error
}
