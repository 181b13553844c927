package repository

import (
	"context"

	"github.com/LOSTXKER/anajakdoc-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BoxFilter narrows box listings.
type BoxFilter struct {
	Status        string
	BoxType       string
	PaymentStatus string
}

type BoxRepository interface {
	Create(ctx context.Context, box *model.Box) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Box, error)
	FindByIDWithDocuments(ctx context.Context, id uuid.UUID) (*model.Box, error)
	List(ctx context.Context, filter BoxFilter, page, limit int) ([]model.Box, int64, error)
	ListPending(ctx context.Context, boxType string) ([]model.Box, error)
	Update(ctx context.Context, box *model.Box) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type boxRepository struct {
	db *gorm.DB
}

func NewBoxRepository(db *gorm.DB) BoxRepository {
	return &boxRepository{db: db}
}

func (r *boxRepository) Create(ctx context.Context, box *model.Box) error {
	return GetDB(ctx, r.db).Create(box).Error
}

func (r *boxRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Box, error) {
	var box model.Box
	if err := GetDB(ctx, r.db).First(&box, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &box, nil
}

func (r *boxRepository) FindByIDWithDocuments(ctx context.Context, id uuid.UUID) (*model.Box, error) {
	var box model.Box
	if err := GetDB(ctx, r.db).
		Preload("Documents").
		Preload("Documents.Files").
		Preload("Payments").
		Preload("Contact").
		First(&box, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &box, nil
}

func (r *boxRepository) List(ctx context.Context, filter BoxFilter, page, limit int) ([]model.Box, int64, error) {
	var boxes []model.Box
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Box{})
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.BoxType != "" {
		db = db.Where("box_type = ?", filter.BoxType)
	}
	if filter.PaymentStatus != "" {
		db = db.Where("payment_status = ?", filter.PaymentStatus)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("created_at desc").Offset(offset).Limit(limit).Find(&boxes).Error; err != nil {
		return nil, 0, err
	}

	return boxes, total, nil
}

// ListPending returns the open boxes of one type, the candidate set for the
// inbox matcher.
func (r *boxRepository) ListPending(ctx context.Context, boxType string) ([]model.Box, error) {
	var boxes []model.Box
	db := GetDB(ctx, r.db).
		Preload("Contact").
		Where("status IN ?", []string{model.BoxStatusDraft, model.BoxStatusPending, model.BoxStatusNeedDocs})
	if boxType != "" {
		db = db.Where("box_type = ?", boxType)
	}
	if err := db.Order("created_at desc").Find(&boxes).Error; err != nil {
		return nil, err
	}
	return boxes, nil
}

func (r *boxRepository) Update(ctx context.Context, box *model.Box) error {
	return GetDB(ctx, r.db).Save(box).Error
}

func (r *boxRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.Box{}, "id = ?", id).Error
}
