package repository

import (
	"context"

	"github.com/LOSTXKER/anajakdoc-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContactRepository interface {
	Create(ctx context.Context, contact *model.Contact) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Contact, error)
	FindByTaxID(ctx context.Context, taxID string) (*model.Contact, error)
	List(ctx context.Context, page, limit int) ([]model.Contact, int64, error)
	Update(ctx context.Context, contact *model.Contact) error
}

type contactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Create(ctx context.Context, contact *model.Contact) error {
	return GetDB(ctx, r.db).Create(contact).Error
}

func (r *contactRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Contact, error) {
	var contact model.Contact
	if err := GetDB(ctx, r.db).First(&contact, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &contact, nil
}

func (r *contactRepository) FindByTaxID(ctx context.Context, taxID string) (*model.Contact, error) {
	var contact model.Contact
	err := GetDB(ctx, r.db).First(&contact, "tax_id = ?", taxID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &contact, nil
}

func (r *contactRepository) List(ctx context.Context, page, limit int) ([]model.Contact, int64, error) {
	var contacts []model.Contact
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Contact{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("name asc").Offset(offset).Limit(limit).Find(&contacts).Error; err != nil {
		return nil, 0, err
	}

	return contacts, total, nil
}

func (r *contactRepository) Update(ctx context.Context, contact *model.Contact) error {
	return GetDB(ctx, r.db).Save(contact).Error
}
