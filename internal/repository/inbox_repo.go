package repository

import (
	"context"

	"github.com/LOSTXKER/anajakdoc-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InboxRepository interface {
	Create(ctx context.Context, draft *model.InboxDraft) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.InboxDraft, error)
	Update(ctx context.Context, draft *model.InboxDraft) error
}

type inboxRepository struct {
	db *gorm.DB
}

func NewInboxRepository(db *gorm.DB) InboxRepository {
	return &inboxRepository{db: db}
}

func (r *inboxRepository) Create(ctx context.Context, draft *model.InboxDraft) error {
	return GetDB(ctx, r.db).Create(draft).Error
}

func (r *inboxRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.InboxDraft, error) {
	var draft model.InboxDraft
	if err := GetDB(ctx, r.db).First(&draft, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &draft, nil
}

func (r *inboxRepository) Update(ctx context.Context, draft *model.InboxDraft) error {
	return GetDB(ctx, r.db).Save(draft).Error
}
