package repository

import (
	"context"

	"github.com/LOSTXKER/anajakdoc-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DocumentRepository interface {
	Create(ctx context.Context, doc *model.Document) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Document, error)
	FindByBoxAndTypes(ctx context.Context, boxID uuid.UUID, docTypes []string) (*model.Document, error)
	ListByBox(ctx context.Context, boxID uuid.UUID) ([]model.Document, error)
	AddFile(ctx context.Context, file *model.File) error
	FindFileByID(ctx context.Context, id uuid.UUID) (*model.File, error)
	RemoveFile(ctx context.Context, fileID uuid.UUID) error
	CountFiles(ctx context.Context, documentID uuid.UUID) (int64, error)
}

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, doc *model.Document) error {
	return GetDB(ctx, r.db).Create(doc).Error
}

func (r *documentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Document, error) {
	var doc model.Document
	if err := GetDB(ctx, r.db).Preload("Files").First(&doc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// FindByBoxAndTypes returns the box's document whose type falls in the given
// equivalence group, if any. Used to keep one Document per group.
func (r *documentRepository) FindByBoxAndTypes(ctx context.Context, boxID uuid.UUID, docTypes []string) (*model.Document, error) {
	var doc model.Document
	err := GetDB(ctx, r.db).
		Preload("Files").
		Where("box_id = ? AND doc_type IN ?", boxID, docTypes).
		First(&doc).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) ListByBox(ctx context.Context, boxID uuid.UUID) ([]model.Document, error) {
	var docs []model.Document
	if err := GetDB(ctx, r.db).Preload("Files").Where("box_id = ?", boxID).Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *documentRepository) AddFile(ctx context.Context, file *model.File) error {
	return GetDB(ctx, r.db).Create(file).Error
}

func (r *documentRepository) FindFileByID(ctx context.Context, id uuid.UUID) (*model.File, error) {
	var file model.File
	if err := GetDB(ctx, r.db).First(&file, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *documentRepository) RemoveFile(ctx context.Context, fileID uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.File{}, "id = ?", fileID).Error
}

func (r *documentRepository) CountFiles(ctx context.Context, documentID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.File{}).Where("document_id = ?", documentID).Count(&count).Error
	return count, err
}
