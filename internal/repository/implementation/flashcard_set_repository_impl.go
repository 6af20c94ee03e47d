package implementation

import (
	"context"
	"errors"

	"notesquest-be/internal/entity"
	"notesquest-be/internal/mapper"
	"notesquest-be/internal/model"
	"notesquest-be/internal/repository/contract"
	"notesquest-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FlashcardSetRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.FlashcardSetMapper
}

func NewFlashcardSetRepository(db *gorm.DB) contract.FlashcardSetRepository {
	return &FlashcardSetRepositoryImpl{
		db:     db,
		mapper: mapper.NewFlashcardSetMapper(),
	}
}

func (r *FlashcardSetRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *FlashcardSetRepositoryImpl) Create(ctx context.Context, set *entity.FlashcardSet) error {
	m := r.mapper.ToModel(set)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*set = *r.mapper.ToEntity(m)
	return nil
}

func (r *FlashcardSetRepositoryImpl) DeleteAllByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("document_id = ?", documentId).Delete(&model.FlashcardSet{}).Error
}

func (r *FlashcardSetRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.FlashcardSet, error) {
	var m model.FlashcardSet
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *FlashcardSetRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.FlashcardSet, error) {
	var models []*model.FlashcardSet
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *FlashcardSetRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.FlashcardSet{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *FlashcardSetRepositoryImpl) CountByDocumentIds(ctx context.Context, documentIds []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(documentIds))
	if len(documentIds) == 0 {
		return counts, nil
	}

	var rows []struct {
		DocumentId uuid.UUID
		Total      int64
	}
	err := r.db.WithContext(ctx).Model(&model.FlashcardSet{}).
		Select("document_id, count(*) as total").
		Where("document_id IN ?", documentIds).
		Group("document_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.DocumentId] = row.Total
	}
	return counts, nil
}
