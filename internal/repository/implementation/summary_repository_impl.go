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

type SummaryRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SummaryMapper
}

func NewSummaryRepository(db *gorm.DB) contract.SummaryRepository {
	return &SummaryRepositoryImpl{
		db:     db,
		mapper: mapper.NewSummaryMapper(),
	}
}

func (r *SummaryRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SummaryRepositoryImpl) Create(ctx context.Context, summary *entity.Summary) error {
	m := r.mapper.ToModel(summary)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*summary = *r.mapper.ToEntity(m)
	return nil
}

func (r *SummaryRepositoryImpl) DeleteAllByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("document_id = ?", documentId).Delete(&model.Summary{}).Error
}

func (r *SummaryRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Summary, error) {
	var m model.Summary
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *SummaryRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Summary, error) {
	var models []*model.Summary
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *SummaryRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Summary{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *SummaryRepositoryImpl) CountByDocumentIds(ctx context.Context, documentIds []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(documentIds))
	if len(documentIds) == 0 {
		return counts, nil
	}

	var rows []struct {
		DocumentId uuid.UUID
		Total      int64
	}
	err := r.db.WithContext(ctx).Model(&model.Summary{}).
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
