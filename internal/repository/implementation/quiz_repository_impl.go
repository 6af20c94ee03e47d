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

type QuizRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.QuizMapper
}

func NewQuizRepository(db *gorm.DB) contract.QuizRepository {
	return &QuizRepositoryImpl{
		db:     db,
		mapper: mapper.NewQuizMapper(),
	}
}

func (r *QuizRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *QuizRepositoryImpl) Create(ctx context.Context, quiz *entity.Quiz) error {
	m := r.mapper.ToModel(quiz)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*quiz = *r.mapper.ToEntity(m)
	return nil
}

func (r *QuizRepositoryImpl) DeleteAllByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("document_id = ?", documentId).Delete(&model.Quiz{}).Error
}

func (r *QuizRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Quiz, error) {
	var m model.Quiz
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *QuizRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Quiz, error) {
	var models []*model.Quiz
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *QuizRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Quiz{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *QuizRepositoryImpl) CountByDocumentIds(ctx context.Context, documentIds []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(documentIds))
	if len(documentIds) == 0 {
		return counts, nil
	}

	var rows []struct {
		DocumentId uuid.UUID
		Total      int64
	}
	err := r.db.WithContext(ctx).Model(&model.Quiz{}).
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
