package mapper

import (
	"encoding/json"

	"gorm.io/datatypes"

	"notesquest-be/internal/entity"
	"notesquest-be/internal/model"
	"notesquest-be/pkg/flashcard"
	"notesquest-be/pkg/quiz"
)

type SummaryMapper struct{}

func NewSummaryMapper() *SummaryMapper {
	return &SummaryMapper{}
}

func (m *SummaryMapper) ToEntity(s *model.Summary) *entity.Summary {
	if s == nil {
		return nil
	}
	return &entity.Summary{
		Id:         s.Id,
		DocumentId: s.DocumentId,
		OwnerId:    s.OwnerId,
		Content:    s.Content,
		Provider:   s.Provider,
		Model:      s.Model,
		Fallback:   s.Fallback,
		CreatedAt:  s.CreatedAt,
	}
}

func (m *SummaryMapper) ToModel(s *entity.Summary) *model.Summary {
	if s == nil {
		return nil
	}
	return &model.Summary{
		Id:         s.Id,
		DocumentId: s.DocumentId,
		OwnerId:    s.OwnerId,
		Content:    s.Content,
		Provider:   s.Provider,
		Model:      s.Model,
		Fallback:   s.Fallback,
		CreatedAt:  s.CreatedAt,
	}
}

func (m *SummaryMapper) ToEntities(rows []*model.Summary) []*entity.Summary {
	entities := make([]*entity.Summary, len(rows))
	for i, s := range rows {
		entities[i] = m.ToEntity(s)
	}
	return entities
}

type QuizMapper struct{}

func NewQuizMapper() *QuizMapper {
	return &QuizMapper{}
}

func (m *QuizMapper) ToEntity(q *model.Quiz) *entity.Quiz {
	if q == nil {
		return nil
	}

	var questions []quiz.Question
	if len(q.Questions) > 0 {
		// A row written by this service always holds a valid array;
		// fall back to re-parsing the raw text if it does not.
		if err := json.Unmarshal(q.Questions, &questions); err != nil {
			questions, _ = quiz.Parse(q.QuestionsText)
		}
	}

	return &entity.Quiz{
		Id:            q.Id,
		DocumentId:    q.DocumentId,
		OwnerId:       q.OwnerId,
		QuestionsText: q.QuestionsText,
		Questions:     questions,
		NumQuestions:  q.NumQuestions,
		Difficulty:    q.Difficulty,
		Provider:      q.Provider,
		Model:         q.Model,
		Fallback:      q.Fallback,
		CreatedAt:     q.CreatedAt,
	}
}

func (m *QuizMapper) ToModel(q *entity.Quiz) *model.Quiz {
	if q == nil {
		return nil
	}

	var questions datatypes.JSON
	if data, err := json.Marshal(q.Questions); err == nil {
		questions = datatypes.JSON(data)
	}

	return &model.Quiz{
		Id:            q.Id,
		DocumentId:    q.DocumentId,
		OwnerId:       q.OwnerId,
		QuestionsText: q.QuestionsText,
		Questions:     questions,
		NumQuestions:  q.NumQuestions,
		Difficulty:    q.Difficulty,
		Provider:      q.Provider,
		Model:         q.Model,
		Fallback:      q.Fallback,
		CreatedAt:     q.CreatedAt,
	}
}

func (m *QuizMapper) ToEntities(rows []*model.Quiz) []*entity.Quiz {
	entities := make([]*entity.Quiz, len(rows))
	for i, q := range rows {
		entities[i] = m.ToEntity(q)
	}
	return entities
}

type FlashcardSetMapper struct{}

func NewFlashcardSetMapper() *FlashcardSetMapper {
	return &FlashcardSetMapper{}
}

func (m *FlashcardSetMapper) ToEntity(f *model.FlashcardSet) *entity.FlashcardSet {
	if f == nil {
		return nil
	}

	var cards []flashcard.Card
	if len(f.Cards) > 0 {
		_ = json.Unmarshal(f.Cards, &cards)
	}

	return &entity.FlashcardSet{
		Id:         f.Id,
		DocumentId: f.DocumentId,
		OwnerId:    f.OwnerId,
		Cards:      cards,
		NumCards:   f.NumCards,
		Provider:   f.Provider,
		Model:      f.Model,
		Fallback:   f.Fallback,
		CreatedAt:  f.CreatedAt,
	}
}

func (m *FlashcardSetMapper) ToModel(f *entity.FlashcardSet) *model.FlashcardSet {
	if f == nil {
		return nil
	}

	var cards datatypes.JSON
	if data, err := json.Marshal(f.Cards); err == nil {
		cards = datatypes.JSON(data)
	}

	return &model.FlashcardSet{
		Id:         f.Id,
		DocumentId: f.DocumentId,
		OwnerId:    f.OwnerId,
		Cards:      cards,
		NumCards:   f.NumCards,
		Provider:   f.Provider,
		Model:      f.Model,
		Fallback:   f.Fallback,
		CreatedAt:  f.CreatedAt,
	}
}

func (m *FlashcardSetMapper) ToEntities(rows []*model.FlashcardSet) []*entity.FlashcardSet {
	entities := make([]*entity.FlashcardSet, len(rows))
	for i, f := range rows {
		entities[i] = m.ToEntity(f)
	}
	return entities
}
