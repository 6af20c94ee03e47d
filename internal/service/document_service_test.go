package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notesquest-be/internal/apperror"
	"notesquest-be/internal/entity"
	"notesquest-be/internal/pkg/logger"
	"notesquest-be/internal/repository/contract"
	"notesquest-be/internal/repository/specification"
	"notesquest-be/internal/repository/unitofwork"
	"notesquest-be/pkg/extractor"
)

type fakeDocumentRepo struct {
	docs    []*entity.Document
	one     *entity.Document
	updates int
}

func (f *fakeDocumentRepo) Create(ctx context.Context, document *entity.Document) error { return nil }
func (f *fakeDocumentRepo) Update(ctx context.Context, document *entity.Document) error {
	f.updates++
	return nil
}
func (f *fakeDocumentRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }
func (f *fakeDocumentRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error) {
	return f.one, nil
}
func (f *fakeDocumentRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	return f.docs, nil
}
func (f *fakeDocumentRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(f.docs)), nil
}

// fakeSummaryRepo counts invocations so list views can be checked for
// per-document query fan-out.
type fakeSummaryRepo struct {
	counts       map[uuid.UUID]int64
	perDocCalls  int
	groupedCalls int
}

func (f *fakeSummaryRepo) Create(ctx context.Context, summary *entity.Summary) error  { return nil }
func (f *fakeSummaryRepo) DeleteAllByDocumentId(ctx context.Context, id uuid.UUID) error { return nil }
func (f *fakeSummaryRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Summary, error) {
	return nil, nil
}
func (f *fakeSummaryRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Summary, error) {
	return nil, nil
}
func (f *fakeSummaryRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	f.perDocCalls++
	return 0, nil
}
func (f *fakeSummaryRepo) CountByDocumentIds(ctx context.Context, documentIds []uuid.UUID) (map[uuid.UUID]int64, error) {
	f.groupedCalls++
	return f.counts, nil
}

type fakeQuizRepo struct {
	counts       map[uuid.UUID]int64
	perDocCalls  int
	groupedCalls int
}

func (f *fakeQuizRepo) Create(ctx context.Context, quiz *entity.Quiz) error              { return nil }
func (f *fakeQuizRepo) DeleteAllByDocumentId(ctx context.Context, id uuid.UUID) error    { return nil }
func (f *fakeQuizRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Quiz, error) {
	return nil, nil
}
func (f *fakeQuizRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Quiz, error) {
	return nil, nil
}
func (f *fakeQuizRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	f.perDocCalls++
	return 0, nil
}
func (f *fakeQuizRepo) CountByDocumentIds(ctx context.Context, documentIds []uuid.UUID) (map[uuid.UUID]int64, error) {
	f.groupedCalls++
	return f.counts, nil
}

type fakeFlashcardSetRepo struct {
	counts       map[uuid.UUID]int64
	perDocCalls  int
	groupedCalls int
}

func (f *fakeFlashcardSetRepo) Create(ctx context.Context, set *entity.FlashcardSet) error { return nil }
func (f *fakeFlashcardSetRepo) DeleteAllByDocumentId(ctx context.Context, id uuid.UUID) error {
	return nil
}
func (f *fakeFlashcardSetRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.FlashcardSet, error) {
	return nil, nil
}
func (f *fakeFlashcardSetRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.FlashcardSet, error) {
	return nil, nil
}
func (f *fakeFlashcardSetRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	f.perDocCalls++
	return 0, nil
}
func (f *fakeFlashcardSetRepo) CountByDocumentIds(ctx context.Context, documentIds []uuid.UUID) (map[uuid.UUID]int64, error) {
	f.groupedCalls++
	return f.counts, nil
}

type fakeUnitOfWork struct {
	documents *fakeDocumentRepo
	summaries *fakeSummaryRepo
	quizzes   *fakeQuizRepo
	cards     *fakeFlashcardSetRepo
}

func (f *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (f *fakeUnitOfWork) Commit() error                   { return nil }
func (f *fakeUnitOfWork) Rollback() error                 { return nil }

func (f *fakeUnitOfWork) DocumentRepository() contract.DocumentRepository         { return f.documents }
func (f *fakeUnitOfWork) SummaryRepository() contract.SummaryRepository           { return f.summaries }
func (f *fakeUnitOfWork) QuizRepository() contract.QuizRepository                 { return f.quizzes }
func (f *fakeUnitOfWork) FlashcardSetRepository() contract.FlashcardSetRepository { return f.cards }
func (f *fakeUnitOfWork) ChatSessionRepository() contract.ChatSessionRepository   { return nil }
func (f *fakeUnitOfWork) ChatMessageRepository() contract.ChatMessageRepository   { return nil }

type fakeUowFactory struct {
	uow *fakeUnitOfWork
}

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }

func testLogger(t *testing.T) logger.ILogger {
	t.Helper()
	return logger.NewZapLogger(filepath.Join(t.TempDir(), "test.log"), false)
}

func historyDoc(title string) *entity.Document {
	return &entity.Document{
		Id:        uuid.New(),
		Title:     title,
		Status:    "processed",
		CreatedAt: time.Now(),
	}
}

type fakeObjectStorage struct {
	objects   map[string][]byte
	downloads int
}

func (f *fakeObjectStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	return nil
}

func (f *fakeObjectStorage) Download(ctx context.Context, key string) ([]byte, error) {
	f.downloads++
	return f.objects[key], nil
}

func (f *fakeObjectStorage) Delete(ctx context.Context, key string) error { return nil }

func TestHistoryFlagsFromGroupedCounts(t *testing.T) {
	summarized := historyDoc("Biology Notes")
	quizzed := historyDoc("Chemistry Notes")
	untouched := historyDoc("Physics Notes")

	uow := &fakeUnitOfWork{
		documents: &fakeDocumentRepo{docs: []*entity.Document{summarized, quizzed, untouched}},
		summaries: &fakeSummaryRepo{counts: map[uuid.UUID]int64{summarized.Id: 2}},
		quizzes:   &fakeQuizRepo{counts: map[uuid.UUID]int64{quizzed.Id: 1}},
		cards:     &fakeFlashcardSetRepo{counts: map[uuid.UUID]int64{}},
	}

	svc := NewDocumentService(&fakeUowFactory{uow: uow}, extractor.New(), nil, nil, testLogger(t))

	items, err := svc.History(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.True(t, items[0].HasSummary)
	assert.False(t, items[0].HasQuiz)
	assert.True(t, items[1].HasQuiz)
	assert.False(t, items[1].HasSummary)
	assert.False(t, items[2].HasSummary)
	assert.False(t, items[2].HasQuiz)
	assert.False(t, items[2].HasFlashcards)

	assert.Equal(t, 1, uow.summaries.groupedCalls, "one grouped count per result table")
	assert.Equal(t, 1, uow.quizzes.groupedCalls)
	assert.Equal(t, 1, uow.cards.groupedCalls)
	assert.Zero(t, uow.summaries.perDocCalls, "no per-document count queries")
	assert.Zero(t, uow.quizzes.perDocCalls)
	assert.Zero(t, uow.cards.perDocCalls)
}

func TestReprocessFromStoredObject(t *testing.T) {
	doc := &entity.Document{
		Id:         uuid.New(),
		Title:      "Biology Notes",
		FileName:   "notes.txt",
		FileType:   "txt",
		Status:     "error",
		StorageKey: "docs/notes.txt",
		CreatedAt:  time.Now(),
	}
	uow := &fakeUnitOfWork{
		documents: &fakeDocumentRepo{one: doc},
		summaries: &fakeSummaryRepo{},
		quizzes:   &fakeQuizRepo{},
		cards:     &fakeFlashcardSetRepo{},
	}
	store := &fakeObjectStorage{objects: map[string][]byte{
		"docs/notes.txt": []byte("Photosynthesis converts light into chemical energy."),
	}}

	svc := NewDocumentService(&fakeUowFactory{uow: uow}, extractor.New(), store, nil, testLogger(t))

	res, err := svc.Reprocess(context.Background(), nil, doc.Id)
	require.NoError(t, err)

	assert.Equal(t, 1, store.downloads)
	assert.Equal(t, "processed", res.Status)
	assert.Equal(t, "direct", res.ExtractionMethod)
	assert.Equal(t, "Photosynthesis converts light into chemical energy.", doc.Content)
	assert.Empty(t, doc.ErrorMessage)
	assert.GreaterOrEqual(t, uow.documents.updates, 2, "processing and processed states are both recorded")
}

func TestReprocessWithoutStoredObject(t *testing.T) {
	doc := &entity.Document{
		Id:        uuid.New(),
		Title:     "Pasted Notes",
		FileType:  "txt",
		Status:    "processed",
		CreatedAt: time.Now(),
	}
	uow := &fakeUnitOfWork{
		documents: &fakeDocumentRepo{one: doc},
		summaries: &fakeSummaryRepo{},
		quizzes:   &fakeQuizRepo{},
		cards:     &fakeFlashcardSetRepo{},
	}

	svc := NewDocumentService(&fakeUowFactory{uow: uow}, extractor.New(), &fakeObjectStorage{}, nil, testLogger(t))

	_, err := svc.Reprocess(context.Background(), nil, doc.Id)

	var validation *apperror.ValidationError
	require.ErrorAs(t, err, &validation)
}
