package postgres

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/bellringer/quiz-api/internal/domain/entity"
	"github.com/bellringer/quiz-api/pkg/database"
)

// Интеграционные тесты репозиториев идут против настоящего PostgreSQL.
// Схема накатывается теми же миграциями, что и в проде.
const (
	testDSNEnv         = "TEST_POSTGRES_DSN"
	testMigrationsPath = "../../../migrations"
)

var errMissingDSN = errors.New("missing " + testDSNEnv)

var (
	testDBOnce sync.Once
	sharedDB   *gorm.DB
	testDBErr  error
)

// testDB возвращает общее подключение или пропускает тест без TEST_POSTGRES_DSN
func testDB(tb testing.TB) *gorm.DB {
	tb.Helper()

	testDBOnce.Do(func() {
		dsn := os.Getenv(testDSNEnv)
		if dsn == "" {
			testDBErr = errMissingDSN
			return
		}

		db, err := gorm.Open(gormPostgres.Open(dsn), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err != nil {
			testDBErr = err
			return
		}
		if err := database.MigrateDB(db, testMigrationsPath, zap.NewNop()); err != nil {
			testDBErr = err
			return
		}
		sharedDB = db
	})

	if errors.Is(testDBErr, errMissingDSN) {
		tb.Skip("set " + testDSNEnv + " to run repo integration tests")
	}
	if testDBErr != nil {
		tb.Fatalf("failed to init test db: %v", testDBErr)
	}
	return sharedDB
}

// testTx открывает транзакцию, которая откатывается после теста.
// Репозитории подхватывают её из возвращённого контекста.
func testTx(tb testing.TB, db *gorm.DB) context.Context {
	tb.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return context.WithValue(context.Background(), txKey{}, tx)
}

// ==================== Фикстуры ====================

func seedCategory(tb testing.TB, ctx context.Context, db *gorm.DB, parentID *uint) *entity.Category {
	tb.Helper()
	suffix := uuid.NewString()
	category := &entity.Category{
		Name:     "Категория " + suffix,
		Slug:     "test-" + suffix,
		ParentID: parentID,
	}
	if err := NewCategoryRepo(db).Create(ctx, category); err != nil {
		tb.Fatalf("seed category: %v", err)
	}
	return category
}

// seedQuestion создаёт вопрос; для типов с вариантами добавляет верный и неверный вариант
func seedQuestion(tb testing.TB, ctx context.Context, db *gorm.DB, categoryID uint, difficulty entity.Difficulty, qType entity.QuestionType) *entity.Question {
	tb.Helper()
	question := &entity.Question{
		Type:       qType,
		Difficulty: difficulty,
		Text:       "Вопрос " + uuid.NewString(),
		CategoryID: categoryID,
	}
	if qType.HasChoices() {
		question.Choices = []entity.Choice{
			{Text: "верно", IsCorrect: true},
			{Text: "неверно"},
		}
	}
	if err := NewQuestionRepo(db).Create(ctx, question); err != nil {
		tb.Fatalf("seed question: %v", err)
	}
	return question
}

func seedQuiz(tb testing.TB, ctx context.Context, db *gorm.DB, userID uuid.UUID, categoryID uint, questionIDs ...uint) *entity.Quiz {
	tb.Helper()
	repo := NewQuizRepo(db)
	quiz := &entity.Quiz{UserID: userID, CategoryID: categoryID}
	if err := repo.Create(ctx, quiz); err != nil {
		tb.Fatalf("seed quiz: %v", err)
	}
	if err := repo.AttachQuestions(ctx, quiz.ID, questionIDs); err != nil {
		tb.Fatalf("attach questions: %v", err)
	}
	return quiz
}

func seedAttempt(tb testing.TB, ctx context.Context, db *gorm.DB, quizID uint) *entity.Attempt {
	tb.Helper()
	attempt := &entity.Attempt{QuizID: quizID}
	if err := NewAttemptRepo(db).Create(ctx, attempt); err != nil {
		tb.Fatalf("seed attempt: %v", err)
	}
	return attempt
}

func questionIDs(questions []entity.Question) []uint {
	ids := make([]uint, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.ID)
	}
	return ids
}
