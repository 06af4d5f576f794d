package services

import (
	"fmt"
	"strings"
	"testing"

	"quizbox/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a per-test in-memory SQLite database. cache=shared keeps the
// database visible across the pooled connections gorm opens.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Quiz{},
		&models.Question{},
		&models.AnswerOption{},
		&models.Attempt{},
		&models.UserAnswer{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email, role string) *models.User {
	t.Helper()

	user := models.User{
		Email:    email,
		Password: "not-a-real-hash",
		Name:     "Test User",
		Role:     role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return &user
}

// quizFixture is a quiz with three questions of three options each; the
// correct option is always the second one (order index 1).
type quizFixture struct {
	Quiz      models.Quiz
	Questions []models.Question
	// CorrectOption and WrongOption are indexed by question position.
	CorrectOption []models.AnswerOption
	WrongOption   []models.AnswerOption
}

func createQuizFixture(t *testing.T, db *gorm.DB, ownerID uint, active bool) *quizFixture {
	t.Helper()

	fixture := quizFixture{
		Quiz: models.Quiz{
			Title:       "Fixture Quiz",
			Description: "three questions, one correct option each",
			IsActive:    active,
			CreatedBy:   ownerID,
		},
	}
	if err := db.Create(&fixture.Quiz).Error; err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	if !active {
		// GORM substitutes the column default (true) for a zero-valued bool
		// on Create, so an inactive quiz must be downgraded with an Update.
		if err := db.Model(&fixture.Quiz).Update("is_active", false).Error; err != nil {
			t.Fatalf("deactivate quiz: %v", err)
		}
	}

	for i := 0; i < 3; i++ {
		question := models.Question{
			QuizID:     fixture.Quiz.ID,
			Text:       fmt.Sprintf("Question %d", i+1),
			OrderIndex: i,
		}
		if err := db.Create(&question).Error; err != nil {
			t.Fatalf("create question: %v", err)
		}
		fixture.Questions = append(fixture.Questions, question)

		for j := 0; j < 3; j++ {
			option := models.AnswerOption{
				QuestionID: question.ID,
				Text:       fmt.Sprintf("Option %d.%d", i+1, j+1),
				IsCorrect:  j == 1,
				OrderIndex: j,
			}
			if err := db.Create(&option).Error; err != nil {
				t.Fatalf("create option: %v", err)
			}
			if j == 1 {
				fixture.CorrectOption = append(fixture.CorrectOption, option)
			} else if j == 0 {
				fixture.WrongOption = append(fixture.WrongOption, option)
			}
		}
	}

	return &fixture
}
