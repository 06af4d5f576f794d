package seed

import (
	"errors"
	"log"

	"quizbox/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Run creates the default admin and test accounts plus a sample quiz.
// Existing accounts are left alone, so running it twice is safe.
func Run(db *gorm.DB) error {
	admin, err := ensureUser(db, "admin@quizbox.dev", "admin123", "Admin User", models.RoleAdmin)
	if err != nil {
		return err
	}

	if _, err := ensureUser(db, "user@quizbox.dev", "user123", "Test User", models.RoleUser); err != nil {
		return err
	}

	var count int64
	if err := db.Model(&models.Quiz{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Quizzes already present, skipping sample quiz")
		return nil
	}

	return createSampleQuiz(db, admin.ID)
}

func ensureUser(db *gorm.DB, email, password, name, role string) (*models.User, error) {
	var user models.User
	err := db.Where("email = ?", email).First(&user).Error
	if err == nil {
		log.Printf("User %s already exists", email)
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return nil, err
	}

	user = models.User{
		Email:    email,
		Password: string(hashed),
		Name:     name,
		Role:     role,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}

	log.Printf("Created user %s (password: %s)", email, password)
	return &user, nil
}

func createSampleQuiz(db *gorm.DB, adminID uint) error {
	quiz := models.Quiz{
		Title:       "General Knowledge Warm-up",
		Description: "A short quiz to try the platform.",
		IsActive:    true,
		CreatedBy:   adminID,
	}
	if err := db.Create(&quiz).Error; err != nil {
		return err
	}

	questions := []struct {
		text    string
		options []string
		correct int
	}{
		{"What is the capital of France?", []string{"Berlin", "Paris", "Madrid", "Rome"}, 1},
		{"How many continents are there?", []string{"Five", "Six", "Seven", "Eight"}, 2},
		{"Which planet is known as the Red Planet?", []string{"Venus", "Mars", "Jupiter"}, 1},
	}

	for i, q := range questions {
		question := models.Question{
			QuizID:     quiz.ID,
			Text:       q.text,
			OrderIndex: i,
		}
		if err := db.Create(&question).Error; err != nil {
			return err
		}

		for j, text := range q.options {
			option := models.AnswerOption{
				QuestionID: question.ID,
				Text:       text,
				IsCorrect:  j == q.correct,
				OrderIndex: j,
			}
			if err := db.Create(&option).Error; err != nil {
				return err
			}
		}
	}

	log.Printf("Created sample quiz %q with %d questions", quiz.Title, len(questions))
	return nil
}
