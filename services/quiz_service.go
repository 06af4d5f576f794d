package services

import (
	"errors"
	"time"

	"quizbox/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type QuizService struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewQuizService(db *gorm.DB, redis *redis.Client) *QuizService {
	return &QuizService{db: db, redis: redis}
}

type CreateQuizRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

type UpdateQuizRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

type CreateQuestionRequest struct {
	Text       string                `json:"text" binding:"required"`
	OrderIndex int                   `json:"order_index"`
	Options    []CreateOptionRequest `json:"options" binding:"required,min=2,dive"`
}

type CreateOptionRequest struct {
	Text      string `json:"text" binding:"required"`
	IsCorrect bool   `json:"is_correct"`
}

type CreatorInfo struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type QuizSummary struct {
	ID          uint        `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	IsActive    bool        `json:"is_active"`
	CreatedAt   time.Time   `json:"created_at"`
	Creator     CreatorInfo `json:"created_by_user"`
}

type AdminQuizSummary struct {
	QuizSummary
	QuestionCount int `json:"question_count"`
}

type PublicQuiz struct {
	ID          uint             `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	CreatedAt   time.Time        `json:"created_at"`
	Questions   []PublicQuestion `json:"questions"`
}

type PublicQuestion struct {
	ID         uint           `json:"id"`
	Text       string         `json:"text"`
	OrderIndex int            `json:"order_index"`
	Options    []PublicOption `json:"options"`
}

type PublicOption struct {
	ID         uint   `json:"id"`
	Text       string `json:"text"`
	OrderIndex int    `json:"order_index"`
	// IsCorrect is intentionally omitted for quiz takers
}

// ListQuizzes returns the active quizzes, newest first, for the public catalog.
func (s *QuizService) ListQuizzes() ([]QuizSummary, error) {
	var cached []QuizSummary
	if cacheGet(s.redis, quizListCacheKey, &cached) {
		return cached, nil
	}

	var quizzes []models.Quiz
	err := s.db.Where("is_active = ?", true).
		Preload("Creator").
		Order("created_at DESC").
		Find(&quizzes).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]QuizSummary, 0, len(quizzes))
	for _, quiz := range quizzes {
		summaries = append(summaries, quizSummary(&quiz))
	}

	cacheSet(s.redis, quizListCacheKey, summaries)
	return summaries, nil
}

// GetQuiz returns an active quiz with its ordered questions and options,
// correctness flags stripped.
func (s *QuizService) GetQuiz(quizID uint) (*PublicQuiz, error) {
	quiz, err := s.loadQuizWithQuestions(quizID, true)
	if err != nil {
		return nil, err
	}

	public := PublicQuiz{
		ID:          quiz.ID,
		Title:       quiz.Title,
		Description: quiz.Description,
		CreatedAt:   quiz.CreatedAt,
		Questions:   make([]PublicQuestion, 0, len(quiz.Questions)),
	}
	for _, question := range quiz.Questions {
		pq := PublicQuestion{
			ID:         question.ID,
			Text:       question.Text,
			OrderIndex: question.OrderIndex,
			Options:    make([]PublicOption, 0, len(question.Options)),
		}
		for _, option := range question.Options {
			pq.Options = append(pq.Options, PublicOption{
				ID:         option.ID,
				Text:       option.Text,
				OrderIndex: option.OrderIndex,
			})
		}
		public.Questions = append(public.Questions, pq)
	}

	return &public, nil
}

func (s *QuizService) CreateQuiz(userID uint, req *CreateQuizRequest) (*models.Quiz, error) {
	quiz := models.Quiz{
		Title:       req.Title,
		Description: req.Description,
		IsActive:    true,
		CreatedBy:   userID,
	}

	if err := s.db.Create(&quiz).Error; err != nil {
		return nil, err
	}

	cacheInvalidateQuiz(s.redis, quiz.ID)
	return &quiz, nil
}

func (s *QuizService) UpdateQuiz(quizID uint, req *UpdateQuizRequest) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := s.db.First(&quiz, quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("quiz not found")
		}
		return nil, err
	}

	if req.Title != nil {
		quiz.Title = *req.Title
	}
	if req.Description != nil {
		quiz.Description = *req.Description
	}
	if req.IsActive != nil {
		quiz.IsActive = *req.IsActive
	}

	if err := s.db.Save(&quiz).Error; err != nil {
		return nil, err
	}

	cacheInvalidateQuiz(s.redis, quiz.ID)
	return &quiz, nil
}

// DeleteQuiz hard-deletes a quiz and cascades to its questions and options.
// Attempts keep their quiz reference; they are the user's history, not quiz
// content.
func (s *QuizService) DeleteQuiz(quizID uint) error {
	var quiz models.Quiz
	if err := s.db.First(&quiz, quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("quiz not found")
		}
		return err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	questionIDs := tx.Model(&models.Question{}).Select("id").Where("quiz_id = ?", quizID)
	if err := tx.Where("question_id IN (?)", questionIDs).Delete(&models.AnswerOption{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Where("quiz_id = ?", quizID).Delete(&models.Question{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Delete(&models.Quiz{}, quizID).Error; err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return err
	}

	cacheInvalidateQuiz(s.redis, quizID)
	return nil
}

func (s *QuizService) CreateQuestion(quizID uint, req *CreateQuestionRequest) (*models.Question, error) {
	var quiz models.Quiz
	if err := s.db.First(&quiz, quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("quiz not found")
		}
		return nil, err
	}

	if len(req.Options) < 2 {
		return nil, badRequest("at least 2 options required")
	}

	correctCount := 0
	for _, opt := range req.Options {
		if opt.IsCorrect {
			correctCount++
		}
	}
	if correctCount != 1 {
		return nil, badRequest("exactly one option must be marked as correct")
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	question := models.Question{
		QuizID:     quizID,
		Text:       req.Text,
		OrderIndex: req.OrderIndex,
	}
	if err := tx.Create(&question).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	for i, opt := range req.Options {
		option := models.AnswerOption{
			QuestionID: question.ID,
			Text:       opt.Text,
			IsCorrect:  opt.IsCorrect,
			OrderIndex: i,
		}
		if err := tx.Create(&option).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	cacheInvalidateQuiz(s.redis, quizID)

	var created models.Question
	err := s.db.Preload("Options", func(db *gorm.DB) *gorm.DB {
		return db.Order("answer_options.order_index")
	}).First(&created, question.ID).Error
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *QuizService) DeleteQuestion(questionID uint) error {
	var question models.Question
	if err := s.db.First(&question, questionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("question not found")
		}
		return err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Where("question_id = ?", questionID).Delete(&models.AnswerOption{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Delete(&models.Question{}, questionID).Error; err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return err
	}

	cacheInvalidateQuiz(s.redis, question.QuizID)
	return nil
}

// AdminGetQuiz returns the full quiz, correctness flags included.
func (s *QuizService) AdminGetQuiz(quizID uint) (*models.Quiz, error) {
	quiz, err := s.loadQuizWithQuestions(quizID, false)
	if err != nil {
		return nil, err
	}
	return quiz, nil
}

// AdminListQuizzes returns every quiz, inactive included, with a per-quiz
// question count.
func (s *QuizService) AdminListQuizzes() ([]AdminQuizSummary, error) {
	var quizzes []models.Quiz
	err := s.db.Preload("Creator").
		Preload("Questions").
		Order("created_at DESC").
		Find(&quizzes).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]AdminQuizSummary, 0, len(quizzes))
	for _, quiz := range quizzes {
		summaries = append(summaries, AdminQuizSummary{
			QuizSummary:   quizSummary(&quiz),
			QuestionCount: len(quiz.Questions),
		})
	}
	return summaries, nil
}

func (s *QuizService) loadQuizWithQuestions(quizID uint, activeOnly bool) (*models.Quiz, error) {
	query := s.db.Preload("Creator").
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.order_index")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("answer_options.order_index")
		})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var quiz models.Quiz
	if err := query.First(&quiz, quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("quiz not found")
		}
		return nil, err
	}
	return &quiz, nil
}

func quizSummary(quiz *models.Quiz) QuizSummary {
	return QuizSummary{
		ID:          quiz.ID,
		Title:       quiz.Title,
		Description: quiz.Description,
		IsActive:    quiz.IsActive,
		CreatedAt:   quiz.CreatedAt,
		Creator: CreatorInfo{
			ID:   quiz.Creator.ID,
			Name: quiz.Creator.Name,
		},
	}
}
