package services

import (
	"errors"
	"math"
	"time"

	"quizbox/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type AttemptService struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewAttemptService(db *gorm.DB, redis *redis.Client) *AttemptService {
	return &AttemptService{db: db, redis: redis}
}

type StartAttemptRequest struct {
	QuizID uint `json:"quiz_id" binding:"required"`
}

type SubmittedAnswer struct {
	QuestionID       uint `json:"question_id" binding:"required"`
	SelectedOptionID uint `json:"selected_option_id" binding:"required"`
}

type SubmitAttemptRequest struct {
	Answers []SubmittedAnswer `json:"answers" binding:"dive"`
}

type StartAttemptResponse struct {
	AttemptID      uint `json:"attempt_id"`
	QuizID         uint `json:"quiz_id"`
	TotalQuestions int  `json:"total_questions"`
}

type SubmitAttemptResponse struct {
	AttemptID      uint       `json:"attempt_id"`
	Score          int        `json:"score"`
	TotalQuestions int        `json:"total_questions"`
	Percentage     int        `json:"percentage"`
	CompletedAt    *time.Time `json:"completed_at"`
}

type QuizInfo struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type OptionView struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

type SelectedOptionView struct {
	ID         uint   `json:"id"`
	Text       string `json:"text"`
	WasCorrect bool   `json:"was_correct"`
}

type AnswerReview struct {
	QuestionID     uint               `json:"question_id"`
	QuestionText   string             `json:"question_text"`
	SelectedOption SelectedOptionView `json:"selected_option"`
	CorrectOption  *OptionView        `json:"correct_option,omitempty"`
}

type AttemptResult struct {
	AttemptID      uint           `json:"attempt_id"`
	Quiz           QuizInfo       `json:"quiz"`
	Score          *int           `json:"score"`
	TotalQuestions *int           `json:"total_questions"`
	Percentage     int            `json:"percentage"`
	CompletedAt    *time.Time     `json:"completed_at"`
	Answers        []AnswerReview `json:"answers"`
}

type AttemptSummary struct {
	AttemptID      uint       `json:"attempt_id"`
	Quiz           QuizInfo   `json:"quiz"`
	Score          *int       `json:"score"`
	TotalQuestions *int       `json:"total_questions"`
	Percentage     *int       `json:"percentage"`
	CompletedAt    *time.Time `json:"completed_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

// answerKey maps each question of a quiz to its correct option. Cached in
// Redis per quiz and invalidated by authoring writes.
type answerKey struct {
	TotalQuestions int           `json:"total_questions"`
	CorrectOptions map[uint]uint `json:"correct_options"`
}

// Start creates a fresh attempt on an active quiz. Nothing prevents the same
// user from holding several in-progress attempts on one quiz.
func (s *AttemptService) Start(userID uint, req *StartAttemptRequest) (*StartAttemptResponse, error) {
	var quiz models.Quiz
	err := s.db.Where("id = ? AND is_active = ?", req.QuizID, true).
		Preload("Questions").
		First(&quiz).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("quiz not found or not active")
		}
		return nil, err
	}

	total := len(quiz.Questions)
	attempt := models.Attempt{
		UserID:         userID,
		QuizID:         quiz.ID,
		TotalQuestions: &total,
	}
	if err := s.db.Create(&attempt).Error; err != nil {
		return nil, err
	}

	return &StartAttemptResponse{
		AttemptID:      attempt.ID,
		QuizID:         quiz.ID,
		TotalQuestions: total,
	}, nil
}

// Submit scores a full batch of answers against the quiz's correct options,
// persists them, and finalizes the attempt. The finalizing update is guarded
// by "completed_at IS NULL" inside one transaction, so two racing submissions
// cannot both complete the same attempt.
func (s *AttemptService) Submit(userID uint, attemptID uint, req *SubmitAttemptRequest) (*SubmitAttemptResponse, error) {
	var attempt models.Attempt
	err := s.db.Where("id = ? AND user_id = ?", attemptID, userID).First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("quiz attempt not found")
		}
		return nil, err
	}

	if attempt.CompletedAt != nil {
		return nil, badRequest("quiz already submitted")
	}

	key, err := s.loadAnswerKey(attempt.QuizID)
	if err != nil {
		return nil, err
	}

	correctCount := 0
	userAnswers := make([]models.UserAnswer, 0, len(req.Answers))
	for _, ans := range req.Answers {
		correctOptionID, hasCorrect := key.CorrectOptions[ans.QuestionID]
		isCorrect := hasCorrect && correctOptionID == ans.SelectedOptionID
		if isCorrect {
			correctCount++
		}

		userAnswers = append(userAnswers, models.UserAnswer{
			AttemptID:        attempt.ID,
			QuestionID:       ans.QuestionID,
			SelectedOptionID: ans.SelectedOptionID,
			IsCorrect:        isCorrect,
		})
	}

	now := time.Now()

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if len(userAnswers) > 0 {
		if err := tx.Create(&userAnswers).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	res := tx.Model(&models.Attempt{}).
		Where("id = ? AND completed_at IS NULL", attempt.ID).
		Updates(map[string]interface{}{
			"score":        correctCount,
			"completed_at": now,
		})
	if res.Error != nil {
		tx.Rollback()
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// A concurrent submission finalized the attempt first.
		tx.Rollback()
		return nil, badRequest("quiz already submitted")
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return &SubmitAttemptResponse{
		AttemptID:      attempt.ID,
		Score:          correctCount,
		TotalQuestions: key.TotalQuestions,
		Percentage:     scorePercentage(correctCount, key.TotalQuestions),
		CompletedAt:    &now,
	}, nil
}

// GetResult assembles the review view for a completed attempt: each stored
// answer joined to its question and selected option, plus the correct option
// looked up independently of the stored correctness snapshot.
func (s *AttemptService) GetResult(userID uint, attemptID uint) (*AttemptResult, error) {
	var attempt models.Attempt
	err := s.db.Where("id = ? AND user_id = ?", attemptID, userID).
		Preload("Quiz").
		Preload("Answers.Question").
		Preload("Answers.SelectedOption").
		First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("quiz attempt not found")
		}
		return nil, err
	}

	if attempt.CompletedAt == nil {
		return nil, badRequest("quiz not yet completed")
	}

	questionIDs := make([]uint, 0, len(attempt.Answers))
	for _, ua := range attempt.Answers {
		questionIDs = append(questionIDs, ua.QuestionID)
	}

	correctByQuestion := make(map[uint]OptionView)
	if len(questionIDs) > 0 {
		var correctOptions []models.AnswerOption
		err := s.db.Where("question_id IN ? AND is_correct = ?", questionIDs, true).
			Order("question_id, order_index").
			Find(&correctOptions).Error
		if err != nil {
			return nil, err
		}
		for _, opt := range correctOptions {
			// First flagged-correct option wins, by stored order.
			if _, ok := correctByQuestion[opt.QuestionID]; !ok {
				correctByQuestion[opt.QuestionID] = OptionView{ID: opt.ID, Text: opt.Text}
			}
		}
	}

	percentage := 0
	if attempt.Score != nil && attempt.TotalQuestions != nil && *attempt.TotalQuestions > 0 {
		percentage = scorePercentage(*attempt.Score, *attempt.TotalQuestions)
	}

	result := AttemptResult{
		AttemptID: attempt.ID,
		Quiz: QuizInfo{
			ID:          attempt.Quiz.ID,
			Title:       attempt.Quiz.Title,
			Description: attempt.Quiz.Description,
		},
		Score:          attempt.Score,
		TotalQuestions: attempt.TotalQuestions,
		Percentage:     percentage,
		CompletedAt:    attempt.CompletedAt,
		Answers:        make([]AnswerReview, 0, len(attempt.Answers)),
	}

	for _, ua := range attempt.Answers {
		review := AnswerReview{
			QuestionID:   ua.QuestionID,
			QuestionText: ua.Question.Text,
			SelectedOption: SelectedOptionView{
				ID:         ua.SelectedOption.ID,
				Text:       ua.SelectedOption.Text,
				WasCorrect: ua.SelectedOption.IsCorrect,
			},
		}
		if correct, ok := correctByQuestion[ua.QuestionID]; ok {
			review.CorrectOption = &OptionView{ID: correct.ID, Text: correct.Text}
		}
		result.Answers = append(result.Answers, review)
	}

	return &result, nil
}

// MyAttempts returns the caller's attempt history, newest first.
func (s *AttemptService) MyAttempts(userID uint) ([]AttemptSummary, error) {
	var attempts []models.Attempt
	err := s.db.Where("user_id = ?", userID).
		Preload("Quiz").
		Order("created_at DESC").
		Find(&attempts).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]AttemptSummary, 0, len(attempts))
	for _, attempt := range attempts {
		summary := AttemptSummary{
			AttemptID:      attempt.ID,
			Quiz:           QuizInfo{ID: attempt.Quiz.ID, Title: attempt.Quiz.Title},
			Score:          attempt.Score,
			TotalQuestions: attempt.TotalQuestions,
			CompletedAt:    attempt.CompletedAt,
			CreatedAt:      attempt.CreatedAt,
		}
		if attempt.Score != nil && attempt.TotalQuestions != nil && *attempt.TotalQuestions > 0 {
			pct := scorePercentage(*attempt.Score, *attempt.TotalQuestions)
			summary.Percentage = &pct
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// loadAnswerKey builds the question -> correct option mapping for a quiz. If a
// question somehow carries more than one flagged-correct option, the first by
// stored option order wins; a question with none never scores.
func (s *AttemptService) loadAnswerKey(quizID uint) (*answerKey, error) {
	cacheKey := answerKeyCacheKey(quizID)

	var cached answerKey
	if cacheGet(s.redis, cacheKey, &cached) {
		return &cached, nil
	}

	var questions []models.Question
	err := s.db.Where("quiz_id = ?", quizID).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("answer_options.order_index")
		}).
		Find(&questions).Error
	if err != nil {
		return nil, err
	}

	key := answerKey{
		TotalQuestions: len(questions),
		CorrectOptions: make(map[uint]uint, len(questions)),
	}
	for _, question := range questions {
		for _, option := range question.Options {
			if option.IsCorrect {
				key.CorrectOptions[question.ID] = option.ID
				break
			}
		}
	}

	cacheSet(s.redis, cacheKey, &key)
	return &key, nil
}

func scorePercentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}
