package models

// UserAnswer stores one submitted (question, selected option) pair.
// IsCorrect is a snapshot computed at submission time, not recomputed later.
type UserAnswer struct {
	ID               uint `json:"id" gorm:"primaryKey"`
	AttemptID        uint `json:"attempt_id" gorm:"not null;index"`
	QuestionID       uint `json:"question_id" gorm:"not null"`
	SelectedOptionID uint `json:"selected_option_id" gorm:"not null"`
	IsCorrect        bool `json:"is_correct" gorm:"not null"`

	// Relationships
	Attempt        Attempt      `json:"attempt,omitempty"`
	Question       Question     `json:"question,omitempty"`
	SelectedOption AnswerOption `json:"selected_option,omitempty" gorm:"foreignKey:SelectedOptionID"`
}
