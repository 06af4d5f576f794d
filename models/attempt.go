package models

import (
	"time"
)

// Attempt is one user's pass through a quiz. It is in progress while
// CompletedAt is nil and completed exactly once submission finalizes it.
type Attempt struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	UserID         uint       `json:"user_id" gorm:"not null;index"`
	QuizID         uint       `json:"quiz_id" gorm:"not null;index"`
	Score          *int       `json:"score"`
	TotalQuestions *int       `json:"total_questions"`
	CompletedAt    *time.Time `json:"completed_at"`
	CreatedAt      time.Time  `json:"created_at"`

	// Relationships
	User    User         `json:"user,omitempty"`
	Quiz    Quiz         `json:"quiz,omitempty"`
	Answers []UserAnswer `json:"answers,omitempty" gorm:"foreignKey:AttemptID;constraint:OnDelete:CASCADE"`
}
