package models

import (
	"time"
)

type Question struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	QuizID     uint      `json:"quiz_id" gorm:"not null;index"`
	Text       string    `json:"text" gorm:"not null"`
	OrderIndex int       `json:"order_index" gorm:"not null;default:0"`
	CreatedAt  time.Time `json:"created_at"`

	// Relationships
	Quiz    Quiz           `json:"quiz,omitempty"`
	Options []AnswerOption `json:"options,omitempty" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
}
