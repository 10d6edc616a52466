package models

import "time"

// Question is a catalog entry: a prompt, three distractors and the answer.
type Question struct {
	ID          string     `json:"id" gorm:"primaryKey"`
	Question    string     `json:"question" gorm:"type:text;not null"`
	Distractors StringList `json:"distractors" gorm:"type:text;not null"`
	Answer      string     `json:"answer" gorm:"not null"`
	Difficulty  int        `json:"difficulty" gorm:"not null"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

const (
	DistractorCount = 3
	MinDifficulty   = 1
	MaxDifficulty   = 3
)
