package models

import "time"

// Round is the presentation of one question with a deadline.
// A round is closed once ScoredAt is set; RoundScore and CorrectAnswer are
// written in the same statement.
type Round struct {
	ID                 string     `json:"id" gorm:"primaryKey"`
	MatchID            string     `json:"match_id" gorm:"not null;uniqueIndex:idx_round_match_question;uniqueIndex:idx_round_match_count"`
	QuestionID         string     `json:"question_id" gorm:"not null;uniqueIndex:idx_round_match_question"`
	RoundCount         int        `json:"round_count" gorm:"not null;uniqueIndex:idx_round_match_count"`
	Question           string     `json:"question" gorm:"type:text;not null"`
	Difficulty         int        `json:"difficulty" gorm:"not null"`
	PossibleAnswers    StringList `json:"possible_answers" gorm:"type:text;not null"`
	CorrectAnswerIndex int        `json:"correct_answer_index"`
	RoundEndtime       time.Time  `json:"round_endtime" gorm:"not null"`
	RoundScore         ScoreList  `json:"round_score,omitempty" gorm:"type:text"`
	CorrectAnswer      string     `json:"correct_answer,omitempty"`
	ScoredAt           *time.Time `json:"scored_at,omitempty" gorm:"index"`
	ResponseCount      int        `json:"response_count" gorm:"not null;default:0"`
	CreatedAt          time.Time  `json:"created_at" gorm:"autoCreateTime"`

	Responses []Response `json:"responses" gorm:"foreignKey:RoundID;constraint:OnDelete:CASCADE"`
}

func (Round) TableName() string { return "match_rounds" }

// Closed reports whether the round already carries a score.
func (r *Round) Closed() bool {
	return r.ScoredAt != nil
}

// ResponseBy returns the response of userID, if any.
func (r *Round) ResponseBy(userID string) *Response {
	for i := range r.Responses {
		if r.Responses[i].UserID == userID {
			return &r.Responses[i]
		}
	}
	return nil
}

// Response is one participant's answer to a round. AnswerIndex is 1-based.
type Response struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	MatchID     string    `json:"match_id" gorm:"not null;index"`
	RoundID     string    `json:"round_id" gorm:"not null;uniqueIndex:idx_response_round_user"`
	UserID      string    `json:"user_id" gorm:"not null;uniqueIndex:idx_response_round_user"`
	AnswerIndex int       `json:"answer_index" gorm:"not null"`
	SubmittedAt time.Time `json:"submitted_at" gorm:"not null"`
}

func (Response) TableName() string { return "round_responses" }
