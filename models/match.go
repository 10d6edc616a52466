package models

import (
	"slices"
	"time"
)

// MatchStatus is the lifecycle state of a match.
type MatchStatus string

const (
	MatchWaitingStart MatchStatus = "waiting_start"
	MatchPlaying      MatchStatus = "playing"
	MatchEnded        MatchStatus = "ended"
)

func (s MatchStatus) Valid() bool {
	switch s {
	case MatchWaitingStart, MatchPlaying, MatchEnded:
		return true
	}
	return false
}

const (
	DefaultRoundTimeSec = 60
	MaxRoundTimeSec     = 3600
)

// Match is one trivia game: a fixed invitee list, a fixed ordered question
// list and the rounds played so far.
type Match struct {
	ID           string      `json:"id" gorm:"primaryKey"`
	Name         string      `json:"name" gorm:"not null"`
	Slug         string      `json:"slug" gorm:"index"`
	Description  string      `json:"description" gorm:"type:text"`
	Status       MatchStatus `json:"status" gorm:"type:varchar(16);index;not null;default:'waiting_start'"`
	InvitedIDs   StringList  `json:"invited_ids" gorm:"type:text;not null"`
	JoinedIDs    StringList  `json:"joined_ids" gorm:"type:text;not null"`
	QuestionIDs  StringList  `json:"question_ids" gorm:"type:text;not null"`
	RoundTimeSec int         `json:"round_time_sec" gorm:"not null;default:60"`
	TotalRounds  int         `json:"total_rounds" gorm:"not null"`
	FinalScore   ScoreList   `json:"final_score,omitempty" gorm:"type:text"`
	StartedAt    *time.Time  `json:"started_at,omitempty"`
	EndedAt      *time.Time  `json:"ended_at,omitempty"`
	CreatedAt    time.Time   `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time   `json:"updated_at" gorm:"autoUpdateTime"`

	// Rounds ordered by round_count. Loaded with the aggregate.
	Rounds []Round `json:"rounds,omitempty" gorm:"foreignKey:MatchID;constraint:OnDelete:CASCADE"`
}

// IsInvited reports whether userID is one of the match invitees.
func (m *Match) IsInvited(userID string) bool {
	return slices.Contains(m.InvitedIDs, userID)
}

// HasJoined reports whether userID confirmed participation.
func (m *Match) HasJoined(userID string) bool {
	return slices.Contains(m.JoinedIDs, userID)
}

// AllJoined reports whether joined_ids equals invited_ids as sets.
func (m *Match) AllJoined() bool {
	if len(m.InvitedIDs) == 0 {
		return false
	}
	joined := make(map[string]struct{}, len(m.JoinedIDs))
	for _, id := range m.JoinedIDs {
		joined[id] = struct{}{}
	}
	invited := make(map[string]struct{}, len(m.InvitedIDs))
	for _, id := range m.InvitedIDs {
		if _, ok := joined[id]; !ok {
			return false
		}
		invited[id] = struct{}{}
	}
	return len(invited) == len(joined)
}

// ActiveRound returns the round that has not been scored yet, if any.
func (m *Match) ActiveRound() *Round {
	for i := len(m.Rounds) - 1; i >= 0; i-- {
		if !m.Rounds[i].Closed() {
			return &m.Rounds[i]
		}
	}
	return nil
}

// RoundByQuestion returns the round that presented questionID.
func (m *Match) RoundByQuestion(questionID string) *Round {
	for i := range m.Rounds {
		if m.Rounds[i].QuestionID == questionID {
			return &m.Rounds[i]
		}
	}
	return nil
}

// NextQuestionID walks question_ids in order and returns the first id that
// has no round yet.
func (m *Match) NextQuestionID() (string, bool) {
	played := make(map[string]struct{}, len(m.Rounds))
	for _, r := range m.Rounds {
		played[r.QuestionID] = struct{}{}
	}
	for _, id := range m.QuestionIDs {
		if _, ok := played[id]; !ok {
			return id, true
		}
	}
	return "", false
}
