package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// UserScore is one {user_id, score} entry.
type UserScore struct {
	UserID string `json:"user_id"`
	Score  int    `json:"score"`
}

// ScoreList is stored as a JSON array. A nil list is stored as NULL.
type ScoreList []UserScore

func (l ScoreList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	b, err := json.Marshal([]UserScore(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *ScoreList) Scan(src any) error {
	if src == nil {
		*l = nil
		return nil
	}
	b, err := columnBytes(src)
	if err != nil {
		return fmt.Errorf("scan score list: %w", err)
	}
	var out []UserScore
	if err := json.Unmarshal(b, &out); err != nil {
		return fmt.Errorf("scan score list: %w", err)
	}
	*l = out
	return nil
}

// Of returns the score of userID and whether it is present.
func (l ScoreList) Of(userID string) (int, bool) {
	for _, s := range l {
		if s.UserID == userID {
			return s.Score, true
		}
	}
	return 0, false
}

// StringList is an ordered list of strings stored as a JSON array.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	if src == nil {
		*l = StringList{}
		return nil
	}
	b, err := columnBytes(src)
	if err != nil {
		return fmt.Errorf("scan string list: %w", err)
	}
	var out []string
	if err := json.Unmarshal(b, &out); err != nil {
		return fmt.Errorf("scan string list: %w", err)
	}
	*l = out
	return nil
}

func columnBytes(src any) ([]byte, error) {
	switch v := src.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported column type %T", src)
	}
}
