package models

import (
	"testing"
	"time"
)

func TestAllJoined(t *testing.T) {
	tests := []struct {
		name    string
		invited StringList
		joined  StringList
		want    bool
	}{
		{name: "same order", invited: StringList{"a", "b"}, joined: StringList{"a", "b"}, want: true},
		{name: "any order", invited: StringList{"a", "b"}, joined: StringList{"b", "a"}, want: true},
		{name: "missing", invited: StringList{"a", "b"}, joined: StringList{"a"}, want: false},
		{name: "none", invited: StringList{"a"}, joined: StringList{}, want: false},
		{name: "no invitees", invited: StringList{}, joined: StringList{}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Match{InvitedIDs: tt.invited, JoinedIDs: tt.joined}
			if got := m.AllJoined(); got != tt.want {
				t.Fatalf("AllJoined() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextQuestionIDKeepsOrder(t *testing.T) {
	m := Match{QuestionIDs: StringList{"q3", "q1", "q2"}}
	for _, want := range []string{"q3", "q1", "q2"} {
		got, ok := m.NextQuestionID()
		if !ok || got != want {
			t.Fatalf("NextQuestionID() = %q, %v, want %q, true", got, ok, want)
		}
		now := time.Now()
		m.Rounds = append(m.Rounds, Round{QuestionID: got, ScoredAt: &now})
	}
	if got, ok := m.NextQuestionID(); ok {
		t.Fatalf("NextQuestionID() = %q, true, want none left", got)
	}
}

func TestActiveRound(t *testing.T) {
	now := time.Now()
	m := Match{Rounds: []Round{{ID: "r1", ScoredAt: &now}, {ID: "r2"}}}
	active := m.ActiveRound()
	if active == nil || active.ID != "r2" {
		t.Fatalf("ActiveRound() = %+v, want r2", active)
	}
	m.Rounds[1].ScoredAt = &now
	if active := m.ActiveRound(); active != nil {
		t.Fatalf("ActiveRound() = %+v, want nil", active)
	}
}

func TestStringListScan(t *testing.T) {
	var l StringList
	if err := l.Scan([]byte(`["a","b"]`)); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(l) != 2 || l[0] != "a" || l[1] != "b" {
		t.Fatalf("Scan = %v, want [a b]", l)
	}
	if err := l.Scan(nil); err != nil || len(l) != 0 {
		t.Fatalf("Scan(nil) = %v, %v, want empty list", l, err)
	}
}

func TestScoreListNullRoundTrip(t *testing.T) {
	var l ScoreList
	v, err := l.Value()
	if err != nil || v != nil {
		t.Fatalf("nil Value() = %v, %v, want nil, nil", v, err)
	}
	if err := l.Scan(`[{"user_id":"a","score":2}]`); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if got, ok := l.Of("a"); !ok || got != 2 {
		t.Fatalf("Of(a) = %d, %v, want 2, true", got, ok)
	}
}
