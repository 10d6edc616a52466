// services/archive.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gosimple/slug"

	"trivia-match-runtime/models"
)

// ResultArchiver stores the results of an ended match.
type ResultArchiver interface {
	Archive(ctx context.Context, m *models.Match) error
}

// NopArchiver discards results.
type NopArchiver struct{}

func (NopArchiver) Archive(context.Context, *models.Match) error { return nil }

// ObjectPutter is the part of *s3.Client the archiver needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archiver uploads match results as JSON objects.
type S3Archiver struct {
	client ObjectPutter
	bucket string
	prefix string
}

func NewS3Archiver(client ObjectPutter, bucket, prefix string) *S3Archiver {
	if prefix == "" {
		prefix = "matches"
	}
	return &S3Archiver{client: client, bucket: bucket, prefix: prefix}
}

type archivedRound struct {
	RoundCount    int              `json:"round_count"`
	QuestionID    string           `json:"question_id"`
	Question      string           `json:"question"`
	Difficulty    int              `json:"difficulty"`
	CorrectAnswer string           `json:"correct_answer"`
	RoundScore    models.ScoreList `json:"round_score"`
	Responses     int              `json:"responses"`
}

type archivedMatch struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Slug       string           `json:"slug"`
	InvitedIDs []string         `json:"invited_ids"`
	FinalScore models.ScoreList `json:"final_score"`
	Rounds     []archivedRound  `json:"rounds"`
	StartedAt  *time.Time       `json:"started_at,omitempty"`
	EndedAt    *time.Time       `json:"ended_at,omitempty"`
	Status     string           `json:"status"`
}

// ObjectKey is the key results of m are stored under.
func (a *S3Archiver) ObjectKey(m *models.Match) string {
	name := m.Slug
	if name == "" {
		name = slug.Make(m.Name)
	}
	if name == "" {
		return path.Join(a.prefix, m.ID+".json")
	}
	return path.Join(a.prefix, fmt.Sprintf("%s-%s.json", name, m.ID))
}

func (a *S3Archiver) Archive(ctx context.Context, m *models.Match) error {
	doc := archivedMatch{
		ID:         m.ID,
		Name:       m.Name,
		Slug:       m.Slug,
		InvitedIDs: m.InvitedIDs,
		FinalScore: m.FinalScore,
		Rounds:     make([]archivedRound, 0, len(m.Rounds)),
		StartedAt:  m.StartedAt,
		EndedAt:    m.EndedAt,
		Status:     string(m.Status),
	}
	for _, r := range m.Rounds {
		doc.Rounds = append(doc.Rounds, archivedRound{
			RoundCount:    r.RoundCount,
			QuestionID:    r.QuestionID,
			Question:      r.Question,
			Difficulty:    r.Difficulty,
			CorrectAnswer: r.CorrectAnswer,
			RoundScore:    r.RoundScore,
			Responses:     len(r.Responses),
		})
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode match results: %w", err)
	}

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(a.ObjectKey(m)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload match results: %w", err)
	}
	return nil
}
