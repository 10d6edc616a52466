// services/scoring.go
package services

import (
	"trivia-match-runtime/apperrors"
	"trivia-match-runtime/models"
)

// ScoreRound scores a closed round for every participant, in participant
// order. A correct answer is worth the round difficulty, anything else 0.
// Responses from users outside participants are ignored, as are repeated
// responses after the first one.
func ScoreRound(round *models.Round, participants []string) (models.ScoreList, string, error) {
	if round.CorrectAnswerIndex < 0 || round.CorrectAnswerIndex >= len(round.PossibleAnswers) {
		return nil, "", apperrors.Newf(apperrors.CodeInternal,
			"round %d: correct answer index %d out of bounds for %d options",
			round.RoundCount, round.CorrectAnswerIndex, len(round.PossibleAnswers)).
			WithMetadata("round_id", round.ID)
	}

	answers := make(map[string]int, len(round.Responses))
	for _, r := range round.Responses {
		if _, seen := answers[r.UserID]; !seen {
			answers[r.UserID] = r.AnswerIndex
		}
	}

	seen := make(map[string]struct{}, len(participants))
	scores := make(models.ScoreList, 0, len(participants))
	for _, userID := range participants {
		if _, dup := seen[userID]; dup {
			continue
		}
		seen[userID] = struct{}{}

		score := 0
		if idx, ok := answers[userID]; ok && idx-1 == round.CorrectAnswerIndex {
			score = round.Difficulty
		}
		scores = append(scores, models.UserScore{UserID: userID, Score: score})
	}
	return scores, round.PossibleAnswers[round.CorrectAnswerIndex], nil
}

// FinalScores sums the scored rounds per participant. Missing entries count 0.
func FinalScores(rounds []models.Round, participants []string) models.ScoreList {
	totals := make(map[string]int, len(participants))
	for _, r := range rounds {
		for _, s := range r.RoundScore {
			totals[s.UserID] += s.Score
		}
	}

	seen := make(map[string]struct{}, len(participants))
	final := make(models.ScoreList, 0, len(participants))
	for _, userID := range participants {
		if _, dup := seen[userID]; dup {
			continue
		}
		seen[userID] = struct{}{}
		final = append(final, models.UserScore{UserID: userID, Score: totals[userID]})
	}
	return final
}
