package app

import (
	"fmt"

	"quizverse-service/internal/domain"
)

// Score counts correct answers against a quiz's current question set.
// Total is the number of questions the quiz has now, not the number of
// answers submitted. Answers referencing questions no longer in the set
// contribute nothing; the quiz may have been edited after the attempt
// started and stale answers must not fail scoring. Question point values
// are intentionally not weighted in.
func Score(questions []domain.Question, answers []domain.Answer) (correct, total int) {
	total = len(questions)
	byID := make(map[string]domain.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	for _, ans := range answers {
		if q, ok := byID[ans.QuestionID]; ok && q.CorrectAnswer == ans.SelectedOption {
			correct++
		}
	}
	return correct, total
}

// ScoreDisplay renders the human-readable "correct/total" form.
func ScoreDisplay(correct, total int) string {
	return fmt.Sprintf("%d/%d", correct, total)
}
