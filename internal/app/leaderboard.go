package app

import (
	"context"
	"sort"

	"quizverse-service/internal/domain"
)

// Leaderboard ranks all completed attempts for a quiz. Correctness is
// re-derived from each attempt's stored answers against the quiz's current
// question set, so the ranking always reflects present quiz content even
// when questions were edited after attempts were scored.
func (s *AttemptService) Leaderboard(ctx context.Context, quizID string) (domain.Leaderboard, error) {
	quiz, err := s.catalog.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	attempts, err := s.attempts.ListCompletedAttempts(ctx, quizID)
	if err != nil {
		return domain.Leaderboard{}, err
	}

	entries := rankAttempts(quiz.Questions, attempts)
	for i := range entries {
		entries[i].StudentName = s.displayName(ctx, entries[i].StudentID)
	}
	return domain.Leaderboard{
		QuizID:    quizID,
		Entries:   entries,
		UpdatedAt: s.now(),
	}, nil
}

// rankAttempts orders entries by correct answers descending, then time taken
// ascending. Attempts arrive in creation order and the sort is stable, so
// exact ties keep creation order and the result is a total order. Rank is
// positional: equal scores get consecutive ranks, not a shared one.
func rankAttempts(questions []domain.Question, attempts []domain.Attempt) []domain.LeaderboardEntry {
	entries := make([]domain.LeaderboardEntry, 0, len(attempts))
	for _, attempt := range attempts {
		correct, total := Score(questions, attempt.Answers)
		timeTaken := 0
		if attempt.TimeTakenSeconds != nil {
			timeTaken = *attempt.TimeTakenSeconds
		}
		entries = append(entries, domain.LeaderboardEntry{
			AttemptID:        attempt.ID,
			StudentID:        attempt.StudentID,
			CorrectAnswers:   correct,
			TotalQuestions:   total,
			ScoreDisplay:     ScoreDisplay(correct, total),
			TimeTakenSeconds: timeTaken,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].CorrectAnswers != entries[j].CorrectAnswers {
			return entries[i].CorrectAnswers > entries[j].CorrectAnswers
		}
		return entries[i].TimeTakenSeconds < entries[j].TimeTakenSeconds
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
