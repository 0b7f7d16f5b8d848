package memory

import (
	"context"
	"sync"

	"quizverse-service/internal/domain"
)

// AttemptStore is an in-memory implementation of app.AttemptStore. Insertion
// order is preserved so listings come back in attempt creation order.
type AttemptStore struct {
	mu       sync.RWMutex
	attempts map[string]domain.Attempt
	order    []string
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{
		attempts: make(map[string]domain.Attempt),
	}
}

func (s *AttemptStore) CreateAttempt(_ context.Context, attempt domain.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.attempts[attempt.ID]; !ok {
		s.order = append(s.order, attempt.ID)
	}
	s.attempts[attempt.ID] = cloneAttempt(attempt)
	return nil
}

func (s *AttemptStore) GetAttempt(_ context.Context, attemptID string) (domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attempt, ok := s.attempts[attemptID]
	if !ok {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	return cloneAttempt(attempt), nil
}

func (s *AttemptStore) ListAttemptsByStudent(_ context.Context, studentID string) ([]domain.Attempt, error) {
	return s.list(func(a domain.Attempt) bool { return a.StudentID == studentID }), nil
}

func (s *AttemptStore) ListAttemptsByQuiz(_ context.Context, quizID string) ([]domain.Attempt, error) {
	return s.list(func(a domain.Attempt) bool { return a.QuizID == quizID }), nil
}

func (s *AttemptStore) ListCompletedAttempts(_ context.Context, quizID string) ([]domain.Attempt, error) {
	return s.list(func(a domain.Attempt) bool { return a.QuizID == quizID && a.Completed() }), nil
}

// CompleteAttempt transitions the attempt to completed only while it is still
// in progress; the losing side of a concurrent submission sees
// domain.ErrAttemptCompleted.
func (s *AttemptStore) CompleteAttempt(_ context.Context, attemptID string, completion domain.Completion) (domain.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	attempt, ok := s.attempts[attemptID]
	if !ok {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	if attempt.Completed() {
		return domain.Attempt{}, domain.ErrAttemptCompleted
	}

	completedAt := completion.CompletedAt
	timeTaken := completion.TimeTakenSeconds
	attempt.Answers = append([]domain.Answer(nil), completion.Answers...)
	attempt.Score = completion.Score
	attempt.CompletedAt = &completedAt
	attempt.TimeTakenSeconds = &timeTaken
	s.attempts[attemptID] = attempt
	return cloneAttempt(attempt), nil
}

func (s *AttemptStore) list(keep func(domain.Attempt) bool) []domain.Attempt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Attempt{}
	for _, id := range s.order {
		if attempt := s.attempts[id]; keep(attempt) {
			out = append(out, cloneAttempt(attempt))
		}
	}
	return out
}

// cloneAttempt guards against callers mutating shared slices or timestamps.
func cloneAttempt(a domain.Attempt) domain.Attempt {
	a.Answers = append([]domain.Answer(nil), a.Answers...)
	if a.CompletedAt != nil {
		completedAt := *a.CompletedAt
		a.CompletedAt = &completedAt
	}
	if a.TimeTakenSeconds != nil {
		timeTaken := *a.TimeTakenSeconds
		a.TimeTakenSeconds = &timeTaken
	}
	return a
}
