package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"quizverse-service/internal/domain"
)

// QuizCatalog loads quiz content (from cache/backing store). The catalog is
// owned by the authoring side of the system; the lifecycle only reads it.
type QuizCatalog interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	ListQuizzesByOwner(ctx context.Context, ownerID string) ([]domain.Quiz, error)
}

// AttemptStore persists attempts. Listings return attempts in creation order.
// CompleteAttempt is a compare-and-swap: it succeeds only while the attempt
// is still in progress and returns domain.ErrAttemptCompleted otherwise, so
// concurrent submissions resolve to exactly one winner.
type AttemptStore interface {
	CreateAttempt(ctx context.Context, attempt domain.Attempt) error
	GetAttempt(ctx context.Context, attemptID string) (domain.Attempt, error)
	ListAttemptsByStudent(ctx context.Context, studentID string) ([]domain.Attempt, error)
	ListAttemptsByQuiz(ctx context.Context, quizID string) ([]domain.Attempt, error)
	ListCompletedAttempts(ctx context.Context, quizID string) ([]domain.Attempt, error)
	CompleteAttempt(ctx context.Context, attemptID string, completion domain.Completion) (domain.Attempt, error)
}

// Directory resolves user display names for listings and leaderboards.
type Directory interface {
	DisplayName(ctx context.Context, userID string) (string, error)
}

// AttemptService owns the attempt state machine and the leaderboard view.
type AttemptService struct {
	catalog   QuizCatalog
	attempts  AttemptStore
	directory Directory
	hub       *LeaderboardHub
	now       func() time.Time
	newID     func() string
}

func NewAttemptService(catalog QuizCatalog, attempts AttemptStore, directory Directory, hub *LeaderboardHub) *AttemptService {
	return NewAttemptServiceWithClock(catalog, attempts, directory, hub, time.Now, uuid.NewString)
}

// NewAttemptServiceWithClock is for tests needing deterministic time and ids.
func NewAttemptServiceWithClock(catalog QuizCatalog, attempts AttemptStore, directory Directory, hub *LeaderboardHub, now func() time.Time, newID func() string) *AttemptService {
	return &AttemptService{
		catalog:   catalog,
		attempts:  attempts,
		directory: directory,
		hub:       hub,
		now:       now,
		newID:     newID,
	}
}

// StartAttempt creates a fresh in-progress attempt on the quiz. A student may
// hold several concurrent attempts on the same quiz; each call yields a new
// independent one.
func (s *AttemptService) StartAttempt(ctx context.Context, quizID, studentID string) (domain.Attempt, error) {
	if _, err := s.catalog.GetQuiz(ctx, quizID); err != nil {
		return domain.Attempt{}, err
	}

	attempt := domain.Attempt{
		ID:        s.newID(),
		QuizID:    quizID,
		StudentID: studentID,
		Answers:   []domain.Answer{},
		CreatedAt: s.now(),
	}
	if err := s.attempts.CreateAttempt(ctx, attempt); err != nil {
		return domain.Attempt{}, err
	}
	return attempt, nil
}

// SubmitAttempt scores the answers against the quiz's current question set
// and completes the attempt. Scoring and the completion write land as one
// atomic store call; if the write fails the attempt stays in progress and the
// caller may retry. A second submission observes domain.ErrAttemptCompleted.
func (s *AttemptService) SubmitAttempt(ctx context.Context, attemptID, requestingUserID string, answers []domain.Answer, timeTakenSeconds int) (domain.AttemptResult, error) {
	attempt, err := s.ownedAttempt(ctx, attemptID, requestingUserID)
	if err != nil {
		return domain.AttemptResult{}, err
	}
	if attempt.Completed() {
		return domain.AttemptResult{}, domain.ErrAttemptCompleted
	}

	quiz, err := s.catalog.GetQuiz(ctx, attempt.QuizID)
	if err != nil {
		return domain.AttemptResult{}, err
	}

	correct, total := Score(quiz.Questions, answers)
	updated, err := s.attempts.CompleteAttempt(ctx, attemptID, domain.Completion{
		Answers:          answers,
		Score:            correct,
		CompletedAt:      s.now(),
		TimeTakenSeconds: timeTakenSeconds,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAttemptNotFound) {
			return domain.AttemptResult{}, domain.ErrForbidden
		}
		return domain.AttemptResult{}, err
	}

	s.publishLeaderboard(ctx, attempt.QuizID)

	return domain.AttemptResult{
		Attempt:        updated,
		TotalQuestions: total,
		CorrectAnswers: correct,
		ScoreDisplay:   ScoreDisplay(correct, total),
	}, nil
}

// GetAttempt returns the attempt to its owner only.
func (s *AttemptService) GetAttempt(ctx context.Context, attemptID, requestingUserID string) (domain.Attempt, error) {
	return s.ownedAttempt(ctx, attemptID, requestingUserID)
}

// ListAttemptsForStudent returns the student's attempts joined with quiz
// titles. Attempts on deleted quizzes stay listed with an empty title.
func (s *AttemptService) ListAttemptsForStudent(ctx context.Context, studentID string) ([]domain.AttemptSummary, error) {
	attempts, err := s.attempts.ListAttemptsByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, attempts)
}

// ListAttemptsForQuizOwner returns all attempts on quizzes the owner created.
func (s *AttemptService) ListAttemptsForQuizOwner(ctx context.Context, ownerUserID string) ([]domain.AttemptSummary, error) {
	quizzes, err := s.catalog.ListQuizzesByOwner(ctx, ownerUserID)
	if err != nil {
		return nil, err
	}

	summaries := []domain.AttemptSummary{}
	for _, quiz := range quizzes {
		attempts, err := s.attempts.ListAttemptsByQuiz(ctx, quiz.ID)
		if err != nil {
			return nil, err
		}
		for _, attempt := range attempts {
			summaries = append(summaries, domain.AttemptSummary{
				Attempt:     attempt,
				QuizTitle:   quiz.Title,
				StudentName: s.displayName(ctx, attempt.StudentID),
			})
		}
	}
	return summaries, nil
}

// ownedAttempt fetches the attempt and enforces ownership. A missing attempt
// and a foreign attempt look identical to the caller.
func (s *AttemptService) ownedAttempt(ctx context.Context, attemptID, requestingUserID string) (domain.Attempt, error) {
	attempt, err := s.attempts.GetAttempt(ctx, attemptID)
	if err != nil {
		if errors.Is(err, domain.ErrAttemptNotFound) {
			return domain.Attempt{}, domain.ErrForbidden
		}
		return domain.Attempt{}, err
	}
	if attempt.StudentID != requestingUserID {
		return domain.Attempt{}, domain.ErrForbidden
	}
	return attempt, nil
}

func (s *AttemptService) summarize(ctx context.Context, attempts []domain.Attempt) ([]domain.AttemptSummary, error) {
	titles := make(map[string]string)
	summaries := make([]domain.AttemptSummary, 0, len(attempts))
	for _, attempt := range attempts {
		title, ok := titles[attempt.QuizID]
		if !ok {
			quiz, err := s.catalog.GetQuiz(ctx, attempt.QuizID)
			switch {
			case err == nil:
				title = quiz.Title
			case errors.Is(err, domain.ErrQuizNotFound):
				title = ""
			default:
				return nil, err
			}
			titles[attempt.QuizID] = title
		}
		summaries = append(summaries, domain.AttemptSummary{
			Attempt:     attempt,
			QuizTitle:   title,
			StudentName: s.displayName(ctx, attempt.StudentID),
		})
	}
	return summaries, nil
}

func (s *AttemptService) displayName(ctx context.Context, userID string) string {
	if s.directory == nil {
		return userID
	}
	name, err := s.directory.DisplayName(ctx, userID)
	if err != nil || name == "" {
		return userID
	}
	return name
}

func (s *AttemptService) publishLeaderboard(ctx context.Context, quizID string) {
	if s.hub == nil || !s.hub.HasSubscribers(quizID) {
		return
	}
	lb, err := s.Leaderboard(ctx, quizID)
	if err != nil {
		return
	}
	s.hub.Publish(lb)
}
