package app_test

import (
	"context"
	"errors"
	"testing"

	"quizverse-service/internal/app"
	"quizverse-service/internal/domain"
	"quizverse-service/internal/infra/memory"
)

func fiveQuestionQuiz() domain.Quiz {
	quiz := domain.Quiz{ID: "quiz-5", Title: "Five questions", CreatedBy: "admin-1", Active: true}
	for i := 0; i < 5; i++ {
		quiz.Questions = append(quiz.Questions, domain.Question{
			ID:            string(rune('a' + i)),
			Options:       []string{"right", "wrong"},
			CorrectAnswer: 0,
			Points:        1,
		})
	}
	return quiz
}

// correctAnswers builds a submission with n correct picks out of the five.
func correctAnswers(n int) []domain.Answer {
	answers := make([]domain.Answer, 0, 5)
	for i := 0; i < 5; i++ {
		selected := 1
		if i < n {
			selected = 0
		}
		answers = append(answers, domain.Answer{QuestionID: string(rune('a' + i)), SelectedOption: selected})
	}
	return answers
}

func TestLeaderboardOrdering(t *testing.T) {
	ctx := context.Background()
	svc, catalog, _ := newTestService()
	catalog.Put(fiveQuestionQuiz())

	// Creation order A, B, C with scores 3, 5, 3 and times 10, 20, 5.
	submit := func(student string, score, timeTaken int) string {
		t.Helper()
		attempt, err := svc.StartAttempt(ctx, "quiz-5", student)
		if err != nil {
			t.Fatalf("start: %v", err)
		}
		if _, err := svc.SubmitAttempt(ctx, attempt.ID, student, correctAnswers(score), timeTaken); err != nil {
			t.Fatalf("submit: %v", err)
		}
		return attempt.ID
	}
	idA := submit("s1", 3, 10)
	idB := submit("s2", 5, 20)
	idC := submit("s3", 3, 5)

	lb, err := svc.Leaderboard(ctx, "quiz-5")
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if len(lb.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(lb.Entries))
	}
	// Score desc, then time asc: B(5), C(3,t=5), A(3,t=10).
	wantOrder := []string{idB, idC, idA}
	for i, want := range wantOrder {
		if lb.Entries[i].AttemptID != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, lb.Entries[i].AttemptID)
		}
		if lb.Entries[i].Rank != i+1 {
			t.Fatalf("expected positional rank %d, got %d", i+1, lb.Entries[i].Rank)
		}
	}
	if lb.Entries[0].ScoreDisplay != "5/5" || lb.Entries[1].ScoreDisplay != "3/5" {
		t.Fatalf("unexpected score displays: %+v", lb.Entries)
	}
}

func TestLeaderboardExactTiesKeepCreationOrder(t *testing.T) {
	ctx := context.Background()
	svc, catalog, _ := newTestService()
	catalog.Put(fiveQuestionQuiz())

	var ids []string
	for _, student := range []string{"s1", "s2", "s3"} {
		attempt, _ := svc.StartAttempt(ctx, "quiz-5", student)
		if _, err := svc.SubmitAttempt(ctx, attempt.ID, student, correctAnswers(2), 30); err != nil {
			t.Fatalf("submit: %v", err)
		}
		ids = append(ids, attempt.ID)
	}

	lb, err := svc.Leaderboard(ctx, "quiz-5")
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	for i, want := range ids {
		if lb.Entries[i].AttemptID != want {
			t.Fatalf("tie at position %d: expected %s, got %s", i, want, lb.Entries[i].AttemptID)
		}
	}
}

func TestLeaderboardExcludesInProgressAttempts(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	done, _ := svc.StartAttempt(ctx, "quiz-1", "s1")
	if _, err := svc.SubmitAttempt(ctx, done.ID, "s1", correctAnswers(1), 10); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := svc.StartAttempt(ctx, "quiz-1", "s2"); err != nil {
		t.Fatalf("start: %v", err)
	}

	lb, err := svc.Leaderboard(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if len(lb.Entries) != 1 || lb.Entries[0].AttemptID != done.ID {
		t.Fatalf("expected only the completed attempt, got %+v", lb.Entries)
	}
	if lb.Entries[0].StudentName != "Alice" {
		t.Fatalf("expected display name, got %q", lb.Entries[0].StudentName)
	}
}

func TestLeaderboardRecomputesAgainstCurrentQuestions(t *testing.T) {
	ctx := context.Background()
	svc, catalog, _ := newTestService()

	attempt, _ := svc.StartAttempt(ctx, "quiz-1", "s1")
	result, err := svc.SubmitAttempt(ctx, attempt.ID, "s1", []domain.Answer{{QuestionID: "q1", SelectedOption: 1}}, 20)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.CorrectAnswers != 1 {
		t.Fatalf("expected 1 correct at submit time, got %d", result.CorrectAnswers)
	}

	// Replace q1 after scoring; the stored answer no longer matches anything.
	edited := sampleQuiz()
	edited.Questions[0].ID = "q9"
	catalog.Put(edited)

	lb, err := svc.Leaderboard(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if len(lb.Entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(lb.Entries))
	}
	if lb.Entries[0].CorrectAnswers != 0 || lb.Entries[0].ScoreDisplay != "0/2" {
		t.Fatalf("expected recomputed 0/2 against current questions, got %+v", lb.Entries[0])
	}
}

func TestLeaderboardEmptyAndMissingQuiz(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	lb, err := svc.Leaderboard(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if len(lb.Entries) != 0 {
		t.Fatalf("expected empty leaderboard, got %+v", lb.Entries)
	}

	if _, err := svc.Leaderboard(ctx, "quiz-missing"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz not found, got %v", err)
	}
}

func TestLeaderboardPublishesToHub(t *testing.T) {
	ctx := context.Background()
	catalog := memory.NewStaticCatalog(map[string]domain.Quiz{"quiz-1": sampleQuiz()})
	store := memory.NewAttemptStore()
	hub := app.NewLeaderboardHub()
	svc := app.NewAttemptServiceWithClock(catalog, store, memory.NewStaticDirectory(nil), hub, testClock(), testIDs())

	updates, cancel := hub.Subscribe("quiz-1")
	defer cancel()

	attempt, _ := svc.StartAttempt(ctx, "quiz-1", "s1")
	if _, err := svc.SubmitAttempt(ctx, attempt.ID, "s1", []domain.Answer{{QuestionID: "q1", SelectedOption: 1}}, 15); err != nil {
		t.Fatalf("submit: %v", err)
	}

	update := <-updates
	if len(update.Entries) != 1 || update.Entries[0].CorrectAnswers != 1 {
		t.Fatalf("expected published ranking with one entry, got %+v", update.Entries)
	}
}
