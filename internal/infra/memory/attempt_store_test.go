package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"quizverse-service/internal/domain"
)

func TestAttemptStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewAttemptStore()

	attempt := domain.Attempt{ID: "a1", QuizID: "quiz-1", StudentID: "s1", CreatedAt: time.Now()}
	if err := store.CreateAttempt(ctx, attempt); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := store.GetAttempt(ctx, "a1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Completed() {
		t.Fatalf("new attempt should be in progress")
	}

	if _, err := store.GetAttempt(ctx, "a2"); !errors.Is(err, domain.ErrAttemptNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	updated, err := store.CompleteAttempt(ctx, "a1", domain.Completion{
		Answers:          []domain.Answer{{QuestionID: "q1", SelectedOption: 1}},
		Score:            1,
		CompletedAt:      time.Now(),
		TimeTakenSeconds: 30,
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !updated.Completed() || updated.Score != 1 || *updated.TimeTakenSeconds != 30 {
		t.Fatalf("unexpected completed state %+v", updated)
	}

	if _, err := store.CompleteAttempt(ctx, "a1", domain.Completion{}); !errors.Is(err, domain.ErrAttemptCompleted) {
		t.Fatalf("expected conflict on second completion, got %v", err)
	}
	if _, err := store.CompleteAttempt(ctx, "a2", domain.Completion{}); !errors.Is(err, domain.ErrAttemptNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAttemptStoreConcurrentCompletionSingleWinner(t *testing.T) {
	ctx := context.Background()
	store := NewAttemptStore()
	_ = store.CreateAttempt(ctx, domain.Attempt{ID: "a1", QuizID: "quiz-1", StudentID: "s1"})

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.CompleteAttempt(ctx, "a1", domain.Completion{CompletedAt: time.Now()}); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("expected exactly one completion to win, got %d", wins)
	}
}

func TestAttemptStoreListingsKeepCreationOrder(t *testing.T) {
	ctx := context.Background()
	store := NewAttemptStore()

	for i := 0; i < 3; i++ {
		id := fmt.Sprintf("a%d", i)
		_ = store.CreateAttempt(ctx, domain.Attempt{ID: id, QuizID: "quiz-1", StudentID: "s1"})
	}
	// Complete out of creation order.
	for _, id := range []string{"a2", "a0"} {
		if _, err := store.CompleteAttempt(ctx, id, domain.Completion{CompletedAt: time.Now()}); err != nil {
			t.Fatalf("complete %s: %v", id, err)
		}
	}

	all, err := store.ListAttemptsByQuiz(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || all[0].ID != "a0" || all[1].ID != "a1" || all[2].ID != "a2" {
		t.Fatalf("expected creation order, got %+v", all)
	}

	completed, err := store.ListCompletedAttempts(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("list completed: %v", err)
	}
	if len(completed) != 2 || completed[0].ID != "a0" || completed[1].ID != "a2" {
		t.Fatalf("expected completed attempts in creation order, got %+v", completed)
	}

	byStudent, err := store.ListAttemptsByStudent(ctx, "s1")
	if err != nil || len(byStudent) != 3 {
		t.Fatalf("expected 3 attempts for s1, got %v %v", byStudent, err)
	}
}

func TestAttemptStoreReturnsIsolatedCopies(t *testing.T) {
	ctx := context.Background()
	store := NewAttemptStore()
	_ = store.CreateAttempt(ctx, domain.Attempt{ID: "a1", QuizID: "quiz-1", StudentID: "s1"})
	if _, err := store.CompleteAttempt(ctx, "a1", domain.Completion{
		Answers:     []domain.Answer{{QuestionID: "q1", SelectedOption: 0}},
		CompletedAt: time.Now(),
	}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	got, _ := store.GetAttempt(ctx, "a1")
	got.Answers[0].SelectedOption = 9

	again, _ := store.GetAttempt(ctx, "a1")
	if again.Answers[0].SelectedOption != 0 {
		t.Fatalf("caller mutation leaked into the store: %+v", again.Answers)
	}
}
