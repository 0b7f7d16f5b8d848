package app_test

import (
	"testing"

	"quizverse-service/internal/app"
	"quizverse-service/internal/domain"
)

func TestHubDeliversToQuizSubscribersOnly(t *testing.T) {
	hub := app.NewLeaderboardHub()

	ch1, cancel1 := hub.Subscribe("quiz-1")
	defer cancel1()
	ch2, cancel2 := hub.Subscribe("quiz-2")
	defer cancel2()

	hub.Publish(domain.Leaderboard{QuizID: "quiz-1"})

	if lb := <-ch1; lb.QuizID != "quiz-1" {
		t.Fatalf("expected quiz-1 update, got %+v", lb)
	}
	select {
	case lb := <-ch2:
		t.Fatalf("quiz-2 subscriber received foreign update %+v", lb)
	default:
	}
}

func TestHubDropsStaleUpdatesForSlowSubscribers(t *testing.T) {
	hub := app.NewLeaderboardHub()
	ch, cancel := hub.Subscribe("quiz-1")
	defer cancel()

	// Publish more than the channel buffers without reading; the publisher
	// must not block and the freshest update must survive.
	for i := 0; i < 20; i++ {
		hub.Publish(domain.Leaderboard{QuizID: "quiz-1", Entries: make([]domain.LeaderboardEntry, i)})
	}

	var last domain.Leaderboard
	for {
		select {
		case lb := <-ch:
			last = lb
			continue
		default:
		}
		break
	}
	if len(last.Entries) != 19 {
		t.Fatalf("expected the final update to survive, got %d entries", len(last.Entries))
	}
}

func TestHubCancelClosesChannel(t *testing.T) {
	hub := app.NewLeaderboardHub()
	ch, cancel := hub.Subscribe("quiz-1")

	cancel()
	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel after cancel")
	}
	if hub.HasSubscribers("quiz-1") {
		t.Fatalf("expected no subscribers after cancel")
	}

	// Cancel is idempotent and publishing to nobody is a no-op.
	cancel()
	hub.Publish(domain.Leaderboard{QuizID: "quiz-1"})
}
