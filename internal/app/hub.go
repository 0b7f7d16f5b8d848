package app

import (
	"sync"

	"quizverse-service/internal/domain"
)

// LeaderboardHub fans out leaderboard refreshes to subscribers following a
// quiz. It carries no state of its own beyond the subscriber channels; the
// service recomputes the ranking and publishes it after each completion.
type LeaderboardHub struct {
	mu          sync.Mutex
	subscribers map[string]map[chan domain.Leaderboard]struct{}
}

func NewLeaderboardHub() *LeaderboardHub {
	return &LeaderboardHub{
		subscribers: make(map[string]map[chan domain.Leaderboard]struct{}),
	}
}

// Subscribe registers a follower of quizID. The caller must invoke the
// returned cancel function to avoid leaks.
func (h *LeaderboardHub) Subscribe(quizID string) (<-chan domain.Leaderboard, func()) {
	ch := make(chan domain.Leaderboard, 8)

	h.mu.Lock()
	if h.subscribers[quizID] == nil {
		h.subscribers[quizID] = make(map[chan domain.Leaderboard]struct{})
	}
	h.subscribers[quizID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if subs, ok := h.subscribers[quizID]; ok {
			if _, ok := subs[ch]; ok {
				delete(subs, ch)
				close(ch)
			}
			if len(subs) == 0 {
				delete(h.subscribers, quizID)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// HasSubscribers lets the service skip recomputing rankings nobody follows.
func (h *LeaderboardHub) HasSubscribers(quizID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers[quizID]) > 0
}

// Publish delivers the ranking to every follower of its quiz. Slow consumers
// never block the publisher: the stale buffered update is dropped and the
// fresh one queued in its place.
func (h *LeaderboardHub) Publish(lb domain.Leaderboard) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers[lb.QuizID] {
		select {
		case ch <- lb:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
}
