package memory

import (
	"context"
	"sync"

	"quizverse-service/internal/domain"
)

// StaticCatalog is a mutable in-memory quiz catalog (useful for tests/demos).
// It implements both CatalogLoader and the app-facing catalog interface, so
// it can back a cache or be used directly.
type StaticCatalog struct {
	mu      sync.RWMutex
	quizzes map[string]domain.Quiz
}

func NewStaticCatalog(quizzes map[string]domain.Quiz) *StaticCatalog {
	if quizzes == nil {
		quizzes = make(map[string]domain.Quiz)
	}
	return &StaticCatalog{quizzes: quizzes}
}

func (c *StaticCatalog) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	return c.GetQuiz(ctx, quizID)
}

func (c *StaticCatalog) LoadQuizzesByOwner(ctx context.Context, ownerID string) ([]domain.Quiz, error) {
	return c.ListQuizzesByOwner(ctx, ownerID)
}

func (c *StaticCatalog) GetQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if quiz, ok := c.quizzes[quizID]; ok {
		return quiz, nil
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

func (c *StaticCatalog) ListQuizzesByOwner(_ context.Context, ownerID string) ([]domain.Quiz, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	quizzes := []domain.Quiz{}
	for _, quiz := range c.quizzes {
		if quiz.CreatedBy == ownerID {
			quizzes = append(quizzes, quiz)
		}
	}
	return quizzes, nil
}

// Put inserts or replaces a quiz, standing in for the authoring CRUD side.
func (c *StaticCatalog) Put(quiz domain.Quiz) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.quizzes[quiz.ID] = quiz
}

// Remove deletes a quiz; existing attempts on it stay untouched.
func (c *StaticCatalog) Remove(quizID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.quizzes, quizID)
}

// StaticDirectory resolves display names from a fixed map.
type StaticDirectory struct {
	names map[string]string
}

func NewStaticDirectory(names map[string]string) *StaticDirectory {
	return &StaticDirectory{names: names}
}

func (d *StaticDirectory) DisplayName(_ context.Context, userID string) (string, error) {
	if name, ok := d.names[userID]; ok {
		return name, nil
	}
	return "", nil
}
