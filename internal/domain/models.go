package domain

import "time"

// Role distinguishes quiz authors from quiz takers.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
)

// Identity is the authenticated caller as resolved by the auth boundary.
type Identity struct {
	UserID      string
	Role        Role
	DisplayName string
}

// Question models an MCQ question; CorrectAnswer indexes into Options.
type Question struct {
	ID            string   `json:"id"`
	Text          string   `json:"questionText"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Points        int      `json:"points"` // modeled but not weighted into scores
}

// Quiz is an ordered collection of questions plus authoring metadata.
type Quiz struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Questions        []Question `json:"questions"`
	CreatedBy        string     `json:"createdBy"`
	TimeLimitMinutes int        `json:"timeLimit"`
	Active           bool       `json:"isActive"`
}

// Answer is one selected option for one question of an attempt.
type Answer struct {
	QuestionID     string `json:"questionId"`
	SelectedOption int    `json:"selectedOption"`
}

// Attempt is a student's single pass at a quiz. It is created in progress
// and transitions exactly once to completed; a completed attempt is immutable.
type Attempt struct {
	ID               string     `json:"id"`
	QuizID           string     `json:"quizId"`
	StudentID        string     `json:"studentId"`
	Answers          []Answer   `json:"answers"`
	Score            int        `json:"score"`
	CreatedAt        time.Time  `json:"createdAt"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
	TimeTakenSeconds *int       `json:"timeTakenSeconds,omitempty"`
}

// Completed reports whether the attempt has been submitted and scored.
func (a Attempt) Completed() bool {
	return a.CompletedAt != nil
}

// Completion carries the one-time state transition written when an attempt
// is submitted.
type Completion struct {
	Answers          []Answer
	Score            int
	CompletedAt      time.Time
	TimeTakenSeconds int
}

// AttemptResult is the submit response: the stored attempt plus the derived
// fields consumers must never recompute themselves.
type AttemptResult struct {
	Attempt        Attempt `json:"attempt"`
	TotalQuestions int     `json:"totalQuestions"`
	CorrectAnswers int     `json:"correctAnswers"`
	ScoreDisplay   string  `json:"scoreDisplay"`
}

// AttemptSummary is a listing row joining an attempt with quiz metadata.
// QuizTitle is empty when the quiz has since been deleted.
type AttemptSummary struct {
	Attempt     Attempt `json:"attempt"`
	QuizTitle   string  `json:"quizTitle"`
	StudentName string  `json:"studentName"`
}

// LeaderboardEntry is one ranked row of a quiz leaderboard. Correctness is
// recomputed against the quiz's current question set, not the stored score.
type LeaderboardEntry struct {
	AttemptID        string `json:"attemptId"`
	StudentID        string `json:"studentId"`
	StudentName      string `json:"studentName"`
	CorrectAnswers   int    `json:"correctAnswers"`
	TotalQuestions   int    `json:"totalQuestions"`
	ScoreDisplay     string `json:"scoreDisplay"`
	TimeTakenSeconds int    `json:"timeTakenSeconds"`
	Rank             int    `json:"rank"`
}

// Leaderboard is the ordered ranking for one quiz.
type Leaderboard struct {
	QuizID    string             `json:"quizId"`
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}
