package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quizverse-service/internal/domain"
)

// AttemptStore persists attempts in Postgres. The completion UPDATE is
// guarded by `completed_at IS NULL`, so concurrent submissions for one
// attempt resolve to a single winner without application-level locking.
type AttemptStore struct {
	pool *pgxpool.Pool
}

func NewAttemptStore(pool *pgxpool.Pool) *AttemptStore {
	return &AttemptStore{pool: pool}
}

const attemptColumns = `id, quiz_id, student_id, answers, score, created_at, completed_at, time_taken_seconds`

func (s *AttemptStore) CreateAttempt(ctx context.Context, attempt domain.Attempt) error {
	answers, err := json.Marshal(attempt.Answers)
	if err != nil {
		return domain.Unavailablef("marshal answers", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO attempts (id, quiz_id, student_id, answers, score, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		attempt.ID, attempt.QuizID, attempt.StudentID, answers, attempt.Score, attempt.CreatedAt)
	if err != nil {
		return domain.Unavailablef("insert attempt", err)
	}
	return nil
}

func (s *AttemptStore) GetAttempt(ctx context.Context, attemptID string) (domain.Attempt, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+attemptColumns+` FROM attempts WHERE id=$1`, attemptID)
	attempt, err := scanAttempt(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	if err != nil {
		return domain.Attempt{}, domain.Unavailablef("load attempt", err)
	}
	return attempt, nil
}

func (s *AttemptStore) ListAttemptsByStudent(ctx context.Context, studentID string) ([]domain.Attempt, error) {
	return s.listAttempts(ctx,
		`SELECT `+attemptColumns+` FROM attempts WHERE student_id=$1 ORDER BY created_at, id`, studentID)
}

func (s *AttemptStore) ListAttemptsByQuiz(ctx context.Context, quizID string) ([]domain.Attempt, error) {
	return s.listAttempts(ctx,
		`SELECT `+attemptColumns+` FROM attempts WHERE quiz_id=$1 ORDER BY created_at, id`, quizID)
}

func (s *AttemptStore) ListCompletedAttempts(ctx context.Context, quizID string) ([]domain.Attempt, error) {
	return s.listAttempts(ctx,
		`SELECT `+attemptColumns+` FROM attempts WHERE quiz_id=$1 AND completed_at IS NOT NULL ORDER BY created_at, id`, quizID)
}

func (s *AttemptStore) CompleteAttempt(ctx context.Context, attemptID string, completion domain.Completion) (domain.Attempt, error) {
	answers, err := json.Marshal(completion.Answers)
	if err != nil {
		return domain.Attempt{}, domain.Unavailablef("marshal answers", err)
	}

	row := s.pool.QueryRow(ctx,
		`UPDATE attempts
		 SET answers=$2, score=$3, completed_at=$4, time_taken_seconds=$5
		 WHERE id=$1 AND completed_at IS NULL
		 RETURNING `+attemptColumns,
		attemptID, answers, completion.Score, completion.CompletedAt, completion.TimeTakenSeconds)
	attempt, err := scanAttempt(row)
	if errors.Is(err, pgx.ErrNoRows) {
		// Lost the CAS or the attempt never existed; look again to tell which.
		var exists bool
		if qerr := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM attempts WHERE id=$1)`, attemptID).Scan(&exists); qerr != nil {
			return domain.Attempt{}, domain.Unavailablef("load attempt", qerr)
		}
		if exists {
			return domain.Attempt{}, domain.ErrAttemptCompleted
		}
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	if err != nil {
		return domain.Attempt{}, domain.Unavailablef("complete attempt", err)
	}
	return attempt, nil
}

func (s *AttemptStore) listAttempts(ctx context.Context, query string, arg string) ([]domain.Attempt, error) {
	rows, err := s.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, domain.Unavailablef("list attempts", err)
	}
	defer rows.Close()

	attempts := []domain.Attempt{}
	for rows.Next() {
		attempt, err := scanAttempt(rows)
		if err != nil {
			return nil, domain.Unavailablef("scan attempt", err)
		}
		attempts = append(attempts, attempt)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Unavailablef("list attempts", err)
	}
	return attempts, nil
}

func scanAttempt(row pgx.Row) (domain.Attempt, error) {
	var (
		attempt     domain.Attempt
		rawAnswers  []byte
		completedAt *time.Time
		timeTaken   *int
	)
	err := row.Scan(&attempt.ID, &attempt.QuizID, &attempt.StudentID, &rawAnswers,
		&attempt.Score, &attempt.CreatedAt, &completedAt, &timeTaken)
	if err != nil {
		return domain.Attempt{}, err
	}
	if err := json.Unmarshal(rawAnswers, &attempt.Answers); err != nil {
		return domain.Attempt{}, err
	}
	attempt.CompletedAt = completedAt
	attempt.TimeTakenSeconds = timeTaken
	return attempt, nil
}
