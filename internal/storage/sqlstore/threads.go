package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Vasu1712/scenyx-chat/internal/models"
	"github.com/Vasu1712/scenyx-chat/internal/storage"
	"github.com/Vasu1712/scenyx-chat/pkg/logger"
)

const threadSelect = `
	SELECT t.id, t.participant_one_id, t.participant_two_id, t.created_at, t.updated_at,
		u1.id, u1.email, u1.first_name, u1.last_name,
		u2.id, u2.email, u2.first_name, u2.last_name
	FROM threads t
	JOIN users u1 ON u1.id = t.participant_one_id
	JOIN users u2 ON u2.id = t.participant_two_id
`

func scanThread(row rowScanner) (*models.Thread, error) {
	t := &models.Thread{ParticipantOne: &models.User{}, ParticipantTwo: &models.User{}}
	err := row.Scan(
		&t.ID, &t.ParticipantOneID, &t.ParticipantTwoID, &t.CreatedAt, &t.UpdatedAt,
		&t.ParticipantOne.ID, &t.ParticipantOne.Email, &t.ParticipantOne.FirstName, &t.ParticipantOne.LastName,
		&t.ParticipantTwo.ID, &t.ParticipantTwo.Email, &t.ParticipantTwo.FirstName, &t.ParticipantTwo.LastName,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// CreateThread inserts a thread keeping the given participant order. The
// unique (pair_low, pair_high) constraint rejects the pair in either order.
func (s *Store) CreateThread(ctx context.Context, participantOne, participantTwo int64) (*models.Thread, error) {
	if participantOne == participantTwo {
		return nil, storage.ErrSelfPair
	}
	low, high := models.PairKey(participantOne, participantTwo)
	ts := now()

	var id int64
	query := `
		INSERT INTO threads (participant_one_id, participant_two_id, pair_low, pair_high, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query, participantOne, participantTwo, low, high, ts, ts).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create thread: %w", classify(err, storage.ErrDuplicatePair))
	}

	logger.Debug().Int64("thread_id", id).Int64("participant_one", participantOne).
		Int64("participant_two", participantTwo).Msg("thread inserted")
	return s.GetThread(ctx, id)
}

func (s *Store) GetThread(ctx context.Context, id int64) (*models.Thread, error) {
	t, err := scanThread(s.db.QueryRowContext(ctx, threadSelect+` WHERE t.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get thread %d: %w", id, err)
	}
	return t, nil
}

// FindThreadByPair returns the thread between a and b regardless of the slot
// each of them occupies.
func (s *Store) FindThreadByPair(ctx context.Context, a, b int64) (*models.Thread, error) {
	low, high := models.PairKey(a, b)
	t, err := scanThread(s.db.QueryRowContext(ctx, threadSelect+` WHERE t.pair_low = $1 AND t.pair_high = $2`, low, high))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find thread for pair %d/%d: %w", a, b, err)
	}
	return t, nil
}

// ListThreadsForUser returns a page of the threads userID takes part in, in
// insertion order, together with the total number of such threads.
func (s *Store) ListThreadsForUser(ctx context.Context, userID int64, limit, offset int) ([]*models.Thread, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM threads WHERE participant_one_id = $1 OR participant_two_id = $1`
	if err := s.db.QueryRowContext(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count threads for user %d: %w", userID, err)
	}

	query := threadSelect + `
		WHERE t.participant_one_id = $1 OR t.participant_two_id = $1
		ORDER BY t.id
		LIMIT $2 OFFSET $3
	`
	rows, err := s.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list threads for user %d: %w", userID, err)
	}
	defer rows.Close()

	threads := []*models.Thread{}
	for rows.Next() {
		t, err := scanThread(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan thread for user %d: %w", userID, err)
		}
		threads = append(threads, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate threads for user %d: %w", userID, err)
	}
	return threads, total, nil
}

// DeleteThread removes the thread and its messages in one transaction.
func (s *Store) DeleteThread(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete thread %d: %w", id, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE thread_id = $1`, id); err != nil {
		return fmt.Errorf("delete messages of thread %d: %w", id, err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM threads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete thread %d: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete thread %d: %w", id, err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return tx.Commit()
}
