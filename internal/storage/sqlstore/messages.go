package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Vasu1712/scenyx-chat/internal/models"
	"github.com/Vasu1712/scenyx-chat/internal/storage"
)

const messageSelect = `
	SELECT m.id, m.thread_id, m.sender_id, m.text, m.is_read, m.created_at, m.updated_at,
		u.id, u.email, u.first_name, u.last_name
	FROM messages m
	JOIN users u ON u.id = m.sender_id
`

func scanMessage(row rowScanner) (*models.Message, error) {
	m := &models.Message{Sender: &models.User{}}
	err := row.Scan(
		&m.ID, &m.ThreadID, &m.SenderID, &m.Text, &m.IsRead, &m.CreatedAt, &m.UpdatedAt,
		&m.Sender.ID, &m.Sender.Email, &m.Sender.FirstName, &m.Sender.LastName,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// CreateMessage appends an unread message to the thread and bumps the
// thread's updated_at.
func (s *Store) CreateMessage(ctx context.Context, threadID, senderID int64, text string) (*models.Message, error) {
	ts := now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	defer tx.Rollback()

	var id int64
	query := `
		INSERT INTO messages (thread_id, sender_id, text, is_read, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	if err := tx.QueryRowContext(ctx, query, threadID, senderID, text, false, ts, ts).Scan(&id); err != nil {
		return nil, fmt.Errorf("create message in thread %d: %w", threadID, classify(err, err))
	}
	if _, err := tx.ExecContext(ctx, `UPDATE threads SET updated_at = $1 WHERE id = $2`, ts, threadID); err != nil {
		return nil, fmt.Errorf("touch thread %d: %w", threadID, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("create message in thread %d: %w", threadID, err)
	}
	return s.GetMessage(ctx, id)
}

func (s *Store) GetMessage(ctx context.Context, id int64) (*models.Message, error) {
	m, err := scanMessage(s.db.QueryRowContext(ctx, messageSelect+` WHERE m.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get message %d: %w", id, err)
	}
	return m, nil
}

func (s *Store) ListMessagesForThread(ctx context.Context, threadID int64, limit, offset int) ([]*models.Message, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages WHERE thread_id = $1`, threadID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count messages for thread %d: %w", threadID, err)
	}

	query := messageSelect + `
		WHERE m.thread_id = $1
		ORDER BY m.id
		LIMIT $2 OFFSET $3
	`
	rows, err := s.db.QueryContext(ctx, query, threadID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list messages for thread %d: %w", threadID, err)
	}
	defer rows.Close()

	msgs := []*models.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan message for thread %d: %w", threadID, err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate messages for thread %d: %w", threadID, err)
	}
	return msgs, total, nil
}

// MarkMessageRead flips is_read to true. Already read messages are returned
// unchanged with changed set to false.
func (s *Store) MarkMessageRead(ctx context.Context, id int64) (*models.Message, bool, error) {
	query := `UPDATE messages SET is_read = $1, updated_at = $2 WHERE id = $3 AND is_read = $4`
	result, err := s.db.ExecContext(ctx, query, true, now(), id, false)
	if err != nil {
		return nil, false, fmt.Errorf("mark message %d read: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("mark message %d read: %w", id, err)
	}
	msg, err := s.GetMessage(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return msg, n > 0, nil
}

func (s *Store) CountUnreadBySender(ctx context.Context, senderID int64) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM messages WHERE sender_id = $1 AND is_read = $2`
	if err := s.db.QueryRowContext(ctx, query, senderID, false).Scan(&n); err != nil {
		return 0, fmt.Errorf("count unread messages of sender %d: %w", senderID, err)
	}
	return n, nil
}
