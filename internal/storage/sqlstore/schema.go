package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/Vasu1712/scenyx-chat/pkg/logger"
)

// schema uses {{id}} and {{timestamp}} placeholders for the dialect's id
// column and timestamp type.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id {{id}},
		email TEXT NOT NULL UNIQUE,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		created_at {{timestamp}} NOT NULL,
		updated_at {{timestamp}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS threads (
		id {{id}},
		participant_one_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		participant_two_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		pair_low BIGINT NOT NULL,
		pair_high BIGINT NOT NULL,
		created_at {{timestamp}} NOT NULL,
		updated_at {{timestamp}} NOT NULL,
		CONSTRAINT different_participants_in_pair CHECK (participant_one_id <> participant_two_id),
		CONSTRAINT unique_participant_pair UNIQUE (pair_low, pair_high)
	)`,
	`CREATE INDEX IF NOT EXISTS threads_participant_one_idx ON threads (participant_one_id)`,
	`CREATE INDEX IF NOT EXISTS threads_participant_two_idx ON threads (participant_two_id)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id {{id}},
		thread_id BIGINT NOT NULL REFERENCES threads(id) ON DELETE CASCADE,
		sender_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		text TEXT NOT NULL DEFAULT '',
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at {{timestamp}} NOT NULL,
		updated_at {{timestamp}} NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS messages_thread_idx ON messages (thread_id)`,
	`CREATE INDEX IF NOT EXISTS messages_sender_unread_idx ON messages (sender_id, is_read)`,
}

func (d dialect) render(statements []string) []string {
	r := strings.NewReplacer("{{id}}", d.idColumn, "{{timestamp}}", d.timestampType)
	out := make([]string, len(statements))
	for i, stmt := range statements {
		out[i] = r.Replace(stmt)
	}
	return out
}

// Migrate creates the tables and indexes if they do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.render(schema) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	logger.Info().Int("statements", len(schema)).Msg("database schema is up to date")
	return nil
}
