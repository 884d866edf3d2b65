// Package storage defines the persistence contract shared by the SQL and
// in-memory stores.
package storage

import (
	"context"
	"errors"

	"github.com/Vasu1712/scenyx-chat/internal/models"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrDuplicateEmail   = errors.New("user with this email already exists")
	ErrDuplicatePair    = errors.New("the pair of participant one and participant two already exists")
	ErrSelfPair         = errors.New("participant one and participant two should be different")
	ErrInvalidReference = errors.New("referenced record does not exist")
)

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, int, error)
}

// ThreadStore persists threads. CreateThread returns ErrDuplicatePair when
// the unordered pair already exists and ErrSelfPair when both ids match.
type ThreadStore interface {
	CreateThread(ctx context.Context, participantOne, participantTwo int64) (*models.Thread, error)
	GetThread(ctx context.Context, id int64) (*models.Thread, error)
	FindThreadByPair(ctx context.Context, a, b int64) (*models.Thread, error)
	ListThreadsForUser(ctx context.Context, userID int64, limit, offset int) ([]*models.Thread, int, error)
	DeleteThread(ctx context.Context, id int64) error
}

// MessageStore persists messages and their read state.
type MessageStore interface {
	CreateMessage(ctx context.Context, threadID, senderID int64, text string) (*models.Message, error)
	GetMessage(ctx context.Context, id int64) (*models.Message, error)
	ListMessagesForThread(ctx context.Context, threadID int64, limit, offset int) ([]*models.Message, int, error)
	MarkMessageRead(ctx context.Context, id int64) (msg *models.Message, changed bool, err error)
	CountUnreadBySender(ctx context.Context, senderID int64) (int, error)
}

// Store is the full persistence surface used by the server.
type Store interface {
	UserStore
	ThreadStore
	MessageStore
	Ping(ctx context.Context) error
	Close() error
}
