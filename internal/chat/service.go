// Package chat holds the direct messaging core: resolving the unique thread
// for a pair of users, appending messages to it and tracking read state.
package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/Vasu1712/scenyx-chat/internal/models"
	"github.com/Vasu1712/scenyx-chat/internal/storage"
	"github.com/Vasu1712/scenyx-chat/pkg/logger"
)

var (
	ErrInvalidPair    = errors.New("participant one and participant two should be different")
	ErrUnknownUser    = errors.New("participant does not exist")
	ErrUnknownThread  = errors.New("thread does not exist")
	ErrNotParticipant = errors.New("sender is not a participant of the thread")
)

// Store is the subset of storage the chat core depends on.
type Store interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
	storage.ThreadStore
	storage.MessageStore
}

// Service implements the thread resolver, message ledger and read-state tracker.
type Service struct {
	store   Store
	metrics *Metrics
}

// NewService returns a Service backed by store. metrics may be nil.
func NewService(store Store, metrics *Metrics) *Service {
	return &Service{store: store, metrics: metrics}
}

// ResolveOrCreate returns the thread between participantOne and
// participantTwo, creating it if none exists in either ordering. created
// reports whether a new thread was inserted. An existing thread keeps the
// participant order it was created with.
func (s *Service) ResolveOrCreate(ctx context.Context, participantOne, participantTwo int64) (*models.Thread, bool, error) {
	if participantOne == participantTwo {
		return nil, false, ErrInvalidPair
	}
	for _, id := range []int64{participantOne, participantTwo} {
		if _, err := s.store.GetUser(ctx, id); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, false, fmt.Errorf("%w: %d", ErrUnknownUser, id)
			}
			return nil, false, err
		}
	}

	existing, err := s.store.FindThreadByPair(ctx, participantOne, participantTwo)
	if err == nil {
		s.metrics.threadResolved("found")
		logger.Debug().Int64("thread_id", existing.ID).Msg("thread found")
		return existing, false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, false, err
	}

	thread, err := s.store.CreateThread(ctx, participantOne, participantTwo)
	switch {
	case err == nil:
		s.metrics.threadResolved("created")
		logger.Info().Int64("thread_id", thread.ID).Int64("participant_one", participantOne).
			Int64("participant_two", participantTwo).Msg("thread created")
		return thread, true, nil
	case errors.Is(err, storage.ErrDuplicatePair):
		// Lost a race with a concurrent insert of the same pair.
		existing, ferr := s.store.FindThreadByPair(ctx, participantOne, participantTwo)
		if ferr != nil {
			return nil, false, fmt.Errorf("refetch thread after conflict: %w", ferr)
		}
		s.metrics.threadResolved("found")
		logger.Debug().Int64("thread_id", existing.ID).Msg("thread found after insert conflict")
		return existing, false, nil
	case errors.Is(err, storage.ErrSelfPair):
		return nil, false, ErrInvalidPair
	case errors.Is(err, storage.ErrInvalidReference):
		return nil, false, ErrUnknownUser
	default:
		return nil, false, err
	}
}

// ListForUser returns a page of threads in which userID occupies either slot.
func (s *Service) ListForUser(ctx context.Context, userID int64, limit, offset int) ([]*models.Thread, int, error) {
	return s.store.ListThreadsForUser(ctx, userID, limit, offset)
}

// Delete removes a thread and all of its messages.
func (s *Service) Delete(ctx context.Context, threadID int64) error {
	if err := s.store.DeleteThread(ctx, threadID); err != nil {
		return err
	}
	logger.Info().Int64("thread_id", threadID).Msg("thread deleted")
	return nil
}

// Post appends an unread message from senderID to the thread. The sender
// must be one of the thread's participants.
func (s *Service) Post(ctx context.Context, threadID, senderID int64, text string) (*models.Message, error) {
	thread, err := s.store.GetThread(ctx, threadID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUnknownThread
	}
	if err != nil {
		return nil, err
	}
	if !thread.HasParticipant(senderID) {
		return nil, ErrNotParticipant
	}

	msg, err := s.store.CreateMessage(ctx, threadID, senderID, text)
	if errors.Is(err, storage.ErrInvalidReference) {
		// thread deleted between the lookup and the insert
		return nil, ErrUnknownThread
	}
	if err != nil {
		return nil, err
	}
	s.metrics.messagePosted()
	logger.Debug().Int64("message_id", msg.ID).Int64("thread_id", threadID).Int64("sender_id", senderID).Msg("message posted")
	return msg, nil
}

// ListForThread returns a page of the thread's messages in insertion order.
func (s *Service) ListForThread(ctx context.Context, threadID int64, limit, offset int) ([]*models.Message, int, error) {
	return s.store.ListMessagesForThread(ctx, threadID, limit, offset)
}

// MarkRead moves a message to the read state. Marking an already read
// message succeeds without changing it.
func (s *Service) MarkRead(ctx context.Context, messageID int64) (*models.Message, error) {
	msg, changed, err := s.store.MarkMessageRead(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if changed {
		s.metrics.messageMarkedRead()
	}
	return msg, nil
}

// CountUnread returns how many messages sent by userID are still unread.
func (s *Service) CountUnread(ctx context.Context, userID int64) (int, error) {
	return s.store.CountUnreadBySender(ctx, userID)
}
