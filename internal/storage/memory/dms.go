package memory

import (
	"context"

	"github.com/Vasu1712/scenyx-chat/internal/models"
	"github.com/Vasu1712/scenyx-chat/internal/storage"
	"github.com/Vasu1712/scenyx-chat/pkg/logger"
)

// thread returns a detached copy of t with participants resolved. Callers
// must hold s.mu.
func (s *Store) thread(t *models.Thread) *models.Thread {
	c := *t
	c.ParticipantOne = s.users[t.ParticipantOneID].Public()
	c.ParticipantTwo = s.users[t.ParticipantTwoID].Public()
	return &c
}

// message returns a detached copy of m with the sender resolved. Callers
// must hold s.mu.
func (s *Store) message(m *models.Message) *models.Message {
	c := *m
	c.Sender = s.users[m.SenderID].Public()
	return &c
}

func (s *Store) CreateThread(_ context.Context, participantOne, participantTwo int64) (*models.Thread, error) {
	if participantOne == participantTwo {
		return nil, storage.ErrSelfPair
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[participantOne]; !ok {
		return nil, storage.ErrInvalidReference
	}
	if _, ok := s.users[participantTwo]; !ok {
		return nil, storage.ErrInvalidReference
	}

	low, high := models.PairKey(participantOne, participantTwo)
	key := pair{low: low, high: high}
	if _, exists := s.pairIndex[key]; exists {
		return nil, storage.ErrDuplicatePair
	}

	s.lastThreadID++
	ts := now()
	t := &models.Thread{
		ID:               s.lastThreadID,
		ParticipantOneID: participantOne,
		ParticipantTwoID: participantTwo,
		CreatedAt:        ts,
		UpdatedAt:        ts,
	}
	s.threads[t.ID] = t
	s.pairIndex[key] = t.ID
	s.userThreads[participantOne] = append(s.userThreads[participantOne], t.ID)
	s.userThreads[participantTwo] = append(s.userThreads[participantTwo], t.ID)

	logger.Debug().Int64("thread_id", t.ID).Msg("thread inserted")
	return s.thread(t), nil
}

func (s *Store) GetThread(_ context.Context, id int64) (*models.Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.threads[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return s.thread(t), nil
}

func (s *Store) FindThreadByPair(_ context.Context, a, b int64) (*models.Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	low, high := models.PairKey(a, b)
	id, ok := s.pairIndex[pair{low: low, high: high}]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return s.thread(s.threads[id]), nil
}

func (s *Store) ListThreadsForUser(_ context.Context, userID int64, limit, offset int) ([]*models.Thread, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.userThreads[userID]
	result := []*models.Thread{}
	for _, id := range page(ids, limit, offset) {
		result = append(result, s.thread(s.threads[id]))
	}
	return result, len(ids), nil
}

func (s *Store) DeleteThread(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.threads[id]
	if !ok {
		return storage.ErrNotFound
	}
	for _, msgID := range s.threadMsgs[id] {
		delete(s.messages, msgID)
	}
	delete(s.threadMsgs, id)

	low, high := models.PairKey(t.ParticipantOneID, t.ParticipantTwoID)
	delete(s.pairIndex, pair{low: low, high: high})
	s.userThreads[t.ParticipantOneID] = without(s.userThreads[t.ParticipantOneID], id)
	s.userThreads[t.ParticipantTwoID] = without(s.userThreads[t.ParticipantTwoID], id)
	delete(s.threads, id)
	return nil
}

func without(ids []int64, id int64) []int64 {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func (s *Store) CreateMessage(_ context.Context, threadID, senderID int64, text string) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.threads[threadID]
	if !ok {
		return nil, storage.ErrInvalidReference
	}
	if _, ok := s.users[senderID]; !ok {
		return nil, storage.ErrInvalidReference
	}

	s.lastMessageID++
	ts := now()
	msg := &models.Message{
		ID:        s.lastMessageID,
		SenderID:  senderID,
		ThreadID:  threadID,
		Text:      text,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	s.messages[msg.ID] = msg
	s.threadMsgs[threadID] = append(s.threadMsgs[threadID], msg.ID)
	t.UpdatedAt = ts
	return s.message(msg), nil
}

func (s *Store) GetMessage(_ context.Context, id int64) (*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.messages[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return s.message(m), nil
}

func (s *Store) ListMessagesForThread(_ context.Context, threadID int64, limit, offset int) ([]*models.Message, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.threadMsgs[threadID]
	result := []*models.Message{}
	for _, id := range page(ids, limit, offset) {
		result = append(result, s.message(s.messages[id]))
	}
	return result, len(ids), nil
}

func (s *Store) MarkMessageRead(_ context.Context, id int64) (*models.Message, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.messages[id]
	if !ok {
		return nil, false, storage.ErrNotFound
	}
	if m.IsRead {
		return s.message(m), false, nil
	}
	m.IsRead = true
	m.UpdatedAt = now()
	return s.message(m), true, nil
}

func (s *Store) CountUnreadBySender(_ context.Context, senderID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, m := range s.messages {
		if m.SenderID == senderID && !m.IsRead {
			n++
		}
	}
	return n, nil
}
