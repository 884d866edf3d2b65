package chat

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vasu1712/scenyx-chat/internal/models"
	"github.com/Vasu1712/scenyx-chat/internal/storage"
	"github.com/Vasu1712/scenyx-chat/internal/storage/memory"
)

func newUsers(t *testing.T, s *memory.Store, n int) []*models.User {
	t.Helper()
	users := make([]*models.User, n)
	for i := range users {
		u := &models.User{Email: fmt.Sprintf("user%d@test.com", i), PasswordHash: "hash"}
		require.NoError(t, s.CreateUser(context.Background(), u))
		users[i] = u
	}
	return users
}

func TestResolveOrCreateIsSymmetric(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	reg := prometheus.NewRegistry()
	svc := NewService(store, NewMetrics(reg))
	u := newUsers(t, store, 2)

	first, created, err := svc.ResolveOrCreate(ctx, u[0].ID, u[1].ID)
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := svc.ResolveOrCreate(ctx, u[1].ID, u[0].ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, u[0].ID, second.ParticipantOneID, "stored ordering must not follow the caller")

	_, total, err := svc.ListForUser(ctx, u[0].ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	assert.Equal(t, float64(1), testutil.ToFloat64(svc.metrics.threadsResolved.WithLabelValues("created")))
	assert.Equal(t, float64(1), testutil.ToFloat64(svc.metrics.threadsResolved.WithLabelValues("found")))
}

func TestResolveOrCreateRejectsSelfPairAndUnknownUsers(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := NewService(store, nil)
	u := newUsers(t, store, 1)

	_, _, err := svc.ResolveOrCreate(ctx, u[0].ID, u[0].ID)
	assert.ErrorIs(t, err, ErrInvalidPair)

	_, _, err = svc.ResolveOrCreate(ctx, u[0].ID, 77)
	assert.ErrorIs(t, err, ErrUnknownUser)
}

// racingStore hides existing threads from the first pair lookup, as if a
// concurrent request inserted the pair between the lookup and the insert.
type racingStore struct {
	*memory.Store
	mu     sync.Mutex
	misses int
}

func (r *racingStore) FindThreadByPair(ctx context.Context, a, b int64) (*models.Thread, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.misses == 0 {
		r.misses++
		return nil, storage.ErrNotFound
	}
	return r.Store.FindThreadByPair(ctx, a, b)
}

func TestResolveOrCreateRefetchesAfterInsertConflict(t *testing.T) {
	ctx := context.Background()
	mem := memory.NewStore()
	u := newUsers(t, mem, 2)
	existing, err := mem.CreateThread(ctx, u[1].ID, u[0].ID)
	require.NoError(t, err)

	svc := NewService(&racingStore{Store: mem}, nil)
	thread, created, err := svc.ResolveOrCreate(ctx, u[0].ID, u[1].ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, existing.ID, thread.ID)
	assert.Equal(t, u[1].ID, thread.ParticipantOneID)
}

func TestConcurrentResolveOrCreateYieldsOneThread(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := NewService(store, nil)
	u := newUsers(t, store, 2)

	var wg sync.WaitGroup
	ids := make(chan int64, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, b := u[0].ID, u[1].ID
			if i%2 == 0 {
				a, b = b, a
			}
			thread, _, err := svc.ResolveOrCreate(ctx, a, b)
			if assert.NoError(t, err) {
				ids <- thread.ID
			}
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := map[int64]bool{}
	for id := range ids {
		seen[id] = true
	}
	assert.Len(t, seen, 1)
}

func TestPostRequiresParticipantAndExistingThread(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := NewService(store, nil)
	u := newUsers(t, store, 3)
	thread, _, err := svc.ResolveOrCreate(ctx, u[0].ID, u[1].ID)
	require.NoError(t, err)

	_, err = svc.Post(ctx, thread.ID, u[2].ID, "intruder")
	assert.ErrorIs(t, err, ErrNotParticipant)

	_, err = svc.Post(ctx, 404, u[0].ID, "nowhere")
	assert.ErrorIs(t, err, ErrUnknownThread)

	msg, err := svc.Post(ctx, thread.ID, u[1].ID, "")
	require.NoError(t, err)
	assert.False(t, msg.IsRead)
	assert.Equal(t, "", msg.Text)
}

func TestListForThreadPagination(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := NewService(store, nil)
	u := newUsers(t, store, 2)
	thread, _, err := svc.ResolveOrCreate(ctx, u[0].ID, u[1].ID)
	require.NoError(t, err)

	const n, size = 7, 3
	for i := 0; i < n; i++ {
		_, err := svc.Post(ctx, thread.ID, u[i%2].ID, fmt.Sprintf("m%d", i))
		require.NoError(t, err)
	}

	pages, items := 0, 0
	for offset := 0; ; offset += size {
		msgs, total, err := svc.ListForThread(ctx, thread.ID, size, offset)
		require.NoError(t, err)
		assert.Equal(t, n, total)
		if len(msgs) == 0 {
			break
		}
		assert.LessOrEqual(t, len(msgs), size)
		assert.Equal(t, fmt.Sprintf("m%d", offset), msgs[0].Text)
		pages++
		items += len(msgs)
	}
	assert.Equal(t, int(math.Ceil(float64(n)/size)), pages)
	assert.Equal(t, n, items)
}

func TestReadStateAndUnreadCount(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := NewService(store, nil)
	u := newUsers(t, store, 2)
	thread, _, err := svc.ResolveOrCreate(ctx, u[0].ID, u[1].ID)
	require.NoError(t, err)

	count := func() int {
		n, err := svc.CountUnread(ctx, u[0].ID)
		require.NoError(t, err)
		return n
	}

	assert.Equal(t, 0, count())
	first, err := svc.Post(ctx, thread.ID, u[0].ID, "one")
	require.NoError(t, err)
	assert.Equal(t, 1, count())
	_, err = svc.Post(ctx, thread.ID, u[0].ID, "two")
	require.NoError(t, err)
	_, err = svc.Post(ctx, thread.ID, u[1].ID, "other sender")
	require.NoError(t, err)
	assert.Equal(t, 2, count())

	read, err := svc.MarkRead(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)
	assert.Equal(t, 1, count())

	read, err = svc.MarkRead(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)
	assert.Equal(t, 1, count())

	_, err = svc.MarkRead(ctx, 999)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestDeleteRemovesThread(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := NewService(store, nil)
	u := newUsers(t, store, 2)
	thread, _, err := svc.ResolveOrCreate(ctx, u[0].ID, u[1].ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, thread.ID))
	assert.ErrorIs(t, svc.Delete(ctx, thread.ID), storage.ErrNotFound)

	threads, _, err := svc.ListForUser(ctx, u[0].ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, threads)
}

func TestMarkReadCountsOnlyTransitions(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := NewService(store, NewMetrics(prometheus.NewRegistry()))
	u := newUsers(t, store, 2)
	thread, _, err := svc.ResolveOrCreate(ctx, u[0].ID, u[1].ID)
	require.NoError(t, err)
	msg, err := svc.Post(ctx, thread.ID, u[0].ID, "hi")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = svc.MarkRead(ctx, msg.ID)
		require.NoError(t, err)
	}
	assert.Equal(t, float64(1), testutil.ToFloat64(svc.metrics.messagesMarkedRead))
}
