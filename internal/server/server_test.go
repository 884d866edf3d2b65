package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Vasu1712/scenyx-chat/internal/auth"
	"github.com/Vasu1712/scenyx-chat/internal/config"
	"github.com/Vasu1712/scenyx-chat/internal/models"
	"github.com/Vasu1712/scenyx-chat/internal/storage/sqlstore"
	"github.com/Vasu1712/scenyx-chat/internal/users"
)

const password = "password123"

type testEnv struct {
	t       *testing.T
	srv     *Server
	store   *sqlstore.Store
	handler http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	store, err := sqlstore.Open(ctx, sqlstore.DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))
	t.Cleanup(func() { store.Close() })

	cfg := &config.Config{
		Env:             config.EnvTest,
		JWTSecret:       "test-secret",
		TokenTTL:        time.Hour,
		ChatPageSize:    2,
		UserPageSize:    10,
		MaxPageSize:     100,
		CORSOrigin:      "http://127.0.0.1:5173",
		ShutdownTimeout: time.Second,
	}
	srv := New(cfg, store, auth.NewMemorySessions())
	srv.Users.WithBcryptCost(bcrypt.MinCost)
	return &testEnv{t: t, srv: srv, store: store, handler: srv.Handler()}
}

func (e *testEnv) user(name string) *models.User {
	e.t.Helper()
	u, err := e.srv.Users.Create(context.Background(), users.CreateInput{
		Email:     name + "@test.com",
		Password:  password,
		FirstName: name,
		LastName:  "Tester",
	})
	require.NoError(e.t, err)
	return u
}

func (e *testEnv) token(u *models.User) string {
	e.t.Helper()
	rec := e.do(http.MethodPost, "/user/token/", "", map[string]string{"email": u.Email, "password": password})
	require.Equal(e.t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		Token  string `json:"token"`
		UserID int64  `json:"user_id"`
	}
	require.NoError(e.t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(e.t, u.ID, body.UserID)
	return body.Token
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func idOf(v any) int64 {
	return int64(v.(map[string]any)["id"].(float64))
}

func (e *testEnv) createThread(token string, one, two int64) *httptest.ResponseRecorder {
	return e.do(http.MethodPost, "/chat/create-retrieve-thread/", token,
		map[string]int64{"participant_one": one, "participant_two": two})
}

func TestChatEndpointsRequireAuthentication(t *testing.T) {
	e := newTestEnv(t)
	a, b := e.user("alice"), e.user("bob")
	th, _, err := e.srv.Chat.ResolveOrCreate(context.Background(), a.ID, b.ID)
	require.NoError(t, err)
	msg, err := e.srv.Chat.Post(context.Background(), th.ID, a.ID, "hello")
	require.NoError(t, err)

	requests := []struct {
		method, path string
		body         any
	}{
		{http.MethodPost, "/chat/create-retrieve-thread/", map[string]int64{"participant_one": a.ID, "participant_two": b.ID}},
		{http.MethodDelete, fmt.Sprintf("/chat/remove-thread/%d/", th.ID), nil},
		{http.MethodGet, fmt.Sprintf("/chat/retrieve-thread-list/?user=%d", a.ID), nil},
		{http.MethodPost, "/chat/create-retrieve-message/", map[string]any{"text": "Test message", "thread": th.ID}},
		{http.MethodGet, fmt.Sprintf("/chat/create-retrieve-message/?thread_id=%d", th.ID), nil},
		{http.MethodPatch, fmt.Sprintf("/chat/mark-message-as-read/%d/", msg.ID), nil},
		{http.MethodGet, "/chat/retrieve-number-of-unread-messages/", nil},
		{http.MethodGet, "/user/me/", nil},
		{http.MethodGet, "/user/list/", nil},
	}
	for _, req := range requests {
		rec := e.do(req.method, req.path, "", req.body)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", req.method, req.path)
		assert.Equal(t, "Token", rec.Header().Get("WWW-Authenticate"))
	}

	rec := e.do(http.MethodGet, "/chat/retrieve-number-of-unread-messages/", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// nothing changed
	_, count, err := e.store.ListThreadsForUser(context.Background(), a.ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	_, count, err = e.store.ListMessagesForThread(context.Background(), th.ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	stored, err := e.store.GetMessage(context.Background(), msg.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsRead)
}

func TestThreadLifecycle(t *testing.T) {
	e := newTestEnv(t)
	a, b := e.user("alice"), e.user("bob")
	token := e.token(a)

	rec := e.createThread(token, a.ID, b.ID)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode(t, rec)
	threadID := int64(created["id"].(float64))
	assert.Equal(t, a.ID, idOf(created["participant_one"]))
	assert.Equal(t, b.ID, idOf(created["participant_two"]))

	rec = e.createThread(token, b.ID, a.ID)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	found := decode(t, rec)
	assert.Equal(t, float64(threadID), found["id"])
	assert.Equal(t, a.ID, idOf(found["participant_one"]))
	assert.Equal(t, b.ID, idOf(found["participant_two"]))

	_, count, err := e.store.ListThreadsForUser(context.Background(), a.ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	rec = e.do(http.MethodDelete, fmt.Sprintf("/chat/remove-thread/%d/", threadID), token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = e.do(http.MethodGet, fmt.Sprintf("/chat/retrieve-thread-list/?user=%d", a.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode(t, rec)
	assert.Equal(t, float64(0), page["count"])
	assert.Empty(t, page["results"])

	rec = e.do(http.MethodDelete, fmt.Sprintf("/chat/remove-thread/%d/", threadID), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateThreadRejectsBadInput(t *testing.T) {
	e := newTestEnv(t)
	a := e.user("alice")
	token := e.token(a)

	rec := e.createThread(token, a.ID, a.ID)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "should be different")

	rec = e.createThread(token, a.ID, 9999)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(http.MethodPost, "/chat/create-retrieve-thread/", token, map[string]int64{"participant_one": a.ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(http.MethodGet, "/chat/create-retrieve-thread/", token, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestUnknownMethodOnKnownPath(t *testing.T) {
	e := newTestEnv(t)
	token := e.token(e.user("alice"))

	for _, req := range []struct{ method, path string }{
		{http.MethodGet, "/chat/create-retrieve-thread/"},
		{http.MethodPost, "/chat/remove-thread/1/"},
		{http.MethodDelete, "/chat/retrieve-thread-list/"},
		{http.MethodPut, "/chat/create-retrieve-message/"},
		{http.MethodGet, "/chat/mark-message-as-read/1/"},
		{http.MethodPost, "/chat/retrieve-number-of-unread-messages/"},
		{http.MethodGet, "/user/create/"},
		{http.MethodDelete, "/user/me/"},
	} {
		rec := e.do(req.method, req.path, token, nil)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, "%s %s", req.method, req.path)
	}
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/chat/unknown/", token, nil).Code)
}

func TestThreadListFiltersAndPaginates(t *testing.T) {
	e := newTestEnv(t)
	a, b, c, d := e.user("alice"), e.user("bob"), e.user("carol"), e.user("dave")
	token := e.token(a)

	require.Equal(t, http.StatusCreated, e.createThread(token, a.ID, b.ID).Code)
	require.Equal(t, http.StatusCreated, e.createThread(token, c.ID, a.ID).Code)
	require.Equal(t, http.StatusCreated, e.createThread(token, a.ID, d.ID).Code)
	require.Equal(t, http.StatusCreated, e.createThread(token, b.ID, c.ID).Code)

	rec := e.do(http.MethodGet, fmt.Sprintf("/chat/retrieve-thread-list/?user=%d", a.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode(t, rec)
	assert.Equal(t, float64(3), page["count"])
	assert.Len(t, page["results"], 2)
	assert.NotNil(t, page["next"])
	assert.Nil(t, page["previous"])

	rec = e.do(http.MethodGet, fmt.Sprintf("/chat/retrieve-thread-list/?user=%d&offset=2", a.ID), token, nil)
	page = decode(t, rec)
	assert.Len(t, page["results"], 1)
	assert.Nil(t, page["next"])
	assert.NotNil(t, page["previous"])

	// defaults to the caller
	rec = e.do(http.MethodGet, "/chat/retrieve-thread-list/?limit=10", token, nil)
	page = decode(t, rec)
	assert.Len(t, page["results"], 3)

	rec = e.do(http.MethodGet, fmt.Sprintf("/chat/retrieve-thread-list/?user=%d&limit=10", b.ID), token, nil)
	page = decode(t, rec)
	assert.Len(t, page["results"], 2)

	rec = e.do(http.MethodGet, "/chat/retrieve-thread-list/?user=abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMessages(t *testing.T) {
	e := newTestEnv(t)
	a, b, outsider := e.user("alice"), e.user("bob"), e.user("eve")
	token := e.token(a)

	rec := e.createThread(token, a.ID, b.ID)
	require.Equal(t, http.StatusCreated, rec.Code)
	threadID := int64(decode(t, rec)["id"].(float64))

	for i := 0; i < 3; i++ {
		rec = e.do(http.MethodPost, "/chat/create-retrieve-message/", token,
			map[string]any{"text": fmt.Sprintf("message %d", i), "thread": threadID})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		msg := decode(t, rec)
		assert.Equal(t, float64(threadID), msg["thread"])
		assert.Equal(t, a.ID, idOf(msg["sender"]))
		assert.Equal(t, false, msg["is_read"])
	}

	rec = e.do(http.MethodGet, fmt.Sprintf("/chat/create-retrieve-message/?thread_id=%d", threadID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode(t, rec)
	assert.Equal(t, float64(3), page["count"])
	results := page["results"].([]any)
	require.Len(t, results, 2)
	assert.Equal(t, "message 0", results[0].(map[string]any)["text"])

	rec = e.do(http.MethodGet, fmt.Sprintf("/chat/create-retrieve-message/?thread_id=%d&offset=2", threadID), token, nil)
	page = decode(t, rec)
	require.Len(t, page["results"], 1)
	assert.Equal(t, "message 2", page["results"].([]any)[0].(map[string]any)["text"])

	rec = e.do(http.MethodGet, "/chat/create-retrieve-message/", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(http.MethodPost, "/chat/create-retrieve-message/", token, map[string]any{"text": "", "thread": threadID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "", decode(t, rec)["text"])

	rec = e.do(http.MethodPost, "/chat/create-retrieve-message/", token, map[string]any{"thread": threadID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "text")

	rec = e.do(http.MethodPost, "/chat/create-retrieve-message/", token, map[string]any{"text": "hi", "thread": 9999})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(http.MethodPost, "/chat/create-retrieve-message/", e.token(outsider),
		map[string]any{"text": "hi", "thread": threadID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReadState(t *testing.T) {
	e := newTestEnv(t)
	a, b := e.user("alice"), e.user("bob")
	tokenA, tokenB := e.token(a), e.token(b)

	rec := e.createThread(tokenA, a.ID, b.ID)
	threadID := int64(decode(t, rec)["id"].(float64))

	unread := func(token string) float64 {
		rec := e.do(http.MethodGet, "/chat/retrieve-number-of-unread-messages/", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		return decode(t, rec)["number_of_unread_messages"].(float64)
	}

	var ids []int64
	for i := 0; i < 2; i++ {
		rec = e.do(http.MethodPost, "/chat/create-retrieve-message/", tokenA,
			map[string]any{"text": "ping", "thread": threadID})
		require.Equal(t, http.StatusCreated, rec.Code)
		ids = append(ids, int64(decode(t, rec)["id"].(float64)))
	}
	assert.Equal(t, float64(2), unread(tokenA))
	assert.Equal(t, float64(0), unread(tokenB))

	for i := 0; i < 2; i++ {
		rec = e.do(http.MethodPatch, fmt.Sprintf("/chat/mark-message-as-read/%d/", ids[0]), tokenB, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, decode(t, rec)["is_read"])
	}
	assert.Equal(t, float64(1), unread(tokenA))

	rec = e.do(http.MethodGet, "/chat/retrieve-number-of-unread-messages/", tokenA, nil)
	body := decode(t, rec)
	assert.Equal(t, a.ID, idOf(body["user"]))
	assert.NotContains(t, body["user"], "password")

	rec = e.do(http.MethodPatch, "/chat/mark-message-as-read/9999/", tokenA, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUserEndpoints(t *testing.T) {
	e := newTestEnv(t)

	payload := map[string]string{"email": "new@test.com", "password": password, "first_name": "New", "last_name": "User"}
	rec := e.do(http.MethodPost, "/user/create/", "", payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode(t, rec)
	assert.Equal(t, "new@test.com", created["email"])
	assert.NotContains(t, created, "password")

	rec = e.do(http.MethodPost, "/user/create/", "", payload)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(http.MethodPost, "/user/create/", "", map[string]string{"email": "short@test.com", "password": "pw", "first_name": "A", "last_name": "B"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(http.MethodPost, "/user/token/", "", map[string]string{"email": "new@test.com", "password": "wrong"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	u := &models.User{ID: int64(created["id"].(float64)), Email: "new@test.com"}
	token := e.token(u)
	assert.Equal(t, token, e.token(u))

	rec = e.do(http.MethodGet, "/user/me/", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "New", decode(t, rec)["first_name"])

	rec = e.do(http.MethodPatch, "/user/me/", token, map[string]string{"first_name": "Renamed"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Renamed", decode(t, rec)["first_name"])

	rec = e.do(http.MethodPut, "/user/me/", token, map[string]string{"first_name": "Only"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	e.user("other")
	rec = e.do(http.MethodGet, "/user/list/?limit=1", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode(t, rec)
	assert.Equal(t, float64(2), page["count"])
	assert.Len(t, page["results"], 1)
}

func TestOperationalEndpoints(t *testing.T) {
	e := newTestEnv(t)
	a, b := e.user("alice"), e.user("bob")
	require.Equal(t, http.StatusCreated, e.createThread(e.token(a), a.ID, b.ID).Code)

	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/healthz", "", nil).Code)
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/readyz", "", nil).Code)

	rec := e.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `chat_threads_resolved_total{result="created"} 1`)
	assert.Contains(t, rec.Body.String(), "http_requests_total")

	rec = e.do(http.MethodGet, "/api/schema/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodOptions, "/chat/create-retrieve-thread/", nil)
	rec = httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://127.0.0.1:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/nowhere/", "", nil).Code)
}
