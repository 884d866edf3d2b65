package chat

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/Vasu1712/scenyx-chat/internal/api/render"
	"github.com/Vasu1712/scenyx-chat/internal/auth"
	"github.com/Vasu1712/scenyx-chat/internal/chat"
	"github.com/Vasu1712/scenyx-chat/internal/models"
	"github.com/Vasu1712/scenyx-chat/internal/pagination"
	apperrors "github.com/Vasu1712/scenyx-chat/pkg/errors"
)

type Handler struct {
	Service     *chat.Service
	PageSize    int
	MaxPageSize int
}

type unreadCount struct {
	User                   *models.User `json:"user"`
	NumberOfUnreadMessages int          `json:"number_of_unread_messages"`
}

func currentUser(r *http.Request) (*models.User, error) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		return nil, apperrors.ErrUnauthorized
	}
	return u, nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.ErrNotFound
	}
	return id, nil
}

func queryID(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, apperrors.BadRequest(name + ": this field is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperrors.BadRequest(name + ": a valid integer is required")
	}
	return id, nil
}

// mapChatError turns core errors into 400s. Missing records pass through
// so render answers them with 404.
func mapChatError(err error) error {
	switch {
	case errors.Is(err, chat.ErrInvalidPair),
		errors.Is(err, chat.ErrUnknownUser),
		errors.Is(err, chat.ErrUnknownThread),
		errors.Is(err, chat.ErrNotParticipant):
		return apperrors.BadRequest(err.Error())
	}
	return err
}

// CreateOrRetrieveThread returns the thread for the pair in the body,
// creating it when needed.
func (h *Handler) CreateOrRetrieveThread(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ParticipantOne *int64 `json:"participant_one"`
		ParticipantTwo *int64 `json:"participant_two"`
	}
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}
	if req.ParticipantOne == nil || req.ParticipantTwo == nil {
		render.Error(w, r, apperrors.BadRequest("participant_one and participant_two are required"))
		return
	}

	thread, created, err := h.Service.ResolveOrCreate(r.Context(), *req.ParticipantOne, *req.ParticipantTwo)
	if err != nil {
		render.Error(w, r, mapChatError(err))
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	render.JSON(w, status, thread)
}

func (h *Handler) RemoveThread(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		render.Error(w, r, err)
		return
	}
	render.NoContent(w)
}

// ListThreads lists the threads of ?user, defaulting to the caller.
func (h *Handler) ListThreads(w http.ResponseWriter, r *http.Request) {
	caller, err := currentUser(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	userID := caller.ID
	if r.URL.Query().Get("user") != "" {
		if userID, err = queryID(r, "user"); err != nil {
			render.Error(w, r, err)
			return
		}
	}

	p := pagination.FromRequest(r, h.PageSize, h.MaxPageSize)
	threads, count, err := h.Service.ListForUser(r.Context(), userID, p.Limit, p.Offset)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, pagination.NewPage(r, p, count, threads))
}

// CreateMessage posts a message from the caller.
func (h *Handler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	caller, err := currentUser(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	var req struct {
		Text   *string `json:"text"`
		Thread *int64  `json:"thread"`
	}
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}
	if req.Thread == nil {
		render.Error(w, r, apperrors.BadRequest("thread: this field is required"))
		return
	}
	// empty text is a valid message, a missing field is not
	if req.Text == nil {
		render.Error(w, r, apperrors.BadRequest("text: this field is required"))
		return
	}

	msg, err := h.Service.Post(r.Context(), *req.Thread, caller.ID, *req.Text)
	if err != nil {
		render.Error(w, r, mapChatError(err))
		return
	}
	render.JSON(w, http.StatusCreated, msg)
}

func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	threadID, err := queryID(r, "thread_id")
	if err != nil {
		render.Error(w, r, err)
		return
	}
	p := pagination.FromRequest(r, h.PageSize, h.MaxPageSize)
	messages, count, err := h.Service.ListForThread(r.Context(), threadID, p.Limit, p.Offset)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, pagination.NewPage(r, p, count, messages))
}

func (h *Handler) MarkMessageAsRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	msg, err := h.Service.MarkRead(r.Context(), id)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, msg)
}

func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	caller, err := currentUser(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	n, err := h.Service.CountUnread(r.Context(), caller.ID)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, unreadCount{User: caller.Public(), NumberOfUnreadMessages: n})
}
