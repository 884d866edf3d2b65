package users

import (
	"errors"
	"net/http"

	"github.com/Vasu1712/scenyx-chat/internal/api/render"
	"github.com/Vasu1712/scenyx-chat/internal/auth"
	"github.com/Vasu1712/scenyx-chat/internal/models"
	"github.com/Vasu1712/scenyx-chat/internal/pagination"
	"github.com/Vasu1712/scenyx-chat/internal/users"
	apperrors "github.com/Vasu1712/scenyx-chat/pkg/errors"
)

type Handler struct {
	Users       *users.Service
	Auth        *auth.Authenticator
	PageSize    int
	MaxPageSize int
}

type tokenResponse struct {
	Token  string `json:"token"`
	UserID int64  `json:"user_id"`
}

func mapUserError(err error) error {
	var verr *users.ValidationError
	switch {
	case errors.As(err, &verr),
		errors.Is(err, users.ErrEmailTaken),
		errors.Is(err, users.ErrInvalidCredentials):
		return apperrors.BadRequest(err.Error())
	}
	return err
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in users.CreateInput
	if err := render.Decode(r, &in); err != nil {
		render.Error(w, r, err)
		return
	}
	u, err := h.Users.Create(r.Context(), in)
	if err != nil {
		render.Error(w, r, mapUserError(err))
		return
	}
	render.JSON(w, http.StatusCreated, u.Public())
}

// Token exchanges credentials for the user's active token.
func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		render.Error(w, r, apperrors.BadRequest("must include email and password"))
		return
	}

	u, err := h.Users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		render.Error(w, r, mapUserError(err))
		return
	}
	token, err := h.Auth.Obtain(r.Context(), u.ID)
	if err != nil {
		render.Error(w, r, apperrors.Internal("could not issue token"))
		return
	}
	render.JSON(w, http.StatusOK, tokenResponse{Token: token, UserID: u.ID})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		render.Error(w, r, apperrors.ErrUnauthorized)
		return
	}
	render.JSON(w, http.StatusOK, u.Public())
}

// UpdateMe handles PUT (all fields) and PATCH (partial) on the caller.
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.UserFromContext(r.Context())
	if !ok {
		render.Error(w, r, apperrors.ErrUnauthorized)
		return
	}
	var in users.UpdateInput
	if err := render.Decode(r, &in); err != nil {
		render.Error(w, r, err)
		return
	}
	u, err := h.Users.Update(r.Context(), caller.ID, in, r.Method == http.MethodPatch)
	if err != nil {
		render.Error(w, r, mapUserError(err))
		return
	}
	render.JSON(w, http.StatusOK, u.Public())
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p := pagination.FromRequest(r, h.PageSize, h.MaxPageSize)
	list, count, err := h.Users.List(r.Context(), p.Limit, p.Offset)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	public := make([]*models.User, 0, len(list))
	for _, u := range list {
		public = append(public, u.Public())
	}
	render.JSON(w, http.StatusOK, pagination.NewPage(r, p, count, public))
}
