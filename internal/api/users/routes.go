package users

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes mounts the account endpoints. Registration and token
// exchange are public.
func RegisterRoutes(r *mux.Router, h *Handler, requireAuth mux.MiddlewareFunc) {
	r.HandleFunc("/user/create/", h.Create).Methods(http.MethodPost).Name("user:create")
	r.HandleFunc("/user/token/", h.Token).Methods(http.MethodPost).Name("user:token")

	r.Handle("/user/me/", requireAuth(http.HandlerFunc(h.Me))).Methods(http.MethodGet).Name("user:me")
	r.Handle("/user/me/", requireAuth(http.HandlerFunc(h.UpdateMe))).Methods(http.MethodPut, http.MethodPatch).Name("user:me_update")
	r.Handle("/user/list/", requireAuth(http.HandlerFunc(h.List))).Methods(http.MethodGet).Name("user:list")
}
