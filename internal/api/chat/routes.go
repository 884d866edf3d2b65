package chat

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes mounts the chat endpoints. Every endpoint requires an
// authenticated caller. Routes live on r itself so its method-not-allowed
// handler answers wrong methods on these paths.
func RegisterRoutes(r *mux.Router, h *Handler, requireAuth mux.MiddlewareFunc) {
	private := func(f http.HandlerFunc) http.Handler { return requireAuth(f) }

	r.Handle("/chat/create-retrieve-thread/", private(h.CreateOrRetrieveThread)).Methods(http.MethodPost).Name("chat:create_retrieve_thread")
	r.Handle("/chat/remove-thread/{id:[0-9]+}/", private(h.RemoveThread)).Methods(http.MethodDelete).Name("chat:remove_thread")
	r.Handle("/chat/retrieve-thread-list/", private(h.ListThreads)).Methods(http.MethodGet).Name("chat:retrieve_thread_list")
	r.Handle("/chat/create-retrieve-message/", private(h.CreateMessage)).Methods(http.MethodPost).Name("chat:create_message")
	r.Handle("/chat/create-retrieve-message/", private(h.ListMessages)).Methods(http.MethodGet).Name("chat:retrieve_message_list")
	r.Handle("/chat/mark-message-as-read/{id:[0-9]+}/", private(h.MarkMessageAsRead)).Methods(http.MethodPatch).Name("chat:mark_message_as_read")
	r.Handle("/chat/retrieve-number-of-unread-messages/", private(h.UnreadCount)).Methods(http.MethodGet).Name("chat:retrieve_number_of_unread_messages")
}
