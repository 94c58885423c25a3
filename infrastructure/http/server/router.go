package server

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
)

func NewRouter(log *slog.Logger, chat *ChatServer, accounts *AuthServer) *mux.Router {
	router := mux.NewRouter()
	router.Use(logRequests(log))

	router.HandleFunc("/ws", chat.Connect).Methods(http.MethodGet)
	router.HandleFunc("/health", chat.Health).Methods(http.MethodGet)
	router.HandleFunc("/rooms", chat.Rooms).Methods(http.MethodGet)

	api := router.PathPrefix("/auth").Subrouter()
	api.HandleFunc("/register", accounts.Register).Methods(http.MethodPost)
	api.HandleFunc("/login", accounts.Login).Methods(http.MethodPost)
	api.HandleFunc("/refresh", accounts.Refresh).Methods(http.MethodPost)
	api.HandleFunc("/me", accounts.Me).Methods(http.MethodGet)
	api.HandleFunc("/change-password", accounts.ChangePassword).Methods(http.MethodPost)

	return router
}

// logRequests leaves the ResponseWriter untouched so /ws can still hijack it.
func logRequests(log *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Debug("Request received", "method", r.Method, "path", r.URL.Path, "remote", r.RemoteAddr)
			next.ServeHTTP(w, r)
		})
	}
}
