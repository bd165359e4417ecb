package server

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/pliu/warbler/internal/auth"
	"github.com/pliu/warbler/internal/handlers"
	"github.com/pliu/warbler/internal/metrics"
	"github.com/pliu/warbler/internal/middleware"
	"github.com/pliu/warbler/internal/service"
	"github.com/pliu/warbler/internal/store"
)

type Deps struct {
	Store      store.Store
	Secret     string
	BcryptCost int
}

// NewRouter wires every route of the application onto a gorilla/mux router.
func NewRouter(d Deps) http.Handler {
	signer := auth.NewSigner(d.Secret)
	users := service.NewUserService(d.BcryptCost)
	messages := service.NewMessageService()

	authHandler := &handlers.AuthHandler{Store: d.Store, Users: users, Signer: signer}
	userHandler := &handlers.UserHandler{Store: d.Store, Users: users, Messages: messages}
	messageHandler := &handlers.MessageHandler{Store: d.Store, Messages: messages}

	requireLogin := middleware.AuthMiddleware(signer)
	authed := func(h http.HandlerFunc) http.Handler { return requireLogin(h) }

	r := mux.NewRouter()
	r.Use(middleware.LoggingMiddleware)
	r.Use(metrics.InstrumentHandler)

	r.HandleFunc("/signup", authHandler.Signup).Methods(http.MethodPost)
	r.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)
	r.HandleFunc("/logout", authHandler.Logout).Methods(http.MethodPost)

	r.Handle("/", authed(messageHandler.Timeline)).Methods(http.MethodGet)

	r.HandleFunc("/users", userHandler.Search).Methods(http.MethodGet)
	r.Handle("/users/profile", authed(userHandler.UpdateProfile)).Methods(http.MethodPost)
	r.Handle("/users/delete", authed(userHandler.Delete)).Methods(http.MethodPost)
	r.Handle("/users/follow/{id:[0-9]+}", authed(userHandler.Follow)).Methods(http.MethodPost)
	r.Handle("/users/stop-following/{id:[0-9]+}", authed(userHandler.StopFollowing)).Methods(http.MethodPost)
	r.HandleFunc("/users/{id:[0-9]+}", userHandler.Show).Methods(http.MethodGet)
	r.HandleFunc("/users/{id:[0-9]+}/following", userHandler.Following).Methods(http.MethodGet)
	r.HandleFunc("/users/{id:[0-9]+}/followers", userHandler.Followers).Methods(http.MethodGet)
	r.HandleFunc("/users/{id:[0-9]+}/likes", userHandler.Likes).Methods(http.MethodGet)

	r.Handle("/messages/new", authed(messageHandler.Create)).Methods(http.MethodPost)
	r.HandleFunc("/messages/{id:[0-9]+}", messageHandler.Show).Methods(http.MethodGet)
	r.Handle("/messages/{id:[0-9]+}/delete", authed(messageHandler.Delete)).Methods(http.MethodPost)
	r.Handle("/messages/{id:[0-9]+}/like", authed(messageHandler.ToggleLike)).Methods(http.MethodPost)

	r.Handle("/healthz", handlers.Health(d.Store)).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	return r
}
