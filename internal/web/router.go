package web

import (
	"github.com/gorilla/mux"

	"goblog/middleware"
)

func (h *WebHandler) SetupRoutes(mw *middleware.Middleware) *mux.Router {
	r := mux.NewRouter()

	// Web pages
	r.HandleFunc("/", h.HomePage).Methods("GET", "POST")
	r.HandleFunc("/home_page", h.HomePage).Methods("GET", "POST")
	r.HandleFunc("/signup_page", h.SignupPage).Methods("GET", "POST")
	r.HandleFunc("/login_page", h.LoginPage).Methods("GET", "POST")
	r.HandleFunc("/blog_page", h.BlogPage).Methods("GET", "POST")
	r.HandleFunc("/edit_post/{id:[0-9]+}", h.EditPost).Methods("GET", "POST")
	r.HandleFunc("/delete_post/{id:[0-9]+}", h.DeletePost).Methods("GET", "POST")
	r.HandleFunc("/logout_page", h.LogoutPage).Methods("GET", "POST")

	// JSON API endpoints
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/login", h.authHandlers.LoginHandler).Methods("POST")
	api.HandleFunc("/check-auth", h.authHandlers.CheckAuthHandler).Methods("GET")
	api.HandleFunc("/posts", mw.AuthMiddleware(h.APIPosts)).Methods("GET")

	return r
}
