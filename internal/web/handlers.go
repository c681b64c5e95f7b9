package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"

	"goblog/db"
	"goblog/internal/auth"
	"goblog/internal/config"
	"goblog/internal/post"
	"goblog/middleware"
	"goblog/models"
)

const sessionName = "goblog-session"

type WebHandler struct {
	authService  *auth.Service
	postService  *post.Service
	authHandlers *auth.AuthHandlers
	templates    *template.Template
	sessionStore *sessions.CookieStore
	config       *config.Config
}

type PageData struct {
	Page    string
	User    *models.User
	Flashes []string
	Posts   []*models.Post
	Post    *models.Post
}

func NewWebHandler(
	authService *auth.Service,
	postService *post.Service,
	authHandlers *auth.AuthHandlers,
	cfg *config.Config,
	templatesDir string,
) *WebHandler {
	tmpl, err := template.ParseGlob(filepath.Join(templatesDir, "*.html"))
	if err != nil {
		panic(fmt.Sprintf("Failed to parse templates: %v", err))
	}

	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}

	return &WebHandler{
		authService:  authService,
		postService:  postService,
		authHandlers: authHandlers,
		templates:    tmpl,
		sessionStore: store,
		config:       cfg,
	}
}

// currentUser resolves the session cookie to a stored user.
// Any failure (missing cookie, stale id) yields an anonymous request.
func (h *WebHandler) currentUser(r *http.Request) *models.User {
	session, _ := h.sessionStore.Get(r, sessionName)
	userID, ok := session.Values["user_id"].(int)
	if !ok {
		return nil
	}

	user, err := h.authService.FindByID(r.Context(), userID)
	if err != nil {
		return nil
	}
	return user
}

// requireUser resolves the current user and redirects anonymous requests to
// the login page before any side effect. Returns nil when redirected.
func (h *WebHandler) requireUser(w http.ResponseWriter, r *http.Request) *models.User {
	user := h.currentUser(r)
	if user == nil {
		http.Redirect(w, r, "/login_page", http.StatusSeeOther)
		return nil
	}
	return user
}

func (h *WebHandler) establishSession(w http.ResponseWriter, r *http.Request, user *models.User) {
	session, _ := h.sessionStore.Get(r, sessionName)
	session.Values["user_id"] = user.ID
	session.Save(r, w)
}

func (h *WebHandler) addFlash(w http.ResponseWriter, r *http.Request, message string) {
	session, _ := h.sessionStore.Get(r, sessionName)
	session.AddFlash(message)
	session.Save(r, w)
}

// popFlashes drains and returns the pending flash messages
func (h *WebHandler) popFlashes(w http.ResponseWriter, r *http.Request) []string {
	session, _ := h.sessionStore.Get(r, sessionName)
	var messages []string
	for _, f := range session.Flashes() {
		if s, ok := f.(string); ok {
			messages = append(messages, s)
		}
	}
	session.Save(r, w)
	return messages
}

func (h *WebHandler) render(w http.ResponseWriter, name string, data PageData) {
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("Template execution error for %s: %v", name, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Page Handlers

// HomePage lists every post as the public feed
func (h *WebHandler) HomePage(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postService.ListAll(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.render(w, "home_page.html", PageData{
		Page:    "home",
		User:    h.currentUser(r),
		Flashes: h.popFlashes(w, r),
		Posts:   posts,
	})
}

// SignupPage renders the signup form and registers new users
func (h *WebHandler) SignupPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.render(w, "signup_page.html", PageData{
			Page:    "signup",
			Flashes: h.popFlashes(w, r),
		})
		return
	}

	fullName := r.FormValue("fullname")
	username := r.FormValue("username")
	email := r.FormValue("email")
	password := r.FormValue("password")
	confirm := r.FormValue("confirm_password")

	user, err := h.authService.Register(r.Context(), fullName, username, email, password, confirm)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrPasswordMismatch):
			h.addFlash(w, r, "Passwords do not match!")
		case errors.Is(err, db.ErrDuplicate):
			h.addFlash(w, r, "That username is already taken")
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/signup_page", http.StatusSeeOther)
		return
	}

	// Auto-login after signup
	h.establishSession(w, r, user)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// LoginPage renders the login form and authenticates users
func (h *WebHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.render(w, "login_page.html", PageData{
			Page:    "login",
			Flashes: h.popFlashes(w, r),
		})
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")

	user, err := h.authService.Login(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.addFlash(w, r, "Incorrect credentials!")
			http.Redirect(w, r, "/login_page", http.StatusSeeOther)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.establishSession(w, r, user)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// BlogPage lists the caller's posts and accepts new ones
func (h *WebHandler) BlogPage(w http.ResponseWriter, r *http.Request) {
	user := h.requireUser(w, r)
	if user == nil {
		return
	}

	if r.Method == http.MethodPost {
		title := r.FormValue("title")
		content := r.FormValue("content")

		if _, err := h.postService.Create(r.Context(), user.ID, title, content); err != nil {
			if errors.Is(err, post.ErrTitleTooLong) || errors.Is(err, post.ErrContentTooLong) {
				h.addFlash(w, r, err.Error())
			} else {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
		}
		http.Redirect(w, r, "/blog_page", http.StatusSeeOther)
		return
	}

	posts, err := h.postService.ListOwnedBy(r.Context(), user.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.render(w, "blog_page.html", PageData{
		Page:    "blog",
		User:    user,
		Flashes: h.popFlashes(w, r),
		Posts:   posts,
	})
}

// EditPost renders the edit form and applies owner-only edits
func (h *WebHandler) EditPost(w http.ResponseWriter, r *http.Request) {
	user := h.requireUser(w, r)
	if user == nil {
		return
	}

	postID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid post id", http.StatusBadRequest)
		return
	}

	if r.Method == http.MethodPost {
		title := r.FormValue("title")
		content := r.FormValue("content")

		_, err := h.postService.Edit(r.Context(), user.ID, postID, title, content)
		if err != nil {
			switch {
			case errors.Is(err, db.ErrNotFound):
				http.Error(w, "Post not found", http.StatusNotFound)
			case errors.Is(err, post.ErrForbidden):
				http.Error(w, "You are not authorized to edit this post.", http.StatusForbidden)
			case errors.Is(err, post.ErrTitleTooLong) || errors.Is(err, post.ErrContentTooLong):
				h.addFlash(w, r, err.Error())
				http.Redirect(w, r, fmt.Sprintf("/edit_post/%d", postID), http.StatusSeeOther)
			default:
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
			return
		}

		http.Redirect(w, r, "/blog_page", http.StatusSeeOther)
		return
	}

	p, err := h.postService.Get(r.Context(), postID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Post not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if p.UserID != user.ID {
		http.Error(w, "You are not authorized to edit this post.", http.StatusForbidden)
		return
	}

	h.render(w, "edit_post.html", PageData{
		Page:    "edit",
		User:    user,
		Flashes: h.popFlashes(w, r),
		Post:    p,
	})
}

// DeletePost removes a post, owner-only
func (h *WebHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	user := h.requireUser(w, r)
	if user == nil {
		return
	}

	postID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid post id", http.StatusBadRequest)
		return
	}

	if err := h.postService.Delete(r.Context(), user.ID, postID); err != nil {
		switch {
		case errors.Is(err, db.ErrNotFound):
			http.Error(w, "Post not found", http.StatusNotFound)
		case errors.Is(err, post.ErrForbidden):
			http.Error(w, "You are not authorized to delete this post.", http.StatusForbidden)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	http.Redirect(w, r, "/blog_page", http.StatusSeeOther)
}

// LogoutPage destroys the session and redirects home
func (h *WebHandler) LogoutPage(w http.ResponseWriter, r *http.Request) {
	user := h.requireUser(w, r)
	if user == nil {
		return
	}

	session, _ := h.sessionStore.Get(r, sessionName)
	session.Values = make(map[interface{}]interface{})
	session.AddFlash("Logout successful!")
	session.Save(r, w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// API Handlers

// APIPosts returns the caller's posts as JSON, bearer-token guarded
func (h *WebHandler) APIPosts(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	posts, err := h.postService.ListOwnedBy(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if posts == nil {
		posts = []*models.Post{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(posts)
}
