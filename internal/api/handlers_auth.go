package api

import (
	"log/slog"
	"net/http"
)

// AuthHandler serves the passcode prompt.
type AuthHandler struct {
	passcode string
	sessions *SessionStore
	pages    pages
	logger   *slog.Logger
}

func NewAuthHandler(passcode string, sessions *SessionStore, p pages, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{passcode: passcode, sessions: sessions, pages: p, logger: logger}
}

// LoginForm handles GET /login
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if h.passcode == "" || GetSession(r).Authenticated() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	_, errMsg := GetSession(r).TakeFlash()
	h.pages.render(w, h.logger, http.StatusOK, "login", pageData{Title: "パスコード", Error: errMsg})
}

// Login handles POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	sess := GetSession(r)
	if h.passcode == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil || !passcodeMatches(h.passcode, r.PostForm.Get("passcode")) {
		h.logger.Warn("passcode rejected", "remote", r.RemoteAddr)
		sess.Flash("", "パスコードが違います。")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	// A fresh ID on login; the pre-login one is discarded.
	h.sessions.Delete(sess.ID)
	fresh := h.sessions.Create()
	setSessionCookie(w, fresh.ID)
	fresh.SetAuthenticated(true)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout handles POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if id := GetSession(r).ID; id != "" {
		h.sessions.Delete(id)
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
