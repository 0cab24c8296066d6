package admin

import (
	"net/http"
	"time"
)

const CookieName = "admin_session"

// CookieOptions controls the attributes of the session cookie.
type CookieOptions struct {
	Secure bool
}

// CookieOptionsForEnv enables Secure outside local and development runs.
func CookieOptionsForEnv(env string) CookieOptions {
	switch env {
	case "", "local", "development", "dev", "test":
		return CookieOptions{Secure: false}
	default:
		return CookieOptions{Secure: true}
	}
}

func SetSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
	})
}

func ClearSessionCookie(w http.ResponseWriter, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}
