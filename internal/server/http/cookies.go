package httpserver

import (
	"net/http"
	"time"
)

const (
	accessCookieName  = "accessToken"
	refreshCookieName = "refreshToken"
)

func sessionCookie(name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}

func setSessionCookies(w http.ResponseWriter, access, refresh string, refreshTTL time.Duration) {
	now := time.Now()
	http.SetCookie(w, sessionCookie(accessCookieName, access, now.Add(refreshTTL)))
	http.SetCookie(w, sessionCookie(refreshCookieName, refresh, now.Add(refreshTTL)))
}

func clearSessionCookies(w http.ResponseWriter) {
	expired := time.Unix(0, 0)
	http.SetCookie(w, sessionCookie(accessCookieName, "", expired))
	http.SetCookie(w, sessionCookie(refreshCookieName, "", expired))
}
