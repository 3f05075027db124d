package handler

import (
	"go-property-api/config"
	"net/http"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

func sessionCookie(name, value string) *http.Cookie {
	secure := config.AppConfig.Server.CookieSecure
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	if secure {
		c.SameSite = http.SameSiteNoneMode
	}
	return c
}

func setSessionCookies(w http.ResponseWriter, accessToken, refreshToken string) {
	http.SetCookie(w, sessionCookie(AccessTokenCookie, accessToken))
	http.SetCookie(w, sessionCookie(RefreshTokenCookie, refreshToken))
}

func clearCookie(w http.ResponseWriter, name string) {
	c := sessionCookie(name, "")
	c.MaxAge = -1
	http.SetCookie(w, c)
}

func clearSessionCookies(w http.ResponseWriter) {
	clearCookie(w, AccessTokenCookie)
	clearCookie(w, RefreshTokenCookie)
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
