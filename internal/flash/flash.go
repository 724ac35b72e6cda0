package flash

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

// One-shot flash messages carried in a cookie, consumed on next render.
// Levels mirror the UI categories: success, info, warning, danger.

const cookieName = "flash"

// Set stores a flash message with a level for the next request.
func Set(w http.ResponseWriter, level, msg string) {
	http.SetCookie(w, &http.Cookie{Name: cookieName, Value: url.QueryEscape(level + ":" + msg), Path: "/"})
}

// Pop reads and clears the flash cookie. Returns empty strings when none set.
func Pop(w http.ResponseWriter, r *http.Request) (level, msg string) {
	c, err := r.Cookie(cookieName)
	if err != nil || c.Value == "" {
		return "", ""
	}
	http.SetCookie(w, &http.Cookie{Name: cookieName, Value: "", Path: "/", Expires: time.Unix(0, 0), MaxAge: -1})
	dec, derr := url.QueryUnescape(c.Value)
	if derr != nil {
		dec = c.Value
	}
	level, msg, found := strings.Cut(dec, ":")
	if !found {
		return "info", dec
	}
	return level, msg
}
